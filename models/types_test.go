// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"testing"
)

func TestFilters_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Filters
	}{
		{"strings", `{"area":"Russia","limit":"5"}`, Filters{"area": "Russia", "limit": "5"}},
		{"integer", `{"count":5}`, Filters{"count": "5"}},
		{"integral float", `{"year":2024.0}`, Filters{"year": "2024"}},
		{"exponent", `{"limit":1e3}`, Filters{"limit": "1000"}},
		{"fraction kept", `{"radius":2.5}`, Filters{"radius": "2.5"}},
		{"null dropped", `{"area":null,"limit":3}`, Filters{"limit": "3"}},
		{"empty", `{}`, Filters{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Filters
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("filter %q: expected %q, got %q", k, v, got[k])
				}
			}
		})
	}
}

func TestFilters_UnmarshalJSON_Invalid(t *testing.T) {
	for _, input := range []string{`{"count":true}`, `{"area":["a"]}`, `{"area":{"x":1}}`, `["count"]`} {
		t.Run(input, func(t *testing.T) {
			var got Filters
			if err := json.Unmarshal([]byte(input), &got); err == nil {
				t.Errorf("expected error, got %v", got)
			}
		})
	}
}

func TestFilters_Int(t *testing.T) {
	var params RoomParams
	if err := json.Unmarshal([]byte(`{"provider_name":"dummy","filters":{"count":7,"name":"x"}}`), &params); err != nil {
		t.Fatal(err)
	}
	if n := params.Filters.Int("count", 3); n != 7 {
		t.Errorf("expected 7, got %d", n)
	}
	if n := params.Filters.Int("name", 3); n != 3 {
		t.Errorf("expected default for non-numeric value, got %d", n)
	}
}
