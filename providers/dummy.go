// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package providers

import (
	"context"
	"fmt"

	"github.com/DevDaysSpring2024-29/project/models"
)

// DummyProvider returns Count numbered entries. Used for local runs and tests.
type DummyProvider struct {
	Count int
}

func (p DummyProvider) FetchEntries(ctx context.Context, req models.FetchRequest) ([]models.Entry, error) {
	n := req.Filters.Int("count", p.Count)
	if n <= 0 {
		n = 1
	}
	entries := make([]models.Entry, 0, n)
	for i := 1; i <= n; i++ {
		entries = append(entries, models.Entry{Name: fmt.Sprintf("dummy entry %d", i)})
	}
	return excludeNames(entries, req.ExcludeNames), nil
}
