// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/DevDaysSpring2024-29/project/auth"
	"github.com/DevDaysSpring2024-29/project/cliparse"
	"github.com/DevDaysSpring2024-29/project/db"
	"github.com/DevDaysSpring2024-29/project/engine"
	"github.com/DevDaysSpring2024-29/project/models"
	"github.com/DevDaysSpring2024-29/project/providers"
)

// SetupTestDB opens a fresh SQLite database with the full schema in a
// temporary directory. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := GetTestConfig()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "quo-test.db")

	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseType: "sqlite",
		EnvFile:      cliparse.DefaultEnvFile,
		ChunkSize:    cliparse.DefaultChunkSize,
		OverpassURL:  cliparse.DefaultOverpassURL,
	}
}

// NoShuffle leaves orders untouched so every participant sees options in
// index order.
func NoShuffle(n int, swap func(i, j int)) {}

// NewTestCatalog returns a catalog with the dummy provider (three entries)
// and a provider named "broken" that always reports an outage.
func NewTestCatalog() *providers.Registry {
	cat := providers.NewRegistry()
	cat.Register(providers.NameDummy, providers.DummyProvider{Count: 3})
	cat.Register("broken", providers.ProviderFunc(func(ctx context.Context, req models.FetchRequest) ([]models.Entry, error) {
		return nil, providers.ErrProviderUnavailable
	}))
	return cat
}

// NewTestRegistry returns an in-memory registry over NewTestCatalog with
// deterministic schedules.
func NewTestRegistry(t *testing.T, opts ...engine.Option) (*engine.Registry, *providers.Registry) {
	t.Helper()

	cat := NewTestCatalog()
	opts = append([]engine.Option{engine.WithShuffle(NoShuffle)}, opts...)
	return engine.NewRegistry(cat, opts...), cat
}

// MakeRequest creates an HTTP test request acting as participant. An empty
// participant sends no identity header.
func MakeRequest(method, path, participant string, body interface{}) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if participant != "" {
		req.Header.Set(auth.ParticipantHeader, participant)
	}

	return req
}

// Do serves req on h and returns the recorded response.
func Do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
