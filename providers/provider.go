// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package providers

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/DevDaysSpring2024-29/project/models"
)

// Custom names the category whose options are added by hand. It has no
// provider behind it.
const Custom = "custom"

// Provider names registered by Default
const (
	NameDummy       = "dummy"
	NameCity        = "city"
	NameCountry     = "country"
	NameRestaurants = "restaurants"
	NameKinopoisk   = "kinopoisk"
)

var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderError       = errors.New("provider error")
)

// Provider supplies candidate entries for one category.
type Provider interface {
	FetchEntries(ctx context.Context, req models.FetchRequest) ([]models.Entry, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, req models.FetchRequest) ([]models.Entry, error)

func (f ProviderFunc) FetchEntries(ctx context.Context, req models.FetchRequest) ([]models.Entry, error) {
	return f(ctx, req)
}

// Registry maps category names to providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces the provider for name.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Lookup returns the provider registered for name. Custom is never
// registered.
func (r *Registry) Lookup(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names returns every selectable category, Custom included, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers)+1)
	for name := range r.providers {
		names = append(names, name)
	}
	names = append(names, Custom)
	sort.Strings(names)
	return names
}

// excludeNames drops entries whose name is listed in exclude.
func excludeNames(entries []models.Entry, exclude []string) []models.Entry {
	if len(exclude) == 0 {
		return entries
	}
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}
	kept := entries[:0]
	for _, e := range entries {
		if !skip[e.Name] {
			kept = append(kept, e)
		}
	}
	return kept
}
