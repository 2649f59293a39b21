// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package providers

import (
	"log/slog"

	"github.com/DevDaysSpring2024-29/project/cliparse"
)

// FromConfig builds the registry of every provider the configuration
// allows. Kinopoisk is only registered when a token is configured.
func FromConfig(cfg cliparse.Config) *Registry {
	r := NewRegistry()
	r.Register(NameDummy, DummyProvider{Count: 3})
	r.Register(NameCity, NewCityProvider(cfg.OverpassURL))
	r.Register(NameCountry, NewCountryProvider(cfg.OverpassURL))
	r.Register(NameRestaurants, NewRestaurantsProvider(cfg.OverpassURL))

	if cfg.KinopoiskToken != "" {
		r.Register(NameKinopoisk, NewKinopoiskProvider(cfg.KinopoiskToken))
	} else {
		slog.Warn("kinopoisk provider disabled", "reason", "KINOPOISK_TOKEN not set")
	}

	return r
}
