// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package providers is the catalog boundary: it supplies the initial
candidate entries for a room's category when voting starts.

# Providers

A Provider returns entries for a FetchRequest (filters plus names to
exclude):

	entries, err := p.FetchEntries(ctx, models.FetchRequest{Filters: f})

Built-in providers:

  - dummy: numbered placeholder entries (filter: count)
  - city: cities inside an Overpass area (filters: area, limit)
  - country: countries from Overpass administrative boundaries
  - restaurants: named amenities in a city with a map link
    (filters: city, amenity, limit)
  - kinopoisk: film premieres for a month (filters: year, month);
    requires KINOPOISK_TOKEN

The "custom" category has no provider; its entries are added by the room
owner before voting.

# Errors

Failures wrap one of two sentinels:

  - ErrProviderUnavailable: transport failure or 5xx answer
  - ErrProviderError: rejected request or undecodable response

Providers never retry. Callers decide.

# Registry

	reg := providers.FromConfig(cfg)
	p, ok := reg.Lookup("city")
*/
package providers
