// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/DevDaysSpring2024-29/project/models"
)

// DefaultOverpassURL is the public Overpass API interpreter.
const DefaultOverpassURL = "https://maps.mail.ru/osm/tools/overpass/api/interpreter"

const mapLinkTemplate = "https://yandex.com/maps?whatshere[point]=%f,%f"

type overpassResponse struct {
	Elements []struct {
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// CityProvider lists cities inside an area.
//
// Filters: area (default "Россия"), limit (default 30).
type CityProvider struct {
	URL    string
	Client *http.Client
}

func NewCityProvider(overpassURL string) *CityProvider {
	return &CityProvider{URL: overpassURL, Client: newHTTPClient()}
}

func (p *CityProvider) FetchEntries(ctx context.Context, req models.FetchRequest) ([]models.Entry, error) {
	query := fmt.Sprintf("[out:json];area[name='%s']->.a;(node[place=city](area.a););out %d;",
		quoteOverpass(req.Filters.String("area", "Россия")), req.Filters.Int("limit", 30))

	var data overpassResponse
	if err := overpassGet(ctx, p.Client, p.URL, query, &data); err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(data.Elements))
	for _, el := range data.Elements {
		name := el.Tags["name:ru"]
		if name == "" {
			name = el.Tags["name"]
		}
		if name == "" {
			continue
		}
		entries = append(entries, models.Entry{Name: name})
	}
	return excludeNames(entries, req.ExcludeNames), nil
}

// CountryProvider lists countries (admin_level 2 boundaries).
type CountryProvider struct {
	URL    string
	Client *http.Client
}

func NewCountryProvider(overpassURL string) *CountryProvider {
	return &CountryProvider{URL: overpassURL, Client: newHTTPClient()}
}

func (p *CountryProvider) FetchEntries(ctx context.Context, req models.FetchRequest) ([]models.Entry, error) {
	const query = `[out:csv("name:ru")];relation["admin_level"="2"][boundary=administrative][type!=multilinestring];out;`

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}
	httpReq.Header.Set("Content-Type", "text/plain")

	body, err := fetch(p.Client, httpReq)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(body), "\n")
	entries := make([]models.Entry, 0, len(lines))
	// first line is the CSV header
	for _, line := range lines[1:] {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		entries = append(entries, models.Entry{Name: name})
	}
	return excludeNames(entries, req.ExcludeNames), nil
}

// RestaurantsProvider lists named amenities in a city with a map link.
//
// Filters: city (default "Москва"), amenity (default "restaurant"),
// limit (default 20).
type RestaurantsProvider struct {
	URL    string
	Client *http.Client
}

func NewRestaurantsProvider(overpassURL string) *RestaurantsProvider {
	return &RestaurantsProvider{URL: overpassURL, Client: newHTTPClient()}
}

func (p *RestaurantsProvider) FetchEntries(ctx context.Context, req models.FetchRequest) ([]models.Entry, error) {
	query := fmt.Sprintf("[out:json];area[name='%s']->.searchArea;node[amenity=%s](area.searchArea);out %d;",
		quoteOverpass(req.Filters.String("city", "Москва")),
		quoteOverpass(req.Filters.String("amenity", "restaurant")),
		req.Filters.Int("limit", 20))

	var data overpassResponse
	if err := overpassGet(ctx, p.Client, p.URL, query, &data); err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(data.Elements))
	for _, el := range data.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		link := fmt.Sprintf(mapLinkTemplate, el.Lon, el.Lat)
		entries = append(entries, models.Entry{Name: name, Description: &link})
	}
	return excludeNames(entries, req.ExcludeNames), nil
}

func overpassGet(ctx context.Context, client *http.Client, endpoint, query string, v any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: bad overpass url: %v", ErrProviderError, err)
	}
	q := u.Query()
	q.Set("data", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	body, err := fetch(client, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decoding overpass response: %v", ErrProviderError, err)
	}
	return nil
}

// quoteOverpass strips characters that would break out of a quoted
// Overpass QL value.
func quoteOverpass(s string) string {
	return strings.NewReplacer("'", "", "\\", "", ";", "", "]", "", "[", "").Replace(s)
}
