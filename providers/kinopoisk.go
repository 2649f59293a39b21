// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DevDaysSpring2024-29/project/models"
)

const DefaultKinopoiskURL = "https://kinopoiskapiunofficial.tech"

// KinopoiskProvider lists film premieres for a month.
//
// Filters: year (default current), month (English name, default current).
type KinopoiskProvider struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Now     func() time.Time
}

func NewKinopoiskProvider(token string) *KinopoiskProvider {
	return &KinopoiskProvider{
		BaseURL: DefaultKinopoiskURL,
		Token:   token,
		Client:  newHTTPClient(),
		Now:     time.Now,
	}
}

type kinopoiskPremieres struct {
	Items []struct {
		KinopoiskID      int    `json:"kinopoiskId"`
		NameRu           string `json:"nameRu"`
		NameEn           string `json:"nameEn"`
		PosterURLPreview string `json:"posterUrlPreview"`
	} `json:"items"`
}

func (p *KinopoiskProvider) FetchEntries(ctx context.Context, req models.FetchRequest) ([]models.Entry, error) {
	now := p.Now()
	q := url.Values{}
	q.Set("year", strconv.Itoa(req.Filters.Int("year", now.Year())))
	q.Set("month", strings.ToUpper(req.Filters.String("month", now.Month().String())))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.BaseURL+"/api/v2.2/films/premieres?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}
	httpReq.Header.Set("x-api-key", p.Token)
	httpReq.Header.Set("Accept", "application/json")

	body, err := fetch(p.Client, httpReq)
	if err != nil {
		return nil, err
	}

	var data kinopoiskPremieres
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: decoding kinopoisk response: %v", ErrProviderError, err)
	}

	entries := make([]models.Entry, 0, len(data.Items))
	for _, item := range data.Items {
		name := item.NameRu
		if name == "" {
			name = item.NameEn
		}
		if name == "" {
			continue
		}
		e := models.Entry{Name: name}
		if item.KinopoiskID != 0 {
			link := fmt.Sprintf("https://www.kinopoisk.ru/film/%d/", item.KinopoiskID)
			e.Description = &link
		}
		if item.PosterURLPreview != "" {
			poster := item.PosterURLPreview
			e.PictureURL = &poster
		}
		entries = append(entries, e)
	}
	return excludeNames(entries, req.ExcludeNames), nil
}
