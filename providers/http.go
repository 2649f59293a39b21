// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package providers

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single upstream catalog request.
const DefaultTimeout = 30 * time.Second

const maxBodyBytes = 8 << 20

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// fetch performs req and returns the response body. Transport failures and
// 5xx answers wrap ErrProviderUnavailable; other non-2xx answers wrap
// ErrProviderError.
func fetch(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrProviderUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s returned %d", ErrProviderUnavailable, req.URL.Host, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s returned %d", ErrProviderError, req.URL.Host, resp.StatusCode)
	}

	return body, nil
}
