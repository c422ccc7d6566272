package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// TMDBProvider fetches watch providers from a TMDB-compatible API.
type TMDBProvider struct {
	baseURL string
	apiKey  string
	region  string
	client  *http.Client
	limiter *rate.Limiter
}

func NewTMDBProvider(baseURL, apiKey, region string) *TMDBProvider {
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	if region == "" {
		region = "US"
	}
	return &TMDBProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		region:  region,
		client:  &http.Client{Timeout: 5 * time.Second},
		// TMDB allows ~40 req/s; stay well under it
		limiter: rate.NewLimiter(rate.Limit(20), 20),
	}
}

type watchProviderEntry struct {
	ProviderName string `json:"provider_name"`
}

type watchProviderRegion struct {
	Flatrate []watchProviderEntry `json:"flatrate"`
	Ads      []watchProviderEntry `json:"ads"`
	Free     []watchProviderEntry `json:"free"`
}

type watchProvidersResponse struct {
	Results map[string]watchProviderRegion `json:"results"`
}

func (p *TMDBProvider) GetWatchProviders(ctx context.Context, mediaID, mediaType string) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/%s/watch/providers?api_key=%s",
		p.baseURL, url.PathEscape(mediaType), url.PathEscape(mediaID), url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch providers request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch providers request returned status %d", resp.StatusCode)
	}

	var parsed watchProvidersResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode watch providers response: %w", err)
	}

	region, ok := parsed.Results[p.region]
	if !ok {
		return nil, nil
	}

	var names []string
	for _, group := range [][]watchProviderEntry{region.Flatrate, region.Ads, region.Free} {
		for _, entry := range group {
			names = append(names, entry.ProviderName)
		}
	}
	return names, nil
}
