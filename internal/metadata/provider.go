package metadata

import "context"

// Provider exposes third-party media metadata. Only the watch-provider list is
// consumed by the feed; titles and artwork are resolved client-side.
type Provider interface {
	// GetWatchProviders returns the raw streaming platform names for one media
	// item in the configured region. Names come back as the provider sends
	// them; normalization happens in the enrichment layer.
	GetWatchProviders(ctx context.Context, mediaID, mediaType string) ([]string, error)
}
