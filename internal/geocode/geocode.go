package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"mspro-labs/flat-scout/internal/config"
	"mspro-labs/flat-scout/internal/models"
)

var (
	// ErrNoResults is returned when the service knows no location for a place.
	ErrNoResults = errors.New("geocode: no results")
	// ErrBatchFailed marks an enrichment that was discarded because a lookup failed.
	ErrBatchFailed = errors.New("geocode: batch enrichment failed")
)

// Client resolves a free-text place name to coordinates.
type Client interface {
	Lookup(ctx context.Context, place string) (models.Coordinates, error)
}

// LookupError identifies the offer whose lookup failed.
type LookupError struct {
	Place string
	Link  string
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %q for %s: %v", e.Place, e.Link, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// GoogleClient queries the Google Geocoding API.
type GoogleClient struct {
	client   *maps.Client
	region   string
	language string
}

// NewGoogleClient needs an API key; extra options (e.g. maps.WithBaseURL) are passed through.
func NewGoogleClient(apiKey string, cfg config.GeocodeConfig, opts ...maps.ClientOption) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEOCODE_API_KEY environment variable is required")
	}
	c, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode client: %w", err)
	}
	return &GoogleClient{client: c, region: cfg.Region, language: cfg.Language}, nil
}

// Lookup returns the location of the first candidate.
func (g *GoogleClient) Lookup(ctx context.Context, place string) (models.Coordinates, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  place,
		Region:   g.region,
		Language: g.language,
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return models.Coordinates{}, fmt.Errorf("%w: %q", ErrNoResults, place)
		}
		return models.Coordinates{}, err
	}
	if len(results) == 0 {
		return models.Coordinates{}, ErrNoResults
	}
	loc := results[0].Geometry.Location
	return models.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}
