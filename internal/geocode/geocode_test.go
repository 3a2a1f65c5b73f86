package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"googlemaps.github.io/maps"

	"mspro-labs/flat-scout/internal/config"
	"mspro-labs/flat-scout/internal/db"
	"mspro-labs/flat-scout/internal/models"
)

func newTestGoogleClient(t *testing.T, handler http.HandlerFunc) *GoogleClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewGoogleClient("AIzaNotReallyAnAPIKey", config.GeocodeConfig{Region: "pl", Language: "pl"}, maps.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewGoogleClient failed: %v", err)
	}
	return c
}

func TestGoogleClientUsesFirstResult(t *testing.T) {
	var gotAddress, gotRegion string
	c := newTestGoogleClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		gotRegion = r.URL.Query().Get("region")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"status": "OK",
			"results": [
				{"geometry": {"location": {"lat": 51.1078852, "lng": 17.0385376}}},
				{"geometry": {"location": {"lat": 1, "lng": 2}}}
			]
		}`)
	})

	coords, err := c.Lookup(context.Background(), "Wrocław, Krzyki")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if coords != (models.Coordinates{Lat: 51.1078852, Lng: 17.0385376}) {
		t.Errorf("expected first result, got %v", coords)
	}
	if gotAddress != "Wrocław, Krzyki" {
		t.Errorf("address not sent, got %q", gotAddress)
	}
	if gotRegion != "pl" {
		t.Errorf("region not sent, got %q", gotRegion)
	}
}

func TestGoogleClientZeroResults(t *testing.T) {
	c := newTestGoogleClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	})

	if _, err := c.Lookup(context.Background(), "Atlantyda"); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults for a zero-result response, got %v", err)
	}
}

func TestGoogleClientRequiresKey(t *testing.T) {
	if _, err := NewGoogleClient("", config.GeocodeConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

type stubClient struct {
	calls  atomic.Int32
	coords models.Coordinates
	err    error
}

func (s *stubClient) Lookup(ctx context.Context, place string) (models.Coordinates, error) {
	s.calls.Add(1)
	return s.coords, s.err
}

func TestCachedClient(t *testing.T) {
	database, err := db.Connect(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("db.Connect failed: %v", err)
	}
	defer database.Close()

	upstream := &stubClient{coords: models.Coordinates{Lat: 50.06, Lng: 19.94}}
	cached := NewCachedClient(upstream, database, nil)
	ctx := context.Background()

	// 1. Miss goes upstream
	first, err := cached.Lookup(ctx, "Kraków")
	if err != nil {
		t.Fatalf("first Lookup failed: %v", err)
	}
	// 2. Hit is served from sqlite
	second, err := cached.Lookup(ctx, "Kraków")
	if err != nil {
		t.Fatalf("second Lookup failed: %v", err)
	}
	if first != second || first != upstream.coords {
		t.Errorf("cached coordinates differ: %v vs %v", first, second)
	}
	if got := upstream.calls.Load(); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}
}

func TestCachedClientDoesNotCacheFailures(t *testing.T) {
	database, err := db.Connect(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("db.Connect failed: %v", err)
	}
	defer database.Close()

	upstream := &stubClient{err: ErrNoResults}
	cached := NewCachedClient(upstream, database, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := cached.Lookup(ctx, "Atlantyda"); !errors.Is(err, ErrNoResults) {
			t.Fatalf("lookup %d: expected ErrNoResults, got %v", i, err)
		}
	}
	if got := upstream.calls.Load(); got != 2 {
		t.Errorf("failures must not be cached: expected 2 upstream calls, got %d", got)
	}
	entries, _ := db.ListGeocodeCache(database)
	if len(entries) != 0 {
		t.Errorf("expected empty cache, got %d entries", len(entries))
	}
}
