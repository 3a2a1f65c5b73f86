package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Connect(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// TestGeocodeCacheUPSERT tests the insert, update and miss paths.
func TestGeocodeCacheUPSERT(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// 1. Miss
	if _, _, err := GetCachedCoordinates(ctx, database, "Wrocław"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows on miss, got %v", err)
	}

	// 2. Insert
	if err := SaveCachedCoordinates(ctx, database, "Wrocław", 51.1, 17.03); err != nil {
		t.Fatalf("SaveCachedCoordinates (insert) failed: %v", err)
	}
	lat, lng, err := GetCachedCoordinates(ctx, database, "Wrocław")
	if err != nil {
		t.Fatalf("GetCachedCoordinates failed: %v", err)
	}
	if lat != 51.1 || lng != 17.03 {
		t.Errorf("unexpected coordinates: %v, %v", lat, lng)
	}

	// 3. Update (ON CONFLICT)
	if err := SaveCachedCoordinates(ctx, database, "Wrocław", 51.2, 17.04); err != nil {
		t.Fatalf("SaveCachedCoordinates (update) failed: %v", err)
	}
	lat, lng, _ = GetCachedCoordinates(ctx, database, "Wrocław")
	if lat != 51.2 || lng != 17.04 {
		t.Errorf("update not applied: %v, %v", lat, lng)
	}
}

func TestListAndClearGeocodeCache(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	for _, place := range []string{"Kraków", "Gdańsk", "Poznań"} {
		if err := SaveCachedCoordinates(ctx, database, place, 1, 2); err != nil {
			t.Fatalf("save %s: %v", place, err)
		}
	}

	entries, err := ListGeocodeCache(database)
	if err != nil {
		t.Fatalf("ListGeocodeCache failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	n, err := ClearGeocodeCache(database, "Gdańsk")
	if err != nil || n != 1 {
		t.Fatalf("ClearGeocodeCache: n=%d err=%v", n, err)
	}
	n, err = ClearAllGeocodeCache(database)
	if err != nil || n != 2 {
		t.Fatalf("ClearAllGeocodeCache: n=%d err=%v", n, err)
	}
	entries, _ = ListGeocodeCache(database)
	if len(entries) != 0 {
		t.Errorf("expected empty cache, got %d entries", len(entries))
	}
}
