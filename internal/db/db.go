package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only
)

// Connect opens a connection to the SQLite database and ensures the schema exists.
// It automatically applies recommended settings for concurrency (WAL mode).
func Connect(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Use robust connection settings to prevent "database locked" errors
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// createSchema is private as it's only called by Connect.
func createSchema(db *sql.DB) error {
	geocodeTable := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
	  place TEXT PRIMARY KEY,
	  lat REAL NOT NULL,
	  lng REAL NOT NULL,
	  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(geocodeTable)
	return err
}

// CachedPlace is one row of the geocode cache.
type CachedPlace struct {
	Place     string
	Lat       float64
	Lng       float64
	CreatedAt time.Time
}

// GetCachedCoordinates looks up a previously geocoded place.
// It returns sql.ErrNoRows on a cache miss.
func GetCachedCoordinates(ctx context.Context, db *sql.DB, place string) (lat, lng float64, err error) {
	err = db.QueryRowContext(ctx, "SELECT lat, lng FROM geocode_cache WHERE place = ?", place).Scan(&lat, &lng)
	return lat, lng, err
}

// SaveCachedCoordinates stores a geocode result, replacing any previous entry for the place.
func SaveCachedCoordinates(ctx context.Context, db *sql.DB, place string, lat, lng float64) error {
	_, err := db.ExecContext(ctx, `
	INSERT INTO geocode_cache (place, lat, lng, created_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(place) DO UPDATE SET
	  lat = excluded.lat,
	  lng = excluded.lng,
	  created_at = CURRENT_TIMESTAMP;
	`, place, lat, lng)
	return err
}

// ListGeocodeCache returns all cached places, newest first.
func ListGeocodeCache(db *sql.DB) ([]CachedPlace, error) {
	rows, err := db.Query("SELECT place, lat, lng, created_at FROM geocode_cache ORDER BY created_at DESC, place")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CachedPlace
	for rows.Next() {
		var e CachedPlace
		if err := rows.Scan(&e.Place, &e.Lat, &e.Lng, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearGeocodeCache removes a specific place from the cache.
func ClearGeocodeCache(db *sql.DB, place string) (int64, error) {
	res, err := db.Exec("DELETE FROM geocode_cache WHERE place = ?", place)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearAllGeocodeCache wipes the entire cache.
func ClearAllGeocodeCache(db *sql.DB) (int64, error) {
	res, err := db.Exec("DELETE FROM geocode_cache")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
