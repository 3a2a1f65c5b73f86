package geocode

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"mspro-labs/flat-scout/internal/db"
	"mspro-labs/flat-scout/internal/logging"
	"mspro-labs/flat-scout/internal/models"
)

// CachedClient memoizes lookups in the sqlite geocode cache ("cache-aside").
// Concurrent lookups of the same place share one upstream call.
// Failed lookups are never cached.
type CachedClient struct {
	next     Client
	database *sql.DB
	group    singleflight.Group
	logger   *slog.Logger
}

func NewCachedClient(next Client, database *sql.DB, logger *slog.Logger) *CachedClient {
	if logger == nil {
		logger = logging.Discard()
	}
	return &CachedClient{
		next:     next,
		database: database,
		logger:   logger.With("component", "GeocodeCache"),
	}
}

func (c *CachedClient) Lookup(ctx context.Context, place string) (models.Coordinates, error) {
	// A. Try Cache
	lat, lng, err := db.GetCachedCoordinates(ctx, c.database, place)
	if err == nil {
		return models.Coordinates{Lat: lat, Lng: lng}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		c.logger.Warn("Cache read failed, falling back to lookup", "place", place, "error", err)
	}

	// B. Cache Miss - one upstream call per place at a time
	v, err, _ := c.group.Do(place, func() (interface{}, error) {
		coords, err := c.next.Lookup(ctx, place)
		if err != nil {
			return models.Coordinates{}, err
		}
		// C. Save to Cache (don't fail the lookup if cache save fails)
		if err := db.SaveCachedCoordinates(ctx, c.database, place, coords.Lat, coords.Lng); err != nil {
			c.logger.Warn("Failed to save coordinates to cache", "place", place, "error", err)
		}
		return coords, nil
	})
	if err != nil {
		return models.Coordinates{}, err
	}
	return v.(models.Coordinates), nil
}
