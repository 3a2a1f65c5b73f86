package geocode

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"mspro-labs/flat-scout/internal/logging"
	"mspro-labs/flat-scout/internal/models"
)

// Enricher attaches coordinates to every offer of a batch.
type Enricher struct {
	client Client
	logger *slog.Logger
}

func NewEnricher(client Client, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Enricher{client: client, logger: logger.With("component", "Enricher")}
}

// Enrich issues one concurrent lookup per offer and waits for all of them.
// The result keeps the input order. If any lookup fails the whole batch is
// discarded and the error wraps both ErrBatchFailed and the first failure.
// The input slice is not modified.
func (e *Enricher) Enrich(ctx context.Context, offers []models.Offer) ([]models.Offer, error) {
	enriched := make([]models.Offer, len(offers))
	copy(enriched, offers)

	var g errgroup.Group
	for i := range enriched {
		// each task owns exactly one slot
		slot := &enriched[i]
		g.Go(func() error {
			coords, err := e.client.Lookup(ctx, slot.Place)
			if err != nil {
				e.logger.Warn("Geocode lookup failed", "place", slot.Place, "link", slot.Link, "error", err)
				return &LookupError{Place: slot.Place, Link: slot.Link, Err: err}
			}
			slot.ApplyCoordinates(coords)
			e.logger.Debug("Geocode lookup done", "place", slot.Place, "coordinates", coords.String())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBatchFailed, err)
	}
	e.logger.Log(ctx, logging.LevelTrace, "Batch enriched", "count", len(enriched))
	return enriched, nil
}
