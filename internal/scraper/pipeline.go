package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mspro-labs/flat-scout/internal/logging"
	"mspro-labs/flat-scout/internal/models"
	"mspro-labs/flat-scout/internal/publish"
	"mspro-labs/flat-scout/internal/query"
)

// Enricher resolves coordinates for a whole batch.
type Enricher interface {
	Enrich(ctx context.Context, offers []models.Offer) ([]models.Offer, error)
}

// Pipeline drives one scrape: build target, fetch, extract, enrich, publish.
type Pipeline struct {
	builder   query.Builder
	fetcher   Fetcher
	extractor *Extractor
	enricher  Enricher
	logger    *slog.Logger
}

func NewPipeline(builder query.Builder, fetcher Fetcher, extractor *Extractor, enricher Enricher, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		builder:   builder,
		fetcher:   fetcher,
		extractor: extractor,
		enricher:  enricher,
		logger:    logger.With("component", "Pipeline"),
	}
}

// Run performs a single scrape and settles pub with the outcome. A failed
// page fetch yields an empty batch; a failed enrichment settles pub with the
// failure, which Run also returns.
func (p *Pipeline) Run(ctx context.Context, spec models.FilterSpec, pub *publish.Publisher) error {
	batchID := uuid.New()
	logger := p.logger.With("batch_id", batchID.String())

	target := p.builder.Build(spec)
	logger.Info("Scraping listing page", "url", target)

	var offers []models.Offer
	doc, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		logger.Warn("Page fetch failed, continuing with zero offers", "url", target, "error", err)
	} else {
		offers = p.extractor.Extract(ctx, doc, spec)
	}
	logger.Info("Offers extracted", "count", len(offers))

	enriched, err := p.enricher.Enrich(ctx, offers)
	if err != nil {
		logger.Error("Batch enrichment failed", "error", err)
		if pubErr := pub.Fail(err); pubErr != nil {
			return pubErr
		}
		return err
	}

	batch := models.Batch{
		ID:          batchID,
		Spec:        spec,
		Target:      target,
		Offers:      enriched,
		CompletedAt: time.Now(),
	}
	if err := pub.Publish(batch); err != nil {
		return err
	}
	logger.Info("Batch published", "count", len(enriched))
	return nil
}
