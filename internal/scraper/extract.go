package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mspro-labs/flat-scout/internal/config"
	"mspro-labs/flat-scout/internal/logging"
	"mspro-labs/flat-scout/internal/models"
)

// Extractor turns a listing page into offers.
type Extractor struct {
	sel    config.Selectors
	logger *slog.Logger
	// Now anchors relative dates ("dzisiaj", "wczoraj").
	Now func() time.Time
}

func NewExtractor(sel config.Selectors, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Extractor{
		sel:    sel,
		logger: logger.With("component", "Extractor"),
		Now:    time.Now,
	}
}

// Extract returns the well-formed offers of doc in page order. Malformed
// entries are dropped individually and reported at trace level.
func (e *Extractor) Extract(ctx context.Context, doc *goquery.Document, spec models.FilterSpec) []models.Offer {
	now := e.Now()
	seen := make(map[string]struct{})
	var offers []models.Offer

	doc.Find(e.sel.Offer).Each(func(i int, s *goquery.Selection) {
		offer, reason := e.extractOffer(ctx, s, spec, now)
		if reason == "" {
			if _, dup := seen[offer.Link]; dup {
				reason = "duplicate link"
			}
		}
		if reason != "" {
			e.logger.Log(ctx, logging.LevelTrace, "Offer rejected", "index", i, "reason", reason, "link", offer.Link)
			return
		}
		seen[offer.Link] = struct{}{}
		offers = append(offers, offer)
	})

	e.logger.Debug("Extracted offers", "count", len(offers))
	return offers
}

// extractOffer returns a non-empty reason when the entry must be dropped.
func (e *Extractor) extractOffer(ctx context.Context, s *goquery.Selection, spec models.FilterSpec, now time.Time) (models.Offer, string) {
	offer := models.Offer{
		OfferType: spec.OfferType,
		RoomType:  spec.RoomType,
	}

	link := s.Find(e.sel.Link).First()
	href, _ := link.Attr("href")
	offer.Link = strings.TrimSpace(href)
	if offer.Link == "" {
		return offer, "missing link"
	}

	if img := link.Find(e.sel.Image).First(); img.Length() > 0 {
		offer.PhotoURL, _ = img.Attr("src")
	}

	emphasis := s.Find(e.sel.Emphasis)
	if emphasis.Length() < 2 {
		return offer, "expected title and price"
	}
	offer.Title = strings.TrimSpace(emphasis.First().Text())
	if offer.Title == "" {
		return offer, "empty title"
	}

	price, err := ParsePrice(emphasis.Last().Text())
	if err != nil {
		return offer, err.Error()
	}
	offer.Price = price

	if dateEl := s.Find(e.sel.Date).First(); dateEl.Length() > 0 {
		published, err := ParseDate(dateEl.Text(), now)
		if err != nil {
			e.logger.Log(ctx, logging.LevelTrace, "Published date left unset", "link", offer.Link, "error", err)
		} else {
			offer.PublishedDate = &published
		}
	}

	offer.Place = strings.TrimSpace(s.Find(e.sel.Place).First().Text())
	if offer.Place == "" {
		return offer, "missing place"
	}

	return offer, ""
}
