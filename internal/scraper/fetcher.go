package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"

	"mspro-labs/flat-scout/internal/config"
)

// ErrNoDocument is returned when a fetch finishes without a page body.
var ErrNoDocument = errors.New("no document received")

// Fetcher loads a listing page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// NewFetcher picks the fetcher configured for the site.
func NewFetcher(cfg *config.SiteConfig) Fetcher {
	if cfg.Fetcher == config.FetcherBrowser {
		return NewBrowserFetcher(cfg.Selectors)
	}
	return NewCollyFetcher(cfg.UserAgent)
}

// CollyFetcher fetches pages over plain HTTP.
type CollyFetcher struct {
	// parent collector; every fetch works on a clone with its own callbacks
	collector *colly.Collector
	userAgent string
}

// NewCollyFetcher rotates real browser user agents unless userAgent is set.
func NewCollyFetcher(userAgent string) *CollyFetcher {
	c := colly.NewCollector(colly.AllowURLRevisit())
	if userAgent != "" {
		c.UserAgent = userAgent
	}
	return &CollyFetcher{collector: c, userAgent: userAgent}
}

func (f *CollyFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := f.collector.Clone()
	if f.userAgent == "" {
		extensions.RandomUserAgent(c)
	}
	extensions.Referer(c)

	var doc *goquery.Document
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		d, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			fetchErr = fmt.Errorf("failed to parse HTML from %s: %w", r.Request.URL, err)
			return
		}
		d.Url = r.Request.URL
		doc = d
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("request %s failed with status %d: %w", r.Request.URL, r.StatusCode, err)
	})

	visitErr := c.Visit(url)
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if visitErr != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", url, visitErr)
	}
	if doc == nil {
		return nil, ErrNoDocument
	}
	return doc, nil
}
