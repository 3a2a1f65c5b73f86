package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"mspro-labs/flat-scout/internal/config"
)

// BrowserFetcher renders the page in a headless browser before parsing it.
// Use it when the listing is assembled client-side.
type BrowserFetcher struct {
	sel     config.Selectors
	Timeout time.Duration
}

func NewBrowserFetcher(sel config.Selectors) *BrowserFetcher {
	return &BrowserFetcher{sel: sel, Timeout: 90 * time.Second}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	browser, err := launchBrowser()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.MustClose()

	html, err := f.fetchHTML(ctx, browser, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func launchBrowser() (*rod.Browser, error) {
	l := launcher.New().Headless(true).NoSandbox(true)
	u, err := l.Launch()
	if err != nil {
		return nil, err
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return browser, nil
}

func (f *BrowserFetcher) fetchHTML(ctx context.Context, browser *rod.Browser, url string) (string, error) {
	page, err := stealth.Page(browser)
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.Timeout)

	if err := rod.Try(func() {
		page.MustNavigate(url)
		page.MustWaitStable()
	}); err != nil {
		return "", err
	}

	// Cookie consent is optional; a missing button is not a failure.
	if sel := f.sel.CookieButton; sel != "" {
		_ = rod.Try(func() {
			page.Timeout(5 * time.Second).MustElement(sel).MustClick()
			page.MustWaitStable()
		})
	}

	// A page without offers is valid, so waiting for the list is best-effort.
	_ = rod.Try(func() {
		page.Timeout(10 * time.Second).MustElement(f.sel.Offer)
	})

	return page.HTML()
}
