// Package browser wraps chromedp behind the page-driver capability the
// pipeline needs: navigate and wait, read the rendered document, run
// scripts, and observe JSON responses. One Session owns the browser
// process; each worker opens its own Page (tab) against the shared
// session so cookies and anti-bot state carry across navigations.
package browser

import (
	"context"
	"time"
)

// PageDriver is the rendering capability used by the harvester and the
// enrichment worker.
type PageDriver interface {
	// Navigate loads url and, when waitSelector is non-empty, blocks
	// until it is visible or the timeout expires.
	Navigate(ctx context.Context, url, waitSelector string, timeout time.Duration) error

	// HTML returns the current rendered document.
	HTML(ctx context.Context) (string, error)

	// Evaluate runs a script in the page, decoding the result into out
	// when out is non-nil.
	Evaluate(ctx context.Context, js string, out interface{}) error

	// WaitVisible blocks until the selector is visible or the timeout
	// expires.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// Click dispatches a click on the first visible match.
	Click(ctx context.Context, selector string, timeout time.Duration) error

	// OnJSONResponse registers a handler for JSON response bodies whose
	// URL passes the filter. Handlers run on a background goroutine and
	// must not touch the page.
	OnJSONResponse(filter func(url string) bool, handler func(body []byte))

	Close()
}

// stealthScript runs before every document load to mask the obvious
// automation fingerprints.
const stealthScript = `
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
	window.chrome = { runtime: {} };
	Object.defineProperty(navigator, 'languages', { get: () => ['th-TH', 'th', 'en-US', 'en'] });
	Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
`
