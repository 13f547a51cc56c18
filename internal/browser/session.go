package browser

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"nattapol/villaharvester/config"
	"nattapol/villaharvester/logger"
	"nattapol/villaharvester/pkg/errors"
)

// Session owns one browser process. Pages opened from it share the
// browser's cookie and session state.
type Session struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	log           *logger.Logger
}

// NewSession launches the browser with the configured binary, user
// agent and locale.
func NewSession(cfg *config.Config) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", cfg.Locale),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1366, 768),
	)
	if bin := findChromeBinary(cfg.ChromeBin); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}
	if cfg.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyServer))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	// Start the browser now so the first page open cannot mask a
	// launch failure.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, errors.NewNavigation("", "launch browser", err)
	}

	return &Session{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		log:           logger.ForBrowser(),
	}, nil
}

// NewPage opens a tab in the shared browser context.
func (s *Session) NewPage() PageDriver {
	ctx, cancel := chromedp.NewContext(s.browserCtx)
	return &page{ctx: ctx, cancel: cancel, log: s.log}
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}

type page struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *logger.Logger

	respMu       sync.Mutex
	respFilter   func(url string) bool
	respHandler  func(body []byte)
	respTracking map[network.RequestID]string
	listening    bool
}

func (p *page) Navigate(ctx context.Context, url, waitSelector string, timeout time.Duration) error {
	navCtx, cancel := p.scoped(ctx, timeout)
	defer cancel()

	actions := []chromedp.Action{
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := cdppage.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		chromedp.Navigate(url),
	}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
	}

	if err := chromedp.Run(navCtx, actions...); err != nil {
		return errors.NewNavigation(url, "navigate", err)
	}
	return nil
}

func (p *page) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := p.run(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", errors.NewNavigation("", "read document", err)
	}
	return html, nil
}

func (p *page) Evaluate(ctx context.Context, js string, out interface{}) error {
	runCtx, cancel := p.run(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Evaluate(js, out)); err != nil {
		return errors.NewNavigation("", "evaluate script", err)
	}
	return nil
}

func (p *page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := p.scoped(ctx, timeout)
	defer cancel()

	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return errors.NewNavigation("", "wait for "+selector, err)
	}
	return nil
}

func (p *page) Click(ctx context.Context, selector string, timeout time.Duration) error {
	clickCtx, cancel := p.scoped(ctx, timeout)
	defer cancel()

	if err := chromedp.Run(clickCtx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return errors.NewNavigation("", "click "+selector, err)
	}
	return nil
}

// OnJSONResponse wires the CDP network events: responses are matched on
// receive, their bodies pulled once loading has finished.
func (p *page) OnJSONResponse(filter func(url string) bool, handler func(body []byte)) {
	p.respMu.Lock()
	p.respFilter = filter
	p.respHandler = handler
	if p.respTracking == nil {
		p.respTracking = make(map[network.RequestID]string)
	}
	alreadyListening := p.listening
	p.listening = true
	p.respMu.Unlock()

	if alreadyListening {
		return
	}

	chromedp.ListenTarget(p.ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventResponseReceived:
			if e.Response == nil || e.Response.MimeType != "application/json" {
				return
			}
			p.respMu.Lock()
			if p.respFilter != nil && p.respFilter(e.Response.URL) {
				p.respTracking[e.RequestID] = e.Response.URL
			}
			p.respMu.Unlock()
		case *network.EventLoadingFinished:
			p.respMu.Lock()
			url, tracked := p.respTracking[e.RequestID]
			delete(p.respTracking, e.RequestID)
			handle := p.respHandler
			p.respMu.Unlock()
			if !tracked || handle == nil {
				return
			}
			go func(id network.RequestID, url string) {
				c := chromedp.FromContext(p.ctx)
				body, err := network.GetResponseBody(id).Do(cdp.WithExecutor(p.ctx, c.Target))
				if err != nil {
					p.log.Debug().Str("url", url).Err(err).Msg("Response body unavailable")
					return
				}
				handle(body)
			}(e.RequestID, url)
		}
	})
}

func (p *page) Close() {
	p.cancel()
}

// scoped derives a run context bounded by both the caller's context and
// the timeout.
func (p *page) scoped(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := p.run(ctx)
	if timeout <= 0 {
		return runCtx, cancel
	}
	timed, timedCancel := context.WithTimeout(runCtx, timeout)
	return timed, func() {
		timedCancel()
		cancel()
	}
}

// run keeps chromedp bound to this tab while honoring caller
// cancellation. Callers must invoke the cancel func once the call
// finishes, or the bridging goroutine outlives it.
func (p *page) run(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil || ctx == context.Background() {
		return p.ctx, func() {}
	}
	merged, cancel := context.WithCancel(p.ctx)
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-merged.Done():
		}
	}()
	return merged, cancel
}

// findChromeBinary resolves the browser binary: explicit configuration
// first, then the usual install names and paths.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
