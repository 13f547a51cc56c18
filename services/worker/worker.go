// Package worker runs the enrichment phase: it drains the queue of
// snapshots that have never had a detail pass, visits each detail
// page in a fresh browser tab and writes the extracted fields back
// through the store.
package worker

import (
	"context"
	stderrors "errors"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"nattapol/villaharvester/config"
	"nattapol/villaharvester/helpers"
	"nattapol/villaharvester/internal/browser"
	"nattapol/villaharvester/internal/enrich"
	"nattapol/villaharvester/internal/extract"
	"nattapol/villaharvester/internal/listing"
	"nattapol/villaharvester/internal/reconcile"
	"nattapol/villaharvester/internal/store"
	"nattapol/villaharvester/logger"
	"nattapol/villaharvester/pkg/errors"
	"nattapol/villaharvester/services/publisher"
)

const (
	descriptionSelector   = `[data-testid="property-description"]`
	facilityGroupSelector = `[data-testid="facility-group-container"]`
	scrollToFacilitiesJS  = `(() => {
		const box = document.querySelector('#hp_facilities_box');
		if (box) { box.scrollIntoView({behavior: "instant", block: "center"}); return true; }
		return false;
	})()`
)

// PageFactory opens fresh browser tabs. *browser.Session satisfies it.
type PageFactory interface {
	NewPage() browser.PageDriver
}

// Worker drives the enrichment passes.
type Worker struct {
	pages PageFactory
	store store.RecordStore
	pub   publisher.Publisher
	cfg   *config.Config
	log   *logger.Logger
}

// NewWorker creates a new enrichment worker. The publisher may be nil
// when no downstream consumers are configured.
func NewWorker(pages PageFactory, recordStore store.RecordStore, pub publisher.Publisher, cfg *config.Config) *Worker {
	return &Worker{
		pages: pages,
		store: recordStore,
		pub:   pub,
		cfg:   cfg,
		log:   logger.ForEnricher(),
	}
}

// Run drains the enrichment queue batch by batch and returns when a
// batch comes back empty. A failed item is logged and skipped; it
// stays in the queue for the next run unless its page yielded images.
// Items already attempted this run are not retried, so a page that
// never yields images cannot spin the loop.
func (w *Worker) Run(ctx context.Context) error {
	attempted := make(map[string]struct{})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := w.store.FindNeedingEnrichment(ctx, w.cfg.EnrichBatchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			w.log.Info().Msg("Enrichment queue drained")
			return nil
		}

		fresh := batch[:0]
		for _, snapshot := range batch {
			if _, done := attempted[snapshot.ExternalID]; done {
				continue
			}
			attempted[snapshot.ExternalID] = struct{}{}
			fresh = append(fresh, snapshot)
		}
		if len(fresh) == 0 {
			w.log.Info().Int("remaining", len(batch)).Msg("No unattempted snapshots left, stopping")
			return nil
		}
		w.log.Info().Int("batch", len(fresh)).Msg("Enriching snapshots")

		w.runBatch(ctx, fresh)

		if w.pub != nil {
			if err := w.pub.TrimStreams(); err != nil {
				logger.LogError("enricher", err, "Failed to trim streams")
			}
		}
	}
}

// runBatch fans the batch out over a bounded number of tabs.
func (w *Worker) runBatch(ctx context.Context, batch []listing.Snapshot) {
	concurrency := w.cfg.EnrichConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	for _, snapshot := range batch {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(snapshot listing.Snapshot) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := w.enrichOne(ctx, snapshot); err != nil {
				logger.LogError("enricher", err, "Failed to enrich %s", snapshot.Slug)
			}
			sleepCtx(ctx, jitter(w.cfg.MinSleep, w.cfg.MaxSleep))
		}(snapshot)
	}
	wg.Wait()
}

// enrichOne loads one detail page, extracts everything it offers and
// merges the result under the enrichment phase.
func (w *Worker) enrichOne(ctx context.Context, snapshot listing.Snapshot) error {
	log := logger.ForListing("enricher", snapshot.Slug)
	log.Info().Msg("Visiting detail page")

	page := w.pages.NewPage()
	defer page.Close()

	if err := page.Navigate(ctx, detailURL(snapshot.SourceURL), descriptionSelector, w.cfg.NavTimeout); err != nil {
		return errors.NewNavigation(snapshot.Slug, "load detail page", err)
	}

	// The facility section renders lazily; scroll it into view and
	// give it a moment. A page without one is still worth parsing.
	var scrolled bool
	_ = page.Evaluate(ctx, scrollToFacilitiesJS, &scrolled)
	if scrolled {
		_ = page.WaitVisible(ctx, facilityGroupSelector, 5*time.Second)
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return errors.NewNavigation(snapshot.Slug, "read page content", err)
	}
	doc, err := extract.NewDocument(html)
	if err != nil {
		return errors.NewParsing(snapshot.Slug, "parse detail page", err)
	}

	partial := extract.ParseDetailPage(doc)
	enrich.Apply(&partial, snapshot.District)
	partial.ExternalID = snapshot.ExternalID
	partial.Slug = snapshot.Slug

	if err := w.store.Upsert(ctx, reconcile.PhaseEnrich, partial); err != nil {
		var pipeErr *errors.PipelineError
		if stderrors.As(err, &pipeErr) && pipeErr.IsBenign() {
			log.Debug().Msg("Concurrent write already holds this slug")
		} else {
			return err
		}
	}
	log.Info().
		Int("images", len(partial.Images)).
		Int("tags", len(partial.Tags)).
		Msg("Enriched")

	if w.pub != nil {
		merged := reconcile.Merge(&snapshot, partial, reconcile.PhaseEnrich, time.Now().UTC())
		if err := w.pub.PublishListing(merged); err != nil {
			logger.LogError("enricher", err, "Failed to publish %s", snapshot.Slug)
		}
	}
	return nil
}

// detailURL pins language, currency and a priced stay onto the stored
// detail-page URL.
func detailURL(sourceURL string) string {
	checkIn, checkOut := helpers.StayDates(time.Now())
	params := url.Values{}
	params.Set("lang", "th")
	params.Set("selected_currency", "THB")
	params.Set("checkin", checkIn)
	params.Set("checkout", checkOut)
	params.Set("group_adults", "2")
	params.Set("no_rooms", "1")
	return sourceURL + "?" + params.Encode()
}

func jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
