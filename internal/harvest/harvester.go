// Package harvest discovers listings from the search surface. Two
// engines feed the same snapshot shape: a JSON listener decoding the
// search backend's responses as they stream in, and an HTML sweep of
// the rendered result cards catching whatever the listener missed.
package harvest

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"nattapol/villaharvester/config"
	"nattapol/villaharvester/helpers"
	"nattapol/villaharvester/internal/browser"
	"nattapol/villaharvester/internal/listing"
	"nattapol/villaharvester/internal/reconcile"
	"nattapol/villaharvester/internal/store"
	"nattapol/villaharvester/logger"
	"nattapol/villaharvester/pkg/errors"
	"nattapol/villaharvester/services/cache"
)

const (
	searchBaseURL   = "https://www.booking.com/searchresults.th.html"
	poolVillaFilter = "ht_id=213"
	cooldownKey     = "villaharvester:harvested:"
	popupDismissJS  = `(() => {
		const btn = document.querySelector('button[aria-label="ปิดข้อมูลเกี่ยวกับการเข้าสู่ระบบ"]');
		if (btn) { btn.click(); return true; }
		return false;
	})()`
	cardCountJS      = `document.querySelectorAll('[data-testid="property-card"]').length`
	loadMoreSelector = `[data-testid="show-more-results-button"]`
	loadMoreJS       = `(() => {
		for (const btn of document.querySelectorAll('button')) {
			const text = btn.textContent || '';
			if (text.includes('โหลดผลการค้นหาเพิ่มเติม') || text.includes('Load more results')) {
				btn.click();
				return true;
			}
		}
		return false;
	})()`
	scrollBottomJS = `window.scrollTo(0, document.body.scrollHeight)`
	pageHeightJS   = `document.body.scrollHeight`
)

// Harvester runs the discovery phase over the configured target
// locations. One run keeps its own seen-set, so restarting the
// process restarts deduplication from the store's constraints alone.
type Harvester struct {
	driver browser.PageDriver
	store  store.RecordStore
	cache  cache.CacheService
	cfg    *config.Config
	log    *logger.Logger

	mu             sync.Mutex
	location       config.TargetLocation
	seen           map[string]struct{}
	seenByProvince map[string][]string
	partialSweep   map[string]bool
}

// New creates a harvester writing through the given store. The cache
// is optional; without it every run revisits every location.
func New(driver browser.PageDriver, recordStore store.RecordStore, cacheService cache.CacheService, cfg *config.Config) *Harvester {
	return &Harvester{
		driver: driver,
		store:  recordStore,
		cache:  cacheService,
		cfg:    cfg,
		log:    logger.ForHarvester(),
	}
}

// Run sweeps every configured location once. The JSON listener stays
// registered for the whole run; the current location context tells it
// which province to stamp on captured items.
func (h *Harvester) Run(ctx context.Context) error {
	h.mu.Lock()
	h.seen = make(map[string]struct{})
	h.seenByProvince = make(map[string][]string)
	h.partialSweep = make(map[string]bool)
	h.mu.Unlock()

	h.driver.OnJSONResponse(FeedURLFilter, func(body []byte) {
		h.mu.Lock()
		location := h.location
		h.mu.Unlock()

		partials, err := ParseFeed(body, location)
		if err != nil {
			h.log.Debug().Err(err).Msg("Search payload not decodable")
			return
		}
		if saved := h.saveBatch(ctx, partials); saved > 0 {
			h.log.Info().Int("count", saved).Msg("Captured items from JSON feed")
		}
	})

	for _, location := range h.cfg.Locations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if h.onCooldown(location) {
			h.log.Info().Str("location", location.Name).Msg("Recently harvested, skipping")
			h.markPartial(location.Province)
			continue
		}

		h.mu.Lock()
		h.location = location
		h.mu.Unlock()

		h.log.Info().
			Str("location", location.Name).
			Str("province", location.Province).
			Msg("Harvesting location")

		if err := h.processLocation(ctx, location); err != nil {
			h.log.Error().Str("location", location.Name).Err(err).Msg("Location failed")
			h.markPartial(location.Province)
			continue
		}
		h.markHarvested(location)

		// Polite pause between locations.
		sleepCtx(ctx, jitter(h.cfg.MinSleep, h.cfg.MaxSleep))
	}

	if ctx.Err() == nil {
		h.retireUnseen(ctx)
	}
	return nil
}

// retireUnseen soft-retires snapshots that no longer appear in the
// results, per province. Provinces whose sweep was skipped or failed
// are left alone: an incomplete seen-set would retire live listings.
func (h *Harvester) retireUnseen(ctx context.Context) {
	h.mu.Lock()
	byProvince := h.seenByProvince
	partial := h.partialSweep
	h.mu.Unlock()

	for province, ids := range byProvince {
		if partial[province] || len(ids) == 0 {
			continue
		}
		retired, err := h.store.Deactivate(ctx, province, ids)
		if err != nil {
			logger.LogError("harvester", err, "Failed to retire unseen snapshots in %s", province)
			continue
		}
		if retired > 0 {
			h.log.Info().Str("province", province).Int64("count", retired).Msg("Retired unseen snapshots")
		}
	}
}

func (h *Harvester) markPartial(province string) {
	h.mu.Lock()
	h.partialSweep[province] = true
	h.mu.Unlock()
}

// processLocation navigates to the filtered search page and alternates
// scan and load-more rounds until the result list stops growing or the
// round cap is reached.
func (h *Harvester) processLocation(ctx context.Context, location config.TargetLocation) error {
	checkIn, checkOut := helpers.StayDates(time.Now())
	h.log.Info().Str("checkin", checkIn).Msg("Targeting date")

	target := searchURL(location.Name, checkIn, checkOut)
	if err := h.driver.Navigate(ctx, target, cardSelector, h.cfg.NavTimeout); err != nil {
		h.log.Warn().Err(err).Msg("Browser navigation failed, falling back to plain fetch")
		return h.sweepStatic(ctx, location, target)
	}
	h.dismissPopup(ctx)

	for round := 0; round < h.cfg.MaxLoadMoreRounds; round++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		h.log.Debug().Int("round", round+1).Msg("Scanning")
		h.gentleScroll(ctx)

		if err := h.sweepCards(ctx, location); err != nil {
			h.log.Warn().Err(err).Msg("Card sweep failed")
		}

		before := h.cardCount(ctx)
		h.log.Debug().Int("cards", before).Msg("Current cards")

		_ = h.driver.Evaluate(ctx, scrollBottomJS, nil)
		sleepCtx(ctx, time.Second)
		h.dismissPopup(ctx)

		if !h.clickLoadMore(ctx) {
			h.log.Info().Msg("No load-more button, finished")
			return nil
		}
		if !h.waitForGrowth(ctx, before, 15*time.Second) {
			h.log.Info().Msg("Clicked but no new items appeared, end of list")
			return nil
		}

		sleepCtx(ctx, jitter(2*time.Second, 4*time.Second))
	}
	return nil
}

// sweepCards parses the rendered page and persists every card not yet
// seen this run.
func (h *Harvester) sweepCards(ctx context.Context, location config.TargetLocation) error {
	html, err := h.driver.HTML(ctx)
	if err != nil {
		return err
	}
	partials, err := ScanCards(html, location)
	if err != nil {
		return err
	}
	if saved := h.saveBatch(ctx, partials); saved > 0 {
		h.log.Info().Int("count", saved).Msg("Swept items from result cards")
	}
	return nil
}

// saveBatch upserts each partial under the harvest phase. Benign
// conflicts count as saved; other failures are logged and skipped.
func (h *Harvester) saveBatch(ctx context.Context, partials []listing.PartialFields) int {
	saved := 0
	for _, partial := range partials {
		h.mu.Lock()
		_, dup := h.seen[partial.ExternalID]
		h.mu.Unlock()
		if dup {
			continue
		}

		if err := h.store.Upsert(ctx, reconcile.PhaseHarvest, partial); err != nil {
			var pipeErr *errors.PipelineError
			if stderrors.As(err, &pipeErr) && pipeErr.IsBenign() {
				h.log.Debug().Str("slug", partial.Slug).Msg("Duplicate slug, skipping")
			} else {
				logger.LogError("harvester", err, "Failed to save %s", partial.Slug)
				continue
			}
		}

		h.mu.Lock()
		h.seen[partial.ExternalID] = struct{}{}
		h.seenByProvince[partial.Province] = append(h.seenByProvince[partial.Province], partial.ExternalID)
		h.mu.Unlock()
		saved++
	}
	return saved
}

// sweepStatic fetches the search page without a browser and scans
// whatever cards the static markup carries. Only the first page of
// results is reachable this way.
func (h *Harvester) sweepStatic(ctx context.Context, location config.TargetLocation, target string) error {
	reader, err := helpers.FetchWithRandomHeaders(target)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	partials, err := ScanCards(string(body), location)
	if err != nil {
		return err
	}
	if saved := h.saveBatch(ctx, partials); saved > 0 {
		h.log.Info().Int("count", saved).Msg("Swept items from static page")
	}
	return nil
}

// gentleScroll steps down the page in half-screen increments so lazy
// content gets a chance to load, then settles at the bottom.
func (h *Harvester) gentleScroll(ctx context.Context) {
	current := 0
	for i := 0; i < 200; i++ {
		current += 600
		_ = h.driver.Evaluate(ctx, fmt.Sprintf("window.scrollTo(0, %d)", current), nil)
		sleepCtx(ctx, jitter(500*time.Millisecond, 800*time.Millisecond))

		var height int
		if err := h.driver.Evaluate(ctx, pageHeightJS, &height); err != nil {
			return
		}
		if current < height {
			continue
		}

		_ = h.driver.Evaluate(ctx, scrollBottomJS, nil)
		sleepCtx(ctx, time.Second)

		var final int
		if err := h.driver.Evaluate(ctx, pageHeightJS, &final); err != nil || final == height {
			return
		}
	}
}

// waitForGrowth polls the card count until it exceeds before or the
// budget runs out.
func (h *Harvester) waitForGrowth(ctx context.Context, before int, budget time.Duration) bool {
	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) {
		if h.cardCount(ctx) > before {
			return true
		}
		sleepCtx(ctx, 500*time.Millisecond)
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}

func (h *Harvester) cardCount(ctx context.Context) int {
	var count int
	_ = h.driver.Evaluate(ctx, cardCountJS, &count)
	return count
}

// clickLoadMore presses the load-more button, preferring the stable
// test-id selector and falling back to a button text scan when the
// markup drops it.
func (h *Harvester) clickLoadMore(ctx context.Context) bool {
	if err := h.driver.Click(ctx, loadMoreSelector, 2*time.Second); err == nil {
		return true
	}
	var clicked bool
	if err := h.driver.Evaluate(ctx, loadMoreJS, &clicked); err != nil {
		return false
	}
	return clicked
}

func (h *Harvester) dismissPopup(ctx context.Context) {
	var dismissed bool
	_ = h.driver.Evaluate(ctx, popupDismissJS, &dismissed)
	if dismissed {
		sleepCtx(ctx, 500*time.Millisecond)
	}
}

func (h *Harvester) onCooldown(location config.TargetLocation) bool {
	if h.cache == nil || h.cfg.HarvestCooldown <= 0 {
		return false
	}
	_, err := h.cache.Get(cooldownKey + location.Name)
	if err == nil {
		return true
	}
	if !cache.IsMiss(err) {
		h.log.Warn().Err(err).Str("location", location.Name).Msg("Cooldown lookup failed, harvesting anyway")
	}
	return false
}

func (h *Harvester) markHarvested(location config.TargetLocation) {
	if h.cache == nil || h.cfg.HarvestCooldown <= 0 {
		return
	}
	// Add, not Set: when a parallel run already stamped the marker its
	// cooldown window stands.
	err := h.cache.Add(cooldownKey+location.Name, []byte(time.Now().Format(time.RFC3339)), h.cfg.HarvestCooldown)
	if err != nil && !cache.IsNotStored(err) {
		h.log.Warn().Err(err).Msg("Failed to record harvest cooldown")
	}
}

// searchURL builds the filtered pool-villa search URL for a location.
func searchURL(city, checkIn, checkOut string) string {
	params := url.Values{}
	params.Set("ss", city)
	params.Set("nflt", poolVillaFilter)
	params.Set("group_adults", "2")
	params.Set("no_rooms", "1")
	params.Set("checkin", checkIn)
	params.Set("checkout", checkOut)
	return searchBaseURL + "?" + params.Encode()
}

func jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// sleepCtx sleeps unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
