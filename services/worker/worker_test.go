package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nattapol/villaharvester/config"
	"nattapol/villaharvester/internal/browser"
	"nattapol/villaharvester/internal/listing"
	"nattapol/villaharvester/internal/reconcile"
	pipelineErrors "nattapol/villaharvester/pkg/errors"
)

const detailPageHTML = `<html><body>
<div data-testid="property-description">A private pool villa near the beach.</div>
<div data-testid="GalleryUnifiedDesktop-wrapper">
	<img src="https://cf.bstatic.com/images/hotel/max500/123/one.jpg?k=abc123&o=1"/>
	<img src="https://cf.bstatic.com/images/hotel/max300/456/two.jpg"/>
</div>
<div data-testid="review-score-component">
	<div aria-hidden="true">8.8</div>
	<div>42 reviews</div>
</div>
</body></html>`

// mockPage serves a canned detail page.
type mockPage struct {
	mu        sync.Mutex
	html      string
	navErr    error
	navigated []string
	closed    bool
}

var _ browser.PageDriver = (*mockPage)(nil)

func (m *mockPage) Navigate(_ context.Context, url, _ string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigated = append(m.navigated, url)
	return m.navErr
}

func (m *mockPage) HTML(context.Context) (string, error) { return m.html, nil }

func (m *mockPage) Evaluate(_ context.Context, _ string, out interface{}) error {
	if b, ok := out.(*bool); ok {
		*b = true
	}
	return nil
}

func (m *mockPage) WaitVisible(context.Context, string, time.Duration) error { return nil }
func (m *mockPage) Click(context.Context, string, time.Duration) error       { return nil }
func (m *mockPage) OnJSONResponse(func(string) bool, func([]byte))           {}
func (m *mockPage) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

type mockFactory struct{ page *mockPage }

func (f *mockFactory) NewPage() browser.PageDriver { return f.page }

// mockStore hands out one batch, then reports the queue drained.
type mockStore struct {
	mu        sync.Mutex
	batch     []listing.Snapshot
	served    bool
	upserts   []upsertCall
	upsertErr error
}

type upsertCall struct {
	phase   reconcile.Phase
	partial listing.PartialFields
}

func (m *mockStore) FindNeedingEnrichment(context.Context, int) ([]listing.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.served {
		return nil, nil
	}
	m.served = true
	return m.batch, nil
}

func (m *mockStore) Upsert(_ context.Context, phase reconcile.Phase, in listing.PartialFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, upsertCall{phase: phase, partial: in})
	return m.upsertErr
}

func (m *mockStore) Deactivate(context.Context, string, []string) (int64, error) { return 0, nil }

func (m *mockStore) Close() error { return nil }

type mockPublisher struct {
	mu        sync.Mutex
	published []listing.Snapshot
	trims     int
}

func (m *mockPublisher) PublishListing(s listing.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, s)
	return nil
}

func (m *mockPublisher) TrimStreams() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trims++
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		EnrichBatchSize:   10,
		EnrichConcurrency: 1,
		NavTimeout:        time.Second,
	}
}

func TestWorkerEnrichesBatch(t *testing.T) {
	page := &mockPage{html: detailPageHTML}
	recordStore := &mockStore{batch: []listing.Snapshot{{
		ID:         1,
		ExternalID: "7711695",
		Slug:       "baan-talay-pool-villa",
		Title:      "Baan Talay Pool Villa",
		Province:   "Phuket",
		District:   "Rawai",
		PriceDaily: 8500,
		SourceURL:  "https://www.booking.com/hotel/th/baan-talay-pool-villa.html",
		IsActive:   true,
	}}}
	pub := &mockPublisher{}

	w := NewWorker(&mockFactory{page: page}, recordStore, pub, testConfig())
	require.NoError(t, w.Run(context.Background()))

	require.Len(t, page.navigated, 1)
	visited := page.navigated[0]
	assert.True(t, strings.HasPrefix(visited, "https://www.booking.com/hotel/th/baan-talay-pool-villa.html?"))
	assert.Contains(t, visited, "lang=th")
	assert.Contains(t, visited, "selected_currency=THB")
	assert.Contains(t, visited, "checkin=")
	assert.True(t, page.closed)

	require.Len(t, recordStore.upserts, 1)
	call := recordStore.upserts[0]
	assert.Equal(t, reconcile.PhaseEnrich, call.phase)
	assert.Equal(t, "7711695", call.partial.ExternalID)
	assert.Equal(t, "baan-talay-pool-villa", call.partial.Slug)
	assert.Equal(t, []string{
		"https://cf.bstatic.com/images/hotel/max1280x900/123/one.jpg?k=abc123",
		"https://cf.bstatic.com/images/hotel/max1280x900/456/two.jpg",
	}, call.partial.Images)
	require.NotNil(t, call.partial.Rating)
	assert.Equal(t, 8.8, *call.partial.Rating)

	require.Len(t, pub.published, 1)
	merged := pub.published[0]
	assert.Equal(t, "baan-talay-pool-villa", merged.Slug)
	assert.Len(t, merged.Images, 2)
	assert.Equal(t, 8500, merged.PriceDaily, "stored price survives a page without a room table")
	assert.Equal(t, 1, pub.trims)
}

func TestWorkerIsolatesFailures(t *testing.T) {
	page := &mockPage{html: detailPageHTML, navErr: errors.New("net::ERR_TIMED_OUT")}
	recordStore := &mockStore{batch: []listing.Snapshot{
		{ExternalID: "1", Slug: "villa-one", SourceURL: "https://www.booking.com/hotel/th/villa-one.html"},
	}}

	w := NewWorker(&mockFactory{page: page}, recordStore, nil, testConfig())
	require.NoError(t, w.Run(context.Background()), "one broken page must not abort the run")
	assert.Empty(t, recordStore.upserts)
}

func TestWorkerToleratesBenignConflict(t *testing.T) {
	page := &mockPage{html: detailPageHTML}
	recordStore := &mockStore{
		batch: []listing.Snapshot{{
			ExternalID: "1",
			Slug:       "villa-one",
			SourceURL:  "https://www.booking.com/hotel/th/villa-one.html",
		}},
		upsertErr: pipelineErrors.NewConflict("villa-one", "slug already present", nil),
	}
	pub := &mockPublisher{}

	w := NewWorker(&mockFactory{page: page}, recordStore, pub, testConfig())
	require.NoError(t, w.Run(context.Background()))

	// A concurrent writer holding the row is not an item failure:
	// the merged snapshot is still published.
	require.Len(t, pub.published, 1)
	assert.Equal(t, "villa-one", pub.published[0].Slug)
}

func TestWorkerStopsOnEmptyQueue(t *testing.T) {
	recordStore := &mockStore{}
	w := NewWorker(&mockFactory{page: &mockPage{}}, recordStore, nil, testConfig())
	require.NoError(t, w.Run(context.Background()))
}

func TestWorkerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recordStore := &mockStore{batch: []listing.Snapshot{{ExternalID: "1", Slug: "v"}}}
	w := NewWorker(&mockFactory{page: &mockPage{}}, recordStore, nil, testConfig())
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
}
