package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nattapol/villaharvester/config"
)

const resultCardsHTML = `
<div id="search_results_table">
	<div data-testid="property-card">
		<a data-testid="title-link" href="/hotel/th/baan-suan-villa.th.html?checkin=2026-12-28&amp;group_adults=2">
			<div data-testid="title">Baan Suan Private Pool Villa</div>
		</a>
		<img data-testid="image" src="https://cf.bstatic.com/images/hotel/square240/baan.jpg"/>
		<span data-testid="price-and-discounted-price">฿ 12,500</span>
		<a data-testid="review-score-link"><div>8.9</div><div>Excellent</div></a>
	</div>
	<div data-testid="property-card">
		<a href="https://www.booking.com/hotel/th/lanta-breeze.html">
			<div data-testid="title">Lanta Breeze</div>
		</a>
	</div>
	<div data-testid="property-card">
		<a data-testid="title-link" href="/sustainability-badge">
			<div data-testid="title">No detail page</div>
		</a>
	</div>
</div>`

func TestScanCards(t *testing.T) {
	krabi := config.TargetLocation{Name: "Ko Lanta", Province: "Krabi"}

	partials, err := ScanCards(resultCardsHTML, krabi)
	require.NoError(t, err)
	require.Len(t, partials, 2, "cards without a detail-page link are skipped")

	first := partials[0]
	assert.Equal(t, "baan-suan-villa", first.ExternalID, "slug serves as the identifier on this path")
	assert.Equal(t, "baan-suan-villa", first.Slug)
	assert.Equal(t, "Baan Suan Private Pool Villa", first.Title)
	assert.Equal(t, "Krabi", first.Province)
	assert.Equal(t, "Ko Lanta", first.District)
	require.NotNil(t, first.PriceDaily)
	assert.Equal(t, 12500, *first.PriceDaily)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 8.9, *first.Rating)
	assert.Equal(t, "https://cf.bstatic.com/images/hotel/square240/baan.jpg", first.CoverImage)
	assert.Equal(t, "https://www.booking.com/hotel/th/baan-suan-villa.th.html", first.SourceURL)

	second := partials[1]
	assert.Equal(t, "lanta-breeze", second.Slug, "plain anchors still count when no title-link is present")
	assert.Equal(t, "Lanta Breeze", second.Title)
	require.NotNil(t, second.PriceDaily)
	assert.Equal(t, 0, *second.PriceDaily)
	assert.Equal(t, "https://www.booking.com/hotel/th/lanta-breeze.html", second.SourceURL)
}

func TestScanCardsEmptyPage(t *testing.T) {
	partials, err := ScanCards(`<html><body><p>no results</p></body></html>`, config.TargetLocation{Name: "Phuket"})
	require.NoError(t, err)
	assert.Empty(t, partials)
}
