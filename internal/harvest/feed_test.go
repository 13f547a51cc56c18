package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nattapol/villaharvester/config"
)

var phuket = config.TargetLocation{Name: "Phuket", Province: "Phuket"}

const graphqlPayload = `{
	"data": {
		"searchQueries": {
			"search": {
				"results": [
					{
						"basicPropertyData": {
							"id": 7711695,
							"pageName": "baan-talay-pool-villa",
							"location": {"city": "Rawai", "address": "55/5 Soi Samakki 2"},
							"photos": {"main": {"highResUrl": {"relativeUrl": "/images/hotel/max500/771.jpg"}}},
							"reviewScore": {"score": 9.1, "reviewCount": 204}
						},
						"displayName": {"text": "Baan Talay Pool Villa"},
						"blocks": [{"finalPrice": {"amount": 8500.0}}]
					},
					{
						"displayName": {"text": "Card without property data"}
					}
				]
			}
		}
	}
}`

func TestParseFeedGraphQLEnvelope(t *testing.T) {
	partials, err := ParseFeed([]byte(graphqlPayload), phuket)
	require.NoError(t, err)
	require.Len(t, partials, 1, "entries without basicPropertyData are skipped")

	p := partials[0]
	assert.Equal(t, "7711695", p.ExternalID)
	assert.Equal(t, "baan-talay-pool-villa", p.Slug)
	assert.Equal(t, "Baan Talay Pool Villa", p.Title)
	assert.Equal(t, "Phuket", p.Province)
	assert.Equal(t, "Rawai", p.District)
	assert.Equal(t, "55/5 Soi Samakki 2", p.Address)
	require.NotNil(t, p.PriceDaily)
	assert.Equal(t, 8500, *p.PriceDaily)
	require.NotNil(t, p.Rating)
	assert.Equal(t, 9.1, *p.Rating)
	require.NotNil(t, p.ReviewCount)
	assert.Equal(t, 204, *p.ReviewCount)
	assert.Equal(t, "https://cf.bstatic.com/images/hotel/max500/771.jpg", p.CoverImage)
	assert.Equal(t, "https://www.booking.com/hotel/th/baan-talay-pool-villa.html", p.SourceURL)
}

func TestParseFeedTopLevelResults(t *testing.T) {
	payload := `{
		"results": [
			{
				"basicPropertyData": {"id": 42},
				"blocks": []
			}
		]
	}`

	partials, err := ParseFeed([]byte(payload), phuket)
	require.NoError(t, err)
	require.Len(t, partials, 1)

	p := partials[0]
	assert.Equal(t, "42", p.ExternalID)
	assert.Equal(t, "villa-42", p.Slug, "missing pageName falls back to the id")
	assert.Equal(t, "Unknown", p.Title)
	assert.Equal(t, "Phuket", p.District, "missing city falls back to the target location")
	require.NotNil(t, p.PriceDaily)
	assert.Equal(t, 0, *p.PriceDaily)
	assert.Empty(t, p.CoverImage)
}

func TestParseFeedRepairsTruncatedJSON(t *testing.T) {
	// Connection dropped mid-response: the closing braces are missing.
	truncated := `{"results": [{"basicPropertyData": {"id": 99, "pageName": "cut-short"}`

	partials, err := ParseFeed([]byte(truncated), phuket)
	require.NoError(t, err)
	require.Len(t, partials, 1)
	assert.Equal(t, "99", partials[0].ExternalID)
	assert.Equal(t, "cut-short", partials[0].Slug)
}

func TestParseFeedUnusablePayload(t *testing.T) {
	_, err := ParseFeed([]byte(`["not", "an", "object"]`), phuket)
	assert.Error(t, err)
}

func TestParseFeedEmptyResults(t *testing.T) {
	partials, err := ParseFeed([]byte(`{"data": {}}`), phuket)
	require.NoError(t, err)
	assert.Empty(t, partials)
}

func TestFeedURLFilter(t *testing.T) {
	assert.True(t, FeedURLFilter("https://www.booking.com/dml/graphql?lang=th"))
	assert.True(t, FeedURLFilter("https://www.booking.com/searchresults.th.html?ss=Phuket"))
	assert.False(t, FeedURLFilter("https://cf.bstatic.com/images/hotel/max500/771.jpg"))
}
