package harvest

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"nattapol/villaharvester/config"
	"nattapol/villaharvester/internal/listing"
	"nattapol/villaharvester/pkg/errors"
)

const imageBaseURL = "https://cf.bstatic.com"

// searchPayload mirrors the two shapes the search backend answers
// with: results nested under the query envelope, or at the top level.
type searchPayload struct {
	Data struct {
		SearchQueries struct {
			Search struct {
				Results []feedResult `json:"results"`
			} `json:"search"`
		} `json:"searchQueries"`
	} `json:"data"`
	Results []feedResult `json:"results"`
}

type feedResult struct {
	BasicPropertyData *basicPropertyData `json:"basicPropertyData"`
	DisplayName       struct {
		Text string `json:"text"`
	} `json:"displayName"`
	Blocks []struct {
		FinalPrice struct {
			Amount float64 `json:"amount"`
		} `json:"finalPrice"`
	} `json:"blocks"`
}

type basicPropertyData struct {
	ID       json.Number `json:"id"`
	PageName string      `json:"pageName"`
	Location struct {
		City    string `json:"city"`
		Address string `json:"address"`
	} `json:"location"`
	Photos struct {
		Main struct {
			HighResURL struct {
				RelativeURL string `json:"relativeUrl"`
			} `json:"highResUrl"`
		} `json:"main"`
	} `json:"photos"`
	ReviewScore struct {
		Score       float64 `json:"score"`
		ReviewCount int     `json:"reviewCount"`
	} `json:"reviewScore"`
}

// ParseFeed decodes one captured search-result payload into partial
// snapshot records. Truncated or otherwise broken JSON is run through
// repair before giving up.
func ParseFeed(body []byte, location config.TargetLocation) ([]listing.PartialFields, error) {
	var payload searchPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(body))
		if repairErr != nil {
			return nil, errors.NewParsing("", "decode search payload", err)
		}
		if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
			return nil, errors.NewParsing("", "decode repaired search payload", err)
		}
	}

	results := payload.Data.SearchQueries.Search.Results
	if len(results) == 0 {
		results = payload.Results
	}

	var partials []listing.PartialFields
	for _, result := range results {
		basic := result.BasicPropertyData
		if basic == nil || basic.ID.String() == "" {
			continue
		}

		externalID := basic.ID.String()
		slug := basic.PageName
		if slug == "" {
			slug = "villa-" + externalID
		}

		title := result.DisplayName.Text
		if title == "" {
			title = "Unknown"
		}

		district := basic.Location.City
		if district == "" {
			district = location.Name
		}

		coverImage := ""
		if rel := basic.Photos.Main.HighResURL.RelativeURL; rel != "" {
			coverImage = imageBaseURL + rel
		}

		price := 0
		if len(result.Blocks) > 0 {
			price = int(result.Blocks[0].FinalPrice.Amount)
		}

		partials = append(partials, listing.PartialFields{
			ExternalID:  externalID,
			Slug:        slug,
			Title:       title,
			Province:    location.Province,
			District:    district,
			Address:     basic.Location.Address,
			PriceDaily:  listing.IntPtr(price),
			Rating:      listing.FloatPtr(basic.ReviewScore.Score),
			ReviewCount: listing.IntPtr(basic.ReviewScore.ReviewCount),
			CoverImage:  coverImage,
			SourceURL:   "https://www.booking.com/hotel/th/" + slug + ".html",
		})
	}
	return partials, nil
}

// FeedURLFilter reports whether a response URL may carry search
// results worth decoding.
func FeedURLFilter(url string) bool {
	return strings.Contains(url, "graphql") || strings.Contains(url, "searchresults")
}
