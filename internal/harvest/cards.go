package harvest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"nattapol/villaharvester/config"
	"nattapol/villaharvester/helpers"
	"nattapol/villaharvester/internal/extract"
	"nattapol/villaharvester/internal/listing"
)

const (
	cardSelector       = `[data-testid="property-card"]`
	cardTitleSelector  = `[data-testid="title"]`
	cardLinkSelector   = `a[data-testid="title-link"]`
	cardPriceSelector  = `[data-testid="price-and-discounted-price"]`
	cardImageSelector  = `[data-testid="image"]`
	cardRatingSelector = `[data-testid="review-score-link"] div`
)

var digitRunRegex = regexp.MustCompile(`\d+`)

// ScanCards sweeps the rendered result cards for listings the JSON
// listener did not capture. The slug doubles as the external
// identifier on this path since the numeric property id is not in the
// markup.
func ScanCards(html string, location config.TargetLocation) ([]listing.PartialFields, error) {
	doc, err := extract.NewDocument(html)
	if err != nil {
		return nil, err
	}

	var partials []listing.PartialFields
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		link := card.Find(cardLinkSelector).First()
		if link.Length() == 0 {
			link = card.Find("a").First()
		}
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}

		cleanURL := strings.SplitN(href, "?", 2)[0]
		if !strings.Contains(cleanURL, ".html") && !strings.Contains(cleanURL, "booking.com") {
			return
		}

		parts := strings.Split(cleanURL, "/")
		slug := parts[len(parts)-1]
		slug = strings.TrimSuffix(slug, ".th.html")
		slug = strings.TrimSuffix(slug, ".html")
		if slug == "" {
			return
		}

		title := helpers.CleanText(card.Find(cardTitleSelector).First().Text())
		if title == "" {
			title = "Unknown"
		}

		price := 0
		if priceText := card.Find(cardPriceSelector).First().Text(); priceText != "" {
			joined := strings.Join(digitRunRegex.FindAllString(strings.ReplaceAll(priceText, ",", ""), -1), "")
			if n, err := strconv.Atoi(joined); err == nil {
				price = n
			}
		}

		coverImage, _ := card.Find(cardImageSelector).First().Attr("src")

		rating := 0.0
		if ratingText := helpers.CleanText(card.Find(cardRatingSelector).First().Text()); ratingText != "" {
			if v, err := strconv.ParseFloat(ratingText, 64); err == nil {
				rating = v
			}
		}

		sourceURL := cleanURL
		if !strings.HasPrefix(sourceURL, "http") {
			sourceURL = "https://www.booking.com" + sourceURL
		}

		partials = append(partials, listing.PartialFields{
			ExternalID:  slug,
			Slug:        slug,
			Title:       title,
			Province:    location.Province,
			District:    location.Name,
			PriceDaily:  listing.IntPtr(price),
			Rating:      listing.FloatPtr(rating),
			ReviewCount: listing.IntPtr(0),
			CoverImage:  coverImage,
			SourceURL:   sourceURL,
		})
	})
	return partials, nil
}
