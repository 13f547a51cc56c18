package extract

import (
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"nattapol/villaharvester/helpers"
	"nattapol/villaharvester/internal/listing"
)

const (
	facilityScoreSelector   = "#hp_facilities_box .da8a6fe12c"
	popularFacilitySelector = `[data-testid="property-most-popular-facilities-wrapper"] .f6b6d2a959`
	facilityGroupSelector   = `[data-testid="facility-group-container"]`
	facilityNameSelector    = ".e7addce19e, .d31c9df771"
	facilityItemSelector    = "li .f6b6d2a959"
	facilityCaptionSelector = ".fdf31a9fa1"
)

var decimalRegex = regexp.MustCompile(`\d+\.?\d*`)

// ExtractFacilities collects the overall facility score, the popular
// facility labels and the per-category item lists. Categories with no
// list items fall back to their descriptive caption.
func ExtractFacilities(doc *goquery.Document) listing.Facilities {
	facilities := listing.Facilities{}

	if scoreText := doc.Find(facilityScoreSelector).First().Text(); scoreText != "" {
		if m := decimalRegex.FindString(scoreText); m != "" {
			if score, err := strconv.ParseFloat(m, 64); err == nil {
				facilities.Score = score
			}
		}
	}

	var popular []string
	doc.Find(popularFacilitySelector).Each(func(_ int, el *goquery.Selection) {
		if txt := helpers.CleanText(el.Text()); txt != "" {
			popular = append(popular, txt)
		}
	})
	facilities.Popular = listing.DedupeStrings(popular)

	doc.Find(facilityGroupSelector).Each(func(_ int, container *goquery.Selection) {
		heading := container.Find("h3").First()
		if heading.Length() == 0 {
			return
		}

		// Prefer the inner label node; the heading also carries icon
		// markup.
		name := helpers.CleanText(heading.Find(facilityNameSelector).First().Text())
		if name == "" {
			name = helpers.CleanText(heading.Text())
		}

		var items []string
		container.Find(facilityItemSelector).Each(func(_ int, item *goquery.Selection) {
			if txt := helpers.CleanText(item.Text()); txt != "" {
				items = append(items, txt)
			}
		})

		// Some groups are a bare heading followed by a caption
		// (internet, parking). Use the caption as the sole item.
		if len(items) == 0 {
			if caption := helpers.CleanText(container.Find(facilityCaptionSelector).First().Text()); caption != "" {
				items = append(items, caption)
			}
		}

		if len(items) > 0 {
			facilities.Categories = append(facilities.Categories, listing.FacilityCategory{
				Name:  name,
				Items: listing.DedupeStrings(items),
			})
		}
	})

	return facilities
}
