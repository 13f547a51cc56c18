package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"nattapol/villaharvester/helpers"
	"nattapol/villaharvester/internal/listing"
)

const (
	poiBlockSelector   = `div[data-testid="poi-block"], .hp-poi-content-container__column`
	poiHeadingSelector = "h3, div.poi-list__title"
	defaultPOICategory = "General"
)

// distanceRegex matches a numeric token followed by a distance unit in
// either supported language.
var distanceRegex = regexp.MustCompile(`\d.*(?:กม\.|m|km|เมตร)`)

// ExtractNearbyPlaces walks each point-of-interest block, classifying
// child texts into a name and a distance token. An entry is emitted
// only when both are present.
func ExtractNearbyPlaces(doc *goquery.Document) []listing.NearbyPlace {
	var places []listing.NearbyPlace

	doc.Find(poiBlockSelector).Each(func(_ int, block *goquery.Selection) {
		category := helpers.CleanText(block.Find(poiHeadingSelector).First().Text())
		if category == "" {
			category = defaultPOICategory
		}

		block.Find("li").Each(func(_ int, item *goquery.Selection) {
			var name, dist string
			item.Find("div, span").Each(func(_ int, node *goquery.Selection) {
				txt := helpers.CleanText(node.Text())
				if txt == "" {
					return
				}
				if distanceRegex.MatchString(txt) {
					dist = txt
				} else if len([]rune(txt)) > 2 && name == "" {
					name = txt
				}
			})

			if name != "" && dist != "" {
				places = append(places, listing.NearbyPlace{
					Category: category,
					Name:     name,
					Distance: dist,
				})
			}
		})
	})

	return places
}
