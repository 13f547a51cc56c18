package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"nattapol/villaharvester/helpers"
)

const (
	addressHeaderSelector   = `[data-testid="PropertyHeaderAddressDesktop-wrapper"]`
	addressTooltipSelector  = `[data-node_tt_id="location_score_tooltip"]`
	addressSubtitleSelector = ".hp_address_subtitle"
	mapLinkSelector         = "a[data-atlas-latlng]"
	countryMarker           = "ไทย"
)

// addressBoilerplate lists decorative phrases stripped from the raw
// address text.
var addressBoilerplate = []string{
	"แสดงบนแผนที่",
	"Show on map",
	"ทำเลดีเยี่ยม",
	"Excellent location",
	"–",
}

var punctSpacingRegex = regexp.MustCompile(`\s+,\s+`)

// ExtractAddress locates the address container through a priority list
// of markers, strips hidden sub-elements and boilerplate, and collapses
// punctuation spacing. Missing structure yields an empty string.
func ExtractAddress(doc *goquery.Document) string {
	var container *goquery.Selection

	// The header wrapper nests the address in an unlabeled node; the
	// country marker is the most reliable way to find it.
	if wrapper := doc.Find(addressHeaderSelector); wrapper.Length() > 0 {
		candidates := wrapper.Find("*").FilterFunction(func(_ int, sel *goquery.Selection) bool {
			return strings.Contains(sel.Text(), countryMarker)
		})
		if candidates.Length() > 0 {
			// The last match is the deepest element still holding the
			// full address.
			container = candidates.Last()
		}
	}
	if container == nil || container.Length() == 0 {
		container = doc.Find(addressTooltipSelector).First()
	}
	if container.Length() == 0 {
		container = doc.Find(addressSubtitleSelector).First()
	}
	if container.Length() == 0 {
		return ""
	}

	cleaned := cleanClone(container, `[aria-hidden="true"]`)
	raw := helpers.CleanText(cleaned.Text())
	for _, phrase := range addressBoilerplate {
		raw = strings.ReplaceAll(raw, phrase, "")
	}
	return strings.TrimSpace(punctSpacingRegex.ReplaceAllString(raw, ", "))
}

// ExtractCoordinates reads latitude/longitude from the map link's
// "lat,lng" attribute. Parse failures leave both unset.
func ExtractCoordinates(doc *goquery.Document) (lat, lng *float64) {
	attr, ok := doc.Find(mapLinkSelector).First().Attr("data-atlas-latlng")
	if !ok {
		return nil, nil
	}

	parts := strings.Split(attr, ",")
	if len(parts) != 2 {
		return nil, nil
	}

	latVal, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lngVal, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil {
		return nil, nil
	}
	return &latVal, &lngVal
}
