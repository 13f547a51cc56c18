package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"nattapol/villaharvester/helpers"
	"nattapol/villaharvester/internal/listing"
)

const (
	roomTableSelector  = "#hprt-table"
	roomRowsSelector   = "table.hprt-table tbody > tr"
	roomNameSelector   = ".hprt-roomtype-icon-link, .hprt-roomtype-link"
	bedItemsSelector   = ".rt-bed-type, .bedroom_bed_type, .room-config li"
	bedWrapperSelector = ".hprt-roomtype-bed, .bed-types-wrapper"
	priceValueSelector = ".bui-price-display__value"
	occupancySelector  = ".bicon-occupancy, .bicon-person, i"
	maxRoomNameLength  = 100
	minPlausiblePrice  = 500
)

var (
	occupancyRegex    = regexp.MustCompile(`[x×]\s*(\d+)`)
	bedroomNameRegex  = regexp.MustCompile(`(?i)(\d+)\s*(?:ห้องนอน|Bedroom)`)
	groupedDigitRegex = regexp.MustCompile(`\d{1,3}(?:,\d{3})*`)
)

// roomScore ranks a room-type name. Villa markers (either language)
// dominate, pool and private act as tiebreakers.
func roomScore(name string) int {
	score := 0
	if strings.Contains(name, "Villa") || strings.Contains(name, "วิลลา") {
		score += 100
	}
	if strings.Contains(name, "Pool") {
		score += 50
	}
	if strings.Contains(name, "Private") {
		score += 30
	}
	return score
}

// pickPrice keeps the first digit-grouped number above the plausibility
// floor, filtering out stray small numbers such as bed counts.
func pickPrice(text string) int {
	for _, raw := range groupedDigitRegex.FindAllString(text, -1) {
		n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			continue
		}
		if n > minPlausiblePrice {
			return n
		}
	}
	return 0
}

// countBedrooms derives the bedroom count: explicit bedroom markers in
// the layout first, then a numeric pattern in the name, then a studio
// default when any bed entry exists at all.
func countBedrooms(layout []string, name string) int {
	count := 0
	for _, entry := range layout {
		if strings.Contains(entry, "ห้องนอน") || strings.Contains(entry, "Bedroom") {
			count++
		}
	}
	if count > 0 {
		return count
	}
	if m := bedroomNameRegex.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if len(layout) > 0 {
		return 1
	}
	return 0
}

// ExtractRooms selects the best room row from the detail page's room
// table and derives name, layout, capacity and nightly price from it.
// Missing structure yields the typed default.
func ExtractRooms(doc *goquery.Document) listing.Features {
	features := listing.Features{
		Currency: "THB",
		Specs:    listing.RoomSpecs{Bedrooms: 0, Bathrooms: 1, MaxGuests: 2},
	}

	var rows *goquery.Selection
	if table := doc.Find(roomTableSelector); table.Length() > 0 {
		rows = table.Find("tbody > tr")
	} else {
		rows = doc.Find(roomRowsSelector)
	}
	if rows.Length() == 0 {
		return features
	}

	// Smart selection: first row with the best score wins.
	var bestRow *goquery.Selection
	bestScore := -1
	rows.Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("th, td")
		if cols.Length() < 2 {
			return
		}
		name := helpers.CleanText(cols.First().Find(roomNameSelector).Text())
		if score := roomScore(name); score > bestScore {
			bestScore = score
			bestRow = row
		}
	})
	if bestRow == nil {
		bestRow = rows.First()
	}

	cols := bestRow.Find("th, td")
	nameCol := cols.First()

	// Collect the bed layout first; its texts are also removed from the
	// fallback room name.
	var bedTexts []string
	bedItems := nameCol.Find(bedItemsSelector)
	if bedItems.Length() > 0 {
		bedItems.Each(func(_ int, item *goquery.Selection) {
			if txt := helpers.CleanText(item.Text()); txt != "" {
				bedTexts = append(bedTexts, txt)
			}
		})
	} else if wrapper := nameCol.Find(bedWrapperSelector); wrapper.Length() > 0 {
		if txt := helpers.CleanText(wrapper.Text()); txt != "" {
			bedTexts = append(bedTexts, txt)
		}
	}
	features.Layout.Rooms = listing.DedupeStrings(bedTexts)

	features.Name = helpers.CleanText(nameCol.Find(roomNameSelector).Text())
	if features.Name == "" {
		// Sweep the whole cell and strip the bed descriptions and
		// known boilerplate out of it.
		fullText := helpers.CleanText(nameCol.Text())
		for _, bed := range bedTexts {
			fullText = strings.ReplaceAll(fullText, bed, "")
		}
		fullText = strings.ReplaceAll(fullText, "รายละเอียด:", "")
		features.Name = helpers.Truncate(strings.TrimSpace(fullText), maxRoomNameLength)
	}

	features.Specs.Bedrooms = countBedrooms(features.Layout.Rooms, features.Name)

	if cols.Length() > 1 {
		guestText := helpers.CleanText(cols.Eq(1).Text())
		if m := occupancyRegex.FindStringSubmatch(guestText); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				features.Specs.MaxGuests = n
			}
		} else {
			count := 0
			cols.Eq(1).Find(occupancySelector).Each(func(_ int, icon *goquery.Selection) {
				if html, err := goquery.OuterHtml(icon); err == nil &&
					(strings.Contains(html, "occupancy") || strings.Contains(html, "person")) {
					count++
				}
			})
			if count > 0 {
				features.Specs.MaxGuests = count
			}
		}
	}

	if cols.Length() > 2 {
		priceText := helpers.CleanText(cols.Eq(2).Text())
		if value := cols.Eq(2).Find(priceValueSelector); value.Length() > 0 {
			priceText = value.Text()
		}
		features.PriceDaily = pickPrice(priceText)
	}

	return features
}
