package enrich

import "math"

// NormalizeGuests reconciles the observed guest capacity with the
// bedroom count and derives the per-person nightly price. A zero or
// nil raw capacity, or one below the bedroom count, is replaced with
// two guests per bedroom. Single-bedroom listings claiming more than
// six guests are clamped to four.
func NormalizeGuests(rawGuests, bedrooms *int, priceDaily int) (guests int, pricePerPerson *int) {
	guests = 0
	if rawGuests != nil && *rawGuests > 0 {
		guests = *rawGuests
	}
	beds := 1
	if bedrooms != nil && *bedrooms > 0 {
		beds = *bedrooms
	}

	if guests <= 0 || guests < beds {
		guests = beds * 2
	}
	if beds == 1 && guests > 6 {
		guests = 4
	}

	if priceDaily > 0 && guests > 0 {
		pp := int(math.Round(float64(priceDaily) / float64(guests)))
		pricePerPerson = &pp
	}
	return guests, pricePerPerson
}
