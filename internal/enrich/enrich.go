package enrich

import "nattapol/villaharvester/internal/listing"

// Apply runs every enrichment step over a freshly extracted partial
// record, in place. Location resolution consults the record's current
// district so keyword corrections can fire even when the page carried
// no usable address.
func Apply(partial *listing.PartialFields, currentDistrict string) {
	loc := ResolveLocation(partial.Address, currentDistrict)
	if loc.District != "" {
		partial.District = loc.District
	}
	if loc.Province != "" {
		partial.Province = loc.Province
	}
	if loc.SubDistrict != "" {
		partial.SubDistrict = loc.SubDistrict
	}

	partial.Tags = TagIDs(BuildTags(partial.Facilities))

	guests, pricePerPerson := NormalizeGuests(partial.MaxGuests, partial.Bedrooms, derefInt(partial.PriceDaily))
	partial.MaxGuests = &guests
	partial.PricePerPerson = pricePerPerson
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
