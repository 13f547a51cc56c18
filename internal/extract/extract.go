// Package extract turns a rendered detail page into a partial listing
// record. Every extractor is a pure function over the parsed document:
// absent structure yields typed defaults, never an error, so one broken
// section cannot sink the rest of the pass.
package extract

import (
	"github.com/PuerkitoBio/goquery"

	"nattapol/villaharvester/helpers"
	"nattapol/villaharvester/internal/listing"
)

const descriptionSelector = `[data-testid="property-description"], #property_description_content`

// ParseDetailPage runs every extractor over one document and assembles
// the composite partial record. Capacity and price fall back to the
// selected room row's values.
func ParseDetailPage(doc *goquery.Document) listing.PartialFields {
	features := ExtractRooms(doc)
	facilities := ExtractFacilities(doc)
	policies := ExtractPolicies(doc)
	nearby := ExtractNearbyPlaces(doc)
	reviews := ExtractReviews(doc)
	images := ExtractImages(doc)
	lat, lng := ExtractCoordinates(doc)

	partial := listing.PartialFields{
		Address:      ExtractAddress(doc),
		Latitude:     lat,
		Longitude:    lng,
		Description:  helpers.CleanText(doc.Find(descriptionSelector).First().Text()),
		Images:       images,
		Features:     &features,
		NearbyPlaces: nearby,
	}

	if !facilities.IsEmpty() {
		partial.Facilities = &facilities
	}
	if !policies.IsEmpty() {
		partial.Policies = &policies
	}

	if features.PriceDaily > 0 {
		partial.PriceDaily = listing.IntPtr(features.PriceDaily)
		partial.Currency = features.Currency
	}
	if features.Specs.Bedrooms > 0 {
		partial.Bedrooms = listing.IntPtr(features.Specs.Bedrooms)
	}
	if features.Specs.Bathrooms > 0 {
		partial.Bathrooms = listing.IntPtr(features.Specs.Bathrooms)
	}
	if features.Specs.MaxGuests > 0 {
		partial.MaxGuests = listing.IntPtr(features.Specs.MaxGuests)
	}

	if reviews.Rating > 0 {
		partial.Rating = listing.FloatPtr(reviews.Rating)
	}
	if reviews.ReviewCount > 0 {
		partial.ReviewCount = listing.IntPtr(reviews.ReviewCount)
	}
	partial.ReviewData = reviews.Categories

	return partial
}
