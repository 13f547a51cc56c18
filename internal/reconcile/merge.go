// Package reconcile merges partially observed listing data into the
// canonical snapshot. It is the only place override policy lives: the
// store executes what Merge decides, extractors never touch persisted
// state.
package reconcile

import (
	"time"

	"nattapol/villaharvester/internal/listing"
)

// Phase tells the merge which pass produced the incoming fields. The
// harvest pass owns the social-proof numbers and may clear them; the
// enrichment pass only improves on what is already stored.
type Phase string

const (
	PhaseHarvest Phase = "harvest"
	PhaseEnrich  Phase = "enrich"
)

// Merge applies in to existing and returns the resulting snapshot.
// existing == nil means first discovery: a new snapshot is built from
// the incoming fields plus required defaults. Otherwise fields
// supplied and non-empty in the partial replace stored values, absent
// fields keep theirs, and the always-refresh set (price, activity
// flag, updated timestamp, plus rating/review count when harvesting)
// is written unconditionally when observed.
func Merge(existing *listing.Snapshot, in listing.PartialFields, phase Phase, now time.Time) listing.Snapshot {
	if existing == nil {
		return insert(in, now)
	}

	snap := *existing

	setString(&snap.Slug, in.Slug)
	setString(&snap.Title, in.Title)
	setString(&snap.Province, in.Province)
	setString(&snap.District, in.District)
	setString(&snap.SubDistrict, in.SubDistrict)
	setString(&snap.Address, in.Address)
	setString(&snap.Currency, in.Currency)
	setString(&snap.Description, in.Description)
	setString(&snap.CoverImage, in.CoverImage)
	setString(&snap.SourceURL, in.SourceURL)

	if in.Latitude != nil {
		snap.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		snap.Longitude = in.Longitude
	}
	if in.PricePerPerson != nil {
		snap.PricePerPerson = in.PricePerPerson
	}
	if in.MaxGuests != nil {
		snap.MaxGuests = *in.MaxGuests
	}
	if in.Bedrooms != nil {
		snap.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		snap.Bathrooms = *in.Bathrooms
	}

	if len(in.Images) > 0 {
		snap.Images = listing.DedupeStrings(in.Images)
	}
	if in.Features != nil {
		snap.Features = *in.Features
	}
	if in.Facilities != nil {
		snap.Facilities = *in.Facilities
	}
	if in.Policies != nil {
		snap.Policies = *in.Policies
	}
	if len(in.NearbyPlaces) > 0 {
		snap.NearbyPlaces = in.NearbyPlaces
	}
	if len(in.ReviewData) > 0 {
		snap.ReviewData = in.ReviewData
	}
	if len(in.Tags) > 0 {
		snap.Tags = in.Tags
	}

	// Always-refresh set. Price follows every observation, even a
	// drop to zero during promotions.
	if in.PriceDaily != nil {
		snap.PriceDaily = *in.PriceDaily
	}
	if in.Rating != nil && (phase == PhaseHarvest || *in.Rating > 0) {
		snap.Rating = *in.Rating
	}
	if in.ReviewCount != nil && (phase == PhaseHarvest || *in.ReviewCount > 0) {
		snap.ReviewCount = *in.ReviewCount
	}
	snap.IsActive = true
	snap.UpdatedAt = now

	return snap
}

// insert builds the first snapshot for a newly discovered listing.
func insert(in listing.PartialFields, now time.Time) listing.Snapshot {
	snap := listing.Snapshot{
		ExternalID:   in.ExternalID,
		Slug:         in.Slug,
		Title:        in.Title,
		Province:     in.Province,
		District:     in.District,
		SubDistrict:  in.SubDistrict,
		Address:      in.Address,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Currency:     in.Currency,
		Description:  in.Description,
		CoverImage:   in.CoverImage,
		Images:       listing.DedupeStrings(in.Images),
		NearbyPlaces: in.NearbyPlaces,
		ReviewData:   in.ReviewData,
		Tags:         in.Tags,
		SourceURL:    in.SourceURL,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,

		// Capacity defaults for a minimal harvest record.
		Bedrooms:  1,
		Bathrooms: 1,
		MaxGuests: 2,
	}

	if snap.Currency == "" {
		snap.Currency = "THB"
	}
	if in.PriceDaily != nil {
		snap.PriceDaily = *in.PriceDaily
	}
	if in.PricePerPerson != nil {
		snap.PricePerPerson = in.PricePerPerson
	}
	if in.MaxGuests != nil && *in.MaxGuests > 0 {
		snap.MaxGuests = *in.MaxGuests
	}
	if in.Bedrooms != nil && *in.Bedrooms > 0 {
		snap.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil && *in.Bathrooms > 0 {
		snap.Bathrooms = *in.Bathrooms
	}
	if in.Features != nil {
		snap.Features = *in.Features
	}
	if in.Facilities != nil {
		snap.Facilities = *in.Facilities
	}
	if in.Policies != nil {
		snap.Policies = *in.Policies
	}
	if in.Rating != nil {
		snap.Rating = *in.Rating
	}
	if in.ReviewCount != nil {
		snap.ReviewCount = *in.ReviewCount
	}

	return snap
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
