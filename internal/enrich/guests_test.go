package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nattapol/villaharvester/internal/listing"
)

func TestNormalizeGuestsDefaultsFromBedrooms(t *testing.T) {
	guests, pp := NormalizeGuests(listing.IntPtr(0), listing.IntPtr(1), 1000)
	assert.Equal(t, 2, guests)
	assert.Equal(t, 500, *pp)
}

func TestNormalizeGuestsBelowBedroomCount(t *testing.T) {
	guests, pp := NormalizeGuests(nil, listing.IntPtr(3), 9000)
	assert.Equal(t, 6, guests)
	assert.Equal(t, 1500, *pp)
}

func TestNormalizeGuestsSingleBedroomClamp(t *testing.T) {
	guests, pp := NormalizeGuests(listing.IntPtr(8), listing.IntPtr(1), 400)
	assert.Equal(t, 4, guests)
	assert.Equal(t, 100, *pp)
}

func TestNormalizeGuestsPlausibleValueKept(t *testing.T) {
	guests, pp := NormalizeGuests(listing.IntPtr(6), listing.IntPtr(3), 0)
	assert.Equal(t, 6, guests)
	assert.Nil(t, pp)
}

func TestNormalizeGuestsRoundsPerPerson(t *testing.T) {
	guests, pp := NormalizeGuests(listing.IntPtr(3), listing.IntPtr(2), 1000)
	assert.Equal(t, 3, guests)
	assert.Equal(t, 333, *pp)
}

func TestApply(t *testing.T) {
	partial := listing.PartialFields{
		Address:    "88/8 หาดป่าตอง, กะทู้, ภูเก็ต, 83150, ไทย",
		PriceDaily: listing.IntPtr(12000),
		Bedrooms:   listing.IntPtr(3),
		Facilities: &listing.Facilities{
			Popular: []string{"สระไร้ขอบ", "ฟรี Wi-Fi"},
		},
	}

	Apply(&partial, "")

	assert.Equal(t, "Kathu", partial.District)
	assert.Equal(t, "Phuket", partial.Province)
	assert.Equal(t, []string{"wifi", "infinity_pool"}, partial.Tags)
	assert.Equal(t, 6, *partial.MaxGuests)
	assert.Equal(t, 2000, *partial.PricePerPerson)
}
