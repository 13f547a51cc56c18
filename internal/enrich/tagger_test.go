package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nattapol/villaharvester/internal/listing"
)

func TestBuildTags(t *testing.T) {
	facilities := &listing.Facilities{
		Popular: []string{"สระว่ายน้ำส่วนตัว", "ฟรี Wi-Fi", "เตาปิ้งย่าง BBQ"},
		Categories: []listing.FacilityCategory{
			{Name: "ห้องครัว", Items: []string{"ไมโครเวฟ", "ตู้เย็น"}},
			{Name: "กิจกรรม", Items: []string{"คาราโอเกะ", "อ่างน้ำอุ่น"}},
		},
	}

	tags := BuildTags(facilities)
	ids := TagIDs(tags)

	// Output follows rule order, not page order.
	assert.Equal(t, []string{"karaoke", "bbq", "jacuzzi", "kitchen", "wifi"}, ids)

	assert.Equal(t, "คาราโอเกะ", tags[0].Label)
	assert.Equal(t, "Mic2", tags[0].Icon)
	assert.Equal(t, "purple", tags[0].Color)
}

func TestBuildTagsMatchesCategoryName(t *testing.T) {
	facilities := &listing.Facilities{
		Categories: []listing.FacilityCategory{
			{Name: "ที่จอดรถ", Items: []string{"มีที่จอดรถส่วนตัวฟรีในสถานที่"}},
		},
	}

	assert.Equal(t, []string{"parking"}, TagIDs(BuildTags(facilities)))
}

func TestBuildTagsCaseInsensitiveEnglish(t *testing.T) {
	facilities := &listing.Facilities{
		Popular: []string{"Infinity Pool", "Airport Shuttle"},
	}

	assert.Equal(t, []string{"airport_shuttle", "infinity_pool"}, TagIDs(BuildTags(facilities)))
}

func TestBuildTagsEmptyInput(t *testing.T) {
	assert.Nil(t, BuildTags(nil))
	assert.Nil(t, BuildTags(&listing.Facilities{}))
	assert.Nil(t, TagIDs(nil))
}

func TestBuildTagsNoDuplicateIDs(t *testing.T) {
	facilities := &listing.Facilities{
		Popular: []string{"สระไร้ขอบ", "infinity pool", "สระไร้ขอบวิวทะเล"},
	}

	assert.Equal(t, []string{"seaview", "infinity_pool"}, TagIDs(BuildTags(facilities)))
}
