package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const roomTableHTML = `
<table class="hprt-table" id="hprt-table"><tbody>
	<tr>
		<th><a class="hprt-roomtype-link">Private Room</a></th>
		<td>×2</td>
		<td>฿ 1,200</td>
	</tr>
	<tr>
		<th>
			<a class="hprt-roomtype-link">Three-Bedroom Pool Villa</a>
			<ul class="room-config">
				<li>ห้องนอน 1: เตียงใหญ่ 1 เตียง</li>
				<li>ห้องนอน 2: เตียงใหญ่ 1 เตียง</li>
				<li>ห้องนอน 3: เตียงเดี่ยว 2 เตียง</li>
			</ul>
		</th>
		<td>× 6</td>
		<td><span class="bui-price-display__value">฿ 12,500</span></td>
	</tr>
</tbody></table>`

func TestExtractRoomsPrefersVillaRow(t *testing.T) {
	doc, err := NewDocument(roomTableHTML)
	assert.NoError(t, err)

	features := ExtractRooms(doc)

	// "Three-Bedroom Pool Villa" scores 150, "Private Room" only 30.
	assert.Equal(t, "Three-Bedroom Pool Villa", features.Name)
	assert.Equal(t, 12500, features.PriceDaily)
	assert.Equal(t, "THB", features.Currency)
	assert.Equal(t, 3, features.Specs.Bedrooms)
	assert.Equal(t, 6, features.Specs.MaxGuests)
	assert.Len(t, features.Layout.Rooms, 3)
}

func TestExtractRoomsFallsBackToFirstRow(t *testing.T) {
	html := `
	<table class="hprt-table"><tbody>
		<tr>
			<th><a class="hprt-roomtype-link">Standard Double</a></th>
			<td>×2</td>
			<td>฿ 900</td>
		</tr>
	</tbody></table>`

	doc, err := NewDocument(html)
	assert.NoError(t, err)

	features := ExtractRooms(doc)
	assert.Equal(t, "Standard Double", features.Name)
	assert.Equal(t, 900, features.PriceDaily)
	assert.Equal(t, 2, features.Specs.MaxGuests)
	// No bed layout and no bedroom marker in the name.
	assert.Equal(t, 0, features.Specs.Bedrooms)
}

func TestExtractRoomsMissingTable(t *testing.T) {
	doc, err := NewDocument("<html><body><p>nothing here</p></body></html>")
	assert.NoError(t, err)

	features := ExtractRooms(doc)
	assert.Equal(t, "", features.Name)
	assert.Equal(t, 0, features.PriceDaily)
	assert.Equal(t, 2, features.Specs.MaxGuests)
}

func TestRoomScore(t *testing.T) {
	assert.Equal(t, 150, roomScore("Deluxe Pool Villa"))
	assert.Equal(t, 30, roomScore("Private Room"))
	assert.Equal(t, 100, roomScore("วิลลา 2 ห้องนอน"))
	assert.Equal(t, 0, roomScore("Standard Twin"))
}

func TestPickPrice(t *testing.T) {
	// Small numbers like bed counts are filtered out.
	assert.Equal(t, 4500, pickPrice("2 เตียง ราคา 4,500 บาท"))
	assert.Equal(t, 0, pickPrice("2 เตียง 450 บาท"))
	assert.Equal(t, 12500, pickPrice("฿ 12,500 ต่อคืน"))
	assert.Equal(t, 0, pickPrice("ไม่มีราคา"))
}

func TestCountBedrooms(t *testing.T) {
	// Layout entries with bedroom markers win.
	assert.Equal(t, 2, countBedrooms([]string{"ห้องนอน 1: เตียงใหญ่", "ห้องนอน 2: เตียงเดี่ยว"}, ""))
	// Numeric pattern in the name.
	assert.Equal(t, 4, countBedrooms(nil, "4 Bedroom Pool Villa"))
	assert.Equal(t, 2, countBedrooms(nil, "วิลลา 2 ห้องนอน"))
	// Beds present but no bedroom marker: studio.
	assert.Equal(t, 1, countBedrooms([]string{"เตียงใหญ่ 1 เตียง"}, "Studio Villa"))
	assert.Equal(t, 0, countBedrooms(nil, "Standard Twin"))
}
