package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nattapol/villaharvester/internal/listing"
)

const policyBoxHTML = `
<div id="hp_policies_box">
	<div class="b0400e5749">
		<div class="e7addce19e">เช็คอิน</div>
		<div class="c92998be48">15:00 - 00:00</div>
	</div>
	<div class="b0400e5749">
		<div class="e7addce19e">เช็คเอาท์</div>
		<div class="c92998be48">จนถึง 12:00</div>
	</div>
	<div class="b0400e5749">
		<div class="e7addce19e">การยกเลิก/ การชำระเงินล่วงหน้า</div>
		<div class="c92998be48">นโยบายการยกเลิกแตกต่างกันไปตามประเภทห้องพัก</div>
	</div>
	<div class="b0400e5749">
		<div class="e7addce19e">สัตว์เลี้ยง</div>
		<div class="c92998be48">ไม่อนุญาตให้นำสัตว์เลี้ยงเข้าพัก</div>
	</div>
	<div class="b0400e5749">
		<div class="e7addce19e">หมายเหตุพิเศษ</div>
		<div class="c92998be48">มีบริการรับส่งสนามบินโดยมีค่าใช้จ่าย</div>
	</div>
</div>`

func TestExtractPolicies(t *testing.T) {
	doc, err := NewDocument(policyBoxHTML)
	assert.NoError(t, err)

	policies := ExtractPolicies(doc)

	assert.Equal(t, "15:00 - 00:00", policies.CheckIn)
	assert.Equal(t, "จนถึง 12:00", policies.CheckOut)
	// The prepayment header contains the payment keyword, but the
	// cancellation rule runs first.
	assert.Equal(t, "นโยบายการยกเลิกแตกต่างกันไปตามประเภทห้องพัก", policies.Cancellation)
	assert.Equal(t, "", policies.Payment)
	assert.Equal(t, "ไม่อนุญาตให้นำสัตว์เลี้ยงเข้าพัก", policies.Pets)

	// Unrecognized headers survive as raw pairs.
	assert.Len(t, policies.Extras, 1)
	assert.Equal(t, "หมายเหตุพิเศษ", policies.Extras[0].Topic)
	assert.False(t, policies.IsEmpty())
}

func TestExtractPoliciesMissingBox(t *testing.T) {
	doc, err := NewDocument("<html><body></body></html>")
	assert.NoError(t, err)

	policies := ExtractPolicies(doc)
	assert.True(t, policies.IsEmpty())
}

func TestClassifyPolicy(t *testing.T) {
	var policies listing.Policies
	assert.True(t, classifyPolicy(&policies, "Smoking", "ห้ามสูบบุหรี่"))
	assert.Equal(t, "ห้ามสูบบุหรี่", policies.Smoking)
	assert.True(t, classifyPolicy(&policies, "เด็กและเตียงเสริม", "ยินดีต้อนรับเด็กทุกวัย"))
	assert.Equal(t, "ยินดีต้อนรับเด็กทุกวัย", policies.ChildPolicy)
	assert.False(t, classifyPolicy(&policies, "อื่นๆ", "ข้อความ"))
}
