package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"nattapol/villaharvester/helpers"
	"nattapol/villaharvester/internal/listing"
)

const (
	policyBoxSelector     = "#hp_policies_box"
	policyRowSelector     = "div.b0400e5749"
	policyHeaderSelector  = ".e7addce19e"
	policyContentSelector = ".c92998be48"
)

// policyRule maps a header keyword (matched case-sensitively in the
// source language) to the setter for its canonical key. Rule order is
// significant: cancellation is checked before payment because the Thai
// prepayment header contains the payment keyword.
type policyRule struct {
	keywords []string
	assign   func(*listing.Policies, string)
}

var policyRules = []policyRule{
	{[]string{"เช็คอิน", "Check-in"}, func(p *listing.Policies, v string) { p.CheckIn = v }},
	{[]string{"เช็คเอาท์", "Check-out"}, func(p *listing.Policies, v string) { p.CheckOut = v }},
	{[]string{"ยกเลิก", "ชำระเงินล่วงหน้า", "Cancellation", "prepayment"}, func(p *listing.Policies, v string) { p.Cancellation = v }},
	{[]string{"เงินมัดจำ", "ค่าประกัน", "Damage deposit", "deposit"}, func(p *listing.Policies, v string) { p.Deposit = v }},
	{[]string{"เด็ก", "เตียงเสริม", "Children", "child policies"}, func(p *listing.Policies, v string) { p.ChildPolicy = v }},
	{[]string{"จำกัดอายุ", "age restriction", "Age restriction"}, func(p *listing.Policies, v string) { p.AgeRestriction = v }},
	{[]string{"สูบบุหรี่", "Smoking"}, func(p *listing.Policies, v string) { p.Smoking = v }},
	{[]string{"งดใช้เสียง", "ปาร์ตี้", "Quiet hours", "Parties"}, func(p *listing.Policies, v string) { p.QuietHours = v }},
	{[]string{"สัตว์เลี้ยง", "Pets"}, func(p *listing.Policies, v string) { p.Pets = v }},
	{[]string{"ชำระเงิน", "payment", "Payment"}, func(p *listing.Policies, v string) { p.Payment = v }},
}

// classifyPolicy assigns a topic/content pair to its canonical key.
// Returns false when no rule matches.
func classifyPolicy(policies *listing.Policies, topic, content string) bool {
	for _, rule := range policyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(topic, kw) {
				rule.assign(policies, content)
				return true
			}
		}
	}
	return false
}

// ExtractPolicies scans the house-rules container's header/content
// pairs and maps recognized headers to canonical policy keys.
// Unrecognized headers are kept as raw topic/content pairs in Extras.
func ExtractPolicies(doc *goquery.Document) listing.Policies {
	policies := listing.Policies{}

	box := doc.Find(policyBoxSelector)
	if box.Length() == 0 {
		return policies
	}

	box.Find(policyRowSelector).Each(func(_ int, row *goquery.Selection) {
		header := row.Find(policyHeaderSelector).First()
		content := row.Find(policyContentSelector).First()
		if header.Length() == 0 || content.Length() == 0 {
			return
		}

		topic := helpers.CleanText(header.Text())
		value := helpers.CleanText(content.Text())
		if topic == "" || value == "" {
			return
		}

		if !classifyPolicy(&policies, topic, value) {
			policies.Extras = append(policies.Extras, listing.PolicyEntry{Topic: topic, Content: value})
		}
	})

	return policies
}
