// Package enrich derives the presentation-level fields of a listing
// from its raw extracted data: administrative location, facility tags
// and guest capacity. Everything here is a pure function, applied after
// page extraction and before the record is persisted.
package enrich

import (
	"regexp"
	"strings"
)

// Location is a resolved administrative placement. Empty fields mean
// the resolver could not improve on what the record already has.
type Location struct {
	District    string
	Province    string
	SubDistrict string
}

// postcodeMap resolves a five-digit Thai postcode to its district and
// province. Postcodes are the most reliable signal in a free-form
// address, so they are checked first.
var postcodeMap = map[string]Location{
	// Chonburi
	"20150": {District: "Pattaya", Province: "Chonburi"},
	"20260": {District: "Pattaya", Province: "Chonburi"},
	"20250": {District: "Sattahip", Province: "Chonburi"},
	"20000": {District: "Mueang Chonburi", Province: "Chonburi"},
	// Prachuap Khiri Khan
	"77110": {District: "Hua Hin", Province: "Prachuap Khiri Khan"},
	"77120": {District: "Pranburi", Province: "Prachuap Khiri Khan"},
	"77220": {District: "Pranburi", Province: "Prachuap Khiri Khan"},
	"77210": {District: "Sam Roi Yot", Province: "Prachuap Khiri Khan"},
	// Chiang Mai
	"50000": {District: "Mueang Chiang Mai", Province: "Chiang Mai"},
	"50100": {District: "Mueang Chiang Mai", Province: "Chiang Mai"},
	"50230": {District: "Hang Dong", Province: "Chiang Mai"},
	"50180": {District: "Mae Rim", Province: "Chiang Mai"},
	"50210": {District: "San Sai", Province: "Chiang Mai"},
	"50220": {District: "Doi Saket", Province: "Chiang Mai"},
	"50150": {District: "Mae Taeng", Province: "Chiang Mai"},
	"50140": {District: "Mae Taeng", Province: "Chiang Mai"},
	"50170": {District: "Chiang Dao", Province: "Chiang Mai"},
	// Phuket
	"83000": {District: "Mueang Phuket", Province: "Phuket"},
	"83100": {District: "Mueang Phuket", Province: "Phuket"},
	"83130": {District: "Mueang Phuket", Province: "Phuket"},
	"83150": {District: "Kathu", Province: "Phuket"},
	"83120": {District: "Kathu", Province: "Phuket"},
	"83110": {District: "Thalang", Province: "Phuket"},
	// Surat Thani (Samui, Pha-ngan, Tao)
	"84320": {District: "Ko Samui", Province: "Surat Thani"},
	"84140": {District: "Ko Samui", Province: "Surat Thani"},
	"84410": {District: "Ko Samui", Province: "Surat Thani"},
	"84280": {District: "Ko Pha-ngan", Province: "Surat Thani"},
	"84360": {District: "Ko Pha-ngan", Province: "Surat Thani"},
	"84230": {District: "Ban Ta Khun", Province: "Surat Thani"},
	// Krabi
	"81000": {District: "Mueang Krabi", Province: "Krabi"},
	"81180": {District: "Mueang Krabi", Province: "Krabi"},
	"81150": {District: "Ko Lanta", Province: "Krabi"},
	"81130": {District: "Nuea Khlong", Province: "Krabi"},
	// Phang Nga
	"82160": {District: "Takua Thung", Province: "Phang Nga"},
	"82110": {District: "Mueang Phang Nga", Province: "Phang Nga"},
	"82190": {District: "Ko Yao", Province: "Phang Nga"},
	// Phetchaburi
	"76120": {District: "Cha-am", Province: "Phetchaburi"},
	"76000": {District: "Mueang Phetchaburi", Province: "Phetchaburi"},
	"76170": {District: "Kaeng Krachan", Province: "Phetchaburi"},
	// Khao Yai / Saraburi / Nakhon Nayok
	"30130": {District: "Pak Chong", Province: "Nakhon Ratchasima"},
	"30320": {District: "Pak Chong", Province: "Nakhon Ratchasima"},
	"26000": {District: "Mueang Nakhon Nayok", Province: "Nakhon Nayok"},
	"18220": {District: "Kaeng Khoi", Province: "Saraburi"},
	"18180": {District: "Muak Lek", Province: "Saraburi"},
	// Trat
	"23170": {District: "Ko Chang", Province: "Trat"},
	"23120": {District: "Ko Kut", Province: "Trat"},
	// Rayong
	"21130": {District: "Ban Chang", Province: "Rayong"},
	"21110": {District: "Klaeng", Province: "Rayong"},
}

// keywordRule corrects a district/province from a substring of the
// address or the record's current district. Rules are scanned in
// order and the first match wins, so more specific keys must come
// before their prefixes.
type keywordRule struct {
	keyword  string
	district string
	province string
}

var keywordRules = []keywordRule{
	// Chiang Mai & Lamphun
	{"baanthi", "Ban Thi", "Lamphun"},
	{"Lamphun", "Mueang Lamphun", "Lamphun"},
	{"ช่อแล", "Mae Taeng", "Chiang Mai"},
	{"เมืองก๋าย", "Mae Taeng", "Chiang Mai"},
	{"แม่แตง", "Mae Taeng", "Chiang Mai"},
	{"แม่แฝก", "San Sai", "Chiang Mai"},
	{"ท่าวังตาล", "Saraphi", "Chiang Mai"},
	{"เมืองงาย", "Chiang Dao", "Chiang Mai"},
	{"สันผีเสื้อ", "Mueang Chiang Mai", "Chiang Mai"},
	{"สันปูเลย", "Doi Saket", "Chiang Mai"},

	// Chonburi / Rayong
	{"Ban Huai Yai", "Pattaya", "Chonburi"},
	{"Huay Yai", "Pattaya", "Chonburi"},
	{"Cholburi", "Mueang Chonburi", "Chonburi"},
	{"พลา", "Ban Chang", "Rayong"},
	{"พลูตาหลวง", "Sattahip", "Chonburi"},
	{"แกลง", "Klaeng", "Rayong"},
	{"Ban Chang", "Ban Chang", "Rayong"},

	// Krabi / Phang Nga
	{"Khok Kloi", "Takua Thung", "Phang Nga"},
	{"Natai Beach", "Takua Thung", "Phang Nga"},
	{"Tha Yu", "Takua Thung", "Phang Nga"},
	{"Koh Yao", "Ko Yao", "Phang Nga"},
	{"Ko Yao Noi", "Ko Yao", "Phang Nga"},
	{"Phang Nga", "Mueang Phang Nga", "Phang Nga"},
	{"Phangnga", "Mueang Phang Nga", "Phang Nga"},
	{"Phi Phi Island", "Mueang Krabi", "Krabi"},
	{"เหนือคลอง", "Nuea Khlong", "Krabi"},

	// Khorat / Saraburi / Nakhon Nayok
	{"Muak Lek", "Muak Lek", "Saraburi"},
	{"Sara Buri", "Mueang Saraburi", "Saraburi"},
	{"สระบุรี", "Mueang Saraburi", "Saraburi"},
	{"แสลงพัน", "Wang Muang", "Saraburi"},
	{"พญาเย็น", "Pak Chong", "Nakhon Ratchasima"},
	{"นครราชสีมา", "Mueang Nakhon Ratchasima", "Nakhon Ratchasima"},
	{"นคราชสีมา", "Mueang Nakhon Ratchasima", "Nakhon Ratchasima"},
	{"Si Khio", "Sikhio", "Nakhon Ratchasima"},
	{"Nakhon Nayok", "Mueang Nakhon Nayok", "Nakhon Nayok"},

	// Phetchaburi
	{"Petchburi", "Mueang Phetchaburi", "Phetchaburi"},
	{"แก่งกระจาน", "Kaeng Krachan", "Phetchaburi"},
	{"หาดเจ้าสำราญ", "Mueang Phetchaburi", "Phetchaburi"},

	// Prachuap Khiri Khan
	{"Bo Nok", "Mueang Prachuap Khiri Khan", "Prachuap Khiri Khan"},
	{"Khlong Wan", "Mueang Prachuap Khiri Khan", "Prachuap Khiri Khan"},
	{"Prachuap Khiri Khan", "Mueang Prachuap Khiri Khan", "Prachuap Khiri Khan"},
	{"Kui Buri", "Kui Buri", "Prachuap Khiri Khan"},
	{"กุยเหนือ", "Kui Buri", "Prachuap Khiri Khan"},
	{"ทับสะแก", "Thap Sakae", "Prachuap Khiri Khan"},
	{"บางสะพาน", "Bang Saphan", "Prachuap Khiri Khan"},

	// Surat Thani
	{"Bophut", "Ko Samui", "Surat Thani"},
	{"เกาะเต่า", "Ko Pha-ngan", "Surat Thani"},
	{"Ko Tao", "Ko Pha-ngan", "Surat Thani"},
	{"เชี่ยวหลาน", "Ban Ta Khun", "Surat Thani"},

	// Trat
	{"Klong Son", "Ko Chang", "Trat"},
	{"Koh Chang", "Ko Chang", "Trat"},
	{"Koh Chang Tai", "Ko Chang", "Trat"},
	{"เกาะช้าง", "Ko Chang", "Trat"},
	{"เกาะกูด", "Ko Kut", "Trat"},

	// Phuket
	{"เขารูปช้าง", "Mueang Phuket", "Phuket"},
}

var (
	postcodeRegex       = regexp.MustCompile(`\b(\d{5})\b`)
	districtPrefixRegex = regexp.MustCompile(`(?i)^(Tambon|Amphoe|Sub-district|District|ต\.|อ\.|ตำบล|อำเภอ)\s*`)
)

// ResolveLocation derives a district and province from a raw address
// and the record's current district, in descending reliability:
// postcode lookup, keyword scan, then the cleaned current district.
func ResolveLocation(address, currentDistrict string) Location {
	if address != "" {
		if m := postcodeRegex.FindStringSubmatch(address); m != nil {
			if loc, ok := postcodeMap[m[1]]; ok {
				return loc
			}
		}
	}

	target := strings.ToLower(address + " " + currentDistrict)
	for _, rule := range keywordRules {
		if strings.Contains(target, strings.ToLower(rule.keyword)) {
			return Location{District: rule.district, Province: rule.province}
		}
	}

	if currentDistrict == "" {
		return Location{}
	}

	// Nothing matched: keep the existing district, minus any
	// administrative prefix, then recheck it as an exact keyword.
	district := strings.TrimSpace(districtPrefixRegex.ReplaceAllString(currentDistrict, ""))
	for _, rule := range keywordRules {
		if strings.EqualFold(rule.keyword, district) {
			return Location{District: rule.district, Province: rule.province}
		}
	}
	return Location{District: district}
}
