package enrich

import (
	"strings"

	"nattapol/villaharvester/internal/listing"
)

// FacilityTag is a display-ready badge derived from the raw facility
// data.
type FacilityTag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// facilityRule matches a tag against the flattened facility text.
// Keywords are compared lowercased, so English entries must be listed
// in lowercase.
type facilityRule struct {
	id       string
	keywords []string
	label    string
	icon     string
	color    string
}

// facilityRules is ordered by display group: entertainment, wellness,
// views, food, logistics, family, accessibility, misc. Tag output
// follows this order regardless of how the source page arranged its
// facility sections.
var facilityRules = []facilityRule{
	// Fun & entertainment
	{"karaoke", []string{"คาราโอเกะ", "karaoke"}, "คาราโอเกะ", "Mic2", "purple"},
	{"pool_table", []string{"โต๊ะพูล", "สนุ๊กเกอร์", "billiards", "pool table"}, "โต๊ะพูล/สนุกเกอร์", "Target", "indigo"},
	{"slider", []string{"สไลเดอร์", "water slide"}, "สไลเดอร์น้ำ", "Waves", "cyan"},
	{"bbq", []string{"บาร์บีคิว", "bbq", "ปิ้งย่าง"}, "เตาปิ้งย่าง BBQ", "Flame", "orange"},

	// Wellness & luxury
	{"jacuzzi", []string{"อ่างน้ำอุ่น", "jacuzzi", "จากุซซี่", "อ่างแช่ตัว"}, "อ่างแช่ตัว/Jacuzzi", "Bath", "blue"},
	{"spa", []string{"สปา", "spa", "นวด", "massage"}, "สปา/นวด", "Sparkles", "pink"},
	{"fitness", []string{"ศูนย์ออกกำลังกาย", "ฟิตเนส", "fitness", "gym"}, "ฟิตเนส", "Dumbbell", "slate"},
	{"sauna", []string{"ซาวน่า", "sauna"}, "ซาวน่า", "Thermometer", "red"},

	// Views & location
	{"beachfront", []string{"ติดชายหาด", "ริมหาด", "beachfront"}, "ติดชายหาด", "Umbrella", "yellow"},
	{"seaview", []string{"วิวทะเล", "sea view"}, "วิวทะเล", "Palmtree", "blue"},
	{"mountainview", []string{"วิวภูเขา", "mountain view"}, "วิวภูเขา", "Mountain", "emerald"},
	{"pet_friendly", []string{"สัตว์เลี้ยง", "สุนัข", "แมว", "pets allowed", "pet friendly", "นำสัตว์เลี้ยงเข้าพักได้"}, "สัตว์เลี้ยงเข้าได้", "PawPrint", "green"},

	// Food & drink
	{"breakfast", []string{"อาหารเช้า", "breakfast"}, "มีอาหารเช้า", "Coffee", "amber"},
	{"restaurant", []string{"ห้องอาหาร", "ภัตตาคาร", "restaurant"}, "ร้านอาหารในที่พัก", "Utensils", "rose"},
	{"bar", []string{"บาร์", "bar"}, "มินิบาร์/บาร์", "Wine", "violet"},
	{"kitchen", []string{"ห้องครัว", "ห้องครัวส่วนตัว", "kitchen"}, "อุปกรณ์ครัวครบ", "ChefHat", "orange"},

	// Logistics & standard
	{"wifi", []string{"wi-fi", "อินเทอร์เน็ตไร้สาย"}, "Free Wi-Fi", "Wifi", "sky"},
	{"parking", []string{"ที่จอดรถ", "parking"}, "ที่จอดรถฟรี", "Car", "zinc"},
	{"airport_shuttle", []string{"รถรับส่งสนามบิน", "airport shuttle"}, "รถรับส่งสนามบิน", "Plane", "blue"},
	{"charging_station", []string{"ชาร์จรถยนต์ไฟฟ้า", "ev charging"}, "ที่ชาร์จรถ EV", "Zap", "green"},
	{"family_room", []string{"ห้องสำหรับครอบครัว", "family room"}, "เหมาะกับครอบครัว", "Users", "blue"},

	// Family & kids
	{"kid_friendly", []string{"เด็ก", "สโมสรเด็ก", "สนามเด็กเล่น", "kids club", "playground", "สระว่ายน้ำเด็ก", "kids pool", "babysitting"}, "เหมาะสำหรับเด็ก", "Baby", "sky"},

	// Accessibility
	{"accessibility", []string{"ผู้พิการ", "รถเข็น", "wheelchair", "accessible", "ทางลาด", "ห้องพักสำหรับผู้พิการ"}, "รองรับรถเข็น/ผู้สูงอายุ", "Accessibility", "slate"},

	// Misc
	{"elevator", []string{"ลิฟต์", "elevator", "lift"}, "มีลิฟต์", "ArrowUpCircle", "gray"},
	{"salt_water_pool", []string{"สระน้ำเกลือ", "salt water pool"}, "สระน้ำเกลือ", "Sparkles", "blue"},
	{"infinity_pool", []string{"สระไร้ขอบ", "infinity pool"}, "สระไร้ขอบ", "Waves", "cyan"},
	{"smoking_area", []string{"เขตสูบบุหรี่", "พื้นที่สูบบุหรี่", "smoking area"}, "มีพื้นที่สูบบุหรี่", "Wind", "zinc"},
}

// BuildTags flattens the facility data into one lowercase haystack and
// matches every rule against it. Each tag appears at most once, in
// rule order.
func BuildTags(facilities *listing.Facilities) []FacilityTag {
	if facilities == nil {
		return nil
	}

	var parts []string
	for _, item := range facilities.Popular {
		parts = append(parts, strings.ToLower(item))
	}
	for _, category := range facilities.Categories {
		parts = append(parts, strings.ToLower(category.Name))
		for _, item := range category.Items {
			parts = append(parts, strings.ToLower(item))
		}
	}
	haystack := strings.Join(parts, " ")
	if haystack == "" {
		return nil
	}

	var tags []FacilityTag
	for _, rule := range facilityRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(haystack, keyword) {
				tags = append(tags, FacilityTag{
					ID:    rule.id,
					Label: rule.label,
					Icon:  rule.icon,
					Color: rule.color,
				})
				break
			}
		}
	}
	return tags
}

// TagIDs projects tags down to their identifiers, the form stored on
// the listing record.
func TagIDs(tags []FacilityTag) []string {
	if len(tags) == 0 {
		return nil
	}
	ids := make([]string, len(tags))
	for i, tag := range tags {
		ids[i] = tag.ID
	}
	return ids
}
