package listing

import "time"

// Snapshot is one persisted listing record, keyed by its external
// identifier. The nested document fields (Features, Facilities,
// Policies, NearbyPlaces, ReviewData) are stored as JSONB and form the
// wire contract for downstream readers.
type Snapshot struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"externalId"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`

	Province    string   `json:"province"`
	District    string   `json:"district"`
	SubDistrict string   `json:"subDistrict,omitempty"`
	Address     string   `json:"address,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`

	PriceDaily     int    `json:"priceDaily"`
	Currency       string `json:"currency"`
	PricePerPerson *int   `json:"pricePerPerson,omitempty"`
	MaxGuests      int    `json:"maxGuests"`
	Bedrooms       int    `json:"bedrooms"`
	Bathrooms      int    `json:"bathrooms"`

	Description string   `json:"description,omitempty"`
	CoverImage  string   `json:"coverImage,omitempty"`
	Images      []string `json:"images"`

	Features     Features         `json:"features"`
	Facilities   Facilities       `json:"facilities"`
	Policies     Policies         `json:"policies"`
	NearbyPlaces []NearbyPlace    `json:"nearbyPlaces"`
	ReviewData   []ReviewCategory `json:"reviewData"`
	Tags         []string         `json:"tags,omitempty"`

	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`

	SourceURL string    `json:"sourceUrl"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Features describes the room row selected from the detail page's room
// table: name, nightly price and the bed layout it advertises.
type Features struct {
	Name       string     `json:"name"`
	PriceDaily int        `json:"priceDaily"`
	Currency   string     `json:"currency"`
	Specs      RoomSpecs  `json:"specs"`
	Layout     RoomLayout `json:"layout"`
}

// RoomSpecs holds the capacity numbers derived from the room row.
type RoomSpecs struct {
	Bedrooms  int `json:"bedrooms"`
	Bathrooms int `json:"bathrooms"`
	MaxGuests int `json:"maxGuests"`
}

// RoomLayout lists the bed-description strings found in the room cell.
type RoomLayout struct {
	Rooms  []string `json:"rooms"`
	Others []string `json:"others,omitempty"`
}

// Facilities is the facility section of a detail page: an overall
// score, the "most popular" labels and the per-category item lists.
type Facilities struct {
	Score      float64            `json:"score,omitempty"`
	Popular    []string           `json:"popular"`
	Categories []FacilityCategory `json:"categories"`
}

// FacilityCategory groups facility items under a section heading.
type FacilityCategory struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// IsEmpty reports whether nothing was extracted.
func (f Facilities) IsEmpty() bool {
	return f.Score == 0 && len(f.Popular) == 0 && len(f.Categories) == 0
}

// Policies maps recognized house-rule headers to canonical keys.
// Headers that match no canonical key are retained verbatim in Extras
// so the raw topic/content pairs are never dropped.
type Policies struct {
	CheckIn        string        `json:"checkIn,omitempty"`
	CheckOut       string        `json:"checkOut,omitempty"`
	Cancellation   string        `json:"cancellation,omitempty"`
	Deposit        string        `json:"deposit,omitempty"`
	ChildPolicy    string        `json:"childPolicy,omitempty"`
	AgeRestriction string        `json:"ageRestriction,omitempty"`
	Smoking        string        `json:"smoking,omitempty"`
	QuietHours     string        `json:"quietHours,omitempty"`
	Pets           string        `json:"pets,omitempty"`
	Payment        string        `json:"payment,omitempty"`
	Extras         []PolicyEntry `json:"extras,omitempty"`
}

// PolicyEntry is one raw topic/content pair from the rules container.
type PolicyEntry struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

// IsEmpty reports whether no policy was extracted.
func (p Policies) IsEmpty() bool {
	return p.CheckIn == "" && p.CheckOut == "" && p.Cancellation == "" &&
		p.Deposit == "" && p.ChildPolicy == "" && p.AgeRestriction == "" &&
		p.Smoking == "" && p.QuietHours == "" && p.Pets == "" &&
		p.Payment == "" && len(p.Extras) == 0
}

// NearbyPlace is one point of interest with its advertised distance.
type NearbyPlace struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Distance string `json:"distance"`
}

// ReviewCategory is one per-category review sub-score.
type ReviewCategory struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

// ReviewSummary is the review section of a detail page.
type ReviewSummary struct {
	Rating      float64          `json:"rating"`
	ReviewCount int              `json:"reviewCount"`
	Categories  []ReviewCategory `json:"categories"`
}
