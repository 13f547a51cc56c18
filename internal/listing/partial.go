package listing

// PartialFields carries the fields one pass actually observed for a
// listing. Pointer and slice fields left nil were not observed and must
// not disturb stored values; the reconciler is the only consumer.
type PartialFields struct {
	ExternalID string // conflict key, required
	Slug       string
	Title      string

	Province    string
	District    string
	SubDistrict string
	Address     string
	Latitude    *float64
	Longitude   *float64

	PriceDaily     *int // always-refresh when observed
	Currency       string
	PricePerPerson *int
	MaxGuests      *int
	Bedrooms       *int
	Bathrooms      *int

	Description string
	CoverImage  string
	Images      []string

	Features     *Features
	Facilities   *Facilities
	Policies     *Policies
	NearbyPlaces []NearbyPlace
	ReviewData   []ReviewCategory
	Tags         []string

	Rating      *float64 // always-refresh during the harvest phase
	ReviewCount *int     // always-refresh during the harvest phase

	SourceURL string
}

// IntPtr returns a pointer to v. Convenience for building partials.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }

// DedupeStrings removes duplicates preserving first-seen order.
func DedupeStrings(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
