package helpers

import "time"

// stayLeadDays is how far out the priced stay is booked. Pages queried
// without dates hide prices, and dates this far ahead are almost
// always still bookable.
const stayLeadDays = 120

// StayDates returns a one-night check-in/check-out pair about four
// months after now, shifted off Friday through Sunday onto the
// following Monday. Weekend nights at pool villas sell out first and
// a sold-out page drops its price blocks.
func StayDates(now time.Time) (checkIn, checkOut string) {
	date := now.AddDate(0, 0, stayLeadDays)
	switch date.Weekday() {
	case time.Friday:
		date = date.AddDate(0, 0, 3)
	case time.Saturday:
		date = date.AddDate(0, 0, 2)
	case time.Sunday:
		date = date.AddDate(0, 0, 1)
	}
	return date.Format("2006-01-02"), date.AddDate(0, 0, 1).Format("2006-01-02")
}
