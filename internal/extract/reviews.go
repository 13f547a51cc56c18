package extract

import (
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"nattapol/villaharvester/helpers"
	"nattapol/villaharvester/internal/listing"
)

const (
	reviewScoreSelector    = `[data-testid="review-score-component"]`
	reviewSubscoreSelector = `[data-testid="review-subscore"]`
	reviewValueSelector    = `[aria-hidden="true"]`
	reviewLabelSelector    = `.d96a4619c0, span:first-child`
)

var reviewCountRegex = regexp.MustCompile(`(?i)(\d+)\s*(?:reviews|ความคิดเห็น)`)

// ExtractReviews reads the overall rating and review count from the
// score component plus the per-category sub-scores. Rows whose value
// fails to parse as a number are skipped.
func ExtractReviews(doc *goquery.Document) listing.ReviewSummary {
	summary := listing.ReviewSummary{}

	scoreComp := doc.Find(reviewScoreSelector).First()
	if scoreComp.Length() > 0 {
		if val := helpers.CleanText(scoreComp.Find(`div[aria-hidden="true"]`).First().Text()); val != "" {
			if rating, err := strconv.ParseFloat(val, 64); err == nil {
				summary.Rating = rating
			}
		}
		if m := reviewCountRegex.FindStringSubmatch(scoreComp.Text()); m != nil {
			if count, err := strconv.Atoi(m[1]); err == nil {
				summary.ReviewCount = count
			}
		}
	}

	doc.Find(reviewSubscoreSelector).Each(func(_ int, row *goquery.Selection) {
		label := row.Find(reviewLabelSelector).First()
		if label.Length() == 0 {
			label = row.Find("div").First()
		}
		value := row.Find(reviewValueSelector).First()
		if label.Length() == 0 || value.Length() == 0 {
			return
		}

		rating, err := strconv.ParseFloat(helpers.CleanText(value.Text()), 64)
		if err != nil {
			return
		}

		summary.Categories = append(summary.Categories, listing.ReviewCategory{
			Category: helpers.CleanText(label.Text()),
			Rating:   rating,
		})
	})

	return summary
}
