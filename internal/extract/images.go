package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"nattapol/villaharvester/internal/listing"
)

const (
	gallerySelector         = `[data-testid="GalleryUnifiedDesktop-wrapper"]`
	galleryFallbackSelector = "#photo_wrapper"
	highResToken            = "max1280x900"
)

var (
	resolutionRegex = regexp.MustCompile(`max\d+[x\d+]*`)
	signingKeyRegex = regexp.MustCompile(`k=[a-f0-9]+`)
)

// imageSourceCandidates lists the attributes an image URL may hide in,
// in priority order. srcset is handled separately.
var imageSourceCandidates = []string{"src", "data-lazy", "data-src"}

// normalizeImageURL rewrites the resolution token to the high-res
// target and strips the query string down to the signing key, if any.
func normalizeImageURL(src string) string {
	highRes := resolutionRegex.ReplaceAllString(src, highResToken)

	if idx := strings.Index(highRes, "?"); idx >= 0 {
		base := highRes[:idx]
		if key := signingKeyRegex.FindString(highRes); key != "" {
			return base + "?" + key
		}
		return base
	}
	return highRes
}

// ExtractImages scans the gallery for image URLs, checking the lazy
// load attributes when the direct source is absent, and returns
// high-res URLs deduplicated in first-seen order.
func ExtractImages(doc *goquery.Document) []string {
	gallery := doc.Find(gallerySelector).First()
	if gallery.Length() == 0 {
		gallery = doc.Find(galleryFallbackSelector).First()
	}
	if gallery.Length() == 0 {
		return nil
	}

	var images []string
	gallery.Find("img").Each(func(_ int, img *goquery.Selection) {
		var candidates []string
		for _, attr := range imageSourceCandidates {
			if src, ok := img.Attr(attr); ok {
				candidates = append(candidates, src)
			}
		}
		if srcset, ok := img.Attr("srcset"); ok && srcset != "" {
			first := strings.SplitN(srcset, ",", 2)[0]
			candidates = append(candidates, strings.SplitN(strings.TrimSpace(first), " ", 2)[0])
		}

		for _, src := range candidates {
			if src == "" || !strings.Contains(src, "http") || !strings.Contains(src, ".jpg") {
				continue
			}
			images = append(images, normalizeImageURL(src))
		}
	})

	return listing.DedupeStrings(images)
}
