package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"nattapol/villaharvester/pkg/errors"
)

// NewDocument parses rendered HTML into a queryable document. All
// extractors in this package operate on the document's generic
// Find/Text/Attr surface; the site-specific selectors live next to the
// extractor that uses them.
func NewDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.NewParsing("", "failed to parse HTML document", err)
	}
	return doc, nil
}

// cleanClone returns a copy of sel with the removal selector stripped,
// so text extraction does not mutate the document.
func cleanClone(sel *goquery.Selection, removeSelector string) *goquery.Selection {
	if sel.Length() == 0 || removeSelector == "" {
		return sel
	}
	clone := sel.Clone()
	clone.Find(removeSelector).Remove()
	return clone
}
