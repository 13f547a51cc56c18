package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractImagesRewritesAndDedupes(t *testing.T) {
	html := `
	<div data-testid="GalleryUnifiedDesktop-wrapper">
		<img src="https://cf.bstatic.com/images/hotel/max300x300/123/img.jpg?k=abc123&amp;x=1"/>
		<img data-lazy="https://cf.bstatic.com/images/hotel/max300x300/123/img.jpg?k=abc123&amp;y=2"/>
		<img data-src="https://cf.bstatic.com/images/hotel/max500/456/other.jpg?cache=1"/>
		<img src="/relative/path/img.jpg"/>
		<img src="https://example.com/banner.png"/>
	</div>`

	doc, err := NewDocument(html)
	assert.NoError(t, err)

	images := ExtractImages(doc)
	assert.Equal(t, []string{
		"https://cf.bstatic.com/images/hotel/max1280x900/123/img.jpg?k=abc123",
		"https://cf.bstatic.com/images/hotel/max1280x900/456/other.jpg",
	}, images)
}

func TestExtractImagesLegacyWrapper(t *testing.T) {
	html := `
	<div id="photo_wrapper">
		<img srcset="https://cf.bstatic.com/images/hotel/max300x300/789/third.jpg?k=deadbeef 1x, https://cf.bstatic.com/images/hotel/max600/789/third.jpg 2x"/>
	</div>`

	doc, err := NewDocument(html)
	assert.NoError(t, err)

	images := ExtractImages(doc)
	assert.Equal(t, []string{
		"https://cf.bstatic.com/images/hotel/max1280x900/789/third.jpg?k=deadbeef",
	}, images)
}

func TestExtractImagesNoGallery(t *testing.T) {
	doc, err := NewDocument("<html><body></body></html>")
	assert.NoError(t, err)
	assert.Empty(t, ExtractImages(doc))
}

func TestNormalizeImageURL(t *testing.T) {
	assert.Equal(t,
		"https://cf.bstatic.com/images/hotel/max1280x900/1/a.jpg?k=0f9e8d",
		normalizeImageURL("https://cf.bstatic.com/images/hotel/max300x300/1/a.jpg?k=0f9e8d&o=abc"))
	// No signing key: the query is dropped entirely.
	assert.Equal(t,
		"https://cf.bstatic.com/images/hotel/max1280x900/1/a.jpg",
		normalizeImageURL("https://cf.bstatic.com/images/hotel/max500/1/a.jpg?cache=1"))
}
