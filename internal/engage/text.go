package engage

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var sanitizePolicy = bluemonday.UGCPolicy()

// SanitizeHTML strips unsafe tags and attributes from a grant description
// before it is placed in a ViewModel.
func SanitizeHTML(s string) string {
	return sanitizePolicy.Sanitize(s)
}

// HTMLToText converts HTML to plain text, collapsing whitespace. Used to
// build the search-facing summary field.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanText(html)
	}
	return cleanText(doc.Text())
}

// cleanText collapses runs of whitespace into single spaces and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
