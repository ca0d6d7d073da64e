package utils

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes all markup; used for plain-text fields.
	StrictPolicy *bluemonday.Policy
	// BodyPolicy for the rich message body composed in the console.
	BodyPolicy *bluemonday.Policy
)

func init() {
	StrictPolicy = bluemonday.StrictPolicy()

	BodyPolicy = bluemonday.UGCPolicy()

	// The compose editor produces basic rich text plus tables
	BodyPolicy.AllowElements("p", "br", "div", "span", "h1", "h2", "h3", "h4")
	BodyPolicy.AllowElements("strong", "em", "u", "s", "code", "pre")
	BodyPolicy.AllowElements("ul", "ol", "li", "blockquote")
	BodyPolicy.AllowElements("a", "img")
	BodyPolicy.AllowElements("table", "thead", "tbody", "tr", "th", "td")

	BodyPolicy.AllowAttrs("href").OnElements("a")
	BodyPolicy.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
	BodyPolicy.AllowAttrs("style").OnElements("span", "div", "p")

	BodyPolicy.RequireParseableURLs(true)
	BodyPolicy.AllowURLSchemes("http", "https", "mailto")
}

// SanitizeBody sanitizes the message body markup entered in the compose view.
func SanitizeBody(html string) string {
	return BodyPolicy.Sanitize(html)
}

// StripMarkup removes all HTML tags from content
func StripMarkup(html string) string {
	return StrictPolicy.Sanitize(html)
}
