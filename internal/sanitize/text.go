package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var stripAll = newStripAll()

func newStripAll() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}

// PlainText returns the text of an HTML fragment with every tag removed,
// entities decoded and runs of whitespace collapsed to one space. It is meant
// for summaries and search snippets, not for display as HTML.
func PlainText(fragment string) string {
	text := html.UnescapeString(stripAll.Sanitize(fragment))
	return strings.Join(strings.Fields(text), " ")
}
