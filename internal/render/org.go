package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/niklasfasching/go-org/org"
)

var errIncludeDisabled = errors.New("includes are disabled")

// OrgRenderer renders Org-mode content to HTML.
type OrgRenderer struct{}

// NewOrgRenderer creates a new Org-mode renderer.
func NewOrgRenderer() *OrgRenderer {
	return &OrgRenderer{}
}

// Render converts Org-mode source to HTML and extracts metadata.
func (r *OrgRenderer) Render(source []byte) ([]byte, *Meta, error) {
	conf := org.New()
	conf.Log = log.New(io.Discard, "", 0) // suppress warnings
	conf.ReadFile = refuseInclude

	writer := org.NewHTMLWriter()
	writer.TopLevelHLevel = 1 // map * headings to <h1>

	doc := conf.Parse(bytes.NewReader(source), "")
	htmlStr, err := doc.Write(writer)
	if err != nil {
		return nil, nil, fmt.Errorf("render org: %w", err)
	}

	meta := &Meta{}

	// Extract title from #+TITLE keyword or first headline
	if title, ok := doc.BufferSettings["TITLE"]; ok && title != "" {
		meta.Title = title
	} else {
		meta.Title = firstOrgHeadlineTitle(doc)
	}

	return []byte(htmlStr), meta, nil
}

// refuseInclude stops #+INCLUDE from reading local files.
func refuseInclude(filename string) ([]byte, error) {
	return nil, fmt.Errorf("include %q: %w", filename, errIncludeDisabled)
}

// firstOrgHeadlineTitle returns the text of the first headline in the document.
func firstOrgHeadlineTitle(doc *org.Document) string {
	for _, node := range doc.Nodes {
		if h, ok := node.(org.Headline); ok {
			return strings.TrimSpace(org.String(h.Title...))
		}
	}
	return ""
}
