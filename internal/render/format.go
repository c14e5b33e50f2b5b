package render

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is the markup language of a description.
type Format string

const (
	FormatAuto       Format = "auto"
	FormatMarkdown   Format = "markdown"   // GitHub Flavored Markdown
	FormatCommonMark Format = "commonmark" // Markdown without GFM extensions
	FormatAsciiDoc   Format = "asciidoc"
	FormatOrg        Format = "org"
	FormatText       Format = "text"
	FormatHTML       Format = "html"
)

var (
	// ErrUnsupportedFormat reports a format or content type with no renderer.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrBinary reports content that is not text.
	ErrBinary = errors.New("binary content")
)

var formats = []Format{
	FormatAuto, FormatMarkdown, FormatCommonMark, FormatAsciiDoc,
	FormatOrg, FormatText, FormatHTML,
}

// ParseFormat validates a format name as given on the command line or in a
// ?format= query parameter. The empty string means FormatAuto.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatAuto, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range formats {
		if f == known {
			return f, nil
		}
	}
	if f == "md" || f == "gfm" {
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// extFormats maps file extensions to formats.
var extFormats = map[string]Format{
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".mdown":    FormatMarkdown,
	".mkd":      FormatMarkdown,
	".adoc":     FormatAsciiDoc,
	".asciidoc": FormatAsciiDoc,
	".asc":      FormatAsciiDoc,
	".org":      FormatOrg,
	".txt":      FormatText,
	".text":     FormatText,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

// DetectFormat determines the format of a file from its name. Unknown
// extensions return FormatAuto so that the content is sniffed instead.
func DetectFormat(filename string) Format {
	base := path.Base(filename)
	if base == "." || base == "/" {
		return FormatAuto
	}
	if f, ok := extFormats[strings.ToLower(path.Ext(base))]; ok {
		return f
	}
	return FormatAuto
}

// FormatFromContentType maps a description content type such as
// "text/markdown; variant=GFM" to a format. An empty content type means
// FormatAuto.
func FormatFromContentType(contentType string) (Format, error) {
	if strings.TrimSpace(contentType) == "" {
		return FormatAuto, nil
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	switch mediaType {
	case "text/markdown", "text/x-markdown":
		if strings.EqualFold(params["variant"], "commonmark") {
			return FormatCommonMark, nil
		}
		return FormatMarkdown, nil
	case "text/asciidoc", "text/x-asciidoc":
		return FormatAsciiDoc, nil
	case "text/org", "text/x-org":
		return FormatOrg, nil
	case "text/plain":
		return FormatText, nil
	case "text/html":
		return FormatHTML, nil
	case "application/octet-stream":
		return FormatAuto, nil
	}
	return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, mediaType)
}

// Sniff picks a format from the content itself: HTML documents are passed
// through as HTML, any other text is treated as Markdown. Content that is not
// text returns ErrBinary.
func Sniff(source []byte) (Format, error) {
	if len(source) == 0 {
		return FormatMarkdown, nil
	}
	detected := mimetype.Detect(source)
	if detected.Is("text/html") {
		return FormatHTML, nil
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return FormatMarkdown, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrBinary, detected.String())
}
