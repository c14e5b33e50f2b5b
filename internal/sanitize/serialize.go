package sanitize

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// rawTextElements hold text the parser does not decode, so it must not be
// escaped on the way out either.
var rawTextElements = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true, "noscript": true,
	"plaintext": true, "script": true, "style": true, "xmp": true,
}

// newlineElements drop a newline directly after their start tag when parsed.
var newlineElements = map[string]bool{
	"pre": true, "listing": true, "textarea": true,
}

var (
	tagNameRe  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)
	attrNameRe = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:.-]*$`)
)

// Serialize renders a token stream as HTML. Text and attribute values are
// escaped; void elements get no end tag; attribute order is kept. It returns
// ErrUnserializable for streams that cannot be written back safely: invalid
// tag or attribute names, end tags that do not match the open element,
// elements left open, or comments that would end early.
func Serialize(tokens iter.Seq[Token]) (string, error) {
	var b strings.Builder
	var open []string
	var prev Token

	for tok := range tokens {
		switch tok.Kind {
		case TextToken:
			if n := len(open); n > 0 && rawTextElements[open[n-1]] {
				if strings.Contains(strings.ToLower(tok.Data), "</"+open[n-1]) {
					return "", fmt.Errorf("%w: raw text closes its own <%s>", ErrUnserializable, open[n-1])
				}
				b.WriteString(tok.Data)
				break
			}
			if prev.Kind == StartTagToken && newlineElements[prev.Tag] && strings.HasPrefix(tok.Data, "\n") {
				b.WriteByte('\n')
			}
			b.WriteString(html.EscapeString(tok.Data))

		case StartTagToken, SelfClosingTagToken:
			if err := writeStartTag(&b, tok); err != nil {
				return "", err
			}
			switch {
			case voidElements[tok.Tag]:
			case tok.Kind == SelfClosingTagToken:
				b.WriteString("</" + tok.Tag + ">")
			default:
				open = append(open, tok.Tag)
			}

		case EndTagToken:
			if voidElements[tok.Tag] {
				break
			}
			n := len(open)
			if n == 0 || open[n-1] != tok.Tag {
				return "", fmt.Errorf("%w: unexpected </%s>", ErrUnserializable, tok.Tag)
			}
			open = open[:n-1]
			b.WriteString("</" + tok.Tag + ">")

		case CommentToken:
			if strings.Contains(tok.Data, "--") || strings.HasPrefix(tok.Data, ">") {
				return "", fmt.Errorf("%w: comment cannot be written safely", ErrUnserializable)
			}
			b.WriteString("<!--" + tok.Data + "-->")

		case DoctypeToken:
			if strings.ContainsAny(tok.Data, "<>") {
				return "", fmt.Errorf("%w: invalid doctype", ErrUnserializable)
			}
			b.WriteString("<!DOCTYPE " + tok.Data + ">")

		default:
			return "", fmt.Errorf("%w: unknown token kind %s", ErrUnserializable, tok.Kind)
		}
		prev = tok
	}

	if len(open) > 0 {
		return "", fmt.Errorf("%w: <%s> left open", ErrUnserializable, open[len(open)-1])
	}
	return b.String(), nil
}

func writeStartTag(b *strings.Builder, tok Token) error {
	if !tagNameRe.MatchString(tok.Tag) {
		return fmt.Errorf("%w: invalid tag name %q", ErrUnserializable, tok.Tag)
	}
	b.WriteByte('<')
	b.WriteString(tok.Tag)
	for _, a := range tok.Attrs {
		if !attrNameRe.MatchString(a.Name) {
			return fmt.Errorf("%w: invalid attribute name %q on <%s>", ErrUnserializable, a.Name, tok.Tag)
		}
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return nil
}
