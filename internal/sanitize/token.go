package sanitize

import (
	"fmt"
	"strings"
)

// Kind identifies the type of a Token.
type Kind uint8

const (
	TextToken Kind = iota + 1
	StartTagToken
	EndTagToken
	SelfClosingTagToken
	CommentToken
	DoctypeToken
)

func (k Kind) String() string {
	switch k {
	case TextToken:
		return "Text"
	case StartTagToken:
		return "StartTag"
	case EndTagToken:
		return "EndTag"
	case SelfClosingTagToken:
		return "SelfClosingTag"
	case CommentToken:
		return "Comment"
	case DoctypeToken:
		return "Doctype"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Attribute is a single name/value pair on a tag. Namespaced attributes
// (e.g. xlink:href inside SVG) carry the prefix in Name.
type Attribute struct {
	Name  string
	Value string
}

// Token is one structural unit of an HTML fragment.
//
// Tag is set for StartTag, EndTag and SelfClosingTag tokens. Data holds the
// decoded character data of Text tokens and the contents of Comment and
// Doctype tokens.
type Token struct {
	Kind  Kind
	Tag   string
	Attrs []Attribute
	Data  string
}

// Text returns a text token.
func Text(data string) Token {
	return Token{Kind: TextToken, Data: data}
}

// StartTag returns a start tag token.
func StartTag(tag string, attrs ...Attribute) Token {
	return Token{Kind: StartTagToken, Tag: tag, Attrs: attrs}
}

// EndTag returns an end tag token.
func EndTag(tag string) Token {
	return Token{Kind: EndTagToken, Tag: tag}
}

// SelfClosingTag returns a token for a void element such as <br> or <img>.
func SelfClosingTag(tag string, attrs ...Attribute) Token {
	return Token{Kind: SelfClosingTagToken, Tag: tag, Attrs: attrs}
}

// IsTag reports whether the token opens an element, void or not.
func (t Token) IsTag() bool {
	return t.Kind == StartTagToken || t.Kind == SelfClosingTagToken
}

// Attr returns the value of the named attribute.
func (t Token) Attr(name string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (t Token) String() string {
	switch t.Kind {
	case StartTagToken, SelfClosingTagToken:
		var b strings.Builder
		b.WriteString(t.Kind.String())
		b.WriteString("(")
		b.WriteString(t.Tag)
		for _, a := range t.Attrs {
			fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
		}
		b.WriteString(")")
		return b.String()
	case EndTagToken:
		return "EndTag(" + t.Tag + ")"
	default:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Data)
	}
}
