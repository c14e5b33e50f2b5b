package sanitize

import (
	"slices"
	"strings"
)

// The default allowlists are part of the published behavior of this package.
// Any change to them changes what untrusted descriptions can display and must
// be called out in the changelog as a security-relevant change.

var defaultTags = []string{
	"a", "abbr", "acronym", "b", "blockquote", "code", "em", "i", "li", "ol",
	"strong", "ul",

	"br", "caption", "cite", "col", "colgroup", "dd", "del", "details", "div",
	"dl", "dt", "h1", "h2", "h3", "h4", "h5", "h6", "hr", "img", "p", "pre",
	"span", "sub", "summary", "sup", "table", "tbody", "td", "th", "thead",
	"tr", "tt", "kbd", "var", "input",
}

var defaultAttributeNames = AttributeMap{
	"a":       {"href", "title"},
	"abbr":    {"title"},
	"acronym": {"title"},

	"*":     {"id"},
	"img":   {"src", "width", "height", "alt", "align"},
	"th":    {"align"},
	"td":    {"align"},
	"h1":    {"align"},
	"h2":    {"align"},
	"h3":    {"align"},
	"h4":    {"align"},
	"h5":    {"align"},
	"h6":    {"align"},
	"p":     {"align"},
	"input": {"checked", "disabled"},
}

// pygmentsClasses are the short token classes emitted by syntax highlighters
// that follow the Pygments naming scheme (chroma does).
const pygmentsClasses = "bp c c1 ch cm cp cpf cs dl err esc fm g gd ge gh gi go gp gr gs gt " +
	"gu il k kc kd kn kp kr kt l ld m mb mf mh mi mo n na nb nc nd ne nf " +
	"ni nl nn no nt nv nx o ow p py s s1 s2 sa sb sc sd se sh si sr ss sx " +
	"vc vg vi vm w x"

var defaultAttributeValues = AttributeValues{
	"img":   {"class": {"align-left", "align-right", "align-center"}},
	"span":  {"class": strings.Fields(pygmentsClasses)},
	"a":     {"rel": {"nofollow"}},
	"input": {"type": {"checkbox"}},
}

var defaultStyles = []string{}

// defaultPolicy is shared read-only by every Sanitizer built without options.
var defaultPolicy = &Policy{
	Tags: defaultTags,
	Attributes: &Attributes{
		Names:  defaultAttributeNames,
		Values: defaultAttributeValues,
	},
	Styles:        defaultStyles,
	MaxInputBytes: 5 * 1024 * 1024,
	MaxDepth:      512,
}

// DefaultTags returns a copy of the tags allowed by default.
func DefaultTags() []string {
	return slices.Clone(defaultTags)
}

// DefaultAttributes returns a copy of the default attribute policy: the
// per-tag name allowlist plus exact-value lists for class (img alignment and
// highlighter token classes), a[rel] and input[type].
func DefaultAttributes() *Attributes {
	return defaultPolicy.Attributes.(*Attributes).Clone()
}

// DefaultStyles returns a copy of the CSS properties allowed inside style
// attributes. It is empty: inline styles are stripped.
func DefaultStyles() []string {
	return slices.Clone(defaultStyles)
}

// DefaultPolicy returns a copy of the default policy.
func DefaultPolicy() *Policy {
	return defaultPolicy.Clone()
}
