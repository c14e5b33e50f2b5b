package sanitize

import (
	"iter"
	"slices"
	"strings"

	"mvdan.cc/xurls/v2"
)

var urlRe = xurls.Relaxed()

// linkSchemes are the schemes of explicit URLs turned into links.
var linkSchemes = []string{"http", "https"}

// A LinkCallback inspects or rewrites the attributes of a link. created is
// true for links made by Linkify from plain text. Returning false vetoes the
// link: a new link is not created, an existing anchor loses its tags but keeps
// its text.
type LinkCallback func(attrs []Attribute, created bool) ([]Attribute, bool)

// NoFollow adds rel="nofollow" so that links do not pass ranking credit.
func NoFollow(attrs []Attribute, _ bool) ([]Attribute, bool) {
	out := slices.Clone(attrs)
	for i, a := range out {
		if a.Name != "rel" {
			continue
		}
		if !slices.Contains(strings.Fields(a.Value), "nofollow") {
			out[i].Value = strings.TrimSpace(a.Value + " nofollow")
		}
		return out, true
	}
	return append(out, Attribute{Name: "rel", Value: "nofollow"}), true
}

// Linkify wraps URLs found in text in <a> elements. Text inside an existing
// anchor, inside a SkipTags element or inside a raw text element is left
// alone. Inside a Sanitizer a link is only created when the policy keeps the
// <a> tag with every attribute the callbacks set, rel="nofollow" included. E-mail addresses and URIs without an authority (mailto:, tel:) are
// never linked. Each match is handled on its own, so a URL split across two
// text tokens is not joined.
type Linkify struct {
	SkipTags  []string
	Callbacks []LinkCallback

	// ModifyExisting also runs Callbacks on anchors already in the input.
	// By default authored links are passed through untouched.
	ModifyExisting bool

	// allow is set by the Sanitizer; links it refuses are not created.
	allow func(tag string, attrs []Attribute) bool
}

// DefaultLinkify skips <pre> blocks and marks new links nofollow.
func DefaultLinkify() Linkify {
	return Linkify{
		SkipTags:  []string{"pre"},
		Callbacks: []LinkCallback{NoFollow},
	}
}

// Filter implements Filter.
func (l Linkify) Filter(in iter.Seq[Token]) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		var inLink, skip int
		// One entry per open anchor: true when its start tag was vetoed.
		var vetoed []bool

		for tok := range in {
			switch tok.Kind {
			case StartTagToken:
				if l.skips(tok.Tag) {
					skip++
				}
				if tok.Tag == "a" {
					inLink++
					if l.ModifyExisting {
						attrs, ok := l.run(tok.Attrs, false)
						vetoed = append(vetoed, !ok)
						if !ok {
							continue
						}
						tok.Attrs = attrs
					}
				}

			case EndTagToken:
				if l.skips(tok.Tag) && skip > 0 {
					skip--
				}
				if tok.Tag == "a" {
					if inLink > 0 {
						inLink--
					}
					if n := len(vetoed); n > 0 {
						veto := vetoed[n-1]
						vetoed = vetoed[:n-1]
						if veto {
							continue
						}
					}
				}

			case TextToken:
				if inLink == 0 && skip == 0 {
					if !l.linkifyText(tok.Data, yield) {
						return
					}
					continue
				}
			}

			if !yield(tok) {
				return
			}
		}
	}
}

func (l Linkify) bindPolicy(c *compiledPolicy) Filter {
	l.allow = c.allows
	return l
}

func (l Linkify) skips(tag string) bool {
	return rawTextElements[tag] || slices.Contains(l.SkipTags, tag)
}

func (l Linkify) run(attrs []Attribute, created bool) ([]Attribute, bool) {
	for _, cb := range l.Callbacks {
		var ok bool
		if attrs, ok = cb(attrs, created); !ok {
			return nil, false
		}
	}
	return attrs, true
}

func (l Linkify) linkifyText(text string, yield func(Token) bool) bool {
	last := 0
	for _, m := range urlRe.FindAllStringIndex(text, -1) {
		match := text[m[0]:m[1]]
		// Part of an e-mail address such as first.name@example.com.
		if (m[0] > 0 && text[m[0]-1] == '@') || (m[1] < len(text) && text[m[1]] == '@') {
			continue
		}
		href, ok := linkTarget(match)
		if !ok {
			continue
		}
		attrs, ok := l.run([]Attribute{{Name: "href", Value: href}}, true)
		if !ok || (l.allow != nil && !l.allow("a", attrs)) {
			continue
		}

		if m[0] > last && !yield(Text(text[last:m[0]])) {
			return false
		}
		if !yield(StartTag("a", attrs...)) || !yield(Text(match)) || !yield(EndTag("a")) {
			return false
		}
		last = m[1]
	}

	if last < len(text) {
		return yield(Text(text[last:]))
	}
	return true
}

// linkTarget returns the href for a URL found in text. Bare domains get an
// http:// prefix.
func linkTarget(match string) (string, bool) {
	if scheme, _, ok := strings.Cut(match, "://"); ok {
		return match, slices.Contains(linkSchemes, strings.ToLower(scheme))
	}
	if strings.Contains(match, "@") {
		return "", false
	}
	if scheme, _, ok := strings.Cut(match, ":"); ok {
		if slices.Contains(xurls.SchemesNoAuthority, strings.ToLower(scheme)) {
			return "", false
		}
	}
	return "http://" + match, true
}
