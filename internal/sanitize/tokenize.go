package sanitize

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidElements never have children or an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// impliedEndTags are closed by the parser as soon as a sibling opens, so
// leaving them unclosed does not deepen the tree.
var impliedEndTags = map[string]bool{
	"p": true, "li": true, "dt": true, "dd": true, "option": true,
	"optgroup": true, "rb": true, "rp": true, "rt": true, "rtc": true,
	"tr": true, "td": true, "th": true, "tbody": true, "thead": true,
	"tfoot": true, "colgroup": true, "caption": true,
	"html": true, "head": true, "body": true,
}

// Fragment is a parsed HTML fragment. Tokens walks it lazily; Err reports
// whether the walk was cut short by the depth limit.
type Fragment struct {
	nodes    []*html.Node
	maxDepth int
	err      error
}

// Parse builds an HTML5 fragment (as if it were the content of a <div>)
// from src. Malformed markup is recovered the way browsers recover it. Nesting
// deeper than maxDepth rejects the input with ErrTooDeep before the tree is
// built, so pathological inputs cost a single linear scan.
func Parse(src string, maxDepth int) (*Fragment, error) {
	if err := checkDepth(src, maxDepth); err != nil {
		return nil, err
	}

	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrUnserializable, err)
	}

	return &Fragment{nodes: nodes, maxDepth: maxDepth}, nil
}

// checkDepth approximates the nesting depth of the tree the parser would build
// using only the tokenizer. It over-counts rather than under-counts.
func checkDepth(src string, maxDepth int) error {
	z := html.NewTokenizer(strings.NewReader(src))
	open := make(map[string]int)
	depth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: tokenize: %v", ErrUnserializable, z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if voidElements[tag] || impliedEndTags[tag] {
				continue
			}
			// Self-closing syntax only takes effect inside SVG and MathML.
			if tt == html.SelfClosingTagToken && open["svg"]+open["math"] > 0 {
				continue
			}
			open[tag]++
			depth++
			if depth > maxDepth {
				return ErrTooDeep
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if open[tag] > 0 {
				open[tag]--
				depth--
			}
		}
	}
}

// Tokens returns the fragment as a token stream. Elements become a StartTag,
// their children, then an EndTag; void elements become a single
// SelfClosingTag. The walk is iterative and stops with ErrTooDeep if the tree
// is deeper than the limit.
func (f *Fragment) Tokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for _, root := range f.nodes {
			if !f.walk(root, yield) {
				return
			}
		}
	}
}

// Err returns the error that stopped the last walk, if any.
func (f *Fragment) Err() error {
	return f.err
}

func (f *Fragment) walk(root *html.Node, yield func(Token) bool) bool {
	depth := 0
	n := root
	for {
		tok, ok := nodeToken(n)
		if ok && !yield(tok) {
			return false
		}

		if isContainer(n) && n.FirstChild != nil {
			depth++
			if depth > f.maxDepth {
				f.err = ErrTooDeep
				return false
			}
			n = n.FirstChild
			continue
		}

		// Close n and every ancestor that has no further siblings.
		for {
			if isContainer(n) && !yield(EndTag(n.Data)) {
				return false
			}
			if n == root {
				return true
			}
			if n.NextSibling != nil {
				n = n.NextSibling
				break
			}
			n = n.Parent
			depth--
		}
	}
}

// isContainer reports whether n is an element that takes an end tag.
func isContainer(n *html.Node) bool {
	return n.Type == html.ElementNode && !voidElements[n.Data]
}

func nodeToken(n *html.Node) (Token, bool) {
	switch n.Type {
	case html.TextNode:
		return Text(n.Data), true
	case html.CommentNode:
		return Token{Kind: CommentToken, Data: n.Data}, true
	case html.DoctypeNode:
		return Token{Kind: DoctypeToken, Data: n.Data}, true
	case html.ElementNode:
		attrs := convertAttrs(n.Attr)
		if voidElements[n.Data] {
			return SelfClosingTag(n.Data, attrs...), true
		}
		return StartTag(n.Data, attrs...), true
	default:
		return Token{}, false
	}
}

// convertAttrs copies attributes, keeping only the first occurrence of a name.
func convertAttrs(in []html.Attribute) []Attribute {
	if len(in) == 0 {
		return nil
	}
	out := make([]Attribute, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, Attribute{Name: name, Value: a.Val})
	}
	return out
}
