package sanitize

import (
	"iter"
	"slices"
)

// Policy is the allowlist applied to every token. The zero value allows
// nothing; start from DefaultPolicy to adjust the defaults.
type Policy struct {
	// Tags are the element names kept in the output. Other elements lose
	// their tags but keep their content.
	Tags []string

	// Attributes decides which attributes survive on allowed tags. A nil
	// validator drops every attribute.
	Attributes AttributeValidator

	// Styles are the CSS properties kept inside an allowed style attribute.
	// With no styles the attribute is always dropped.
	Styles []string

	// MaxInputBytes rejects larger inputs. Zero means no limit.
	MaxInputBytes int

	// MaxDepth rejects inputs nesting elements deeper than this.
	MaxDepth int
}

// Clone returns a copy of p. The attribute validator is shared unless it is
// an *Attributes, which is deep-copied.
func (p *Policy) Clone() *Policy {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	c.Styles = slices.Clone(p.Styles)
	if a, ok := p.Attributes.(*Attributes); ok {
		c.Attributes = a.Clone()
	}
	return &c
}

// compiledPolicy is a Policy with its lists turned into lookup sets.
type compiledPolicy struct {
	tags       map[string]bool
	attributes AttributeValidator
	styles     map[string]bool
}

func compile(p *Policy) *compiledPolicy {
	c := &compiledPolicy{
		tags:       make(map[string]bool, len(p.Tags)),
		attributes: p.Attributes,
		styles:     make(map[string]bool, len(p.Styles)),
	}
	for _, t := range p.Tags {
		c.tags[t] = true
	}
	for _, s := range p.Styles {
		c.styles[s] = true
	}
	return c
}

// Filter applies the policy to a token stream. Disallowed tags are removed
// together with their end tags; comments and doctypes are removed; text
// passes through.
func (c *compiledPolicy) Filter(in iter.Seq[Token]) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for tok := range in {
			switch tok.Kind {
			case StartTagToken, SelfClosingTagToken:
				if !c.tags[tok.Tag] {
					continue
				}
				tok.Attrs = c.filterAttrs(tok.Tag, tok.Attrs)
			case EndTagToken:
				if !c.tags[tok.Tag] {
					continue
				}
			case CommentToken, DoctypeToken:
				continue
			}
			if !yield(tok) {
				return
			}
		}
	}
}

func (c *compiledPolicy) filterAttrs(tag string, attrs []Attribute) []Attribute {
	if len(attrs) == 0 || c.attributes == nil {
		return nil
	}
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		if !c.attributes.AllowAttribute(tag, a.Name, a.Value) {
			continue
		}
		if a.Name == "style" {
			style, ok := filterStyle(a.Value, c.styles)
			if !ok {
				continue
			}
			a.Value = style
		}
		out = append(out, a)
	}
	return out
}

// allows reports whether a tag with exactly attrs would pass the policy
// unchanged.
func (c *compiledPolicy) allows(tag string, attrs []Attribute) bool {
	if !c.tags[tag] {
		return false
	}
	return slices.Equal(c.filterAttrs(tag, attrs), attrs)
}
