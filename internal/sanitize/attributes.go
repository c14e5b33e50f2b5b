package sanitize

import (
	"maps"
	"net/url"
	"slices"
	"strings"
)

// An AttributeValidator decides whether an attribute may stay on an allowed tag.
type AttributeValidator interface {
	AllowAttribute(tag, name, value string) bool
}

// AttributeFunc adapts an ordinary function to an AttributeValidator.
type AttributeFunc func(tag, name, value string) bool

// AllowAttribute calls f(tag, name, value).
func (f AttributeFunc) AllowAttribute(tag, name, value string) bool {
	return f(tag, name, value)
}

// AttributeMap lists the attribute names allowed per tag. Names under the
// "*" key are allowed on every tag. Values are not inspected.
type AttributeMap map[string][]string

// AllowAttribute reports whether name is listed for tag or for "*".
func (m AttributeMap) AllowAttribute(tag, name, _ string) bool {
	return slices.Contains(m[tag], name) || slices.Contains(m["*"], name)
}

// AttributeValues lists, per tag and attribute, the exact values allowed.
// The whole value is compared, so class="a b" only matches a listed "a b".
type AttributeValues map[string]map[string][]string

// AllowAttribute reports whether value is listed for tag and name.
func (v AttributeValues) AllowAttribute(tag, name, value string) bool {
	return slices.Contains(v[tag][name], value)
}

func (v AttributeValues) constrains(tag, name string) bool {
	_, ok := v[tag][name]
	return ok
}

// Attributes combines a name allowlist with exact-value constraints. An
// attribute constrained by Values must match one of its listed values;
// any other attribute must appear in Names.
type Attributes struct {
	Names  AttributeMap
	Values AttributeValues
}

// AllowAttribute implements AttributeValidator.
func (a *Attributes) AllowAttribute(tag, name, value string) bool {
	if a.Values.constrains(tag, name) {
		return a.Values.AllowAttribute(tag, name, value)
	}
	// class never falls through to the name list: a class on a tag without
	// listed values is rejected.
	if name == "class" {
		return false
	}
	return a.Names.AllowAttribute(tag, name, value)
}

// Clone returns a deep copy that can be modified without touching a.
func (a *Attributes) Clone() *Attributes {
	names := make(AttributeMap, len(a.Names))
	for tag, list := range a.Names {
		names[tag] = slices.Clone(list)
	}
	values := make(AttributeValues, len(a.Values))
	for tag, byName := range a.Values {
		m := maps.Clone(byName)
		for name, list := range m {
			m[name] = slices.Clone(list)
		}
		values[tag] = m
	}
	return &Attributes{Names: names, Values: values}
}

// urlAttributes hold URLs that a browser may navigate to or load.
var urlAttributes = map[string]bool{
	"href": true, "src": true, "cite": true, "action": true,
	"formaction": true, "poster": true, "background": true,
	"longdesc": true, "xlink:href": true,
}

type schemeValidator struct {
	next    AttributeValidator
	schemes []string
}

// RestrictURLSchemes wraps next so that URL-bearing attributes (href, src and
// similar) are also required to use one of schemes. Relative URLs have no
// scheme and are accepted. Without this wrapper URL schemes are not checked.
func RestrictURLSchemes(next AttributeValidator, schemes ...string) AttributeValidator {
	lower := make([]string, 0, len(schemes))
	for _, s := range schemes {
		lower = append(lower, strings.ToLower(strings.TrimSpace(s)))
	}
	return &schemeValidator{next: next, schemes: lower}
}

func (v *schemeValidator) AllowAttribute(tag, name, value string) bool {
	if !v.next.AllowAttribute(tag, name, value) {
		return false
	}
	if !urlAttributes[name] {
		return true
	}
	scheme, ok := urlScheme(value)
	if !ok {
		return false
	}
	return scheme == "" || slices.Contains(v.schemes, scheme)
}

// urlScheme extracts the lower-cased scheme of raw the way a browser would
// read it: surrounding whitespace and embedded control characters are ignored.
func urlScheme(raw string) (string, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	u, err := url.Parse(cleaned)
	if err != nil {
		return "", false
	}
	return strings.ToLower(u.Scheme), true
}
