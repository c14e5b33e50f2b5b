// Package rewrite resolves relative links in sanitized descriptions.
package rewrite

import (
	"errors"
	"iter"
	"net/url"
	"strings"

	"github.com/air-gapped/readme/internal/sanitize"
)

var errNotAbsolute = errors.New("base URL must be an absolute http or https URL")

// urlAttrs are the attributes rewritten by RelativeURLs.
var urlAttrs = map[string]bool{"href": true, "src": true}

// RelativeURLs returns a filter that resolves relative href and src values
// against base, so that a description rendered away from its repository
// still points at the repository's files. A base of "https://host/repo/README.md"
// turns "docs/arch.png" into "https://host/repo/docs/arch.png".
// Absolute, protocol-relative, fragment-only and query-only URLs are left
// untouched, as are values that do not parse. A nil base disables rewriting.
func RelativeURLs(base *url.URL) sanitize.Filter {
	return sanitize.FilterFunc(func(in iter.Seq[sanitize.Token]) iter.Seq[sanitize.Token] {
		if base == nil {
			return in
		}
		return func(yield func(sanitize.Token) bool) {
			for tok := range in {
				if tok.IsTag() {
					tok.Attrs = rewriteAttrs(base, tok.Attrs)
				}
				if !yield(tok) {
					return
				}
			}
		}
	})
}

func rewriteAttrs(base *url.URL, attrs []sanitize.Attribute) []sanitize.Attribute {
	var out []sanitize.Attribute
	for i, a := range attrs {
		if !urlAttrs[a.Name] {
			continue
		}
		resolved, ok := resolve(base, a.Value)
		if !ok {
			continue
		}
		if out == nil {
			// Tokens share attribute slices with earlier filters.
			out = append([]sanitize.Attribute(nil), attrs...)
		}
		out[i].Value = resolved
	}
	if out == nil {
		return attrs
	}
	return out
}

func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "//") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil || ref.Scheme != "" || ref.Host != "" {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// ParseBase validates a base URL for RelativeURLs. It must be absolute http
// or https. The empty string returns a nil URL.
func ParseBase(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: errNotAbsolute}
	}
	return u, nil
}
