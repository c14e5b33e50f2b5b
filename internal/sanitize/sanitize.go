// Package sanitize cleans untrusted HTML with an allowlist policy.
//
// The pipeline is: parse the input as an HTML5 fragment, walk it as a token
// stream, drop what the Policy does not allow, run the Filter chain
// (link-ification, element narrowing, ...), apply the Policy once more to
// what the filters produced, and serialize the result. Every
// failure is a rejection: callers get either fully sanitized HTML or an error
// matching ErrRejected, never a partial result.
package sanitize

import (
	"strings"
)

// maxPasses bounds how often the pipeline is re-run to reach a fixed point.
const maxPasses = 3

// Sanitizer applies a policy and filter chain. It is immutable once built and
// safe for concurrent use.
type Sanitizer struct {
	policy        *compiledPolicy
	filters       []Filter
	maxInputBytes int
	maxDepth      int
}

type settings struct {
	policy  *Policy
	filters []Filter
}

// Option configures a Sanitizer.
type Option func(*settings)

// WithPolicy replaces the whole policy.
func WithPolicy(p *Policy) Option {
	return func(s *settings) { s.policy = p.Clone() }
}

// WithTags replaces the allowed tags.
func WithTags(tags ...string) Option {
	return func(s *settings) { s.policy.Tags = tags }
}

// WithAttributes replaces the attribute validator.
func WithAttributes(v AttributeValidator) Option {
	return func(s *settings) { s.policy.Attributes = v }
}

// WithStyles replaces the CSS properties allowed in style attributes.
func WithStyles(styles ...string) Option {
	return func(s *settings) { s.policy.Styles = styles }
}

// WithMaxInputBytes sets the input size limit. Zero disables it.
func WithMaxInputBytes(n int) Option {
	return func(s *settings) { s.policy.MaxInputBytes = n }
}

// WithMaxDepth sets the element nesting limit.
func WithMaxDepth(n int) Option {
	return func(s *settings) { s.policy.MaxDepth = n }
}

// WithFilters replaces the filter chain. WithFilters() with no arguments
// turns off link-ification and checkbox narrowing.
func WithFilters(filters ...Filter) Option {
	return func(s *settings) { s.filters = filters }
}

// WithExtraFilters appends filters to the chain.
func WithExtraFilters(filters ...Filter) Option {
	return func(s *settings) { s.filters = append(s.filters, filters...) }
}

// DefaultFilters returns the default chain: Linkify (skipping <pre>, new
// links nofollow) followed by DisabledCheckboxes.
func DefaultFilters() []Filter {
	return []Filter{DefaultLinkify(), DisabledCheckboxes()}
}

// New builds a Sanitizer from the default policy and filters adjusted by opts.
func New(opts ...Option) *Sanitizer {
	s := &settings{
		policy:  defaultPolicy.Clone(),
		filters: DefaultFilters(),
	}
	for _, opt := range opts {
		opt(s)
	}

	maxDepth := s.policy.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultPolicy.MaxDepth
	}

	policy := compile(s.policy)
	return &Sanitizer{
		policy:        policy,
		filters:       bindFilters(s.filters, policy),
		maxInputBytes: s.policy.MaxInputBytes,
		maxDepth:      maxDepth,
	}
}

var defaultSanitizer = New()

// Clean sanitizes html with the default policy, or with a Sanitizer built
// from opts when any are given.
func Clean(html string, opts ...Option) (string, error) {
	if len(opts) == 0 {
		return defaultSanitizer.Sanitize(html)
	}
	return New(opts...).Sanitize(html)
}

// Sanitize returns src with everything the policy does not allow removed.
//
// The output is a fixed point: sanitizing it again returns it unchanged. When
// the parser restructures the cleaned markup (for example after a dropped
// wrapper tag) the pipeline is re-run on its own output; output that has not
// settled after a few passes is rejected with ErrUnstable. Output larger than
// the input limit is rejected with ErrTooLarge, since it could not be
// sanitized again.
func (s *Sanitizer) Sanitize(src string) (string, error) {
	if !s.fits(src) {
		return "", ErrTooLarge
	}

	out, err := s.pass(strings.ToValidUTF8(src, "\uFFFD"))
	if err != nil {
		return "", err
	}
	for i := 1; i < maxPasses; i++ {
		again, err := s.pass(out)
		if err != nil {
			return "", err
		}
		if again == out {
			if !s.fits(out) {
				return "", ErrTooLarge
			}
			return out, nil
		}
		out = again
	}
	return "", ErrUnstable
}

func (s *Sanitizer) fits(html string) bool {
	return s.maxInputBytes <= 0 || len(html) <= s.maxInputBytes
}

func (s *Sanitizer) pass(src string) (string, error) {
	frag, err := Parse(src, s.maxDepth)
	if err != nil {
		return "", err
	}

	out, err := Serialize(s.policy.Filter(Chain(s.policy.Filter(frag.Tokens()), s.filters...)))
	if ferr := frag.Err(); ferr != nil {
		return "", ferr
	}
	if err != nil {
		return "", err
	}
	return out, nil
}
