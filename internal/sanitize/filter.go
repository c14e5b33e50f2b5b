package sanitize

import "iter"

// A Filter transforms a token stream lazily. Filters run in order after the
// policy and must keep the stream balanced: every StartTag they emit needs a
// matching EndTag. Their output goes through the policy again, so markup a
// filter adds is still held to the allowlist.
type Filter interface {
	Filter(in iter.Seq[Token]) iter.Seq[Token]
}

// FilterFunc adapts a function to a Filter.
type FilterFunc func(in iter.Seq[Token]) iter.Seq[Token]

// Filter calls f(in).
func (f FilterFunc) Filter(in iter.Seq[Token]) iter.Seq[Token] {
	return f(in)
}

// Chain applies filters in order.
func Chain(in iter.Seq[Token], filters ...Filter) iter.Seq[Token] {
	for _, f := range filters {
		in = f.Filter(in)
	}
	return in
}

// policyBinder is implemented by filters that consult the policy before
// emitting new markup.
type policyBinder interface {
	bindPolicy(c *compiledPolicy) Filter
}

// bindFilters gives each policy-aware filter the compiled policy.
func bindFilters(filters []Filter, c *compiledPolicy) []Filter {
	out := make([]Filter, len(filters))
	for i, f := range filters {
		if b, ok := f.(policyBinder); ok {
			f = b.bindPolicy(c)
		}
		out[i] = f
	}
	return out
}
