package sanitize

import (
	"iter"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestElementFilter(t *testing.T) {
	noTitle := ElementFilter{
		Tag: "abbr",
		Accept: func(tok Token) bool {
			_, ok := tok.Attr("title")
			return ok
		},
	}

	in := []Token{
		StartTag("abbr"),
		Text("a"),
		StartTag("abbr", Attribute{"title", "t"}),
		Text("b"),
		EndTag("abbr"),
		EndTag("abbr"),
	}
	want := []Token{
		Text("a"),
		StartTag("abbr", Attribute{"title", "t"}),
		Text("b"),
		EndTag("abbr"),
	}

	got := slices.Collect(noTitle.Filter(slices.Values(in)))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDisabledCheckboxes(t *testing.T) {
	tests := []struct {
		name  string
		attrs []Attribute
		want  bool
	}{
		{"disabled checkbox", []Attribute{{"type", "checkbox"}, {"disabled", ""}}, true},
		{"checked", []Attribute{{"type", "checkbox"}, {"disabled", ""}, {"checked", ""}}, true},
		{"enabled", []Attribute{{"type", "checkbox"}}, false},
		{"radio", []Attribute{{"type", "radio"}, {"disabled", ""}}, false},
		{"no type", []Attribute{{"disabled", ""}}, false},
		{"name attribute", []Attribute{{"type", "checkbox"}, {"disabled", ""}, {"name", "x"}}, false},
	}

	f := DisabledCheckboxes()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := []Token{SelfClosingTag("input", tc.attrs...)}
			got := slices.Collect(f.Filter(slices.Values(in)))
			if kept := len(got) == 1; kept != tc.want {
				t.Errorf("kept = %v, want %v", kept, tc.want)
			}
		})
	}
}

func TestChain(t *testing.T) {
	bang := FilterFunc(func(in iter.Seq[Token]) iter.Seq[Token] {
		return func(yield func(Token) bool) {
			for tok := range in {
				if tok.Kind == TextToken {
					tok.Data += "!"
				}
				if !yield(tok) {
					return
				}
			}
		}
	})

	got := slices.Collect(Chain(slices.Values([]Token{Text("a")}), bang, bang))
	if diff := cmp.Diff([]Token{Text("a!!")}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
