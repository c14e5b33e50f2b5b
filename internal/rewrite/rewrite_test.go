package rewrite

import (
	"net/url"
	"testing"

	"github.com/air-gapped/readme/internal/sanitize"
)

func mustBase(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := ParseBase(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func clean(t *testing.T, base *url.URL, input string) string {
	t.Helper()
	out, err := sanitize.Clean(input, sanitize.WithExtraFilters(RelativeURLs(base)))
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestRelativeURLs(t *testing.T) {
	base := mustBase(t, "https://example.com/repo/blob/main/README.md")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"sibling link",
			`<a href="CONTRIBUTING.md">Contributing</a>`,
			`<a href="https://example.com/repo/blob/main/CONTRIBUTING.md">Contributing</a>`,
		},
		{
			"subdirectory",
			`<a href="docs/guide.md">Guide</a>`,
			`<a href="https://example.com/repo/blob/main/docs/guide.md">Guide</a>`,
		},
		{
			"dot prefix image",
			`<img src="./docs/arch.png" alt="architecture">`,
			`<img src="https://example.com/repo/blob/main/docs/arch.png" alt="architecture">`,
		},
		{
			"parent directory",
			`<a href="../LICENSE">License</a>`,
			`<a href="https://example.com/repo/blob/LICENSE">License</a>`,
		},
		{
			"root relative",
			`<a href="/other">x</a>`,
			`<a href="https://example.com/other">x</a>`,
		},
		{
			"query and fragment kept",
			`<a href="other.md?ref=main#section">x</a>`,
			`<a href="https://example.com/repo/blob/main/other.md?ref=main#section">x</a>`,
		},
		{
			"absolute untouched",
			`<a href="https://example.org/other">x</a>`,
			`<a href="https://example.org/other">x</a>`,
		},
		{
			"fragment only untouched",
			`<a href="#section">x</a>`,
			`<a href="#section">x</a>`,
		},
		{
			"protocol relative untouched",
			`<a href="//cdn.example.org/lib">x</a>`,
			`<a href="//cdn.example.org/lib">x</a>`,
		},
		{
			"data uri untouched",
			`<img src="data:image/png;base64,abc">`,
			`<img src="data:image/png;base64,abc">`,
		},
		{
			"mailto untouched",
			`<a href="mailto:a@example.org">x</a>`,
			`<a href="mailto:a@example.org">x</a>`,
		},
		{
			"title not rewritten",
			`<a href="#x" title="docs/a.md">x</a>`,
			`<a href="#x" title="docs/a.md">x</a>`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := clean(t, base, tc.input); got != tc.want {
				t.Errorf("got  %s\nwant %s", got, tc.want)
			}
		})
	}
}

func TestRelativeURLs_NilBase(t *testing.T) {
	input := `<a href="docs/guide.md">Guide</a>`
	if got := clean(t, nil, input); got != input {
		t.Errorf("got %s, want unchanged", got)
	}
}

func TestRelativeURLs_Idempotent(t *testing.T) {
	base := mustBase(t, "https://example.com/repo/")
	once := clean(t, base, `<a href="a.md">a</a><img src="i.png">`)
	twice := clean(t, base, once)
	if once != twice {
		t.Errorf("not idempotent:\n once %s\ntwice %s", once, twice)
	}
}

func TestParseBase(t *testing.T) {
	tests := []struct {
		raw     string
		wantNil bool
		wantErr bool
	}{
		{"", true, false},
		{"https://example.com/repo/", false, false},
		{"http://example.com", false, false},
		{"/relative", false, true},
		{"ftp://example.com/", false, true},
		{"https://", false, true},
		{"://bad", false, true},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			u, err := ParseBase(tc.raw)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if (u == nil) != (tc.wantNil || tc.wantErr) {
				t.Errorf("u = %v", u)
			}
		})
	}
}

func TestRelativeURLs_HeldToPolicy(t *testing.T) {
	base := mustBase(t, "http://example.com/repo/")
	httpsOnly := sanitize.WithAttributes(sanitize.RestrictURLSchemes(sanitize.DefaultAttributes(), "https"))

	out, err := sanitize.Clean(`<a href="docs/guide.md">Guide</a>`, httpsOnly, sanitize.WithExtraFilters(RelativeURLs(base)))
	if err != nil {
		t.Fatal(err)
	}
	if want := `<a>Guide</a>`; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}
