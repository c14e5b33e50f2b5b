package sanitize

import "testing"

func TestAttributes_AllowAttribute(t *testing.T) {
	attrs := DefaultAttributes()

	tests := []struct {
		tag, name, value string
		want             bool
	}{
		{"a", "href", "https://example.com", true},
		{"a", "title", "t", true},
		{"a", "onclick", "x", false},
		{"a", "rel", "nofollow", true},
		{"a", "rel", "opener", false},
		{"p", "id", "x", true},
		{"p", "align", "center", true},
		{"div", "align", "center", false},
		{"img", "class", "align-center", true},
		{"img", "class", "align-left align-right", false},
		{"span", "class", "nf", true},
		{"span", "class", "evil", false},
		{"div", "class", "k", false},
		{"input", "type", "checkbox", true},
		{"input", "type", "text", false},
		{"input", "checked", "", true},
		{"p", "style", "color: red", false},
	}

	for _, tc := range tests {
		if got := attrs.AllowAttribute(tc.tag, tc.name, tc.value); got != tc.want {
			t.Errorf("AllowAttribute(%q, %q, %q) = %v, want %v", tc.tag, tc.name, tc.value, got, tc.want)
		}
	}
}

func TestAttributeMap_Wildcard(t *testing.T) {
	m := AttributeMap{"*": {"title"}, "img": {"src"}}
	if !m.AllowAttribute("p", "title", "") {
		t.Error("wildcard name rejected")
	}
	if !m.AllowAttribute("img", "src", "") {
		t.Error("per-tag name rejected")
	}
	if m.AllowAttribute("p", "src", "") {
		t.Error("unlisted name accepted")
	}
}

func TestURLScheme(t *testing.T) {
	tests := []struct {
		raw    string
		scheme string
		ok     bool
	}{
		{"https://example.com", "https", true},
		{"HTTP://example.com", "http", true},
		{"/relative/path", "", true},
		{"#frag", "", true},
		{"  javascript:x", "javascript", true},
		{"java\tscript:x", "javascript", true},
		{"java\x00script:x", "javascript", true},
		{"%zz", "", false},
	}
	for _, tc := range tests {
		scheme, ok := urlScheme(tc.raw)
		if scheme != tc.scheme || ok != tc.ok {
			t.Errorf("urlScheme(%q) = %q, %v; want %q, %v", tc.raw, scheme, ok, tc.scheme, tc.ok)
		}
	}
}

func TestFilterStyle(t *testing.T) {
	allowed := map[string]bool{"color": true, "text-align": true}

	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"color: red", "color: red;", true},
		{"COLOR: red; text-align: center", "color: red; text-align: center;", true},
		{"color: rgb(1, 2, 3)", "color: rgb(1, 2, 3);", true},
		{"color: red !important", "color: red !important;", true},
		{"color: expression(alert(1))", "", false},
		{"position: fixed", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := filterStyle(tc.raw, allowed)
		if got != tc.want || ok != tc.ok {
			t.Errorf("filterStyle(%q) = %q, %v; want %q, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}

	if _, ok := filterStyle("color: red", nil); ok {
		t.Error("style kept with no allowed properties")
	}
}
