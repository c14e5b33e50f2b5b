package sanitize

import (
	"regexp"
	"strings"

	cssparser "github.com/aymerick/douceur/parser"
)

// styleValueRe accepts plain CSS values: keywords, lengths, colors, quoted
// words and parenthesized numbers (rgb(1, 2, 3)). Functions taking anything
// else, such as url(...) or expression(...), never match.
var styleValueRe = regexp.MustCompile(`^([-/:,#%.'"\s!\w]|\w-\w|'[\s\w]+'|"[\s\w]+"|\([\d,%.\s]+\))*$`)

// filterStyle keeps the declarations of a style attribute whose property is
// allowed and whose value is plain. It reports false when nothing is left.
func filterStyle(raw string, allowed map[string]bool) (string, bool) {
	if len(allowed) == 0 {
		return "", false
	}

	decls, err := cssparser.ParseDeclarations(raw)
	if err != nil {
		return "", false
	}

	var parts []string
	for _, d := range decls {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		if !allowed[prop] {
			continue
		}

		value := strings.TrimSpace(d.Value)
		important := d.Important
		if v, ok := strings.CutSuffix(value, "!important"); ok {
			value = strings.TrimSpace(v)
			important = true
		}
		if value == "" || !styleValueRe.MatchString(value) {
			continue
		}
		if important {
			value += " !important"
		}
		parts = append(parts, prop+": "+value+";")
	}

	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}
