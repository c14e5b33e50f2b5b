// Package render turns descriptions written in a markup language into HTML.
// The output is not safe to display; it must go through the sanitizer.
package render

import "fmt"

// A Renderer converts a source document to HTML.
type Renderer interface {
	Render(source []byte) ([]byte, *Meta, error)
}

// RendererFunc adapts a function to a Renderer.
type RendererFunc func(source []byte) ([]byte, *Meta, error)

// Render calls f(source).
func (f RendererFunc) Render(source []byte) ([]byte, *Meta, error) {
	return f(source)
}

// Renderers maps each concrete format to its renderer.
type Renderers map[Format]Renderer

// DefaultRenderers returns a renderer for every format except FormatAuto.
// Renderers are safe for concurrent use.
func DefaultRenderers() Renderers {
	return Renderers{
		FormatMarkdown:   NewMarkdownRenderer(),
		FormatCommonMark: NewCommonMarkRenderer(),
		FormatAsciiDoc:   NewAsciiDocRenderer(),
		FormatOrg:        NewOrgRenderer(),
		FormatText: RendererFunc(func(source []byte) ([]byte, *Meta, error) {
			return RenderText(source), &Meta{}, nil
		}),
		FormatHTML: RendererFunc(func(source []byte) ([]byte, *Meta, error) {
			return source, &Meta{}, nil
		}),
	}
}

// Render renders source in format f. FormatAuto is resolved with Sniff.
func (rs Renderers) Render(f Format, source []byte) ([]byte, *Meta, Format, error) {
	if f == FormatAuto || f == "" {
		sniffed, err := Sniff(source)
		if err != nil {
			return nil, nil, f, err
		}
		f = sniffed
	}
	r, ok := rs[f]
	if !ok {
		return nil, nil, f, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	out, meta, err := r.Render(source)
	return out, meta, f, err
}
