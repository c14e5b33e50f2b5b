package render

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// ChromaHighlighting is a goldmark extension that syntax-highlights fenced
// code blocks with chroma. Tokens are wrapped in <span> elements carrying the
// short Pygments class names ("k", "nf", "s2", ...), the only classes the
// sanitizer keeps on spans.
type ChromaHighlighting struct{}

func (e *ChromaHighlighting) Extend(md goldmark.Markdown) {
	md.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&chromaRenderer{}, 500),
		),
	)
}

type chromaRenderer struct{}

func (r *chromaRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *chromaRenderer) renderFencedCodeBlock(
	w util.BufWriter, source []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ast.FencedCodeBlock)

	lang := ""
	if n.Info != nil {
		lang = string(n.Language(source))
	}

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	_, _ = w.WriteString("<pre><code>")
	if err := Highlight(w, code.String(), lang); err != nil {
		return ast.WalkStop, err
	}
	_, _ = w.WriteString("</code></pre>\n")

	return ast.WalkContinue, nil
}

// Highlight writes code as escaped HTML with one <span class="..."> per
// highlighted token. Unknown languages are written unhighlighted.
func Highlight(w io.Writer, code, lang string) error {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		_, err := io.WriteString(w, html.EscapeString(code))
		return err
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("chroma tokenise: %w", err)
	}

	for tok := iterator(); tok != chroma.EOF; tok = iterator() {
		class := tokenClass(tok.Type)
		value := html.EscapeString(tok.Value)
		if class == "" {
			_, err = io.WriteString(w, value)
		} else {
			_, err = fmt.Fprintf(w, `<span class="%s">%s</span>`, class, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// tokenClass returns the Pygments short class for a token type, falling back
// to its sub-category and category.
func tokenClass(tt chroma.TokenType) string {
	for _, t := range []chroma.TokenType{tt, tt.SubCategory(), tt.Category()} {
		if class, ok := chroma.StandardTypes[t]; ok {
			return class
		}
	}
	return ""
}
