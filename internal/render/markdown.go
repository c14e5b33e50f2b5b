package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Meta holds metadata extracted during rendering.
type Meta struct {
	HeadingCount   int
	CodeBlockCount int
	Languages      []string // info-string languages in document order
	Headings       []Heading
	Title          string // from front matter, #+TITLE, or the first H1
}

// Heading represents a heading in the document.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// MarkdownRenderer renders markdown content to HTML.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

// NewMarkdownRenderer creates a GitHub Flavored Markdown renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return newMarkdownRenderer(
		extension.GFM,
		extension.Footnote,
		extension.DefinitionList,
		&ChromaHighlighting{},
	)
}

// NewCommonMarkRenderer creates a renderer for plain CommonMark: no tables,
// task lists, strikethrough or autolinks.
func NewCommonMarkRenderer() *MarkdownRenderer {
	return newMarkdownRenderer(&ChromaHighlighting{})
}

func newMarkdownRenderer(exts ...goldmark.Extender) *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		// Raw HTML is kept; the sanitizer decides what survives.
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &MarkdownRenderer{md: md}
}

// Render converts markdown source to HTML and extracts metadata.
func (r *MarkdownRenderer) Render(source []byte) ([]byte, *Meta, error) {
	content, title := stripFrontmatter(source)

	var buf bytes.Buffer
	doc := r.md.Parser().Parse(text.NewReader(content))

	meta := &Meta{Title: title}
	extractMeta(doc, content, meta)

	if err := r.md.Renderer().Render(&buf, content, doc); err != nil {
		return nil, nil, fmt.Errorf("render markdown: %w", err)
	}

	return buf.Bytes(), meta, nil
}

// extractMeta walks the AST to count headings and code blocks.
func extractMeta(doc ast.Node, source []byte, meta *Meta) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			meta.HeadingCount++
			var text strings.Builder
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					text.Write(t.Segment.Value(source))
				}
			}
			id := ""
			if idAttr, ok := node.AttributeString("id"); ok {
				if idBytes, ok := idAttr.([]byte); ok {
					id = string(idBytes)
				}
			}
			meta.Headings = append(meta.Headings, Heading{
				Level: node.Level,
				Text:  text.String(),
				ID:    id,
			})
			if meta.Title == "" && node.Level == 1 {
				meta.Title = text.String()
			}

		case *ast.FencedCodeBlock:
			meta.CodeBlockCount++
			lang := ""
			if node.Info != nil {
				lang = string(node.Language(source))
			}
			meta.Languages = append(meta.Languages, lang)
		}

		return ast.WalkContinue, nil
	})
}

var frontmatterRe = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n`)

type frontmatter struct {
	Title string `yaml:"title"`
}

// stripFrontmatter removes YAML front matter and extracts its title field.
// Front matter that is not valid YAML is still removed.
func stripFrontmatter(source []byte) ([]byte, string) {
	match := frontmatterRe.FindSubmatch(source)
	if match == nil {
		return source, ""
	}

	var fm frontmatter
	if err := yaml.Unmarshal(match[1], &fm); err != nil {
		fm.Title = ""
	}

	return source[len(match[0]):], strings.TrimSpace(fm.Title)
}
