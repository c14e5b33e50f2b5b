// Package pipeline renders a description in its markup language and
// sanitizes the result.
package pipeline

import (
	"fmt"
	"net/url"
	"time"

	"github.com/air-gapped/readme/internal/config"
	"github.com/air-gapped/readme/internal/render"
	"github.com/air-gapped/readme/internal/rewrite"
	"github.com/air-gapped/readme/internal/sanitize"
)

// renderedSizeFactor bounds how much larger than its source a rendered
// description may be before the sanitizer refuses it.
const renderedSizeFactor = 16

// Options configures a Pipeline.
type Options struct {
	// MaxInputBytes rejects larger sources. Zero means no limit.
	MaxInputBytes int
	MaxDepth      int
	// BaseURL resolves relative links and images when set.
	BaseURL *url.URL
	// AllowedSchemes restricts href/src URL schemes when not empty.
	AllowedSchemes []string
	NoLinkify      bool
}

// OptionsFromConfig builds Options from the command line configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	base, err := rewrite.ParseBase(cfg.BaseURL)
	if err != nil {
		return Options{}, fmt.Errorf("base url: %w", err)
	}
	return Options{
		MaxInputBytes:  int(cfg.MaxInputSize),
		MaxDepth:       cfg.MaxDepth,
		BaseURL:        base,
		AllowedSchemes: cfg.AllowedSchemes,
		NoLinkify:      cfg.NoLinkify,
	}, nil
}

// Result is a rendered and sanitized description.
type Result struct {
	HTML         string
	Title        string
	Format       render.Format
	RenderTime   time.Duration
	SanitizeTime time.Duration
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	renderers     render.Renderers
	sanitizer     *sanitize.Sanitizer
	maxInputBytes int
}

// New builds a Pipeline with the default renderers and sanitizer policy
// adjusted by opts.
func New(opts Options) *Pipeline {
	var attrs sanitize.AttributeValidator = sanitize.DefaultAttributes()
	if len(opts.AllowedSchemes) > 0 {
		attrs = sanitize.RestrictURLSchemes(attrs, opts.AllowedSchemes...)
	}

	filters := sanitize.DefaultFilters()
	if opts.NoLinkify {
		filters = []sanitize.Filter{sanitize.DisabledCheckboxes()}
	}
	if opts.BaseURL != nil {
		filters = append(filters, rewrite.RelativeURLs(opts.BaseURL))
	}

	sopts := []sanitize.Option{
		sanitize.WithAttributes(attrs),
		sanitize.WithFilters(filters...),
		sanitize.WithMaxInputBytes(opts.MaxInputBytes * renderedSizeFactor),
	}
	if opts.MaxDepth > 0 {
		sopts = append(sopts, sanitize.WithMaxDepth(opts.MaxDepth))
	}

	return &Pipeline{
		renderers:     render.DefaultRenderers(),
		sanitizer:     sanitize.New(sopts...),
		maxInputBytes: opts.MaxInputBytes,
	}
}

// Render renders source in format f (FormatAuto sniffs it) and sanitizes the
// output. Errors matching sanitize.ErrRejected mean the description must not
// be displayed at all.
func (p *Pipeline) Render(f render.Format, source []byte) (*Result, error) {
	if p.maxInputBytes > 0 && len(source) > p.maxInputBytes {
		return nil, fmt.Errorf("description is %d bytes: %w", len(source), sanitize.ErrTooLarge)
	}

	start := time.Now()
	out, meta, format, err := p.renderers.Render(f, source)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	renderTime := time.Since(start)

	start = time.Now()
	clean, err := p.sanitizer.Sanitize(string(out))
	if err != nil {
		return nil, fmt.Errorf("sanitize %s: %w", format, err)
	}

	return &Result{
		HTML:         clean,
		Title:        meta.Title,
		Format:       format,
		RenderTime:   renderTime,
		SanitizeTime: time.Since(start),
	}, nil
}

// PlainText returns the text of a sanitized result with all markup removed.
func (r *Result) PlainText() string {
	return sanitize.PlainText(r.HTML)
}
