package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/air-gapped/readme/internal/render"
	"github.com/air-gapped/readme/internal/rewrite"
)

// Config holds all runtime configuration for readme.
type Config struct {
	Listen         string
	CacheTTL       time.Duration
	CacheMaxSize   int64
	MaxInputSize   int64
	MaxDepth       int
	Format         render.Format
	BaseURL        string
	AllowedSchemes []string
	NoLinkify      bool
	Plain          bool

	// Files are the positional arguments left after the flags.
	Files []string
}

// Parse reads configuration from CLI flags with environment variable fallback.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("readme", flag.ContinueOnError)

	cfg := &Config{}

	fs.StringVar(&cfg.Listen, "listen", envOr("README_LISTEN", ":8080"), "Listen address for serve")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", envDurationOr("README_CACHE_TTL", 5*time.Minute), "Cache TTL duration")
	cacheMaxSize := fs.String("cache-max-size", envOr("README_CACHE_MAX_SIZE", "100MB"), "Max cache size (e.g. 100MB)")
	maxInputSize := fs.String("max-input-size", envOr("README_MAX_INPUT_SIZE", "5MB"), "Max description size to render (e.g. 5MB)")
	fs.IntVar(&cfg.MaxDepth, "max-depth", envIntOr("README_MAX_DEPTH", 512), "Max element nesting depth")
	format := fs.String("format", envOr("README_FORMAT", "auto"), "Input format: auto, markdown, commonmark, asciidoc, org, text, or html")
	fs.StringVar(&cfg.BaseURL, "base-url", envOr("README_BASE_URL", ""), "Resolve relative links and images against this URL")
	schemes := fs.String("allowed-schemes", envOr("README_ALLOWED_SCHEMES", ""), "Comma-separated URL schemes allowed in href/src (empty allows any)")
	fs.BoolVar(&cfg.NoLinkify, "no-linkify", envBoolOr("README_NO_LINKIFY", false), "Do not turn bare URLs into links")
	fs.BoolVar(&cfg.Plain, "plain", envBoolOr("README_PLAIN", false), "Output plain text instead of HTML")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Files = fs.Args()

	var err error
	cfg.CacheMaxSize, err = parseByteSize(*cacheMaxSize)
	if err != nil {
		return nil, fmt.Errorf("parse cache-max-size: %w", err)
	}

	cfg.MaxInputSize, err = parseByteSize(*maxInputSize)
	if err != nil {
		return nil, fmt.Errorf("parse max-input-size: %w", err)
	}

	if cfg.MaxDepth <= 0 {
		return nil, fmt.Errorf("invalid max-depth %d: must be positive", cfg.MaxDepth)
	}

	cfg.Format, err = render.ParseFormat(*format)
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}

	if _, err := rewrite.ParseBase(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base-url: %w", err)
	}

	cfg.AllowedSchemes = splitList(*schemes)

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		return v == "1" || v == "true" || v == "yes"
	}
	return fallback
}

// parseByteSize parses a human-readable byte size like "100MB", "5KB", "1GB".
func parseByteSize(s string) (int64, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("empty size string")
	}

	i := 0
	for i < len(s) && ((s[i] >= '0' && s[i] <= '9') || s[i] == '.') {
		i++
	}

	numStr := s[:i]
	unit := s[i:]

	var num float64
	if _, err := fmt.Sscanf(numStr, "%f", &num); err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	var multiplier int64
	switch unit {
	case "", "B":
		multiplier = 1
	case "KB", "kb":
		multiplier = 1024
	case "MB", "mb":
		multiplier = 1024 * 1024
	case "GB", "gb":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size unit %q in %q", unit, s)
	}

	return int64(num * float64(multiplier)), nil
}
