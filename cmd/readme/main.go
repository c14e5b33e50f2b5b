package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/air-gapped/readme/internal/config"
	"github.com/air-gapped/readme/internal/logging"
	"github.com/air-gapped/readme/internal/pipeline"
	"github.com/air-gapped/readme/internal/render"
	"github.com/air-gapped/readme/internal/sanitize"
	"github.com/air-gapped/readme/internal/server"
)

// Set by linker via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const usage = `usage:
  readme [flags] [FILE...]   render files (or stdin) to sanitized HTML on stdout
  readme serve [flags]       serve POST /render over HTTP
`

func main() {
	// Check for --version before full flag parsing
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" {
			fmt.Printf("readme %s (%s) built %s\n", version, commit, date)
			os.Exit(0)
		}
	}

	args := os.Args[1:]
	serve := len(args) > 0 && args[0] == "serve"
	if serve {
		args = args[1:]
	}

	cfg, err := config.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "readme: %v\n", err)
		os.Exit(2)
	}

	if serve {
		logging.Setup(os.Stdout, slog.LevelInfo)
		if err := runServer(cfg); err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// stdout carries the rendered output.
	logging.Setup(os.Stderr, slog.LevelWarn)
	os.Exit(runRender(cfg, os.Stdin, os.Stdout))
}

func runServer(cfg *config.Config) error {
	slog.Info("config loaded",
		"listen", cfg.Listen,
		"cache_ttl", cfg.CacheTTL.String(),
		"cache_max_size", cfg.CacheMaxSize,
		"max_input_size", cfg.MaxInputSize,
		"max_depth", cfg.MaxDepth,
		"format", cfg.Format,
		"base_url", cfg.BaseURL,
		"allowed_schemes", cfg.AllowedSchemes,
		"linkify", !cfg.NoLinkify,
	)

	srv, err := server.New(cfg, version)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server started", "listen", cfg.Listen, "version", version)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	select {
	case err := <-listenErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	// Graceful shutdown with 30s timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// runRender renders every file in cfg.Files, or stdin when there are none,
// and returns the process exit code. A rejected description prints nothing.
func runRender(cfg *config.Config, stdin io.Reader, stdout io.Writer) int {
	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		slog.Error("invalid options", "error", err)
		return 2
	}
	p := pipeline.New(opts)

	files := cfg.Files
	if len(files) == 0 {
		files = []string{"-"}
	}

	code := 0
	for _, name := range files {
		if err := renderFile(p, cfg, name, stdin, stdout); err != nil {
			slog.Error("render failed",
				"file", name,
				"error", err,
				"rejected", errors.Is(err, sanitize.ErrRejected),
			)
			code = 1
		}
	}
	return code
}

func renderFile(p *pipeline.Pipeline, cfg *config.Config, name string, stdin io.Reader, stdout io.Writer) error {
	var (
		source []byte
		err    error
	)
	format := cfg.Format
	if name == "-" {
		source, err = io.ReadAll(stdin)
	} else {
		source, err = os.ReadFile(name)
		if format == render.FormatAuto {
			format = render.DetectFormat(name)
		}
	}
	if err != nil {
		return err
	}

	result, err := p.Render(format, source)
	if err != nil {
		return err
	}
	slog.Debug("rendered",
		"file", name,
		"format", result.Format,
		"render_ms", result.RenderTime.Milliseconds(),
		"sanitize_ms", result.SanitizeTime.Milliseconds(),
	)

	out := result.HTML
	if cfg.Plain {
		out = result.PlainText() + "\n"
	}
	_, err = io.WriteString(stdout, out)
	return err
}
