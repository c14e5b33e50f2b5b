package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/air-gapped/readme/internal/cache"
	"github.com/air-gapped/readme/internal/config"
	"github.com/air-gapped/readme/internal/logging"
	"github.com/air-gapped/readme/internal/pipeline"
	"github.com/air-gapped/readme/internal/render"
	"github.com/air-gapped/readme/internal/sanitize"
)

// contentSecurityPolicy forbids scripts even if something slips through.
const contentSecurityPolicy = "default-src 'none'; img-src * data:; style-src 'unsafe-inline'"

// Server renders descriptions over HTTP.
type Server struct {
	cfg      *config.Config
	version  string
	pipeline *pipeline.Pipeline
	cache    *cache.Cache
	logger   *slog.Logger
	mux      *http.ServeMux
}

// New creates a server with all dependencies.
func New(cfg *config.Config, version string) (*Server, error) {
	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		version:  version,
		pipeline: pipeline.New(opts),
		cache:    cache.New(cfg.CacheTTL, cfg.CacheMaxSize),
		logger:   slog.Default(),
		mux:      http.NewServeMux(),
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("POST /render", s.handleRender)
}

// Handler returns the server's HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return logging.Middleware(s.logger, fillRequestFields)(s.mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(200)
	w.Write([]byte("OK"))
}

// handleRender renders the request body. The format comes from ?format= or,
// failing that, the Content-Type; ?plain=1 returns text without markup.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		s.renderError(w, r, http.StatusUnsupportedMediaType, err)
		return
	}

	plain := s.cfg.Plain
	if v := r.URL.Query().Get("plain"); v != "" {
		plain, err = strconv.ParseBool(v)
		if err != nil {
			s.renderError(w, r, http.StatusBadRequest, fmt.Errorf("plain: %w", err))
			return
		}
	}

	body := r.Body
	if s.cfg.MaxInputSize > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxInputSize)
	}
	source, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.renderError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Errorf("description exceeds %d bytes: %w", tooLarge.Limit, sanitize.ErrTooLarge))
			return
		}
		s.renderError(w, r, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}

	key := cache.Key([]byte(format), []byte(strconv.FormatBool(plain)), source)
	if entry, status := s.cache.Get(key); entry != nil {
		s.setResponseHeaders(w, string(status), entry.Format, 0, 0)
		if entry.Title != "" {
			w.Header().Set("X-Readme-Title", entry.Title)
		}
		s.writeBody(w, entry.HTML, plain)
		return
	}

	result, err := s.pipeline.Render(format, source)
	if err != nil {
		s.renderError(w, r, errorStatus(err), err)
		return
	}

	out := []byte(result.HTML)
	if plain {
		out = []byte(result.PlainText())
	}

	s.cache.Put(key, cache.Entry{
		HTML:   out,
		Title:  result.Title,
		Format: string(result.Format),
		Size:   int64(len(out)),
	})

	s.setResponseHeaders(w, string(cache.StatusMiss), string(result.Format),
		result.RenderTime.Milliseconds(), result.SanitizeTime.Milliseconds())
	if result.Title != "" {
		w.Header().Set("X-Readme-Title", result.Title)
	}
	s.writeBody(w, out, plain)
}

func requestFormat(r *http.Request) (render.Format, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		return render.ParseFormat(q)
	}
	return render.FormatFromContentType(r.Header.Get("Content-Type"))
}

// errorStatus maps pipeline errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, sanitize.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sanitize.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, render.ErrUnsupportedFormat), errors.Is(err, render.ErrBinary):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeBody(w http.ResponseWriter, body []byte, plain bool) {
	if plain {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(200)
	w.Write(body)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, statusCode int, err error) {
	if statusCode >= 500 {
		logging.FromContext(r.Context(), s.logger).Error("render failed", "error", err)
	}
	s.setResponseHeaders(w, "", "", 0, 0)
	w.Header().Set("X-Readme-Error", err.Error())
	http.Error(w, err.Error(), statusCode)
}

func (s *Server) setResponseHeaders(w http.ResponseWriter, cacheStatus, format string, renderMs, sanitizeMs int64) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", contentSecurityPolicy)

	w.Header().Set("X-Readme-Version", s.version)
	w.Header().Set("X-Readme-Cache", cacheStatus)
	w.Header().Set("X-Readme-Format", format)
	w.Header().Set("X-Readme-Render-Ms", strconv.FormatInt(renderMs, 10))
	w.Header().Set("X-Readme-Sanitize-Ms", strconv.FormatInt(sanitizeMs, 10))
}

func fillRequestFields(w http.ResponseWriter, f *logging.RequestFields) {
	h := w.Header()
	f.Format = h.Get("X-Readme-Format")
	f.Cache = h.Get("X-Readme-Cache")
	f.RenderMs = parseHeaderInt64(h.Get("X-Readme-Render-Ms"))
	f.SanitizeMs = parseHeaderInt64(h.Get("X-Readme-Sanitize-Ms"))
	f.Error = h.Get("X-Readme-Error")
}

func parseHeaderInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
