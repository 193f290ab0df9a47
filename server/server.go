// Package server exposes document rendering over HTTP.
//
// Routes:
//
//	POST /generate              render a delivery note and upload it
//	POST /generate-presupuesto  render a quotation and upload it
//	GET  /healthz               liveness probe
//
// Successful requests answer 200 with the stored file name and id. Record
// problems answer 400, upload failures 502 and anything else 500, always
// as a JSON object with an "error" key.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lvillar/docrender"
	"github.com/lvillar/docrender/cache"
	"github.com/lvillar/docrender/upload"
)

// Server renders and uploads documents on request.
type Server struct {
	renderer      *docrender.Renderer
	store         upload.Uploader
	cache         cache.Cache
	cacheTTL      time.Duration
	cacheSettings []any
	folders       map[docrender.Kind]string
	logger        *log.Logger
	maxBody       int64
	uploadTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithUploader sets where rendered documents are stored.
func WithUploader(u upload.Uploader) Option {
	return func(s *Server) { s.store = u }
}

// WithCache serves repeated requests from c. settings must identify the
// renderer configuration; they are folded into every key.
func WithCache(c cache.Cache, ttl time.Duration, settings ...any) Option {
	return func(s *Server) {
		s.cache = c
		s.cacheTTL = ttl
		s.cacheSettings = settings
	}
}

// WithFolder sets the upload folder of kind.
func WithFolder(kind docrender.Kind, folder string) Option {
	return func(s *Server) { s.folders[kind] = folder }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxBodyBytes limits request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// WithUploadTimeout bounds each upload.
func WithUploadTimeout(d time.Duration) Option {
	return func(s *Server) { s.uploadTimeout = d }
}

// New returns a Server rendering with r. Without WithUploader documents
// are rendered and discarded.
func New(r *docrender.Renderer, opts ...Option) *Server {
	s := &Server{
		renderer:      r,
		store:         upload.Null{},
		cache:         cache.NewNullCache(),
		folders:       map[docrender.Kind]string{docrender.DeliveryNote: "remitos", docrender.Quotation: "presupuestos"},
		logger:        log.New(io.Discard),
		maxBody:       1 << 20,
		uploadTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Post("/generate", s.generate(docrender.DeliveryNote))
	r.Post("/generate-presupuesto", s.generate(docrender.Quotation))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully within the write timeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond))
	})
}
