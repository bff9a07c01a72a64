// Package httpapi exposes the ingestion pipeline over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// multipartOverhead is allowed on top of the upload limit for form framing.
const multipartOverhead = 1 << 20

// Server accepts document uploads and returns their chunks.
type Server struct {
	mu             sync.Mutex
	addr           string
	ingest         driving.IngestService
	maxUploadBytes int64
	router         chi.Router
	server         *http.Server
	listener       net.Listener
	errChan        chan error
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address. Port 0 picks a free port.
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithMaxUploadBytes caps the size of a single upload.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// NewServer creates an upload server backed by the ingestion service.
func NewServer(ingest driving.IngestService, opts ...Option) *Server {
	s := &Server{
		addr:           domain.DefaultServerAddr,
		ingest:         ingest,
		maxUploadBytes: domain.DefaultMaxUploadBytes,
		errChan:        make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)
		r.Post("/documents", s.handleUpload)
	})
	return r
}

// Handler returns the HTTP handler, for embedding or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address. After Start it holds the bound port.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start begins serving in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return errors.New("server already started")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	logger.Info("Listening on %s", listener.Addr())
	return nil
}

// Serve runs the server until ctx is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-s.errChan:
		_ = s.Stop()
		return fmt.Errorf("server error: %w", err)
	}
}

// Stop shuts the server down, waiting up to five seconds for open requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	s.listener = nil
	return err
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond),
			middleware.GetReqID(r.Context()))
	})
}
