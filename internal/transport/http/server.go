// Package http serves the operator's status endpoints: the informer
// service, gRPC health and /metrics, plus a plain /livez probe.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	connectcors "connectrpc.com/cors"
	"github.com/rs/cors"
)

// LivenessPath answers 200 while the process serves HTTP. Readiness is
// reported through gRPC health, which tracks informer sync.
const LivenessPath = "/livez"

// MountFunc registers the status handlers.
type MountFunc func(mux *http.ServeMux) error

type ServerOption func(*Server)

// Server is the status server. It satisfies transport.Listener.
type Server struct {
	inner          *http.Server
	address        string
	listener       net.Listener
	mount          MountFunc
	allowedOrigins []string
	log            *slog.Logger
}

func WithAddress(address string) ServerOption {
	return func(s *Server) { s.address = address }
}

// WithListener serves on ln instead of listening on the address.
func WithListener(ln net.Listener) ServerOption {
	return func(s *Server) { s.listener = ln }
}

func WithMount(mount MountFunc) ServerOption {
	return func(s *Server) { s.mount = mount }
}

// WithAllowedOrigins restricts CORS to origins; empty allows any.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) { s.allowedOrigins = origins }
}

func WithHTTPLogger(log *slog.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// NewServer builds the handler chain and opens the listener, so a
// port conflict fails startup before any resource loop runs.
func NewServer(opts ...ServerOption) (*Server, error) {
	s := &Server{address: ":8299"}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default().With("component", "status-server")
	}

	handler, err := s.buildHandler()
	if err != nil {
		return nil, err
	}

	if s.listener == nil {
		ln, err := net.Listen("tcp", s.address)
		if err != nil {
			return nil, fmt.Errorf("status server listen %q: %w", s.address, err)
		}
		s.listener = ln
	}

	// Connect clients may use gRPC over cleartext HTTP/2 inside the
	// cluster.
	protocols := new(http.Protocols)
	protocols.SetHTTP1(true)
	protocols.SetUnencryptedHTTP2(true)

	// Status responses are small snapshots of the caches; nothing
	// streams, so the timeouts stay short.
	s.inner = &http.Server{
		Addr:              s.address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    8 * 1024,
		Protocols:         protocols,
	}

	return s, nil
}

func (s *Server) Name() string { return "status-server" }

// Handler returns the full handler chain.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start serves until Stop is called. Request contexts derive from ctx.
func (s *Server) Start(ctx context.Context) error {
	s.inner.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	s.log.Info("status server listening",
		"address", s.listener.Addr().String(),
		"allowed_origins", s.allowedOrigins,
	)

	if err := s.inner.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires, then closes.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("status server shutting down")
	if err := s.inner.Shutdown(ctx); err != nil {
		s.log.Warn("status server drain timed out, closing", "error", err)
		return s.inner.Close()
	}
	return nil
}

func (s *Server) buildHandler() (http.Handler, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+LivenessPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.mount != nil {
		if err := s.mount(mux); err != nil {
			return nil, fmt.Errorf("mount status handlers: %w", err)
		}
	}
	return s.withCORS(mux), nil
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	if len(s.allowedOrigins) == 0 {
		return cors.AllowAll().Handler(next)
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: connectcors.AllowedMethods(),
		AllowedHeaders: connectcors.AllowedHeaders(),
		ExposedHeaders: connectcors.ExposedHeaders(),
		MaxAge:         7200,
	}).Handler(next)
}
