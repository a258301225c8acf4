package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/zeusync/physync/internal/core/observability/log"
)

const shutdownTimeout = 5 * time.Second

// HTTPServer exposes the feed on a single path.
type HTTPServer struct {
	addr   string
	path   string
	feed   *Feed
	log    log.Log
	mu     sync.Mutex
	server *http.Server
}

func NewHTTPServer(addr, path string, feed *Feed, logger log.Log) (*HTTPServer, error) {
	if addr == "" || path == "" || path[0] != '/' {
		return nil, fmt.Errorf("%w: addr %q path %q", ErrInvalidConfig, addr, path)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &HTTPServer{addr: addr, path: path, feed: feed, log: logger.Named("http")}, nil
}

func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.path, s.feed)
	return mux
}

// Serve listens until ctx is cancelled, then shuts down and closes the feed.
func (s *HTTPServer) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *HTTPServer) serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.server != nil {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerAlreadyRunning
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("feed listening", log.String("addr", ln.Addr().String()), log.String("path", s.path))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.feed.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.feed.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("feed stopped")
	return nil
}
