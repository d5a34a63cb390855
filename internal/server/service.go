package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	clog "github.com/charmbracelet/log"
)

// HTTPService runs the HTTP listener under supervision, translating the
// blocking ListenAndServe/Shutdown pair into the Serve(ctx) contract.
// Implements suture's Service.
type HTTPService struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	log             *clog.Logger
}

func NewHTTPService(addr string, handler http.Handler, shutdownTimeout time.Duration, log *clog.Logger) *HTTPService {
	return &HTTPService{
		srv: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		log:             log,
	}
}

func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("http shutdown did not finish cleanly", "err", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *HTTPService) String() string { return "http-server" }
