// Package server exposes the analytics engine as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// maxBodyBytes bounds a request body (records are sent inline).
const maxBodyBytes = 32 << 20

// Defaults fill request fields the client left empty.
type Defaults struct {
	Preset            string
	TopN              int
	CorrelationFields []string
	CustomerField     string
}

// Server holds request defaults, a diagnostics logger and its metrics.
type Server struct {
	defaults Defaults
	log      *slog.Logger
	metrics  *Metrics
	clock    func() time.Time
}

// New returns a Server. A nil logger discards diagnostics.
func New(d Defaults, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{defaults: d, log: log, metrics: NewMetrics(), clock: time.Now}
}

// NewRouter registers every route on a fresh mux.Router.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	r.HandleFunc("/v1/presets", s.metrics.wrap("presets", presetsHandler)).Methods("GET")

	r.HandleFunc("/v1/analyze", s.metrics.wrap("analyze", s.analyze)).Methods("POST")
	for name, fn := range views {
		r.HandleFunc("/v1/"+name, s.metrics.wrap(name, s.view(fn))).Methods("POST")
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	})
	return r
}

// Handler wraps the router with panic recovery, CORS and an access log.
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	var h http.Handler = s.NewRouter()
	h = handlers.CORS(
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.log}), handlers.PrintRecoveryStack(false))(h)
	if accessLog != nil {
		h = handlers.LoggingHandler(accessLog, h)
	}
	return h
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type recoveryLogger struct{ log *slog.Logger }

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error("handler panic", "detail", v)
}
