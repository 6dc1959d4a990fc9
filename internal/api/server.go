package api

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/climateapi/internal/climate"
)

// Pinger reports whether the dataset is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	climate *climate.Service
	pinger  Pinger
	opts    Options
	tmpl    *template.Template
}

func NewServer(svc *climate.Service, pinger Pinger, opts Options) *Server {
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	return &Server{
		climate: svc,
		pinger:  pinger,
		opts:    opts,
		tmpl:    newTemplates(),
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(instrument)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Fixed routes must be registered before {start} so they are not read
	// as dates. They stay on the root router: a subrouter answers 404
	// rather than 405 when a wrong-method request matches two of its routes.
	r.HandleFunc("/api/v1.0/precipitation", s.handlePrecipitation).Methods(http.MethodGet)
	r.HandleFunc("/api/v1.0/stations", s.handleStations).Methods(http.MethodGet)
	r.HandleFunc("/api/v1.0/tobs", s.handleTobs).Methods(http.MethodGet)
	r.HandleFunc("/api/v1.0/{start}", s.handleTemperatureStats).Methods(http.MethodGet)
	r.HandleFunc("/api/v1.0/{start}/{end}", s.handleTemperatureStats).Methods(http.MethodGet)

	return r
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "err", err)
		}
	}()

	slog.Info("http server listening", "addr", s.opts.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
