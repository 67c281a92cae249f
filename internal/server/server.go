package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/scorekeeper-service/internal/config"
	"github.com/preston-bernstein/scorekeeper-service/internal/events"
	httpserver "github.com/preston-bernstein/scorekeeper-service/internal/http"
	"github.com/preston-bernstein/scorekeeper-service/internal/http/handlers"
	"github.com/preston-bernstein/scorekeeper-service/internal/http/middleware"
	"github.com/preston-bernstein/scorekeeper-service/internal/logging"
	"github.com/preston-bernstein/scorekeeper-service/internal/match"
	"github.com/preston-bernstein/scorekeeper-service/internal/metrics"
	"github.com/preston-bernstein/scorekeeper-service/internal/palette"
)

var metricsSetup = metrics.Setup

// eventBus is the part of the change-event bus the server owns the lifecycle of.
type eventBus interface {
	handlers.EventSource
	Attach(*match.Session) func()
	Close() error
}

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	session       *match.Session
	bus           eventBus
	detach        []func()
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New constructs a server hosting one match session built from cfg.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	catalogue, err := cfg.Match.Catalogue()
	if err != nil {
		return nil, fmt.Errorf("load palette catalogue: %w", err)
	}
	return newServerWithMetrics(cfg, logger, catalogue, nil), nil
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, catalogue palette.Catalogue, recorder *metrics.Recorder) *Server {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	session := match.NewSession(match.Config{
		Catalogue:    catalogue,
		HomeTeamName: cfg.Match.HomeTeamName,
		AwayTeamName: cfg.Match.AwayTeamName,
		Logger:       logger,
	})
	bus := events.NewInProcessBus(cfg.Events.Buffer, logger, recorder)

	detach := []func(){
		session.Subscribe(mutationRecorder(recorder)),
		bus.Attach(session),
	}

	if logger != nil {
		logger.Info("match session ready",
			slog.String(logging.FieldSession, session.ID()),
			slog.String(logging.FieldPalette, catalogue.Revision),
		)
	}

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		session:       session,
		bus:           bus,
		detach:        detach,
		httpServer:    buildHTTPServer(cfg, session, bus, logger, recorder),
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, session *match.Session, httpSrv httpServer, bus eventBus) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		session:    session,
		bus:        bus,
		httpServer: httpSrv,
	}
}

func mutationRecorder(recorder *metrics.Recorder) match.Listener {
	return func(_ match.State, change match.Change) {
		recorder.RecordMutation(string(change.Op), change.Side, change.Applied)
	}
}

func buildHTTPServer(cfg config.Config, session *match.Session, bus eventBus, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	handler := handlers.NewHandler(session, bus, logger, handlers.StreamConfig{Heartbeat: cfg.Events.Heartbeat})
	router := httpserver.NewRouter(handler)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the HTTP servers, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	if s.logger != nil {
		s.logger.Info("http server starting", slog.String("addr", s.httpServer.Addr()))
	}
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	if s.logger != nil {
		s.logger.Info("metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, d := range s.detach {
		d()
	}

	// Closing the bus ends open event streams so the HTTP server can drain.
	if s.bus != nil {
		if err := s.bus.Close(); err != nil && s.logger != nil {
			s.logger.Warn("event bus close failed", "error", err)
		}
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}

// Session exposes the hosted match session.
func (s *Server) Session() *match.Session {
	return s.session
}
