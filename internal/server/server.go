// Package server exposes the semantic extractor over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/daydigest/config"
	"github.com/mohammad-safakhou/daydigest/internal/auth"
	"github.com/mohammad-safakhou/daydigest/internal/semantic"
	"github.com/mohammad-safakhou/daydigest/internal/telemetry"
)

// Server wires the Echo router, the metrics registry and a shared extractor.
type Server struct {
	cfg       *config.Config
	echo      *echo.Echo
	registry  *prometheus.Registry
	extractor *semantic.Extractor
	logger    *log.Logger
}

// New builds a Server from cfg. A nil logger selects the default [HTTP] logger.
func New(cfg *config.Config, logger *log.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	opts, err := cfg.SemanticOptions()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	if cfg.Telemetry.Enabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m, err := telemetry.NewMetrics(reg, cfg.Telemetry.Namespace)
		if err != nil {
			return nil, fmt.Errorf("metrics init: %w", err)
		}
		opts.Metrics = m
	}
	opts.Logger = log.New(logger.Writer(), "[SEMANTIC] ", logger.Flags())

	s := &Server{
		cfg:       cfg,
		echo:      echo.New(),
		registry:  reg,
		extractor: semantic.NewExtractor(opts),
		logger:    logger,
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) routes() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = s.cfg.General.Debug
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(s.cfg.Server.BodyLimit()))
	e.HTTPErrorHandler = s.handleError

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if s.cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api")
	if s.cfg.Server.AuthEnabled() {
		api.Use(auth.EchoAuthMiddleware([]byte(s.cfg.Server.JWTSecret)), auth.RequireScopes(auth.ScopeDigest))
	}
	h := &digestHandler{extractor: s.extractor, logger: s.logger}
	h.Register(api)
}

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// handleError logs the failure on the [HTTP] logger and answers with an
// errorBody unless the handler already wrote a response.
func (s *Server) handleError(err error, c echo.Context) {
	status, msg := errorStatus(err)
	req := c.Request()
	s.logger.Printf("%s %s -> %d: %v", req.Method, req.URL.Path, status, err)
	if c.Response().Committed {
		return
	}
	if req.Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, errorBody{Error: msg, Status: status})
}

// errorStatus maps echo errors to their status and public message; any other
// error is a 500 carrying its own text.
func errorStatus(err error) (int, string) {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return http.StatusInternalServerError, err.Error()
	}
	if he.Message == nil {
		return he.Code, http.StatusText(he.Code)
	}
	return he.Code, fmt.Sprint(he.Message)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Server.Address
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s (auth %s)", addr, onOff(s.cfg.Server.AuthEnabled()))
		errCh <- s.echo.Start(addr)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
