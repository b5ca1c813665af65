package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/config"
	"github.com/doodlesbykumbi/storefront-admin/pkg/metrics"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/views"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	CheckConnectivity(ctx context.Context) error
}

type Server struct {
	Router   *mux.Router
	Sessions *session.Manager
	Catalog  *catalog.Client
	Views    *views.Renderer
	Logger   *zap.Logger
	// Health checks the session store; nil when sessions live in memory.
	Health HealthChecker

	config atomic.Pointer[config.StorefrontConfig]
	srv    *http.Server
}

func NewServer(
	cfg *config.StorefrontConfig,
	sessions *session.Manager,
	client *catalog.Client,
	logger *zap.Logger,
	host string,
	port string,
) (*Server, error) {
	renderer, err := views.New()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := mux.NewRouter()
	if cfg.MetricsEnabled {
		router.Use(metrics.Middleware)
	}

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger)),
		handlers.PrintRecoveryStack(os.Getenv("STOREFRONT_LOG_LEVEL") == "debug"),
	)
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, recovery(router)),
		Addr:    host + ":" + port,
		// Remote calls are bounded by the request timeout; leave room to render.
		WriteTimeout: cfg.RequestTimeout() + 15*time.Second,
		ReadTimeout:  15 * time.Second,
	}

	s := &Server{
		Router:   router,
		Sessions: sessions,
		Catalog:  client,
		Views:    renderer,
		Logger:   logger,
		srv:      srv,
	}
	s.config.Store(cfg)
	return s, nil
}

// Config returns the configuration currently in effect.
func (s *Server) Config() *config.StorefrontConfig {
	return s.config.Load()
}

// SetConfig swaps in a reloaded configuration. Settings that shape the
// process at startup (api_base_url, session_store, metrics_enabled) need a
// restart; the rest apply to the next request.
func (s *Server) SetConfig(cfg *config.StorefrontConfig) {
	prev := s.config.Swap(cfg)
	if s.Catalog != nil {
		s.Catalog.SetTimeout(cfg.RequestTimeout())
		s.Catalog.SetRateLimit(cfg.APIRateLimit, 0)
	}
	if s.Sessions != nil {
		s.Sessions.SetTTL(cfg.SessionTTL())
		s.Sessions.SetSecureCookies(cfg.SecureCookies)
	}
	if prev != nil && (prev.APIBaseURL != cfg.APIBaseURL || prev.SessionStore != cfg.SessionStore || prev.MetricsEnabled != cfg.MetricsEnabled) {
		s.Logger.Warn("configuration change requires a restart to take full effect")
	}
	s.Logger.Info("configuration reloaded", zap.String("file", cfg.ConfigFilePath()))
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Handler is the fully wrapped handler, for serving without listening.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	s.Logger.Info("listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
