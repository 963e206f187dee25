// Package server builds the gin router and runs the HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/config"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/handlers"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/middleware"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/monitoring"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/services"
)

const shutdownTimeout = 10 * time.Second

// Deps are the services the routes serve. Tasks and Jobs may be nil.
type Deps struct {
	Agent *services.AgentService
	Tasks services.TaskService
	Jobs  handlers.Enqueuer
}

type Server struct {
	cfg     *config.Config
	router  *gin.Engine
	limiter *middleware.RateLimiter
	log     *logging.Logger
}

func New(cfg *config.Config, deps Deps) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	log := logging.Component("http")

	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(middleware.RequestLogger(log))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{cfg: cfg, router: router, log: log}
	if cfg.RateLimit.Enabled {
		s.limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMin:  cfg.RateLimit.RequestsPerMin,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
		})
		router.Use(s.limiter.Middleware())
	}

	router.GET("/health", monitoring.HealthHandler())
	router.GET("/ready", monitoring.ReadinessHandler())
	router.GET("/live", monitoring.LivenessHandler())
	router.GET("/metrics", monitoring.MetricsHandler())

	guard := middleware.AuthzMiddleware(middleware.AuthzConfig{
		Enabled: cfg.Auth.Enabled,
		Secret:  cfg.Auth.JWTSecret,
		Issuer:  cfg.Auth.Issuer,
	})

	handlers.NewAgentHandler(deps.Agent).RegisterRoutes(router, guard)
	if deps.Tasks != nil {
		handlers.NewStoredTaskHandler(deps.Tasks, deps.Jobs).RegisterRoutes(router, guard)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.GetServerAddr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
