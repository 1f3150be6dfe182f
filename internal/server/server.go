package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clickagent/backend/internal/audit"
	"github.com/clickagent/backend/internal/config"
	agenthttp "github.com/clickagent/backend/internal/http"
	"github.com/clickagent/backend/internal/llm"
	"github.com/clickagent/backend/internal/middleware"
	"github.com/clickagent/backend/internal/monitoring"
	"github.com/clickagent/backend/internal/security"
	"github.com/clickagent/backend/internal/session"
	"github.com/clickagent/backend/internal/storage"
	"github.com/clickagent/backend/internal/task"
	"github.com/clickagent/backend/internal/tools"
)

// Server wraps the HTTP server and its wired dependencies.
type Server struct {
	httpServer *http.Server
	tasks      *task.Manager
	sessions   *session.Manager
	log        *zap.Logger
}

// New assembles the full agent backend. Policy validation and the
// tool/policy cross-check run here: a misconfigured capability
// surface must abort startup, never fail a task at runtime.
func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	policy := security.DefaultPolicy()
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid capability policy: %w", err)
	}

	registry := tools.NewRegistry()
	if err := tools.RegisterBrowserTools(registry); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	if err := tools.VerifyPolicy(registry, policy); err != nil {
		return nil, fmt.Errorf("tool catalog violates policy: %w", err)
	}

	store := storage.NewMemory()
	auditLog := audit.NewLogger(store, log)
	sessions := session.NewManager(store)
	model := llm.NewClient(llm.Config{
		BaseURL: cfg.Model.BaseURL,
		APIKey:  cfg.Model.APIKey,
		Model:   cfg.Model.Name,
	})

	metrics := monitoring.NewMetrics()
	tasks := task.NewManager(store, auditLog, sessions, registry, model, policy, log).
		WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(monitoring.Middleware(metrics))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := agenthttp.NewHandlers(tasks, sessions, registry, policy, store)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The agent's posture and catalog are public; everything touching
	// user data requires an identity.
	router.GET("/agent/status", handlers.AgentStatus)
	router.GET("/agent/security", handlers.SecurityInfo)
	router.GET("/agent/tools", handlers.ListTools)

	authed := router.Group("/", middleware.Identity())
	{
		authed.POST("/tasks", handlers.SubmitTask)
		authed.GET("/tasks", handlers.GetHistory)
		authed.GET("/tasks/:id", handlers.GetTask)
		authed.GET("/tasks/:id/audit", handlers.GetAuditTrail)

		authed.POST("/bookmarks", handlers.CreateBookmark)
		authed.GET("/bookmarks", handlers.ListBookmarks)
		authed.DELETE("/bookmarks/:id", handlers.DeleteBookmark)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		tasks:    tasks,
		sessions: sessions,
		log:      log.Named("server"),
	}, nil
}

// Run starts the server and blocks until it stops.
func (s *Server) Run() error {
	s.log.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then drains in-flight task
// executions, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	return s.tasks.Shutdown(ctx)
}
