// Package server exposes the tutoring engine over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/abhisek/gcsetutor/internal/config"
	"github.com/abhisek/gcsetutor/internal/diagnostic"
	"github.com/abhisek/gcsetutor/internal/logger"
	"github.com/abhisek/gcsetutor/internal/store"
	"github.com/abhisek/gcsetutor/internal/turn"
	"github.com/abhisek/gcsetutor/internal/turnlock"
)

// Deps are the collaborators the HTTP layer drives.
type Deps struct {
	Orchestrator *turn.Orchestrator
	Locker       turnlock.Locker
	Evidence     store.EvidenceRepo
	Selector     *diagnostic.Selector
	Logger       *logger.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	log    *logger.Logger
	engine *gin.Engine
}

// New builds the router. deps.Locker defaults to an in-process lock and
// deps.Selector to the embedded question bank.
func New(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Locker == nil {
		deps.Locker = turnlock.NewLocal()
	}
	if deps.Selector == nil {
		deps.Selector = diagnostic.NewSelector(diagnostic.MustDefaultBank(), nil)
	}
	s := &Server{cfg: cfg, deps: deps, log: deps.Logger.With("component", "server")}
	s.engine = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("gcsetutor"))
	r.Use(RequestLogger(s.log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  s.cfg.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: tutorHeaders,
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(RequireAuth([]byte(s.cfg.JWTSecret), s.cfg.JWTIssuer, s.log))
	{
		api.POST("/tutor/turn", s.handleTurn)
		api.GET("/progress/subjects", s.handleProgress)
		api.GET("/diagnostic/:subject", s.handleDiagnostic)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.log.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
