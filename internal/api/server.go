package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pricewatch/pricewatch-guard/internal/services"
)

// Server is the HTTP surface over the guard service.
type Server struct {
	logger *slog.Logger
	svc    *services.GuardService
	http   *http.Server
}

// NewServer builds the router and wraps it in an http.Server.
func NewServer(logger *slog.Logger, svc *services.GuardService, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{logger: logger, svc: svc}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLog())

	router.GET("/healthz", s.handleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/suggestions", s.handleSuggestions)
		v1.POST("/solutions/:id/apply", s.handleApply)
		v1.GET("/solutions/:id/config", s.handleGetConfig)
		v1.PATCH("/solutions/:id/config", s.handlePatchConfig)
		v1.POST("/effectiveness", s.handleReportEffectiveness)
		v1.GET("/effectiveness", s.handleListEffectiveness)
		v1.GET("/platforms/:platform/status", s.handlePlatformStatus)
		v1.POST("/targets/check", s.handleCheckTarget)
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)))
	}
}
