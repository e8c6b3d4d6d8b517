// Package server provides the operational HTTP endpoints of the bot.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jasonholloway125/Trivia-Bot/internal/profile"
)

// Server serves the health and metrics endpoints next to the bot.
type Server struct {
	e       *echo.Echo
	profile *profile.Profile
}

// NewServer creates the ops server.
func NewServer(p *profile.Profile, registry *prometheus.Registry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &Server{
		e:       e,
		profile: p,
	}
}

// Start serves until ctx is cancelled or the listener fails. It returns
// http.ErrServerClosed on graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.Shutdown(context.Background())
	}()

	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	slog.Info("ops server: listening", "addr", addr)
	return s.e.Start(addr)
}

// Shutdown stops the ops server gracefully.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(ctx); err != nil {
		slog.Error("ops server: failed to shut down gracefully", "error", err)
	}
}
