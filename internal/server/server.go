// Package server exposes the screening conversation over HTTP: the WAHA
// webhook that feeds inbound messages to the engine and a manual-start
// endpoint for recruiters.
package server

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Conversations is the slice of the engine the transport needs.
type Conversations interface {
	HandleMessage(ctx context.Context, address, text string) error
	Start(ctx context.Context, address string) error
}

// Server is the webhook HTTP server.
type Server struct {
	echo   *echo.Echo
	engine Conversations
	logger *zap.Logger
}

// New builds the server and registers its routes.
func New(engine Conversations, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{
		echo:   e,
		engine: engine,
		logger: logger,
	}

	e.POST("/api/empleo", s.handleInbound)
	e.POST("/api/empleo/start", s.handleStart)
	e.GET("/health", s.handleHealth)

	return s
}

// Start blocks serving HTTP on the given address.
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
