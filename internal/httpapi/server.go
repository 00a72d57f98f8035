// Package httpapi provides the HTTP API for health checks and game metadata
// resolution.
package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/DomDom3333/GameFinder/internal/gamedata"
	"github.com/DomDom3333/GameFinder/internal/hub"
	"github.com/DomDom3333/GameFinder/internal/session"
)

// Server is the HTTP API server.
type Server struct {
	echo     *echo.Echo
	hub      *hub.Hub
	registry *session.Registry
	cache    *gamedata.Cache
}

// NewServer creates a new HTTP API server.
func NewServer(h *hub.Hub, registry *session.Registry, cache *gamedata.Cache) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{
		echo:     e,
		hub:      h,
		registry: registry,
		cache:    cache,
	}

	// Register routes
	e.GET("/health", s.handleHealth)
	e.GET("/gamedata/:id", s.handleGameData)
	e.POST("/gamedata/resolve", s.handleResolve)

	return s
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"connections": s.hub.Count(),
		"sessions":    s.registry.Count(),
	})
}

// handleGameData resolves a single game id through the cache. Returns 204
// when the id does not resolve to a matchable game.
func (s *Server) handleGameData(c echo.Context) error {
	id := c.Param("id")
	data, err := s.cache.Get(c.Request().Context(), id)
	if err != nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, data)
}

// ResolveRequest is the body of POST /gamedata/resolve.
type ResolveRequest struct {
	Results []gamedata.Vote `json:"results"`
}

// handleResolve populates a list of end-of-round summaries with metadata.
func (s *Server) handleResolve(c echo.Context) error {
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resolved := s.cache.Resolve(c.Request().Context(), req.Results)
	return c.JSON(http.StatusOK, resolved)
}
