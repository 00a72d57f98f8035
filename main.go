package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/DomDom3333/GameFinder/internal/config"
	"github.com/DomDom3333/GameFinder/internal/coordinator"
	"github.com/DomDom3333/GameFinder/internal/gamedata"
	"github.com/DomDom3333/GameFinder/internal/httpapi"
	"github.com/DomDom3333/GameFinder/internal/hub"
	"github.com/DomDom3333/GameFinder/internal/session"
	"github.com/DomDom3333/GameFinder/internal/steam"
	"github.com/DomDom3333/GameFinder/internal/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting GameFinder server...")
	log.Printf("WebSocket Port: %d", cfg.WSPort)
	log.Printf("HTTP Port: %d", cfg.HTTPPort)

	// Durable cache tier
	store, err := gamedata.NewStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open game cache store: %v", err)
	}
	defer store.Close()

	// Upstream fetcher + two-tier cache
	fetcher := steam.NewClient(cfg.SteamStoreURL, cfg.FetchTimeout)
	cache := gamedata.NewCache(fetcher, store, gamedata.Options{
		TTL:             cfg.CacheTTL,
		TokensPerMinute: cfg.TokensPerMinute,
		Burst:           cfg.RateBurst,
		QueueWait:       cfg.RateQueueWait,
	})

	// Session state and protocol handling
	connectionHub := hub.NewHub()
	registry := session.NewRegistry()
	coord := coordinator.New(registry, connectionHub)

	// WebSocket server
	wsServer := ws.NewServer(cfg, connectionHub, coord)
	wsEcho := echo.New()
	wsEcho.HideBanner = true
	wsEcho.HidePort = true
	wsEcho.Use(middleware.Logger())
	wsEcho.Use(middleware.Recover())
	wsEcho.GET("/ws", wsServer.HandleWebSocket)

	// HTTP API server
	apiServer := httpapi.NewServer(connectionHub, registry, cache)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.WSPort)
		if err := wsEcho.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start WebSocket server: %v", err)
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := apiServer.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	log.Printf("WebSocket server started on port %d", cfg.WSPort)
	log.Printf("HTTP server started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := wsEcho.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown WebSocket server gracefully: %v", err)
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Println("Server stopped")
}
