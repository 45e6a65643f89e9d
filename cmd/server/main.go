package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tubeproxy/internal/adapters/handlers"
	"tubeproxy/internal/adapters/youtube"
	"tubeproxy/internal/adapters/ytdlp"
	"tubeproxy/internal/config"
	"tubeproxy/internal/core/ports"
	"tubeproxy/internal/core/services"
	"tubeproxy/web"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, foundEnv, err := config.Load()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	if !foundEnv {
		logger.Println("No .env file found, using environment")
	}

	// 1. Adapters (Driven)
	var extractor ports.Extractor
	switch cfg.Extractor {
	case config.ExtractorYtDlp:
		extractor = ytdlp.NewYtDlpAdapter(cfg.YtDlpPath)
	default:
		extractor = youtube.NewExtractor(&http.Client{})
	}

	// 2. Core Service
	deliveryService := services.NewDeliveryService(extractor, cfg.ExtractorTimeout, logger)

	// 3. Adapter (Driving)
	httpHandler := handlers.NewHTTPHandler(deliveryService, logger)

	// 4. Router
	gin.SetMode(gin.ReleaseMode)
	opts := handlers.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		Static:         web.FileSystem(),
		Logger:         logger,
	}
	if cfg.RateLimitRPS > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	router := handlers.NewRouter(httpHandler, opts)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0, // No timeout for downloads
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Printf("Backend server running on http://localhost:%d (extractor %s)", cfg.Port, cfg.Extractor)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("Shutdown: %v", err)
	}
}
