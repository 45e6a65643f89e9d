package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"tubeproxy/internal/client"
	"tubeproxy/internal/core/domain"

	"github.com/joho/godotenv"
)

const envBackendURL = "TUBEPROXY_BACKEND_URL"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	backend := flag.String("backend", envOr(envBackendURL, client.DefaultBackendURL), "Base URL of the delivery service")
	format := flag.String("format", string(domain.FormatMP4), "Container to download: mp4 or mp3")
	quality := flag.String("quality", domain.DefaultVideoQuality, "Quality hint for mp4 (highestvideo, lowestvideo, 720p, itag)")
	outDir := flag.String("out", ".", "Directory to save the file in")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: fetch [-backend url] [-format mp4|mp3] [-quality q] [-out dir] <video-url>")
		fmt.Println("\nExample:")
		fmt.Println("  fetch -format mp3 https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	c, err := client.New(*backend, nil)
	if err != nil {
		logger.Fatalf("Invalid backend: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path, err := c.Download(ctx, domain.DownloadRequest{
		URL:     flag.Arg(0),
		Format:  domain.MediaFormat(*format),
		Quality: *quality,
	}, *outDir)
	if err != nil {
		var se *client.ServerError
		var te *client.TransportError
		switch {
		case errors.As(err, &se):
			logger.Printf("Server rejected the download (%d): %s", se.StatusCode, se.Message)
		case errors.As(err, &te):
			logger.Printf("%v", te)
		default:
			logger.Printf("Download failed: %v", err)
		}
		os.Exit(1)
	}

	fmt.Println(path)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
