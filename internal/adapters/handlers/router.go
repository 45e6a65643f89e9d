package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *log.Logger

	// Limiter guards /download when non-nil.
	Limiter *rate.Limiter

	// Static is served under /ui when non-nil.
	Static http.FileSystem
}

func NewRouter(h *HTTPHandler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = h.logger
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(loggingMiddleware(logger))
	r.Use(corsMiddleware(origins))

	r.GET("/", h.HandleRoot)

	download := []gin.HandlerFunc{h.HandleDownload}
	if opts.Limiter != nil {
		download = append([]gin.HandlerFunc{rateLimitMiddleware(opts.Limiter)}, download...)
	}
	r.GET("/download", download...)
	// preflight is answered by the CORS middleware
	r.OPTIONS("/download", func(c *gin.Context) {})

	if opts.Static != nil {
		r.StaticFS("/ui", opts.Static)
	}

	return r
}
