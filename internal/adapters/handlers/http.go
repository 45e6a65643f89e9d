package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"tubeproxy/internal/core/domain"
	"tubeproxy/internal/core/ports"

	"github.com/gin-gonic/gin"
)

const livenessMessage = "YouTube Downloader Backend is running!"

type HTTPHandler struct {
	service ports.DeliveryService
	logger  *log.Logger
}

func NewHTTPHandler(s ports.DeliveryService, logger *log.Logger) *HTTPHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPHandler{service: s, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) HandleRoot(c *gin.Context) {
	c.String(http.StatusOK, livenessMessage)
}

func (h *HTTPHandler) HandleDownload(c *gin.Context) {
	req := domain.DownloadRequest{
		URL:     c.Query("url"),
		Format:  domain.MediaFormat(c.Query("format")),
		Quality: c.Query("quality"),
	}
	id := RequestID(c)

	ctx := c.Request.Context()
	delivery, err := h.service.FetchMedia(ctx, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer delivery.Stream.Close()

	// Release the upstream stream as soon as the client goes away, even if
	// the extractor's reader does not watch the context itself.
	stop := context.AfterFunc(ctx, func() {
		delivery.Stream.Close()
	})
	defer stop()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", delivery.Filename))
	c.Header("Content-Type", delivery.MimeType)
	c.Status(http.StatusOK)

	h.logger.Printf("[REQ %s] streaming %s (format %s, %d bytes expected)", id, delivery.Filename, delivery.Format.ID, delivery.Size)

	n, err := io.Copy(c.Writer, delivery.Stream)
	switch {
	case err == nil:
		h.logger.Printf("[REQ %s] finished %s, %d bytes", id, delivery.Filename, n)
	case ctx.Err() != nil:
		h.logger.Printf("[REQ %s] client disconnected after %d bytes", id, n)
	default:
		h.logger.Printf("[REQ %s] error streaming response after %d bytes: %v", id, n, err)
	}
}

func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Failed to download video: " + err.Error()

	var de *domain.Error
	if errors.As(err, &de) {
		status = de.Kind.HTTPStatus()
		msg = de.Message
	}

	h.logger.Printf("[REQ %s] download error (%d): %v", RequestID(c), status, err)
	c.JSON(status, errorResponse{Error: msg})
}
