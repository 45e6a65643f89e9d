package ports

import (
	"context"
	"io"
	"tubeproxy/internal/core/domain"
)

type DeliveryService interface {
	// FetchMedia validates req, selects a stream and opens it. The returned
	// Delivery's Stream must be closed by the caller.
	FetchMedia(ctx context.Context, req domain.DownloadRequest) (*domain.Delivery, error)
}

// Extractor is the boundary to the library that knows the video site.
type Extractor interface {
	ValidateURL(rawURL string) bool
	GetInfo(ctx context.Context, rawURL string) (*domain.MediaInfo, error)
	ChooseFormat(info *domain.MediaInfo, filter domain.FormatFilter) (domain.Format, error)
	OpenStream(ctx context.Context, info *domain.MediaInfo, format domain.Format) (io.ReadCloser, int64, error)
}
