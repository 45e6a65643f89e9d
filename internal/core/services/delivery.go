package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"tubeproxy/internal/core/domain"
	"tubeproxy/internal/core/formats"
	"tubeproxy/internal/core/ports"
)

const (
	msgInvalidURL         = "Invalid YouTube URL provided."
	msgUnsupportedFormat  = `Unsupported format. Choose "mp4" or "mp3".`
	msgNoCombinedFormat   = "Could not find a suitable combined video/audio format for MP4. High-quality MP4s (1080p+) often require merging video and audio streams with FFmpeg, which this service does not do."
	msgNoAudioFormat      = "Could not find a suitable audio format for MP3."
	msgUpstreamFailurePre = "Failed to download video: "
)

type deliveryService struct {
	extractor ports.Extractor
	timeout   time.Duration
	logger    *log.Logger
}

// NewDeliveryService builds the service. timeout bounds the metadata call to
// the extractor; zero disables the deadline.
func NewDeliveryService(ex ports.Extractor, timeout time.Duration, logger *log.Logger) ports.DeliveryService {
	if logger == nil {
		logger = log.Default()
	}
	return &deliveryService{
		extractor: ex,
		timeout:   timeout,
		logger:    logger,
	}
}

func (s *deliveryService) FetchMedia(ctx context.Context, req domain.DownloadRequest) (*domain.Delivery, error) {
	req = normalize(req)

	if req.URL == "" || !s.extractor.ValidateURL(req.URL) {
		return nil, domain.NewError(domain.KindInvalidInput, msgInvalidURL, nil)
	}
	if !req.Format.Supported() {
		return nil, domain.NewError(domain.KindInvalidInput, msgUnsupportedFormat, nil)
	}

	info, err := s.getInfo(ctx, req.URL)
	if err != nil {
		return nil, domain.NewError(domain.KindUpstreamFailure, msgUpstreamFailurePre+err.Error(), err)
	}

	format, err := s.selectFormat(info, req)
	if err != nil {
		return nil, err
	}

	// The stream lives as long as the request, not the metadata deadline.
	stream, size, err := s.extractor.OpenStream(ctx, info, format)
	if err != nil {
		return nil, domain.NewError(domain.KindUpstreamFailure, msgUpstreamFailurePre+err.Error(), err)
	}
	if size <= 0 {
		size = format.ContentLength
	}

	return &domain.Delivery{
		MimeType: req.Format.MimeType(),
		Filename: fmt.Sprintf("%s.%s", SanitizeTitle(info.Title), req.Format),
		Size:     size,
		Format:   format,
		Stream:   stream,
	}, nil
}

func (s *deliveryService) getInfo(ctx context.Context, url string) (*domain.MediaInfo, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.extractor.GetInfo(ctx, url)
}

func (s *deliveryService) selectFormat(info *domain.MediaInfo, req domain.DownloadRequest) (domain.Format, error) {
	switch req.Format {
	case domain.FormatMP4:
		f, err := s.extractor.ChooseFormat(info, domain.FormatFilter{
			Quality: req.Quality,
			Kind:    domain.FilterVideoAndAudio,
		})
		if err == nil {
			return f, nil
		}
		s.logger.Printf("no combined stream at quality %q for %s (%v), falling back to best combined", req.Quality, info.ID, err)

		f, err = s.extractor.ChooseFormat(info, domain.FormatFilter{
			Quality: formats.QualityHighest,
			Kind:    domain.FilterVideoAndAudio,
		})
		if err != nil {
			return domain.Format{}, domain.NewError(domain.KindNoSuitableFormat, msgNoCombinedFormat, err)
		}
		return f, nil

	case domain.FormatMP3:
		f, err := s.extractor.ChooseFormat(info, domain.FormatFilter{
			Quality: formats.QualityHighestAudio,
			Kind:    domain.FilterAudioOnly,
		})
		if err != nil {
			return domain.Format{}, domain.NewError(domain.KindNoSuitableFormat, msgNoAudioFormat, err)
		}
		return f, nil
	}

	return domain.Format{}, domain.NewError(domain.KindInvalidInput, msgUnsupportedFormat, nil)
}

func normalize(req domain.DownloadRequest) domain.DownloadRequest {
	req.URL = strings.TrimSpace(req.URL)
	req.Format = domain.MediaFormat(strings.ToLower(strings.TrimSpace(string(req.Format))))
	if req.Format == "" {
		req.Format = domain.DefaultFormat
	}
	if req.Format == domain.FormatMP4 && strings.TrimSpace(req.Quality) == "" {
		req.Quality = domain.DefaultVideoQuality
	}
	return req
}
