package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"tubeproxy/internal/core/domain"
	"tubeproxy/internal/core/formats"
	"tubeproxy/internal/core/ports"
	"tubeproxy/pkg/validator"

	"github.com/kkdai/youtube/v2"
)

var errForeignSource = errors.New("media info was not produced by the youtube extractor")

type youtubeExtractor struct {
	client *youtube.Client
}

// NewExtractor returns an extractor backed by github.com/kkdai/youtube.
// A nil httpClient uses http.DefaultClient.
func NewExtractor(httpClient *http.Client) ports.Extractor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &youtubeExtractor{
		client: &youtube.Client{HTTPClient: httpClient},
	}
}

func (e *youtubeExtractor) ValidateURL(rawURL string) bool {
	if !validator.IsYouTubeURL(rawURL) {
		return false
	}
	_, err := youtube.ExtractVideoID(rawURL)
	return err == nil
}

func (e *youtubeExtractor) GetInfo(ctx context.Context, rawURL string) (*domain.MediaInfo, error) {
	video, err := e.client.GetVideoContext(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return toMediaInfo(video), nil
}

func (e *youtubeExtractor) ChooseFormat(info *domain.MediaInfo, filter domain.FormatFilter) (domain.Format, error) {
	return formats.Choose(info.Formats, filter)
}

func (e *youtubeExtractor) OpenStream(ctx context.Context, info *domain.MediaInfo, format domain.Format) (io.ReadCloser, int64, error) {
	video, ok := info.Source.(*youtube.Video)
	if !ok || video == nil {
		return nil, 0, errForeignSource
	}

	native := findByItag(video.Formats, format.Itag)
	if native == nil {
		return nil, 0, fmt.Errorf("itag %d not offered for video %s", format.Itag, video.ID)
	}

	return e.client.GetStreamContext(ctx, video, native)
}

func findByItag(list youtube.FormatList, itag int) *youtube.Format {
	for i := range list {
		if list[i].ItagNo == itag {
			return &list[i]
		}
	}
	return nil
}

func toMediaInfo(video *youtube.Video) *domain.MediaInfo {
	info := &domain.MediaInfo{
		ID:       video.ID,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
		Formats:  make([]domain.Format, 0, len(video.Formats)),
		Source:   video,
	}
	for _, f := range video.Formats {
		info.Formats = append(info.Formats, toDomainFormat(f))
	}
	return info
}

func toDomainFormat(f youtube.Format) domain.Format {
	mime := strings.ToLower(f.MimeType)
	hasVideo := strings.HasPrefix(mime, "video/")
	hasAudio := strings.HasPrefix(mime, "audio/") || f.AudioChannels > 0

	bitrate := f.Bitrate
	if bitrate == 0 {
		bitrate = f.AverageBitrate
	}

	df := domain.Format{
		ID:            strconv.Itoa(f.ItagNo),
		Itag:          f.ItagNo,
		MimeType:      f.MimeType,
		Container:     containerOf(mime),
		QualityLabel:  f.QualityLabel,
		Height:        f.Height,
		Bitrate:       bitrate,
		HasVideo:      hasVideo,
		HasAudio:      hasAudio,
		ContentLength: f.ContentLength,
	}
	if hasAudio && !hasVideo {
		df.AudioBitrate = bitrate
	}
	return df
}

// containerOf maps `video/mp4; codecs="..."` style mime types to an extension.
func containerOf(mime string) string {
	base := strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])
	switch base {
	case "video/mp4":
		return "mp4"
	case "audio/mp4":
		return "m4a"
	case "video/webm", "audio/webm":
		return "webm"
	case "video/3gpp":
		return "3gp"
	}
	if i := strings.IndexByte(base, '/'); i >= 0 {
		return base[i+1:]
	}
	return base
}
