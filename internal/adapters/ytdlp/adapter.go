package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
	"tubeproxy/internal/core/domain"
	"tubeproxy/internal/core/formats"
	"tubeproxy/internal/core/ports"
	"tubeproxy/pkg/validator"
)

const DefaultBinary = "yt-dlp"

type commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

type ytDlpAdapter struct {
	binary  string
	command commandFunc
}

// NewYtDlpAdapter drives a local yt-dlp binary. An empty binary means
// "yt-dlp" from PATH.
func NewYtDlpAdapter(binary string) ports.Extractor {
	if binary == "" {
		binary = DefaultBinary
	}
	return &ytDlpAdapter{binary: binary, command: exec.CommandContext}
}

// Internal struct to match yt-dlp JSON output
type ytDlpJSON struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Uploader   string        `json:"uploader"`
	Duration   float64       `json:"duration"`
	WebpageURL string        `json:"webpage_url"`
	Formats    []ytDlpFormat `json:"formats"`
}

type ytDlpFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	FormatNote     string  `json:"format_note"`
	TBR            float64 `json:"tbr"`
	ABR            float64 `json:"abr"`
	Filesize       float64 `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
}

func (a *ytDlpAdapter) ValidateURL(rawURL string) bool {
	return validator.IsYouTubeURL(rawURL)
}

func (a *ytDlpAdapter) GetInfo(ctx context.Context, url string) (*domain.MediaInfo, error) {
	cmd := a.command(ctx, a.binary, "-J", "--no-playlist", "--no-warnings", url)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp error: %s", exitMessage(err))
	}
	return parseInfo(output)
}

func (a *ytDlpAdapter) ChooseFormat(info *domain.MediaInfo, filter domain.FormatFilter) (domain.Format, error) {
	return formats.Choose(info.Formats, filter)
}

// OpenStream runs yt-dlp with the output template "-" and hands back its
// stdout. Closing the stream kills the process if it is still running.
func (a *ytDlpAdapter) OpenStream(ctx context.Context, info *domain.MediaInfo, format domain.Format) (io.ReadCloser, int64, error) {
	target, ok := info.Source.(string)
	if !ok || target == "" {
		return nil, 0, fmt.Errorf("media info has no yt-dlp source URL")
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := a.command(ctx, a.binary,
		"-f", format.ID,
		"-o", "-",
		"--no-playlist",
		"--no-part",
		"--quiet",
		"--no-warnings",
		target,
	)
	stderr := &tailBuffer{limit: 4096}
	cmd.Stderr = stderr
	// yt-dlp may leave ffmpeg children holding the pipes after a kill
	cmd.WaitDelay = 5 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, 0, fmt.Errorf("yt-dlp pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, 0, fmt.Errorf("yt-dlp start: %w", err)
	}

	return &processStream{cmd: cmd, stdout: stdout, stderr: stderr, cancel: cancel}, format.ContentLength, nil
}

func parseInfo(output []byte) (*domain.MediaInfo, error) {
	var data ytDlpJSON
	if err := json.Unmarshal(output, &data); err != nil {
		return nil, fmt.Errorf("yt-dlp output: %w", err)
	}

	source := data.WebpageURL
	if source == "" && data.ID != "" {
		source = "https://www.youtube.com/watch?v=" + data.ID
	}

	info := &domain.MediaInfo{
		ID:       data.ID,
		Title:    data.Title,
		Author:   data.Uploader,
		Duration: time.Duration(data.Duration * float64(time.Second)),
		Formats:  make([]domain.Format, 0, len(data.Formats)),
		Source:   source,
	}

	for _, f := range data.Formats {
		// storyboards and other image tracks carry neither codec
		if !hasCodec(f.VCodec) && !hasCodec(f.ACodec) {
			continue
		}
		info.Formats = append(info.Formats, toDomainFormat(f))
	}

	return info, nil
}

func toDomainFormat(f ytDlpFormat) domain.Format {
	hasVideo := hasCodec(f.VCodec)
	hasAudio := hasCodec(f.ACodec)

	label := f.FormatNote
	if hasVideo && f.Height > 0 && !strings.HasSuffix(label, "p") {
		label = fmt.Sprintf("%dp", f.Height)
	}

	size := f.Filesize
	if size == 0 {
		size = f.FilesizeApprox
	}

	itag, _ := strconv.Atoi(f.FormatID)

	df := domain.Format{
		ID:            f.FormatID,
		Itag:          itag,
		MimeType:      mimeOf(f.Ext, hasVideo),
		Container:     f.Ext,
		QualityLabel:  label,
		Height:        f.Height,
		Bitrate:       int(f.TBR * 1000),
		HasVideo:      hasVideo,
		HasAudio:      hasAudio,
		ContentLength: int64(size),
	}
	if hasAudio {
		df.AudioBitrate = int(f.ABR * 1000)
		if df.AudioBitrate == 0 && !hasVideo {
			df.AudioBitrate = df.Bitrate
		}
	}
	return df
}

func hasCodec(codec string) bool {
	return codec != "" && codec != "none"
}

func mimeOf(ext string, video bool) string {
	kind := "audio"
	if video {
		kind = "video"
	}
	switch ext {
	case "m4a":
		return "audio/mp4"
	case "":
		return "application/octet-stream"
	}
	return kind + "/" + ext
}

func exitMessage(err error) string {
	if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
		return strings.TrimSpace(string(ee.Stderr))
	}
	return err.Error()
}
