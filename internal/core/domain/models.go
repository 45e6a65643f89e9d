package domain

import (
	"io"
	"time"
)

// MediaFormat is the container the caller asks for.
type MediaFormat string

const (
	FormatMP4 MediaFormat = "mp4"
	FormatMP3 MediaFormat = "mp3"
)

// Supported reports whether f is one of the deliverable containers.
func (f MediaFormat) Supported() bool {
	return f == FormatMP4 || f == FormatMP3
}

// MimeType returns the Content-Type sent for the container.
func (f MediaFormat) MimeType() string {
	switch f {
	case FormatMP4:
		return "video/mp4"
	case FormatMP3:
		return "audio/mpeg"
	}
	return "application/octet-stream"
}

const (
	DefaultFormat       = FormatMP4
	DefaultVideoQuality = "highestvideo"
)

type DownloadRequest struct {
	URL     string      `json:"url"`
	Format  MediaFormat `json:"format"`  // "mp4" or "mp3"
	Quality string      `json:"quality"` // quality hint, only used for mp4
}

// FilterKind says which streams a FormatFilter accepts.
type FilterKind int

const (
	FilterAny FilterKind = iota
	FilterVideoAndAudio
	FilterAudioOnly
	FilterVideoOnly
)

func (k FilterKind) String() string {
	switch k {
	case FilterVideoAndAudio:
		return "videoandaudio"
	case FilterAudioOnly:
		return "audioonly"
	case FilterVideoOnly:
		return "videoonly"
	}
	return "any"
}

// FormatFilter is the declarative selection handed to an extractor.
type FormatFilter struct {
	Quality string
	Kind    FilterKind
}

// Format describes one retrievable stream variant as enumerated by an extractor.
type Format struct {
	ID            string `json:"id"` // extractor specific identifier
	Itag          int    `json:"itag,omitempty"`
	MimeType      string `json:"mime_type"`
	Container     string `json:"container"`
	QualityLabel  string `json:"quality_label,omitempty"`
	Height        int    `json:"height,omitempty"`
	Bitrate       int    `json:"bitrate,omitempty"`
	AudioBitrate  int    `json:"audio_bitrate,omitempty"`
	HasVideo      bool   `json:"has_video"`
	HasAudio      bool   `json:"has_audio"`
	ContentLength int64  `json:"content_length,omitempty"`
}

type MediaInfo struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Author   string        `json:"author"`
	Duration time.Duration `json:"duration"`
	Formats  []Format      `json:"formats"`

	// Source is the extractor's own handle for the media, passed back to
	// OpenStream untouched.
	Source any `json:"-"`
}

// Delivery is a selected stream ready to be written to a response.
// The caller owns Stream and must close it.
type Delivery struct {
	MimeType string
	Filename string
	Size     int64
	Format   Format
	Stream   io.ReadCloser
}
