package formats

import (
	"errors"
	"testing"
	"tubeproxy/internal/core/domain"
)

func sampleFormats() []domain.Format {
	return []domain.Format{
		{ID: "18", Itag: 18, Container: "mp4", QualityLabel: "360p", Height: 360, Bitrate: 500_000, AudioBitrate: 96_000, HasVideo: true, HasAudio: true},
		{ID: "22", Itag: 22, Container: "mp4", QualityLabel: "720p", Height: 720, Bitrate: 1_500_000, AudioBitrate: 192_000, HasVideo: true, HasAudio: true},
		{ID: "137", Itag: 137, Container: "mp4", QualityLabel: "1080p", Height: 1080, Bitrate: 4_000_000, HasVideo: true},
		{ID: "140", Itag: 140, Container: "m4a", Bitrate: 130_000, AudioBitrate: 128_000, HasAudio: true},
		{ID: "251", Itag: 251, Container: "webm", Bitrate: 160_000, AudioBitrate: 160_000, HasAudio: true},
	}
}

func TestChoose(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.FormatFilter
		want   string
	}{
		{"highest video and audio", domain.FormatFilter{Quality: QualityHighestVideo, Kind: domain.FilterVideoAndAudio}, "22"},
		{"lowest video and audio", domain.FormatFilter{Quality: QualityLowestVideo, Kind: domain.FilterVideoAndAudio}, "18"},
		{"empty hint means highest", domain.FormatFilter{Kind: domain.FilterVideoAndAudio}, "22"},
		{"highest overall", domain.FormatFilter{Quality: QualityHighest}, "137"},
		{"highest audio only", domain.FormatFilter{Quality: QualityHighestAudio, Kind: domain.FilterAudioOnly}, "251"},
		{"lowest audio only", domain.FormatFilter{Quality: QualityLowestAudio, Kind: domain.FilterAudioOnly}, "140"},
		{"itag", domain.FormatFilter{Quality: "18", Kind: domain.FilterVideoAndAudio}, "18"},
		{"label", domain.FormatFilter{Quality: "720p", Kind: domain.FilterVideoAndAudio}, "22"},
		{"bare height", domain.FormatFilter{Quality: "360", Kind: domain.FilterVideoAndAudio}, "18"},
		{"case insensitive", domain.FormatFilter{Quality: "HighestVideo", Kind: domain.FilterVideoOnly}, "137"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Choose(sampleFormats(), tt.filter)
			if err != nil {
				t.Fatalf("Choose() error = %v", err)
			}
			if got.ID != tt.want {
				t.Errorf("Choose() = %s, want %s", got.ID, tt.want)
			}
		})
	}
}

func TestChooseNoMatch(t *testing.T) {
	tests := []struct {
		name   string
		list   []domain.Format
		filter domain.FormatFilter
	}{
		{"unknown hint", sampleFormats(), domain.FormatFilter{Quality: "2160p", Kind: domain.FilterVideoAndAudio}},
		{"partial label", sampleFormats(), domain.FormatFilter{Quality: "72", Kind: domain.FilterVideoAndAudio}},
		{"single digit", sampleFormats(), domain.FormatFilter{Quality: "3", Kind: domain.FilterVideoAndAudio}},
		{"unknown itag", sampleFormats(), domain.FormatFilter{Quality: "999", Kind: domain.FilterVideoAndAudio}},
		{"no progressive", sampleFormats()[2:], domain.FormatFilter{Quality: QualityHighestVideo, Kind: domain.FilterVideoAndAudio}},
		{"empty list", nil, domain.FormatFilter{Kind: domain.FilterAudioOnly}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Choose(tt.list, tt.filter)
			if !errors.Is(err, ErrNoMatch) {
				t.Errorf("Choose() error = %v, want ErrNoMatch", err)
			}
		})
	}
}

func TestFilterKinds(t *testing.T) {
	list := sampleFormats()

	if got := len(Filter(list, domain.FilterVideoAndAudio)); got != 2 {
		t.Errorf("video and audio: got %d formats, want 2", got)
	}
	if got := len(Filter(list, domain.FilterAudioOnly)); got != 2 {
		t.Errorf("audio only: got %d formats, want 2", got)
	}
	if got := len(Filter(list, domain.FilterVideoOnly)); got != 1 {
		t.Errorf("video only: got %d formats, want 1", got)
	}
	if got := len(Filter(list, domain.FilterAny)); got != len(list) {
		t.Errorf("any: got %d formats, want %d", got, len(list))
	}
}

func TestChooseDoesNotReorderInput(t *testing.T) {
	list := sampleFormats()
	if _, err := Choose(list, domain.FormatFilter{Quality: QualityHighest}); err != nil {
		t.Fatal(err)
	}
	if list[0].ID != "18" {
		t.Errorf("input list was reordered, first = %s", list[0].ID)
	}
}

func TestChooseLabelWithFrameRate(t *testing.T) {
	list := []domain.Format{
		{ID: "18", Itag: 18, QualityLabel: "360p", Height: 360, HasVideo: true, HasAudio: true},
		{ID: "300", Itag: 300, QualityLabel: "720p60", Height: 720, HasVideo: true, HasAudio: true},
	}

	got, err := Choose(list, domain.FormatFilter{Quality: "720p", Kind: domain.FilterVideoAndAudio})
	if err != nil {
		t.Fatalf("Choose() error = %v", err)
	}
	if got.ID != "300" {
		t.Errorf("Choose(720p) = %s, want 300", got.ID)
	}

	if _, err := Choose(list, domain.FormatFilter{Quality: "72", Kind: domain.FilterVideoAndAudio}); !errors.Is(err, ErrNoMatch) {
		t.Errorf("Choose(72) error = %v, want ErrNoMatch", err)
	}
}
