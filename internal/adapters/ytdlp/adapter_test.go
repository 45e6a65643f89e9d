package ytdlp

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"
	"tubeproxy/internal/core/domain"
)

const sampleJSON = `{
  "id": "dQw4w9WgXcQ",
  "title": "Sample: Video!",
  "uploader": "Uploader",
  "duration": 212.5,
  "webpage_url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
  "formats": [
    {"format_id": "sb0", "ext": "mhtml", "vcodec": "none", "acodec": "none", "format_note": "storyboard"},
    {"format_id": "140", "ext": "m4a", "vcodec": "none", "acodec": "mp4a.40.2", "abr": 129.5, "tbr": 129.5, "filesize": 3400000},
    {"format_id": "251", "ext": "webm", "vcodec": "none", "acodec": "opus", "abr": 160.1, "tbr": 160.1},
    {"format_id": "18", "ext": "mp4", "height": 360, "width": 640, "vcodec": "avc1.42001E", "acodec": "mp4a.40.2", "format_note": "360p", "tbr": 520.3, "filesize_approx": 14000000},
    {"format_id": "137", "ext": "mp4", "height": 1080, "width": 1920, "vcodec": "avc1.640028", "acodec": "none", "format_note": "1080p", "tbr": 4400.0}
  ]
}`

func TestParseInfo(t *testing.T) {
	info, err := parseInfo([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parseInfo() error = %v", err)
	}

	if info.Title != "Sample: Video!" {
		t.Errorf("Title = %q", info.Title)
	}
	if info.Duration != 212500*time.Millisecond {
		t.Errorf("Duration = %v", info.Duration)
	}
	if info.Source != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("Source = %v", info.Source)
	}
	if len(info.Formats) != 4 {
		t.Fatalf("got %d formats, want 4 (storyboard dropped)", len(info.Formats))
	}

	byID := map[string]domain.Format{}
	for _, f := range info.Formats {
		byID[f.ID] = f
	}

	prog := byID["18"]
	if !prog.HasVideo || !prog.HasAudio || prog.Itag != 18 || prog.ContentLength != 14000000 {
		t.Errorf("format 18 = %+v", prog)
	}
	if prog.MimeType != "video/mp4" {
		t.Errorf("format 18 mime = %s", prog.MimeType)
	}

	m4a := byID["140"]
	if m4a.HasVideo || !m4a.HasAudio || m4a.AudioBitrate != 129500 || m4a.MimeType != "audio/mp4" {
		t.Errorf("format 140 = %+v", m4a)
	}

	if v := byID["137"]; !v.HasVideo || v.HasAudio || v.QualityLabel != "1080p" {
		t.Errorf("format 137 = %+v", v)
	}
}

func TestParseInfoFallbackSource(t *testing.T) {
	info, err := parseInfo([]byte(`{"id":"dQw4w9WgXcQ","title":"t"}`))
	if err != nil {
		t.Fatal(err)
	}
	if info.Source != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("Source = %v", info.Source)
	}
}

func TestParseInfoInvalidJSON(t *testing.T) {
	if _, err := parseInfo([]byte("ERROR: something")); err == nil {
		t.Error("parseInfo() should fail on non JSON output")
	}
}

func TestChooseFormat(t *testing.T) {
	info, err := parseInfo([]byte(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	a := NewYtDlpAdapter("")

	f, err := a.ChooseFormat(info, domain.FormatFilter{Quality: "highestvideo", Kind: domain.FilterVideoAndAudio})
	if err != nil || f.ID != "18" {
		t.Errorf("video+audio = %v, %v; want 18", f.ID, err)
	}
	f, err = a.ChooseFormat(info, domain.FormatFilter{Quality: "highestaudio", Kind: domain.FilterAudioOnly})
	if err != nil || f.ID != "251" {
		t.Errorf("audio only = %v, %v; want 251", f.ID, err)
	}
}

func shellAdapter(t *testing.T, script string) *ytDlpAdapter {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	return &ytDlpAdapter{
		binary: "sh",
		command: func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
			return exec.CommandContext(ctx, "sh", "-c", script)
		},
	}
}

func TestOpenStreamReadsStdout(t *testing.T) {
	a := shellAdapter(t, "printf media-bytes")
	info := &domain.MediaInfo{Source: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}

	stream, _, err := a.OpenStream(context.Background(), info, domain.Format{ID: "18"})
	if err != nil {
		t.Fatalf("OpenStream() error = %v", err)
	}
	body, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(body) != "media-bytes" {
		t.Errorf("body = %q", body)
	}
	if err := stream.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOpenStreamReportsFailure(t *testing.T) {
	a := shellAdapter(t, "echo 'ERROR: requested format not available' >&2; exit 1")
	info := &domain.MediaInfo{Source: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}

	stream, _, err := a.OpenStream(context.Background(), info, domain.Format{ID: "999"})
	if err != nil {
		t.Fatalf("OpenStream() error = %v", err)
	}
	defer stream.Close()

	_, err = io.ReadAll(stream)
	if err == nil || !strings.Contains(err.Error(), "requested format not available") {
		t.Errorf("ReadAll() error = %v, want yt-dlp stderr", err)
	}
}

func TestOpenStreamCloseKillsProcess(t *testing.T) {
	a := shellAdapter(t, "while true; do printf x; sleep 0.01; done")
	info := &domain.MediaInfo{Source: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}

	stream, _, err := a.OpenStream(context.Background(), info, domain.Format{ID: "18"})
	if err != nil {
		t.Fatalf("OpenStream() error = %v", err)
	}
	buf := make([]byte, 1)
	if _, err := stream.Read(buf); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- stream.Close() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Close() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close() did not stop the process")
	}
}

func TestOpenStreamCloseReportsEarlyExit(t *testing.T) {
	a := shellAdapter(t, "printf x; echo 'ERROR: unable to download' >&2; exit 3")
	info := &domain.MediaInfo{Source: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}

	stream, _, err := a.OpenStream(context.Background(), info, domain.Format{ID: "18"})
	if err != nil {
		t.Fatalf("OpenStream() error = %v", err)
	}
	buf := make([]byte, 1)
	if _, err := stream.Read(buf); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	// let yt-dlp exit on its own before Close cancels it
	time.Sleep(500 * time.Millisecond)

	err = stream.Close()
	if err == nil || !strings.Contains(err.Error(), "unable to download") {
		t.Errorf("Close() error = %v, want yt-dlp failure", err)
	}
}

func TestOpenStreamRequiresSource(t *testing.T) {
	a := NewYtDlpAdapter("")
	if _, _, err := a.OpenStream(context.Background(), &domain.MediaInfo{}, domain.Format{ID: "18"}); err == nil {
		t.Error("OpenStream() without source should fail")
	}
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{limit: 4}
	b.Write([]byte("abc"))
	b.Write([]byte("defg"))
	if got := b.String(); got != "defg" {
		t.Errorf("tailBuffer = %q, want %q", got, "defg")
	}
}
