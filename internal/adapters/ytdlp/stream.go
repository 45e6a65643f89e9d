package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// processStream exposes a running yt-dlp's stdout as an io.ReadCloser.
type processStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *tailBuffer
	cancel context.CancelFunc

	once    sync.Once
	waitErr error
}

func (p *processStream) Read(b []byte) (int, error) {
	n, err := p.stdout.Read(b)
	if err == io.EOF {
		// a non-zero exit after a short stream is a failure, not a clean end
		if werr := p.wait(); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (p *processStream) Close() error {
	p.cancel()
	err := p.wait()
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() == -1 {
		// killed by the cancel above
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *processStream) wait() error {
	p.once.Do(func() {
		err := p.cmd.Wait()
		p.cancel()
		if err != nil {
			if msg := strings.TrimSpace(p.stderr.String()); msg != "" {
				err = fmt.Errorf("yt-dlp stream: %s: %w", msg, err)
			} else {
				err = fmt.Errorf("yt-dlp stream: %w", err)
			}
		}
		p.waitErr = err
	})
	return p.waitErr
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
