// Package client talks to the delivery service's /download endpoint and
// saves the returned media under the filename the server suggests.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"tubeproxy/internal/core/domain"
)

const DefaultBackendURL = "http://localhost:5000"

const genericServerError = "Something went wrong on the server."

// ServerError is a non-OK answer from the service; Message is its JSON
// "error" field verbatim.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Error: %s", e.Message)
}

// TransportError means the service could not be reached or the body could
// not be read; it never originates from the server.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Network error or problem connecting to backend: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New returns a client for the service at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBackendURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: u, httpClient: httpClient}, nil
}

// Response is a successful download in flight. The caller must close Body.
type Response struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// Fetch issues the GET /download request.
func (c *Client) Fetch(ctx context.Context, req domain.DownloadRequest) (*Response, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, errors.New("please enter a YouTube video URL")
	}
	if req.Format == "" {
		req.Format = domain.DefaultFormat
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.downloadURL(req), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeServerError(resp)
	}

	return &Response{
		Filename:    ExtractFilename(resp.Header.Get("Content-Disposition"), string(req.Format)),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}

// Download fetches req and writes the body into dir, returning the path of
// the saved file. The body goes to a temporary file first, so a failed
// transfer never leaves a file under the final name.
func (c *Client) Download(ctx context.Context, req domain.DownloadRequest, dir string) (string, error) {
	resp, err := c.Fetch(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, ".tubeproxy-*.part")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &TransportError{Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	target := filepath.Join(dir, safeName(resp.Filename, string(req.Format)))
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}
	return target, nil
}

func (c *Client) downloadURL(req domain.DownloadRequest) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/download"

	q := url.Values{}
	q.Set("url", req.URL)
	q.Set("format", string(req.Format))
	if req.Format == domain.FormatMP4 && req.Quality != "" {
		q.Set("quality", req.Quality)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func decodeServerError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := genericServerError
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &ServerError{StatusCode: resp.StatusCode, Message: msg}
}

// safeName keeps a server supplied name inside the target directory.
func safeName(name, ext string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		return DefaultFilename(ext)
	}
	return name
}
