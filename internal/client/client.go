// Package client talks to the picker server: it fetches stream metadata and
// performs the download a submitted form hands off.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"ytpicker/internal/model"
	"ytpicker/internal/workflow"
	"ytpicker/pkg/disposition"
	"ytpicker/pkg/logger"
	"ytpicker/pkg/validator"

	"go.uber.org/zap"
)

const (
	maxMetadataBytes = 8 << 20
	progressStep     = 1 << 20
	fallbackFilename = "video_download.mp4"
	maxNameAttempts  = 1000
)

var errNoToken = errors.New("server did not issue an anti-forgery token")

// ProgressFunc receives the bytes written so far and the expected total
// (-1 when unknown). It is called from the downloading goroutine.
type ProgressFunc func(written, total int64)

// Client implements workflow.Fetcher and workflow.Submitter over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	outputDir  string
	progress   ProgressFunc
}

// New creates a client for the server at baseURL. Downloads are written
// to outputDir.
func New(baseURL, outputDir string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Jar: jar},
		outputDir:  outputDir,
	}, nil
}

// SetProgressFunc registers a download progress callback.
func (c *Client) SetProgressFunc(fn ProgressFunc) {
	c.progress = fn
}

// Token returns the anti-forgery token issued by the server, if any.
func (c *Client) Token() string {
	for _, ck := range c.httpClient.Jar.Cookies(c.baseURL) {
		if ck.Name == model.CSRFCookieName {
			return ck.Value
		}
	}
	return ""
}

// Bootstrap loads the index page so the server issues a token.
func (c *Client) Bootstrap(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/"), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("load index page: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("index page returned status %d", resp.StatusCode)
	}
	return nil
}

// FetchStreams posts videoURL to the metadata endpoint. A response that
// carries an error field is returned as-is; transport and decoding
// failures are returned as errors.
func (c *Client) FetchStreams(ctx context.Context, videoURL string) (*model.StreamsResponse, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(model.StreamsRequest{URL: videoURL})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/get_streams/"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(model.CSRFHeaderName, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch streams: %w", err)
	}
	defer resp.Body.Close()

	var out model.StreamsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode streams response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest && out.Error == "" {
		return nil, fmt.Errorf("metadata endpoint returned status %d", resp.StatusCode)
	}

	logger.Logger.Debug("Streams fetched",
		zap.String("url", videoURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("streams", len(out.Streams)))
	return &out, nil
}

// Submit posts the download form and saves the returned file. It returns
// the path of the saved file.
func (c *Client) Submit(ctx context.Context, form model.DownloadForm) (string, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return "", err
	}

	values := url.Values{}
	values.Set("url", form.URL)
	values.Set("itag", form.Itag)
	values.Set("download_type", form.DownloadType)
	values.Set(model.CSRFFormField, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(workflow.DownloadAction), strings.NewReader(values.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(model.CSRFHeaderName, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr model.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataBytes)).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return "", &workflow.ServiceError{Message: apiErr.Error}
		}
		return "", fmt.Errorf("download endpoint returned status %d", resp.StatusCode)
	}

	filename := validator.SanitizeFilename(disposition.Filename(resp.Header.Get("Content-Disposition"), fallbackFilename))
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return "", err
	}
	f, path, err := createUnique(c.outputDir, filename)
	if err != nil {
		return "", err
	}

	if err := c.save(f, resp.Body, resp.ContentLength); err != nil {
		return "", err
	}

	logger.Logger.Info("Download saved", zap.String("path", path), zap.String("itag", form.Itag))
	return path, nil
}

func (c *Client) save(f *os.File, body io.Reader, total int64) error {
	w := &progressWriter{w: f, total: total, report: c.progress}
	_, copyErr := io.Copy(w, body)
	w.flush()
	closeErr := f.Close()

	if copyErr != nil || closeErr != nil {
		os.Remove(f.Name())
		if copyErr != nil {
			return fmt.Errorf("write %s: %w", f.Name(), copyErr)
		}
		return closeErr
	}
	return nil
}

// createUnique creates name in dir, adding " (n)" before the extension
// when a file of that name already exists.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for n := 0; n < maxNameAttempts; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("no free file name for %s in %s", name, dir)
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if token := c.Token(); token != "" {
		return token, nil
	}
	if err := c.Bootstrap(ctx); err != nil {
		return "", err
	}
	if token := c.Token(); token != "" {
		return token, nil
	}
	return "", errNoToken
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

type progressWriter struct {
	w        io.Writer
	total    int64
	written  int64
	reported int64
	report   ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.report != nil && p.written-p.reported >= progressStep {
		p.flush()
	}
	return n, err
}

func (p *progressWriter) flush() {
	if p.report == nil || p.written == p.reported {
		return
	}
	p.reported = p.written
	p.report(p.written, p.total)
}
