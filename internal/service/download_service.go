package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"ytpicker/internal/model"
	"ytpicker/internal/storage"
	"ytpicker/pkg/disposition"
	"ytpicker/pkg/logger"
	"ytpicker/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrFileTooLarge is returned when the worker sends more than the configured limit
var ErrFileTooLarge = errors.New("file size exceeds maximum limit")

const fallbackFilename = "video_download.mp4"

// DownloadService fetches files from the yt-dlp worker and keeps them on
// disk until the storage manager expires them
type DownloadService struct {
	workerURL      string
	httpClient     *http.Client
	storageManager *storage.Manager
}

// NewDownloadService creates a new download service
func NewDownloadService(host string, port int, timeout int, sm *storage.Manager) *DownloadService {
	return &DownloadService{
		workerURL: fmt.Sprintf("http://%s:%d", host, port),
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		storageManager: sm,
	}
}

// Download asks the worker for the selected stream and stores the result
func (s *DownloadService) Download(ctx context.Context, form model.DownloadForm) (*model.DownloadedFile, error) {
	endpoint := s.workerURL + "/api/download"

	bodyBytes, err := json.Marshal(form)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		logger.Logger.Error("Failed to create download request", zap.Error(err))
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Logger.Error("Download failed", zap.Error(err), zap.String("url", form.URL))
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Logger.Warn("Failed download response", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	maxSize := s.storageManager.MaxFileSize()
	if resp.ContentLength > maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, resp.ContentLength)
	}

	if err := s.storageManager.EnsureDownloadDir(); err != nil {
		logger.Logger.Error("Failed to create download directory", zap.Error(err))
		return nil, err
	}

	filename := validator.SanitizeFilename(disposition.Filename(resp.Header.Get("Content-Disposition"), fallbackFilename))
	id := uuid.NewString()
	path := s.storageManager.GetDownloadPath(id + "_" + filename)

	size, err := writeLimited(path, resp.Body, maxSize)
	if err != nil {
		logger.Logger.Error("Failed to store file", zap.Error(err), zap.String("path", path))
		return nil, err
	}

	file := &model.DownloadedFile{
		ID:       id,
		Filename: filename,
		FilePath: path,
		Size:     size,
		URL:      form.URL,
	}
	s.storageManager.SaveFile(id, file)

	logger.Logger.Info("File downloaded",
		zap.String("id", id),
		zap.String("filename", filename),
		zap.Int64("size", size))
	return file, nil
}

// writeLimited copies at most limit bytes of r to path, removing the file
// when the limit is exceeded or the copy fails
func writeLimited(path string, r io.Reader, limit int64) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	n, copyErr := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("failed to read worker response: %w", copyErr)
	case n > limit:
		err = fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, limit)
	case closeErr != nil:
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}
