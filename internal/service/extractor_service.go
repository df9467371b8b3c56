package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"ytpicker/internal/model"
	"ytpicker/pkg/format"
	"ytpicker/pkg/logger"

	"go.uber.org/zap"
)

// downloadableExts are the container formats offered to the user
var downloadableExts = map[string]bool{
	"mp4":  true,
	"webm": true,
	"m4a":  true,
	"mp3":  true,
}

// ExtractorService fetches video metadata from the yt-dlp worker
type ExtractorService struct {
	workerURL  string
	httpClient *http.Client
}

// NewExtractorService creates a new extractor service
func NewExtractorService(host string, port int, timeout int) *ExtractorService {
	return &ExtractorService{
		workerURL: fmt.Sprintf("http://%s:%d", host, port),
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

// GetStreams fetches video information and the downloadable streams
func (s *ExtractorService) GetStreams(ctx context.Context, videoURL string) (*model.VideoInfo, []model.StreamDescriptor, error) {
	endpoint := s.workerURL + "/api/info"

	bodyBytes, err := json.Marshal(model.StreamsRequest{URL: videoURL})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		logger.Logger.Error("Failed to create request", zap.Error(err))
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Logger.Error("Failed to fetch video info", zap.Error(err), zap.String("url", videoURL))
		return nil, nil, fmt.Errorf("failed to fetch video info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Logger.Warn("Non-OK status from worker", zap.Int("status", resp.StatusCode))
		return nil, nil, fmt.Errorf("worker returned status %d", resp.StatusCode)
	}

	var metadata model.WorkerMetadata
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		logger.Logger.Error("Failed to decode response", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to decode worker response: %w", err)
	}

	info, streams := parseMetadata(metadata)
	logger.Logger.Info("Video info retrieved",
		zap.String("title", info.Title),
		zap.Int("formats", len(metadata.Formats)),
		zap.Int("streams", len(streams)))
	return info, streams, nil
}

// parseMetadata converts raw worker metadata to display info and streams
func parseMetadata(metadata model.WorkerMetadata) (*model.VideoInfo, []model.StreamDescriptor) {
	streams := []model.StreamDescriptor{}
	for _, f := range metadata.Formats {
		if stream, ok := parseFormat(f); ok {
			streams = append(streams, stream)
		}
	}

	info := &model.VideoInfo{
		Title:        metadata.Title,
		Author:       metadata.Uploader,
		ThumbnailURL: metadata.Thumbnail,
		Views:        metadata.ViewCount,
		Length:       int64(metadata.Duration),
	}
	return info, streams
}

// parseFormat keeps formats that have a direct URL and a downloadable extension
func parseFormat(f model.WorkerFormat) (model.StreamDescriptor, bool) {
	if f.URL == "" || !downloadableExts[f.Ext] {
		return model.StreamDescriptor{}, false
	}

	stream := model.StreamDescriptor{
		Itag:       model.Itag(f.FormatID),
		Resolution: resolutionOf(f),
		MimeType:   f.MimeType,
		Note:       f.FormatNote,
	}
	if f.Fps != nil {
		fps := int(math.Round(*f.Fps))
		stream.Fps = &fps
	}
	switch {
	case f.FileSize != nil:
		stream.FileSize = *f.FileSize
	case f.FileSizeApprox != nil:
		stream.FileSize = *f.FileSizeApprox
	}
	stream.FileSizeFormatted = format.Filesize(stream.FileSize)

	return stream, true
}

// resolutionOf falls back from the resolution string to the height, then "audio"
func resolutionOf(f model.WorkerFormat) string {
	if f.Resolution != "" {
		return f.Resolution
	}
	if f.Height != nil && *f.Height > 0 {
		return strconv.Itoa(*f.Height) + "p"
	}
	return "audio"
}
