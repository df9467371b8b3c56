package handler

import (
	"context"
	"net/http"
	"strings"

	"ytpicker/internal/model"
	"ytpicker/pkg/logger"
	"ytpicker/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StreamsProvider looks up video metadata and its downloadable streams
type StreamsProvider interface {
	GetStreams(ctx context.Context, videoURL string) (*model.VideoInfo, []model.StreamDescriptor, error)
}

// StreamsHandler handles metadata requests
type StreamsHandler struct {
	provider StreamsProvider
}

// NewStreamsHandler creates a new streams handler
func NewStreamsHandler(p StreamsProvider) *StreamsHandler {
	return &StreamsHandler{provider: p}
}

// GetStreams handles POST /get_streams/
func (h *StreamsHandler) GetStreams(c *gin.Context) {
	var req model.StreamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Logger.Warn("Invalid streams request", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request body"})
		return
	}

	videoURL := strings.TrimSpace(req.URL)
	if videoURL == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Missing URL"})
		return
	}

	if !validator.IsVideoURL(videoURL) {
		logger.Logger.Warn("Invalid video URL", zap.String("url", videoURL))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid YouTube URL"})
		return
	}

	info, streams, err := h.provider.GetStreams(c.Request.Context(), videoURL)
	if err != nil {
		logger.Logger.Error("Failed to get streams", zap.Error(err), zap.String("url", videoURL))
		c.JSON(http.StatusBadGateway, model.ErrorResponse{Error: "Failed to fetch video information"})
		return
	}

	if len(streams) == 0 {
		logger.Logger.Info("No compatible streams", zap.String("url", videoURL))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "No compatible streams found for this video"})
		return
	}

	c.JSON(http.StatusOK, model.StreamsResponse{
		VideoInfo: info,
		Streams:   streams,
	})
}
