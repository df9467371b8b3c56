package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"ytpicker/internal/model"
	"ytpicker/internal/service"
	"ytpicker/pkg/disposition"
	"ytpicker/pkg/logger"
	"ytpicker/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileProvider fetches the selected stream to a local file
type FileProvider interface {
	Download(ctx context.Context, form model.DownloadForm) (*model.DownloadedFile, error)
}

// DownloadHandler handles download submissions
type DownloadHandler struct {
	provider FileProvider
	cfg      *model.Config
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(p FileProvider, cfg *model.Config) *DownloadHandler {
	return &DownloadHandler{
		provider: p,
		cfg:      cfg,
	}
}

// Download handles POST /download/
func (h *DownloadHandler) Download(c *gin.Context) {
	var form model.DownloadForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Logger.Warn("Invalid download form", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request body"})
		return
	}

	form.URL = strings.TrimSpace(form.URL)
	form.Itag = strings.TrimSpace(form.Itag)
	if form.DownloadType == "" {
		form.DownloadType = model.DownloadTypeMP4
	}

	if form.URL == "" || form.Itag == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Missing required parameters"})
		return
	}

	if !validator.IsVideoURL(form.URL) {
		logger.Logger.Warn("Invalid video URL", zap.String("url", form.URL))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid YouTube URL"})
		return
	}

	if !validator.ValidateItag(form.Itag) {
		logger.Logger.Warn("Invalid itag", zap.String("itag", form.Itag))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid quality selection"})
		return
	}

	if !validator.ValidateDownloadType(form.DownloadType) {
		logger.Logger.Warn("Invalid download type", zap.String("download_type", form.DownloadType))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid download type"})
		return
	}

	file, err := h.provider.Download(c.Request.Context(), form)
	if err != nil {
		if errors.Is(err, service.ErrFileTooLarge) {
			logger.Logger.Warn("File size exceeds limit", zap.String("url", form.URL), zap.String("ip", c.ClientIP()))
			c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
				Error: fmt.Sprintf("File size exceeds maximum limit of %dMB.", h.cfg.Storage.MaxVideoSizeMB),
			})
			return
		}
		logger.Logger.Error("Download failed", zap.Error(err), zap.String("url", form.URL))
		c.JSON(http.StatusBadGateway, model.ErrorResponse{Error: "Download failed. Please try again."})
		return
	}

	if _, err := os.Stat(file.FilePath); err != nil {
		logger.Logger.Error("Downloaded file missing", zap.String("path", file.FilePath), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Download failed. Please try again."})
		return
	}

	c.Header("Content-Disposition", disposition.Attachment(file.Filename))
	c.Header("Content-Type", "application/octet-stream")
	c.File(file.FilePath)

	logger.Logger.Info("File served",
		zap.String("file_id", file.ID),
		zap.String("filename", file.Filename),
		zap.String("download_type", form.DownloadType))
}
