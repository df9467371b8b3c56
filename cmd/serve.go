package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ytpicker/config"
	"ytpicker/internal/handler"
	"ytpicker/internal/model"
	"ytpicker/internal/service"
	"ytpicker/internal/storage"
	"ytpicker/pkg/logger"
	"ytpicker/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the picker server",
	Long:  "Serve the picker page, /get_streams/ and /download/, delegating extraction to the yt-dlp worker.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cmd.Flags().Changed("host") {
			cfg.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		return runServer(cfg)
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (overrides SERVER_HOST)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}

// routerDeps are the services the HTTP routes depend on
type routerDeps struct {
	streams handler.StreamsProvider
	files   handler.FileProvider
	limiter middleware.RateLimiter
}

func newRouter(cfg *model.Config, deps routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger())

	if cfg.RateLimit.Enabled && deps.limiter != nil {
		router.Use(middleware.RateLimitMiddleware(deps.limiter))
		logger.Logger.Info("Rate limiting enabled",
			zap.Int("requests_per_minute", cfg.RateLimit.RequestsPerMinute),
			zap.Int("burst_size", cfg.RateLimit.BurstSize))
	}

	handler.RegisterTemplates(router)

	pageHandler := handler.NewPageHandler(cfg)
	streamsHandler := handler.NewStreamsHandler(deps.streams)
	downloadHandler := handler.NewDownloadHandler(deps.files, cfg)

	router.GET("/health", pageHandler.HealthCheck)

	site := router.Group("/", middleware.CSRF())
	{
		site.GET("/", pageHandler.Index)
		site.POST("/get_streams/", streamsHandler.GetStreams)
		site.POST("/download/", downloadHandler.Download)
	}

	return router
}

func runServer(cfg *model.Config) error {
	if err := logger.Init(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return err
	}
	defer logger.Sync()

	logger.Logger.Info("Starting picker server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("worker", fmt.Sprintf("%s:%d", cfg.Worker.Host, cfg.Worker.Port)))

	storageManager := storage.NewManager(&cfg.Storage)
	if err := storageManager.EnsureDownloadDir(); err != nil {
		logger.Logger.Error("Failed to create download directory", zap.Error(err))
		return err
	}
	storageManager.Start()
	defer func() {
		storageManager.Stop()
		storageManager.RemoveAll()
		logger.Logger.Info("Storage stopped", zap.Int("tracked_files", storageManager.GetTrackedFilesCount()))
	}()

	extractorService := service.NewExtractorService(cfg.Worker.Host, cfg.Worker.Port, cfg.Worker.Timeout)
	downloadService := service.NewDownloadService(cfg.Worker.Host, cfg.Worker.Port, cfg.Worker.Timeout, storageManager)

	rateLimitService := service.NewRateLimitService(&cfg.RateLimit)
	defer rateLimitService.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(cfg, routerDeps{
		streams: extractorService,
		files:   downloadService,
		limiter: rateLimitService,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.Timeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.Timeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Logger.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		logger.Logger.Error("Server error", zap.Error(err))
		return err
	case <-sigChan:
	}

	logger.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Logger.Info("Server stopped")
	return nil
}
