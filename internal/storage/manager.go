package storage

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"ytpicker/internal/model"
	"ytpicker/pkg/logger"

	"go.uber.org/zap"
)

// Manager tracks files served to users and removes them once their TTL expires
type Manager struct {
	cfg      *model.StorageConfig
	files    map[string]*model.DownloadedFile
	mu       sync.RWMutex
	quitChan chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewManager creates a new storage manager
func NewManager(cfg *model.StorageConfig) *Manager {
	return &Manager{
		cfg:      cfg,
		files:    make(map[string]*model.DownloadedFile),
		quitChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Start starts the cleanup routine
func (m *Manager) Start() {
	go m.cleanupRoutine()
}

// Stop stops the cleanup routine
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.quitChan) })
}

// SaveFile saves file info for tracking
func (m *Manager) SaveFile(id string, file *model.DownloadedFile) {
	now := m.now()
	file.ID = id
	file.CreatedAt = now
	file.ExpiresAt = now.Add(time.Duration(m.cfg.FileTTLSeconds) * time.Second)

	m.mu.Lock()
	m.files[id] = file
	m.mu.Unlock()

	logger.Logger.Info("File saved",
		zap.String("id", id),
		zap.String("filename", file.Filename),
		zap.Time("expires_at", file.ExpiresAt))
}

// cleanupRoutine periodically removes expired files
func (m *Manager) cleanupRoutine() {
	interval := time.Duration(m.cfg.CleanupInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Logger.Info("Storage cleanup routine started",
		zap.Duration("cleanup_interval", interval),
		zap.Int("file_ttl_seconds", m.cfg.FileTTLSeconds))

	for {
		select {
		case <-m.quitChan:
			logger.Logger.Info("Storage cleanup routine stopped")
			return
		case <-ticker.C:
			m.cleanupExpiredFiles()
		}
	}
}

// cleanupExpiredFiles removes files that have expired
func (m *Manager) cleanupExpiredFiles() {
	m.removeFiles(false)
}

// RemoveAll deletes every tracked file whether or not it has expired.
// Call it after Stop when shutting down.
func (m *Manager) RemoveAll() {
	m.removeFiles(true)
}

func (m *Manager) removeFiles(all bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	deletedCount := 0
	errorCount := 0

	for id, file := range m.files {
		if !all && !now.After(file.ExpiresAt) {
			continue
		}
		if err := os.Remove(file.FilePath); err != nil && !os.IsNotExist(err) {
			logger.Logger.Error("Failed to remove file",
				zap.String("id", id),
				zap.String("path", file.FilePath),
				zap.Error(err))
			errorCount++
		} else {
			logger.Logger.Debug("File removed by cleanup",
				zap.String("id", id),
				zap.String("path", file.FilePath))
			deletedCount++
		}
		// stop tracking regardless of deletion success
		delete(m.files, id)
	}

	if deletedCount > 0 || errorCount > 0 {
		logger.Logger.Info("Storage cleanup completed",
			zap.Int("deleted_count", deletedCount),
			zap.Int("error_count", errorCount),
			zap.Int("remaining_tracked_files", len(m.files)))
	}
}

// GetFile gets file info by ID
func (m *Manager) GetFile(id string) *model.DownloadedFile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files[id]
}

// MaxFileSize returns the size limit in bytes
func (m *Manager) MaxFileSize() int64 {
	return int64(m.cfg.MaxVideoSizeMB) * 1024 * 1024
}

// EnsureDownloadDir ensures download directory exists
func (m *Manager) EnsureDownloadDir() error {
	return os.MkdirAll(m.cfg.DownloadDir, 0755)
}

// GetDownloadPath returns the path where file should be stored
func (m *Manager) GetDownloadPath(filename string) string {
	return filepath.Join(m.cfg.DownloadDir, filename)
}

// GetTrackedFilesCount returns the number of files currently being tracked
func (m *Manager) GetTrackedFilesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
