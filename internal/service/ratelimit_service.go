package service

import (
	"sync"
	"time"

	"ytpicker/internal/model"
	"ytpicker/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitService keeps one token bucket per client IP
type RateLimitService struct {
	cfg      *model.RateLimitConfig
	limits   map[string]*limiterEntry
	mu       sync.Mutex
	quitChan chan struct{}
	stopOnce sync.Once
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(cfg *model.RateLimitConfig) *RateLimitService {
	service := &RateLimitService{
		cfg:      cfg,
		limits:   make(map[string]*limiterEntry),
		quitChan: make(chan struct{}),
	}

	if cfg.Enabled {
		go service.cleanupRoutine()
	}

	return service
}

// IsAllowed reports whether ip may make another request now
func (rls *RateLimitService) IsAllowed(ip string) bool {
	if !rls.cfg.Enabled {
		return true
	}

	rls.mu.Lock()
	entry := rls.entry(ip)
	rls.mu.Unlock()

	if !entry.limiter.Allow() {
		logger.Logger.Warn("Rate limit exceeded", zap.String("ip", ip), zap.Int("limit_per_minute", rls.cfg.RequestsPerMinute))
		return false
	}
	return true
}

// GetRemaining returns the requests ip can still burst, or -1 when unlimited
func (rls *RateLimitService) GetRemaining(ip string) int {
	if !rls.cfg.Enabled {
		return -1
	}

	rls.mu.Lock()
	defer rls.mu.Unlock()

	entry, ok := rls.limits[ip]
	if !ok {
		return rls.burst()
	}
	tokens := int(entry.limiter.Tokens())
	if tokens < 0 {
		tokens = 0
	}
	return tokens
}

// Stop stops the cleanup routine
func (rls *RateLimitService) Stop() {
	rls.stopOnce.Do(func() { close(rls.quitChan) })
}

// entry must be called with rls.mu held
func (rls *RateLimitService) entry(ip string) *limiterEntry {
	e, ok := rls.limits[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rls.refill(), rls.burst())}
		rls.limits[ip] = e
		logger.Logger.Debug("New rate limit entry created", zap.String("ip", ip))
	}
	e.lastSeen = time.Now()
	return e
}

func (rls *RateLimitService) refill() rate.Limit {
	if rls.cfg.RequestsPerMinute <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(rls.cfg.RequestsPerMinute))
}

func (rls *RateLimitService) burst() int {
	if rls.cfg.BurstSize < 1 {
		return 1
	}
	return rls.cfg.BurstSize
}

func (rls *RateLimitService) cleanupRoutine() {
	interval := time.Duration(rls.cfg.CleanupInterval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rls.quitChan:
			logger.Logger.Info("Rate limit service stopped")
			return
		case <-ticker.C:
			rls.cleanup(interval)
		}
	}
}

// cleanup drops buckets idle for longer than maxIdle
func (rls *RateLimitService) cleanup(maxIdle time.Duration) {
	rls.mu.Lock()
	defer rls.mu.Unlock()

	now := time.Now()
	removed := 0
	for ip, e := range rls.limits {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(rls.limits, ip)
			removed++
		}
	}

	if removed > 0 {
		logger.Logger.Debug("Rate limit entries cleaned up", zap.Int("removed", removed), zap.Int("remaining", len(rls.limits)))
	}
}
