package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/hackathon-mentor-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Cache scopes accepted by Flush.
const (
	CacheScopeClassifications = "classifications"
	CacheScopeRunSummaries    = "runs"
	CacheScopeAll             = "all"
)

const (
	classificationCachePattern = "classification:*"
	runSummaryCachePattern     = "assignment_run:latest:*"
)

// CachePatterns maps a flush scope to the key patterns it clears.
func CachePatterns(scope string) ([]string, error) {
	switch scope {
	case CacheScopeClassifications:
		return []string{classificationCachePattern}, nil
	case CacheScopeRunSummaries:
		return []string{runSummaryCachePattern}, nil
	case CacheScopeAll:
		return []string{classificationCachePattern, runSummaryCachePattern}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown cache scope %q", scope))
	}
}

// Cache key helpers.
func runSummaryCacheKey(hackathonID string) string {
	return fmt.Sprintf("assignment_run:latest:%s", hackathonID)
}

func classificationCacheKey(digest string) string {
	return fmt.Sprintf("classification:%s", digest)
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation(true, duration)
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// Flush clears every cached entry in scope and returns the patterns removed.
func (s *CacheService) Flush(ctx context.Context, scope string) ([]string, error) {
	patterns, err := CachePatterns(scope)
	if err != nil {
		return nil, err
	}
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "cache is disabled")
	}
	for _, pattern := range patterns {
		if err := s.Invalidate(ctx, pattern); err != nil {
			return nil, err
		}
	}
	s.logger.Info("cache flushed", zap.String("scope", scope), zap.Strings("patterns", patterns))
	return patterns, nil
}
