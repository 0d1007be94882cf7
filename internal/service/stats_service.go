package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/origenhr/advance-api/internal/models"
	"github.com/origenhr/advance-api/pkg/config"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
)

const statsCacheKey = "stats:advances"

type statsRepository interface {
	MonthlyStats(ctx context.Context, since time.Time) ([]models.MonthlyAdvanceStat, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// StatsService serves the dashboard's monthly advance aggregates through a
// short-lived Redis cache. Cache failures degrade to the database, never to
// an error.
type StatsService struct {
	repo   statsRepository
	cache  statsCache
	logger *zap.Logger
	config config.StatsConfig
}

// NewStatsService constructs a StatsService.
func NewStatsService(repo statsRepository, cache statsCache, logger *zap.Logger, cfg config.StatsConfig) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Months <= 0 {
		cfg.Months = 12
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &StatsService{repo: repo, cache: cache, logger: logger, config: cfg}
}

// Advances returns the cached monthly aggregates, recomputing on a miss.
func (s *StatsService) Advances(ctx context.Context) (*models.AdvanceStats, error) {
	if s.config.Enabled && s.cache != nil {
		var cached models.AdvanceStats
		err := s.cache.Get(ctx, statsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	since := time.Now().UTC().AddDate(0, -s.config.Months, 0)
	months, err := s.repo.MonthlyStats(ctx, since)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute advance stats")
	}

	stats := &models.AdvanceStats{Months: months, GeneratedAt: time.Now().UTC()}

	if s.config.Enabled && s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.config.CacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}

	return stats, nil
}

// Invalidate drops the cached aggregates, called after decisions so the
// dashboard reflects them promptly.
func (s *StatsService) Invalidate(ctx context.Context) {
	if !s.config.Enabled || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
