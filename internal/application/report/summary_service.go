// Package report serves the dashboard analytics.
package report

import (
	"context"
	"time"

	"github.com/medrent/backend/internal/domain/report"
	"go.uber.org/zap"
)

// DefaultSummaryTTL is how long a computed summary is served from cache
const DefaultSummaryTTL = 5 * time.Minute

// SummaryService computes the dashboard summary through a read-through cache
type SummaryService struct {
	repo   report.SummaryRepository
	cache  report.SummaryCache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewSummaryService creates a new SummaryService. A nil cache disables caching.
func NewSummaryService(repo report.SummaryRepository, cache report.SummaryCache, ttl time.Duration, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &SummaryService{repo: repo, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Summary returns this month's summary. refresh skips the cached copy.
// Cache failures are logged and the summary is computed from the database.
func (s *SummaryService) Summary(ctx context.Context, refresh bool) (*report.AnalyticsSummary, error) {
	now := s.now()
	key := now.Format("2006-01")

	if s.cache != nil && !refresh {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("summary cache read failed", zap.String("key", key), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	summary, err := s.repo.Summary(ctx, report.MonthStart(now), now)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
			s.logger.Warn("summary cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return summary, nil
}
