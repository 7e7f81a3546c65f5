package settings

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	thresholdCacheKey = "settings:approval_threshold"
	thresholdCacheTTL = 60 * time.Second
)

type Service struct {
	repo   *Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewService builds the settings service. rdb may be nil (tests run
// without a cache).
func NewService(repo *Repository, rdb *redis.Client, logger *zap.Logger) *Service {
	return &Service{repo: repo, rdb: rdb, logger: logger}
}

// Get returns the raw value for a key.
func (s *Service) Get(ctx context.Context, key string) (*SystemSetting, error) {
	return s.repo.Get(ctx, key)
}

// Set writes a key and drops any cached copy.
func (s *Service) Set(ctx context.Context, key, value, description string) error {
	if err := s.repo.Upsert(ctx, key, value, description); err != nil {
		return err
	}
	if s.rdb != nil && key == KeyApprovalThreshold {
		if err := s.rdb.Del(ctx, thresholdCacheKey).Err(); err != nil {
			s.logger.Warn("Failed to invalidate threshold cache", zap.Error(err))
		}
	}
	return nil
}

// ApprovalThreshold returns the quote approval threshold. The value is
// cached in redis for a short window; absence or a malformed value
// falls back to the default.
func (s *Service) ApprovalThreshold(ctx context.Context) decimal.Decimal {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, thresholdCacheKey).Result(); err == nil {
			if d, derr := decimal.NewFromString(cached); derr == nil {
				return d
			}
		}
	}

	raw := DefaultApprovalThreshold
	setting, err := s.repo.Get(ctx, KeyApprovalThreshold)
	if err == nil {
		raw = setting.Value
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.Warn("Failed to load approval threshold, using default", zap.Error(err))
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		s.logger.Warn("Malformed approval threshold value, using default",
			zap.String("value", raw))
		d, _ = decimal.NewFromString(DefaultApprovalThreshold)
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, thresholdCacheKey, d.String(), thresholdCacheTTL).Err(); err != nil {
			s.logger.Warn("Failed to cache approval threshold", zap.Error(err))
		}
	}

	return d
}
