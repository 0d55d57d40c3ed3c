package payroll

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisProgressCache stages terminal progress reports in Redis so repeated
// polling of a finished period stays off the database.
type redisProgressCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewProgressCache builds a Redis-backed ProgressCache.
func NewProgressCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) ProgressCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProgressCache{client: client, ttl: ttl, logger: logger}
}

func progressKey(periodID int64) string {
	return fmt.Sprintf("payroll:progress:%d", periodID)
}

func (c *redisProgressCache) Get(ctx context.Context, periodID int64) (ProgressReport, bool) {
	raw, err := c.client.Get(ctx, progressKey(periodID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("progress cache get", slog.Any("error", err))
		}
		return ProgressReport{}, false
	}
	var report ProgressReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return ProgressReport{}, false
	}
	return report, true
}

func (c *redisProgressCache) Set(ctx context.Context, report ProgressReport) {
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, progressKey(report.PeriodID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("progress cache set", slog.Any("error", err))
	}
}

func (c *redisProgressCache) Invalidate(ctx context.Context, periodID int64) error {
	return c.client.Del(ctx, progressKey(periodID)).Err()
}
