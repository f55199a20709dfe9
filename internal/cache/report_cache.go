package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lontuktak/backend-go/internal/config"
	"github.com/lontuktak/backend-go/internal/reorder"
	"github.com/redis/go-redis/v9"
)

const (
	reportKeyPrefix     = "stock_report"
	reportScanBatchSize = 100
)

// ReportCache caches a computed reorder report for one (previous, current)
// snapshot date pair. Entries are invalidated whenever an override changes
// or a new snapshot arrives, since either alters the next report.
type ReportCache interface {
	GetReport(ctx context.Context, prevDate, currDate time.Time) ([]reorder.ReportRow, bool, error)
	SetReport(ctx context.Context, prevDate, currDate time.Time, report []reorder.ReportRow) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetReport(ctx context.Context, prevDate, currDate time.Time) ([]reorder.ReportRow, bool, error) {
	key := buildReportKey(prevDate, currDate)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report []reorder.ReportRow
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode stock report cache: %w", err)
	}

	return report, true, nil
}

func (c *redisReportCache) SetReport(ctx context.Context, prevDate, currDate time.Time, report []reorder.ReportRow) error {
	key := buildReportKey(prevDate, currDate)
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode stock report cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix, reportScanBatchSize)
}

func (n *noopReportCache) GetReport(ctx context.Context, prevDate, currDate time.Time) ([]reorder.ReportRow, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetReport(ctx context.Context, prevDate, currDate time.Time, report []reorder.ReportRow) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildReportKey(prevDate, currDate time.Time) string {
	return fmt.Sprintf("%s:%s:%s", reportKeyPrefix,
		prevDate.UTC().Format("2006-01-02"), currDate.UTC().Format("2006-01-02"))
}
