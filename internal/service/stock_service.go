// internal/service/stock_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lontuktak/backend-go/internal/cache"
	"github.com/lontuktak/backend-go/internal/domain"
	"github.com/lontuktak/backend-go/internal/ingest"
	"github.com/lontuktak/backend-go/internal/repository"
	"github.com/lontuktak/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// StockService handles stock level queries, dashboard stats and snapshot
// uploads.
type StockService struct {
	snapshots repository.SnapshotRepository
	archive   storage.ObjectStorage
	cache     cache.ReportCache
}

// NewStockService wires the stock service. archive may be nil when upload
// archiving is disabled.
func NewStockService(snapshots repository.SnapshotRepository, archive storage.ObjectStorage, cacheImpl cache.ReportCache) *StockService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &StockService{snapshots: snapshots, archive: archive, cache: cacheImpl}
}

func (s *StockService) Levels(ctx context.Context) ([]domain.StockLevel, error) {
	levels, err := s.snapshots.StockLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock levels: %w", err)
	}
	return levels, nil
}

func (s *StockService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := s.snapshots.DashboardStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return stats, nil
}

// UploadSnapshot parses an uploaded stock file, stores the rows as the
// snapshot for weekDate and invalidates cached reports. The raw file is
// archived when object storage is configured; archive failures are logged
// but do not fail the upload.
func (s *StockService) UploadSnapshot(ctx context.Context, filename string, data []byte, weekDate time.Time) (*domain.UploadedSnapshot, error) {
	records, err := ingest.ParseSnapshot(filename, data)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no stock rows found in %s", filename)
	}

	if err := s.snapshots.InsertSnapshot(ctx, weekDate, records); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	if s.archive != nil {
		key := fmt.Sprintf("uploads/%s/%s", weekDate.Format("2006-01-02"), filename)
		if err := s.archive.UploadObject(ctx, key, data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("stock upload: archive failed")
		}
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("stock upload: cache invalidation failed")
	}

	return &domain.UploadedSnapshot{
		Filename: filename,
		WeekDate: weekDate,
		Rows:     len(records),
	}, nil
}
