// internal/service/report_service.go
package service

import (
	"context"
	"fmt"

	"github.com/lontuktak/backend-go/internal/cache"
	"github.com/lontuktak/backend-go/internal/domain"
	"github.com/lontuktak/backend-go/internal/reorder"
	"github.com/lontuktak/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// ReportService produces the reorder report from the two most recent stock
// snapshots. Overrides are reloaded per request, so concurrent report runs
// never share mutable state.
type ReportService struct {
	snapshots repository.SnapshotRepository
	overrides repository.OverrideRepository
	cache     cache.ReportCache
}

func NewReportService(snapshots repository.SnapshotRepository, overrides repository.OverrideRepository, cacheImpl cache.ReportCache) *ReportService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &ReportService{snapshots: snapshots, overrides: overrides, cache: cacheImpl}
}

// Notifications computes the current reorder report. It returns
// reorder.ErrInsufficientData when fewer than two snapshot dates exist.
func (s *ReportService) Notifications(ctx context.Context) ([]reorder.ReportRow, error) {
	dates, err := s.snapshots.LatestWeekDates(ctx, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot dates: %w", err)
	}
	if len(dates) < 2 {
		return nil, reorder.ErrInsufficientData
	}
	currDate, prevDate := dates[0], dates[1]

	if report, ok, cacheErr := s.cache.GetReport(ctx, prevDate, currDate); cacheErr == nil && ok {
		return report, nil
	} else if cacheErr != nil {
		log.Warn().Err(cacheErr).Msg("stock report: cache get failed")
	}

	prev, err := s.snapshots.SnapshotAt(ctx, prevDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous snapshot: %w", err)
	}
	curr, err := s.snapshots.SnapshotAt(ctx, currDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load current snapshot: %w", err)
	}

	overrides, err := s.overrides.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load manual overrides: %w", err)
	}

	report, err := reorder.Compute(prev, curr, overrides)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetReport(ctx, prevDate, currDate, report); err != nil {
		log.Warn().Err(err).Msg("stock report: cache set failed")
	}

	return report, nil
}

// NotificationDetail returns the drill-down view for one product in the
// current report.
func (s *ReportService) NotificationDetail(ctx context.Context, productKey string) (*domain.NotificationDetail, error) {
	report, err := s.Notifications(ctx)
	if err != nil {
		return nil, err
	}

	for _, row := range report {
		if row.ProductKey != productKey {
			continue
		}
		return &domain.NotificationDetail{
			CurrentStock:        row.Stock,
			DecreaseRatePerWeek: fmt.Sprintf("%.1f%%/week", row.DecreaseRatePct),
			TimeToRunOut:        fmt.Sprintf("%.2f weeks", row.WeeksToEmpty),
			MinStock:            row.MinStock,
			Buffer:              row.Buffer,
			RecommendedRestock:  row.ReorderQty,
		}, nil
	}

	return nil, domain.ErrProductNotFound
}

// SetOverride stores manual min-stock and/or buffer values for a product and
// drops any cached report. Overrides only influence future computations.
func (s *ReportService) SetOverride(ctx context.Context, productKey string, minStock, buffer *int) error {
	if minStock == nil && buffer == nil {
		return fmt.Errorf("at least one of min_stock or buffer is required")
	}

	if err := s.overrides.Upsert(ctx, productKey, minStock, buffer); err != nil {
		return err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("stock report: cache invalidation failed")
	}

	return nil
}
