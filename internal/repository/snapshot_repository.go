// internal/repository/snapshot_repository.go
package repository

import (
	"context"
	"time"

	"github.com/lontuktak/backend-go/internal/domain"
	"github.com/lontuktak/backend-go/internal/reorder"
)

// SnapshotRepository loads and stores weekly stock snapshots. It owns the
// "latest record per product per week" resolution so the engine only ever
// sees deduplicated rows.
type SnapshotRepository interface {
	// LatestWeekDates returns the most recent distinct snapshot dates,
	// newest first.
	LatestWeekDates(ctx context.Context, limit int) ([]time.Time, error)
	// SnapshotAt returns the snapshot for one week date, keeping only the
	// latest uploaded record per product.
	SnapshotAt(ctx context.Context, weekDate time.Time) ([]reorder.SnapshotRow, error)
	// InsertSnapshot stores a freshly ingested snapshot under weekDate.
	InsertSnapshot(ctx context.Context, weekDate time.Time, records []domain.StockRecord) error
	// StockLevels returns the latest on-hand position per product.
	StockLevels(ctx context.Context) ([]domain.StockLevel, error)
	// DashboardStats aggregates counters over the latest snapshot.
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}

// OverrideRepository manages the externally owned manual overrides consulted
// at compute time. Overrides are read as a whole set per report run.
type OverrideRepository interface {
	GetAll(ctx context.Context) (reorder.MapOverrides, error)
	// Upsert sets the given override fields for a product; nil fields keep
	// their stored value.
	Upsert(ctx context.Context, productKey string, minStock, buffer *int) error
}
