// internal/repository/postgres/snapshot_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lontuktak/backend-go/internal/domain"
	"github.com/lontuktak/backend-go/internal/reorder"
	"github.com/lontuktak/backend-go/internal/repository"
)

type snapshotRepository struct {
	db                *DB
	lowStockThreshold int
}

func NewSnapshotRepository(db *DB, lowStockThreshold int) repository.SnapshotRepository {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &snapshotRepository{db: db, lowStockThreshold: lowStockThreshold}
}

func (r *snapshotRepository) LatestWeekDates(ctx context.Context, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = 2
	}

	query := `
		SELECT DISTINCT week_date
		FROM stock_data
		ORDER BY week_date DESC
		LIMIT $1
	`

	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query, limit); err != nil {
		return nil, fmt.Errorf("error getting snapshot dates: %w", err)
	}

	return dates, nil
}

func (r *snapshotRepository) SnapshotAt(ctx context.Context, weekDate time.Time) ([]reorder.SnapshotRow, error) {
	// Latest uploaded record wins when a product was counted twice for the
	// same week.
	query := `
		SELECT DISTINCT ON (product_sku)
			product_sku, stock_level, COALESCE(category, '') AS category
		FROM stock_data
		WHERE week_date = $1
		ORDER BY product_sku, uploaded_at DESC
	`

	var records []struct {
		ProductSKU string `db:"product_sku"`
		StockLevel int    `db:"stock_level"`
		Category   string `db:"category"`
	}
	if err := r.db.SelectContext(ctx, &records, query, weekDate); err != nil {
		return nil, fmt.Errorf("error getting snapshot for %s: %w", weekDate.Format("2006-01-02"), err)
	}

	rows := make([]reorder.SnapshotRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, reorder.SnapshotRow{
			ProductKey: rec.ProductSKU,
			Stock:      rec.StockLevel,
			Category:   rec.Category,
		})
	}

	return rows, nil
}

func (r *snapshotRepository) InsertSnapshot(ctx context.Context, weekDate time.Time, records []domain.StockRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("snapshot for %s has no rows", weekDate.Format("2006-01-02"))
	}

	query := `
		INSERT INTO stock_data (week_date, product_sku, product_name, category, stock_level)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, rec := range records {
			if _, err := tx.ExecContext(ctx, query,
				weekDate, rec.ProductSKU, rec.ProductName, rec.Category, rec.Stock); err != nil {
				return fmt.Errorf("error inserting snapshot row for %s: %w", rec.ProductSKU, err)
			}
		}
		return nil
	})
}

func (r *snapshotRepository) StockLevels(ctx context.Context) ([]domain.StockLevel, error) {
	// Manual min-stock overrides take precedence over the configured
	// threshold when classifying a product as low.
	query := `
		SELECT DISTINCT ON (s.product_sku)
			s.product_sku,
			s.product_name,
			s.stock_level,
			COALESCE(s.category, '') AS category,
			s.week_date,
			CASE
				WHEN s.stock_level = 0 THEN 'Out of Stock'
				WHEN s.stock_level < COALESCE(o.min_stock, $1) THEN 'Low Stock'
				ELSE 'In Stock'
			END AS status
		FROM stock_data s
		LEFT JOIN manual_overrides o ON o.product_key = s.product_sku
		ORDER BY s.product_sku, s.week_date DESC, s.uploaded_at DESC
	`

	var levels []domain.StockLevel
	if err := r.db.SelectContext(ctx, &levels, query, r.lowStockThreshold); err != nil {
		return nil, fmt.Errorf("error getting stock levels: %w", err)
	}

	return levels, nil
}

func (r *snapshotRepository) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	query := `
		WITH latest AS (
			SELECT DISTINCT ON (s.product_sku)
				s.product_sku,
				s.stock_level,
				COALESCE(o.min_stock, $1) AS min_stock
			FROM stock_data s
			LEFT JOIN manual_overrides o ON o.product_key = s.product_sku
			WHERE s.week_date = (SELECT MAX(week_date) FROM stock_data)
			ORDER BY s.product_sku, s.uploaded_at DESC
		)
		SELECT
			COUNT(*) AS total_stock_items,
			COUNT(*) FILTER (WHERE stock_level > 0 AND stock_level < min_stock) AS low_stock_alerts,
			COUNT(*) FILTER (WHERE stock_level = 0) AS out_of_stock
		FROM latest
	`

	var stats domain.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query, r.lowStockThreshold); err != nil {
		return nil, fmt.Errorf("error getting dashboard stats: %w", err)
	}

	return &stats, nil
}
