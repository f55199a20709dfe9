// internal/repository/postgres/override_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lontuktak/backend-go/internal/reorder"
	"github.com/lontuktak/backend-go/internal/repository"
)

type overrideRepository struct {
	db *DB
}

func NewOverrideRepository(db *DB) repository.OverrideRepository {
	return &overrideRepository{db: db}
}

func (r *overrideRepository) GetAll(ctx context.Context) (reorder.MapOverrides, error) {
	query := `
		SELECT product_key, min_stock, buffer
		FROM manual_overrides
	`

	var records []struct {
		ProductKey string        `db:"product_key"`
		MinStock   sql.NullInt64 `db:"min_stock"`
		Buffer     sql.NullInt64 `db:"buffer"`
	}
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return reorder.MapOverrides{}, fmt.Errorf("error getting manual overrides: %w", err)
	}

	overrides := reorder.MapOverrides{
		MinStocks: make(map[string]int),
		Buffers:   make(map[string]int),
	}
	for _, rec := range records {
		if rec.MinStock.Valid {
			overrides.MinStocks[rec.ProductKey] = int(rec.MinStock.Int64)
		}
		if rec.Buffer.Valid {
			overrides.Buffers[rec.ProductKey] = int(rec.Buffer.Int64)
		}
	}

	return overrides, nil
}

func (r *overrideRepository) Upsert(ctx context.Context, productKey string, minStock, buffer *int) error {
	if productKey == "" {
		return fmt.Errorf("product key is required")
	}

	query := `
		INSERT INTO manual_overrides (product_key, min_stock, buffer, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (product_key) DO UPDATE SET
			min_stock  = COALESCE(EXCLUDED.min_stock, manual_overrides.min_stock),
			buffer     = COALESCE(EXCLUDED.buffer, manual_overrides.buffer),
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, productKey, nullableInt(minStock), nullableInt(buffer)); err != nil {
		return fmt.Errorf("error upserting override for %s: %w", productKey, err)
	}

	return nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
