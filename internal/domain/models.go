// internal/domain/models.go
package domain

import "time"

// StockLevel is the current on-hand position for one product, classified
// against its minimum-stock threshold.
type StockLevel struct {
	ProductSKU  string    `json:"product_sku" db:"product_sku"`
	ProductName string    `json:"product_name" db:"product_name"`
	Stock       int       `json:"stock" db:"stock_level"`
	Category    string    `json:"category,omitempty" db:"category"`
	Status      string    `json:"status" db:"status"`
	WeekDate    time.Time `json:"week_date" db:"week_date"`
}

// Stock level classification labels.
const (
	StockStatusIn  = "In Stock"
	StockStatusLow = "Low Stock"
	StockStatusOut = "Out of Stock"
)

// DashboardStats aggregates the headline counters for the dashboard view,
// computed over the latest snapshot.
type DashboardStats struct {
	TotalStockItems int `json:"total_stock_items" db:"total_stock_items"`
	LowStockAlerts  int `json:"low_stock_alerts" db:"low_stock_alerts"`
	OutOfStock      int `json:"out_of_stock" db:"out_of_stock"`
}

// StockRecord is one stock_data row as ingested from an uploaded snapshot
// file, before any report computation.
type StockRecord struct {
	ProductSKU  string `json:"product_sku" db:"product_sku"`
	ProductName string `json:"product_name" db:"product_name"`
	Category    string `json:"category,omitempty" db:"category"`
	Stock       int    `json:"stock" db:"stock_level"`
}

// Override is an externally supplied replacement for a formula-derived
// default, keyed by product. Nil fields mean "no override".
type Override struct {
	ProductKey string    `json:"product_key" db:"product_key"`
	MinStock   *int      `json:"min_stock,omitempty" db:"min_stock"`
	Buffer     *int      `json:"buffer,omitempty" db:"buffer"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// NotificationDetail is the per-product drill-down view of a report row,
// formatted for display.
type NotificationDetail struct {
	CurrentStock        int    `json:"current_stock"`
	DecreaseRatePerWeek string `json:"decrease_rate_per_week"`
	TimeToRunOut        string `json:"time_to_run_out"`
	MinStock            int    `json:"min_stock"`
	Buffer              int    `json:"buffer"`
	RecommendedRestock  int    `json:"recommended_restock"`
}

// UploadedSnapshot summarises an ingested snapshot file.
type UploadedSnapshot struct {
	Filename string    `json:"filename"`
	WeekDate time.Time `json:"week_date"`
	Rows     int       `json:"rows"`
}
