package reorder

// Status classifies the reorder urgency of a product.
type Status string

const (
	StatusGreen  Status = "Green"
	StatusYellow Status = "Yellow"
	StatusRed    Status = "Red"
)

// Tunable policy parameters for the reorder computation.
const (
	// SafetyFactor is applied to weekly-sale estimates when deriving the
	// default minimum stock and the reorder-quantity floor.
	SafetyFactor = 1.5
	// WeeksToCover is how many weeks of consumption the default minimum
	// stock should cover.
	WeeksToCover = 2
	// MaxBuffer is the upper clamp on the dynamic safety buffer.
	MaxBuffer = 50
)

// SnapshotRow is one product count within a stock snapshot. ProductKey is
// the join key between snapshots; which identifier it carries (SKU or
// product name) is decided by the snapshot loader.
type SnapshotRow struct {
	ProductKey string
	Stock      int
	Category   string
}

// ReportRow is the per-product output of the reorder computation.
type ReportRow struct {
	ProductKey      string  `json:"product_key"`
	Category        string  `json:"category,omitempty"`
	Stock           int     `json:"stock"`
	LastStock       int     `json:"last_stock"`
	WeeklySale      int     `json:"weekly_sale"`
	DecreaseRatePct float64 `json:"decrease_rate_pct"`
	WeeksToEmpty    float64 `json:"weeks_to_empty"`
	MinStock        int     `json:"min_stock"`
	Buffer          int     `json:"buffer"`
	ReorderQty      int     `json:"reorder_qty"`
	Status          Status  `json:"status"`
	Description     string  `json:"description"`
}

// Overrides supplies externally managed per-product policy values. A present
// value always wins over the formula-derived default, even when it is zero.
type Overrides interface {
	MinStock(productKey string) (int, bool)
	Buffer(productKey string) (int, bool)
}

// MapOverrides is an in-memory Overrides backed by plain maps.
type MapOverrides struct {
	MinStocks map[string]int
	Buffers   map[string]int
}

func (m MapOverrides) MinStock(productKey string) (int, bool) {
	v, ok := m.MinStocks[productKey]
	return v, ok
}

func (m MapOverrides) Buffer(productKey string) (int, bool) {
	v, ok := m.Buffers[productKey]
	return v, ok
}
