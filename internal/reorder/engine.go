package reorder

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when one of the two snapshots is empty, so
// no meaningful report can be produced. The caller is expected to have at
// least two snapshot time points before invoking Compute.
var ErrInsufficientData = errors.New("not enough stock data")

// Compute produces one ReportRow per product in the current snapshot. It is a
// pure function of its inputs: every invocation recomputes the report from
// scratch and overrides are only read, never written.
//
// Products absent from the previous snapshot are treated as unchanged
// (last_stock = stock) so a newly tracked product never shows a spurious
// 100% decrease. Products absent from the current snapshot are dropped:
// nothing can be said about a product with no current count.
func Compute(prev, curr []SnapshotRow, overrides Overrides) ([]ReportRow, error) {
	if len(prev) == 0 || len(curr) == 0 {
		return nil, ErrInsufficientData
	}
	if overrides == nil {
		overrides = MapOverrides{}
	}

	// Last record wins on duplicate keys; ambiguous duplicates are a
	// data-quality concern of the snapshot loader.
	lastStocks := make(map[string]int, len(prev))
	for _, row := range prev {
		lastStocks[row.ProductKey] = row.Stock
	}

	order := make([]string, 0, len(curr))
	latest := make(map[string]SnapshotRow, len(curr))
	for _, row := range curr {
		if _, seen := latest[row.ProductKey]; !seen {
			order = append(order, row.ProductKey)
		}
		latest[row.ProductKey] = row
	}

	report := make([]ReportRow, 0, len(order))
	for _, key := range order {
		report = append(report, computeRow(latest[key], lastStocks, overrides))
	}
	return report, nil
}

func computeRow(row SnapshotRow, lastStocks map[string]int, overrides Overrides) ReportRow {
	stock := row.Stock
	lastStock, tracked := lastStocks[row.ProductKey]
	if !tracked {
		lastStock = stock
	}

	// Floor of 1: never estimate zero or negative consumption, which also
	// keeps weeks_to_empty well-defined.
	weeklySale := lastStock - stock
	if weeklySale < 1 {
		weeklySale = 1
	}

	var decreaseRate float64
	if lastStock > 0 {
		decreaseRate = roundFloat(float64(lastStock-stock)/float64(lastStock)*100, 1)
	}

	weeksToEmpty := roundFloat(float64(stock)/float64(weeklySale), 2)

	minStock, ok := overrides.MinStock(row.ProductKey)
	if !ok {
		minStock = int(float64(weeklySale) * WeeksToCover * SafetyFactor)
	}
	if minStock < 0 {
		minStock = 0
	}

	buffer, ok := overrides.Buffer(row.ProductKey)
	if !ok {
		switch {
		case decreaseRate > 50:
			buffer = 20
		case decreaseRate > 20:
			buffer = 10
		default:
			buffer = 5
		}
	}
	if buffer < 0 {
		buffer = 0
	}
	if buffer > MaxBuffer {
		buffer = MaxBuffer
	}

	reorderQty := minStock + buffer - stock
	if floor := int(float64(weeklySale) * SafetyFactor); reorderQty < floor {
		reorderQty = floor
	}

	status := StatusGreen
	desc := "Stock is sufficient"
	switch {
	case stock < minStock || decreaseRate > 50:
		status = StatusRed
		desc = fmt.Sprintf("Decreasing rapidly and nearly out of stock! Recommend restocking %d units", reorderQty)
	case decreaseRate > 20:
		status = StatusYellow
		desc = fmt.Sprintf("Decreasing rapidly, should prepare to restock. Recommend restocking %d units", reorderQty)
	}

	return ReportRow{
		ProductKey:      row.ProductKey,
		Category:        row.Category,
		Stock:           stock,
		LastStock:       lastStock,
		WeeklySale:      weeklySale,
		DecreaseRatePct: decreaseRate,
		WeeksToEmpty:    weeksToEmpty,
		MinStock:        minStock,
		Buffer:          buffer,
		ReorderQty:      reorderQty,
		Status:          status,
		Description:     desc,
	}
}
