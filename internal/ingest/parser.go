// internal/ingest/parser.go
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lontuktak/backend-go/internal/domain"
	"github.com/xuri/excelize/v2"
)

// maxHeaderRow is how many leading rows are tried when looking for the
// header; exported stock files often carry a title row or two above it.
const maxHeaderRow = 4

// Column aliases as they appear across real exports. The Thai names come
// from the marketplace export format.
var (
	skuAliases      = []string{"รหัสสินค้า", "เลขอ้างอิง SKU (SKU Reference No.)", "Product_SKU", "SKU"}
	nameAliases     = []string{"Product_name", "Name"}
	stockAliases    = []string{"Stock", "Stock_Level", "Quantity"}
	categoryAliases = []string{"Category"}
)

// ParseSnapshot reads an uploaded XLSX or CSV stock file into snapshot
// records. The file format is picked from the filename extension.
func ParseSnapshot(filename string, data []byte) ([]domain.StockRecord, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		rows, err = readXLSX(data)
	case ".csv":
		rows, err = readCSV(data)
	default:
		return nil, fmt.Errorf("unsupported file format %q: use .xlsx, .xls, or .csv", filepath.Ext(filename))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	return buildRecords(rows)
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		rows = append(rows, record)
	}

	return rows, nil
}

type columnIndex struct {
	sku      int
	name     int
	stock    int
	category int
}

// findHeader tries the first few rows as the header until one contains a
// recognised SKU column together with a stock column.
func findHeader(rows [][]string) (columnIndex, int, error) {
	limit := maxHeaderRow
	if limit > len(rows) {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		idx := columnIndex{sku: -1, name: -1, stock: -1, category: -1}
		for col, cell := range rows[i] {
			header := strings.TrimSpace(cell)
			switch {
			case idx.sku < 0 && matchesAlias(header, skuAliases):
				idx.sku = col
			case idx.name < 0 && matchesAlias(header, nameAliases):
				idx.name = col
			case idx.stock < 0 && matchesAlias(header, stockAliases):
				idx.stock = col
			case idx.category < 0 && matchesAlias(header, categoryAliases):
				idx.category = col
			}
		}
		if idx.sku >= 0 && idx.stock >= 0 {
			return idx, i, nil
		}
	}

	return columnIndex{}, 0, fmt.Errorf("could not find SKU column (รหัสสินค้า or Product_SKU)")
}

func matchesAlias(header string, aliases []string) bool {
	for _, alias := range aliases {
		if strings.EqualFold(header, alias) {
			return true
		}
	}
	return false
}

func buildRecords(rows [][]string) ([]domain.StockRecord, error) {
	idx, headerRow, err := findHeader(rows)
	if err != nil {
		return nil, err
	}

	records := make([]domain.StockRecord, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		sku := cellAt(row, idx.sku)
		if sku == "" {
			continue
		}

		stock, err := parseStock(cellAt(row, idx.stock))
		if err != nil {
			return nil, fmt.Errorf("invalid stock value for %s: %w", sku, err)
		}

		records = append(records, domain.StockRecord{
			ProductSKU:  sku,
			ProductName: cellAt(row, idx.name),
			Category:    cellAt(row, idx.category),
			Stock:       stock,
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no product rows found below the header")
	}

	return records, nil
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// parseStock accepts plain integers and spreadsheet-style floats ("12.0").
// Negative counts are a caller data error.
func parseStock(value string) (int, error) {
	if value == "" {
		return 0, nil
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("negative stock level %s", value)
	}

	return int(f), nil
}
