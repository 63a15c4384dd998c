// =============================================================================
// Sales Report Bot - XLSX Catalog Loader
// =============================================================================
//
// Reads a catalog from the first sheet of an XLSX workbook. Office staff keep
// price lists in spreadsheets, so this is the most convenient source to edit.
//
// SHEET STRUCTURE (Expected Columns):
//
//   | Column A             | Column B | Column C |
//   |----------------------|----------|----------|
//   | Name                 | Price    | Exchange |
//   | Молоко 2,5% 0,9л     | 310      | yes      |
//   | Сливки кг            | 3050     |          |
//
//   Row 1 is a header row and is skipped. Empty rows are ignored.
//
// =============================================================================

package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// SHEET COLUMN CONFIGURATION
// =============================================================================

// SheetColumns defines which columns of the workbook hold which data.
// Column indices are 0-based (A=0, B=1, C=2).
type SheetColumns struct {
	NameColumn     int
	PriceColumn    int
	ExchangeColumn int

	// DataStartRow is the first data row (0-based).
	DataStartRow int
}

// DefaultSheetColumns returns the default column layout.
func DefaultSheetColumns() SheetColumns {
	return SheetColumns{
		NameColumn:     0, // Column A
		PriceColumn:    1, // Column B
		ExchangeColumn: 2, // Column C
		DataStartRow:   1, // Row 2
	}
}

// =============================================================================
// LOADER FUNCTIONS
// =============================================================================

// LoadXLSX reads a catalog from an XLSX file using the default layout.
func LoadXLSX(path string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(f, DefaultSheetColumns())
}

// ReadXLSX reads a catalog from an XLSX stream.
func ReadXLSX(r io.Reader, columns SheetColumns) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(f, columns)
}

func readWorkbook(f *excelize.File, columns SheetColumns) (*Catalog, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("catalog workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return fromRecords(rows, columns)
}

// fromRecords turns tabular rows into a catalog. Shared by the XLSX and CSV
// loaders.
func fromRecords(rows [][]string, columns SheetColumns) (*Catalog, error) {
	var entries []Entry
	var exchange []string

	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		getCell := func(index int) string {
			if index < len(row) {
				return strings.TrimSpace(row[index])
			}
			return ""
		}

		name := getCell(columns.NameColumn)
		priceText := getCell(columns.PriceColumn)

		price, err := parsePrice(priceText)
		if err != nil {
			return nil, fmt.Errorf("error parsing row %d: %w", i+1, err)
		}

		entries = append(entries, Entry{Name: name, Price: price})
		if isTruthy(getCell(columns.ExchangeColumn)) {
			exchange = append(exchange, name)
		}
	}

	return New(entries, exchange)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parsePrice accepts both "1210" and "1 210,50".
func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, fmt.Errorf("price is empty")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return v, nil
}

// isTruthy normalizes the exchange flag column.
func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "1", "x", "да", "+":
		return true
	default:
		return false
	}
}
