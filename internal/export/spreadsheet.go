package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

// =============================================================================
// WORKBOOK LAYOUT
// =============================================================================
//
//   Row 1 : title, merged over A1:G1
//   Row 2 : header
//   Row 3+: one row per report line, catalog order
//   Last  : "Итого:" in F, grand total in G
//
// Column widths fit the longest value written into each column plus
// columnPadding.

// SheetName is the name of the only worksheet.
const SheetName = "Отчёт"

const (
	columnCount   = 7
	columnPadding = 2
	titleRow      = 1
	headerRow     = 2
	firstDataRow  = 3
)

// SheetOptions controls FormatSpreadsheet.
type SheetOptions struct {
	// Currency appears in the price and amount headers. Default: "тг".
	Currency string

	// Location is the time zone of the title timestamp.
	Location *time.Location
}

// Header returns the column titles.
func Header(currency string) []string {
	return []string{
		"Товар",
		fmt.Sprintf("Цена (%s)", currency),
		"Утро",
		"Остаток",
		"Обмен",
		"Продано",
		fmt.Sprintf("Сумма (%s)", currency),
	}
}

// =============================================================================
// SPREADSHEET FORMATTER
// =============================================================================

// FormatSpreadsheet renders the report as an XLSX workbook in memory.
func FormatSpreadsheet(r types.Report, opts SheetOptions) (*bytes.Buffer, error) {
	if opts.Currency == "" {
		opts.Currency = "тг"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	w := newSheetWriter(f, SheetName)

	// Title.
	title := fmt.Sprintf("Отчёт торгового представителя — %s", Timestamp(r.GeneratedAt, opts.Location))
	if err := f.MergeCell(SheetName, "A1", "G1"); err != nil {
		return nil, fmt.Errorf("failed to merge title cells: %w", err)
	}
	w.set(1, titleRow, title)

	// Header.
	for i, h := range Header(opts.Currency) {
		w.set(i+1, headerRow, h)
	}

	// Data rows.
	row := firstDataRow
	for _, line := range r.Lines {
		values := []interface{}{
			line.Name,
			line.Price,
			line.Morning,
			line.Evening,
			line.Exchange,
			line.Sold,
			line.Amount,
		}
		for i, v := range values {
			w.set(i+1, row, v)
		}
		row++
	}

	// Totals.
	totalRow := row
	w.set(6, totalRow, "Итого:")
	w.set(7, totalRow, r.Total)

	if w.err != nil {
		return nil, w.err
	}

	if err := applyStyles(f, totalRow); err != nil {
		return nil, err
	}

	for col := 1; col <= columnCount; col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, name, name, float64(w.widths[col]+columnPadding)); err != nil {
			return nil, fmt.Errorf("failed to set width of column %s: %w", name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// FileName names the exported workbook after the user and the report time.
func FileName(userID string, at time.Time) string {
	return fmt.Sprintf("report_%s_%s.xlsx", safeName(userID), at.Format("20060102_150405"))
}

// =============================================================================
// HELPERS
// =============================================================================

// sheetWriter writes cells and tracks the widest value per column. The first
// error sticks and later writes are skipped.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	widths map[int]int
	err    error
}

func newSheetWriter(f *excelize.File, sheet string) *sheetWriter {
	return &sheetWriter{f: f, sheet: sheet, widths: make(map[int]int)}
}

func (w *sheetWriter) set(col, row int, value interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		w.err = fmt.Errorf("failed to set %s: %w", cell, err)
		return
	}
	if n := width.StringWidth(stringify(value)); n > w.widths[col] {
		w.widths[col] = n
	}
}

// stringify renders a cell value the way it is measured for column widths.
func stringify(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func applyStyles(f *excelize.File, totalRow int) error {
	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetCellStyle(SheetName, "A1", "G1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A2", "G2", bold); err != nil {
		return err
	}
	from := fmt.Sprintf("F%d", totalRow)
	to := fmt.Sprintf("G%d", totalRow)
	return f.SetCellStyle(SheetName, from, to, bold)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func safeName(s string) string {
	s = unsafeChars.ReplaceAllString(s, "_")
	if s == "" {
		return "anonymous"
	}
	return s
}
