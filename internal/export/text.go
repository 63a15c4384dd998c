// =============================================================================
// Sales Report Bot - Export Formatters
// =============================================================================
//
// This package renders a completed report in the two forms the operator
// receives:
//   1. A compact fixed-width table for the chat (FormatText)
//   2. An XLSX workbook with every collected figure (FormatSpreadsheet)
//
// TEXT LAYOUT:
//
//   📅 *Отчёт за 2026-10-18 20:15*
//
//   ```
//   | Товар                                    | Продано |        Сумма |
//   |------------------------------------------|---------|--------------|
//   | Молоко 2,5% 0,9л                         |      10 |     3,100 тг |
//   ```
//   💰 *Итого к сдаче:* 3,100 тг
//
//   The table sits in a code block so chat clients render it monospaced.
//   Column widths are display widths, not byte lengths.
//
// =============================================================================

package export

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

// =============================================================================
// TEXT TABLE GEOMETRY
// =============================================================================

const (
	nameWidth   = 40
	soldWidth   = 7
	amountWidth = 12

	// integerTolerance decides when a sold quantity prints without decimals.
	integerTolerance = 1e-6

	// TimestampLayout is used in report titles.
	TimestampLayout = "2006-01-02 15:04"
)

// width uses narrow East Asian ambiguous characters so Cyrillic counts as one
// column regardless of the host locale.
var width = &runewidth.Condition{EastAsianWidth: false}

// =============================================================================
// OPTIONS
// =============================================================================

// TextOptions controls FormatText.
type TextOptions struct {
	// Currency is appended to amounts. Default: "тг".
	Currency string

	// Location is the time zone of the title timestamp. Default: the
	// report timestamp's own location.
	Location *time.Location
}

func (o TextOptions) withDefaults() TextOptions {
	if o.Currency == "" {
		o.Currency = "тг"
	}
	return o
}

// =============================================================================
// TEXT FORMATTER
// =============================================================================

// FormatText renders the chat summary of a report. The title and total use
// Markdown emphasis; the table is a fenced code block.
func FormatText(r types.Report, opts TextOptions) string {
	opts = opts.withDefaults()

	var b strings.Builder

	fmt.Fprintf(&b, "📅 *Отчёт за %s*\n", Timestamp(r.GeneratedAt, opts.Location))
	b.WriteString("\n")
	b.WriteString("```\n")

	fmt.Fprintf(&b, "| %s | %s | %s |\n",
		padRight("Товар", nameWidth),
		padLeft("Продано", soldWidth),
		padLeft("Сумма", amountWidth),
	)
	b.WriteString("|" + strings.Repeat("-", nameWidth+2) +
		"|" + strings.Repeat("-", soldWidth+2) +
		"|" + strings.Repeat("-", amountWidth+2) + "|\n")

	for _, line := range r.Lines {
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			padRight(width.Truncate(line.Name, nameWidth, ""), nameWidth),
			padLeft(FormatSold(line.Sold), soldWidth),
			padLeft(FormatAmount(line.Amount, opts.Currency), amountWidth),
		)
	}

	b.WriteString("```\n")
	fmt.Fprintf(&b, "💰 *Итого к сдаче:* %s", FormatAmount(r.Total, opts.Currency))

	return b.String()
}

// FormatSold prints whole quantities without decimals and anything else
// with two.
func FormatSold(v float64) string {
	if math.Abs(v-math.Round(v)) < integerTolerance {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatAmount rounds to whole units and adds thousands separators and the
// currency suffix. Amounts beyond the int64 range keep all their digits.
func FormatAmount(v float64, currency string) string {
	rounded := math.RoundToEven(v)
	if math.IsInf(rounded, 0) || math.IsNaN(rounded) {
		return strconv.FormatFloat(rounded, 'f', 0, 64) + " " + currency
	}
	whole, _ := big.NewFloat(rounded).Int(nil)
	return humanize.BigComma(whole) + " " + currency
}

// Timestamp formats t for report titles, in loc when given.
func Timestamp(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(TimestampLayout)
}

func padRight(s string, w int) string {
	return width.FillRight(s, w)
}

func padLeft(s string, w int) string {
	return width.FillLeft(s, w)
}
