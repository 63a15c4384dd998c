// Package report derives sold quantities and cash due from collected rows.
package report

import (
	"time"

	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

// Line computes the report line for a single row.
//
// Sold is received minus remaining minus exchanged. Inconsistent input can
// make it negative; the value is reported as-is.
func Line(r types.Row) types.ReportLine {
	sold := r.Morning - r.Evening - r.Exchange
	return types.ReportLine{
		Name:     r.Name,
		Price:    r.Price,
		Morning:  r.Morning,
		Evening:  r.Evening,
		Exchange: r.Exchange,
		Sold:     sold,
		Amount:   sold * r.Price,
	}
}

// Aggregate computes one line per row, in row order, and the grand total.
// It has no side effects.
func Aggregate(rows []types.Row) ([]types.ReportLine, float64) {
	lines := make([]types.ReportLine, 0, len(rows))
	var total float64
	for _, r := range rows {
		l := Line(r)
		total += l.Amount
		lines = append(lines, l)
	}
	return lines, total
}

// Build aggregates rows into a report for userID stamped with at.
func Build(userID string, rows []types.Row, at time.Time) types.Report {
	lines, total := Aggregate(rows)
	return types.Report{
		UserID:      userID,
		Lines:       lines,
		Total:       total,
		GeneratedAt: at,
	}
}
