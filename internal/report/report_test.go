package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

func TestLine(t *testing.T) {
	tests := []struct {
		name       string
		row        types.Row
		wantSold   float64
		wantAmount float64
	}{
		{
			name:       "plain sale",
			row:        types.Row{Name: "A", Price: 100, Morning: 12, Evening: 2},
			wantSold:   10,
			wantAmount: 1000,
		},
		{
			name:       "with exchange",
			row:        types.Row{Name: "C", Price: 50, Morning: 10, Evening: 3, Exchange: 1},
			wantSold:   6,
			wantAmount: 300,
		},
		{
			name:       "untouched row",
			row:        types.Row{Name: "B", Price: 200},
			wantSold:   0,
			wantAmount: 0,
		},
		{
			name:       "inconsistent input is not clamped",
			row:        types.Row{Name: "D", Price: 10, Morning: 1, Evening: 2, Exchange: 1},
			wantSold:   -2,
			wantAmount: -20,
		},
		{
			name:       "fractional quantities",
			row:        types.Row{Name: "E", Price: 3050, Morning: 2.5, Evening: 0.75},
			wantSold:   1.75,
			wantAmount: 5337.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Line(tt.row)
			assert.Equal(t, tt.row.Name, got.Name)
			assert.InDelta(t, tt.wantSold, got.Sold, 1e-9)
			assert.InDelta(t, tt.wantAmount, got.Amount, 1e-9)
		})
	}
}

func TestAggregatePreservesOrder(t *testing.T) {
	rows := []types.Row{
		{Name: "A", Price: 100, Morning: 12, Evening: 2},
		{Name: "B", Price: 200},
		{Name: "C", Price: 50, Morning: 10, Evening: 3, Exchange: 1},
	}

	lines, total := Aggregate(rows)

	require.Len(t, lines, 3)
	assert.Equal(t, "A", lines[0].Name)
	assert.Equal(t, "B", lines[1].Name)
	assert.Equal(t, "C", lines[2].Name)
	assert.Equal(t, 1300.0, total)
}

func TestAggregateIsDeterministic(t *testing.T) {
	rows := []types.Row{
		{Name: "A", Price: 310, Morning: 7.5, Evening: 1.25, Exchange: 0.5},
		{Name: "B", Price: 1210, Morning: 3, Evening: 1},
	}

	lines1, total1 := Aggregate(rows)
	lines2, total2 := Aggregate(rows)

	assert.Equal(t, lines1, lines2)
	assert.Equal(t, total1, total2)
	assert.Equal(t, 310.0, rows[0].Price, "input must not be modified")
}

func TestAggregateEmpty(t *testing.T) {
	lines, total := Aggregate(nil)
	assert.Empty(t, lines)
	assert.Zero(t, total)
}

func TestBuild(t *testing.T) {
	at := time.Date(2026, 10, 18, 19, 30, 0, 0, time.UTC)
	r := Build("42", []types.Row{{Name: "A", Price: 100, Morning: 12, Evening: 2}}, at)

	assert.Equal(t, "42", r.UserID)
	assert.Equal(t, at, r.GeneratedAt)
	assert.Equal(t, 1000.0, r.Total)
	require.Len(t, r.Lines, 1)
	assert.Equal(t, 10.0, r.Lines[0].Sold)
}
