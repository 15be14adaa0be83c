// Package core holds the ledger's domain types and the pure
// aggregate-derivation functions. Nothing in this package performs
// I/O; every derived view is a full recomputation from the row set it
// is handed, so a view can never drift from the rows that produced it.
package core

import "github.com/shopspring/decimal"

// MonthlyHistogram holds one spending bucket per calendar month,
// index 0 = January. All years present in the row set pool into the
// same twelve buckets.
type MonthlyHistogram [12]decimal.Decimal

// AxisPlan is the y-axis scale for a 12-month bar chart: six gridline
// values running top to bottom from 5*StepSize down to zero.
type AxisPlan struct {
	StepSize  decimal.Decimal
	Gridlines [6]decimal.Decimal
}

var (
	axisFloor    = decimal.NewFromInt(1)
	axisSegments = decimal.NewFromInt(5)
)

// ComputeTotal sums transaction amounts. An empty slice yields zero.
func ComputeTotal(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}

// ComputeMonthlyHistogram buckets amounts by the month of each
// transaction's date. Rows whose date does not parse as YYYY-MM-DD
// are skipped; one malformed date must never take the chart down.
func ComputeMonthlyHistogram(txs []Transaction) MonthlyHistogram {
	var hist MonthlyHistogram
	for _, t := range txs {
		d, err := ParseDate(t.Date)
		if err != nil {
			continue
		}
		m := int(d.Month()) - 1
		hist[m] = hist[m].Add(t.Amount)
	}
	return hist
}

// ComputeAxisPlan derives the chart scale from the histogram maximum.
// The maximum is floored at 1 so an empty ledger still produces a
// usable step, and the step is ceil(max/5). An exactly divisible
// maximum lands on the top gridline rather than above it.
func ComputeAxisPlan(hist MonthlyHistogram) AxisPlan {
	maxBucket := axisFloor
	for _, b := range hist {
		if b.GreaterThan(maxBucket) {
			maxBucket = b
		}
	}

	plan := AxisPlan{StepSize: maxBucket.Div(axisSegments).Ceil()}
	for i := range plan.Gridlines {
		plan.Gridlines[i] = plan.StepSize.Mul(decimal.NewFromInt(int64(5 - i)))
	}
	return plan
}
