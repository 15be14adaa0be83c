package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tx(amount, date string) Transaction {
	return Transaction{
		Owner:    "alice",
		Amount:   decimal.RequireFromString(amount),
		Title:    "x",
		Category: CategoryFood,
		Date:     date,
	}
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name string
		txs  []Transaction
		want string
	}{
		{"empty", nil, "0"},
		{"single", []Transaction{tx("10", "2025-01-05")}, "10"},
		{
			"sum with cents",
			[]Transaction{tx("10.25", "2025-01-05"), tx("5.50", "2025-02-01"), tx("7", "2025-03-01")},
			"22.75",
		},
		{
			"negative rows participate",
			[]Transaction{tx("10", "2025-01-05"), tx("-4", "2025-01-06")},
			"6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotal(tt.txs)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ComputeTotal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeMonthlyHistogram(t *testing.T) {
	txs := []Transaction{
		tx("10", "2025-01-05"),
		tx("5", "2025-01-20"),
		tx("7", "2025-03-01"),
	}

	hist := ComputeMonthlyHistogram(txs)

	want := map[int]string{0: "15", 2: "7"}
	for i, b := range hist {
		exp := "0"
		if w, ok := want[i]; ok {
			exp = w
		}
		if !b.Equal(decimal.RequireFromString(exp)) {
			t.Errorf("bucket %d = %s, want %s", i, b, exp)
		}
	}
}

func TestComputeMonthlyHistogram_PoolsAllYears(t *testing.T) {
	hist := ComputeMonthlyHistogram([]Transaction{
		tx("10", "2024-06-15"),
		tx("20", "2025-06-01"),
	})
	if !hist[5].Equal(decimal.RequireFromString("30")) {
		t.Errorf("June bucket = %s, want 30", hist[5])
	}
}

func TestComputeMonthlyHistogram_SkipsUnparsableDates(t *testing.T) {
	hist := ComputeMonthlyHistogram([]Transaction{
		tx("10", "2025-01-05"),
		tx("99", "not-a-date"),
		tx("99", ""),
	})

	if !hist[0].Equal(decimal.RequireFromString("10")) {
		t.Errorf("January bucket = %s, want 10", hist[0])
	}
	total := decimal.Zero
	for _, b := range hist {
		total = total.Add(b)
	}
	if !total.Equal(decimal.RequireFromString("10")) {
		t.Errorf("histogram total = %s, want 10 (bad dates must be skipped)", total)
	}
}

func TestComputeAxisPlan(t *testing.T) {
	tests := []struct {
		name          string
		maxBucket     string
		wantStep      string
		wantGridlines [6]string
	}{
		{
			name:          "max 23 rounds step up",
			maxBucket:     "23",
			wantStep:      "5",
			wantGridlines: [6]string{"25", "20", "15", "10", "5", "0"},
		},
		{
			name:          "exactly divisible max",
			maxBucket:     "25",
			wantStep:      "5",
			wantGridlines: [6]string{"25", "20", "15", "10", "5", "0"},
		},
		{
			name:          "fractional max",
			maxBucket:     "10.01",
			wantStep:      "3",
			wantGridlines: [6]string{"15", "12", "9", "6", "3", "0"},
		},
		{
			name:          "small max floored at one",
			maxBucket:     "0.40",
			wantStep:      "1",
			wantGridlines: [6]string{"5", "4", "3", "2", "1", "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hist MonthlyHistogram
			hist[3] = decimal.RequireFromString(tt.maxBucket)

			plan := ComputeAxisPlan(hist)
			if !plan.StepSize.Equal(decimal.RequireFromString(tt.wantStep)) {
				t.Fatalf("StepSize = %s, want %s", plan.StepSize, tt.wantStep)
			}
			for i, want := range tt.wantGridlines {
				if !plan.Gridlines[i].Equal(decimal.RequireFromString(want)) {
					t.Errorf("Gridlines[%d] = %s, want %s", i, plan.Gridlines[i], want)
				}
			}
		})
	}
}

func TestComputeAxisPlan_EmptyHistogram(t *testing.T) {
	// No data: the {1} floor keeps the plan non-degenerate.
	plan := ComputeAxisPlan(MonthlyHistogram{})
	if !plan.StepSize.Equal(decimal.NewFromInt(1)) {
		t.Errorf("StepSize = %s, want 1", plan.StepSize)
	}
	if !plan.Gridlines[0].Equal(decimal.NewFromInt(5)) || !plan.Gridlines[5].IsZero() {
		t.Errorf("gridlines = %v, want 5..0", plan.Gridlines)
	}
}
