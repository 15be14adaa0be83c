package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func amt(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewTransaction_Validate(t *testing.T) {
	valid := NewTransaction{
		Owner:    "alice",
		Amount:   amt("12.50"),
		Title:    "groceries",
		Note:     "",
		Category: CategoryFood,
		Date:     "2025-01-05",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction should validate, got %v", err)
	}

	tests := []struct {
		name      string
		mutate    func(*NewTransaction)
		wantField string
	}{
		{
			name:      "missing amount",
			mutate:    func(nt *NewTransaction) { nt.Amount = nil },
			wantField: "amount",
		},
		{
			name:      "empty title",
			mutate:    func(nt *NewTransaction) { nt.Title = "" },
			wantField: "title",
		},
		{
			name:      "whitespace title",
			mutate:    func(nt *NewTransaction) { nt.Title = "   " },
			wantField: "title",
		},
		{
			name:      "empty category",
			mutate:    func(nt *NewTransaction) { nt.Category = "" },
			wantField: "category",
		},
		{
			name:      "empty date",
			mutate:    func(nt *NewTransaction) { nt.Date = "" },
			wantField: "date",
		},
		{
			name: "amount reported before title",
			mutate: func(nt *NewTransaction) {
				nt.Amount = nil
				nt.Title = ""
			},
			wantField: "amount",
		},
		{
			name: "title reported before category",
			mutate: func(nt *NewTransaction) {
				nt.Title = ""
				nt.Category = ""
				nt.Date = ""
			},
			wantField: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nt := valid
			tt.mutate(&nt)

			err := nt.Validate()
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verr.Field)
			}
		})
	}
}

func TestNewTransaction_Validate_AcceptsZeroAndNegativeAmounts(t *testing.T) {
	// Sign checks belong to the input form, not the store.
	for _, s := range []string{"0", "-5.25"} {
		nt := NewTransaction{
			Owner:    "alice",
			Amount:   amt(s),
			Title:    "refund",
			Category: CategoryShopping,
			Date:     "2025-02-01",
		}
		if err := nt.Validate(); err != nil {
			t.Errorf("amount %s should pass validation, got %v", s, err)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   Category
		want Category
	}{
		{CategoryFood, CategoryFood},
		{CategoryTravel, CategoryTravel},
		{CategoryEntertainment, CategoryEntertainment},
		{CategoryShopping, CategoryShopping},
		{"movie", CategoryOther},
		{"", CategoryOther},
		{"Food", CategoryOther}, // case-sensitive
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 3 || d.Day() != 1 {
		t.Errorf("parsed wrong date: %v", d)
	}

	for _, bad := range []string{"", "yesterday", "2025-13-01", "01/03/2025"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := error(StorageError{Op: "insert transaction", Err: cause})
	if !errors.Is(err, cause) {
		t.Error("StorageError should unwrap to its cause")
	}

	var serr StorageError
	if !errors.As(err, &serr) || serr.Op != "insert transaction" {
		t.Errorf("expected StorageError with op, got %v", err)
	}
}
