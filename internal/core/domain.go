package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for transaction dates. Dates carry no
// time component.
const DateLayout = "2006-01-02"

// Categories recognized by the display layer. The store accepts any
// category string verbatim; values outside the first four collapse to
// CategoryOther at the display boundary only.
const (
	CategoryFood          Category = "food"
	CategoryTravel        Category = "travel"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryOther         Category = "other"
)

type (
	Category string

	// User is a locally chosen identity: a plain display name with no
	// credentials. At most one row exists per distinct name.
	User struct {
		ID   int64
		Name string
	}

	// Transaction is one immutable ledger row. Owner is the display
	// name of the user it belongs to and never changes after insert.
	Transaction struct {
		ID       int64
		Owner    string
		Amount   decimal.Decimal
		Title    string
		Note     string
		Category Category
		Date     string // ISO YYYY-MM-DD
	}

	// NewTransaction carries the caller-supplied fields of a row
	// before the store assigns an id. Amount is a pointer so a missing
	// amount is distinguishable from an explicit zero: sign and zero
	// checks belong to the upstream form, not the store.
	NewTransaction struct {
		Owner    string
		Amount   *decimal.Decimal
		Title    string
		Note     string
		Category Category
		Date     string
	}
)

// ValidationError reports the first missing required input field,
// detected before any persistence call.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// StorageError wraps a persistence-engine fault. The failed operation
// either fully committed or changed nothing.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }

// Validate checks required fields in a fixed order: amount, title,
// category, date. Note is optional; Owner is the caller's
// responsibility. Membership of the category in the recognized set is
// deliberately not checked.
func (t NewTransaction) Validate() error {
	if t.Amount == nil {
		return ValidationError{Field: "amount"}
	}
	if strings.TrimSpace(t.Title) == "" {
		return ValidationError{Field: "title"}
	}
	if strings.TrimSpace(string(t.Category)) == "" {
		return ValidationError{Field: "category"}
	}
	if strings.TrimSpace(t.Date) == "" {
		return ValidationError{Field: "date"}
	}
	return nil
}

// NormalizeCategory maps a stored category onto the display set.
func NormalizeCategory(c Category) Category {
	switch c {
	case CategoryFood, CategoryTravel, CategoryEntertainment, CategoryShopping:
		return c
	default:
		return CategoryOther
	}
}

// ParseDate parses an ISO YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders t in the ledger's date format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
