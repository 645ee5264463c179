package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// DateLayout is the calendar-day layout used on the wire and in storage.
const DateLayout = "2006-01-02"

type (
	Period string

	// Date is a calendar day with no time component, always held at UTC midnight.
	Date struct {
		time.Time
	}

	Item struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		CurrentPrice Money     `json:"current_price"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}

	// ItemPatch carries the fields of an item edit. Nil fields are left untouched.
	ItemPatch struct {
		Name         *string `json:"name,omitempty"`
		CurrentPrice *Money  `json:"current_price,omitempty"`
	}

	Purchase struct {
		ID        string    `json:"id"`
		ItemID    string    `json:"item_id"`
		ItemName  string    `json:"item_name"` // Denormalized at creation
		Quantity  int       `json:"quantity"`
		UnitPrice Money     `json:"unit_price"` // Denormalized at creation
		Total     Money     `json:"total"`
		Date      Date      `json:"date"`
		CreatedAt time.Time `json:"created_at"`
	}

	// PurchaseInput is a purchase before the ledger assigns id and creation time.
	PurchaseInput struct {
		ItemID    string
		ItemName  string
		Quantity  int
		UnitPrice Money
		Total     Money
		Date      Date
	}

	// PurchasePatch carries the fields of a purchase edit. Nil fields are left untouched.
	PurchasePatch struct {
		ItemID    *string `json:"item_id,omitempty"`
		ItemName  *string `json:"item_name,omitempty"`
		Quantity  *int    `json:"quantity,omitempty"`
		UnitPrice *Money  `json:"unit_price,omitempty"`
		Total     *Money  `json:"total,omitempty"`
		Date      *Date   `json:"date,omitempty"`
	}
)

var (
	// ErrValidation is the parent of every input rejection raised before a mutation.
	ErrValidation = errors.New("validation rejected")

	ErrInvalidDay      = fmt.Errorf("%w: invalid day", ErrValidation)
	ErrInvalidMonth    = fmt.Errorf("%w: invalid month", ErrValidation)
	ErrInvalidDate     = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidAmount   = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	ErrInvalidPeriod   = fmt.Errorf("%w: period must be one of day, week, month", ErrValidation)
	ErrEmptyName       = fmt.Errorf("%w: empty item name", ErrValidation)
	ErrEmptyItemID     = fmt.Errorf("%w: empty item id", ErrValidation)
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	// Check basic ranges
	_, month, day := d.Time.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Compare returns -1, 0 or +1 comparing d and other at day granularity.
func (d Date) Compare(other Date) int {
	a, b := DateOf(d.Time), DateOf(other.Time)
	return a.Time.Compare(b.Time)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Backends may echo a full timestamp for a date column
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidateItemName rejects blank item names.
func ValidateItemName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > 100 {
		return fmt.Errorf("%w: item name too long (max 100 characters)", ErrValidation)
	}
	return nil
}

func (in PurchaseInput) Validate() error {
	if strings.TrimSpace(in.ItemID) == "" {
		return ErrEmptyItemID
	}
	if in.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if err := in.UnitPrice.Validate(); err != nil {
		return err
	}
	return in.Date.Validate()
}

// Apply returns a copy of the item with the patch applied.
func (p ItemPatch) Apply(it Item) Item {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.CurrentPrice != nil {
		it.CurrentPrice = *p.CurrentPrice
	}
	return it
}

// IsEmpty reports whether the patch changes nothing.
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.CurrentPrice == nil
}

// Apply returns a copy of the purchase with the patch applied. The total is not
// recomputed; callers that change quantity or price set Total explicitly.
func (p PurchasePatch) Apply(pu Purchase) Purchase {
	if p.ItemID != nil {
		pu.ItemID = *p.ItemID
	}
	if p.ItemName != nil {
		pu.ItemName = *p.ItemName
	}
	if p.Quantity != nil {
		pu.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		pu.UnitPrice = *p.UnitPrice
	}
	if p.Total != nil {
		pu.Total = *p.Total
	}
	if p.Date != nil {
		pu.Date = *p.Date
	}
	return pu
}

func (p PurchasePatch) Validate() error {
	if p.Quantity != nil && *p.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if p.UnitPrice != nil {
		if err := p.UnitPrice.Validate(); err != nil {
			return err
		}
	}
	if p.Total != nil {
		if err := p.Total.Validate(); err != nil {
			return err
		}
	}
	if p.Date != nil {
		return p.Date.Validate()
	}
	return nil
}
