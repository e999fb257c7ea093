package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

const (
	Cash PaymentMethod = "cash"
	UPI  PaymentMethod = "upi"
	Bank PaymentMethod = "bank"
)

type (
	TransactionType string
	PaymentMethod   string

	// Date is a calendar day; time-of-day carries no meaning and range
	// comparisons are by inclusive day boundaries.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string          `json:"id,omitempty"`
		Date        Date            `json:"date"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		PaymentType PaymentMethod   `json:"paymentType"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		CreatedAt   time.Time       `json:"createdAt,omitempty"`
	}

	Category struct {
		ID        string          `json:"id,omitempty"`
		Name      string          `json:"name"`
		Type      TransactionType `json:"type"`
		Icon      string          `json:"icon"`
		Color     string          `json:"color"`
		IsDefault bool            `json:"isDefault"`
		CreatedAt time.Time       `json:"createdAt,omitempty"`
	}
)

// Display defaults applied when a category is created without metadata.
const (
	DefaultIcon  = "Circle"
	DefaultColor = "#3b82f6"
)

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidType          = errors.New("type must be 'expense' or 'income'")
	ErrInvalidPaymentMethod = errors.New("payment type must be 'cash', 'upi' or 'bank'")
	ErrEmptyDescription     = errors.New("description is required")
	ErrEmptyCategory        = errors.New("category is required")
	ErrEmptyName            = errors.New("name is required")
	ErrDescriptionTooLong   = errors.New("description too long (max 200 characters)")
)

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

func (p PaymentMethod) Valid() bool {
	return p == Cash || p == UPI || p == Bank
}

// NewDate builds a Date pinned to midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.String() < other.String()
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.String() > other.String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Tolerate full timestamps from clients that serialize time.Time.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.PaymentType.Valid() {
		return ErrInvalidPaymentMethod
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return t.Amount.Validate()
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}
