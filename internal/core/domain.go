package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// IncomeCategory is the fixed category carried by every income transaction.
const IncomeCategory = "Income"

const maxNoteLength = 200

type (
	Kind string

	Date struct {
		time.Time
	}

	// Transaction is a single income or expense record. Transactions are
	// immutable once created; the ledger only ever appends them.
	Transaction struct {
		ID       string
		Date     Date
		Kind     Kind
		Note     string // optional free text
		Category string // required for expenses, IncomeCategory for income
		Amount   decimal.Decimal
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyCategory    = errors.New("empty expense category")
	ErrIncomeCategory   = errors.New("income must use the income category")
	ErrReservedCategory = errors.New("expense cannot use the income category")
	ErrNoteTooLong      = errors.New("note too long (max 200 characters)")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// StartOfDay truncates the date to midnight UTC so that two timestamps on the
// same calendar day compare equal.
func (d Date) StartOfDay() Date {
	y, m, dd := d.Date()
	return Date{Time: time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MonthKey returns the month key the date falls in.
func (d Date) MonthKey() MonthKey {
	return MonthOf(d)
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// ParseKind maps user input to a Kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// NewIncome builds an income transaction carrying IncomeCategory.
func NewIncome(d Date, amount decimal.Decimal, note string) Transaction {
	return Transaction{Date: d, Kind: Income, Note: note, Category: IncomeCategory, Amount: amount}
}

// NewExpense builds an expense transaction in the given category.
func NewExpense(d Date, category string, amount decimal.Decimal, note string) Transaction {
	return Transaction{Date: d, Kind: Expense, Note: note, Category: category, Amount: amount}
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if len(t.Note) > maxNoteLength {
		return ErrNoteTooLong
	}
	category := strings.TrimSpace(t.Category)
	switch t.Kind {
	case Income:
		if category != IncomeCategory {
			return ErrIncomeCategory
		}
	case Expense:
		if category == "" {
			return ErrEmptyCategory
		}
		if category == IncomeCategory {
			return ErrReservedCategory
		}
	}
	return nil
}

// IsExpense reports whether the transaction counts against a budget.
func (t Transaction) IsExpense() bool {
	return t.Kind == Expense
}
