package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MonthKey identifies a calendar month as "YYYY-MM". It is always derived
// from a transaction date or parsed from user input, never stored.
type MonthKey string

var ErrInvalidMonthKey = errors.New("invalid month key (want YYYY-MM)")

// MonthOf returns the key of the month d falls in.
func MonthOf(d Date) MonthKey {
	return NewMonthKey(d.Year(), int(d.Time.Month()))
}

// NewMonthKey formats year and month (1-12) as a key.
func NewMonthKey(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, month))
}

// CurrentMonth returns the key of the month containing now.
func CurrentMonth(now time.Time) MonthKey {
	return NewMonthKey(now.Year(), int(now.Month()))
}

// ParseMonthKey validates s and returns it as a MonthKey.
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", ErrInvalidMonthKey
	}
	return NewMonthKey(t.Year(), int(t.Month())), nil
}

// Contains reports whether d falls inside the month.
func (k MonthKey) Contains(d Date) bool {
	return MonthOf(d) == k
}

func (k MonthKey) String() string {
	return string(k)
}
