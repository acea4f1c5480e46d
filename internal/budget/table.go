package budget

import (
	"fmt"
	"sort"
	"strings"

	"budgetwatch/internal/core"

	"github.com/shopspring/decimal"
)

// Table maps category names to monthly budget ceilings.
type Table map[string]decimal.Decimal

// Ceiling returns the category's ceiling when it participates in
// classification: the category is named, present and has a positive ceiling.
func (t Table) Ceiling(category string) (decimal.Decimal, bool) {
	if category == "" {
		return decimal.Zero, false
	}
	c, ok := t[category]
	if !ok || !c.IsPositive() {
		return decimal.Zero, false
	}
	return c, true
}

// Categories returns the table's category names sorted.
func (t Table) Categories() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTable reads "Food:3000,Transport:1500". Entries with a non-positive
// ceiling are kept; they simply never classify.
func ParseTable(s string) (Table, error) {
	t := make(Table)
	err := parsePairs(s, func(name, value string) error {
		v, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("budget for %q: %w", name, core.ErrInvalidAmount)
		}
		t[name] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ParseThresholds reads per-category ratio overrides "Food:0.9,Living:0.7".
func ParseThresholds(s string) (map[string]Classifier, error) {
	out := make(map[string]Classifier)
	err := parsePairs(s, func(name, value string) error {
		f, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("threshold for %q: %w", name, ErrInvalidThreshold)
		}
		c, err := NewRatioClassifier(f.InexactFloat64())
		if err != nil {
			return fmt.Errorf("threshold for %q: %w", name, err)
		}
		out[name] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parsePairs(s string, fn func(name, value string) error) error {
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("malformed entry %q (want name:value)", part)
		}
		if err := fn(name, strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	return nil
}
