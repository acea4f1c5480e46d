// Package budget classifies category spending against monthly ceilings.
//
// This file implements the Strategy Pattern for budget classification. Each
// strategy decides, for a spent amount and a positive ceiling, whether the
// category is Normal, NearLimit or OverLimit. Callers only ever see the
// Classifier interface.
package budget

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultNearThreshold is the spent/ceiling ratio at which a category starts
// being reported as near its limit.
const DefaultNearThreshold = 0.8

var (
	ErrInvalidBudget    = errors.New("budget ceiling must be positive")
	ErrInvalidThreshold = errors.New("near threshold must be in (0, 1]")
	ErrInvalidMargin    = errors.New("near margin must not be negative")
)

var defaultNear = decimal.NewFromFloat(DefaultNearThreshold)

// Classifier is the strategy interface for budget classification.
type Classifier interface {
	// Classify returns the status of spent against ceiling. It fails with
	// ErrInvalidBudget when ceiling is not positive.
	Classify(spent, ceiling decimal.Decimal) (Status, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(spent, ceiling decimal.Decimal) (Status, error)

func (f ClassifierFunc) Classify(spent, ceiling decimal.Decimal) (Status, error) {
	return f(spent, ceiling)
}

// RatioClassifier implements Classifier using spent/ceiling.
//
// ratio >= 1 is OverLimit, ratio >= Near is NearLimit, anything else is
// Normal. Both bounds are inclusive. A zero Near uses DefaultNearThreshold.
type RatioClassifier struct {
	Near decimal.Decimal
}

// NewRatioClassifier validates threshold and returns a ratio strategy.
func NewRatioClassifier(threshold float64) (RatioClassifier, error) {
	if threshold <= 0 || threshold > 1 {
		return RatioClassifier{}, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return RatioClassifier{Near: decimal.NewFromFloat(threshold)}, nil
}

func (c RatioClassifier) Classify(spent, ceiling decimal.Decimal) (Status, error) {
	if !ceiling.IsPositive() {
		return Normal, fmt.Errorf("%w: got %s", ErrInvalidBudget, ceiling)
	}
	near := c.Near
	if near.IsZero() {
		near = defaultNear
	}
	// Compare spent against scaled ceilings instead of dividing, so boundary
	// values classify exactly.
	switch {
	case spent.GreaterThanOrEqual(ceiling):
		return OverLimit, nil
	case spent.GreaterThanOrEqual(ceiling.Mul(near)):
		return NearLimit, nil
	default:
		return Normal, nil
	}
}

// AbsoluteClassifier implements Classifier using the remaining amount.
//
// spent >= ceiling is OverLimit, a remainder of at most Margin is NearLimit.
type AbsoluteClassifier struct {
	Margin decimal.Decimal
}

// NewAbsoluteClassifier validates margin and returns an absolute strategy.
func NewAbsoluteClassifier(margin decimal.Decimal) (AbsoluteClassifier, error) {
	if margin.IsNegative() {
		return AbsoluteClassifier{}, fmt.Errorf("%w: got %s", ErrInvalidMargin, margin)
	}
	return AbsoluteClassifier{Margin: margin}, nil
}

func (c AbsoluteClassifier) Classify(spent, ceiling decimal.Decimal) (Status, error) {
	if !ceiling.IsPositive() {
		return Normal, fmt.Errorf("%w: got %s", ErrInvalidBudget, ceiling)
	}
	switch {
	case spent.GreaterThanOrEqual(ceiling):
		return OverLimit, nil
	case ceiling.Sub(spent).LessThanOrEqual(c.Margin):
		return NearLimit, nil
	default:
		return Normal, nil
	}
}
