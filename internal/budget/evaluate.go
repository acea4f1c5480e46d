package budget

import (
	"fmt"

	"budgetwatch/internal/core"

	"github.com/shopspring/decimal"
)

// Result is the classification of one budgeted category.
type Result struct {
	Category string          `json:"category"`
	Spent    decimal.Decimal `json:"spent"`
	Budget   decimal.Decimal `json:"budget"`
	Ratio    decimal.Decimal `json:"ratio"`
	Status   Status          `json:"status"`
}

// Percent is the ratio as a whole percentage, halves rounding to even.
func (r Result) Percent() int64 {
	return r.Ratio.Mul(decimal.NewFromInt(100)).RoundBank(0).IntPart()
}

// Evaluation holds the outcome for a month's category totals.
type Evaluation struct {
	// Results has one entry per classified category, in input order.
	Results []Result
	// Near and Over hold the formatted warnings in input order.
	Near []string
	Over []string
}

// HasAlerts reports whether any category is near or over its limit.
func (e Evaluation) HasAlerts() bool {
	return len(e.Near) > 0 || len(e.Over) > 0
}

// Alerts returns the results that produced a warning.
func (e Evaluation) Alerts() []Result {
	var out []Result
	for _, r := range e.Results {
		if r.Status.Alerting() {
			out = append(out, r)
		}
	}
	return out
}

// Evaluator applies a classifier to every budgeted category. Overrides
// replace Default for individual categories.
type Evaluator struct {
	Default   Classifier
	Overrides map[string]Classifier
}

// NewEvaluator returns an Evaluator using c for every category.
func NewEvaluator(c Classifier) Evaluator {
	return Evaluator{Default: c}
}

func (e Evaluator) classifierFor(category string) Classifier {
	if c, ok := e.Overrides[category]; ok && c != nil {
		return c
	}
	if e.Default == nil {
		return RatioClassifier{}
	}
	return e.Default
}

// Evaluate classifies each category of byCategory against table.
//
// Unnamed categories, categories missing from the table and categories with
// a non-positive ceiling are skipped without error.
func (e Evaluator) Evaluate(byCategory []core.CategoryTotal, table Table) (Evaluation, error) {
	var ev Evaluation
	for _, c := range byCategory {
		ceiling, ok := table.Ceiling(c.Name)
		if !ok {
			continue
		}
		status, err := e.classifierFor(c.Name).Classify(c.Amount, ceiling)
		if err != nil {
			return Evaluation{}, fmt.Errorf("classify %q: %w", c.Name, err)
		}
		r := Result{
			Category: c.Name,
			Spent:    c.Amount,
			Budget:   ceiling,
			Ratio:    c.Amount.Div(ceiling),
			Status:   status,
		}
		ev.Results = append(ev.Results, r)
		switch status {
		case OverLimit:
			ev.Over = append(ev.Over, FormatOver(r))
		case NearLimit:
			ev.Near = append(ev.Near, FormatNear(r))
		}
	}
	return ev, nil
}

// Evaluate classifies byCategory with the ratio strategy at nearThreshold
// and returns the near-limit and over-limit warnings.
func Evaluate(byCategory []core.CategoryTotal, table Table, nearThreshold float64) (near, over []string, err error) {
	c, err := NewRatioClassifier(nearThreshold)
	if err != nil {
		return nil, nil, err
	}
	ev, err := NewEvaluator(c).Evaluate(byCategory, table)
	if err != nil {
		return nil, nil, err
	}
	return ev.Near, ev.Over, nil
}
