package report

import (
	"budgetwatch/internal/core"

	"github.com/shopspring/decimal"
)

// Share is a category's portion of the month's expenses.
type Share struct {
	Category string
	Amount   decimal.Decimal
	Percent  decimal.Decimal // 0-100, two decimal places
}

var hundred = decimal.NewFromInt(100)

// Shares returns the categories with positive spend and their percentage of
// the month's expense total, in summary order. It is empty when nothing was
// spent.
func Shares(s core.MonthlySummary) []Share {
	if !s.ExpenseTotal.IsPositive() {
		return nil
	}
	var out []Share
	for _, c := range s.ByCategory {
		if c.Name == "" || !c.Amount.IsPositive() {
			continue
		}
		out = append(out, Share{
			Category: c.Name,
			Amount:   c.Amount,
			Percent:  c.Amount.Mul(hundred).Div(s.ExpenseTotal).Round(2),
		})
	}
	return out
}
