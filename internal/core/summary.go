package core

import "github.com/shopspring/decimal"

// CategoryTotal represents an expense amount aggregated by category name.
type CategoryTotal struct {
	Name   string
	Amount decimal.Decimal
}

// DailyTotal is one point of the cumulative expense series.
type DailyTotal struct {
	Date  Date
	Total decimal.Decimal
}

// MonthlySummary aggregates one month of transactions.
type MonthlySummary struct {
	Month        MonthKey
	Income       decimal.Decimal
	ExpenseTotal decimal.Decimal
	// ByCategory keeps categories in the order they were first aggregated:
	// spent categories by first transaction, then known categories with no spend.
	ByCategory []CategoryTotal
	// CumulativeDaily holds one running total per day with expense activity,
	// ascending by date. Days without expenses are not filled in.
	CumulativeDaily []DailyTotal
}

// Balance is income minus expenses.
func (s MonthlySummary) Balance() decimal.Decimal {
	return s.Income.Sub(s.ExpenseTotal)
}

// Spent returns the total for a category and whether it is present.
func (s MonthlySummary) Spent(category string) (decimal.Decimal, bool) {
	for _, c := range s.ByCategory {
		if c.Name == category {
			return c.Amount, true
		}
	}
	return decimal.Zero, false
}
