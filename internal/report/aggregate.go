// Package report turns flat transaction lists into monthly summaries.
//
// All functions here are pure: they read the snapshot they are given and
// never retain or mutate it. Callers holding a live collection must pass a
// copy or serialize access themselves.
package report

import (
	"fmt"
	"sort"

	"budgetwatch/internal/core"

	"github.com/shopspring/decimal"
)

// Summarize aggregates the transactions falling in month.
//
// Every category in known appears in ByCategory, with a zero total when it
// had no spend. Any invalid transaction aborts the aggregation with an error
// wrapping the validation failure, including those outside month, so that
// bad input is never silently dropped.
func Summarize(txs []core.Transaction, month core.MonthKey, known []string) (core.MonthlySummary, error) {
	summary := core.MonthlySummary{
		Month:        month,
		Income:       decimal.Zero,
		ExpenseTotal: decimal.Zero,
	}

	byCategory := newCategoryTotals()
	daily := make(map[core.Date]decimal.Decimal)

	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return core.MonthlySummary{}, fmt.Errorf("transaction %d (%s): %w", i, tx.Date, err)
		}
		if !month.Contains(tx.Date) {
			continue
		}
		switch tx.Kind {
		case core.Income:
			summary.Income = summary.Income.Add(tx.Amount)
		case core.Expense:
			summary.ExpenseTotal = summary.ExpenseTotal.Add(tx.Amount)
			byCategory.add(tx.Category, tx.Amount)
			day := tx.Date.StartOfDay()
			daily[day] = daily[day].Add(tx.Amount)
		}
	}

	for _, name := range known {
		if name == "" {
			continue
		}
		byCategory.ensure(name)
	}

	summary.ByCategory = byCategory.list()
	summary.CumulativeDaily = cumulate(daily)
	return summary, nil
}

// cumulate emits one running total per active day, ascending by date.
func cumulate(daily map[core.Date]decimal.Decimal) []core.DailyTotal {
	days := make([]core.Date, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j].Time) })

	out := make([]core.DailyTotal, 0, len(days))
	running := decimal.Zero
	for _, d := range days {
		running = running.Add(daily[d])
		out = append(out, core.DailyTotal{Date: d, Total: running})
	}
	return out
}

// categoryTotals is an insertion-ordered map of category sums.
type categoryTotals struct {
	index map[string]int
	items []core.CategoryTotal
}

func newCategoryTotals() *categoryTotals {
	return &categoryTotals{index: make(map[string]int)}
}

func (c *categoryTotals) ensure(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	c.index[name] = len(c.items)
	c.items = append(c.items, core.CategoryTotal{Name: name, Amount: decimal.Zero})
	return len(c.items) - 1
}

func (c *categoryTotals) add(name string, amount decimal.Decimal) {
	i := c.ensure(name)
	c.items[i].Amount = c.items[i].Amount.Add(amount)
}

func (c *categoryTotals) list() []core.CategoryTotal {
	return append([]core.CategoryTotal(nil), c.items...)
}
