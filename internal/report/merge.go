package report

import (
	"sort"

	"budgetwatch/internal/core"

	"github.com/shopspring/decimal"
)

// Merge adds two summaries of the same month element-wise: income, expense
// total and each category total. Categories keep a's order followed by those
// only b has. The cumulative series is rebuilt from the per-day increments
// of both inputs.
func Merge(a, b core.MonthlySummary) core.MonthlySummary {
	out := core.MonthlySummary{
		Month:        a.Month,
		Income:       a.Income.Add(b.Income),
		ExpenseTotal: a.ExpenseTotal.Add(b.ExpenseTotal),
	}
	if out.Month == "" {
		out.Month = b.Month
	}

	totals := newCategoryTotals()
	for _, c := range a.ByCategory {
		totals.add(c.Name, c.Amount)
	}
	for _, c := range b.ByCategory {
		totals.add(c.Name, c.Amount)
	}
	out.ByCategory = totals.list()

	daily := make(map[core.Date]decimal.Decimal)
	for _, series := range [][]core.DailyTotal{a.CumulativeDaily, b.CumulativeDaily} {
		prev := decimal.Zero
		for _, p := range series {
			daily[p.Date] = daily[p.Date].Add(p.Total.Sub(prev))
			prev = p.Total
		}
	}
	out.CumulativeDaily = cumulate(daily)
	return out
}

// Months lists the distinct months with at least one transaction, ascending.
func Months(txs []core.Transaction) []core.MonthKey {
	seen := make(map[core.MonthKey]struct{})
	var out []core.MonthKey
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		k := tx.Date.MonthKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InMonth returns the transactions of month sorted newest first. An empty
// month selects every transaction.
func InMonth(txs []core.Transaction, month core.MonthKey) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if month == "" || month.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out
}
