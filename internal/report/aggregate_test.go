package report

import (
	"errors"
	"testing"

	"budgetwatch/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var known = []string{"Food", "Transport", "Entertainment", "Living", "Education", "Medical"}

func amt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertAmount(t *testing.T, want int64, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, got.Equal(amt(want)), "want %d, got %s %v", want, got, msgAndArgs)
}

func sample() []core.Transaction {
	return []core.Transaction{
		core.NewIncome(core.NewDate(2025, 3, 1), amt(5000), "salary"),
		core.NewExpense(core.NewDate(2025, 3, 3), "Transport", amt(300), "fuel"),
		core.NewExpense(core.NewDate(2025, 3, 1), "Food", amt(200), "groceries"),
		core.NewExpense(core.NewDate(2025, 3, 3), "Food", amt(150), "lunch"),
		core.NewExpense(core.NewDate(2025, 3, 10), "Food", amt(50), ""),
		core.NewExpense(core.NewDate(2025, 2, 28), "Food", amt(999), "previous month"),
		core.NewIncome(core.NewDate(2025, 4, 1), amt(5000), "next month"),
	}
}

func TestSummarize_IncomeAndExpense(t *testing.T) {
	txs := []core.Transaction{
		core.NewIncome(core.NewDate(2025, 5, 2), amt(5000), ""),
		core.NewExpense(core.NewDate(2025, 5, 3), "Food", amt(1200), "groceries"),
	}

	s, err := Summarize(txs, "2025-05", known)
	require.NoError(t, err)

	assertAmount(t, 5000, s.Income)
	assertAmount(t, 1200, s.ExpenseTotal)
	assertAmount(t, 3800, s.Balance())
	food, ok := s.Spent("Food")
	require.True(t, ok)
	assertAmount(t, 1200, food)
}

func TestSummarize_FiltersMonth(t *testing.T) {
	s, err := Summarize(sample(), "2025-03", known)
	require.NoError(t, err)

	assert.Equal(t, core.MonthKey("2025-03"), s.Month)
	assertAmount(t, 5000, s.Income)
	assertAmount(t, 700, s.ExpenseTotal)
	food, _ := s.Spent("Food")
	assertAmount(t, 400, food)
	transport, _ := s.Spent("Transport")
	assertAmount(t, 300, transport)
}

func TestSummarize_KnownCategoriesAlwaysPresent(t *testing.T) {
	s, err := Summarize(nil, "2025-03", known)
	require.NoError(t, err)

	require.Len(t, s.ByCategory, len(known))
	for _, name := range known {
		v, ok := s.Spent(name)
		assert.Truef(t, ok, "category %s missing", name)
		assert.True(t, v.IsZero())
	}
	assert.Empty(t, s.CumulativeDaily)
	assert.True(t, s.ExpenseTotal.IsZero())
}

func TestSummarize_CategoryOrder(t *testing.T) {
	s, err := Summarize(sample(), "2025-03", []string{"Food", "Medical", "Travel"})
	require.NoError(t, err)

	var names []string
	for _, c := range s.ByCategory {
		names = append(names, c.Name)
	}
	// Spent categories in first-seen order, then unseen known ones.
	assert.Equal(t, []string{"Transport", "Food", "Medical", "Travel"}, names)
}

func TestSummarize_CumulativeDaily(t *testing.T) {
	s, err := Summarize(sample(), "2025-03", known)
	require.NoError(t, err)

	require.Len(t, s.CumulativeDaily, 3)
	wantDays := []string{"2025-03-01", "2025-03-03", "2025-03-10"}
	wantTotals := []int64{200, 650, 700}
	for i, p := range s.CumulativeDaily {
		assert.Equal(t, wantDays[i], p.Date.String())
		assertAmount(t, wantTotals[i], p.Total, p.Date)
	}

	last := s.CumulativeDaily[len(s.CumulativeDaily)-1]
	assert.True(t, last.Total.Equal(s.ExpenseTotal))
	for i := 1; i < len(s.CumulativeDaily); i++ {
		assert.True(t, s.CumulativeDaily[i].Total.GreaterThanOrEqual(s.CumulativeDaily[i-1].Total))
	}
}

func TestSummarize_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		tx   core.Transaction
		want error
	}{
		{"zero amount", core.NewExpense(core.NewDate(2025, 3, 1), "Food", decimal.Zero, ""), core.ErrInvalidAmount},
		{"negative amount", core.NewExpense(core.NewDate(2025, 3, 1), "Food", amt(-10), ""), core.ErrInvalidAmount},
		{"missing category", core.NewExpense(core.NewDate(2025, 3, 1), "", amt(10), ""), core.ErrEmptyCategory},
		{"other month still checked", core.NewExpense(core.NewDate(2024, 1, 1), "", amt(10), ""), core.ErrEmptyCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := append(sample(), tt.tx)
			_, err := Summarize(txs, "2025-03", known)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSummarize_Additive(t *testing.T) {
	txs := sample()
	whole, err := Summarize(txs, "2025-03", known)
	require.NoError(t, err)

	// Every split point partitions the slice into two disjoint subsets.
	for split := 0; split <= len(txs); split++ {
		a, err := Summarize(txs[:split], "2025-03", known)
		require.NoError(t, err)
		b, err := Summarize(txs[split:], "2025-03", known)
		require.NoError(t, err)

		merged := Merge(a, b)
		assert.True(t, merged.Income.Equal(whole.Income), "split %d income", split)
		assert.True(t, merged.ExpenseTotal.Equal(whole.ExpenseTotal), "split %d expense", split)
		require.Len(t, merged.ByCategory, len(whole.ByCategory))
		for _, c := range whole.ByCategory {
			got, ok := merged.Spent(c.Name)
			require.True(t, ok)
			assert.True(t, got.Equal(c.Amount), "split %d category %s", split, c.Name)
		}
		require.Len(t, merged.CumulativeDaily, len(whole.CumulativeDaily))
		for i := range whole.CumulativeDaily {
			assert.True(t, merged.CumulativeDaily[i].Total.Equal(whole.CumulativeDaily[i].Total))
			assert.True(t, merged.CumulativeDaily[i].Date.Equal(whole.CumulativeDaily[i].Date.Time))
		}
	}
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	txs := sample()
	before := append([]core.Transaction(nil), txs...)
	_, err := Summarize(txs, "2025-03", known)
	require.NoError(t, err)
	assert.Equal(t, before, txs)
}
