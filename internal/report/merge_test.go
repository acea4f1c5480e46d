package report

import (
	"testing"

	"budgetwatch/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonths(t *testing.T) {
	got := Months(sample())
	assert.Equal(t, []core.MonthKey{"2025-02", "2025-03", "2025-04"}, got)
	assert.Empty(t, Months(nil))
}

func TestInMonth(t *testing.T) {
	march := InMonth(sample(), "2025-03")
	require.Len(t, march, 5)
	assert.Equal(t, "2025-03-10", march[0].Date.String())
	for i := 1; i < len(march); i++ {
		assert.False(t, march[i].Date.After(march[i-1].Date.Time))
	}

	all := InMonth(sample(), "")
	require.Len(t, all, 7)
	assert.Equal(t, "2025-04-01", all[0].Date.String())
}

func TestShares(t *testing.T) {
	s, err := Summarize(sample(), "2025-03", known)
	require.NoError(t, err)

	shares := Shares(s)
	require.Len(t, shares, 2)
	assert.Equal(t, "Transport", shares[0].Category)
	assert.True(t, shares[0].Percent.Equal(decimal.RequireFromString("42.86")), shares[0].Percent.String())
	assert.Equal(t, "Food", shares[1].Category)
	assert.True(t, shares[1].Percent.Equal(decimal.RequireFromString("57.14")), shares[1].Percent.String())

	empty, err := Summarize(nil, "2025-03", known)
	require.NoError(t, err)
	assert.Nil(t, Shares(empty))
}
