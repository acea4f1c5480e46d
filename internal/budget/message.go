package budget

import (
	"fmt"
	"strings"

	"budgetwatch/internal/core"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	overMarker = "⛔"
	nearMarker = "⚠"
	okMarker   = "✅"
)

// FormatOver renders an over-limit warning, e.g.
// "⛔ Food over budget: 3,200 / 3,000 (107%)".
func FormatOver(r Result) string {
	return fmt.Sprintf("%s %s over budget: %s / %s (%d%%)",
		overMarker, r.Category, FormatAmount(r.Spent), FormatAmount(r.Budget), r.Percent())
}

// FormatNear renders a near-limit warning, e.g.
// "⚠ Transport approaching budget limit: 1,250 / 1,500 (83%)".
func FormatNear(r Result) string {
	return fmt.Sprintf("%s %s approaching budget limit: %s / %s (%d%%)",
		nearMarker, r.Category, FormatAmount(r.Spent), FormatAmount(r.Budget), r.Percent())
}

// FormatAmount renders whole currency units with thousands separators.
func FormatAmount(d decimal.Decimal) string {
	return humanize.Comma(core.WholeUnits(d))
}

// Headline picks what to show for a month: over-limit warnings win over
// near-limit ones, and a month with neither reads as OK.
func Headline(ev Evaluation) string {
	switch {
	case len(ev.Over) > 0:
		return overMarker + " Over budget:\n" + strings.Join(ev.Over, "\n")
	case len(ev.Near) > 0:
		return nearMarker + " Approaching budget limit:\n" + strings.Join(ev.Near, "\n")
	default:
		return okMarker + " Budget OK"
	}
}

// FormatReport renders the plain-text monthly report.
func FormatReport(s core.MonthlySummary, ev Evaluation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Month: %s\n", s.Month)
	fmt.Fprintf(&b, "Income: $ %s\n", FormatAmount(s.Income))
	fmt.Fprintf(&b, "Expenses: $ %s\n", FormatAmount(s.ExpenseTotal))
	fmt.Fprintf(&b, "Balance: $ %s\n\n", FormatAmount(s.Balance()))
	b.WriteString(Headline(ev))
	return b.String()
}
