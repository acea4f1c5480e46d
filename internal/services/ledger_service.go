package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budgetwatch/internal/budget"
	"budgetwatch/internal/cache"
	"budgetwatch/internal/core"
	"budgetwatch/internal/ledger"
	"budgetwatch/internal/metrics"
	"budgetwatch/internal/report"

	"github.com/shopspring/decimal"
)

// AlertPublisher delivers near and over limit results for a month.
type AlertPublisher interface {
	PublishBudgetAlerts(ctx context.Context, month core.MonthKey, results []budget.Result) error
}

// MonthlyReport is everything shown for one month.
type MonthlyReport struct {
	Month      core.MonthKey
	Summary    core.MonthlySummary
	Evaluation budget.Evaluation
	Headline   string
	Shares     []report.Share
	Text       string
}

// Balance is income minus expenses for the month.
func (r MonthlyReport) Balance() decimal.Decimal {
	return r.Summary.Balance()
}

// RecordResult is returned after a transaction is stored.
type RecordResult struct {
	Ref   string
	Month core.MonthKey
	// Alert is the over-limit list if any category is over, else the
	// near-limit list, else empty.
	Alert  string
	Alerts []budget.Result
}

// LedgerService records transactions and reports on months.
type LedgerService struct {
	store     ledger.Store
	table     budget.Table
	evaluator budget.Evaluator
	publisher AlertPublisher
	reports   cache.Cache[MonthlyReport]
	now       func() time.Time

	// gens counts writes per month; a report built from an older
	// generation is not cached.
	mu   sync.Mutex
	gens map[core.MonthKey]uint64
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithPublisher enables alert publication. A nil publisher disables it.
func WithPublisher(p AlertPublisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

// WithReportCache caches monthly reports until the month changes.
func WithReportCache(c cache.Cache[MonthlyReport]) Option {
	return func(s *LedgerService) { s.reports = c }
}

// WithClock replaces time.Now for the default report month.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func NewLedgerService(store ledger.Store, table budget.Table, evaluator budget.Evaluator, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:     store,
		table:     table,
		evaluator: evaluator,
		now:       time.Now,
		gens:      make(map[core.MonthKey]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Budgets returns the configured budget table.
func (s *LedgerService) Budgets() budget.Table {
	out := make(budget.Table, len(s.table))
	for k, v := range s.table {
		out[k] = v
	}
	return out
}

// Categories returns the known expense categories.
func (s *LedgerService) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

// Record stores tx and re-evaluates its month. Publishing failures are
// logged and never fail the call.
func (s *LedgerService) Record(ctx context.Context, tx core.Transaction) (RecordResult, error) {
	if err := tx.Validate(); err != nil {
		return RecordResult{}, err
	}
	ref, err := s.store.Append(ctx, tx)
	if err != nil {
		return RecordResult{}, fmt.Errorf("append transaction: %w", err)
	}
	metrics.TransactionsRecorded.WithLabelValues(string(tx.Kind)).Inc()

	month := tx.Date.MonthKey()
	s.invalidate(month)

	res := RecordResult{Ref: ref, Month: month}
	rep, err := s.Report(ctx, month)
	if err != nil {
		// stored already; the alert is best effort
		slog.ErrorContext(ctx, "Failed to evaluate month after record",
			"ref", ref, "month", month, "error", err)
		return res, nil
	}

	res.Alerts = headlineResults(rep.Evaluation)
	if len(res.Alerts) > 0 {
		res.Alert = rep.Headline
		s.publish(ctx, month, res.Alerts)
	}
	return res, nil
}

// headlineResults returns the over-limit results, or the near-limit ones when
// nothing is over.
func headlineResults(ev budget.Evaluation) []budget.Result {
	var over, near []budget.Result
	for _, r := range ev.Results {
		switch r.Status {
		case budget.OverLimit:
			over = append(over, r)
		case budget.NearLimit:
			near = append(near, r)
		}
	}
	if len(over) > 0 {
		return over
	}
	return near
}

func (s *LedgerService) publish(ctx context.Context, month core.MonthKey, results []budget.Result) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Alert publisher not configured, skipping budget alerts")
		return
	}
	if err := s.publisher.PublishBudgetAlerts(ctx, month, results); err != nil {
		metrics.AlertPublishFailures.Inc()
		slog.ErrorContext(ctx, "Failed to publish budget alerts",
			"month", month, "alerts", len(results), "error", err)
	}
}

// Report builds the monthly report. An empty month means the current one.
func (s *LedgerService) Report(ctx context.Context, month core.MonthKey) (MonthlyReport, error) {
	if month == "" {
		month = core.CurrentMonth(s.now())
	} else {
		parsed, err := core.ParseMonthKey(string(month))
		if err != nil {
			return MonthlyReport{}, err
		}
		month = parsed
	}

	if s.reports != nil {
		if rep, ok := s.reports.Get(string(month)); ok {
			metrics.ReportCache.WithLabelValues("hit").Inc()
			return rep, nil
		}
		metrics.ReportCache.WithLabelValues("miss").Inc()
	}

	gen := s.generation(month)
	txs, err := s.store.Snapshot(ctx)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("snapshot: %w", err)
	}
	stored, err := s.store.Categories(ctx)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("categories: %w", err)
	}
	known := mergeCategories(stored, s.table.Categories())

	summary, err := report.Summarize(txs, month, known)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("summarize %s: %w", month, err)
	}
	ev, err := s.evaluator.Evaluate(summary.ByCategory, s.table)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("evaluate %s: %w", month, err)
	}
	observe(ev)

	rep := MonthlyReport{
		Month:      month,
		Summary:    summary,
		Evaluation: ev,
		Headline:   budget.Headline(ev),
		Shares:     report.Shares(summary),
		Text:       budget.FormatReport(summary, ev),
	}
	s.cacheReport(month, gen, rep)
	return rep, nil
}

func (s *LedgerService) generation(month core.MonthKey) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[month]
}

// invalidate bumps the month's generation and drops its cached report.
func (s *LedgerService) invalidate(month core.MonthKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[month]++
	if s.reports != nil {
		s.reports.Delete(string(month))
	}
}

// cacheReport keeps rep only if no write to month happened since gen.
func (s *LedgerService) cacheReport(month core.MonthKey, gen uint64, rep MonthlyReport) {
	if s.reports == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[month] != gen {
		return
	}
	s.reports.Set(string(month), rep)
}

// mergeCategories appends the budgeted names missing from the stored list.
func mergeCategories(stored, budgeted []string) []string {
	seen := make(map[string]bool, len(stored)+len(budgeted))
	out := make([]string, 0, len(stored)+len(budgeted))
	for _, list := range [][]string{stored, budgeted} {
		for _, c := range list {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func observe(ev budget.Evaluation) {
	metrics.Evaluations.Inc()
	for _, r := range ev.Alerts() {
		metrics.Alerts.WithLabelValues(r.Status.String()).Inc()
	}
}

// Months lists months with activity, ascending.
func (s *LedgerService) Months(ctx context.Context) ([]core.MonthKey, error) {
	txs, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return report.Months(txs), nil
}

// Transactions lists transactions newest first. An empty month lists all.
func (s *LedgerService) Transactions(ctx context.Context, month core.MonthKey) ([]core.Transaction, error) {
	if month != "" {
		parsed, err := core.ParseMonthKey(string(month))
		if err != nil {
			return nil, err
		}
		month = parsed
	}
	txs, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return report.InMonth(txs, month), nil
}

// Ready reports whether the store can serve requests.
func (s *LedgerService) Ready(ctx context.Context) error {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	_, err := s.store.Categories(ctx)
	return err
}

// IsValidation reports whether err was caused by bad input.
func IsValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidKind,
		core.ErrInvalidAmount,
		core.ErrEmptyCategory,
		core.ErrIncomeCategory,
		core.ErrReservedCategory,
		core.ErrNoteTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

