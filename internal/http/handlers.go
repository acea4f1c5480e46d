package http

import (
	"errors"
	"net/http"
	"sort"

	"budgetwatch/internal/budget"
	"budgetwatch/internal/core"
	"budgetwatch/internal/log"
	"budgetwatch/internal/report"
	"budgetwatch/internal/services"

	"github.com/shopspring/decimal"
)

type transactionDTO struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"`
	Kind     core.Kind       `json:"kind"`
	Category string          `json:"category"`
	Note     string          `json:"note,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

func toTransactionDTO(tx core.Transaction) transactionDTO {
	return transactionDTO{
		ID:       tx.ID,
		Date:     tx.Date.String(),
		Kind:     tx.Kind,
		Category: tx.Category,
		Note:     tx.Note,
		Amount:   tx.Amount,
	}
}

type recordResponse struct {
	Ref    string        `json:"ref"`
	Month  core.MonthKey `json:"month"`
	Alert  string        `json:"alert,omitempty"`
	Alerts []resultDTO   `json:"alerts"`
}

type categoryTotalDTO struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type dailyTotalDTO struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type resultDTO struct {
	budget.Result
	Percent int64 `json:"percent"`
}

func toResultDTOs(rs []budget.Result) []resultDTO {
	out := make([]resultDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, resultDTO{Result: r, Percent: r.Percent()})
	}
	return out
}

type evaluationDTO struct {
	Results []resultDTO `json:"results"`
	Near    []string    `json:"near"`
	Over    []string    `json:"over"`
}

type reportResponse struct {
	Month           core.MonthKey      `json:"month"`
	Income          decimal.Decimal    `json:"income"`
	ExpenseTotal    decimal.Decimal    `json:"expense_total"`
	Balance         decimal.Decimal    `json:"balance"`
	ByCategory      []categoryTotalDTO `json:"by_category"`
	CumulativeDaily []dailyTotalDTO    `json:"cumulative_daily"`
	Evaluation      evaluationDTO      `json:"evaluation"`
	Headline        string             `json:"headline"`
	Shares          []report.Share     `json:"shares"`
	Text            string             `json:"text"`
}

func toReportResponse(rep services.MonthlyReport) reportResponse {
	s := rep.Summary
	out := reportResponse{
		Month:           rep.Month,
		Income:          s.Income,
		ExpenseTotal:    s.ExpenseTotal,
		Balance:         rep.Balance(),
		ByCategory:      make([]categoryTotalDTO, 0, len(s.ByCategory)),
		CumulativeDaily: make([]dailyTotalDTO, 0, len(s.CumulativeDaily)),
		Evaluation: evaluationDTO{
			Results: toResultDTOs(rep.Evaluation.Results),
			Near:    nonNil(rep.Evaluation.Near),
			Over:    nonNil(rep.Evaluation.Over),
		},
		Headline: rep.Headline,
		Shares:   rep.Shares,
		Text:     rep.Text,
	}
	for _, c := range s.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryTotalDTO{Category: c.Name, Amount: c.Amount})
	}
	for _, d := range s.CumulativeDaily {
		out.CumulativeDaily = append(out.CumulativeDaily, dailyTotalDTO{Date: d.Date.String(), Total: d.Total})
	}
	if out.Shares == nil {
		out.Shares = []report.Share{}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type budgetDTO struct {
	Category string          `json:"category"`
	Ceiling  decimal.Decimal `json:"ceiling"`
}

type budgetsResponse struct {
	Classifier    string      `json:"classifier"`
	NearThreshold float64     `json:"near_threshold"`
	Budgets       []budgetDTO `json:"budgets"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ready(r.Context()); err != nil {
		s.logs.LogError(r.Context(), "Readiness check failed", err, log.ComponentStorage, log.OpReady, nil)
		ErrorResponse(http.StatusServiceUnavailable, "store unavailable").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tx, err := decodeTransaction(r, s.now())
	if err != nil {
		s.writeError(w, r, log.OpRecord, err)
		return
	}

	res, err := s.svc.Record(ctx, tx)
	if err != nil {
		s.writeError(w, r, log.OpRecord, err)
		return
	}

	s.logs.LogTransactionRecorded(ctx, res.Ref, string(tx.Kind), tx.Category, tx.Amount.String(), string(res.Month))
	for _, a := range res.Alerts {
		s.logs.LogBudgetAlert(ctx, "Budget alert raised", string(res.Month), a.Category, a.Status.String(), a.Percent())
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions?month="+string(res.Month)).
		Body(recordResponse{
			Ref:    res.Ref,
			Month:  res.Month,
			Alert:  res.Alert,
			Alerts: toResultDTOs(res.Alerts),
		}).
		Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	txs, err := s.svc.Transactions(r.Context(), month)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	out := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionDTO(tx))
	}
	NewJSONResponse().Body(map[string]any{"month": month, "transactions": out}).Write(w)
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.svc.Months(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	if months == nil {
		months = []core.MonthKey{}
	}
	NewJSONResponse().Body(map[string]any{"months": months}).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r)
	if err != nil {
		s.writeError(w, r, log.OpReport, err)
		return
	}
	rep, err := s.svc.Report(r.Context(), month)
	if err != nil {
		s.writeError(w, r, log.OpReport, err)
		return
	}
	NewJSONResponse().Body(toReportResponse(rep)).Write(w)
}

func (s *Server) handleBudgets(w http.ResponseWriter, _ *http.Request) {
	table := s.svc.Budgets()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	out := budgetsResponse{
		Classifier:    s.cfg.Classifier,
		NearThreshold: s.cfg.NearThreshold,
		Budgets:       make([]budgetDTO, 0, len(names)),
	}
	for _, name := range names {
		out.Budgets = append(out.Budgets, budgetDTO{Category: name, Ceiling: table[name]})
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	NewJSONResponse().Body(map[string]any{"categories": cats}).Write(w)
}

// writeError maps err to a status code. Only unexpected failures are logged
// at error level; the request logger already records the 4xx status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, errBadRequest):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, core.ErrInvalidMonthKey):
		BadRequestError(err.Error()).Write(w)
	case services.IsValidation(err):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		s.logs.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
		InternalServerError("internal error").Write(w)
	}
}
