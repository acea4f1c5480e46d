// Package http provides the JSON API server.
//
// This file implements parsing and validation of request data.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"budgetwatch/internal/core"
)

const maxBodyBytes = 1 << 16

var errBadRequest = errors.New("malformed request")

// amountField accepts both JSON numbers and strings such as "12,5".
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amountField(n.String())
	return nil
}

// transactionRequest is the body of POST /api/transactions.
type transactionRequest struct {
	Date     string      `json:"date"`
	Kind     string      `json:"kind"`
	Category string      `json:"category"`
	Note     string      `json:"note"`
	Amount   amountField `json:"amount"`
}

// decodeTransaction reads a transaction from the request body. Decoding
// problems wrap errBadRequest; field problems wrap the core validation errors.
// A missing date means today and a missing kind means expense.
func decodeTransaction(r *http.Request, now time.Time) (core.Transaction, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var req transactionRequest
	if err := dec.Decode(&req); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	kind := core.Expense
	if strings.TrimSpace(req.Kind) != "" {
		k, err := core.ParseKind(req.Kind)
		if err != nil {
			return core.Transaction{}, err
		}
		kind = k
	}

	date := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if s := strings.TrimSpace(req.Date); s != "" {
		d, err := core.ParseDate(s)
		if err != nil {
			return core.Transaction{}, err
		}
		date = d
	}

	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.Transaction{}, err
	}

	note := sanitizeInput(req.Note)
	if kind == core.Income {
		// income always lands in the fixed category, whatever was sent
		return core.NewIncome(date, amount, note), nil
	}
	return core.NewExpense(date, sanitizeInput(req.Category), amount, note), nil
}

// parseMonthQuery reads ?month=YYYY-MM. An absent parameter yields "".
func parseMonthQuery(r *http.Request) (core.MonthKey, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return "", nil
	}
	return core.ParseMonthKey(v)
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
