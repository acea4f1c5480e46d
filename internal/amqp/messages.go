package amqp

import (
	"encoding/json"
	"time"

	"budgetwatch/internal/budget"
	"budgetwatch/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetAlertMessage is published for every category that is near or over
// its monthly ceiling.
type BudgetAlertMessage struct {
	ID        string          `json:"id"`
	Month     core.MonthKey   `json:"month"`
	Category  string          `json:"category"`
	Status    string          `json:"status"`
	Spent     decimal.Decimal `json:"spent"`
	Budget    decimal.Decimal `json:"budget"`
	Percent   int64           `json:"percent"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewBudgetAlertMessage builds the message for one classified category.
func NewBudgetAlertMessage(month core.MonthKey, r budget.Result) *BudgetAlertMessage {
	text := budget.FormatNear(r)
	if r.Status == budget.OverLimit {
		text = budget.FormatOver(r)
	}
	return &BudgetAlertMessage{
		ID:        uuid.NewString(),
		Month:     month,
		Category:  r.Category,
		Status:    r.Status.String(),
		Spent:     r.Spent,
		Budget:    r.Budget,
		Percent:   r.Percent(),
		Message:   text,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON decodes a message body.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
