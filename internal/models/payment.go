package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is the historical trace of a settled debt. Records are
// append-only; editing one never touches the referenced debt.
type PaymentRecord struct {
	PaymentID          string          `json:"payment_id"`
	OriginalDebtID     string          `json:"original_debt_id"`
	ContactName        string          `json:"contact_name"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	PaymentDescription string          `json:"payment_description"`
	PaymentDate        time.Time       `json:"payment_date"`
	WasMyDebt          bool            `json:"was_my_debt"`
}
