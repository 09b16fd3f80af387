package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Default grace period applied when the backend omits a due date.
const DefaultDueDays = 30

// DebtRecord is the canonical in-memory debt entry, independent of the
// backend JSON shape it was decoded from. ContactName is a denormalized
// display copy and may drift from Contact.FullName; it is never used for
// ledger math.
type DebtRecord struct {
	RecordID    string          `json:"record_id"`
	ContactID   string          `json:"contact_id"`
	ContactName string          `json:"contact_name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"required,min=3,max=500"`
	CreatedDate time.Time       `json:"created_date"`
	DueDate     time.Time       `json:"due_date"`
	IsMyDebt    bool            `json:"is_my_debt"`
	IsPaidBack  bool            `json:"is_paid_back"`
}

// IsOverdue reports whether the debt is unpaid and past due at the given
// instant. Derived, never persisted.
func (d DebtRecord) IsOverdue(now time.Time) bool {
	return !d.IsPaidBack && now.After(d.DueDate)
}

// DebtInput carries user-supplied debt fields for create/update. DueDate is
// optional; when zero, the repository lets the decoder fill
// CreatedDate + DefaultDueDays on the way back.
type DebtInput struct {
	ContactID   string          `json:"contact_id" validate:"required"`
	ContactName string          `json:"contact_name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"required,min=3,max=500"`
	DueDate     time.Time       `json:"due_date,omitempty"`
	IsMyDebt    bool            `json:"is_my_debt"`
}

// Overview holds the derived ledger totals shown on the home screen.
type Overview struct {
	TotalIOwe    decimal.Decimal `json:"total_i_owe"`
	TotalTheyOwe decimal.Decimal `json:"total_they_owe"`
	ActiveCount  int             `json:"active_count"`
	OverdueCount int             `json:"overdue_count"`
}
