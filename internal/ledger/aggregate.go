// Package ledger computes derived views over canonical debt records. All
// functions are pure: no I/O, no mutation of inputs, byte-identical output
// for identical (records, now) inputs.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/qarzbook/ledgercore/internal/models"
)

// TotalOwedByMe sums unpaid debts where the user is the debtor.
func TotalOwedByMe(debts []models.DebtRecord) decimal.Decimal {
	total := decimal.Zero
	for _, d := range debts {
		if d.IsMyDebt && !d.IsPaidBack {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// TotalOwedToMe sums unpaid debts where the contact is the debtor.
func TotalOwedToMe(debts []models.DebtRecord) decimal.Decimal {
	total := decimal.Zero
	for _, d := range debts {
		if !d.IsMyDebt && !d.IsPaidBack {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// NetBalance is the signed per-contact sum of unpaid debts: positive means
// the contact owes the user net, negative means the user owes the contact.
func NetBalance(debts []models.DebtRecord, contactID string) decimal.Decimal {
	balance := decimal.Zero
	for _, d := range debts {
		if d.ContactID != contactID || d.IsPaidBack {
			continue
		}
		if d.IsMyDebt {
			balance = balance.Sub(d.Amount)
		} else {
			balance = balance.Add(d.Amount)
		}
	}
	return balance
}

// Summarize computes the overview totals in a single pass. Each field equals
// the corresponding standalone function's result.
func Summarize(debts []models.DebtRecord, now time.Time) models.Overview {
	ov := models.Overview{
		TotalIOwe:    decimal.Zero,
		TotalTheyOwe: decimal.Zero,
	}
	for _, d := range debts {
		if d.IsPaidBack {
			continue
		}
		ov.ActiveCount++
		if d.IsOverdue(now) {
			ov.OverdueCount++
		}
		if d.IsMyDebt {
			ov.TotalIOwe = ov.TotalIOwe.Add(d.Amount)
		} else {
			ov.TotalTheyOwe = ov.TotalTheyOwe.Add(d.Amount)
		}
	}
	return ov
}
