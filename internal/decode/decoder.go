// Package decode turns heterogeneous backend JSON into canonical records.
// Decoding never fails: missing or malformed fields degrade to safe defaults
// and a warning on the call's Diagnostics.
package decode

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qarzbook/ledgercore/internal/models"
)

// Diagnostics collects per-call decode warnings. A nil *Diagnostics is valid
// and discards warnings.
type Diagnostics struct {
	Warnings []string
}

func (d *Diagnostics) warnf(format string, args ...any) {
	if d == nil {
		return
	}
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// Decoder maps backend JSON objects to canonical records. It is stateless
// apart from configuration and safe for concurrent use.
type Decoder struct {
	dueDays int
	now     func() time.Time
}

func New(dueDays int) *Decoder {
	if dueDays <= 0 {
		dueDays = models.DefaultDueDays
	}
	return &Decoder{dueDays: dueDays, now: time.Now}
}

// WithClock returns a copy using the given clock. Test hook.
func (dc *Decoder) WithClock(now func() time.Time) *Decoder {
	copied := *dc
	copied.now = now
	return &copied
}

// Contact decodes one backend contact object.
func (dc *Decoder) Contact(raw json.RawMessage, diag *Diagnostics) models.Contact {
	obj := asObject(raw, diag, "contact")
	return models.Contact{
		ID:          stringField(obj, contactAliases.id, dc.fallbackID(diag, "contact")),
		FullName:    stringField(obj, contactAliases.fullName, ""),
		PhoneNumber: stringField(obj, contactAliases.phoneNumber, ""),
		Email:       stringField(obj, contactAliases.email, ""),
	}
}

// Debt decodes one backend debt object. An absent due date becomes
// createdDate + dueDays.
func (dc *Decoder) Debt(raw json.RawMessage, diag *Diagnostics) models.DebtRecord {
	obj := asObject(raw, diag, "debt")

	created, ok := timeField(obj, debtAliases.createdDate)
	if !ok {
		created = dc.now()
	}
	due, ok := timeField(obj, debtAliases.dueDate)
	if !ok {
		due = created.AddDate(0, 0, dc.dueDays)
	}

	return models.DebtRecord{
		RecordID:    stringField(obj, debtAliases.recordID, dc.fallbackID(diag, "debt")),
		ContactID:   stringField(obj, debtAliases.contactID, ""),
		ContactName: stringField(obj, debtAliases.contactName, ""),
		Amount:      decimalField(obj, debtAliases.amount, diag, "debt.amount"),
		Description: stringField(obj, debtAliases.description, ""),
		CreatedDate: created,
		DueDate:     due,
		IsMyDebt:    boolField(obj, debtAliases.isMyDebt),
		IsPaidBack:  boolField(obj, debtAliases.isPaidBack),
	}
}

// Payment decodes one backend payment object.
func (dc *Decoder) Payment(raw json.RawMessage, diag *Diagnostics) models.PaymentRecord {
	obj := asObject(raw, diag, "payment")

	paidAt, ok := timeField(obj, paymentAliases.paymentDate)
	if !ok {
		paidAt = dc.now()
	}

	return models.PaymentRecord{
		PaymentID:          stringField(obj, paymentAliases.paymentID, dc.fallbackID(diag, "payment")),
		OriginalDebtID:     stringField(obj, paymentAliases.originalDebtID, ""),
		ContactName:        stringField(obj, paymentAliases.contactName, ""),
		PaidAmount:         decimalField(obj, paymentAliases.paidAmount, diag, "payment.paidAmount"),
		PaymentDescription: stringField(obj, paymentAliases.paymentDescription, ""),
		PaymentDate:        paidAt,
		WasMyDebt:          boolField(obj, paymentAliases.wasMyDebt),
	}
}

// Contacts decodes a collection response in any of the supported shapes.
func (dc *Decoder) Contacts(raw json.RawMessage, diag *Diagnostics) []models.Contact {
	items := unwrapCollection(raw, PluralContacts, diag)
	out := make([]models.Contact, 0, len(items))
	for _, item := range items {
		out = append(out, dc.Contact(item, diag))
	}
	return out
}

// Debts decodes a collection response in any of the supported shapes.
func (dc *Decoder) Debts(raw json.RawMessage, diag *Diagnostics) []models.DebtRecord {
	items := unwrapCollection(raw, PluralDebts, diag)
	out := make([]models.DebtRecord, 0, len(items))
	for _, item := range items {
		out = append(out, dc.Debt(item, diag))
	}
	return out
}

// Payments decodes a collection response in any of the supported shapes.
func (dc *Decoder) Payments(raw json.RawMessage, diag *Diagnostics) []models.PaymentRecord {
	items := unwrapCollection(raw, PluralPayments, diag)
	out := make([]models.PaymentRecord, 0, len(items))
	for _, item := range items {
		out = append(out, dc.Payment(item, diag))
	}
	return out
}

// Overview decodes a pre-aggregated summary response. ok is false when no
// known summary key is present, which tells the repository to recompute the
// overview from the full debt collection instead.
func (dc *Decoder) Overview(raw json.RawMessage, diag *Diagnostics) (models.Overview, bool) {
	obj := asObject(raw, diag, "overview")
	if inner, found := obj["data"]; found {
		if m, isMap := inner.(map[string]any); isMap {
			obj = m
		}
	}

	present := false
	for _, key := range overviewAliases.totalIOwe {
		if _, found := obj[key]; found {
			present = true
		}
	}
	for _, key := range overviewAliases.totalTheyOwe {
		if _, found := obj[key]; found {
			present = true
		}
	}
	if !present {
		return models.Overview{}, false
	}

	return models.Overview{
		TotalIOwe:    decimalField(obj, overviewAliases.totalIOwe, diag, "overview.totalIOwe"),
		TotalTheyOwe: decimalField(obj, overviewAliases.totalTheyOwe, diag, "overview.totalTheyOwe"),
		ActiveCount:  intField(obj, overviewAliases.activeCount, diag, "overview.activeCount"),
		OverdueCount: intField(obj, overviewAliases.overdueCount, diag, "overview.overdueCount"),
	}, true
}

func (dc *Decoder) fallbackID(diag *Diagnostics, entity string) string {
	id := uuid.NewString()
	diag.warnf("%s: no id field present, generated %s", entity, id)
	return id
}

// asObject parses raw into a generic object. Anything that is not a JSON
// object decodes as empty, so every field falls back to its default.
func asObject(raw json.RawMessage, diag *Diagnostics, entity string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		diag.warnf("%s: not a JSON object, using defaults: %v", entity, err)
		return map[string]any{}
	}
	return obj
}

// stringField resolves the first present, non-null alias as a string. The
// fallback is computed by the caller (empty string, or a generated id).
func stringField(obj map[string]any, aliases []string, fallback string) string {
	for _, key := range aliases {
		val, ok := obj[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			return v
		case float64:
			// Some deployments send numeric ids.
			return trimFloat(v)
		}
	}
	return fallback
}

// decimalField resolves a numeric field accepting both JSON numbers and
// numeric strings. An unparseable string yields zero plus a warning.
func decimalField(obj map[string]any, aliases []string, diag *Diagnostics, field string) decimal.Decimal {
	for _, key := range aliases {
		val, ok := obj[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case float64:
			return decimal.NewFromFloat(v)
		case string:
			d, err := decimal.NewFromString(v)
			if err != nil {
				diag.warnf("%s: unparseable numeric string %q, using 0", field, v)
				return decimal.Zero
			}
			return d
		}
	}
	return decimal.Zero
}

// intField resolves an integer count field with the same tolerance rules as
// decimalField.
func intField(obj map[string]any, aliases []string, diag *Diagnostics, field string) int {
	for _, key := range aliases {
		val, ok := obj[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case float64:
			return int(v)
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				diag.warnf("%s: unparseable numeric string %q, using 0", field, v)
				return 0
			}
			return n
		}
	}
	return 0
}

// boolField resolves a boolean field. Missing means false (fail closed).
func boolField(obj map[string]any, aliases []string) bool {
	for _, key := range aliases {
		val, ok := obj[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case bool:
			return v
		case string:
			return v == "true" || v == "1"
		case float64:
			return v != 0
		}
	}
	return false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeField resolves an instant field. Accepts ISO-8601 strings and unix
// second timestamps.
func timeField(obj map[string]any, aliases []string) (time.Time, bool) {
	for _, key := range aliases {
		val, ok := obj[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, v); err == nil {
					return t, true
				}
			}
		case float64:
			return time.Unix(int64(v), 0).UTC(), true
		}
	}
	return time.Time{}, false
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
