package repository

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/qarzbook/ledgercore/internal/apperrors"
	"github.com/qarzbook/ledgercore/internal/cache"
	"github.com/qarzbook/ledgercore/internal/decode"
	"github.com/qarzbook/ledgercore/internal/ledger"
	"github.com/qarzbook/ledgercore/internal/models"
	"github.com/qarzbook/ledgercore/internal/validate"
)

// ListDebts returns the debt collection, cache-first. Same degradation
// rules as ListContacts: cached value on failure, empty list as last resort.
func (r *Repository) ListDebts(ctx context.Context, forceRefresh bool) []models.DebtRecord {
	if records, ok := r.caches.Debts.Get(ctx, forceRefresh); ok {
		return records
	}

	records, err := r.refreshDebts(ctx)
	if err != nil {
		r.logger.Warn("debt refresh failed, serving cached or empty", zap.Error(err))
		if cached, ok := r.caches.Debts.Peek(ctx); ok {
			return cached
		}
		return []models.DebtRecord{}
	}
	return records
}

func (r *Repository) refreshDebts(ctx context.Context) ([]models.DebtRecord, error) {
	result, err := r.sharedFetch(ctx, cache.KeyDebts, func(ctx context.Context) (any, error) {
		seq := r.caches.Debts.NextSeq()
		env, err := r.request(ctx, http.MethodGet, "/debts", nil)
		if err != nil {
			return nil, err
		}

		var diag decode.Diagnostics
		debts := r.decoder.Debts(env.Data, &diag)
		r.logDiagnostics("debts", &diag)

		sortDebts(debts)
		r.caches.Debts.Put(ctx, seq, debts)
		return debts, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.DebtRecord), nil
}

// ListDebtsByContact prefers the server-side filter endpoint and falls back
// to filtering the full collection client-side. Both paths produce identical
// results for the same backing data.
func (r *Repository) ListDebtsByContact(ctx context.Context, contactID string) []models.DebtRecord {
	debts, err := r.serverFilteredDebts(ctx, contactID)
	if err == nil {
		return debts
	}

	r.logger.Debug("server-side debt filter unavailable, filtering client-side",
		zap.String("contact_id", contactID), zap.Error(err))

	return filterByContact(r.ListDebts(ctx, false), contactID)
}

func (r *Repository) serverFilteredDebts(ctx context.Context, contactID string) ([]models.DebtRecord, error) {
	env, err := r.request(ctx, http.MethodGet, "/debts?contactId="+url.QueryEscape(contactID), nil)
	if err != nil {
		return nil, err
	}
	var diag decode.Diagnostics
	debts := r.decoder.Debts(env.Data, &diag)
	r.logDiagnostics("debts", &diag)
	sortDebts(debts)
	return debts, nil
}

// verifiedDebtsByContact confirms the contact's debt state against the
// upstream. Unlike ListDebtsByContact it reports failure instead of
// degrading, so callers can tell "no debts" from "debt state unknown".
func (r *Repository) verifiedDebtsByContact(ctx context.Context, contactID string) ([]models.DebtRecord, error) {
	debts, err := r.serverFilteredDebts(ctx, contactID)
	if err == nil {
		return debts, nil
	}

	all, refreshErr := r.refreshDebts(ctx)
	if refreshErr != nil {
		return nil, refreshErr
	}
	return filterByContact(all, contactID), nil
}

func filterByContact(debts []models.DebtRecord, contactID string) []models.DebtRecord {
	filtered := []models.DebtRecord{}
	for _, d := range debts {
		if d.ContactID == contactID {
			filtered = append(filtered, d)
		}
	}
	sortDebts(filtered)
	return filtered
}

// CreateDebt validates locally, then creates the debt upstream. Creating a
// debt invalidates only the debts slot; contact display fields are not
// authoritative for ledger math and stay cached.
func (r *Repository) CreateDebt(ctx context.Context, input models.DebtInput) (models.DebtRecord, error) {
	if err := r.validateDebt(input); err != nil {
		return models.DebtRecord{}, err
	}

	env, err := r.request(ctx, http.MethodPost, "/debts", debtPayload(input))
	if err != nil {
		return models.DebtRecord{}, err
	}

	var diag decode.Diagnostics
	debt := r.decoder.Debt(env.Data, &diag)
	r.logDiagnostics("debts", &diag)

	r.caches.Debts.Invalidate(ctx)
	return debt, nil
}

// UpdateDebt validates locally, then updates the debt upstream.
func (r *Repository) UpdateDebt(ctx context.Context, recordID string, input models.DebtInput) (models.DebtRecord, error) {
	if err := r.validateDebt(input); err != nil {
		return models.DebtRecord{}, err
	}

	env, err := r.request(ctx, http.MethodPut, "/debts/"+recordID, debtPayload(input))
	if err != nil {
		return models.DebtRecord{}, err
	}

	var diag decode.Diagnostics
	debt := r.decoder.Debt(env.Data, &diag)
	r.logDiagnostics("debts", &diag)

	r.caches.Debts.Invalidate(ctx)
	return debt, nil
}

// DeleteDebt removes the record upstream and invalidates the debts slot.
func (r *Repository) DeleteDebt(ctx context.Context, recordID string) error {
	if _, err := r.request(ctx, http.MethodDelete, "/debts/"+recordID, nil); err != nil {
		return err
	}
	r.caches.Debts.Invalidate(ctx)
	return nil
}

// MarkAsPaid settles a debt. Idempotent on success: marking an already-paid
// record succeeds without an upstream call or state change. Settling appends
// a payment record upstream, so both the debts and payments slots are
// invalidated (the one documented cross-invalidation).
func (r *Repository) MarkAsPaid(ctx context.Context, recordID string) (models.DebtRecord, error) {
	var known *models.DebtRecord
	for _, d := range r.ListDebts(ctx, false) {
		if d.RecordID == recordID {
			if d.IsPaidBack {
				return d, nil
			}
			known = &d
			break
		}
	}

	env, err := r.request(ctx, http.MethodPut, "/debts/"+recordID+"/paid", nil)
	if err != nil {
		return models.DebtRecord{}, err
	}

	var diag decode.Diagnostics
	debt := r.decoder.Debt(env.Data, &diag)
	r.logDiagnostics("debts", &diag)
	if debt.Amount.IsZero() && debt.Description == "" && known != nil {
		// Some deployments answer the settle with an empty body.
		debt = *known
	}
	// The requested id is authoritative; an empty echo would otherwise carry
	// a generated one.
	debt.RecordID = recordID
	debt.IsPaidBack = true

	r.caches.Debts.Invalidate(ctx)
	r.caches.Payments.Invalidate(ctx)
	return debt, nil
}

// GetOverview prefers the backend's pre-aggregated summary and recomputes
// from the full debt collection when the summary call fails or its shape is
// unrecognized. Never returns an error: the fallback path works from the
// same degraded collection that ListDebts serves.
func (r *Repository) GetOverview(ctx context.Context, forceRefresh bool) models.Overview {
	env, err := r.request(ctx, http.MethodGet, "/overview", nil)
	if err == nil {
		var diag decode.Diagnostics
		if overview, ok := r.decoder.Overview(env.Data, &diag); ok {
			r.logDiagnostics("overview", &diag)
			return overview
		}
	} else {
		r.logger.Warn("overview endpoint failed, recomputing from debts", zap.Error(err))
	}

	return ledger.Summarize(r.ListDebts(ctx, forceRefresh), r.now())
}

func (r *Repository) validateDebt(input models.DebtInput) error {
	fields := validate.Fields(r.validator.Struct(&input))
	if !input.Amount.IsPositive() {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["amount"] = "must be greater than zero"
	}
	if len(fields) > 0 {
		return apperrors.Validation(fields)
	}
	return nil
}

// debtPayload builds the upstream request body using the primary alias for
// each field.
func debtPayload(input models.DebtInput) map[string]any {
	payload := map[string]any{
		"contactId":   input.ContactID,
		"amount":      input.Amount,
		"description": input.Description,
		"isMyDebt":    input.IsMyDebt,
	}
	if input.ContactName != "" {
		payload["contactName"] = input.ContactName
	}
	if !input.DueDate.IsZero() {
		payload["dueDate"] = input.DueDate.Format(time.RFC3339)
	}
	return payload
}

// debtLess orders newest-first with the record id as tiebreaker, so the
// server-filter and client-filter paths return identical lists.
func debtLess(a, b models.DebtRecord) bool {
	if !a.CreatedDate.Equal(b.CreatedDate) {
		return a.CreatedDate.After(b.CreatedDate)
	}
	return a.RecordID < b.RecordID
}

func sortDebts(debts []models.DebtRecord) {
	sort.SliceStable(debts, func(i, j int) bool {
		return debtLess(debts[i], debts[j])
	})
}
