package repository

import (
	"context"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/qarzbook/ledgercore/internal/cache"
	"github.com/qarzbook/ledgercore/internal/decode"
	"github.com/qarzbook/ledgercore/internal/models"
)

// ListPayments returns the settlement history, cache-first, newest first.
// Payments are append-only upstream; this layer never mutates them.
func (r *Repository) ListPayments(ctx context.Context, forceRefresh bool) []models.PaymentRecord {
	if records, ok := r.caches.Payments.Get(ctx, forceRefresh); ok {
		return records
	}

	records, err := r.refreshPayments(ctx)
	if err != nil {
		r.logger.Warn("payment refresh failed, serving cached or empty", zap.Error(err))
		if cached, ok := r.caches.Payments.Peek(ctx); ok {
			return cached
		}
		return []models.PaymentRecord{}
	}
	return records
}

func (r *Repository) refreshPayments(ctx context.Context) ([]models.PaymentRecord, error) {
	result, err := r.sharedFetch(ctx, cache.KeyPayments, func(ctx context.Context) (any, error) {
		seq := r.caches.Payments.NextSeq()
		env, err := r.request(ctx, http.MethodGet, "/payments", nil)
		if err != nil {
			return nil, err
		}

		var diag decode.Diagnostics
		payments := r.decoder.Payments(env.Data, &diag)
		r.logDiagnostics("payments", &diag)

		sort.SliceStable(payments, func(i, j int) bool {
			return paymentLess(payments[i], payments[j])
		})
		r.caches.Payments.Put(ctx, seq, payments)
		return payments, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.PaymentRecord), nil
}

func paymentLess(a, b models.PaymentRecord) bool {
	return a.PaymentDate.After(b.PaymentDate)
}
