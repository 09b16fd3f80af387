// Package repository orchestrates the transport, decoder, cache and
// aggregation engine behind one API for the presentation layer. It is the
// only component that talks to the upstream backend; everything it returns
// uses canonical records and the apperrors taxonomy.
package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/qarzbook/ledgercore/internal/apperrors"
	"github.com/qarzbook/ledgercore/internal/cache"
	"github.com/qarzbook/ledgercore/internal/decode"
	"github.com/qarzbook/ledgercore/internal/models"
	"github.com/qarzbook/ledgercore/internal/transport"
	"github.com/qarzbook/ledgercore/internal/validate"
)

// Caches bundles the per-collection cache instances. One Caches value is
// constructed per app session and injected here; no package-level cache
// state exists anywhere.
type Caches struct {
	Contacts *cache.Cache[models.Contact]
	Debts    *cache.Cache[models.DebtRecord]
	Payments *cache.Cache[models.PaymentRecord]
}

// NewCaches builds the standard cache set over the given store constructors.
// Each cache carries its collection's ordering so single-record upserts keep
// the order a full refresh established.
func NewCaches(ttl time.Duration, logger *zap.Logger, newStores func() (cache.Store[models.Contact], cache.Store[models.DebtRecord], cache.Store[models.PaymentRecord])) Caches {
	contacts, debts, payments := newStores()
	return Caches{
		Contacts: cache.New(cache.KeyContacts, ttl, contacts, logger).WithLess(contactLess),
		Debts:    cache.New(cache.KeyDebts, ttl, debts, logger).WithLess(debtLess),
		Payments: cache.New(cache.KeyPayments, ttl, payments, logger).WithLess(paymentLess),
	}
}

// MemoryCaches builds the cache set on in-process stores.
func MemoryCaches(ttl time.Duration, logger *zap.Logger) Caches {
	return NewCaches(ttl, logger, func() (cache.Store[models.Contact], cache.Store[models.DebtRecord], cache.Store[models.PaymentRecord]) {
		return cache.NewMemoryStore[models.Contact](),
			cache.NewMemoryStore[models.DebtRecord](),
			cache.NewMemoryStore[models.PaymentRecord]()
	})
}

// Repository exposes ledger read/write operations with defined fallback and
// error semantics. Read paths never fail: they degrade to the last cached
// value, then to empty. Write paths always return a definite result.
type Repository struct {
	transport transport.Transport
	decoder   *decode.Decoder
	validator *validate.Helper
	caches    Caches
	logger    *zap.Logger
	now       func() time.Time

	// group enforces at most one in-flight refresh per collection.
	group singleflight.Group
}

func New(tr transport.Transport, dec *decode.Decoder, caches Caches, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		transport: tr,
		decoder:   dec,
		validator: validate.NewHelper(),
		caches:    caches,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the clock. Test hook.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// sharedFetch funnels concurrent refreshes of one collection through a
// single upstream call. A caller whose context ends stops waiting, but the
// in-flight fetch keeps running for the other waiters and still lands in the
// cache.
func (r *Repository) sharedFetch(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	ch := r.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// request performs one upstream call and maps failures onto the taxonomy.
// A nil error means env.Success is true.
func (r *Repository) request(ctx context.Context, method, path string, body any) (*transport.Envelope, error) {
	env, err := r.transport.Request(ctx, method, path, body)
	if err != nil {
		return nil, apperrors.Transport(fmt.Sprintf("upstream unreachable: %v", err), err)
	}
	if env.Success {
		return env, nil
	}
	return nil, r.classifyFailure(env, path)
}

func (r *Repository) classifyFailure(env *transport.Envelope, path string) error {
	message := env.Message
	if message == "" {
		message = "upstream request failed"
	}
	switch env.Status {
	case http.StatusNotFound:
		return &apperrors.Error{Kind: apperrors.KindNotFound, Message: message}
	case http.StatusConflict:
		return apperrors.Conflict(message)
	case http.StatusMethodNotAllowed, http.StatusNotImplemented:
		// Some backend deployments lack newer operations entirely.
		return apperrors.Unknown(fmt.Sprintf("operation unsupported by backend: %s", message), nil)
	default:
		return apperrors.Transport(message, nil)
	}
}

// logDiagnostics reports decode warnings without failing the call.
func (r *Repository) logDiagnostics(collection string, diag *decode.Diagnostics) {
	for _, warning := range diag.Warnings {
		r.logger.Warn("decode warning",
			zap.String("collection", collection),
			zap.String("warning", warning),
		)
	}
}
