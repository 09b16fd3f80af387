// Package cache implements the time-boxed, per-collection ledger cache.
// The cache is a read-through accelerator, never a source of truth: every
// store failure degrades to a miss.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Collection keys. One slot exists per collection.
const (
	KeyContacts = "ledger:contacts"
	KeyDebts    = "ledger:debts"
	KeyPayments = "ledger:payments"
)

// Slot is the unit of storage: a whole collection plus its refresh stamp.
// Replacement is wholesale, so readers never observe a torn slot.
type Slot[T any] struct {
	Records       []T       `json:"records"`
	LastRefreshed time.Time `json:"last_refreshed"`
	Seq           uint64    `json:"seq"`
}

// Store persists slots. Implementations must replace a slot atomically.
type Store[T any] interface {
	Load(ctx context.Context, key string) (Slot[T], bool, error)
	Save(ctx context.Context, key string, slot Slot[T]) error
	Delete(ctx context.Context, key string) error
}

// Cache manages one collection slot with TTL validity and
// last-writer-by-sequence puts.
type Cache[T any] struct {
	key    string
	ttl    time.Duration
	store  Store[T]
	logger *zap.Logger
	now    func() time.Time
	less   func(a, b T) bool

	mu  sync.Mutex // serializes read-modify-write of the slot
	seq uint64
}

func New[T any](key string, ttl time.Duration, store Store[T], logger *zap.Logger) *Cache[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache[T]{
		key:    key,
		ttl:    ttl,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the clock. Test hook.
func (c *Cache[T]) WithClock(now func() time.Time) *Cache[T] {
	c.now = now
	return c
}

// WithLess sets the collection's ordering. UpsertSingle re-sorts with it, so
// replacing or appending one record cannot break the order a full refresh
// established.
func (c *Cache[T]) WithLess(less func(a, b T) bool) *Cache[T] {
	c.less = less
	return c
}

// Get returns the cached records when the slot is valid and forceRefresh is
// false. ok=false signals the caller must refetch and Put.
func (c *Cache[T]) Get(ctx context.Context, forceRefresh bool) ([]T, bool) {
	if forceRefresh {
		return nil, false
	}
	slot, found := c.load(ctx)
	if !found || !c.isValid(slot) {
		return nil, false
	}
	return slot.Records, true
}

// Peek returns the last stored records regardless of TTL. Read paths fall
// back to this when the transport fails.
func (c *Cache[T]) Peek(ctx context.Context) ([]T, bool) {
	slot, found := c.load(ctx)
	if !found || len(slot.Records) == 0 {
		return nil, false
	}
	return slot.Records, true
}

// NextSeq issues a fetch-sequence token. Taken before the network call,
// compared at Put time. The counter is process-local: a slot shared through
// redis assumes a single writing instance per collection.
func (c *Cache[T]) NextSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Put replaces the slot wholesale and stamps LastRefreshed. A put carrying a
// token older than the stored slot's is dropped: the cache reflects the most
// recently started fetch, not the last to complete.
func (c *Cache[T]) Put(ctx context.Context, seq uint64, records []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, found, err := c.store.Load(ctx, c.key)
	if err != nil {
		c.logger.Warn("cache load failed during put", zap.String("key", c.key), zap.Error(err))
	}
	if found && slot.Seq > seq {
		c.logger.Debug("dropping stale cache put",
			zap.String("key", c.key),
			zap.Uint64("put_seq", seq),
			zap.Uint64("slot_seq", slot.Seq),
		)
		return false
	}

	next := Slot[T]{Records: records, LastRefreshed: c.now(), Seq: seq}
	if err := c.store.Save(ctx, c.key, next); err != nil {
		c.logger.Warn("cache save failed", zap.String("key", c.key), zap.Error(err))
		return false
	}
	return true
}

// Invalidate clears the slot entirely. Called after any mutation affecting
// the collection.
func (c *Cache[T]) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Delete(ctx, c.key); err != nil {
		c.logger.Warn("cache invalidate failed", zap.String("key", c.key), zap.Error(err))
	}
}

// UpsertSingle updates or appends one record inside a still-valid slot, so a
// fetch-by-id does not force a later full-list refetch. LastRefreshed is
// preserved: freshening one record does not extend the whole slot's life.
func (c *Cache[T]) UpsertSingle(ctx context.Context, record T, match func(T) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, found, err := c.store.Load(ctx, c.key)
	if err != nil || !found {
		return
	}

	replaced := false
	records := make([]T, len(slot.Records))
	copy(records, slot.Records)
	for i, existing := range records {
		if match(existing) {
			records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, record)
	}
	if c.less != nil {
		sort.SliceStable(records, func(i, j int) bool { return c.less(records[i], records[j]) })
	}

	slot.Records = records
	if err := c.store.Save(ctx, c.key, slot); err != nil {
		c.logger.Warn("cache upsert failed", zap.String("key", c.key), zap.Error(err))
	}
}

func (c *Cache[T]) isValid(slot Slot[T]) bool {
	if len(slot.Records) == 0 {
		return false
	}
	return c.now().Sub(slot.LastRefreshed) < c.ttl
}

func (c *Cache[T]) load(ctx context.Context) (Slot[T], bool) {
	slot, found, err := c.store.Load(ctx, c.key)
	if err != nil {
		c.logger.Warn("cache load failed", zap.String("key", c.key), zap.Error(err))
		return Slot[T]{}, false
	}
	return slot, found
}
