package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qarzbook/ledgercore/internal/decode"
	"github.com/qarzbook/ledgercore/internal/models"
)

var repoNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*Repository, *MockTransport) {
	t.Helper()
	tr := &MockTransport{}
	dec := decode.New(30).WithClock(func() time.Time { return repoNow })
	caches := MemoryCaches(5*time.Minute, zap.NewNop())
	repo := New(tr, dec, caches, zap.NewNop()).WithClock(func() time.Time { return repoNow })
	return repo, tr
}

func TestListContacts_CacheFirst(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/contacts", nil).
		Return(okEnvelope(`[{"id":"c2","fullName":"bek"},{"id":"c1","fullName":"Ana"}]`), nil).Once()

	first := repo.ListContacts(ctx, false)
	require.Len(t, first, 2)
	// Case-insensitive alphabetical order.
	assert.Equal(t, "Ana", first[0].FullName)
	assert.Equal(t, "bek", first[1].FullName)

	// Second read is served from cache; the mock would reject a second call.
	second := repo.ListContacts(ctx, false)
	assert.Equal(t, first, second)
	tr.AssertExpectations(t)
}

func TestListContacts_ForceRefreshRefetches(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/contacts", nil).
		Return(okEnvelope(`[{"id":"c1","fullName":"Ana"}]`), nil).Twice()

	repo.ListContacts(ctx, false)
	repo.ListContacts(ctx, true)
	tr.AssertExpectations(t)
}

func TestListContacts_TransportFailureFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/contacts", nil).
		Return(okEnvelope(`[{"id":"c1","fullName":"Ana"}]`), nil).Once()
	repo.ListContacts(ctx, false)

	tr.On("Request", mock.Anything, "GET", "/contacts", nil).
		Return(nil, assert.AnError)

	contacts := repo.ListContacts(ctx, true)
	require.Len(t, contacts, 1, "stale cache beats an error on read paths")
	assert.Equal(t, "c1", contacts[0].ID)
}

func TestListContacts_TransportFailureWithColdCacheIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/contacts", nil).Return(nil, assert.AnError)

	contacts := repo.ListContacts(ctx, false)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}

func TestRefresh_AtMostOneInFlight(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/contacts", nil).
		Run(func(args mock.Arguments) { time.Sleep(50 * time.Millisecond) }).
		Return(okEnvelope(`[{"id":"c1","fullName":"Ana"}]`), nil).Once()

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]models.Contact, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = repo.ListContacts(ctx, false)
		}(i)
	}
	wg.Wait()

	for _, contacts := range results {
		require.Len(t, contacts, 1)
	}
	tr.AssertExpectations(t)
	tr.AssertNumberOfCalls(t, "Request", 1)
}

func TestSharedFetch_CallerCancellationDoesNotCancelFetch(t *testing.T) {
	repo, tr := newTestRepo(t)

	release := make(chan struct{})
	tr.On("Request", mock.Anything, "GET", "/contacts", nil).
		Run(func(args mock.Arguments) {
			<-release
			ctx := args.Get(0).(context.Context)
			assert.NoError(t, ctx.Err(), "shared fetch must be detached from the initiating caller")
		}).
		Return(okEnvelope(`[{"id":"c1","fullName":"Ana"}]`), nil).Once()

	cancelled, cancel := context.WithCancel(context.Background())
	done := make(chan []models.Contact, 1)
	go func() { done <- repo.ListContacts(cancelled, false) }()

	// Give the fetch time to start, then abandon the caller.
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)
	<-done

	// The fetch completed and the cache holds its result.
	cached := repo.ListContacts(context.Background(), false)
	require.Len(t, cached, 1)
	tr.AssertNumberOfCalls(t, "Request", 1)
}

func TestGetOverview_ServerSummaryPreferred(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/overview", nil).
		Return(okEnvelope(`{"totalIOwe":65,"totalTheyOwe":100,"activeCount":4,"overdueCount":2}`), nil).Once()

	ov := repo.GetOverview(ctx, false)
	assert.Equal(t, 4, ov.ActiveCount)
	assert.Equal(t, 2, ov.OverdueCount)
	tr.AssertExpectations(t)
}

func TestGetOverview_FallsBackToClientRecompute(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/overview", nil).Return(nil, assert.AnError).Once()
	tr.On("Request", mock.Anything, "GET", "/debts", nil).
		Return(okEnvelope(`[
			{"recordId":"d1","amount":50,"isMyDebt":true,"createdDate":"2024-03-01T00:00:00Z"},
			{"recordId":"d2","amount":20,"isMyDebt":false,"createdDate":"2024-02-01T00:00:00Z"},
			{"recordId":"d3","amount":99,"isMyDebt":true,"isPaidBack":true,"createdDate":"2024-01-01T00:00:00Z"}
		]`), nil).Once()

	ov := repo.GetOverview(ctx, false)
	assert.Equal(t, 2, ov.ActiveCount)
	assert.Equal(t, "50", ov.TotalIOwe.String())
	assert.Equal(t, "20", ov.TotalTheyOwe.String())
	// d2's derived due date (created + 30d) is in the past at repoNow.
	assert.Equal(t, 1, ov.OverdueCount)
	tr.AssertExpectations(t)
}

func TestGetOverview_UnrecognizedSummaryShapeRecomputes(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/overview", nil).
		Return(okEnvelope(`{"data":"maintenance"}`), nil).Once()
	tr.On("Request", mock.Anything, "GET", "/debts", nil).
		Return(okEnvelope(`[]`), nil).Once()

	ov := repo.GetOverview(ctx, false)
	assert.Equal(t, 0, ov.ActiveCount)
	assert.True(t, ov.TotalIOwe.IsZero())
	tr.AssertExpectations(t)
}
