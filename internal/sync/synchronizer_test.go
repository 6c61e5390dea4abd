package sync

import (
	"context"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yashraj-ghemud/royal-state/internal/apperr"
	"github.com/yashraj-ghemud/royal-state/internal/models"
)

// fakeFeed delivers one signal per value pushed into events; an error value
// terminates the stream the way a transport failure would.
type fakeFeed struct {
	events chan error
	err    error
	closed bool
	mu     stdsync.Mutex
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{events: make(chan error, 8)}
}

func (f *fakeFeed) Next(ctx context.Context) bool {
	select {
	case err, ok := <-f.events:
		if !ok {
			return false
		}
		if err != nil {
			f.mu.Lock()
			f.err = err
			f.mu.Unlock()
			return false
		}
		return true
	case <-ctx.Done():
		return false
	}
}

func (f *fakeFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeFeed) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeFeed) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeSource struct {
	mu       stdsync.Mutex
	listings []models.Listing
	listErr  error
	watchErr error
	feed     *fakeFeed
}

func (s *fakeSource) List(ctx context.Context) ([]models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]models.Listing(nil), s.listings...), nil
}

func (s *fakeSource) Watch(ctx context.Context) (Feed, error) {
	if s.watchErr != nil {
		return nil, s.watchErr
	}
	return s.feed, nil
}

func (s *fakeSource) setListings(listings []models.Listing) {
	s.mu.Lock()
	s.listings = listings
	s.mu.Unlock()
}

type recorder struct {
	mu   stdsync.Mutex
	sets [][]models.Listing
	errs []error
}

func (r *recorder) onData(set []models.Listing) {
	r.mu.Lock()
	r.sets = append(r.sets, set)
	r.mu.Unlock()
}

func (r *recorder) onError(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *recorder) snapshotCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sets)
}

func (r *recorder) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func listings(ids ...string) []models.Listing {
	out := make([]models.Listing, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Listing{ID: id})
	}
	return out
}

func TestSubscribe_DeliversInitialSnapshotThenFullSetPerChange(t *testing.T) {
	t.Parallel()

	src := &fakeSource{feed: newFakeFeed()}
	src.setListings(listings("b", "a"))
	s := New(src, zap.NewNop().Sugar())

	rec := &recorder{}
	cancel, err := s.Subscribe(rec.onData, rec.onError)
	require.NoError(t, err)
	defer cancel()

	require.Equal(t, 1, rec.snapshotCount(), "initial load is delivered synchronously")
	assert.Equal(t, listings("b", "a"), rec.sets[0])

	// an insert lands in the store: the next delivery is the whole new set,
	// not a diff
	src.setListings(listings("c", "b", "a"))
	src.feed.events <- nil
	waitFor(t, func() bool { return rec.snapshotCount() == 2 })
	assert.Equal(t, listings("c", "b", "a"), rec.sets[1])

	src.setListings(listings("c", "a"))
	src.feed.events <- nil
	waitFor(t, func() bool { return rec.snapshotCount() == 3 })
	assert.Equal(t, listings("c", "a"), rec.sets[2])
	assert.Zero(t, rec.errorCount())
}

func TestSubscribe_CancelStopsDeliveryDeterministically(t *testing.T) {
	t.Parallel()

	src := &fakeSource{feed: newFakeFeed()}
	src.setListings(listings("a"))
	s := New(src, zap.NewNop().Sugar())

	rec := &recorder{}
	cancel, err := s.Subscribe(rec.onData, rec.onError)
	require.NoError(t, err)

	cancel()

	// events after cancel must not reach the callbacks
	select {
	case src.feed.events <- nil:
	default:
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, rec.snapshotCount())
	assert.Zero(t, rec.errorCount())
	assert.True(t, src.feed.isClosed(), "the live query is closed on cancel")

	// cancel is idempotent
	cancel()
}

func TestSubscribe_TransportFailureDeliveredOnce(t *testing.T) {
	t.Parallel()

	src := &fakeSource{feed: newFakeFeed()}
	src.setListings(listings("a"))
	s := New(src, zap.NewNop().Sugar())

	rec := &recorder{}
	cancel, err := s.Subscribe(rec.onData, rec.onError)
	require.NoError(t, err)
	defer cancel()

	src.feed.events <- assert.AnError
	waitFor(t, func() bool { return rec.errorCount() == 1 })

	var subErr *apperr.SubscriptionError
	require.ErrorAs(t, rec.errs[0], &subErr)
	assert.Equal(t, 1, rec.errorCount(), "terminal error is delivered exactly once")
}

func TestSubscribe_RelistFailureTerminatesSubscription(t *testing.T) {
	t.Parallel()

	src := &fakeSource{feed: newFakeFeed()}
	src.setListings(listings("a"))
	s := New(src, zap.NewNop().Sugar())

	rec := &recorder{}
	cancel, err := s.Subscribe(rec.onData, rec.onError)
	require.NoError(t, err)
	defer cancel()

	src.mu.Lock()
	src.listErr = assert.AnError
	src.mu.Unlock()
	src.feed.events <- nil

	waitFor(t, func() bool { return rec.errorCount() == 1 })
	assert.Equal(t, 1, rec.snapshotCount(), "only the initial snapshot was delivered")
}

func TestSubscribe_InitialLoadFailureReturnsError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{feed: newFakeFeed(), listErr: assert.AnError}
	s := New(src, zap.NewNop().Sugar())

	_, err := s.Subscribe(func([]models.Listing) {}, func(error) {})
	var subErr *apperr.SubscriptionError
	require.ErrorAs(t, err, &subErr)
}

func TestSubscribe_IndependentSubscriptions(t *testing.T) {
	t.Parallel()

	// two screens, two subscriptions; cancelling one leaves the other live
	feedA, feedB := newFakeFeed(), newFakeFeed()
	src := &fakeSource{feed: feedA}
	src.setListings(listings("a"))
	s := New(src, zap.NewNop().Sugar())

	recA := &recorder{}
	cancelA, err := s.Subscribe(recA.onData, recA.onError)
	require.NoError(t, err)

	src.feed = feedB
	recB := &recorder{}
	cancelB, err := s.Subscribe(recB.onData, recB.onError)
	require.NoError(t, err)
	defer cancelB()

	cancelA()

	src.setListings(listings("b", "a"))
	feedB.events <- nil
	waitFor(t, func() bool { return recB.snapshotCount() == 2 })
	assert.Equal(t, 1, recA.snapshotCount())
}
