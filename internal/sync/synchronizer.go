// Package sync maintains a live, ordered mirror of the rooms collection.
// Subscribers get the complete current set on every change, never a diff.
package sync

import (
	"context"
	stdsync "sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/yashraj-ghemud/royal-state/internal/apperr"
	"github.com/yashraj-ghemud/royal-state/internal/models"
	"github.com/yashraj-ghemud/royal-state/internal/store"
)

const closeTimeout = 5 * time.Second

// Feed is one open live query. *mongo.ChangeStream satisfies it.
type Feed interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

var _ Feed = (*mongo.ChangeStream)(nil)

// Source is the slice of the store the synchronizer reads from.
type Source interface {
	List(ctx context.Context) ([]models.Listing, error)
	Watch(ctx context.Context) (Feed, error)
}

// NewRoomSource adapts the room repository to the Source interface.
func NewRoomSource(repo *store.RoomRepository) Source {
	return roomSource{repo: repo}
}

type roomSource struct {
	repo *store.RoomRepository
}

func (s roomSource) List(ctx context.Context) ([]models.Listing, error) {
	return s.repo.List(ctx)
}

func (s roomSource) Watch(ctx context.Context) (Feed, error) {
	cs, err := s.repo.Watch(ctx)
	if err != nil {
		return nil, err
	}
	return cs, nil
}

type Synchronizer struct {
	src Source
	log *zap.SugaredLogger
}

func New(src Source, log *zap.SugaredLogger) *Synchronizer {
	return &Synchronizer{src: src, log: log}
}

// Subscribe opens a live query and invokes onData with the full ordered set,
// first with the initial load and then after every store change. A transport
// failure is delivered to onError exactly once and ends the subscription;
// there is no reconnect here, the caller owns retry policy. The returned
// cancel stops delivery deterministically: after it returns, neither
// callback fires again.
func (s *Synchronizer) Subscribe(onData func([]models.Listing), onError func(error)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())

	initial, err := s.src.List(ctx)
	if err != nil {
		cancel()
		return nil, &apperr.SubscriptionError{Err: err}
	}

	feed, err := s.src.Watch(ctx)
	if err != nil {
		cancel()
		return nil, &apperr.SubscriptionError{Err: err}
	}

	sub := &subscription{
		onData:  onData,
		onError: onError,
		done:    make(chan struct{}),
	}
	sub.deliver(initial)

	go s.pump(ctx, feed, sub)

	var once stdsync.Once
	return func() {
		once.Do(func() {
			sub.close()
			cancel()
			<-sub.done
		})
	}, nil
}

func (s *Synchronizer) pump(ctx context.Context, feed Feed, sub *subscription) {
	defer close(sub.done)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		_ = feed.Close(closeCtx)
	}()

	for feed.Next(ctx) {
		// The event itself is discarded: the store's snapshot already
		// reflects the fully merged state, so re-list and hand it over.
		set, err := s.src.List(ctx)
		if err != nil {
			if ctx.Err() == nil {
				sub.fail(&apperr.SubscriptionError{Err: err})
			}
			return
		}
		sub.deliver(set)
	}

	if err := feed.Err(); err != nil && ctx.Err() == nil {
		sub.fail(&apperr.SubscriptionError{Err: err})
	}
}

type subscription struct {
	mu      stdsync.Mutex
	closed  bool
	failed  bool
	onData  func([]models.Listing)
	onError func(error)
	done    chan struct{}
}

func (s *subscription) deliver(set []models.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.failed {
		return
	}
	s.onData(set)
}

func (s *subscription) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.failed {
		return
	}
	s.failed = true
	s.onError(err)
}

func (s *subscription) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
