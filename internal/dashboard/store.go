package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Refresh outcomes, also used as metric labels.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeStale       = "stale"
	OutcomeCanceled    = "canceled"
)

// RefreshObserver is told the outcome of every refresh.
type RefreshObserver interface {
	DashboardRefresh(outcome string)
}

// Store holds the dashboard state. Refreshes are numbered when issued; a result is applied
// only if no later-issued refresh has already been applied, so the newest request wins
// regardless of completion order. Cancelled fetches never change state.
type Store struct {
	src      Source
	now      func() time.Time
	log      *zap.Logger
	observer RefreshObserver

	mu        sync.Mutex
	issued    uint64
	applied   uint64
	inFlight  int
	status    Status
	snapshot  *Snapshot
	fetchedAt time.Time
	lastErr   error
}

type StoreOption func(*Store)

func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func WithStoreLogger(log *zap.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

func WithRefreshObserver(o RefreshObserver) StoreOption {
	return func(s *Store) { s.observer = o }
}

func NewStore(src Source, opts ...StoreOption) *Store {
	s := &Store{src: src, now: time.Now, log: zap.NewNop(), status: StatusLoading}
	for _, o := range opts {
		o(s)
	}
	return s
}

// View returns the current view model.
func (s *Store) View() ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Snapshot returns the last successfully fetched snapshot and when it arrived.
func (s *Store) Snapshot() (*Snapshot, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.fetchedAt
}

func (s *Store) viewLocked() ViewModel {
	var vm ViewModel
	switch s.status {
	case StatusReady:
		vm = Build(s.snapshot)
	case StatusUnavailable:
		vm = Unavailable(s.lastErr)
	default:
		vm = Build(nil)
	}
	vm.Refreshing = s.inFlight > 0
	if !s.fetchedAt.IsZero() {
		t := s.fetchedAt
		vm.FetchedAt = &t
	}
	return vm
}

// Refresh fetches a new snapshot and returns the resulting view. The error is non-nil when
// this fetch failed (wrapping ErrDataUnavailable) or was cancelled.
func (s *Store) Refresh(ctx context.Context) (ViewModel, error) {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.inFlight++
	s.mu.Unlock()

	start := s.now()
	snap, err := s.src.Fetch(ctx)
	if err == nil {
		err = snap.Validate()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--

	outcome := s.applyLocked(ctx, seq, snap, err)
	s.observe(outcome)
	s.log.Info("dashboard_refresh",
		zap.String("component", "dashboard"),
		zap.Uint64("seq", seq),
		zap.String("outcome", outcome),
		zap.Duration("duration", s.now().Sub(start)),
		zap.Error(err),
	)

	vm := s.viewLocked()
	switch outcome {
	case OutcomeCanceled:
		if err == nil {
			err = ctx.Err()
		}
		return vm, err
	case OutcomeUnavailable:
		return vm, s.lastErr
	}
	return vm, nil
}

func (s *Store) applyLocked(ctx context.Context, seq uint64, snap *Snapshot, err error) string {
	// A caller that gave up discards its result; a deadline is an ordinary failure.
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return OutcomeCanceled
	}
	if seq < s.applied {
		return OutcomeStale
	}
	s.applied = seq

	if err != nil {
		if !errors.Is(err, ErrDataUnavailable) {
			err = fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		s.status = StatusUnavailable
		s.lastErr = err
		return OutcomeUnavailable
	}

	if snap == nil {
		snap = &Snapshot{}
	}
	s.snapshot = snap
	s.fetchedAt = s.now()
	s.status = StatusReady
	s.lastErr = nil
	return OutcomeOK
}

func (s *Store) observe(outcome string) {
	if s.observer != nil {
		s.observer.DashboardRefresh(outcome)
	}
}
