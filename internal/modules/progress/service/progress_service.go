package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"keyloop/internal/modules/progress/domain"
	progressout "keyloop/internal/modules/progress/port/out"
	"keyloop/internal/platform/clock"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/logging"
)

// ProgressService tracks the open song. Store failures never block a
// mutation: the tracker is updated first and the write is best-effort.
type ProgressService struct {
	store  progressout.ProgressStore
	clock  clock.Clock
	logger *zap.Logger

	mu      sync.Mutex
	tracker *domain.Tracker
}

func NewProgressService(store progressout.ProgressStore, clock clock.Clock, logger *zap.Logger) *ProgressService {
	return &ProgressService{store: store, clock: clock, logger: logging.OrNop(logger)}
}

// Open makes identity the active song. A stored record is restored; without
// one the tracker starts at section 0 with nothing complete. Open writes
// nothing.
func (s *ProgressService) Open(ctx context.Context, identity domain.SongIdentity, sectionCount int) (domain.View, bool, error) {
	if err := identity.Validate(); err != nil {
		return domain.View{}, false, err
	}
	if sectionCount < 0 {
		return domain.View{}, false, fmt.Errorf("%w: negative section count", apperrors.ErrInvalidInput)
	}
	record, found, err := s.store.Load(ctx, identity.Key())
	if err != nil {
		s.logger.Warn("progress unreadable, starting fresh", zap.String("song", identity.Key()), zap.Error(err))
		found = false
	}
	var tracker *domain.Tracker
	if found {
		tracker = domain.RestoreTracker(identity, sectionCount, record)
	} else {
		tracker = domain.NewTracker(identity, sectionCount)
	}
	s.mu.Lock()
	s.tracker = tracker
	s.mu.Unlock()
	return tracker.View(), found, nil
}

func (s *ProgressService) MarkComplete(ctx context.Context, index int) (domain.View, error) {
	return s.mutate(ctx, func(t *domain.Tracker) (bool, error) { return t.MarkComplete(index) })
}

func (s *ProgressService) SetCurrent(ctx context.Context, index int) (domain.View, error) {
	return s.mutate(ctx, func(t *domain.Tracker) (bool, error) { return t.SetCurrent(index) })
}

// Active returns the open song's state, or ErrNoSong.
func (s *ProgressService) Active() (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return domain.View{}, apperrors.ErrNoSong
	}
	return s.tracker.View(), nil
}

func (s *ProgressService) List(ctx context.Context) ([]domain.Entry, error) {
	return s.store.List(ctx)
}

func (s *ProgressService) mutate(ctx context.Context, apply func(*domain.Tracker) (bool, error)) (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return domain.View{}, apperrors.ErrNoSong
	}
	changed, err := apply(s.tracker)
	if err != nil {
		return s.tracker.View(), err
	}
	if changed {
		s.persist(ctx)
	}
	return s.tracker.View(), nil
}

func (s *ProgressService) persist(ctx context.Context) {
	key := s.tracker.Identity().Key()
	if err := s.store.Save(ctx, key, s.tracker.Record(s.clock.Now())); err != nil {
		s.logger.Warn("progress not saved", zap.String("song", key), zap.Error(err))
	}
}
