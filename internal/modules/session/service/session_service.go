package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"keyloop/internal/modules/session/domain"
	sessionout "keyloop/internal/modules/session/port/out"
	"keyloop/internal/platform/clock"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/id"
	"keyloop/internal/platform/logging"
)

type SessionService struct {
	clock   clock.Clock
	idGen   id.Generator
	stats   sessionout.StatsStore
	journal sessionout.SessionJournal
	tick    time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	active *domain.Accumulator
}

func NewSessionService(clock clock.Clock, idGen id.Generator, stats sessionout.StatsStore, journal sessionout.SessionJournal, tick time.Duration, logger *zap.Logger) *SessionService {
	return &SessionService{clock: clock, idGen: idGen, stats: stats, journal: journal, tick: tick, logger: logging.OrNop(logger)}
}

func (s *SessionService) Start(_ context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return domain.Snapshot{}, apperrors.ErrActiveSessionExists
	}
	s.active = domain.NewAccumulator(s.idGen.New(), s.clock.Now(), s.tick)
	return s.active.Snapshot(), nil
}

func (s *SessionService) SetSong(key, title string) error {
	return s.with(func(a *domain.Accumulator) { a.SetSong(key, title) })
}

func (s *SessionService) Tick(isPlaying bool) error {
	return s.with(func(a *domain.Accumulator) { a.Tick(isPlaying) })
}

func (s *SessionService) RecordKeyPress() error {
	return s.with(func(a *domain.Accumulator) { a.RecordKeyPress() })
}

func (s *SessionService) RecordSectionCompleted() error {
	return s.with(func(a *domain.Accumulator) { a.RecordSectionCompleted() })
}

func (s *SessionService) Active() (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return domain.Snapshot{}, apperrors.ErrNoActiveSession
	}
	return s.active.Snapshot(), nil
}

// End flushes the open session into the statistics once and closes it. A
// session without practice time records nothing. Store failures are logged
// and do not fail the teardown.
func (s *SessionService) End(ctx context.Context) (domain.Session, bool, error) {
	s.mu.Lock()
	active := s.active
	s.active = nil
	s.mu.Unlock()
	if active == nil {
		return domain.Session{}, false, apperrors.ErrNoActiveSession
	}
	now := s.clock.Now()
	session, ok := active.Flush(now)
	if !ok {
		return domain.Session{}, false, nil
	}

	stats, err := s.stats.Load(ctx)
	if err != nil {
		s.logger.Warn("practice stats unreadable, session not aggregated", zap.String("session", session.ID), zap.Error(err))
	} else {
		stats.Record(session, now)
		if err := s.stats.Save(ctx, stats); err != nil {
			s.logger.Warn("practice stats not saved", zap.String("session", session.ID), zap.Error(err))
		}
	}
	if s.journal != nil {
		if path, err := s.journal.Save(ctx, session); err != nil {
			s.logger.Warn("session journal not written", zap.String("session", session.ID), zap.Error(err))
		} else {
			s.logger.Info("session recorded", zap.String("session", session.ID), zap.String("path", path), zap.Float64("minutes", session.DurationMinutes))
		}
	}
	return session, true, nil
}

func (s *SessionService) Stats(ctx context.Context) (domain.PracticeStats, error) {
	return s.stats.Load(ctx)
}

func (s *SessionService) History(ctx context.Context, limit int) ([]domain.Session, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.Recent(ctx, limit)
}

func (s *SessionService) Now() time.Time {
	return s.clock.Now()
}

func (s *SessionService) with(apply func(*domain.Accumulator)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return apperrors.ErrNoActiveSession
	}
	apply(s.active)
	return nil
}
