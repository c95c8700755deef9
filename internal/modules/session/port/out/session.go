package out

import (
	"context"

	"keyloop/internal/modules/session/domain"
)

type StatsStore interface {
	Load(ctx context.Context) (domain.PracticeStats, error)
	Save(ctx context.Context, stats domain.PracticeStats) error
}

// SessionJournal keeps one entry per finished session.
type SessionJournal interface {
	Save(ctx context.Context, session domain.Session) (string, error)
	Recent(ctx context.Context, limit int) ([]domain.Session, error)
}
