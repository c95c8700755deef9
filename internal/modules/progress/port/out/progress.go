package out

import (
	"context"

	"keyloop/internal/modules/progress/domain"
)

type ProgressStore interface {
	Load(ctx context.Context, key string) (domain.Record, bool, error)
	Save(ctx context.Context, key string, record domain.Record) error
	List(ctx context.Context) ([]domain.Entry, error)
}
