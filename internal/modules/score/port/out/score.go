package out

import (
	"context"

	"keyloop/internal/modules/score/domain"
)

type NoteSource interface {
	Load(ctx context.Context, path string) (domain.Song, error)
}
