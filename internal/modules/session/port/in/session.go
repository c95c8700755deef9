package in

import (
	"context"

	"keyloop/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context) (dto.StartOutput, error)
	SetSong(ctx context.Context, key, title string) error
	Tick(ctx context.Context, isPlaying bool) error
	RecordKeyPress(ctx context.Context) error
	RecordSectionCompleted(ctx context.Context) error
	GetActive(ctx context.Context) (dto.ActiveSessionOutput, error)
	End(ctx context.Context) (dto.EndOutput, error)
	Stats(ctx context.Context) (dto.StatsOutput, error)
	History(ctx context.Context, limit int) ([]dto.SessionOutput, error)
}
