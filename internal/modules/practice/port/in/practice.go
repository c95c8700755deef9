package in

import (
	"context"

	"keyloop/internal/modules/practice/dto"
)

type Usecase interface {
	Start(ctx context.Context) (dto.Snapshot, error)
	LoadSong(ctx context.Context, path string) (dto.Snapshot, error)
	SetHand(ctx context.Context, hand string) (dto.Snapshot, error)
	SetBarsPerSection(ctx context.Context, bars int) (dto.Snapshot, error)
	UpdateSettings(ctx context.Context, input dto.SettingsInput) (dto.Snapshot, error)
	Play(ctx context.Context) (dto.Snapshot, error)
	Stop(ctx context.Context) (dto.Snapshot, error)
	Toggle(ctx context.Context) (dto.Snapshot, error)
	Next(ctx context.Context) (dto.Snapshot, error)
	Previous(ctx context.Context) (dto.Snapshot, error)
	SelectSection(ctx context.Context, index int) (dto.Snapshot, error)
	Seek(ctx context.Context, position float64) (dto.Snapshot, error)
	PressKey(ctx context.Context, pitch string) error
	Tick(ctx context.Context) error
	Snapshot(ctx context.Context) (dto.Snapshot, error)
	Close(ctx context.Context) (dto.CloseOutput, error)
}
