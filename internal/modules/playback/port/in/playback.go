package in

import (
	"context"

	"keyloop/internal/modules/playback/dto"
)

type Usecase interface {
	Load(input dto.LoadInput) dto.State
	Play() dto.State
	Stop() dto.State
	Toggle() dto.State
	Next(ctx context.Context) (dto.State, bool)
	Previous(ctx context.Context) (dto.State, bool)
	Select(ctx context.Context, index int) (dto.State, error)
	SetLoop(enabled bool) dto.State
	SetTempoScale(scale float64) (dto.State, error)
	SetVolume(volume int) (dto.State, error)
	Seek(position float64) (dto.State, error)
	PressKey(pitch string) error
	State() dto.State
}
