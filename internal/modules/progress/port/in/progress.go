package in

import (
	"context"

	"keyloop/internal/modules/progress/dto"
)

type Usecase interface {
	Open(ctx context.Context, input dto.OpenInput) (dto.Progress, error)
	MarkComplete(ctx context.Context, index int) (dto.Progress, error)
	SetCurrent(ctx context.Context, index int) (dto.Progress, error)
	Current(ctx context.Context) (dto.Progress, error)
	List(ctx context.Context) ([]dto.Record, error)
}
