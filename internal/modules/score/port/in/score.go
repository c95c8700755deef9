package in

import (
	"context"

	"keyloop/internal/modules/score/dto"
)

type Usecase interface {
	Load(ctx context.Context, input dto.LoadInput) (dto.Song, error)
	Segment(ctx context.Context, input dto.SegmentInput) (dto.SegmentOutput, error)
	Analyze(ctx context.Context, input dto.AnalyzeInput) (dto.AnalyzeOutput, error)
}
