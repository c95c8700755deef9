package in

import (
	"context"

	"keyloop/internal/modules/score/dto"
	scorein "keyloop/internal/modules/score/port/in"
)

type CLIHandler struct {
	usecase scorein.Usecase
}

func NewCLIHandler(usecase scorein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Sections(ctx context.Context, path, hand string, bars int) (dto.AnalyzeOutput, error) {
	return h.usecase.Analyze(ctx, dto.AnalyzeInput{Path: path, Hand: hand, BarsPerSection: bars})
}
