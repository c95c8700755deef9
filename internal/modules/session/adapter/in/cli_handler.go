package in

import (
	"context"

	sessiondto "keyloop/internal/modules/session/dto"
	sessionin "keyloop/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Stats(ctx context.Context) (sessiondto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]sessiondto.SessionOutput, error) {
	return h.usecase.History(ctx, limit)
}
