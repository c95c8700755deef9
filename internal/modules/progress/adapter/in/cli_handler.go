package in

import (
	"context"
	"fmt"

	"keyloop/internal/modules/progress/dto"
	progressin "keyloop/internal/modules/progress/port/in"
	apperrors "keyloop/internal/platform/errors"
)

type CLIHandler struct {
	usecase progressin.Usecase
}

func NewCLIHandler(usecase progressin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.Record, error) {
	return h.usecase.List(ctx)
}

// Show finds records by identity key or by file name. Several files can
// share a name, so a name may match more than one record.
func (h CLIHandler) Show(ctx context.Context, keyOrName string) ([]dto.Record, error) {
	all, err := h.usecase.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []dto.Record
	for _, record := range all {
		if record.Key == keyOrName || record.FileName == keyOrName {
			out = append(out, record)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no progress for %q", apperrors.ErrNotFound, keyOrName)
	}
	return out, nil
}
