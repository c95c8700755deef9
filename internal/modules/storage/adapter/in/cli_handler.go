package in

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"keyloop/internal/modules/storage/dto"
	storagein "keyloop/internal/modules/storage/port/in"
)

type CLIHandler struct {
	usecase storagein.Usecase
}

func NewCLIHandler(usecase storagein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Preferences(ctx context.Context) (dto.Preferences, error) {
	return h.usecase.Preferences(ctx)
}

// SetPreference updates one preference from its CLI spelling.
func (h CLIHandler) SetPreference(ctx context.Context, name, value string) (dto.Preferences, error) {
	var patch dto.PreferencesPatch
	switch strings.ToLower(name) {
	case "playbackrate", "rate", "tempo":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return dto.Preferences{}, fmt.Errorf("parse %s: %w", name, err)
		}
		patch.PlaybackRate = &v
	case "volume":
		v, err := strconv.Atoi(value)
		if err != nil {
			return dto.Preferences{}, fmt.Errorf("parse %s: %w", name, err)
		}
		patch.Volume = &v
	case "selectedhand", "hand":
		patch.SelectedHand = &value
	case "barspersection", "bars":
		v, err := strconv.Atoi(value)
		if err != nil {
			return dto.Preferences{}, fmt.Errorf("parse %s: %w", name, err)
		}
		patch.BarsPerSection = &v
	case "islooping", "loop":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return dto.Preferences{}, fmt.Errorf("parse %s: %w", name, err)
		}
		patch.IsLooping = &v
	case "theme":
		patch.Theme = &value
	default:
		return dto.Preferences{}, fmt.Errorf("unknown preference %q", name)
	}
	return h.usecase.SavePreferences(ctx, patch)
}

func (h CLIHandler) RecentFiles(ctx context.Context) ([]dto.RecentFile, error) {
	return h.usecase.RecentFiles(ctx)
}

func (h CLIHandler) PracticeStats(ctx context.Context) (dto.PracticeStats, error) {
	return h.usecase.PracticeStats(ctx)
}

func (h CLIHandler) Export(ctx context.Context, w io.Writer) error {
	data, err := h.usecase.Export(ctx)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func (h CLIHandler) Import(ctx context.Context, path string) (dto.ImportOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.ImportOutput{}, fmt.Errorf("read backup: %w", err)
	}
	return h.usecase.Import(ctx, data)
}

func (h CLIHandler) Reset(ctx context.Context) error {
	return h.usecase.ClearAll(ctx)
}
