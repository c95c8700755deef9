package in

import (
	"context"
	"errors"
	"fmt"
	"time"

	"keyloop/internal/modules/practice/dto"
	practicein "keyloop/internal/modules/practice/port/in"
	apperrors "keyloop/internal/platform/errors"
)

type CLIHandler struct {
	usecase practicein.Usecase
}

func NewCLIHandler(usecase practicein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// PlayOptions selects what the play command practices. Nil settings keep the
// stored preference. Section is 1-based.
type PlayOptions struct {
	Path     string
	Section  int
	Settings dto.SettingsInput
	Poll     time.Duration
}

// Play loads a song, plays one section and waits for it to finish. A looping
// section plays until ctx is cancelled. The session is closed either way and
// its summary returned.
func (h CLIHandler) Play(ctx context.Context, opts PlayOptions, onChange func(dto.Snapshot)) (dto.CloseOutput, error) {
	if opts.Poll <= 0 {
		opts.Poll = 100 * time.Millisecond
	}
	if _, err := h.usecase.Start(ctx); err != nil {
		return dto.CloseOutput{}, err
	}
	closeOut := func(cause error) (dto.CloseOutput, error) {
		out, err := h.usecase.Close(context.WithoutCancel(ctx))
		if cause != nil {
			return out, cause
		}
		return out, err
	}

	if _, err := h.usecase.UpdateSettings(ctx, opts.Settings); err != nil {
		return closeOut(err)
	}
	snap, err := h.usecase.LoadSong(ctx, opts.Path)
	if err != nil {
		return closeOut(err)
	}
	if opts.Section > 0 {
		if opts.Section > len(snap.Sections) {
			return closeOut(fmt.Errorf("%w: section %d of %d", apperrors.ErrInvalidInput, opts.Section, len(snap.Sections)))
		}
		if _, err := h.usecase.SelectSection(ctx, opts.Section-1); err != nil {
			return closeOut(err)
		}
	}
	if snap, err = h.usecase.Play(ctx); err != nil {
		return closeOut(err)
	}
	notify(onChange, snap)

	ticker := time.NewTicker(opts.Poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return closeOut(nil)
		case <-ticker.C:
		}
		snap, err := h.usecase.Snapshot(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return closeOut(nil)
			}
			return closeOut(err)
		}
		notify(onChange, snap)
		if finished(snap) {
			return closeOut(nil)
		}
	}
}

func finished(snap dto.Snapshot) bool {
	p := snap.Playback
	if !p.Playing {
		return true
	}
	return !p.Loop && p.SectionLength > 0 && p.Position >= p.SectionLength
}

func notify(onChange func(dto.Snapshot), snap dto.Snapshot) {
	if onChange != nil {
		onChange(snap)
	}
}
