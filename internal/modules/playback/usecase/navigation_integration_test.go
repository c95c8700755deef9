package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	playbackout "keyloop/internal/modules/playback/adapter/out"
	"keyloop/internal/modules/playback/dto"
	playbackin "keyloop/internal/modules/playback/port/in"
	"keyloop/internal/modules/playback/service"
	"keyloop/internal/modules/playback/usecase"
	progressout "keyloop/internal/modules/progress/adapter/out"
	progressdto "keyloop/internal/modules/progress/dto"
	progressin "keyloop/internal/modules/progress/port/in"
	progressservice "keyloop/internal/modules/progress/service"
	progressusecase "keyloop/internal/modules/progress/usecase"
	storageout "keyloop/internal/modules/storage/adapter/out"
	storageservice "keyloop/internal/modules/storage/service"
	storageusecase "keyloop/internal/modules/storage/usecase"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/logging"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time {
	return time.Date(2026, 7, 2, 8, 0, 0, 0, time.UTC)
}

type harness struct {
	playback  playbackin.Usecase
	progress  progressin.Usecase
	transport *playbackout.ClockTransport
	synth     *playbackout.LogSynth
}

func newHarness(t *testing.T, sectionCount int) harness {
	t.Helper()
	ctx := context.Background()
	storage := storageusecase.NewInteractor(storageservice.NewStorageService(storageout.NewMemoryKVStore(), fixedClock{}, logging.Nop()))
	progress := progressusecase.NewInteractor(progressservice.NewProgressService(progressout.NewStorageProgressStore(storage), fixedClock{}, logging.Nop()))
	if _, err := progress.Open(ctx, progressdto.OpenInput{
		Identity:     progressdto.Identity{FileName: "minuet.mid", FileSize: 900, LastModified: time.UnixMilli(1)},
		SectionCount: sectionCount,
	}); err != nil {
		t.Fatalf("open progress: %v", err)
	}

	transport := playbackout.NewClockTransport()
	synth := playbackout.NewLogSynth(logging.Nop())
	svc := service.NewSchedulerService(transport, synth, nil, playbackout.NewProgressNotifier(progress), logging.Nop())
	uc := usecase.NewInteractor(svc)

	sections := make([]dto.Section, 0, sectionCount)
	for i := 0; i < sectionCount; i++ {
		start := float64(i) * 2
		sections = append(sections, dto.Section{
			Index: i,
			Start: start,
			End:   start + 2,
			Notes: []dto.Note{
				{Start: start, Duration: 0.5, Pitch: "C4", Velocity: 0.8},
				{Start: start + 1, Duration: 0.5, Pitch: "E4", Velocity: 0.8},
			},
		})
	}
	uc.Load(dto.LoadInput{Sections: sections})
	return harness{playback: uc, progress: progress, transport: transport, synth: synth}
}

func TestForwardNavigationMarksSectionLeft(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 3)
	ctx := context.Background()

	if _, moved := h.playback.Next(ctx); !moved {
		t.Fatalf("expected to move to section 1")
	}
	state, moved := h.playback.Next(ctx)
	if !moved || state.CurrentSection != 2 {
		t.Fatalf("expected section 2, got %+v", state)
	}
	got, err := h.progress.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if got.CurrentSection != 2 || got.CompletedCount != 2 || got.CompletedSections[1] != 1 {
		t.Fatalf("expected sections 0 and 1 complete at section 2, got %+v", got)
	}

	state, moved = h.playback.Previous(ctx)
	if !moved || state.CurrentSection != 1 {
		t.Fatalf("expected section 1, got %+v", state)
	}
	back, _ := h.progress.Current(ctx)
	if back.CompletedCount != 2 || back.CurrentSection != 1 {
		t.Fatalf("going back must not clear completion, got %+v", back)
	}

	if _, moved := h.playback.Next(ctx); !moved {
		t.Fatalf("expected to move forward again")
	}
	if _, moved := h.playback.Next(ctx); moved {
		t.Fatalf("next at the last section must be a no-op")
	}
	last, _ := h.progress.Current(ctx)
	if last.CompletedCount != 2 {
		t.Fatalf("no-op next must not complete the last section, got %+v", last)
	}
}

func TestNavigationStopsPlayback(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 2)
	ctx := context.Background()

	state := h.playback.Play()
	if !state.Playing || state.Scheduled != 2 || state.SectionLength != 2 {
		t.Fatalf("unexpected play state %+v", state)
	}
	h.transport.Advance(500 * time.Millisecond)
	if h.synth.Triggered() != 1 {
		t.Fatalf("expected first note, got %d", h.synth.Triggered())
	}
	state, _ = h.playback.Next(ctx)
	if state.Playing || state.Position != 0 || state.Scheduled != 0 || h.transport.Pending() != 0 {
		t.Fatalf("navigation must stop and clear the schedule, got %+v pending=%d", state, h.transport.Pending())
	}
}

func TestPlaybackUsecaseValidation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 2)
	ctx := context.Background()
	if _, err := h.playback.SetTempoScale(2); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid tempo, got %v", err)
	}
	if _, err := h.playback.SetVolume(101); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid volume, got %v", err)
	}
	if _, err := h.playback.Select(ctx, 5); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if err := h.playback.PressKey("H2"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid pitch, got %v", err)
	}
	state, err := h.playback.SetTempoScale(0.5)
	if err != nil || state.TempoScale != 0.5 {
		t.Fatalf("tempo: %+v %v", state, err)
	}
	state = h.playback.SetLoop(true)
	if !state.Loop {
		t.Fatalf("loop not applied")
	}
}
