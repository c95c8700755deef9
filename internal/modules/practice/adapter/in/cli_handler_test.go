package in_test

import (
	"context"
	"errors"
	"testing"
	"time"

	practicecli "keyloop/internal/modules/practice/adapter/in"
	"keyloop/internal/modules/practice/dto"
	practicein "keyloop/internal/modules/practice/port/in"
	playbackdto "keyloop/internal/modules/playback/dto"
	apperrors "keyloop/internal/platform/errors"
)

// scriptedPractice advances playback by half a second per snapshot.
type scriptedPractice struct {
	practicein.Usecase
	loop     bool
	position float64
	selected int
	closed   int
	calls    []string
}

func (s *scriptedPractice) Start(context.Context) (dto.Snapshot, error) {
	s.calls = append(s.calls, "start")
	return dto.Snapshot{}, nil
}

func (s *scriptedPractice) UpdateSettings(context.Context, dto.SettingsInput) (dto.Snapshot, error) {
	s.calls = append(s.calls, "settings")
	return dto.Snapshot{}, nil
}

func (s *scriptedPractice) LoadSong(context.Context, string) (dto.Snapshot, error) {
	s.calls = append(s.calls, "load")
	return dto.Snapshot{Sections: make([]dto.SectionInfo, 3)}, nil
}

func (s *scriptedPractice) SelectSection(_ context.Context, index int) (dto.Snapshot, error) {
	s.selected = index
	return dto.Snapshot{}, nil
}

func (s *scriptedPractice) Play(context.Context) (dto.Snapshot, error) {
	s.calls = append(s.calls, "play")
	return s.snapshot(), nil
}

func (s *scriptedPractice) Snapshot(context.Context) (dto.Snapshot, error) {
	s.position += 0.5
	return s.snapshot(), nil
}

func (s *scriptedPractice) Close(context.Context) (dto.CloseOutput, error) {
	s.closed++
	return dto.CloseOutput{}, nil
}

func (s *scriptedPractice) snapshot() dto.Snapshot {
	return dto.Snapshot{Playback: playbackdto.State{Playing: true, Loop: s.loop, Position: s.position, SectionLength: 2}}
}

func TestPlayWaitsForSectionEnd(t *testing.T) {
	t.Parallel()
	fake := &scriptedPractice{}
	handler := practicecli.NewCLIHandler(fake)

	var seen int
	_, err := handler.Play(context.Background(), practicecli.PlayOptions{Path: "song.mid", Section: 2, Poll: time.Millisecond}, func(dto.Snapshot) { seen++ })
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if fake.selected != 1 {
		t.Fatalf("expected 0-based section 1, got %d", fake.selected)
	}
	if fake.position < 2 || seen < 5 {
		t.Fatalf("returned before the section ended: position=%v updates=%d", fake.position, seen)
	}
	if fake.closed != 1 {
		t.Fatalf("expected one close, got %d", fake.closed)
	}
}

func TestPlayLoopRunsUntilCancelled(t *testing.T) {
	t.Parallel()
	fake := &scriptedPractice{loop: true}
	handler := practicecli.NewCLIHandler(fake)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := handler.Play(ctx, practicecli.PlayOptions{Path: "song.mid", Poll: time.Millisecond}, func(snap dto.Snapshot) {
		if snap.Playback.Position >= 10 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if fake.position < 10 || fake.closed != 1 {
		t.Fatalf("loop ended early: position=%v closed=%d", fake.position, fake.closed)
	}
}

func TestPlayRejectsMissingSection(t *testing.T) {
	t.Parallel()
	fake := &scriptedPractice{}
	handler := practicecli.NewCLIHandler(fake)

	_, err := handler.Play(context.Background(), practicecli.PlayOptions{Path: "song.mid", Section: 4}, nil)
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if fake.closed != 1 {
		t.Fatalf("session not closed after failure")
	}
	for _, call := range fake.calls {
		if call == "play" {
			t.Fatalf("played despite invalid section")
		}
	}
}
