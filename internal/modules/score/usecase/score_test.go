package usecase_test

import (
	"context"
	"errors"
	"testing"

	"keyloop/internal/modules/score/domain"
	"keyloop/internal/modules/score/dto"
	scorein "keyloop/internal/modules/score/port/in"
	"keyloop/internal/modules/score/service"
	"keyloop/internal/modules/score/usecase"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/logging"
)

type fakeSource struct {
	song domain.Song
	err  error
}

func (f fakeSource) Load(context.Context, string) (domain.Song, error) {
	return f.song, f.err
}

func twoHandSong() domain.Song {
	left := domain.Track{Index: 0, Name: "Bass"}
	for i := 0; i < 40; i++ {
		left.Notes = append(left.Notes, domain.NoteEvent{StartTime: float64(i) * 0.5, Duration: 0.5, PitchName: "C3", MIDI: 48, Velocity: 0.7, TrackIndex: 0})
	}
	right := domain.Track{Index: 1, Name: "Melody"}
	for i := 0; i < 55; i++ {
		right.Notes = append(right.Notes, domain.NoteEvent{StartTime: float64(i) * 0.36, Duration: 0.3, PitchName: "E5", MIDI: 76, Velocity: 0.9, TrackIndex: 1})
	}
	return domain.Song{Tracks: []domain.Track{left, right}, TempoBPM: 120, BeatsPerMeasure: 4, BeatType: 4, Duration: 20}
}

func newUsecase(source fakeSource) scorein.Usecase {
	return usecase.NewInteractor(service.NewScoreService(source, logging.Nop()))
}

func countNotes(out dto.SegmentOutput) int {
	total := 0
	for _, s := range out.Sections {
		total += len(s.Notes)
	}
	return total
}

func TestAnalyzeByHand(t *testing.T) {
	t.Parallel()
	uc := newUsecase(fakeSource{song: twoHandSong()})
	ctx := context.Background()

	cases := map[string]int{"left": 40, "right": 55, "both": 95}
	for hand, want := range cases {
		out, err := uc.Analyze(ctx, dto.AnalyzeInput{Path: "song.mid", Hand: hand, BarsPerSection: 4})
		if err != nil {
			t.Fatalf("analyze %s: %v", hand, err)
		}
		if got := countNotes(out.Segments); got != want {
			t.Fatalf("hand %s: expected %d notes, got %d", hand, want, got)
		}
		if len(out.Segments.Sections) != 3 {
			t.Fatalf("hand %s: expected 3 sections, got %d", hand, len(out.Segments.Sections))
		}
		if out.Segments.TimePerBar != 2 {
			t.Fatalf("expected 2s per bar, got %v", out.Segments.TimePerBar)
		}
	}
}

func TestSegmentReusesLoadedSong(t *testing.T) {
	t.Parallel()
	uc := newUsecase(fakeSource{song: twoHandSong()})
	ctx := context.Background()
	song, err := uc.Load(ctx, dto.LoadInput{Path: "song.mid"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if song.Path != "song.mid" || song.NoteCount != 95 || len(song.Tracks) != 2 {
		t.Fatalf("unexpected song %+v", song)
	}
	out, err := uc.Segment(ctx, dto.SegmentInput{Song: song, Hand: "right", BarsPerSection: 2})
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(out.Sections) != 5 {
		t.Fatalf("expected 5 two-bar sections, got %d", len(out.Sections))
	}
	if out.Sections[0].Label != "Section 1 (0:00 - 0:04)" {
		t.Fatalf("unexpected label %q", out.Sections[0].Label)
	}
}

func TestSegmentRejectsBadInput(t *testing.T) {
	t.Parallel()
	uc := newUsecase(fakeSource{song: twoHandSong()})
	ctx := context.Background()
	song, err := uc.Load(ctx, dto.LoadInput{Path: "song.mid"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, bars := range []int{0, 17} {
		if _, err := uc.Segment(ctx, dto.SegmentInput{Song: song, Hand: "both", BarsPerSection: bars}); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("bars %d: expected invalid input, got %v", bars, err)
		}
	}
	if _, err := uc.Segment(ctx, dto.SegmentInput{Song: song, Hand: "thumbs", BarsPerSection: 4}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid hand, got %v", err)
	}
	single := dto.Song{TempoBPM: 120, BeatsPerMeasure: 4, Duration: 4, Tracks: []dto.Track{song.Tracks[0]}}
	if _, err := uc.Segment(ctx, dto.SegmentInput{Song: single, Hand: "right", BarsPerSection: 4}); !errors.Is(err, apperrors.ErrEmptySelection) {
		t.Fatalf("expected empty selection, got %v", err)
	}
}

func TestLoadPropagatesSourceErrors(t *testing.T) {
	t.Parallel()
	uc := newUsecase(fakeSource{err: apperrors.ErrNoTracks})
	if _, err := uc.Load(context.Background(), dto.LoadInput{Path: "empty.mid"}); !errors.Is(err, apperrors.ErrNoTracks) {
		t.Fatalf("expected no tracks, got %v", err)
	}
	if _, err := uc.Load(context.Background(), dto.LoadInput{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty path, got %v", err)
	}
}
