package domain_test

import (
	"errors"
	"reflect"
	"testing"

	"keyloop/internal/modules/score/domain"
	apperrors "keyloop/internal/platform/errors"
)

func note(start float64, name string, track int) domain.NoteEvent {
	return domain.NoteEvent{StartTime: start, Duration: 0.5, PitchName: name, MIDI: 60, Velocity: 0.8, TrackIndex: track}
}

func TestSegmentBarAlignedBoundaries(t *testing.T) {
	t.Parallel()
	notes := []domain.NoteEvent{note(0, "C4", 0), note(7.9, "D4", 0), note(8.0, "E4", 0), note(19.99, "F4", 0), note(20.0, "G4", 0)}
	sections, err := domain.Segment(domain.SegmentParams{
		Notes: notes, TempoBPM: 120, BeatsPerMeasure: 4, TotalDuration: 20, BarsPerSection: 4,
	})
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	bounds := [][2]float64{{0, 8}, {8, 16}, {16, 20}}
	for i, want := range bounds {
		if sections[i].StartTime != want[0] || sections[i].EndTime != want[1] {
			t.Fatalf("section %d: expected [%v,%v), got [%v,%v)", i, want[0], want[1], sections[i].StartTime, sections[i].EndTime)
		}
		if sections[i].Index != i {
			t.Fatalf("section %d has index %d", i, sections[i].Index)
		}
	}
	if names := pitches(sections[0]); !reflect.DeepEqual(names, []string{"C4", "D4"}) {
		t.Fatalf("section 0 notes: %v", names)
	}
	if names := pitches(sections[1]); !reflect.DeepEqual(names, []string{"E4"}) {
		t.Fatalf("section 1 notes: %v", names)
	}
	if names := pitches(sections[2]); !reflect.DeepEqual(names, []string{"F4"}) {
		t.Fatalf("section 2 notes: %v", names)
	}
}

func TestSegmentDropsNoteStartingAtTotalDuration(t *testing.T) {
	t.Parallel()
	sections, err := domain.Segment(domain.SegmentParams{
		Notes: []domain.NoteEvent{note(20, "C5", 0)}, TempoBPM: 120, BeatsPerMeasure: 4, TotalDuration: 20, BarsPerSection: 4,
	})
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	for _, s := range sections {
		if len(s.Notes) != 0 {
			t.Fatalf("note at total duration must belong to no section, found in %d", s.Index)
		}
	}
}

func TestSegmentPartitionCompleteness(t *testing.T) {
	t.Parallel()
	type params struct {
		tempo    float64
		beats    int
		bars     int
		duration float64
	}
	grid := []params{
		{120, 4, 4, 20}, {90, 3, 2, 47.3}, {133.3, 7, 5, 61}, {60, 4, 1, 4}, {200, 2, 16, 3.1}, {0, 0, 3, 30},
	}
	for _, p := range grid {
		var notes []domain.NoteEvent
		for i := 0; i <= 400; i++ {
			notes = append(notes, note(p.duration*float64(i)/400, "A4", 0))
		}
		sections, err := domain.Segment(domain.SegmentParams{
			Notes: notes, TempoBPM: p.tempo, BeatsPerMeasure: p.beats, TotalDuration: p.duration, BarsPerSection: p.bars,
		})
		if err != nil {
			t.Fatalf("segment %+v: %v", p, err)
		}
		if len(sections) == 0 || sections[0].StartTime != 0 {
			t.Fatalf("%+v: sections must start at 0", p)
		}
		if last := sections[len(sections)-1]; last.EndTime != p.duration {
			t.Fatalf("%+v: last section must end at duration, got %v", p, last.EndTime)
		}
		assigned := 0
		for i, s := range sections {
			if s.StartTime >= s.EndTime {
				t.Fatalf("%+v: section %d is empty or inverted", p, i)
			}
			if i > 0 && sections[i-1].EndTime != s.StartTime {
				t.Fatalf("%+v: sections %d and %d are not contiguous", p, i-1, i)
			}
			assigned += len(s.Notes)
		}
		inRange := 0
		for _, n := range notes {
			if n.StartTime < p.duration {
				inRange++
			}
		}
		if assigned != inRange {
			t.Fatalf("%+v: expected %d assigned notes, got %d", p, inRange, assigned)
		}
	}
}

func TestSegmentIsDeterministic(t *testing.T) {
	t.Parallel()
	params := domain.SegmentParams{
		Notes:    []domain.NoteEvent{note(0.1, "C4", 0), note(3.3, "E4", 1), note(9.75, "G4", 0)},
		TempoBPM: 97, BeatsPerMeasure: 3, TotalDuration: 12.4, BarsPerSection: 2,
	}
	first, err := domain.Segment(params)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	second, err := domain.Segment(params)
	if err != nil {
		t.Fatalf("segment again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("segmentation is not deterministic")
	}
}

func TestSegmentRejectsInvalidParams(t *testing.T) {
	t.Parallel()
	if _, err := domain.Segment(domain.SegmentParams{TotalDuration: 10, BarsPerSection: 0}); err == nil {
		t.Fatalf("bars per section 0 must fail")
	}
	if _, err := domain.Segment(domain.SegmentParams{TotalDuration: -1, BarsPerSection: 4}); err == nil {
		t.Fatalf("negative duration must fail")
	}
	sections, err := domain.Segment(domain.SegmentParams{TotalDuration: 0, BarsPerSection: 4})
	if err != nil || len(sections) != 0 {
		t.Fatalf("zero duration yields no sections, got %d %v", len(sections), err)
	}
}

func TestFilterTracksIsPositional(t *testing.T) {
	t.Parallel()
	// track 0 sits high and track 1 low, so pitch heuristics would swap them
	left := domain.Track{Index: 0, Notes: make([]domain.NoteEvent, 0, 40)}
	for i := 0; i < 40; i++ {
		n := note(float64(i)*0.5, "C6", 0)
		n.MIDI = 84
		left.Notes = append(left.Notes, n)
	}
	right := domain.Track{Index: 1, Notes: make([]domain.NoteEvent, 0, 55)}
	for i := 0; i < 55; i++ {
		n := note(float64(i)*0.4, "C2", 1)
		n.MIDI = 36
		right.Notes = append(right.Notes, n)
	}
	if left.HandGuess() != domain.HandRight || right.HandGuess() != domain.HandLeft {
		t.Fatalf("fixture should produce inverted hand guesses")
	}
	tracks := []domain.Track{left, right}

	got, err := domain.FilterTracks(tracks, domain.HandLeft)
	if err != nil {
		t.Fatalf("filter left: %v", err)
	}
	if len(got) != 40 || !allFromTrack(got, 0) {
		t.Fatalf("left must be exactly track 0 notes, got %d", len(got))
	}
	got, err = domain.FilterTracks(tracks, domain.HandRight)
	if err != nil {
		t.Fatalf("filter right: %v", err)
	}
	if len(got) != 55 || !allFromTrack(got, 1) {
		t.Fatalf("right must be exactly track 1 notes, got %d", len(got))
	}
	got, err = domain.FilterTracks(tracks, domain.HandBoth)
	if err != nil {
		t.Fatalf("filter both: %v", err)
	}
	if len(got) != 95 {
		t.Fatalf("both must be the union, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].StartTime < got[i-1].StartTime {
			t.Fatalf("filtered notes must be sorted by start time")
		}
	}
}

func TestFilterTracksStableForTies(t *testing.T) {
	t.Parallel()
	tracks := []domain.Track{
		{Index: 0, Notes: []domain.NoteEvent{note(1, "C3", 0), note(1, "E3", 0)}},
		{Index: 1, Notes: []domain.NoteEvent{note(0, "G4", 1), note(1, "C5", 1)}},
	}
	got, err := domain.FilterTracks(tracks, domain.HandBoth)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	names := make([]string, 0, len(got))
	for _, n := range got {
		names = append(names, n.PitchName)
	}
	if !reflect.DeepEqual(names, []string{"G4", "C3", "E3", "C5"}) {
		t.Fatalf("ties must keep original order, got %v", names)
	}
}

func TestFilterTracksEmptySelection(t *testing.T) {
	t.Parallel()
	tracks := []domain.Track{{Index: 0, Notes: []domain.NoteEvent{note(0, "C4", 0)}}}
	_, err := domain.FilterTracks(tracks, domain.HandRight)
	if !errors.Is(err, apperrors.ErrEmptySelection) {
		t.Fatalf("expected empty selection error, got %v", err)
	}
}

func TestParseHand(t *testing.T) {
	t.Parallel()
	for raw, want := range map[string]domain.Hand{"": domain.HandBoth, "Left": domain.HandLeft, " right ": domain.HandRight, "both": domain.HandBoth} {
		got, err := domain.ParseHand(raw)
		if err != nil || got != want {
			t.Fatalf("parse %q: expected %s, got %s %v", raw, want, got, err)
		}
	}
	if _, err := domain.ParseHand("feet"); err == nil {
		t.Fatalf("unknown hand should fail")
	}
}

func pitches(s domain.Section) []string {
	out := make([]string, 0, len(s.Notes))
	for _, n := range s.Notes {
		out = append(out, n.PitchName)
	}
	return out
}

func allFromTrack(notes []domain.NoteEvent, track int) bool {
	for _, n := range notes {
		if n.TrackIndex != track {
			return false
		}
	}
	return true
}
