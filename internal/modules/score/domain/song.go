package domain

import (
	"fmt"
	"strings"

	"keyloop/internal/platform/pitch"
)

const (
	DefaultTempoBPM        = 120.0
	DefaultBeatsPerMeasure = 4
	DefaultBeatType        = 4
)

type Hand string

const (
	HandBoth  Hand = "both"
	HandLeft  Hand = "left"
	HandRight Hand = "right"
)

func ParseHand(raw string) (Hand, error) {
	switch Hand(strings.ToLower(strings.TrimSpace(raw))) {
	case HandBoth, "":
		return HandBoth, nil
	case HandLeft:
		return HandLeft, nil
	case HandRight:
		return HandRight, nil
	default:
		return "", fmt.Errorf("unsupported hand selection %q", raw)
	}
}

// NoteEvent is immutable once produced by a note source. Times are seconds.
type NoteEvent struct {
	StartTime  float64
	Duration   float64
	PitchName  string
	MIDI       int
	Velocity   float64
	TrackIndex int
}

type Track struct {
	Index int
	Name  string
	Notes []NoteEvent
}

func (t Track) AveragePitch() float64 {
	if len(t.Notes) == 0 {
		return 0
	}
	sum := 0
	for _, n := range t.Notes {
		sum += n.MIDI
	}
	return float64(sum) / float64(len(t.Notes))
}

// HandGuess is informational only; hand selection stays positional.
func (t Track) HandGuess() Hand {
	if t.AveragePitch() < pitch.MiddleC {
		return HandLeft
	}
	return HandRight
}

func (t Track) DisplayName() string {
	if strings.TrimSpace(t.Name) != "" {
		return t.Name
	}
	return fmt.Sprintf("Track %d", t.Index)
}

type TrackInfo struct {
	Index     int
	Name      string
	NoteCount int
	AvgPitch  float64
	HandGuess Hand
}

type Song struct {
	Tracks          []Track
	TempoBPM        float64
	BeatsPerMeasure int
	BeatType        int
	Duration        float64
}

func (s Song) Tempo() float64 {
	if s.TempoBPM <= 0 {
		return DefaultTempoBPM
	}
	return s.TempoBPM
}

func (s Song) Beats() int {
	if s.BeatsPerMeasure <= 0 {
		return DefaultBeatsPerMeasure
	}
	return s.BeatsPerMeasure
}

// TrackInfo lists the tracks that carry notes.
func (s Song) TrackInfo() []TrackInfo {
	out := make([]TrackInfo, 0, len(s.Tracks))
	for _, t := range s.Tracks {
		if len(t.Notes) == 0 {
			continue
		}
		out = append(out, TrackInfo{
			Index:     t.Index,
			Name:      t.DisplayName(),
			NoteCount: len(t.Notes),
			AvgPitch:  t.AveragePitch(),
			HandGuess: t.HandGuess(),
		})
	}
	return out
}

func (s Song) NoteCount() int {
	total := 0
	for _, t := range s.Tracks {
		total += len(t.Notes)
	}
	return total
}
