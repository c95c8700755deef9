package domain

import (
	"fmt"
	"sort"

	apperrors "keyloop/internal/platform/errors"
)

// BaseTempoBPM is the transport reference tempo. A tempo scale of 1 plays at
// 120 bpm regardless of the tempo the song declares.
const BaseTempoBPM = 120.0

const (
	MinTempoScale = 0.25
	MaxTempoScale = 1.5
	MinVolume     = 0
	MaxVolume     = 100
	DefaultVolume = 75

	// KeyPressDuration is an eighth note at the base tempo.
	KeyPressDuration = 0.25
	KeyPressVelocity = 1.0
)

func TransportBPM(tempoScale float64) float64 {
	return BaseTempoBPM * tempoScale
}

func ValidateTempoScale(scale float64) error {
	if scale < MinTempoScale || scale > MaxTempoScale {
		return fmt.Errorf("%w: tempo scale must be between %.2f and %.2f", apperrors.ErrInvalidInput, MinTempoScale, MaxTempoScale)
	}
	return nil
}

func ValidateVolume(volume int) error {
	if volume < MinVolume || volume > MaxVolume {
		return fmt.Errorf("%w: volume must be between %d and %d", apperrors.ErrInvalidInput, MinVolume, MaxVolume)
	}
	return nil
}

type Note struct {
	Start    float64
	Duration float64
	Pitch    string
	Velocity float64
}

type Section struct {
	Index int
	Start float64
	End   float64
	Notes []Note
}

func (s Section) Length() float64 {
	return s.End - s.Start
}

type Status string

const (
	Stopped Status = "stopped"
	Playing Status = "playing"
)

type State struct {
	CurrentSection int
	SectionCount   int
	Status         Status
	Loop           bool
	TempoScale     float64
	Volume         int
	Position       float64
}

func (s State) IsPlaying() bool {
	return s.Status == Playing
}

type CueKind int

const (
	Attack CueKind = iota
	Release
)

// Cue is one entry of a schedule set, expressed relative to the section start.
type Cue struct {
	Offset   float64
	Kind     CueKind
	Pitch    string
	Duration float64
	Velocity float64
}

// BuildCues expands a section into attack and release cues ordered by offset.
// Releases sort ahead of attacks at the same offset so a repeated pitch is
// released before it sounds again. The synthesizer plays a note for its
// duration in wall seconds, so the release lands duration*tempoScale transport
// seconds after the attack.
func BuildCues(section Section, tempoScale float64) []Cue {
	if tempoScale <= 0 {
		tempoScale = 1
	}
	cues := make([]Cue, 0, len(section.Notes)*2)
	for _, n := range section.Notes {
		rel := n.Start - section.Start
		if rel < 0 {
			rel = 0
		}
		cues = append(cues,
			Cue{Offset: rel, Kind: Attack, Pitch: n.Pitch, Duration: n.Duration, Velocity: n.Velocity},
			Cue{Offset: rel + n.Duration*tempoScale, Kind: Release, Pitch: n.Pitch},
		)
	}
	sort.SliceStable(cues, func(i, j int) bool {
		if cues[i].Offset != cues[j].Offset {
			return cues[i].Offset < cues[j].Offset
		}
		return cues[i].Kind == Release && cues[j].Kind == Attack
	})
	return cues
}

// Attacks counts the synthesizer triggers in a cue set.
func Attacks(cues []Cue) int {
	total := 0
	for _, c := range cues {
		if c.Kind == Attack {
			total++
		}
	}
	return total
}
