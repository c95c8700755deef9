package domain

import (
	"math"
	"time"
)

const SchemaVersion = 1

// Session is one finished practice session.
type Session struct {
	ID                string    `yaml:"id"`
	SongKey           string    `yaml:"song_key,omitempty"`
	SongTitle         string    `yaml:"song_title,omitempty"`
	StartedAt         time.Time `yaml:"started_at"`
	EndedAt           time.Time `yaml:"ended_at"`
	DurationMinutes   float64   `yaml:"duration_minutes"`
	SectionsCompleted int       `yaml:"sections_completed"`
	NotesPlayed       int       `yaml:"notes_played"`
}

type Snapshot struct {
	ID                string
	SongKey           string
	SongTitle         string
	StartedAt         time.Time
	Elapsed           time.Duration
	SectionsCompleted int
	NotesPlayed       int
}

// Accumulator counts practice for one open session. Elapsed time grows by one
// tick per sample taken while playing. It flushes at most once.
type Accumulator struct {
	id        string
	startedAt time.Time
	tick      time.Duration
	songKey   string
	songTitle string
	ticks     int
	notes     int
	sections  int
	flushed   bool
}

func NewAccumulator(id string, startedAt time.Time, tick time.Duration) *Accumulator {
	if tick <= 0 {
		tick = time.Second
	}
	return &Accumulator{id: id, startedAt: startedAt, tick: tick}
}

func (a *Accumulator) SetSong(key, title string) {
	a.songKey = key
	a.songTitle = title
}

func (a *Accumulator) Tick(isPlaying bool) {
	if isPlaying && !a.flushed {
		a.ticks++
	}
}

// RecordKeyPress counts a manual key press. Scheduled playback is not counted.
func (a *Accumulator) RecordKeyPress() {
	if !a.flushed {
		a.notes++
	}
}

func (a *Accumulator) RecordSectionCompleted() {
	if !a.flushed {
		a.sections++
	}
}

func (a *Accumulator) Elapsed() time.Duration {
	return time.Duration(a.ticks) * a.tick
}

func (a *Accumulator) Flushed() bool {
	return a.flushed
}

func (a *Accumulator) Snapshot() Snapshot {
	return Snapshot{
		ID:                a.id,
		SongKey:           a.songKey,
		SongTitle:         a.songTitle,
		StartedAt:         a.startedAt,
		Elapsed:           a.Elapsed(),
		SectionsCompleted: a.sections,
		NotesPlayed:       a.notes,
	}
}

// Flush closes the session. It reports false when nothing was practiced or
// the session was already flushed.
func (a *Accumulator) Flush(endedAt time.Time) (Session, bool) {
	if a.flushed {
		return Session{}, false
	}
	a.flushed = true
	if a.ticks == 0 {
		return Session{}, false
	}
	return Session{
		ID:                a.id,
		SongKey:           a.songKey,
		SongTitle:         a.songTitle,
		StartedAt:         a.startedAt,
		EndedAt:           endedAt,
		DurationMinutes:   roundTo(a.Elapsed().Minutes(), 2),
		SectionsCompleted: a.sections,
		NotesPlayed:       a.notes,
	}, true
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
