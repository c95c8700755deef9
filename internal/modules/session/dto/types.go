package dto

import "time"

type StartOutput struct {
	SessionID string
	StartedAt time.Time
}

type ActiveSessionOutput struct {
	SessionID         string        `json:"sessionId"`
	SongKey           string        `json:"songKey,omitempty"`
	SongTitle         string        `json:"songTitle,omitempty"`
	StartedAt         time.Time     `json:"startedAt"`
	Elapsed           time.Duration `json:"elapsed"`
	SectionsCompleted int           `json:"sectionsCompleted"`
	NotesPlayed       int           `json:"notesPlayed"`
}

type SessionOutput struct {
	SessionID         string    `json:"sessionId"`
	SongTitle         string    `json:"songTitle,omitempty"`
	StartedAt         time.Time `json:"startedAt"`
	EndedAt           time.Time `json:"endedAt"`
	DurationMinutes   float64   `json:"durationMinutes"`
	SectionsCompleted int       `json:"sectionsCompleted"`
	NotesPlayed       int       `json:"notesPlayed"`
}

type EndOutput struct {
	Recorded bool
	Session  SessionOutput
}

type DayOutput struct {
	Date              string  `json:"date"`
	Minutes           float64 `json:"minutesPracticed"`
	SectionsCompleted int     `json:"sectionsCompleted"`
	NotesPlayed       int     `json:"notesPlayed"`
}

type StatsOutput struct {
	Today             DayOutput   `json:"today"`
	Days              []DayOutput `json:"days"`
	TotalMinutes      float64     `json:"totalMinutes"`
	TotalFormatted    string      `json:"totalFormatted"`
	SectionsCompleted int         `json:"sectionsCompleted"`
	SessionsCompleted int         `json:"sessionsCompleted"`
	Streak            int         `json:"streak"`
	LastSession       *time.Time  `json:"lastSession"`
}
