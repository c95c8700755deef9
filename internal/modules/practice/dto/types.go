package dto

import (
	playbackdto "keyloop/internal/modules/playback/dto"
	progressdto "keyloop/internal/modules/progress/dto"
	scoredto "keyloop/internal/modules/score/dto"
	sessiondto "keyloop/internal/modules/session/dto"
)

type SectionInfo struct {
	Index     int     `json:"index"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Label     string  `json:"label"`
	NoteCount int     `json:"noteCount"`
	Completed bool    `json:"completed"`
}

// Snapshot is everything a front end needs to draw the practice screen.
type Snapshot struct {
	Song           *scoredto.Song                 `json:"song"`
	Hand           string                         `json:"hand"`
	BarsPerSection int                            `json:"barsPerSection"`
	TimePerBar     float64                        `json:"timePerBar"`
	Theme          string                         `json:"theme"`
	Sections       []SectionInfo                  `json:"sections"`
	Playback       playbackdto.State              `json:"playback"`
	Progress       *progressdto.Progress          `json:"progress"`
	Session        *sessiondto.ActiveSessionOutput `json:"session"`
}

// SettingsInput changes only the non-nil fields.
type SettingsInput struct {
	Hand           *string  `json:"hand,omitempty"`
	BarsPerSection *int     `json:"barsPerSection,omitempty"`
	TempoScale     *float64 `json:"tempoScale,omitempty"`
	Volume         *int     `json:"volume,omitempty"`
	Loop           *bool    `json:"isLooping,omitempty"`
	Theme          *string  `json:"theme,omitempty"`
}

type CloseOutput struct {
	Session sessiondto.EndOutput
}
