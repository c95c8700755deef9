package dto

type Note struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Pitch    string  `json:"pitch"`
	Velocity float64 `json:"velocity"`
}

type Section struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Notes []Note  `json:"notes"`
}

type LoadInput struct {
	Sections []Section
	Current  int
}

type State struct {
	CurrentSection int      `json:"currentSection"`
	SectionCount   int      `json:"sectionCount"`
	Status         string   `json:"status"`
	Playing        bool     `json:"isPlaying"`
	Loop           bool     `json:"isLooping"`
	TempoScale     float64  `json:"tempoScale"`
	Volume         int      `json:"volume"`
	Position       float64  `json:"position"`
	SectionLength  float64  `json:"sectionLength"`
	Scheduled      int      `json:"scheduled"`
	ActiveNotes    []string `json:"activeNotes"`
}
