package dto

type LoadInput struct {
	Path string
}

type Note struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Pitch    string  `json:"pitch"`
	MIDI     int     `json:"midi"`
	Velocity float64 `json:"velocity"`
	Track    int     `json:"track"`
}

type Track struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	NoteCount int     `json:"noteCount"`
	AvgPitch  float64 `json:"avgPitch"`
	HandGuess string  `json:"handGuess"`
	Notes     []Note  `json:"-"`
}

type Song struct {
	Path            string  `json:"path"`
	TempoBPM        float64 `json:"tempo"`
	BeatsPerMeasure int     `json:"beatsPerMeasure"`
	BeatType        int     `json:"beatType"`
	Duration        float64 `json:"duration"`
	NoteCount       int     `json:"noteCount"`
	Tracks          []Track `json:"tracks"`
}

type SegmentInput struct {
	Song           Song
	Hand           string
	BarsPerSection int
}

type Section struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
	Notes []Note  `json:"notes"`
}

type SegmentOutput struct {
	Hand           string    `json:"hand"`
	BarsPerSection int       `json:"barsPerSection"`
	TimePerBar     float64   `json:"timePerBar"`
	Sections       []Section `json:"sections"`
}

type AnalyzeInput struct {
	Path           string
	Hand           string
	BarsPerSection int
}

type AnalyzeOutput struct {
	Song     Song
	Segments SegmentOutput
}
