package dto

type Preferences struct {
	PlaybackRate   float64 `json:"playbackRate"`
	Volume         int     `json:"volume"`
	SelectedHand   string  `json:"selectedHand"`
	BarsPerSection int     `json:"barsPerSection"`
	IsLooping      bool    `json:"isLooping"`
	Theme          string  `json:"theme"`
	LastUpdated    int64   `json:"lastUpdated,omitempty"`
}

// PreferencesPatch sets only the non-nil fields.
type PreferencesPatch struct {
	PlaybackRate   *float64 `json:"playbackRate,omitempty"`
	Volume         *int     `json:"volume,omitempty"`
	SelectedHand   *string  `json:"selectedHand,omitempty"`
	BarsPerSection *int     `json:"barsPerSection,omitempty"`
	IsLooping      *bool    `json:"isLooping,omitempty"`
	Theme          *string  `json:"theme,omitempty"`
}

type SongProgress struct {
	Key                  string      `json:"key"`
	FileName             string      `json:"fileName"`
	CurrentSection       int         `json:"currentSection"`
	CompletedSections    map[int]int `json:"completedSections"`
	TotalSections        int         `json:"totalSections"`
	CompletionPercentage int         `json:"completionPercentage"`
	LastPlayed           int64       `json:"lastPlayed"`
}

type DailyStats struct {
	MinutesPracticed  float64 `json:"minutesPracticed"`
	SectionsCompleted int     `json:"sectionsCompleted"`
	NotesPlayed       int     `json:"notesPlayed"`
}

type TotalStats struct {
	MinutesPracticed  float64 `json:"minutesPracticed"`
	SectionsCompleted int     `json:"sectionsCompleted"`
	SessionsCompleted int     `json:"sessionsCompleted"`
}

type PracticeStats struct {
	Daily       map[string]DailyStats `json:"daily"`
	Total       TotalStats            `json:"total"`
	LastSession *int64                `json:"lastSession"`
}

type RecentFile struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	LastModified int64  `json:"lastModified"`
	Path         string `json:"path,omitempty"`
	LastOpened   int64  `json:"lastOpened"`
}

type ImportOutput struct {
	Namespaces []string `json:"namespaces"`
}
