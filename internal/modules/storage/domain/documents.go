package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "keyloop/internal/platform/errors"
)

const Prefix = "keyloop_"

type Namespace string

const (
	NamespacePreferences   Namespace = "preferences"
	NamespaceSongProgress  Namespace = "songProgress"
	NamespacePracticeStats Namespace = "practiceStats"
	NamespaceRecentFiles   Namespace = "recentFiles"
	NamespaceSettings      Namespace = "settings"
)

// Namespaces lists every stored document in export order.
func Namespaces() []Namespace {
	return []Namespace{NamespacePreferences, NamespaceSongProgress, NamespacePracticeStats, NamespaceRecentFiles, NamespaceSettings}
}

func (n Namespace) Key() string {
	return Prefix + string(n)
}

const (
	MinBarsPerSection = 1
	MaxBarsPerSection = 16
	MinPlaybackRate   = 0.25
	MaxPlaybackRate   = 1.5
	MinVolume         = 0
	MaxVolume         = 100

	ThemeLight = "light"
	ThemeDark  = "dark"

	MaxRecentFiles = 10
)

type Preferences struct {
	PlaybackRate   float64 `json:"playbackRate"`
	Volume         int     `json:"volume"`
	SelectedHand   string  `json:"selectedHand"`
	BarsPerSection int     `json:"barsPerSection"`
	IsLooping      bool    `json:"isLooping"`
	Theme          string  `json:"theme"`
	LastUpdated    int64   `json:"lastUpdated,omitempty"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		PlaybackRate:   1,
		Volume:         75,
		SelectedHand:   "both",
		BarsPerSection: 4,
		IsLooping:      false,
		Theme:          ThemeLight,
	}
}

func (p Preferences) Validate() error {
	var problems []string
	if p.PlaybackRate < MinPlaybackRate || p.PlaybackRate > MaxPlaybackRate {
		problems = append(problems, fmt.Sprintf("playbackRate %.2f outside [%.2f,%.2f]", p.PlaybackRate, MinPlaybackRate, MaxPlaybackRate))
	}
	if p.Volume < MinVolume || p.Volume > MaxVolume {
		problems = append(problems, fmt.Sprintf("volume %d outside [%d,%d]", p.Volume, MinVolume, MaxVolume))
	}
	switch p.SelectedHand {
	case "both", "left", "right":
	default:
		problems = append(problems, fmt.Sprintf("selectedHand %q", p.SelectedHand))
	}
	if p.BarsPerSection < MinBarsPerSection || p.BarsPerSection > MaxBarsPerSection {
		problems = append(problems, fmt.Sprintf("barsPerSection %d outside [%d,%d]", p.BarsPerSection, MinBarsPerSection, MaxBarsPerSection))
	}
	if p.Theme != ThemeLight && p.Theme != ThemeDark {
		problems = append(problems, fmt.Sprintf("theme %q", p.Theme))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// PreferencesPatch carries the fields a caller wants to change.
type PreferencesPatch struct {
	PlaybackRate   *float64
	Volume         *int
	SelectedHand   *string
	BarsPerSection *int
	IsLooping      *bool
	Theme          *string
}

func (p PreferencesPatch) Empty() bool {
	return p.PlaybackRate == nil && p.Volume == nil && p.SelectedHand == nil && p.BarsPerSection == nil && p.IsLooping == nil && p.Theme == nil
}

// Merge applies the patch over base and stamps lastUpdated.
func (p PreferencesPatch) Merge(base Preferences, now time.Time) Preferences {
	out := base
	if p.PlaybackRate != nil {
		out.PlaybackRate = *p.PlaybackRate
	}
	if p.Volume != nil {
		out.Volume = *p.Volume
	}
	if p.SelectedHand != nil {
		out.SelectedHand = strings.ToLower(strings.TrimSpace(*p.SelectedHand))
	}
	if p.BarsPerSection != nil {
		out.BarsPerSection = *p.BarsPerSection
	}
	if p.IsLooping != nil {
		out.IsLooping = *p.IsLooping
	}
	if p.Theme != nil {
		out.Theme = strings.ToLower(strings.TrimSpace(*p.Theme))
	}
	out.LastUpdated = now.UnixMilli()
	return out
}

type SongProgress struct {
	FileName             string      `json:"fileName,omitempty"`
	CurrentSection       int         `json:"currentSection"`
	CompletedSections    map[int]int `json:"completedSections"`
	TotalSections        int         `json:"totalSections"`
	CompletionPercentage int         `json:"completionPercentage"`
	LastPlayed           int64       `json:"lastPlayed"`
}

func (p SongProgress) Validate() error {
	if p.CurrentSection < 0 || p.TotalSections < 0 {
		return fmt.Errorf("%w: negative section index", apperrors.ErrInvalidInput)
	}
	if p.CompletionPercentage < 0 || p.CompletionPercentage > 100 {
		return fmt.Errorf("%w: completionPercentage %d", apperrors.ErrInvalidInput, p.CompletionPercentage)
	}
	for index, percent := range p.CompletedSections {
		if index < 0 || percent < 0 || percent > 100 {
			return fmt.Errorf("%w: completed section %d=%d", apperrors.ErrInvalidInput, index, percent)
		}
	}
	return nil
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

func DefaultPracticeStats() PracticeStats {
	return PracticeStats{Daily: map[string]DailyStats{}}
}

func (s PracticeStats) Validate() error {
	if s.Daily == nil {
		return fmt.Errorf("%w: practiceStats.daily missing", apperrors.ErrInvalidInput)
	}
	for date, day := range s.Daily {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("%w: daily key %q", apperrors.ErrInvalidInput, date)
		}
		if day.MinutesPracticed < 0 || day.SectionsCompleted < 0 || day.NotesPlayed < 0 {
			return fmt.Errorf("%w: negative daily stats for %s", apperrors.ErrInvalidInput, date)
		}
	}
	if s.Total.MinutesPracticed < 0 || s.Total.SectionsCompleted < 0 || s.Total.SessionsCompleted < 0 {
		return fmt.Errorf("%w: negative totals", apperrors.ErrInvalidInput)
	}
	return nil
}

type RecentFile struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	LastModified int64  `json:"lastModified"`
	Path         string `json:"path,omitempty"`
	LastOpened   int64  `json:"lastOpened"`
}

// AddRecent puts file first, dropping older entries with the same name, and
// keeps at most MaxRecentFiles.
func AddRecent(files []RecentFile, file RecentFile, now time.Time) []RecentFile {
	file.LastOpened = now.UnixMilli()
	out := make([]RecentFile, 0, len(files)+1)
	out = append(out, file)
	for _, f := range files {
		if f.Name == file.Name {
			continue
		}
		out = append(out, f)
	}
	if len(out) > MaxRecentFiles {
		out = out[:MaxRecentFiles]
	}
	return out
}

func ValidateRecentFiles(files []RecentFile) error {
	for i, f := range files {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: recent file %d has no name", apperrors.ErrInvalidInput, i)
		}
		if f.Size < 0 {
			return fmt.Errorf("%w: recent file %q has negative size", apperrors.ErrInvalidInput, f.Name)
		}
	}
	return nil
}
