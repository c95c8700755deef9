package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"keyloop/internal/platform/clock"
)

type Day struct {
	Minutes           float64
	SectionsCompleted int
	NotesPlayed       int
}

type Totals struct {
	Minutes           float64
	SectionsCompleted int
	SessionsCompleted int
}

// PracticeStats aggregates sessions per UTC day and overall. A zero
// LastSession means no session was ever recorded.
type PracticeStats struct {
	Daily       map[string]Day
	Total       Totals
	LastSession time.Time
}

func NewPracticeStats() PracticeStats {
	return PracticeStats{Daily: make(map[string]Day)}
}

// Record adds a session to the day of now and to the totals.
func (p *PracticeStats) Record(s Session, now time.Time) {
	if p.Daily == nil {
		p.Daily = make(map[string]Day)
	}
	key := clock.Date(now)
	day := p.Daily[key]
	day.Minutes += s.DurationMinutes
	day.SectionsCompleted += s.SectionsCompleted
	day.NotesPlayed += s.NotesPlayed
	p.Daily[key] = day

	p.Total.Minutes += s.DurationMinutes
	p.Total.SectionsCompleted += s.SectionsCompleted
	p.Total.SessionsCompleted++
	p.LastSession = now
}

func (p PracticeStats) Today(now time.Time) Day {
	return p.Daily[clock.Date(now)]
}

// Dates returns the recorded days, newest first.
func (p PracticeStats) Dates() []string {
	out := make([]string, 0, len(p.Daily))
	for date := range p.Daily {
		out = append(out, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Streak counts consecutive practiced days ending today. A day without
// practice today yields 0.
func (p PracticeStats) Streak(today time.Time) int {
	base, _ := time.Parse("2006-01-02", clock.Date(today))
	streak := 0
	for _, date := range p.Dates() {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		diff := int(math.Floor(base.Sub(day).Hours() / 24))
		if diff != streak {
			break
		}
		streak++
	}
	return streak
}

// FormatMinutes renders "1h 5m" or "42m".
func FormatMinutes(minutes float64) string {
	hours := int(math.Floor(minutes / 60))
	mins := int(math.Round(math.Mod(minutes, 60)))
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
