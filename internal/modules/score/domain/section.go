package domain

import (
	"fmt"
	"math"
)

type Section struct {
	Index     int
	StartTime float64
	EndTime   float64
	Notes     []NoteEvent
}

func (s Section) Length() float64 {
	return s.EndTime - s.StartTime
}

func (s Section) Label() string {
	return fmt.Sprintf("Section %d (%s - %s)", s.Index+1, Clock(s.StartTime), Clock(s.EndTime))
}

type SegmentParams struct {
	Notes           []NoteEvent
	TempoBPM        float64
	BeatsPerMeasure int
	TotalDuration   float64
	BarsPerSection  int
}

// TimePerBar is the bar length in seconds, applying tempo and meter defaults.
func (p SegmentParams) TimePerBar() float64 {
	tempo := p.TempoBPM
	if tempo <= 0 {
		tempo = DefaultTempoBPM
	}
	beats := p.BeatsPerMeasure
	if beats <= 0 {
		beats = DefaultBeatsPerMeasure
	}
	return 60 / tempo * float64(beats)
}

// Segment partitions notes into contiguous bar-aligned sections. A note is
// assigned when start <= note.StartTime < end, so a note starting exactly at
// TotalDuration lands in no section.
func Segment(p SegmentParams) ([]Section, error) {
	if p.BarsPerSection < 1 {
		return nil, fmt.Errorf("bars per section must be at least 1, got %d", p.BarsPerSection)
	}
	if p.TotalDuration < 0 || math.IsNaN(p.TotalDuration) || math.IsInf(p.TotalDuration, 0) {
		return nil, fmt.Errorf("invalid total duration %v", p.TotalDuration)
	}
	timePerBar := p.TimePerBar()
	totalBars := int(math.Ceil(p.TotalDuration / timePerBar))
	sectionCount := int(math.Ceil(float64(totalBars) / float64(p.BarsPerSection)))
	span := float64(p.BarsPerSection) * timePerBar

	sections := make([]Section, 0, sectionCount)
	for i := 0; i < sectionCount; i++ {
		start := float64(i) * span
		end := math.Min(float64(i+1)*span, p.TotalDuration)
		notes := make([]NoteEvent, 0)
		for _, n := range p.Notes {
			if n.StartTime >= start && n.StartTime < end {
				notes = append(notes, n)
			}
		}
		sections = append(sections, Section{Index: i, StartTime: start, EndTime: end, Notes: notes})
	}
	return sections, nil
}

// Clock renders seconds as m:ss.
func Clock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}
