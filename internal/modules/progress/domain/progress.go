package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	apperrors "keyloop/internal/platform/errors"
)

const Complete = 100

// SongIdentity tells apart files that share a name.
type SongIdentity struct {
	FileName     string
	FileSize     int64
	LastModified time.Time
}

func (id SongIdentity) Key() string {
	return fmt.Sprintf("%s_%d_%d", id.FileName, id.FileSize, id.LastModified.UnixMilli())
}

func (id SongIdentity) Validate() error {
	if strings.TrimSpace(id.FileName) == "" {
		return fmt.Errorf("%w: song identity needs a file name", apperrors.ErrInvalidInput)
	}
	if id.FileSize < 0 {
		return fmt.Errorf("%w: negative file size", apperrors.ErrInvalidInput)
	}
	return nil
}

// Record is the persisted progress of one song.
type Record struct {
	FileName             string
	CurrentSection       int
	CompletedSections    map[int]int
	TotalSections        int
	CompletionPercentage int
	LastPlayed           time.Time
}

type Stats struct {
	CompletedCount       int
	SectionCount         int
	CompletionPercentage int
}

// Tracker holds the section completion map of the open song.
type Tracker struct {
	identity     SongIdentity
	sectionCount int
	current      int
	completed    map[int]int
	restored     bool
}

func NewTracker(identity SongIdentity, sectionCount int) *Tracker {
	if sectionCount < 0 {
		sectionCount = 0
	}
	return &Tracker{identity: identity, sectionCount: sectionCount, completed: make(map[int]int)}
}

// RestoreTracker rebuilds a tracker from a stored record. Entries that no
// longer fit the current section count are dropped and the current section is
// clamped.
func RestoreTracker(identity SongIdentity, sectionCount int, record Record) *Tracker {
	t := NewTracker(identity, sectionCount)
	for index, percent := range record.CompletedSections {
		if index >= 0 && index < t.sectionCount && percent > 0 {
			t.completed[index] = Complete
		}
	}
	t.current = clamp(record.CurrentSection, t.sectionCount)
	t.restored = true
	return t
}

func (t *Tracker) Identity() SongIdentity {
	return t.identity
}

func (t *Tracker) SectionCount() int {
	return t.sectionCount
}

func (t *Tracker) Current() int {
	return t.current
}

// MarkComplete is idempotent. It reports whether the map changed.
func (t *Tracker) MarkComplete(index int) (bool, error) {
	if err := t.checkIndex(index); err != nil {
		return false, err
	}
	if t.completed[index] == Complete {
		return false, nil
	}
	t.completed[index] = Complete
	return true, nil
}

func (t *Tracker) SetCurrent(index int) (bool, error) {
	if err := t.checkIndex(index); err != nil {
		return false, err
	}
	if t.current == index {
		return false, nil
	}
	t.current = index
	return true, nil
}

func (t *Tracker) IsComplete(index int) bool {
	return t.completed[index] == Complete
}

func (t *Tracker) Completed() map[int]int {
	out := make(map[int]int, len(t.completed))
	for k, v := range t.completed {
		out[k] = v
	}
	return out
}

func (t *Tracker) CompletedIndexes() []int {
	out := make([]int, 0, len(t.completed))
	for k := range t.completed {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func (t *Tracker) Derived() Stats {
	return Derive(len(t.completed), t.sectionCount)
}

func (t *Tracker) Record(now time.Time) Record {
	stats := t.Derived()
	return Record{
		FileName:             t.identity.FileName,
		CurrentSection:       t.current,
		CompletedSections:    t.Completed(),
		TotalSections:        t.sectionCount,
		CompletionPercentage: stats.CompletionPercentage,
		LastPlayed:           now,
	}
}

// Derive computes the completion share, 0 when there are no sections.
func Derive(completed, sections int) Stats {
	stats := Stats{CompletedCount: completed, SectionCount: sections}
	if sections > 0 {
		stats.CompletionPercentage = int(math.Round(float64(completed) / float64(sections) * 100))
	}
	return stats
}

func (t *Tracker) checkIndex(index int) error {
	if index < 0 || index >= t.sectionCount {
		return fmt.Errorf("%w: section %d out of range [0,%d)", apperrors.ErrInvalidInput, index, t.sectionCount)
	}
	return nil
}

func clamp(index, count int) int {
	if count == 0 || index < 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}

// Entry pairs a stored record with its identity key.
type Entry struct {
	Key    string
	Record Record
}

// View is an immutable copy of a tracker's state.
type View struct {
	Identity  SongIdentity
	Current   int
	Completed []int
	Stats     Stats
	// Restored is true for the lifetime of a tracker rebuilt from a record.
	Restored  bool
}

func (t *Tracker) View() View {
	return View{
		Identity:  t.identity,
		Current:   t.current,
		Completed: t.CompletedIndexes(),
		Stats:     t.Derived(),
		Restored:  t.restored,
	}
}
