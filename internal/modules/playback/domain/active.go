package domain

import (
	"sort"
	"sync"
)

// ActiveNotes counts overlapping pulses per pitch so a key stays lit until
// its last pulse ends.
type ActiveNotes struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewActiveNotes() *ActiveNotes {
	return &ActiveNotes{counts: make(map[string]int)}
}

// On reports whether the pitch just became active.
func (a *ActiveNotes) On(pitch string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counts[pitch]++
	return a.counts[pitch] == 1
}

// Off reports whether the pitch just became inactive.
func (a *ActiveNotes) Off(pitch string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.counts[pitch]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(a.counts, pitch)
		return true
	}
	a.counts[pitch] = n - 1
	return false
}

func (a *ActiveNotes) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counts = make(map[string]int)
}

func (a *ActiveNotes) Pitches() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.counts))
	for p := range a.counts {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (a *ActiveNotes) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.counts)
}
