package out

import (
	"context"
	"sort"
	"sync"
	"time"

	"keyloop/internal/modules/playback/domain"
	playbackout "keyloop/internal/modules/playback/port/out"
)

// maxWrapsPerAdvance bounds loop iterations for a single large step.
const maxWrapsPerAdvance = 1024

// ClockTransport is a queue of offset-ordered actions driven by its own clock.
// Transport time advances at wall time scaled by bpm/120. Actions run while the
// transport lock is held and must not call back into the transport.
type ClockTransport struct {
	mu        sync.Mutex
	events    []playbackout.Event
	next      int
	running   bool
	position  float64
	bpm       float64
	loop      bool
	loopStart float64
	loopEnd   float64
}

func NewClockTransport() *ClockTransport {
	return &ClockTransport{bpm: domain.BaseTempoBPM}
}

var _ playbackout.Transport = (*ClockTransport)(nil)

func (t *ClockTransport) Submit(events []playbackout.Event) {
	queued := make([]playbackout.Event, len(events))
	copy(queued, events)
	sort.SliceStable(queued, func(i, j int) bool {
		return queued[i].Offset < queued[j].Offset
	})
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = queued
	t.next = t.indexAt(t.position)
}

func (t *ClockTransport) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
	t.next = 0
}

func (t *ClockTransport) SetLoop(enabled bool, start, end float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loop = enabled
	if end > start {
		t.loopStart = start
		t.loopEnd = end
	}
}

func (t *ClockTransport) SetBPM(bpm float64) {
	if bpm <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bpm = bpm
}

func (t *ClockTransport) Seek(position float64) {
	if position < 0 {
		position = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.position = position
	t.next = t.indexAt(position)
}

func (t *ClockTransport) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = true
}

func (t *ClockTransport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.position = 0
	t.next = 0
}

func (t *ClockTransport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

func (t *ClockTransport) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events) - t.next
}

func (t *ClockTransport) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Advance moves the clock forward by wall-clock d and fires every action that
// became due. On a loop wrap the unfired actions of the finished iteration are
// flushed first so releases past the loop end are never lost.
func (t *ClockTransport) Advance(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || d < 0 {
		return
	}
	target := t.position + d.Seconds()*t.bpm/domain.BaseTempoBPM
	for wraps := 0; t.loop && t.loopEnd > t.loopStart && target >= t.loopEnd; wraps++ {
		t.fireUntil(len(t.events))
		if wraps >= maxWrapsPerAdvance {
			target = t.loopStart
			break
		}
		target = t.loopStart + (target - t.loopEnd)
		t.position = t.loopStart
		t.next = t.indexAt(t.loopStart)
	}
	t.fireUntil(t.dueIndex(target))
	t.position = target
}

// Run drives the clock from a ticker until ctx is done.
func (t *ClockTransport) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.Advance(now.Sub(last))
			last = now
		}
	}
}

func (t *ClockTransport) fireUntil(end int) {
	for t.next < end {
		event := t.events[t.next]
		t.next++
		if event.Fire != nil {
			event.Fire(event.Offset)
		}
	}
}

func (t *ClockTransport) indexAt(position float64) int {
	return sort.Search(len(t.events), func(i int) bool {
		return t.events[i].Offset >= position
	})
}

func (t *ClockTransport) dueIndex(position float64) int {
	return sort.Search(len(t.events), func(i int) bool {
		return t.events[i].Offset > position
	})
}
