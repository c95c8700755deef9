package out

import "context"

// Event is one queued transport action. Offset is in transport seconds from
// the start of the loop. Fire receives the offset it was scheduled at.
type Event struct {
	Offset float64
	Fire   func(at float64)
}

// Transport owns the playback clock. Submit replaces the whole queue, so at
// most one schedule set is ever live.
type Transport interface {
	Submit(events []Event)
	Cancel()
	SetLoop(enabled bool, start, end float64)
	SetBPM(bpm float64)
	Seek(position float64)
	Start()
	Stop()
	Position() float64
	Pending() int
}

type Synthesizer interface {
	TriggerAttackRelease(pitch string, duration, at, velocity float64)
}

// VolumeSetter is implemented by synthesizers with a master volume.
type VolumeSetter interface {
	SetVolume(volume int)
}

type NoteKind string

const (
	NoteOn  NoteKind = "on"
	NoteOff NoteKind = "off"
	Cleared NoteKind = "cleared"
)

type NoteEvent struct {
	Kind  NoteKind
	Pitch string
	At    float64
}

// NoteSink receives keyboard highlight changes.
type NoteSink interface {
	Publish(event NoteEvent)
}

type ProgressNotifier interface {
	SectionCompleted(ctx context.Context, index int) error
	SectionChanged(ctx context.Context, index int) error
}
