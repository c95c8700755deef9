package out

import (
	"fmt"
	"math"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"

	playbackout "keyloop/internal/modules/playback/port/out"
	"keyloop/internal/platform/logging"
	"keyloop/internal/platform/pitch"
)

const volumeController = 7

// MIDIOutSynth drives an external MIDI device or soft synth. Releases are
// timed on the wall clock because the device has no notion of duration. A key
// struck again while still sounding gets a single NoteOff, when its last
// overlapping note ends.
type MIDIOutSynth struct {
	mu      sync.Mutex
	send    func(midi.Message) error
	channel uint8
	logger  *zap.Logger
	after   func(d time.Duration, f func())
	timers  map[*time.Timer]struct{}
	held    map[uint8]int
	closed  bool
}

func NewMIDIOutSynth(send func(midi.Message) error, channel uint8, logger *zap.Logger) *MIDIOutSynth {
	s := &MIDIOutSynth{
		send:    send,
		channel: channel & 0x0f,
		logger:  logging.OrNop(logger),
		timers:  make(map[*time.Timer]struct{}),
		held:    make(map[uint8]int),
	}
	s.after = s.afterFunc
	return s
}

var (
	_ playbackout.Synthesizer  = (*MIDIOutSynth)(nil)
	_ playbackout.VolumeSetter = (*MIDIOutSynth)(nil)
)

func (s *MIDIOutSynth) TriggerAttackRelease(name string, duration, _ float64, velocity float64) {
	key, err := pitch.Number(name)
	if err != nil {
		s.logger.Warn("midi out: unknown pitch", zap.String("pitch", name), zap.Error(err))
		return
	}
	note := uint8(key)
	s.mu.Lock()
	err = s.writeLocked(midi.NoteOn(s.channel, note, velocityByte(velocity)))
	if err == nil {
		s.held[note]++
	}
	s.mu.Unlock()
	if err != nil {
		return
	}
	s.after(time.Duration(duration*float64(time.Second)), func() { s.release(note) })
}

func (s *MIDIOutSynth) release(note uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held[note] > 1 {
		s.held[note]--
		return
	}
	delete(s.held, note)
	_ = s.writeLocked(midi.NoteOff(s.channel, note))
}

func (s *MIDIOutSynth) SetVolume(volume int) {
	value := uint8(math.Round(float64(volume) / 100 * 127))
	_ = s.write(midi.ControlChange(s.channel, volumeController, value))
}

// Close silences the channel and stops pending releases.
func (s *MIDIOutSynth) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	for timer := range s.timers {
		timer.Stop()
	}
	s.timers = nil
	clear(s.held)
	s.mu.Unlock()
	// all notes off
	err := s.write(midi.ControlChange(s.channel, 123, 0))
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}

func (s *MIDIOutSynth) write(msg midi.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(msg)
}

func (s *MIDIOutSynth) writeLocked(msg midi.Message) error {
	if s.closed {
		return fmt.Errorf("midi out closed")
	}
	if err := s.send(msg); err != nil {
		s.logger.Warn("midi out send failed", zap.String("msg", msg.String()), zap.Error(err))
		return err
	}
	return nil
}

func (s *MIDIOutSynth) afterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timers == nil {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, timer)
		s.mu.Unlock()
		f()
	})
	s.timers[timer] = struct{}{}
}

func velocityByte(velocity float64) uint8 {
	v := math.Round(velocity * 127)
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
