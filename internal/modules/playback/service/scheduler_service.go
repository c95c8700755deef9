package service

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"keyloop/internal/modules/playback/domain"
	playbackout "keyloop/internal/modules/playback/port/out"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/logging"
	"keyloop/internal/platform/pitch"
)

// SchedulerService owns the play/stop/loop state machine for the current
// section. Lock order is scheduler, then transport, then active notes.
type SchedulerService struct {
	mu        sync.Mutex
	transport playbackout.Transport
	synth     playbackout.Synthesizer
	sink      playbackout.NoteSink
	notifier  playbackout.ProgressNotifier
	logger    *zap.Logger
	active    *domain.ActiveNotes
	sections  []domain.Section
	state     domain.State
	scheduled int
}

func NewSchedulerService(transport playbackout.Transport, synth playbackout.Synthesizer, sink playbackout.NoteSink, notifier playbackout.ProgressNotifier, logger *zap.Logger) *SchedulerService {
	if sink == nil {
		sink = discardSink{}
	}
	return &SchedulerService{
		transport: transport,
		synth:     synth,
		sink:      sink,
		notifier:  notifier,
		logger:    logging.OrNop(logger),
		active:    domain.NewActiveNotes(),
		state: domain.State{
			Status:     domain.Stopped,
			TempoScale: 1,
			Volume:     domain.DefaultVolume,
		},
	}
}

// Load replaces the section list wholesale and stops playback.
func (s *SchedulerService) Load(sections []domain.Section, current int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.sections = sections
	s.state.SectionCount = len(sections)
	s.state.CurrentSection = clampIndex(current, len(sections))
}

// Play schedules the current section from position 0. Any live schedule is
// cancelled first. Without a current section it does nothing.
func (s *SchedulerService) Play() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playLocked()
	return s.stateLocked()
}

func (s *SchedulerService) Stop() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	return s.stateLocked()
}

func (s *SchedulerService) Toggle() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsPlaying() {
		s.stopLocked()
	} else {
		s.playLocked()
	}
	return s.stateLocked()
}

// playLocked keeps the transport stopped at position 0 until the new set is
// queued and configured, so a clock tick in between fires nothing.
func (s *SchedulerService) playLocked() {
	section, ok := s.currentLocked()
	if !ok {
		return
	}
	s.stopLocked()

	cues := domain.BuildCues(section, s.state.TempoScale)
	events := make([]playbackout.Event, 0, len(cues))
	for _, cue := range cues {
		events = append(events, playbackout.Event{Offset: cue.Offset, Fire: s.action(cue)})
	}
	s.transport.SetLoop(s.state.Loop, 0, section.Length())
	s.transport.SetBPM(domain.TransportBPM(s.state.TempoScale))
	s.transport.Submit(events)
	s.transport.Start()
	s.scheduled = domain.Attacks(cues)
	s.state.Status = domain.Playing

	s.logger.Debug("section scheduled",
		zap.Int("section", section.Index),
		zap.Int("notes", s.scheduled),
		zap.Float64("length", section.Length()),
		zap.Bool("loop", s.state.Loop),
	)
}

// Next stops playback, marks the section being left complete and advances.
// It reports false at the last section.
func (s *SchedulerService) Next(ctx context.Context) (domain.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentSection >= len(s.sections)-1 {
		return s.stateLocked(), false
	}
	s.stopLocked()
	left := s.state.CurrentSection
	if s.notifier != nil {
		if err := s.notifier.SectionCompleted(ctx, left); err != nil {
			s.logger.Warn("section completion not recorded", zap.Int("section", left), zap.Error(err))
		}
	}
	s.state.CurrentSection = left + 1
	s.notifyChangedLocked(ctx)
	return s.stateLocked(), true
}

// Previous stops playback and moves back one section without touching
// completion. It reports false at the first section.
func (s *SchedulerService) Previous(ctx context.Context) (domain.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentSection <= 0 || len(s.sections) == 0 {
		return s.stateLocked(), false
	}
	s.stopLocked()
	s.state.CurrentSection--
	s.notifyChangedLocked(ctx)
	return s.stateLocked(), true
}

func (s *SchedulerService) Select(ctx context.Context, index int) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.sections) {
		return s.stateLocked(), fmt.Errorf("%w: section %d out of range [0,%d)", apperrors.ErrInvalidInput, index, len(s.sections))
	}
	s.stopLocked()
	if index != s.state.CurrentSection {
		s.state.CurrentSection = index
		s.notifyChangedLocked(ctx)
	}
	return s.stateLocked(), nil
}

// SetLoop applies to the live schedule when playing.
func (s *SchedulerService) SetLoop(enabled bool) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loop = enabled
	if section, ok := s.currentLocked(); ok && s.state.IsPlaying() {
		s.transport.SetLoop(enabled, 0, section.Length())
	}
	return s.stateLocked()
}

func (s *SchedulerService) SetTempoScale(scale float64) (domain.State, error) {
	if err := domain.ValidateTempoScale(scale); err != nil {
		return s.State(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.TempoScale = scale
	s.transport.SetBPM(domain.TransportBPM(scale))
	return s.stateLocked(), nil
}

func (s *SchedulerService) SetVolume(volume int) (domain.State, error) {
	if err := domain.ValidateVolume(volume); err != nil {
		return s.State(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Volume = volume
	if setter, ok := s.synth.(playbackout.VolumeSetter); ok {
		setter.SetVolume(volume)
	}
	return s.stateLocked(), nil
}

// Seek moves the transport within the current section.
func (s *SchedulerService) Seek(position float64) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	section, ok := s.currentLocked()
	if !ok {
		return s.stateLocked(), apperrors.ErrNoSong
	}
	if math.IsNaN(position) {
		return s.stateLocked(), fmt.Errorf("%w: seek position", apperrors.ErrInvalidInput)
	}
	s.transport.Seek(math.Max(0, math.Min(position, section.Length())))
	return s.stateLocked(), nil
}

// PressKey sounds a single eighth note now. It does not touch the schedule.
func (s *SchedulerService) PressKey(name string) error {
	if _, err := pitch.Number(name); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synth.TriggerAttackRelease(name, domain.KeyPressDuration, s.transport.Position(), domain.KeyPressVelocity)
	return nil
}

func (s *SchedulerService) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *SchedulerService) ActiveNotes() []string {
	return s.active.Pitches()
}

// Scheduled is the number of note triggers in the live schedule set.
func (s *SchedulerService) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled
}

func (s *SchedulerService) Current() (domain.Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *SchedulerService) action(cue domain.Cue) func(at float64) {
	switch cue.Kind {
	case domain.Attack:
		return func(at float64) {
			s.synth.TriggerAttackRelease(cue.Pitch, cue.Duration, at, cue.Velocity)
			if s.active.On(cue.Pitch) {
				s.sink.Publish(playbackout.NoteEvent{Kind: playbackout.NoteOn, Pitch: cue.Pitch, At: at})
			}
		}
	default:
		return func(at float64) {
			if s.active.Off(cue.Pitch) {
				s.sink.Publish(playbackout.NoteEvent{Kind: playbackout.NoteOff, Pitch: cue.Pitch, At: at})
			}
		}
	}
}

func (s *SchedulerService) stopLocked() {
	s.transport.Stop()
	s.transport.Cancel()
	s.scheduled = 0
	s.clearActiveLocked()
	s.state.Status = domain.Stopped
}

func (s *SchedulerService) clearActiveLocked() {
	if s.active.Len() == 0 {
		return
	}
	s.active.Clear()
	s.sink.Publish(playbackout.NoteEvent{Kind: playbackout.Cleared})
}

func (s *SchedulerService) notifyChangedLocked(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SectionChanged(ctx, s.state.CurrentSection); err != nil {
		s.logger.Warn("current section not recorded", zap.Int("section", s.state.CurrentSection), zap.Error(err))
	}
}

func (s *SchedulerService) currentLocked() (domain.Section, bool) {
	if len(s.sections) == 0 {
		return domain.Section{}, false
	}
	return s.sections[s.state.CurrentSection], true
}

func (s *SchedulerService) stateLocked() domain.State {
	out := s.state
	out.Position = s.transport.Position()
	return out
}

func clampIndex(index, count int) int {
	if count == 0 || index < 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}

type discardSink struct{}

func (discardSink) Publish(playbackout.NoteEvent) {}
