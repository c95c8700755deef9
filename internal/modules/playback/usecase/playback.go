package usecase

import (
	"context"

	"keyloop/internal/modules/playback/domain"
	"keyloop/internal/modules/playback/dto"
	playbackin "keyloop/internal/modules/playback/port/in"
	"keyloop/internal/modules/playback/service"
)

type Interactor struct {
	svc *service.SchedulerService
}

func NewInteractor(svc *service.SchedulerService) playbackin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Load(input dto.LoadInput) dto.State {
	sections := make([]domain.Section, 0, len(input.Sections))
	for _, section := range input.Sections {
		notes := make([]domain.Note, 0, len(section.Notes))
		for _, n := range section.Notes {
			notes = append(notes, domain.Note(n))
		}
		sections = append(sections, domain.Section{Index: section.Index, Start: section.Start, End: section.End, Notes: notes})
	}
	i.svc.Load(sections, input.Current)
	return i.state()
}

func (i *Interactor) Play() dto.State {
	i.svc.Play()
	return i.state()
}

func (i *Interactor) Stop() dto.State {
	i.svc.Stop()
	return i.state()
}

func (i *Interactor) Toggle() dto.State {
	i.svc.Toggle()
	return i.state()
}

func (i *Interactor) Next(ctx context.Context) (dto.State, bool) {
	_, moved := i.svc.Next(ctx)
	return i.state(), moved
}

func (i *Interactor) Previous(ctx context.Context) (dto.State, bool) {
	_, moved := i.svc.Previous(ctx)
	return i.state(), moved
}

func (i *Interactor) Select(ctx context.Context, index int) (dto.State, error) {
	_, err := i.svc.Select(ctx, index)
	return i.state(), err
}

func (i *Interactor) SetLoop(enabled bool) dto.State {
	i.svc.SetLoop(enabled)
	return i.state()
}

func (i *Interactor) SetTempoScale(scale float64) (dto.State, error) {
	_, err := i.svc.SetTempoScale(scale)
	return i.state(), err
}

func (i *Interactor) SetVolume(volume int) (dto.State, error) {
	_, err := i.svc.SetVolume(volume)
	return i.state(), err
}

func (i *Interactor) Seek(position float64) (dto.State, error) {
	_, err := i.svc.Seek(position)
	return i.state(), err
}

func (i *Interactor) PressKey(pitch string) error {
	return i.svc.PressKey(pitch)
}

func (i *Interactor) State() dto.State {
	return i.state()
}

func (i *Interactor) state() dto.State {
	s := i.svc.State()
	out := dto.State{
		CurrentSection: s.CurrentSection,
		SectionCount:   s.SectionCount,
		Status:         string(s.Status),
		Playing:        s.IsPlaying(),
		Loop:           s.Loop,
		TempoScale:     s.TempoScale,
		Volume:         s.Volume,
		Position:       s.Position,
		Scheduled:      i.svc.Scheduled(),
		ActiveNotes:    i.svc.ActiveNotes(),
	}
	if section, ok := i.svc.Current(); ok {
		out.SectionLength = section.Length()
	}
	return out
}
