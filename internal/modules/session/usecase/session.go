package usecase

import (
	"context"

	"keyloop/internal/modules/session/domain"
	sessiondto "keyloop/internal/modules/session/dto"
	sessionin "keyloop/internal/modules/session/port/in"
	"keyloop/internal/modules/session/service"
	"keyloop/internal/platform/clock"
)

type Interactor struct {
	svc *service.SessionService
}

func NewInteractor(svc *service.SessionService) sessionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Start(ctx context.Context) (sessiondto.StartOutput, error) {
	active, err := i.svc.Start(ctx)
	if err != nil {
		return sessiondto.StartOutput{}, err
	}
	return sessiondto.StartOutput{SessionID: active.ID, StartedAt: active.StartedAt}, nil
}

func (i *Interactor) SetSong(_ context.Context, key, title string) error {
	return i.svc.SetSong(key, title)
}

func (i *Interactor) Tick(_ context.Context, isPlaying bool) error {
	return i.svc.Tick(isPlaying)
}

func (i *Interactor) RecordKeyPress(_ context.Context) error {
	return i.svc.RecordKeyPress()
}

func (i *Interactor) RecordSectionCompleted(_ context.Context) error {
	return i.svc.RecordSectionCompleted()
}

func (i *Interactor) GetActive(_ context.Context) (sessiondto.ActiveSessionOutput, error) {
	active, err := i.svc.Active()
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	return sessiondto.ActiveSessionOutput{
		SessionID:         active.ID,
		SongKey:           active.SongKey,
		SongTitle:         active.SongTitle,
		StartedAt:         active.StartedAt,
		Elapsed:           active.Elapsed,
		SectionsCompleted: active.SectionsCompleted,
		NotesPlayed:       active.NotesPlayed,
	}, nil
}

func (i *Interactor) End(ctx context.Context) (sessiondto.EndOutput, error) {
	session, recorded, err := i.svc.End(ctx)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	if !recorded {
		return sessiondto.EndOutput{}, nil
	}
	return sessiondto.EndOutput{Recorded: true, Session: toSessionDTO(session)}, nil
}

func (i *Interactor) Stats(ctx context.Context) (sessiondto.StatsOutput, error) {
	stats, err := i.svc.Stats(ctx)
	if err != nil {
		return sessiondto.StatsOutput{}, err
	}
	now := i.svc.Now()
	today := clock.Date(now)
	out := sessiondto.StatsOutput{
		Today:             toDayDTO(today, stats.Today(now)),
		Days:              make([]sessiondto.DayOutput, 0, len(stats.Daily)),
		TotalMinutes:      stats.Total.Minutes,
		TotalFormatted:    domain.FormatMinutes(stats.Total.Minutes),
		SectionsCompleted: stats.Total.SectionsCompleted,
		SessionsCompleted: stats.Total.SessionsCompleted,
		Streak:            stats.Streak(now),
	}
	for _, date := range stats.Dates() {
		out.Days = append(out.Days, toDayDTO(date, stats.Daily[date]))
	}
	if !stats.LastSession.IsZero() {
		last := stats.LastSession
		out.LastSession = &last
	}
	return out, nil
}

func (i *Interactor) History(ctx context.Context, limit int) ([]sessiondto.SessionOutput, error) {
	sessions, err := i.svc.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.SessionOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionDTO(s))
	}
	return out, nil
}

func toSessionDTO(s domain.Session) sessiondto.SessionOutput {
	return sessiondto.SessionOutput{
		SessionID:         s.ID,
		SongTitle:         s.SongTitle,
		StartedAt:         s.StartedAt,
		EndedAt:           s.EndedAt,
		DurationMinutes:   s.DurationMinutes,
		SectionsCompleted: s.SectionsCompleted,
		NotesPlayed:       s.NotesPlayed,
	}
}

func toDayDTO(date string, day domain.Day) sessiondto.DayOutput {
	return sessiondto.DayOutput{Date: date, Minutes: day.Minutes, SectionsCompleted: day.SectionsCompleted, NotesPlayed: day.NotesPlayed}
}
