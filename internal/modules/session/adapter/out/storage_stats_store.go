package out

import (
	"context"
	"time"

	"keyloop/internal/modules/session/domain"
	sessionout "keyloop/internal/modules/session/port/out"
	storagedto "keyloop/internal/modules/storage/dto"
	storagein "keyloop/internal/modules/storage/port/in"
)

// StorageStatsStore keeps the aggregate in the practiceStats namespace.
type StorageStatsStore struct {
	storage storagein.Usecase
}

func NewStorageStatsStore(storage storagein.Usecase) sessionout.StatsStore {
	return &StorageStatsStore{storage: storage}
}

func (s *StorageStatsStore) Load(ctx context.Context) (domain.PracticeStats, error) {
	stored, err := s.storage.PracticeStats(ctx)
	if err != nil {
		return domain.NewPracticeStats(), err
	}
	out := domain.NewPracticeStats()
	for date, day := range stored.Daily {
		out.Daily[date] = domain.Day{Minutes: day.MinutesPracticed, SectionsCompleted: day.SectionsCompleted, NotesPlayed: day.NotesPlayed}
	}
	out.Total = domain.Totals{
		Minutes:           stored.Total.MinutesPracticed,
		SectionsCompleted: stored.Total.SectionsCompleted,
		SessionsCompleted: stored.Total.SessionsCompleted,
	}
	if stored.LastSession != nil {
		out.LastSession = time.UnixMilli(*stored.LastSession).UTC()
	}
	return out, nil
}

func (s *StorageStatsStore) Save(ctx context.Context, stats domain.PracticeStats) error {
	out := storagedto.PracticeStats{
		Daily: make(map[string]storagedto.DailyStats, len(stats.Daily)),
		Total: storagedto.TotalStats{
			MinutesPracticed:  stats.Total.Minutes,
			SectionsCompleted: stats.Total.SectionsCompleted,
			SessionsCompleted: stats.Total.SessionsCompleted,
		},
	}
	for date, day := range stats.Daily {
		out.Daily[date] = storagedto.DailyStats{MinutesPracticed: day.Minutes, SectionsCompleted: day.SectionsCompleted, NotesPlayed: day.NotesPlayed}
	}
	if !stats.LastSession.IsZero() {
		ms := stats.LastSession.UnixMilli()
		out.LastSession = &ms
	}
	return s.storage.SavePracticeStats(ctx, out)
}
