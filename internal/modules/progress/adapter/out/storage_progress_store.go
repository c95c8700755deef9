package out

import (
	"context"
	"time"

	"keyloop/internal/modules/progress/domain"
	progressout "keyloop/internal/modules/progress/port/out"
	storagedto "keyloop/internal/modules/storage/dto"
	storagein "keyloop/internal/modules/storage/port/in"
)

// StorageProgressStore keeps records in the songProgress namespace.
type StorageProgressStore struct {
	storage storagein.Usecase
}

func NewStorageProgressStore(storage storagein.Usecase) progressout.ProgressStore {
	return &StorageProgressStore{storage: storage}
}

func (s *StorageProgressStore) Load(ctx context.Context, key string) (domain.Record, bool, error) {
	stored, ok, err := s.storage.SongProgress(ctx, key)
	if err != nil || !ok {
		return domain.Record{}, false, err
	}
	return fromStorage(stored), true, nil
}

func (s *StorageProgressStore) Save(ctx context.Context, key string, record domain.Record) error {
	return s.storage.SaveSongProgress(ctx, storagedto.SongProgress{
		Key:                  key,
		FileName:             record.FileName,
		CurrentSection:       record.CurrentSection,
		CompletedSections:    record.CompletedSections,
		TotalSections:        record.TotalSections,
		CompletionPercentage: record.CompletionPercentage,
		LastPlayed:           record.LastPlayed.UnixMilli(),
	})
}

func (s *StorageProgressStore) List(ctx context.Context) ([]domain.Entry, error) {
	stored, err := s.storage.ListSongProgress(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Entry, 0, len(stored))
	for _, item := range stored {
		out = append(out, domain.Entry{Key: item.Key, Record: fromStorage(item)})
	}
	return out, nil
}

func fromStorage(p storagedto.SongProgress) domain.Record {
	completed := make(map[int]int, len(p.CompletedSections))
	for k, v := range p.CompletedSections {
		completed[k] = v
	}
	return domain.Record{
		FileName:             p.FileName,
		CurrentSection:       p.CurrentSection,
		CompletedSections:    completed,
		TotalSections:        p.TotalSections,
		CompletionPercentage: p.CompletionPercentage,
		LastPlayed:           time.UnixMilli(p.LastPlayed).UTC(),
	}
}
