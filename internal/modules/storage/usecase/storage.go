package usecase

import (
	"context"
	"fmt"
	"sort"

	"keyloop/internal/modules/storage/domain"
	"keyloop/internal/modules/storage/dto"
	storagein "keyloop/internal/modules/storage/port/in"
	"keyloop/internal/modules/storage/service"
	apperrors "keyloop/internal/platform/errors"
)

type Interactor struct {
	svc *service.StorageService
}

func NewInteractor(svc *service.StorageService) storagein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Preferences(ctx context.Context) (dto.Preferences, error) {
	prefs, err := i.svc.Preferences(ctx)
	return toPreferencesDTO(prefs), err
}

func (i *Interactor) SavePreferences(ctx context.Context, patch dto.PreferencesPatch) (dto.Preferences, error) {
	prefs, err := i.svc.SavePreferences(ctx, domain.PreferencesPatch{
		PlaybackRate:   patch.PlaybackRate,
		Volume:         patch.Volume,
		SelectedHand:   patch.SelectedHand,
		BarsPerSection: patch.BarsPerSection,
		IsLooping:      patch.IsLooping,
		Theme:          patch.Theme,
	})
	return toPreferencesDTO(prefs), err
}

func (i *Interactor) SongProgress(ctx context.Context, key string) (dto.SongProgress, bool, error) {
	if key == "" {
		return dto.SongProgress{}, false, fmt.Errorf("%w: song key is required", apperrors.ErrInvalidInput)
	}
	record, ok, err := i.svc.SongProgress(ctx, key)
	if err != nil || !ok {
		return dto.SongProgress{}, false, err
	}
	return toSongProgressDTO(key, record), true, nil
}

// ListSongProgress returns every record, most recently played first.
func (i *Interactor) ListSongProgress(ctx context.Context) ([]dto.SongProgress, error) {
	all, err := i.svc.AllSongProgress(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SongProgress, 0, len(all))
	for key, record := range all {
		out = append(out, toSongProgressDTO(key, record))
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].LastPlayed != out[b].LastPlayed {
			return out[a].LastPlayed > out[b].LastPlayed
		}
		return out[a].Key < out[b].Key
	})
	return out, nil
}

func (i *Interactor) SaveSongProgress(ctx context.Context, record dto.SongProgress) error {
	if record.Key == "" {
		return fmt.Errorf("%w: song key is required", apperrors.ErrInvalidInput)
	}
	return i.svc.SaveSongProgress(ctx, record.Key, domain.SongProgress{
		FileName:             record.FileName,
		CurrentSection:       record.CurrentSection,
		CompletedSections:    copyCompleted(record.CompletedSections),
		TotalSections:        record.TotalSections,
		CompletionPercentage: record.CompletionPercentage,
	})
}

func (i *Interactor) PracticeStats(ctx context.Context) (dto.PracticeStats, error) {
	stats, err := i.svc.PracticeStats(ctx)
	return toStatsDTO(stats), err
}

func (i *Interactor) SavePracticeStats(ctx context.Context, stats dto.PracticeStats) error {
	return i.svc.SavePracticeStats(ctx, fromStatsDTO(stats))
}

func (i *Interactor) RecentFiles(ctx context.Context) ([]dto.RecentFile, error) {
	files, err := i.svc.RecentFiles(ctx)
	return toRecentDTOs(files), err
}

func (i *Interactor) AddRecentFile(ctx context.Context, file dto.RecentFile) ([]dto.RecentFile, error) {
	files, err := i.svc.AddRecentFile(ctx, domain.RecentFile{
		Name:         file.Name,
		Size:         file.Size,
		LastModified: file.LastModified,
		Path:         file.Path,
	})
	return toRecentDTOs(files), err
}

func (i *Interactor) Settings(ctx context.Context) (map[string]any, error) {
	return i.svc.Settings(ctx)
}

func (i *Interactor) SaveSettings(ctx context.Context, values map[string]any) (map[string]any, error) {
	return i.svc.SaveSettings(ctx, values)
}

func (i *Interactor) Export(ctx context.Context) ([]byte, error) {
	return i.svc.Export(ctx)
}

func (i *Interactor) Import(ctx context.Context, data []byte) (dto.ImportOutput, error) {
	written, err := i.svc.Import(ctx, data)
	if err != nil {
		return dto.ImportOutput{}, err
	}
	out := dto.ImportOutput{Namespaces: make([]string, 0, len(written))}
	for _, ns := range written {
		out.Namespaces = append(out.Namespaces, string(ns))
	}
	return out, nil
}

func (i *Interactor) ClearAll(ctx context.Context) error {
	return i.svc.ClearAll(ctx)
}

func (i *Interactor) Available(ctx context.Context) bool {
	return i.svc.Available(ctx)
}

func toPreferencesDTO(p domain.Preferences) dto.Preferences {
	return dto.Preferences{
		PlaybackRate:   p.PlaybackRate,
		Volume:         p.Volume,
		SelectedHand:   p.SelectedHand,
		BarsPerSection: p.BarsPerSection,
		IsLooping:      p.IsLooping,
		Theme:          p.Theme,
		LastUpdated:    p.LastUpdated,
	}
}

func toSongProgressDTO(key string, p domain.SongProgress) dto.SongProgress {
	return dto.SongProgress{
		Key:                  key,
		FileName:             p.FileName,
		CurrentSection:       p.CurrentSection,
		CompletedSections:    copyCompleted(p.CompletedSections),
		TotalSections:        p.TotalSections,
		CompletionPercentage: p.CompletionPercentage,
		LastPlayed:           p.LastPlayed,
	}
}

func copyCompleted(in map[int]int) map[int]int {
	out := make(map[int]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func toStatsDTO(s domain.PracticeStats) dto.PracticeStats {
	out := dto.PracticeStats{
		Daily:       make(map[string]dto.DailyStats, len(s.Daily)),
		Total:       dto.TotalStats(s.Total),
		LastSession: s.LastSession,
	}
	for date, day := range s.Daily {
		out.Daily[date] = dto.DailyStats(day)
	}
	return out
}

func fromStatsDTO(s dto.PracticeStats) domain.PracticeStats {
	out := domain.PracticeStats{
		Daily:       make(map[string]domain.DailyStats, len(s.Daily)),
		Total:       domain.TotalStats(s.Total),
		LastSession: s.LastSession,
	}
	for date, day := range s.Daily {
		out.Daily[date] = domain.DailyStats(day)
	}
	return out
}

func toRecentDTOs(files []domain.RecentFile) []dto.RecentFile {
	out := make([]dto.RecentFile, 0, len(files))
	for _, f := range files {
		out = append(out, dto.RecentFile(f))
	}
	return out
}
