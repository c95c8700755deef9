package in

import (
	"context"

	"keyloop/internal/modules/storage/dto"
)

type Usecase interface {
	Preferences(ctx context.Context) (dto.Preferences, error)
	SavePreferences(ctx context.Context, patch dto.PreferencesPatch) (dto.Preferences, error)
	SongProgress(ctx context.Context, key string) (dto.SongProgress, bool, error)
	ListSongProgress(ctx context.Context) ([]dto.SongProgress, error)
	SaveSongProgress(ctx context.Context, record dto.SongProgress) error
	PracticeStats(ctx context.Context) (dto.PracticeStats, error)
	SavePracticeStats(ctx context.Context, stats dto.PracticeStats) error
	RecentFiles(ctx context.Context) ([]dto.RecentFile, error)
	AddRecentFile(ctx context.Context, file dto.RecentFile) ([]dto.RecentFile, error)
	Settings(ctx context.Context) (map[string]any, error)
	SaveSettings(ctx context.Context, values map[string]any) (map[string]any, error)
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) (dto.ImportOutput, error)
	ClearAll(ctx context.Context) error
	Available(ctx context.Context) bool
}
