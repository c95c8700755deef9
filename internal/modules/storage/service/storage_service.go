package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"keyloop/internal/modules/storage/domain"
	storageout "keyloop/internal/modules/storage/port/out"
	"keyloop/internal/platform/clock"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/logging"
)

const availabilityKey = "__keyloop_probe__"

type StorageService struct {
	kv     storageout.KVStore
	clock  clock.Clock
	logger *zap.Logger
}

func NewStorageService(kv storageout.KVStore, clock clock.Clock, logger *zap.Logger) *StorageService {
	return &StorageService{kv: kv, clock: clock, logger: logging.OrNop(logger)}
}

// load decodes a namespace into v. A missing document leaves v untouched and
// reports false. Read failures and corrupt documents are persistence errors.
func (s *StorageService) load(ctx context.Context, ns domain.Namespace, v any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, ns.Key())
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %v", apperrors.ErrPersistence, ns, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", apperrors.ErrPersistence, ns, err)
	}
	return true, nil
}

func (s *StorageService) save(ctx context.Context, ns domain.Namespace, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ns, err)
	}
	if err := s.kv.Set(ctx, ns.Key(), raw); err != nil {
		return fmt.Errorf("%w: write %s: %v", apperrors.ErrPersistence, ns, err)
	}
	return nil
}

// Preferences returns the stored preferences over the defaults. On a read
// failure the defaults are returned together with the error.
func (s *StorageService) Preferences(ctx context.Context) (domain.Preferences, error) {
	prefs := domain.DefaultPreferences()
	if _, err := s.load(ctx, domain.NamespacePreferences, &prefs); err != nil {
		return domain.DefaultPreferences(), err
	}
	return prefs, nil
}

// SavePreferences merges patch over the stored preferences. Invalid values are
// rejected before anything is written.
func (s *StorageService) SavePreferences(ctx context.Context, patch domain.PreferencesPatch) (domain.Preferences, error) {
	base, err := s.Preferences(ctx)
	if err != nil {
		s.logger.Warn("preferences unreadable, merging over defaults", zap.Error(err))
	}
	merged := patch.Merge(base, s.clock.Now())
	if err := merged.Validate(); err != nil {
		return base, err
	}
	if err := s.save(ctx, domain.NamespacePreferences, merged); err != nil {
		return merged, err
	}
	return merged, nil
}

func (s *StorageService) AllSongProgress(ctx context.Context) (map[string]domain.SongProgress, error) {
	all := map[string]domain.SongProgress{}
	if _, err := s.load(ctx, domain.NamespaceSongProgress, &all); err != nil {
		return map[string]domain.SongProgress{}, err
	}
	if all == nil {
		all = map[string]domain.SongProgress{}
	}
	return all, nil
}

func (s *StorageService) SongProgress(ctx context.Context, key string) (domain.SongProgress, bool, error) {
	all, err := s.AllSongProgress(ctx)
	if err != nil {
		return domain.SongProgress{}, false, err
	}
	record, ok := all[key]
	return record, ok, nil
}

// SaveSongProgress upserts one record and stamps lastPlayed.
func (s *StorageService) SaveSongProgress(ctx context.Context, key string, record domain.SongProgress) error {
	all, err := s.AllSongProgress(ctx)
	if err != nil {
		return err
	}
	record.LastPlayed = s.clock.Now().UnixMilli()
	if record.CompletedSections == nil {
		record.CompletedSections = map[int]int{}
	}
	all[key] = record
	return s.save(ctx, domain.NamespaceSongProgress, all)
}

func (s *StorageService) PracticeStats(ctx context.Context) (domain.PracticeStats, error) {
	stats := domain.DefaultPracticeStats()
	if _, err := s.load(ctx, domain.NamespacePracticeStats, &stats); err != nil {
		return domain.DefaultPracticeStats(), err
	}
	if stats.Daily == nil {
		stats.Daily = map[string]domain.DailyStats{}
	}
	return stats, nil
}

func (s *StorageService) SavePracticeStats(ctx context.Context, stats domain.PracticeStats) error {
	if err := stats.Validate(); err != nil {
		return err
	}
	return s.save(ctx, domain.NamespacePracticeStats, stats)
}

func (s *StorageService) RecentFiles(ctx context.Context) ([]domain.RecentFile, error) {
	files := []domain.RecentFile{}
	if _, err := s.load(ctx, domain.NamespaceRecentFiles, &files); err != nil {
		return []domain.RecentFile{}, err
	}
	return files, nil
}

func (s *StorageService) AddRecentFile(ctx context.Context, file domain.RecentFile) ([]domain.RecentFile, error) {
	if err := domain.ValidateRecentFiles([]domain.RecentFile{file}); err != nil {
		return nil, err
	}
	files, err := s.RecentFiles(ctx)
	if err != nil {
		return nil, err
	}
	updated := domain.AddRecent(files, file, s.clock.Now())
	if err := s.save(ctx, domain.NamespaceRecentFiles, updated); err != nil {
		return updated, err
	}
	return updated, nil
}

func (s *StorageService) Settings(ctx context.Context) (map[string]any, error) {
	settings := map[string]any{}
	if _, err := s.load(ctx, domain.NamespaceSettings, &settings); err != nil {
		return map[string]any{}, err
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

// SaveSettings merges values into the stored settings object.
func (s *StorageService) SaveSettings(ctx context.Context, values map[string]any) (map[string]any, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	for k, v := range values {
		settings[k] = v
	}
	if err := s.save(ctx, domain.NamespaceSettings, settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// Export serialises every namespace verbatim into one document.
func (s *StorageService) Export(ctx context.Context) ([]byte, error) {
	doc := domain.Backup{Version: domain.BackupVersion, ExportedAt: s.clock.Now().UnixMilli()}
	for _, ns := range domain.Namespaces() {
		raw, ok, err := s.kv.Get(ctx, ns.Key())
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", apperrors.ErrPersistence, ns, err)
		}
		if !ok || !json.Valid(raw) {
			raw = nil
		}
		doc.Set(ns, raw)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import validates the whole document before writing, then writes every
// present namespace in one batch. Absent namespaces keep their live value.
func (s *StorageService) Import(ctx context.Context, data []byte) ([]domain.Namespace, error) {
	parsed, err := domain.ParseBackup(data)
	if err != nil {
		s.logger.Warn("backup rejected", zap.Error(err))
		return nil, err
	}
	entries := make(map[string][]byte, len(parsed))
	written := make([]domain.Namespace, 0, len(parsed))
	for _, ns := range domain.Namespaces() {
		raw, ok := parsed[ns]
		if !ok {
			continue
		}
		entries[ns.Key()] = raw
		written = append(written, ns)
	}
	if err := s.kv.SetMany(ctx, entries); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrImport, err)
	}
	s.logger.Info("backup imported", zap.Int("namespaces", len(written)))
	return written, nil
}

func (s *StorageService) ClearAll(ctx context.Context) error {
	keys := make([]string, 0, len(domain.Namespaces()))
	for _, ns := range domain.Namespaces() {
		keys = append(keys, ns.Key())
	}
	if err := s.kv.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("%w: clear: %v", apperrors.ErrPersistence, err)
	}
	return nil
}

// Available probes the backend with a write and a remove.
func (s *StorageService) Available(ctx context.Context) bool {
	if err := s.kv.Set(ctx, availabilityKey, []byte(`"test"`)); err != nil {
		return false
	}
	return s.kv.Remove(ctx, availabilityKey) == nil
}
