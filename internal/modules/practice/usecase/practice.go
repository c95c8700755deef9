package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	playbackdto "keyloop/internal/modules/playback/dto"
	playbackin "keyloop/internal/modules/playback/port/in"
	"keyloop/internal/modules/practice/domain"
	"keyloop/internal/modules/practice/dto"
	practicein "keyloop/internal/modules/practice/port/in"
	practiceout "keyloop/internal/modules/practice/port/out"
	"keyloop/internal/modules/practice/service"
	progressdto "keyloop/internal/modules/progress/dto"
	progressin "keyloop/internal/modules/progress/port/in"
	scoredto "keyloop/internal/modules/score/dto"
	scorein "keyloop/internal/modules/score/port/in"
	sessionin "keyloop/internal/modules/session/port/in"
	storagedto "keyloop/internal/modules/storage/dto"
	storagein "keyloop/internal/modules/storage/port/in"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/logging"
)

type Dependencies struct {
	Score       scorein.Usecase
	Playback    playbackin.Usecase
	Progress    progressin.Usecase
	Session     sessionin.Usecase
	Storage     storagein.Usecase
	Files       practiceout.FileStater
	Preferences *service.PreferenceWriter
	Logger      *zap.Logger
}

// Interactor is the practice controller. Every command runs under one lock so
// a front end never observes a half rebuilt section list.
type Interactor struct {
	score    scorein.Usecase
	playback playbackin.Usecase
	progress progressin.Usecase
	session  sessionin.Usecase
	storage  storagein.Usecase
	files    practiceout.FileStater
	prefs    *service.PreferenceWriter
	logger   *zap.Logger

	mu       sync.Mutex
	song     *scoredto.Song
	identity progressdto.Identity
	seg      domain.Segmentation
	segments scoredto.SegmentOutput
	theme    string
}

func NewInteractor(deps Dependencies) practicein.Usecase {
	return &Interactor{
		score:    deps.Score,
		playback: deps.Playback,
		progress: deps.Progress,
		session:  deps.Session,
		storage:  deps.Storage,
		files:    deps.Files,
		prefs:    deps.Preferences,
		logger:   logging.OrNop(deps.Logger),
		seg:      domain.DefaultSegmentation(),
		theme:    "light",
	}
}

// Start applies the stored preferences and opens a practice session.
func (i *Interactor) Start(ctx context.Context) (dto.Snapshot, error) {
	prefs, err := i.storage.Preferences(ctx)
	if err != nil {
		i.logger.Warn("preferences unreadable, using defaults", zap.Error(err))
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if hand, err := domain.NormalizeHand(prefs.SelectedHand); err == nil {
		i.seg.Hand = hand
	}
	if domain.ValidateBars(prefs.BarsPerSection) == nil {
		i.seg.BarsPerSection = prefs.BarsPerSection
	}
	if theme, err := domain.ValidateTheme(prefs.Theme); err == nil {
		i.theme = theme
	}
	if _, err := i.playback.SetTempoScale(prefs.PlaybackRate); err != nil {
		i.logger.Warn("stored playback rate ignored", zap.Float64("rate", prefs.PlaybackRate), zap.Error(err))
	}
	if _, err := i.playback.SetVolume(prefs.Volume); err != nil {
		i.logger.Warn("stored volume ignored", zap.Int("volume", prefs.Volume), zap.Error(err))
	}
	i.playback.SetLoop(prefs.IsLooping)
	if _, err := i.session.Start(ctx); err != nil && !errors.Is(err, apperrors.ErrActiveSessionExists) {
		return dto.Snapshot{}, err
	}
	return i.snapshotLocked(ctx), nil
}

// LoadSong reads, segments and opens progress for a file. Nothing changes
// unless every step succeeds.
func (i *Interactor) LoadSong(ctx context.Context, path string) (dto.Snapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	info, err := i.files.Stat(path)
	if err != nil {
		return dto.Snapshot{}, err
	}
	song, err := i.score.Load(ctx, scoredto.LoadInput{Path: path})
	if err != nil {
		i.logger.Warn("song rejected", zap.String("path", path), zap.Error(err))
		return dto.Snapshot{}, err
	}
	segments, err := i.score.Segment(ctx, scoredto.SegmentInput{Song: song, Hand: i.seg.Hand, BarsPerSection: i.seg.BarsPerSection})
	if err != nil {
		return dto.Snapshot{}, err
	}
	identity := progressdto.Identity{FileName: info.Name, FileSize: info.Size, LastModified: info.ModTime}
	progress, err := i.progress.Open(ctx, progressdto.OpenInput{Identity: identity, SectionCount: len(segments.Sections)})
	if err != nil {
		return dto.Snapshot{}, err
	}

	i.song = &song
	i.identity = identity
	i.segments = segments
	i.playback.Load(playbackdto.LoadInput{Sections: toPlaybackSections(segments.Sections), Current: progress.CurrentSection})
	i.sessionCall("set song", i.session.SetSong(ctx, progress.Key, info.Name))

	abs, absErr := filepath.Abs(path)
	if absErr != nil {
		abs = path
	}
	if _, err := i.storage.AddRecentFile(ctx, storagedto.RecentFile{
		Name:         info.Name,
		Size:         info.Size,
		LastModified: info.ModTime.UnixMilli(),
		Path:         abs,
	}); err != nil {
		i.logger.Warn("recent files not updated", zap.Error(err))
	}
	i.logger.Info("song loaded",
		zap.String("file", info.Name),
		zap.Int("sections", len(segments.Sections)),
		zap.Bool("restored", progress.Restored),
	)
	return i.snapshotLocked(ctx), nil
}

func (i *Interactor) SetHand(ctx context.Context, hand string) (dto.Snapshot, error) {
	return i.UpdateSettings(ctx, dto.SettingsInput{Hand: &hand})
}

func (i *Interactor) SetBarsPerSection(ctx context.Context, bars int) (dto.Snapshot, error) {
	return i.UpdateSettings(ctx, dto.SettingsInput{BarsPerSection: &bars})
}

// UpdateSettings applies the given fields in order and persists the applied
// ones. A rejected field stops the update; earlier fields stay applied.
func (i *Interactor) UpdateSettings(ctx context.Context, input dto.SettingsInput) (dto.Snapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var patch storagedto.PreferencesPatch
	defer func() {
		if patch != (storagedto.PreferencesPatch{}) {
			i.prefs.Queue(patch)
		}
	}()

	seg := i.seg
	if input.Hand != nil {
		hand, err := domain.NormalizeHand(*input.Hand)
		if err != nil {
			return i.snapshotLocked(ctx), err
		}
		seg.Hand = hand
	}
	if input.BarsPerSection != nil {
		if err := domain.ValidateBars(*input.BarsPerSection); err != nil {
			return i.snapshotLocked(ctx), err
		}
		seg.BarsPerSection = *input.BarsPerSection
	}
	if seg != i.seg {
		if err := i.resegmentLocked(ctx, seg); err != nil {
			return i.snapshotLocked(ctx), err
		}
		patch.SelectedHand = &seg.Hand
		patch.BarsPerSection = &seg.BarsPerSection
	}
	if input.TempoScale != nil {
		if _, err := i.playback.SetTempoScale(*input.TempoScale); err != nil {
			return i.snapshotLocked(ctx), err
		}
		patch.PlaybackRate = input.TempoScale
	}
	if input.Volume != nil {
		if _, err := i.playback.SetVolume(*input.Volume); err != nil {
			return i.snapshotLocked(ctx), err
		}
		patch.Volume = input.Volume
	}
	if input.Loop != nil {
		i.playback.SetLoop(*input.Loop)
		patch.IsLooping = input.Loop
	}
	if input.Theme != nil {
		theme, err := domain.ValidateTheme(*input.Theme)
		if err != nil {
			return i.snapshotLocked(ctx), err
		}
		i.theme = theme
		patch.Theme = &theme
	}
	return i.snapshotLocked(ctx), nil
}

func (i *Interactor) Play(ctx context.Context) (dto.Snapshot, error) {
	return i.command(ctx, func() error { i.playback.Play(); return nil })
}

func (i *Interactor) Stop(ctx context.Context) (dto.Snapshot, error) {
	return i.command(ctx, func() error { i.playback.Stop(); return nil })
}

func (i *Interactor) Toggle(ctx context.Context) (dto.Snapshot, error) {
	return i.command(ctx, func() error { i.playback.Toggle(); return nil })
}

// Next completes the current section and moves forward. At the last
// section it does nothing.
func (i *Interactor) Next(ctx context.Context) (dto.Snapshot, error) {
	return i.command(ctx, func() error {
		if _, moved := i.playback.Next(ctx); moved {
			i.sessionCall("record section", i.session.RecordSectionCompleted(ctx))
		}
		return nil
	})
}

func (i *Interactor) Previous(ctx context.Context) (dto.Snapshot, error) {
	return i.command(ctx, func() error { i.playback.Previous(ctx); return nil })
}

func (i *Interactor) SelectSection(ctx context.Context, index int) (dto.Snapshot, error) {
	return i.command(ctx, func() error {
		_, err := i.playback.Select(ctx, index)
		return err
	})
}

func (i *Interactor) Seek(ctx context.Context, position float64) (dto.Snapshot, error) {
	return i.command(ctx, func() error {
		_, err := i.playback.Seek(position)
		return err
	})
}

// PressKey sounds one key and counts it as a played note.
func (i *Interactor) PressKey(ctx context.Context, pitch string) error {
	if err := i.playback.PressKey(pitch); err != nil {
		return err
	}
	i.sessionCall("record key", i.session.RecordKeyPress(ctx))
	return nil
}

// Tick samples the transport once for the session clock.
func (i *Interactor) Tick(ctx context.Context) error {
	err := i.session.Tick(ctx, i.playback.State().Playing)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return nil
	}
	return err
}

func (i *Interactor) Snapshot(ctx context.Context) (dto.Snapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.snapshotLocked(ctx), nil
}

// Close stops playback, records the session once and saves pending
// preferences.
func (i *Interactor) Close(ctx context.Context) (dto.CloseOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.playback.Stop()
	var out dto.CloseOutput
	end, err := i.session.End(ctx)
	switch {
	case err == nil:
		out.Session = end
	case errors.Is(err, apperrors.ErrNoActiveSession):
	default:
		i.logger.Warn("session not recorded", zap.Error(err))
	}
	if err := i.prefs.Flush(ctx); err != nil {
		i.logger.Warn("preferences not saved", zap.Error(err))
	}
	return out, nil
}

func (i *Interactor) command(ctx context.Context, run func() error) (dto.Snapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	err := run()
	return i.snapshotLocked(ctx), err
}

func (i *Interactor) resegmentLocked(ctx context.Context, seg domain.Segmentation) error {
	if i.song == nil {
		i.seg = seg
		return nil
	}
	segments, err := i.score.Segment(ctx, scoredto.SegmentInput{Song: *i.song, Hand: seg.Hand, BarsPerSection: seg.BarsPerSection})
	if err != nil {
		return err
	}
	progress, err := i.progress.Open(ctx, progressdto.OpenInput{Identity: i.identity, SectionCount: len(segments.Sections)})
	if err != nil {
		return err
	}
	i.seg = seg
	i.segments = segments
	i.playback.Load(playbackdto.LoadInput{Sections: toPlaybackSections(segments.Sections), Current: progress.CurrentSection})
	return nil
}

func (i *Interactor) snapshotLocked(ctx context.Context) dto.Snapshot {
	out := dto.Snapshot{
		Song:           i.song,
		Hand:           i.seg.Hand,
		BarsPerSection: i.seg.BarsPerSection,
		TimePerBar:     i.segments.TimePerBar,
		Theme:          i.theme,
		Sections:       make([]dto.SectionInfo, 0, len(i.segments.Sections)),
		Playback:       i.playback.State(),
	}
	completed := map[int]bool{}
	if i.song != nil {
		if progress, err := i.progress.Current(ctx); err == nil {
			out.Progress = &progress
			for _, index := range progress.CompletedSections {
				completed[index] = true
			}
		}
	}
	for _, section := range i.segments.Sections {
		out.Sections = append(out.Sections, dto.SectionInfo{
			Index:     section.Index,
			Start:     section.Start,
			End:       section.End,
			Label:     section.Label,
			NoteCount: len(section.Notes),
			Completed: completed[section.Index],
		})
	}
	if active, err := i.session.GetActive(ctx); err == nil {
		out.Session = &active
	}
	return out
}

func (i *Interactor) sessionCall(op string, err error) {
	if err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
		i.logger.Warn("session not updated", zap.String("op", op), zap.Error(err))
	}
}

func toPlaybackSections(sections []scoredto.Section) []playbackdto.Section {
	out := make([]playbackdto.Section, 0, len(sections))
	for _, section := range sections {
		notes := make([]playbackdto.Note, 0, len(section.Notes))
		for _, n := range section.Notes {
			notes = append(notes, playbackdto.Note{Start: n.Start, Duration: n.Duration, Pitch: n.Pitch, Velocity: n.Velocity})
		}
		out = append(out, playbackdto.Section{Index: section.Index, Start: section.Start, End: section.End, Notes: notes})
	}
	return out
}
