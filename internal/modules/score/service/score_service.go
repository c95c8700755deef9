package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"keyloop/internal/modules/score/domain"
	scoreout "keyloop/internal/modules/score/port/out"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/logging"
)

const (
	MinBarsPerSection = 1
	MaxBarsPerSection = 16
)

type ScoreService struct {
	source scoreout.NoteSource
	logger *zap.Logger
}

func NewScoreService(source scoreout.NoteSource, logger *zap.Logger) *ScoreService {
	return &ScoreService{source: source, logger: logging.OrNop(logger)}
}

func (s *ScoreService) Load(ctx context.Context, path string) (domain.Song, error) {
	if strings.TrimSpace(path) == "" {
		return domain.Song{}, fmt.Errorf("%w: path is required", apperrors.ErrInvalidInput)
	}
	return s.source.Load(ctx, path)
}

// Sections filters the song by hand and partitions the selection into
// bar-aligned sections spanning the whole song.
func (s *ScoreService) Sections(song domain.Song, hand domain.Hand, barsPerSection int) ([]domain.Section, float64, error) {
	if barsPerSection < MinBarsPerSection || barsPerSection > MaxBarsPerSection {
		return nil, 0, fmt.Errorf("%w: bars per section must be between %d and %d", apperrors.ErrInvalidInput, MinBarsPerSection, MaxBarsPerSection)
	}
	notes, err := domain.FilterTracks(song.Tracks, hand)
	if err != nil {
		return nil, 0, err
	}
	params := domain.SegmentParams{
		Notes:           notes,
		TempoBPM:        song.Tempo(),
		BeatsPerMeasure: song.Beats(),
		TotalDuration:   song.Duration,
		BarsPerSection:  barsPerSection,
	}
	sections, err := domain.Segment(params)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	s.logger.Debug("sections computed",
		zap.String("hand", string(hand)),
		zap.Int("bars", barsPerSection),
		zap.Int("notes", len(notes)),
		zap.Int("sections", len(sections)),
	)
	return sections, params.TimePerBar(), nil
}
