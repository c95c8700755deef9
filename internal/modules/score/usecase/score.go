package usecase

import (
	"context"

	"keyloop/internal/modules/score/domain"
	"keyloop/internal/modules/score/dto"
	scorein "keyloop/internal/modules/score/port/in"
	"keyloop/internal/modules/score/service"
)

type Interactor struct {
	svc *service.ScoreService
}

func NewInteractor(svc *service.ScoreService) scorein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Load(ctx context.Context, input dto.LoadInput) (dto.Song, error) {
	song, err := i.svc.Load(ctx, input.Path)
	if err != nil {
		return dto.Song{}, err
	}
	out := toSongDTO(song)
	out.Path = input.Path
	return out, nil
}

func (i *Interactor) Segment(_ context.Context, input dto.SegmentInput) (dto.SegmentOutput, error) {
	hand, err := domain.ParseHand(input.Hand)
	if err != nil {
		return dto.SegmentOutput{}, invalid(err)
	}
	sections, timePerBar, err := i.svc.Sections(fromSongDTO(input.Song), hand, input.BarsPerSection)
	if err != nil {
		return dto.SegmentOutput{}, err
	}
	out := dto.SegmentOutput{
		Hand:           string(hand),
		BarsPerSection: input.BarsPerSection,
		TimePerBar:     timePerBar,
		Sections:       make([]dto.Section, 0, len(sections)),
	}
	for _, s := range sections {
		out.Sections = append(out.Sections, dto.Section{
			Index: s.Index,
			Start: s.StartTime,
			End:   s.EndTime,
			Label: s.Label(),
			Notes: toNoteDTOs(s.Notes),
		})
	}
	return out, nil
}

func (i *Interactor) Analyze(ctx context.Context, input dto.AnalyzeInput) (dto.AnalyzeOutput, error) {
	song, err := i.Load(ctx, dto.LoadInput{Path: input.Path})
	if err != nil {
		return dto.AnalyzeOutput{}, err
	}
	segments, err := i.Segment(ctx, dto.SegmentInput{Song: song, Hand: input.Hand, BarsPerSection: input.BarsPerSection})
	if err != nil {
		return dto.AnalyzeOutput{}, err
	}
	return dto.AnalyzeOutput{Song: song, Segments: segments}, nil
}
