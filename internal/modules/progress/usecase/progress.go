package usecase

import (
	"context"
	"sort"

	"keyloop/internal/modules/progress/domain"
	"keyloop/internal/modules/progress/dto"
	progressin "keyloop/internal/modules/progress/port/in"
	"keyloop/internal/modules/progress/service"
)

type Interactor struct {
	svc *service.ProgressService
}

func NewInteractor(svc *service.ProgressService) progressin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Open(ctx context.Context, input dto.OpenInput) (dto.Progress, error) {
	view, _, err := i.svc.Open(ctx, domain.SongIdentity{
		FileName:     input.Identity.FileName,
		FileSize:     input.Identity.FileSize,
		LastModified: input.Identity.LastModified,
	}, input.SectionCount)
	if err != nil {
		return dto.Progress{}, err
	}
	return toProgressDTO(view), nil
}

func (i *Interactor) MarkComplete(ctx context.Context, index int) (dto.Progress, error) {
	view, err := i.svc.MarkComplete(ctx, index)
	return toProgressDTO(view), err
}

func (i *Interactor) SetCurrent(ctx context.Context, index int) (dto.Progress, error) {
	view, err := i.svc.SetCurrent(ctx, index)
	return toProgressDTO(view), err
}

func (i *Interactor) Current(_ context.Context) (dto.Progress, error) {
	view, err := i.svc.Active()
	if err != nil {
		return dto.Progress{}, err
	}
	return toProgressDTO(view), nil
}

func (i *Interactor) List(ctx context.Context) ([]dto.Record, error) {
	entries, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Record, 0, len(entries))
	for _, entry := range entries {
		completed := make([]int, 0, len(entry.Record.CompletedSections))
		for index, percent := range entry.Record.CompletedSections {
			if percent >= domain.Complete {
				completed = append(completed, index)
			}
		}
		sort.Ints(completed)
		out = append(out, dto.Record{
			Key:                  entry.Key,
			FileName:             entry.Record.FileName,
			CurrentSection:       entry.Record.CurrentSection,
			CompletedSections:    completed,
			TotalSections:        entry.Record.TotalSections,
			CompletionPercentage: entry.Record.CompletionPercentage,
			LastPlayed:           entry.Record.LastPlayed,
		})
	}
	return out, nil
}

func toProgressDTO(view domain.View) dto.Progress {
	if view.Identity.FileName == "" {
		return dto.Progress{CompletedSections: []int{}}
	}
	return dto.Progress{
		Key:                  view.Identity.Key(),
		FileName:             view.Identity.FileName,
		CurrentSection:       view.Current,
		CompletedSections:    view.Completed,
		SectionCount:         view.Stats.SectionCount,
		CompletedCount:       view.Stats.CompletedCount,
		CompletionPercentage: view.Stats.CompletionPercentage,
		Restored:             view.Restored,
	}
}
