package out

import (
	"context"

	playbackout "keyloop/internal/modules/playback/port/out"
	progressin "keyloop/internal/modules/progress/port/in"
)

// ProgressNotifier records navigation in the progress tracker.
type ProgressNotifier struct {
	progress progressin.Usecase
}

func NewProgressNotifier(progress progressin.Usecase) playbackout.ProgressNotifier {
	return &ProgressNotifier{progress: progress}
}

func (n *ProgressNotifier) SectionCompleted(ctx context.Context, index int) error {
	_, err := n.progress.MarkComplete(ctx, index)
	return err
}

func (n *ProgressNotifier) SectionChanged(ctx context.Context, index int) error {
	_, err := n.progress.SetCurrent(ctx, index)
	return err
}
