package out

import (
	"go.uber.org/zap"

	playbackout "keyloop/internal/modules/playback/port/out"
	"keyloop/internal/platform/logging"
)

type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) playbackout.NoteSink {
	return LogSink{logger: logging.OrNop(logger)}
}

func (s LogSink) Publish(event playbackout.NoteEvent) {
	s.logger.Debug("keyboard", zap.String("kind", string(event.Kind)), zap.String("pitch", event.Pitch), zap.Float64("at", event.At))
}

