package out

import (
	"sync/atomic"

	"go.uber.org/zap"

	playbackout "keyloop/internal/modules/playback/port/out"
	"keyloop/internal/platform/logging"
)

// LogSynth writes every trigger to the log. It is the default when no audio
// output is configured.
type LogSynth struct {
	logger    *zap.Logger
	triggered atomic.Int64
	volume    atomic.Int64
}

func NewLogSynth(logger *zap.Logger) *LogSynth {
	s := &LogSynth{logger: logging.OrNop(logger)}
	s.volume.Store(75)
	return s
}

var (
	_ playbackout.Synthesizer  = (*LogSynth)(nil)
	_ playbackout.VolumeSetter = (*LogSynth)(nil)
)

func (s *LogSynth) TriggerAttackRelease(pitch string, duration, at, velocity float64) {
	s.triggered.Add(1)
	s.logger.Debug("note",
		zap.String("pitch", pitch),
		zap.Float64("duration", duration),
		zap.Float64("at", at),
		zap.Float64("velocity", velocity),
		zap.Int64("volume", s.volume.Load()),
	)
}

func (s *LogSynth) SetVolume(volume int) {
	s.volume.Store(int64(volume))
}

func (s *LogSynth) Triggered() int64 {
	return s.triggered.Load()
}
