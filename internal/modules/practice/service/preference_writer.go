package service

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"go.uber.org/zap"

	storagedto "keyloop/internal/modules/storage/dto"
	storagein "keyloop/internal/modules/storage/port/in"
	"keyloop/internal/platform/logging"
)

const DefaultPreferenceDelay = 300 * time.Millisecond

// PreferenceWriter coalesces preference changes and saves them once the
// user has stopped changing them for the debounce delay.
type PreferenceWriter struct {
	storage   storagein.Usecase
	logger    *zap.Logger
	debounced func(f func())

	mu      sync.Mutex
	pending storagedto.PreferencesPatch
	dirty   bool
}

func NewPreferenceWriter(storage storagein.Usecase, delay time.Duration, logger *zap.Logger) *PreferenceWriter {
	if delay <= 0 {
		delay = DefaultPreferenceDelay
	}
	return &PreferenceWriter{storage: storage, logger: logging.OrNop(logger), debounced: debounce.New(delay)}
}

func (w *PreferenceWriter) Queue(patch storagedto.PreferencesPatch) {
	w.mu.Lock()
	merge(&w.pending, patch)
	w.dirty = true
	w.mu.Unlock()
	w.debounced(func() {
		if err := w.Flush(context.Background()); err != nil {
			w.logger.Warn("preferences not saved", zap.Error(err))
		}
	})
}

// Flush saves whatever is pending now.
func (w *PreferenceWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	if !w.dirty {
		w.mu.Unlock()
		return nil
	}
	patch := w.pending
	w.pending = storagedto.PreferencesPatch{}
	w.dirty = false
	w.mu.Unlock()
	_, err := w.storage.SavePreferences(ctx, patch)
	return err
}

func (w *PreferenceWriter) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

func merge(dst *storagedto.PreferencesPatch, src storagedto.PreferencesPatch) {
	if src.PlaybackRate != nil {
		dst.PlaybackRate = src.PlaybackRate
	}
	if src.Volume != nil {
		dst.Volume = src.Volume
	}
	if src.SelectedHand != nil {
		dst.SelectedHand = src.SelectedHand
	}
	if src.BarsPerSection != nil {
		dst.BarsPerSection = src.BarsPerSection
	}
	if src.IsLooping != nil {
		dst.IsLooping = src.IsLooping
	}
	if src.Theme != nil {
		dst.Theme = src.Theme
	}
}
