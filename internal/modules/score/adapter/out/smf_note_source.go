package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
	"go.uber.org/zap"

	"keyloop/internal/modules/score/domain"
	scoreout "keyloop/internal/modules/score/port/out"
	apperrors "keyloop/internal/platform/errors"
	"keyloop/internal/platform/logging"
	"keyloop/internal/platform/pitch"
)

type SMFNoteSource struct {
	logger *zap.Logger
}

func NewSMFNoteSource(logger *zap.Logger) scoreout.NoteSource {
	return &SMFNoteSource{logger: logging.OrNop(logger)}
}

func (s *SMFNoteSource) Load(ctx context.Context, path string) (domain.Song, error) {
	if err := ctx.Err(); err != nil {
		return domain.Song{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Song{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, path)
		}
		return domain.Song{}, fmt.Errorf("read midi file: %w", err)
	}
	song, err := Decode(data)
	if err != nil {
		s.logger.Warn("midi decode failed", zap.String("path", path), zap.Error(err))
		return domain.Song{}, err
	}
	s.logger.Debug("midi loaded",
		zap.String("path", path),
		zap.Int("tracks", len(song.Tracks)),
		zap.Int("notes", song.NoteCount()),
		zap.Float64("tempo", song.Tempo()),
	)
	return song, nil
}

type openNote struct {
	start    float64
	velocity uint8
}

type noteKey struct {
	channel uint8
	key     uint8
}

// Decode turns raw SMF bytes into a Song. Track indexes follow the file's
// track order, including tracks without notes.
func Decode(data []byte) (song domain.Song, err error) {
	// the decoder panics on some malformed input
	defer func() {
		if r := recover(); r != nil {
			song = domain.Song{}
			err = fmt.Errorf("%w: %v", apperrors.ErrParse, r)
		}
	}()

	file, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return domain.Song{}, fmt.Errorf("%w: %v", apperrors.ErrParse, err)
	}

	var (
		tempoSet bool
		meterSet bool
	)
	tracks := make([]domain.Track, 0, len(file.Tracks))
	for index, events := range file.Tracks {
		track := domain.Track{Index: index}
		open := make(map[noteKey][]openNote)
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			at := float64(file.TimeAt(absTicks)) / 1_000_000

			var (
				channel, key, velocity uint8
				bpm                    float64
				num, denom             uint8
				name                   string
			)
			switch {
			case event.Message.GetNoteStart(&channel, &key, &velocity):
				k := noteKey{channel: channel, key: key}
				open[k] = append(open[k], openNote{start: at, velocity: velocity})
			case event.Message.GetNoteEnd(&channel, &key):
				k := noteKey{channel: channel, key: key}
				pending := open[k]
				if len(pending) == 0 {
					continue
				}
				started := pending[0]
				open[k] = pending[1:]
				track.Notes = append(track.Notes, domain.NoteEvent{
					StartTime:  started.start,
					Duration:   math.Max(at-started.start, 0),
					PitchName:  pitch.Name(int(key)),
					MIDI:       int(key),
					Velocity:   float64(started.velocity) / 127,
					TrackIndex: index,
				})
			case event.Message.GetMetaTempo(&bpm):
				if !tempoSet && bpm > 0 {
					song.TempoBPM = bpm
					tempoSet = true
				}
			case event.Message.GetMetaMeter(&num, &denom):
				if !meterSet && num > 0 {
					song.BeatsPerMeasure = int(num)
					song.BeatType = int(denom)
					meterSet = true
				}
			case event.Message.GetMetaTrackName(&name):
				if track.Name == "" {
					track.Name = name
				}
			}
		}
		sortByStart(track.Notes)
		tracks = append(tracks, track)
	}

	song.Tracks = tracks
	if song.NoteCount() == 0 {
		return domain.Song{}, apperrors.ErrNoTracks
	}
	if !tempoSet {
		song.TempoBPM = domain.DefaultTempoBPM
	}
	if !meterSet {
		song.BeatsPerMeasure = domain.DefaultBeatsPerMeasure
		song.BeatType = domain.DefaultBeatType
	}
	for _, t := range song.Tracks {
		for _, n := range t.Notes {
			song.Duration = math.Max(song.Duration, n.StartTime+n.Duration)
		}
	}
	return song, nil
}

func sortByStart(notes []domain.NoteEvent) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].StartTime < notes[j].StartTime
	})
}
