package usecase

import (
	"fmt"

	"keyloop/internal/modules/score/domain"
	"keyloop/internal/modules/score/dto"
	apperrors "keyloop/internal/platform/errors"
)

func invalid(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
}

func toSongDTO(song domain.Song) dto.Song {
	out := dto.Song{
		TempoBPM:        song.Tempo(),
		BeatsPerMeasure: song.Beats(),
		BeatType:        song.BeatType,
		Duration:        song.Duration,
		NoteCount:       song.NoteCount(),
		Tracks:          make([]dto.Track, 0, len(song.Tracks)),
	}
	if out.BeatType <= 0 {
		out.BeatType = domain.DefaultBeatType
	}
	for _, t := range song.Tracks {
		out.Tracks = append(out.Tracks, dto.Track{
			Index:     t.Index,
			Name:      t.DisplayName(),
			NoteCount: len(t.Notes),
			AvgPitch:  t.AveragePitch(),
			HandGuess: string(t.HandGuess()),
			Notes:     toNoteDTOs(t.Notes),
		})
	}
	return out
}

func fromSongDTO(song dto.Song) domain.Song {
	out := domain.Song{
		TempoBPM:        song.TempoBPM,
		BeatsPerMeasure: song.BeatsPerMeasure,
		BeatType:        song.BeatType,
		Duration:        song.Duration,
		Tracks:          make([]domain.Track, 0, len(song.Tracks)),
	}
	for _, t := range song.Tracks {
		track := domain.Track{Index: t.Index, Name: t.Name, Notes: make([]domain.NoteEvent, 0, len(t.Notes))}
		for _, n := range t.Notes {
			track.Notes = append(track.Notes, domain.NoteEvent{
				StartTime:  n.Start,
				Duration:   n.Duration,
				PitchName:  n.Pitch,
				MIDI:       n.MIDI,
				Velocity:   n.Velocity,
				TrackIndex: n.Track,
			})
		}
		out.Tracks = append(out.Tracks, track)
	}
	return out
}

func toNoteDTOs(notes []domain.NoteEvent) []dto.Note {
	out := make([]dto.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, dto.Note{
			Start:    n.StartTime,
			Duration: n.Duration,
			Pitch:    n.PitchName,
			MIDI:     n.MIDI,
			Velocity: n.Velocity,
			Track:    n.TrackIndex,
		})
	}
	return out
}
