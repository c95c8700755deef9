package domain

import (
	"fmt"
	"sort"

	apperrors "keyloop/internal/platform/errors"
)

const (
	leftHandTrack  = 0
	rightHandTrack = 1
)

// FilterTracks selects tracks by their index, not by pitch profile: left is
// track 0 and right is track 1. The result is stable-sorted by start time.
func FilterTracks(tracks []Track, hand Hand) ([]NoteEvent, error) {
	var notes []NoteEvent
	for _, t := range tracks {
		if !includes(hand, t.Index) {
			continue
		}
		notes = append(notes, t.Notes...)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEmptySelection, hand)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].StartTime < notes[j].StartTime
	})
	return notes, nil
}

func includes(hand Hand, trackIndex int) bool {
	switch hand {
	case HandLeft:
		return trackIndex == leftHandTrack
	case HandRight:
		return trackIndex == rightHandTrack
	default:
		return true
	}
}
