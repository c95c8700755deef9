package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoTracks            = errors.New("midi file has no tracks")
	ErrEmptySelection      = errors.New("no notes found for selected hand(s)")
	ErrParse               = errors.New("malformed midi data")
	ErrPersistence         = errors.New("persistence unavailable")
	ErrImport              = errors.New("invalid backup document")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
	ErrNoSong              = errors.New("no song loaded")
)

// IsInputError reports whether err aborts a user action without touching
// previously loaded state.
func IsInputError(err error) bool {
	return errors.Is(err, ErrNoTracks) || errors.Is(err, ErrEmptySelection) || errors.Is(err, ErrInvalidInput)
}
