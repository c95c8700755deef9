//go:build !cgo

package out

import (
	"errors"

	"gitlab.com/gomidi/midi/v2"
)

// OpenMIDIPort needs the rtmidi driver, which is only built with cgo.
func OpenMIDIPort(string) (func(midi.Message) error, func() error, error) {
	return nil, nil, errors.New("midi output requires a cgo build")
}
