//go:build cgo

package out

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// OpenMIDIPort opens the first output whose name starts with prefix, or the
// first output when prefix is empty.
func OpenMIDIPort(prefix string) (func(midi.Message) error, func() error, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, nil, fmt.Errorf("open rtmidi driver: %w", err)
	}
	outs, err := driver.Outs()
	if err != nil {
		driver.Close()
		return nil, nil, fmt.Errorf("list midi outputs: %w", err)
	}
	var port drivers.Out
	for _, out := range outs {
		if prefix == "" || strings.HasPrefix(out.String(), prefix) {
			port = out
			break
		}
	}
	if port == nil {
		driver.Close()
		return nil, nil, fmt.Errorf("no midi output matching %q", prefix)
	}
	if err := port.Open(); err != nil {
		driver.Close()
		return nil, nil, fmt.Errorf("open midi output %s: %w", port, err)
	}
	send, err := midi.SendTo(port)
	if err != nil {
		port.Close()
		driver.Close()
		return nil, nil, fmt.Errorf("send to %s: %w", port, err)
	}
	closeFn := func() error {
		port.Close()
		return driver.Close()
	}
	return send, closeFn, nil
}
