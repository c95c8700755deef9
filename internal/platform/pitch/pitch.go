// Package pitch converts between MIDI note numbers and scientific pitch
// names (60 = "C4") and describes the 88-key piano range.
package pitch

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MiddleC = 60
	Lowest  = 21
	Highest = 108
)

var names = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var flats = map[string]string{"Db": "C#", "Eb": "D#", "Gb": "F#", "Ab": "G#", "Bb": "A#"}

type Key struct {
	Name  string
	MIDI  int
	Black bool
}

func Name(midi int) string {
	return names[((midi%12)+12)%12] + strconv.Itoa(midi/12-1)
}

// Number parses names like "C4", "F#3", "Bb2" or "A-1".
func Number(name string) (int, error) {
	name = strings.TrimSpace(name)
	split := 1
	if len(name) > 1 && (name[1] == '#' || name[1] == 'b') {
		split = 2
	}
	if len(name) <= split {
		return 0, fmt.Errorf("invalid pitch %q", name)
	}
	letter := strings.ToUpper(name[:1]) + name[1:split]
	if sharp, ok := flats[letter]; ok {
		letter = sharp
	}
	idx := -1
	for i, n := range names {
		if n == letter {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("invalid pitch %q", name)
	}
	octave, err := strconv.Atoi(name[split:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave in %q", name)
	}
	midi := (octave+1)*12 + idx
	if midi < 0 || midi > 127 {
		return 0, fmt.Errorf("pitch %q out of midi range", name)
	}
	return midi, nil
}

func IsBlack(midi int) bool {
	return strings.HasSuffix(names[((midi%12)+12)%12], "#")
}

// Piano returns the 88 keys from A0 to C8.
func Piano() []Key {
	keys := make([]Key, 0, Highest-Lowest+1)
	for m := Lowest; m <= Highest; m++ {
		keys = append(keys, Key{Name: Name(m), MIDI: m, Black: IsBlack(m)})
	}
	return keys
}
