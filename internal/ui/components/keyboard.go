package components

import (
	"strings"

	"keyloop/internal/platform/pitch"
	"keyloop/internal/ui/theme"
)

// keyWidth is the number of columns one white key takes. The last column
// holds the black key that follows it, if any.
const keyWidth = 3

// Keyboard draws a scrolling window over the 88 piano keys with a cursor for
// playing keys by hand.
type Keyboard struct {
	whites     []pitch.Key
	first      int
	visible    int
	cursor     int
	AutoScroll bool
}

func NewKeyboard() Keyboard {
	var whites []pitch.Key
	for _, k := range pitch.Piano() {
		if !k.Black {
			whites = append(whites, k)
		}
	}
	kb := Keyboard{whites: whites, visible: len(whites), cursor: pitch.MiddleC, AutoScroll: true}
	kb.SetWidth(80)
	return kb
}

func (k *Keyboard) SetWidth(width int) {
	k.visible = width / keyWidth
	if k.visible < 7 {
		k.visible = 7
	}
	if k.visible > len(k.whites) {
		k.visible = len(k.whites)
	}
	k.reveal(k.whiteIndex(k.cursor), false)
}

// Window returns the lowest and highest visible MIDI numbers.
func (k Keyboard) Window() (int, int) {
	return k.whites[k.first].MIDI, k.whites[k.first+k.visible-1].MIDI
}

// Follow scrolls so the first active note is in view.
func (k *Keyboard) Follow(active []string) {
	if !k.AutoScroll || len(active) == 0 {
		return
	}
	midi, err := pitch.Number(active[0])
	if err != nil || midi < pitch.Lowest || midi > pitch.Highest {
		return
	}
	k.reveal(k.whiteIndex(midi), true)
}

// MoveCursor shifts the cursor by semitones, clamped to the piano.
func (k *Keyboard) MoveCursor(delta int) {
	k.cursor += delta
	if k.cursor < pitch.Lowest {
		k.cursor = pitch.Lowest
	}
	if k.cursor > pitch.Highest {
		k.cursor = pitch.Highest
	}
	k.reveal(k.whiteIndex(k.cursor), false)
}

func (k Keyboard) Cursor() string {
	return pitch.Name(k.cursor)
}

func (k Keyboard) View(styles theme.Styles, active []string) string {
	lit := make(map[string]bool, len(active))
	for _, name := range active {
		if midi, err := pitch.Number(name); err == nil {
			lit[pitch.Name(midi)] = true
		}
	}

	var top, bottom, marks strings.Builder
	for _, white := range k.whites[k.first : k.first+k.visible] {
		whiteStyle := styles.WhiteKey
		if lit[white.Name] {
			whiteStyle = styles.WhiteKeyActive
		}
		top.WriteString(whiteStyle.Render("  "))
		bottom.WriteString(whiteStyle.Render(label(white)))

		black := white.MIDI + 1
		hasBlack := black <= pitch.Highest && pitch.IsBlack(black)
		switch {
		case hasBlack && lit[pitch.Name(black)]:
			top.WriteString(styles.BlackKeyActive.Render(" "))
		case hasBlack:
			top.WriteString(styles.BlackKey.Render(" "))
		default:
			top.WriteString(styles.WhiteKey.Render("│"))
		}
		bottom.WriteString(styles.WhiteKey.Render("│"))

		switch k.cursor {
		case white.MIDI:
			marks.WriteString(styles.KeyCursor.Render("^^ "))
		case black:
			marks.WriteString(styles.KeyCursor.Render("  ^"))
		default:
			marks.WriteString("   ")
		}
	}
	return top.String() + "\n" + top.String() + "\n" + bottom.String() + "\n" + marks.String()
}

// label names C keys with their octave and other white keys by letter.
func label(key pitch.Key) string {
	if strings.HasPrefix(key.Name, "C") {
		return key.Name[:2]
	}
	return key.Name[:1] + " "
}

// whiteIndex maps a MIDI number to its white key, or the white key below a
// black one.
func (k Keyboard) whiteIndex(midi int) int {
	for i := len(k.whites) - 1; i >= 0; i-- {
		if k.whites[i].MIDI <= midi {
			return i
		}
	}
	return 0
}

func (k *Keyboard) reveal(index int, center bool) {
	if index >= k.first && index < k.first+k.visible {
		return
	}
	switch {
	case center:
		k.first = index - k.visible/2
	case index < k.first:
		k.first = index
	default:
		k.first = index - k.visible + 1
	}
	if k.first < 0 {
		k.first = 0
	}
	if max := len(k.whites) - k.visible; k.first > max {
		k.first = max
	}
}
