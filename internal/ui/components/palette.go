package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"keyloop/internal/ui/theme"
)

// PaletteSubmitMsg carries a confirmed command line.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

type paletteHint struct {
	name string
	args string
	help string
}

// must match the commands handled by app.Model.executePalette
var paletteHints = []paletteHint{
	{"open", "<file.mid>", "load a MIDI file"},
	{"hand", "<left|right|both>", "practice one hand"},
	{"bars", "<1-16>", "bars per section"},
	{"tempo", "<0.25-1.5>", "tempo scale"},
	{"volume", "<0-100>", "output volume"},
	{"loop", "", "toggle looping"},
	{"section", "<n>", "jump to section n"},
	{"seek", "<seconds>", "position inside the section"},
	{"theme", "<light|dark>", "colour theme"},
	{"scroll", "", "toggle keyboard auto-scroll"},
}

const (
	maxHints   = 5
	maxHistory = 20
)

// Palette is a one-line command prompt with prefix hints, tab completion and
// a recall history of submitted commands.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
	styles  theme.Styles

	history []string
	recall  int
}

func NewPalette(styles theme.Styles) Palette {
	ti := textinput.New()
	ti.Placeholder = "open song.mid, tempo 0.8, section 3 ..."
	ti.CharLimit = 512
	ti.Prompt = ": "
	return Palette{input: ti, styles: styles}
}

func (p *Palette) SetStyles(styles theme.Styles) { p.styles = styles }

func (p Palette) Visible() bool { return p.visible }

// Open shows an empty prompt and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.recall = len(p.history)
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

// History returns submitted commands, oldest first.
func (p Palette) History() []string { return append([]string(nil), p.history...) }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			line := strings.TrimSpace(p.input.Value())
			p.remember(line)
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
		case "tab":
			if hints := p.matches(); len(hints) > 0 {
				p.input.SetValue(hints[0].name + " ")
				p.input.CursorEnd()
			}
			return p, nil
		case "up":
			p.step(-1)
			return p, nil
		case "down":
			p.step(1)
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p *Palette) remember(line string) {
	if line == "" {
		return
	}
	if n := len(p.history); n > 0 && p.history[n-1] == line {
		return
	}
	p.history = append(p.history, line)
	if len(p.history) > maxHistory {
		p.history = p.history[len(p.history)-maxHistory:]
	}
}

func (p *Palette) step(delta int) {
	if len(p.history) == 0 {
		return
	}
	p.recall = min(max(p.recall+delta, 0), len(p.history))
	if p.recall == len(p.history) {
		p.input.SetValue("")
		return
	}
	p.input.SetValue(p.history[p.recall])
	p.input.CursorEnd()
}

// matches lists hints whose name starts with the first typed word. Once an
// argument is being typed only the exact command stays listed.
func (p Palette) matches() []paletteHint {
	line := strings.ToLower(strings.TrimLeft(p.input.Value(), " "))
	word, _, typingArgs := strings.Cut(line, " ")
	var out []paletteHint
	for _, h := range paletteHints {
		if typingArgs && h.name != word {
			continue
		}
		if strings.HasPrefix(h.name, word) {
			out = append(out, h)
		}
		if len(out) == maxHints {
			break
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("Command") + "\n")
	sb.WriteString(p.input.View() + "\n")
	if hints := p.matches(); len(hints) > 0 {
		sb.WriteString("\n")
		for _, h := range hints {
			usage := strings.TrimSpace(h.name + " " + h.args)
			sb.WriteString(p.styles.Muted.Render("  "+padRight(usage, 26)+h.help) + "\n")
		}
	}
	w := p.width
	if w < 20 {
		w = 64
	}
	return p.styles.Pane.BorderForeground(p.styles.Palette.Peach).Width(w - 2).Render(sb.String())
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s + " "
	}
	return s + strings.Repeat(" ", n-len(s))
}
