package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	practicedto "keyloop/internal/modules/practice/dto"
	"keyloop/internal/ui/components"
	"keyloop/internal/ui/theme"
	sectionsview "keyloop/internal/ui/views/sections"
	statsview "keyloop/internal/ui/views/stats"
)

// ─── ports ───────────────────────────────────────────────────────────────────

// PracticePort is the part of the practice controller the TUI drives.
type PracticePort interface {
	Start(ctx context.Context) (practicedto.Snapshot, error)
	LoadSong(ctx context.Context, path string) (practicedto.Snapshot, error)
	UpdateSettings(ctx context.Context, input practicedto.SettingsInput) (practicedto.Snapshot, error)
	Toggle(ctx context.Context) (practicedto.Snapshot, error)
	Next(ctx context.Context) (practicedto.Snapshot, error)
	Previous(ctx context.Context) (practicedto.Snapshot, error)
	SelectSection(ctx context.Context, index int) (practicedto.Snapshot, error)
	Seek(ctx context.Context, position float64) (practicedto.Snapshot, error)
	PressKey(ctx context.Context, pitch string) error
	Snapshot(ctx context.Context) (practicedto.Snapshot, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabPractice tabID = iota
	tabStats
	tabCount
)

var tabLabels = [tabCount]string{"Practice", "Stats"}

const (
	tempoStep  = 0.05
	volumeStep = 5
	minTempo   = 0.25
	maxTempo   = 1.5
)

var hands = []string{"both", "right", "left"}

// ─── async messages ───────────────────────────────────────────────────────────

type snapshotMsg struct {
	snap   practicedto.Snapshot
	err    error
	status string
	// quiet snapshots come from the refresh loop and never touch the status.
	quiet bool
}

type refreshMsg struct{}

type keyPressedMsg struct {
	pitch string
	err   error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab       key.Binding
	Help      key.Binding
	Palette   key.Binding
	Quit      key.Binding
	Toggle    key.Binding
	Next      key.Binding
	Previous  key.Binding
	Select    key.Binding
	Loop      key.Binding
	Tempo     key.Binding
	Volume    key.Binding
	Hand      key.Binding
	Bars      key.Binding
	Theme     key.Binding
	Cursor    key.Binding
	Octave    key.Binding
	Strike    key.Binding
	Follow    key.Binding
	SeekStart key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/stop")),
		Next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next section")),
		Previous:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous section")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select section")),
		Loop:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "loop")),
		Tempo:     key.NewBinding(key.WithKeys("+", "=", "-"), key.WithHelp("+/-", "tempo")),
		Volume:    key.NewBinding(key.WithKeys("]", "["), key.WithHelp("[/]", "volume")),
		Hand:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "cycle hand")),
		Bars:      key.NewBinding(key.WithKeys("b", "B"), key.WithHelp("b/B", "bars per section")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Cursor:    key.NewBinding(key.WithKeys(",", "."), key.WithHelp(",/.", "key cursor")),
		Octave:    key.NewBinding(key.WithKeys("<", ">"), key.WithHelp("</>", "cursor octave")),
		Strike:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "play cursor key")),
		Follow:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-scroll")),
		SeekStart: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "seek to start")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Next, k.Previous, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Next, k.Previous, k.Select, k.Loop, k.SeekStart},
		{k.Tempo, k.Volume, k.Hand, k.Bars, k.Theme},
		{k.Cursor, k.Octave, k.Strike, k.Follow},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It polls the practice controller for
// snapshots and renders the keyboard, transport and section list from them.
type Model struct {
	practice    PracticePort
	initialPath string
	poll        time.Duration

	sectionView sectionsview.Model
	statsView   statsview.Model
	keyboard    components.Keyboard
	position    progress.Model

	snap      practicedto.Snapshot
	themeName string
	styles    theme.Styles

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

func NewModel(practice PracticePort, stats statsview.Port, initialPath string, poll time.Duration) Model {
	if poll <= 0 {
		poll = 50 * time.Millisecond
	}
	styles := theme.New(theme.Light)
	m := Model{
		practice:    practice,
		initialPath: initialPath,
		poll:        poll,
		sectionView: sectionsview.New(styles),
		statsView:   statsview.New(stats, styles),
		keyboard:    components.NewKeyboard(),
		themeName:   theme.Light,
		styles:      styles,
		activeTab:   tabPractice,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(styles),
		status:      "ready",
	}
	m.position = progress.New(progress.WithSolidFill(string(styles.Palette.Sapphire)), progress.WithoutPercentage())
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startCmd(), m.refreshTick())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.keyboard.SetWidth(m.width - 2)
		m.position.Width = max(m.width-30, 10)
		m.propagateSize()
		return m, nil

	case refreshMsg:
		return m, tea.Batch(m.snapshotCmd(), m.refreshTick())

	case snapshotMsg:
		if msg.err != nil {
			if !msg.quiet {
				m.status = msg.err.Error()
			}
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		cmd := m.apply(msg.snap)
		return m, cmd

	case keyPressedMsg:
		if msg.err != nil {
			m.status = "key " + msg.pitch + ": " + msg.err.Error()
		} else {
			m.status = "played " + msg.pitch
		}
		return m, nil

	case sectionsview.SelectMsg:
		index := msg.Index
		return m, m.do(fmt.Sprintf("section %d", index+1), func(ctx context.Context) (practicedto.Snapshot, error) {
			return m.practice.SelectSection(ctx, index)
		})

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab", "shift+tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			if m.activeTab == tabStats {
				cmd := m.statsView.Reload()
				return m, cmd
			}
			return m, nil
		case "?":
			m.showHelp = true
			return m, nil
		case ":":
			cmd := m.palette.Open()
			return m, cmd
		}
		if m.activeTab == tabPractice {
			cmd, handled := m.practiceKey(msg.String())
			if handled {
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabPractice:
		m.sectionView, cmd = m.sectionView.Update(msg)
	case tabStats:
		m.statsView, cmd = m.statsView.Update(msg)
	}
	return m, cmd
}

func (m *Model) practiceKey(k string) (tea.Cmd, bool) {
	settings := func(status string, input practicedto.SettingsInput) tea.Cmd {
		return m.do(status, func(ctx context.Context) (practicedto.Snapshot, error) {
			return m.practice.UpdateSettings(ctx, input)
		})
	}
	pb := m.snap.Playback

	switch k {
	case " ":
		return m.do("", m.practice.Toggle), true
	case "n":
		return m.do("", m.practice.Next), true
	case "p":
		return m.do("", m.practice.Previous), true
	case "0":
		return m.do("", func(ctx context.Context) (practicedto.Snapshot, error) {
			return m.practice.Seek(ctx, 0)
		}), true
	case "l":
		loop := !pb.Loop
		return settings("loop "+onOff(loop), practicedto.SettingsInput{Loop: &loop}), true
	case "+", "=", "-":
		tempo := pb.TempoScale + tempoStep
		if k == "-" {
			tempo = pb.TempoScale - tempoStep
		}
		tempo = clampFloat(float64(int(tempo*100+0.5))/100, minTempo, maxTempo)
		return settings(fmt.Sprintf("tempo %.0f%%", tempo*100), practicedto.SettingsInput{TempoScale: &tempo}), true
	case "]", "[":
		volume := pb.Volume + volumeStep
		if k == "[" {
			volume = pb.Volume - volumeStep
		}
		volume = max(0, min(100, volume))
		return settings(fmt.Sprintf("volume %d", volume), practicedto.SettingsInput{Volume: &volume}), true
	case "h":
		hand := nextHand(m.snap.Hand)
		return settings("hand "+hand, practicedto.SettingsInput{Hand: &hand}), true
	case "b", "B":
		bars := m.snap.BarsPerSection + 1
		if k == "B" {
			bars = m.snap.BarsPerSection - 1
		}
		return settings(fmt.Sprintf("%d bars per section", bars), practicedto.SettingsInput{BarsPerSection: &bars}), true
	case "t":
		name := theme.Dark
		if m.themeName == theme.Dark {
			name = theme.Light
		}
		return settings("theme "+name, practicedto.SettingsInput{Theme: &name}), true
	case ",":
		m.keyboard.MoveCursor(-1)
		return nil, true
	case ".":
		m.keyboard.MoveCursor(1)
		return nil, true
	case "<":
		m.keyboard.MoveCursor(-12)
		return nil, true
	case ">":
		m.keyboard.MoveCursor(12)
		return nil, true
	case "x":
		return m.pressKeyCmd(m.keyboard.Cursor()), true
	case "a":
		m.keyboard.AutoScroll = !m.keyboard.AutoScroll
		m.status = "auto-scroll " + onOff(m.keyboard.AutoScroll)
		return nil, true
	}
	return nil, false
}

// apply stores a snapshot and restyles when the theme changed.
func (m *Model) apply(snap practicedto.Snapshot) tea.Cmd {
	m.snap = snap
	if snap.Theme != "" && snap.Theme != m.themeName {
		m.themeName = snap.Theme
		m.styles = theme.New(snap.Theme)
		m.palette.SetStyles(m.styles)
		m.sectionView.SetStyles(m.styles)
		m.statsView.SetStyles(m.styles)
		m.position = progress.New(progress.WithSolidFill(string(m.styles.Palette.Sapphire)), progress.WithoutPercentage())
		m.position.Width = max(m.width-30, 10)
	}
	m.keyboard.Follow(snap.Playback.ActiveNotes)
	return m.sectionView.SetSnapshot(snap)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabStats:
		content = m.statsView.View()
	default:
		content = m.practiceView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) practiceView() string {
	s := m.styles
	pb := m.snap.Playback

	state := s.Muted.Render("■ stopped")
	if pb.Playing {
		state = s.Hot.Render("▶ playing")
	}
	section := "-"
	if pb.SectionCount > 0 && pb.CurrentSection < len(m.snap.Sections) {
		section = fmt.Sprintf("%d/%d %s", pb.CurrentSection+1, pb.SectionCount, m.snap.Sections[pb.CurrentSection].Label)
	}
	ratio := 0.0
	if pb.SectionLength > 0 {
		ratio = clampFloat(pb.Position/pb.SectionLength, 0, 1)
	}
	transport := fmt.Sprintf("%s  %s  %s %5.1fs/%4.1fs", state, section, m.position.ViewAs(ratio), pb.Position, pb.SectionLength)
	controls := s.Muted.Render(fmt.Sprintf("tempo %3.0f%%  volume %3d  loop %s  hand %s  bars %d  cursor %s",
		pb.TempoScale*100, pb.Volume, onOff(pb.Loop), m.snap.Hand, m.snap.BarsPerSection, m.keyboard.Cursor()))

	keyboard := m.keyboard.View(s, pb.ActiveNotes)
	return lipgloss.JoinVertical(lipgloss.Left, transport, controls, "", keyboard, "", m.sectionView.View())
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = m.styles.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = m.styles.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "keyloop  " + strings.Join(parts, m.styles.Muted.Render(" │ "))
	if song := m.snap.Song; song != nil {
		bar += "   " + m.styles.Title.Render(filepath.Base(song.Path))
	}
	return m.styles.Bar.Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if session := m.snap.Session; session != nil {
		left = m.styles.Hot.Render(fmt.Sprintf("● %s  %d notes", session.Elapsed.Truncate(time.Second), session.NotesPlayed)) + "  " + left
	}
	right := m.styles.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return "\n" + m.styles.Bar.Width(m.width).Render(left+strings.Repeat(" ", gap)+right)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	arg := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
	settings := func(status string, in practicedto.SettingsInput) tea.Cmd {
		return m.do(status, func(ctx context.Context) (practicedto.Snapshot, error) {
			return m.practice.UpdateSettings(ctx, in)
		})
	}

	switch parts[0] {
	case "open":
		if arg == "" {
			m.status = "usage: open <file.mid>"
			return m, nil
		}
		return m, m.do("opened "+filepath.Base(arg), func(ctx context.Context) (practicedto.Snapshot, error) {
			return m.practice.LoadSong(ctx, arg)
		})
	case "hand":
		return m, settings("hand "+arg, practicedto.SettingsInput{Hand: &arg})
	case "theme":
		return m, settings("theme "+arg, practicedto.SettingsInput{Theme: &arg})
	case "loop":
		loop := !m.snap.Playback.Loop
		return m, settings("loop "+onOff(loop), practicedto.SettingsInput{Loop: &loop})
	case "bars", "volume", "section":
		n, err := strconv.Atoi(arg)
		if err != nil {
			m.status = "usage: " + parts[0] + " <number>"
			return m, nil
		}
		switch parts[0] {
		case "bars":
			return m, settings(fmt.Sprintf("%d bars per section", n), practicedto.SettingsInput{BarsPerSection: &n})
		case "volume":
			return m, settings(fmt.Sprintf("volume %d", n), practicedto.SettingsInput{Volume: &n})
		}
		return m, m.do(fmt.Sprintf("section %d", n), func(ctx context.Context) (practicedto.Snapshot, error) {
			return m.practice.SelectSection(ctx, n-1)
		})
	case "tempo", "seek":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			m.status = "usage: " + parts[0] + " <number>"
			return m, nil
		}
		if parts[0] == "tempo" {
			return m, settings(fmt.Sprintf("tempo %.0f%%", v*100), practicedto.SettingsInput{TempoScale: &v})
		}
		return m, m.do(fmt.Sprintf("seek %.1fs", v), func(ctx context.Context) (practicedto.Snapshot, error) {
			return m.practice.Seek(ctx, v)
		})
	case "scroll":
		m.keyboard.AutoScroll = !m.keyboard.AutoScroll
		m.status = "auto-scroll " + onOff(m.keyboard.AutoScroll)
		return m, nil
	}
	m.status = "unknown command: " + parts[0]
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	// tab bar, transport, controls, keyboard and status bar
	used := 2 + 2 + 1 + 6 + 2
	sz := tea.WindowSizeMsg{Width: m.width, Height: max(m.height-used, 3)}
	m.sectionView, _ = m.sectionView.Update(sz)
	m.statsView, _ = m.statsView.Update(tea.WindowSizeMsg{Width: m.width, Height: max(m.height-4, 3)})
}

func nextHand(current string) string {
	for i, hand := range hands {
		if hand == current {
			return hands[(i+1)%len(hands)]
		}
	}
	return hands[0]
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		snap, err := m.practice.Start(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		if m.initialPath == "" {
			return snapshotMsg{snap: snap}
		}
		loaded, err := m.practice.LoadSong(ctx, m.initialPath)
		if err != nil {
			return snapshotMsg{snap: snap, err: err}
		}
		return snapshotMsg{snap: loaded, status: "opened " + filepath.Base(m.initialPath)}
	}
}

func (m Model) refreshTick() tea.Cmd {
	return tea.Tick(m.poll, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m Model) snapshotCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.practice.Snapshot(context.Background())
		return snapshotMsg{snap: snap, err: err, quiet: true}
	}
}

func (m Model) do(status string, run func(ctx context.Context) (practicedto.Snapshot, error)) tea.Cmd {
	return func() tea.Msg {
		snap, err := run(context.Background())
		return snapshotMsg{snap: snap, err: err, status: status}
	}
}

func (m Model) pressKeyCmd(pitch string) tea.Cmd {
	return func() tea.Msg {
		return keyPressedMsg{pitch: pitch, err: m.practice.PressKey(context.Background(), pitch)}
	}
}
