package sections

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	practicedto "keyloop/internal/modules/practice/dto"
	"keyloop/internal/ui/theme"
)

// ─── messages ────────────────────────────────────────────────────────────────

// SelectMsg asks the app to make a section current.
type SelectMsg struct{ Index int }

// ─── list item ───────────────────────────────────────────────────────────────

type sectionItem struct {
	info    practicedto.SectionInfo
	current bool
}

func (i sectionItem) Title() string {
	mark := "  "
	if i.info.Completed {
		mark = "✓ "
	}
	if i.current {
		mark = "▶ "
	}
	return mark + i.info.Label
}

func (i sectionItem) Description() string { return fmt.Sprintf("%d notes", i.info.NoteCount) }
func (i sectionItem) FilterValue() string { return i.info.Label }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	list    list.Model
	detail  viewport.Model
	snap    practicedto.Snapshot
	styles  theme.Styles
	current int
	width   int
	height  int
}

func New(styles theme.Styles) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Sections"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	m := Model{list: l, detail: viewport.New(0, 0)}
	m.SetStyles(styles)
	return m
}

func (m *Model) SetStyles(styles theme.Styles) {
	m.styles = styles
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(styles.Palette.Lavender).BorderForeground(styles.Palette.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(styles.Palette.Sapphire).BorderForeground(styles.Palette.Lavender)
	m.list.SetDelegate(delegate)
	m.list.Styles.Title = styles.Title
	m.detail.Style = lipgloss.NewStyle().Foreground(styles.Palette.Text).Padding(0, 1)
	m.detail.SetContent(m.renderDetail())
}

// SetSnapshot replaces the list with the snapshot's sections. The cursor
// follows the current section when it changes.
func (m *Model) SetSnapshot(snap practicedto.Snapshot) tea.Cmd {
	m.snap = snap
	current := snap.Playback.CurrentSection
	items := make([]list.Item, len(snap.Sections))
	for i, info := range snap.Sections {
		items[i] = sectionItem{info: info, current: i == current}
	}
	cmd := m.list.SetItems(items)
	if current != m.current || m.list.Index() >= len(items) {
		m.list.Select(current)
	}
	m.current = current
	m.detail.SetContent(m.renderDetail())
	return cmd
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "enter" {
			if item, ok := m.list.SelectedItem().(sectionItem); ok {
				index := item.info.Index
				return m, func() tea.Msg { return SelectMsg{Index: index} }
			}
			return m, nil
		}
	}

	var cmds []tea.Cmd
	prev := m.list.Index()
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	if m.list.Index() != prev {
		m.detail.SetContent(m.renderDetail())
	}
	m.detail, cmd = m.detail.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.snap.Song == nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.styles.Muted.Render("No song loaded. Press : and type open <file.mid>"))
	}
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := m.styles.Pane.Width(detailW - 2).Height(m.height - 2).Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	song := m.snap.Song
	if song == nil {
		return ""
	}
	s := m.styles
	var sb strings.Builder
	sb.WriteString(s.Title.Render(filepath.Base(song.Path)) + "\n\n")
	sb.WriteString(fmt.Sprintf("%s%.0f bpm  %d/%d\n", s.Muted.Render("tempo:    "), song.TempoBPM, song.BeatsPerMeasure, song.BeatType))
	sb.WriteString(fmt.Sprintf("%s%s\n", s.Muted.Render("hand:     "), m.snap.Hand))
	sb.WriteString(fmt.Sprintf("%s%d (%.2fs per bar)\n", s.Muted.Render("bars:     "), m.snap.BarsPerSection, m.snap.TimePerBar))
	if p := m.snap.Progress; p != nil {
		sb.WriteString(fmt.Sprintf("%s%d/%d sections, %d%%\n", s.Muted.Render("progress: "), p.CompletedCount, p.SectionCount, p.CompletionPercentage))
	}
	if len(song.Tracks) > 0 {
		sb.WriteString("\n" + s.Muted.Render("tracks") + "\n")
		for _, track := range song.Tracks {
			sb.WriteString(fmt.Sprintf("  %d %-16s %4d notes  %s\n", track.Index, track.Name, track.NoteCount, track.HandGuess))
		}
	}

	if item, ok := m.list.SelectedItem().(sectionItem); ok {
		info := item.info
		sb.WriteString("\n" + s.Title.Render(info.Label) + "\n")
		sb.WriteString(fmt.Sprintf("%s%d\n", s.Muted.Render("notes:    "), info.NoteCount))
		if info.Completed {
			sb.WriteString(s.Done.Render("completed") + "\n")
		}
	}
	sb.WriteString("\n" + s.Muted.Render("enter: select  space: play/stop  n/p: next/prev"))
	return sb.String()
}
