package stats

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	progressdto "keyloop/internal/modules/progress/dto"
	sessiondto "keyloop/internal/modules/session/dto"
	"keyloop/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Stats(ctx context.Context) (sessiondto.StatsOutput, error)
	History(ctx context.Context, limit int) ([]sessiondto.SessionOutput, error)
	ListProgress(ctx context.Context) ([]progressdto.Record, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Stats    sessiondto.StatsOutput
	History  []sessiondto.SessionOutput
	Progress []progressdto.Record
	Err      error
}

const historyLimit = 10

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     Port
	viewport viewport.Model
	spinner  spinner.Model
	styles   theme.Styles
	loaded   LoadedMsg
	loading  bool
	width    int
	height   int
}

func New(port Port, styles theme.Styles) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := Model{port: port, viewport: viewport.New(0, 0), spinner: sp}
	m.SetStyles(styles)
	return m
}

func (m *Model) SetStyles(styles theme.Styles) {
	m.styles = styles
	m.spinner.Style = lipgloss.NewStyle().Foreground(styles.Palette.Lavender)
	m.viewport.SetContent(m.render())
}

func (m Model) Init() tea.Cmd { return nil }

// Reload fetches fresh numbers.
func (m *Model) Reload() tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.loading = true
	return tea.Batch(m.loadCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 2
		return m, nil
	case LoadedMsg:
		m.loading = false
		m.loaded = msg
		m.viewport.SetContent(m.render())
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.Reload()
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading stats…")
	}
	return m.styles.Pane.Width(m.width - 2).Height(m.height - 2).Render(m.viewport.View())
}

func (m Model) render() string {
	s := m.styles
	if m.loaded.Err != nil {
		return s.Hot.Render("stats unavailable: " + m.loaded.Err.Error())
	}
	st := m.loaded.Stats
	var sb strings.Builder
	sb.WriteString(s.Title.Render("Practice") + "\n\n")
	sb.WriteString(fmt.Sprintf("%s%.1f min, %d sections, %d notes\n", s.Muted.Render("today:    "), st.Today.Minutes, st.Today.SectionsCompleted, st.Today.NotesPlayed))
	sb.WriteString(fmt.Sprintf("%s%s over %d sessions\n", s.Muted.Render("total:    "), st.TotalFormatted, st.SessionsCompleted))
	sb.WriteString(fmt.Sprintf("%s%d\n", s.Muted.Render("sections: "), st.SectionsCompleted))
	streak := fmt.Sprintf("%d day", st.Streak)
	if st.Streak != 1 {
		streak += "s"
	}
	sb.WriteString(s.Muted.Render("streak:   ") + s.Hot.Render(streak) + "\n")
	if st.LastSession != nil {
		sb.WriteString(s.Muted.Render("last:     ") + st.LastSession.Local().Format("2006-01-02 15:04") + "\n")
	}

	if len(m.loaded.History) > 0 {
		sb.WriteString("\n" + s.Title.Render("Recent sessions") + "\n")
		for _, session := range m.loaded.History {
			title := session.SongTitle
			if title == "" {
				title = "-"
			}
			sb.WriteString(fmt.Sprintf("  %s  %5.1f min  %3d sections  %4d notes  %s\n",
				session.StartedAt.Local().Format("01-02 15:04"), session.DurationMinutes, session.SectionsCompleted, session.NotesPlayed, title))
		}
	}

	if len(m.loaded.Progress) > 0 {
		sb.WriteString("\n" + s.Title.Render("Songs") + "\n")
		for _, record := range m.loaded.Progress {
			line := fmt.Sprintf("  %3d%%  %d/%d  %s", record.CompletionPercentage, len(record.CompletedSections), record.TotalSections, record.FileName)
			if record.CompletionPercentage == 100 {
				line = s.Done.Render(line)
			}
			sb.WriteString(line + "\n")
		}
	}
	sb.WriteString("\n" + s.Muted.Render("r: refresh"))
	return sb.String()
}

func (m Model) loadCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		ctx := context.Background()
		stats, err := port.Stats(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		history, err := port.History(ctx, historyLimit)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		progress, err := port.ListProgress(ctx)
		return LoadedMsg{Stats: stats, History: history, Progress: progress, Err: err}
	}
}
