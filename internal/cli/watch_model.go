package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/cli/formatter"
	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/scheduler"
	"github.com/alexanderramin/wbsctl/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// ── messages ─────────────────────────────────────────────────────────────────

// snapshotMsg carries one committed revision. A nil project means the
// project was deleted.
type snapshotMsg struct {
	project *domain.Project
}

// watchClosedMsg signals that the subscription ended.
type watchClosedMsg struct{}

func waitForSnapshot(ch <-chan *domain.Project) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return snapshotMsg{project: p}
	}
}

var watchQuitKey = key.NewBinding(
	key.WithKeys("q", "esc", "ctrl+c"),
	key.WithHelp("q", "quit"),
)

// watchChrome is the number of lines around the viewport: header and help.
const watchChrome = 3

// ── model ────────────────────────────────────────────────────────────────────

// watchModel shows a live task tree for one project, redrawn on every
// committed revision.
type watchModel struct {
	snapshots <-chan *domain.Project
	baseline  string
	project   *domain.Project
	deleted   bool
	vp        viewport.Model
}

func newWatchModel(snapshots <-chan *domain.Project, baseline string) watchModel {
	return watchModel{
		snapshots: snapshots,
		baseline:  baseline,
		vp:        viewport.New(80, 20),
	}
}

func (m watchModel) Init() tea.Cmd {
	return waitForSnapshot(m.snapshots)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.project == nil {
			m.deleted = true
			return m, tea.Quit
		}
		m.project = msg.project
		m.vp.SetContent(formatter.FormatTaskTree(service.TaskRows(m.project, m.baseline)))
		return m, waitForSnapshot(m.snapshots)

	case watchClosedMsg:
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-watchChrome, 1)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, watchQuitKey) {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m watchModel) View() string {
	var b strings.Builder
	switch {
	case m.deleted:
		b.WriteString("Project was deleted.\n")
		return b.String()
	case m.project == nil:
		b.WriteString(formatter.Dim("Waiting for the first snapshot...") + "\n")
	default:
		p := m.project
		fmt.Fprintf(&b, "%s  %s  rev %d  %s\n",
			formatter.Bold(p.Name),
			formatter.RenderProgress(scheduler.ProjectProgress(p.Tasks, p.Departments), 20),
			p.Revision,
			formatter.Dim("as of "+m.baseline))
		b.WriteString(m.vp.View())
		b.WriteString("\n")
	}
	help := watchQuitKey.Help()
	b.WriteString(formatter.Dim(help.Key + " " + help.Desc))
	return b.String()
}
