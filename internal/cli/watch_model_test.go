package cli

import (
	"testing"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func watchedProject(rev int64) *domain.Project {
	p := testutil.NewTestProject("Live",
		testutil.WithDepartment("d", "D", 1),
		testutil.WithTasks(
			testutil.NewTestTask("1", "", testutil.WithName("Build")),
			testutil.NewTestTask("1.1", "1", testutil.WithName("Sketch"), testutil.WithProgress("d", 40)),
		),
	)
	p.Revision = rev
	return p
}

func TestWatchModel_InitWaitsForSnapshot(t *testing.T) {
	ch := make(chan *domain.Project, 1)
	m := newWatchModel(ch, "2025-01-10")
	assert.Contains(t, plain(m.View()), "Waiting for the first snapshot")

	ch <- watchedProject(3)
	msg := m.Init()()
	snap, ok := msg.(snapshotMsg)
	require.True(t, ok)
	assert.Equal(t, int64(3), snap.project.Revision)

	close(ch)
	assert.Equal(t, watchClosedMsg{}, m.Init()())
}

func TestWatchModel_RendersEachRevision(t *testing.T) {
	ch := make(chan *domain.Project)
	var model tea.Model = newWatchModel(ch, "2025-01-10")

	model, cmd := model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Nil(t, cmd)

	model, cmd = model.Update(snapshotMsg{project: watchedProject(2)})
	require.NotNil(t, cmd, "keeps listening")
	view := plain(model.View())
	assert.Contains(t, view, "Live")
	assert.Contains(t, view, "rev 2")
	assert.Contains(t, view, "Sketch")
	assert.Contains(t, view, "as of 2025-01-10")

	p := watchedProject(5)
	p.Tasks[1].Name = "Prototype"
	model, _ = model.Update(snapshotMsg{project: p})
	view = plain(model.View())
	assert.Contains(t, view, "rev 5")
	assert.Contains(t, view, "Prototype")
	assert.NotContains(t, view, "Sketch")
}

func TestWatchModel_QuitsOnDeleteAndKey(t *testing.T) {
	ch := make(chan *domain.Project)
	m := newWatchModel(ch, "2025-01-10")

	model, cmd := m.Update(snapshotMsg{project: nil})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, model.(watchModel).deleted)
	assert.Contains(t, model.View(), "deleted")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(watchClosedMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func plain(s string) string { return ansi.ReplaceAllString(s, "") }
