package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a tree display.
type TreeItem struct {
	Label  string // shown dimmed before the title, e.g. a dotted task id
	Title  string
	Level  int
	IsLast bool
	Done   bool
	Active bool
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders items as an indented tree with box-drawing connectors.
// Done items get a green ✔ and active items an amber ▶; details are
// right-aligned badges.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type line struct {
		content string
		badge   string
	}
	lines := make([]line, len(items))
	width := 0

	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		marker := ""
		switch {
		case item.Done:
			marker = StyleGreen.Render("✔ ")
			title = Dim(title)
		case item.Active:
			marker = StyleYellowBold.Render("▶ ")
			title = StyleYellowBold.Render(title)
		}
		if item.Label != "" {
			title = StyleDim.Render(item.Label+" ") + title
		}

		lines[idx].content = prefix + marker + title
		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		if w := lipgloss.Width(lines[idx].content); w > width {
			width = w
		}
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.content)
		if l.badge != "" {
			b.WriteString(strings.Repeat(" ", width-lipgloss.Width(l.content)) + "  " + l.badge)
		}
		b.WriteString("\n")
	}
	return b.String()
}
