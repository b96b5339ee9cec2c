package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/scheduler"
	"github.com/alexanderramin/wbsctl/internal/service"
	"github.com/alexanderramin/wbsctl/internal/wbs"
)

// FormatTaskTable renders tasks in outline order with their metrics.
func FormatTaskTable(rows []service.TaskRow) string {
	if len(rows) == 0 {
		return Dim("No tasks. Add one with: wbsctl task add <project> --name <name>") + "\n"
	}
	headers := []string{"ID", "TASK", "STATUS", "ASSIGNEE", "START", "END", "DAYS", "PROGRESS", "PLAN", "GAP", "RISK"}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		t, m := r.Task, r.Metrics
		out = append(out, []string{
			Dim(t.ID),
			strings.Repeat("  ", r.Depth) + t.Name,
			StatusPill(t.Status),
			orDash(t.Assignee),
			orDash(t.StartDate),
			orDash(t.EndDate),
			fmt.Sprintf("%d", m.DurationDays),
			RenderProgress(m.Overall, 10),
			fmt.Sprintf("%d%%", m.Planned),
			GapStyled(m.Gap),
			RiskIndicator(m.Risk),
		})
	}
	return RenderTable(headers, out)
}

// FormatTaskTree renders tasks as an outline with progress badges.
func FormatTaskTree(rows []service.TaskRow) string {
	items := make([]TreeItem, len(rows))
	for i, r := range rows {
		items[i] = TreeItem{
			Label:  r.Task.ID,
			Title:  r.Task.Name,
			Level:  r.Depth,
			IsLast: r.IsLast,
			Done:   r.Task.Status == domain.StatusCompleted,
			Active: r.Task.Status == domain.StatusInProgress,
			Detail: fmt.Sprintf("%d%% %+d", r.Metrics.Overall, r.Metrics.Gap),
		}
	}
	return RenderTree(items)
}

// FormatTeam renders the org chart.
func FormatTeam(nodes []wbs.MemberNode) string {
	if len(nodes) == 0 {
		return Dim("No team members.") + "\n"
	}
	items := make([]TreeItem, len(nodes))
	for i, n := range nodes {
		items[i] = TreeItem{
			Label:  TruncID(n.Member.ID),
			Title:  n.Member.Name,
			Level:  n.Depth,
			IsLast: n.IsLast,
			Detail: n.Member.Role,
		}
	}
	return RenderTree(items)
}

// FormatDeliverables lists a task's deliverables and their latest version.
func FormatDeliverables(t domain.Task) string {
	if len(t.Deliverables) == 0 {
		return Dim(fmt.Sprintf("Task %s has no deliverables.", t.ID)) + "\n"
	}
	rows := make([][]string, 0, len(t.Deliverables))
	for _, d := range t.Deliverables {
		latest, _ := d.Latest()
		rows = append(rows, []string{
			Dim(TruncID(d.ID)),
			Bold(d.Name),
			fmt.Sprintf("v%d", latest.Version),
			latest.FileName,
			fmt.Sprintf("%d B", latest.FileSize),
			latest.UploadDate.Local().Format("2006-01-02 15:04"),
		})
	}
	return RenderTable([]string{"ID", "DELIVERABLE", "VERSION", "FILE", "SIZE", "UPLOADED"}, rows)
}

// FormatSummary renders the project dashboard.
func FormatSummary(name string, s *scheduler.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold(name), Dim("as of "+s.Baseline))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("OVERALL "), RenderProgress(s.Overall, 20))
	if s.Start != "" {
		fmt.Fprintf(&b, "%s  %s → %s\n", StyleDim.Render("PERIOD  "), s.Start, s.End)
	}
	fmt.Fprintf(&b, "%s  %d (%s delayed)\n", StyleDim.Render("TASKS   "), s.TotalTasks, delayedCount(s.Delayed))

	counts := make([]string, 0, len(domain.Statuses))
	for _, st := range domain.Statuses {
		counts = append(counts, fmt.Sprintf("%s %d", StatusPill(st), s.StatusCounts[st]))
	}
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("STATUS  "), strings.Join(counts, Dim(" · ")))
	fmt.Fprintf(&b, "%s  %g / %g\n", StyleDim.Render("WEIGHTS "), s.TotalWeight, domain.MaxTotalWeight)

	if len(s.Attention) > 0 {
		b.WriteString("\n" + Header("Needs attention") + "\n")
		rows := make([][]string, 0, len(s.Attention))
		for _, a := range s.Attention {
			rows = append(rows, []string{
				Dim(a.Task.ID),
				a.Task.Name,
				orDash(a.Task.EndDate),
				fmt.Sprintf("%d%% / %d%%", a.Metrics.Overall, a.Metrics.Planned),
				GapStyled(a.Metrics.Gap),
				RiskIndicator(a.Metrics.Risk),
			})
		}
		b.WriteString(RenderTable([]string{"ID", "TASK", "END", "DONE/PLAN", "GAP", "RISK"}, rows))
	}
	return RenderBox("Summary", strings.TrimRight(b.String(), "\n"))
}

func delayedCount(n int) string {
	if n == 0 {
		return StyleGreen.Render("0")
	}
	return StyleRed.Render(fmt.Sprintf("%d", n))
}
