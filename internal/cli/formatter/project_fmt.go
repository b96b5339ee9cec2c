package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/scheduler"
)

// FormatProjectList renders the owner's projects with their progress.
func FormatProjectList(projects []*domain.Project) string {
	if len(projects) == 0 {
		return Dim("No projects yet. Create one with: wbsctl project create --name <name>") + "\n"
	}
	headers := []string{"ID", "NAME", "TYPE", "TASKS", "PROGRESS", "UPDATED"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			TruncID(p.ID),
			Bold(p.Name),
			orDash(p.Type),
			fmt.Sprintf("%d", len(p.Tasks)),
			RenderProgress(scheduler.ProjectProgress(p.Tasks, p.Departments), 10),
			p.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}

// FormatProject renders the project details, charter and departments.
func FormatProject(p *domain.Project) string {
	var b strings.Builder
	b.WriteString(StyleBold.Render(p.Name) + "  " + Dim(p.ID) + "\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render(fmt.Sprintf("%-12s", label)), StyleFg.Render(value))
	}
	field("DESCRIPTION", p.Description)
	field("PERIOD", p.Period)
	field("TYPE", p.Type)
	field("GOAL", p.Goal)
	field("REVISION", fmt.Sprintf("%d", p.Revision))

	c := p.Charter
	if c != (domain.Charter{}) {
		b.WriteString("\n" + Header("Charter") + "\n")
		field("BACKGROUND", c.Background)
		field("SCOPE", c.Scope)
		field("STAKEHOLDERS", c.Stakeholders)
		field("BUDGET", c.Budget)
		field("MILESTONES", c.Milestones)
		field("RISKS", c.Risks)
	}

	b.WriteString("\n" + Header("Departments") + "\n")
	b.WriteString(FormatDepartments(p.Departments))
	return RenderBox("", strings.TrimRight(b.String(), "\n"))
}

// FormatDepartments lists departments with their share of the total weight.
func FormatDepartments(depts domain.Departments) string {
	total := depts.TotalWeight()
	rows := make([][]string, 0, len(depts))
	for _, d := range depts {
		share := 0.0
		if total > 0 {
			share = d.Weight / total * 100
		}
		rows = append(rows, []string{Bold(d.Name), fmt.Sprintf("%g", d.Weight), fmt.Sprintf("%.0f%%", share), Dim(TruncID(d.ID))})
	}
	out := RenderTable([]string{"DEPARTMENT", "WEIGHT", "SHARE", "ID"}, rows)
	return out + Dim(fmt.Sprintf("total weight %g / %g", total, domain.MaxTotalWeight)) + "\n"
}

// FormatWarnings lists data integrity warnings, or nothing when there are none.
func FormatWarnings(warnings []domain.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(StyleYellow.Render("⚠ ") + w.String() + "\n")
	}
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dim("--")
	}
	return s
}
