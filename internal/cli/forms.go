package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/cli/formatter"
	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// huhTheme returns a huh theme using the formatter's Gruvbox palette.
func huhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func confirmForm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huhTheme()).WithShowHelp(false).Run()
	return ok, err
}

// projectForm collects the descriptive fields of a new project.
func projectForm(draft *service.ProjectDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project Name").
				Value(&draft.Name).
				Validate(validateRequired),
			huh.NewText().
				Title("Description").
				Value(&draft.Description),
			huh.NewInput().
				Title("Period").
				Placeholder("2025 Q1").
				Value(&draft.Period),
			huh.NewInput().
				Title("Type").
				Placeholder("Internal").
				Value(&draft.Type),
			huh.NewInput().
				Title("Goal").
				Value(&draft.Goal),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

// taskForm collects a task draft. Dates are optional; blanks fall back to
// today or the parent's span.
func taskForm(draft *taskFormState) *huh.Form {
	statuses := make([]huh.Option[string], 0, len(domain.Statuses))
	for _, st := range domain.Statuses {
		statuses = append(statuses, huh.NewOption(string(st), string(st)))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Name").Value(&draft.Name).Validate(validateRequired),
			huh.NewInput().Title("Assignee").Value(&draft.Assignee),
			huh.NewInput().Title("Deliverable").Value(&draft.Deliverable),
			dateInput("Start Date (YYYY-MM-DD, blank for default)", &draft.Start),
			dateInput("End Date (YYYY-MM-DD, blank for default)", &draft.End),
			huh.NewSelect[string]().Title("Status").Options(statuses...).Value(&draft.Status),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

// taskFormState is the string-typed state behind taskForm.
type taskFormState struct {
	Name        string
	Assignee    string
	Deliverable string
	Start       string
	End         string
	Status      string
}

func dateInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Placeholder("2025-06-30").
		Value(value).
		Validate(validateOptionalDate)
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

// validateOptionalDate accepts empty or any date the engine can normalize.
func validateOptionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, ok := domain.NormalizeDay(s); !ok {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

func parseWeight(s string) (float64, error) {
	w, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, domain.Invalid(err, "weight", "invalid weight %q", s)
	}
	return w, nil
}
