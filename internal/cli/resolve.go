package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/domain"
)

// resolveProject resolves a project reference which can be:
//   - A full project id
//   - A unique id prefix
//   - A project name (case-insensitive)
func resolveProject(ctx context.Context, app *App, input string) (domain.ProjectKey, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.ProjectKey{}, domain.Invalid(nil, "project", "project is required")
	}

	projects, err := app.Services.Projects.List(ctx, app.Owner, "")
	if err != nil {
		return domain.ProjectKey{}, err
	}

	for _, p := range projects {
		if p.ID == input {
			return app.key(p.ID), nil
		}
	}

	var matches []string
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}
	if len(matches) == 0 {
		for _, p := range projects {
			if strings.EqualFold(strings.TrimSpace(p.Name), input) {
				matches = append(matches, p.ID)
			}
		}
	}

	switch len(matches) {
	case 0:
		return domain.ProjectKey{}, domain.NotFound("project", input)
	case 1:
		return app.key(matches[0]), nil
	default:
		return domain.ProjectKey{}, fmt.Errorf("project %q is ambiguous (%d matches)", input, len(matches))
	}
}
