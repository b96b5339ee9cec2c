package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/repository"
)

type projectService struct {
	projects repository.ProjectRepo
	loader   *Loader
	mutator  *Mutator
	observer UseCaseObserver
}

func NewProjectService(projects repository.ProjectRepo, loader *Loader, mutator *Mutator, observers ...UseCaseObserver) ProjectService {
	return &projectService{
		projects: projects,
		loader:   loader,
		mutator:  mutator,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) Create(ctx context.Context, owner string, draft ProjectDraft) (p *domain.Project, err error) {
	start := time.Now()
	defer func() {
		fields := map[string]any{"owner": owner}
		if p != nil {
			fields["project"] = p.ID
		}
		observe(ctx, s.observer, "project.create", start, err, fields)
	}()

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, domain.Invalid(domain.ErrEmptyName, "name", "project name cannot be empty")
	}
	p = domain.NewProject(name, start.UTC())
	p.Description = draft.Description
	p.Period = draft.Period
	p.Type = draft.Type
	p.Goal = draft.Goal

	if err := s.projects.Put(ctx, domain.ProjectKey{Owner: owner, ProjectID: p.ID}, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) Get(ctx context.Context, key domain.ProjectKey) (*domain.Project, error) {
	return s.loader.Get(ctx, key)
}

func (s *projectService) List(ctx context.Context, owner, query string) ([]*domain.Project, error) {
	all, err := s.projects.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, p := range all {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *projectService) UpdateDetails(ctx context.Context, key domain.ProjectKey, patch DetailsPatch) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "project.update_details", func(p *domain.Project) (*domain.Project, error) {
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return nil, domain.Invalid(domain.ErrEmptyName, "name", "project name cannot be empty")
			}
			p.Name = name
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Period != nil {
			p.Period = *patch.Period
		}
		if patch.Type != nil {
			p.Type = *patch.Type
		}
		if patch.Goal != nil {
			p.Goal = *patch.Goal
		}
		return p, nil
	})
}

func (s *projectService) UpdateCharter(ctx context.Context, key domain.ProjectKey, charter domain.Charter) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "project.update_charter", func(p *domain.Project) (*domain.Project, error) {
		if p.Charter == charter {
			return nil, nil
		}
		p.Charter = charter
		return p, nil
	})
}

func (s *projectService) Delete(ctx context.Context, key domain.ProjectKey) (err error) {
	start := time.Now()
	defer func() {
		observe(ctx, s.observer, "project.delete", start, err, map[string]any{"project": key.Path()})
	}()
	return s.projects.Remove(ctx, key)
}
