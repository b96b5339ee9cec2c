package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/importer"
	"github.com/alexanderramin/wbsctl/internal/repository"
	"github.com/google/uuid"
)

type importService struct {
	projects repository.ProjectRepo
	mutator  *Mutator
	observer UseCaseObserver
}

func NewImportService(projects repository.ProjectRepo, mutator *Mutator, observers ...UseCaseObserver) ImportService {
	return &importService{projects: projects, mutator: mutator, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportTable(ctx context.Context, key domain.ProjectKey, r io.Reader, format domain.Format) (*ImportResult, error) {
	table, err := importer.ReadTable(r, format)
	if err != nil {
		return nil, fmt.Errorf("reading import table: %w", err)
	}
	return s.importTable(ctx, key, table)
}

func (s *importService) ImportTableFile(ctx context.Context, key domain.ProjectKey, path string) (*ImportResult, error) {
	table, err := importer.ReadTableFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	return s.importTable(ctx, key, table)
}

func (s *importService) importTable(ctx context.Context, key domain.ProjectKey, table *importer.Table) (*ImportResult, error) {
	if errs := importer.ValidateTable(table); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	result := &ImportResult{}
	res, err := s.mutator.Apply(ctx, key, "import.table", func(p *domain.Project) (*domain.Project, error) {
		converted, err := importer.Convert(table, p.Departments)
		if err != nil {
			return nil, err
		}
		result.DepartmentsCreated = len(converted.Departments) - len(p.Departments)
		result.Warnings = converted.Warnings
		p.Tasks = converted.Tasks
		p.Departments = converted.Departments
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	result.Project = res.Project
	result.TaskCount = len(res.Project.Tasks)
	return result, nil
}

func (s *importService) ImportDocument(ctx context.Context, owner string, r io.Reader) (result *ImportResult, err error) {
	start := time.Now()
	defer func() {
		fields := map[string]any{"owner": owner}
		if result != nil {
			fields["project"] = result.Project.ID
			fields["warnings"] = len(result.Warnings)
		}
		observe(ctx, s.observer, "import.document", start, err, fields)
	}()

	p, warnings, err := importer.LoadProjectDocument(r)
	if err != nil {
		return nil, err
	}
	// imported documents always become new projects
	p.ID = uuid.New().String()
	p.Revision = 0
	p.CreatedAt = time.Time{}

	if err := s.projects.Put(ctx, domain.ProjectKey{Owner: owner, ProjectID: p.ID}, p); err != nil {
		return nil, fmt.Errorf("storing imported project: %w", err)
	}
	return &ImportResult{Project: p, TaskCount: len(p.Tasks), Warnings: warnings}, nil
}
