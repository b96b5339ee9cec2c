package service

import (
	"context"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/wbs"
)

type departmentService struct {
	loader  *Loader
	mutator *Mutator
}

func NewDepartmentService(loader *Loader, mutator *Mutator) DepartmentService {
	return &departmentService{loader: loader, mutator: mutator}
}

func (s *departmentService) Add(ctx context.Context, key domain.ProjectKey, name string, weight float64) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "department.add", func(p *domain.Project) (*domain.Project, error) {
		return wbs.AddDepartment(p, name, weight)
	})
}

func (s *departmentService) Rename(ctx context.Context, key domain.ProjectKey, oldName, newName string) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "department.rename", func(p *domain.Project) (*domain.Project, error) {
		return wbs.RenameDepartment(p, oldName, newName)
	})
}

func (s *departmentService) Remove(ctx context.Context, key domain.ProjectKey, name string) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "department.remove", func(p *domain.Project) (*domain.Project, error) {
		return wbs.RemoveDepartment(p, name)
	})
}

func (s *departmentService) SetWeight(ctx context.Context, key domain.ProjectKey, name string, weight float64) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "department.set_weight", func(p *domain.Project) (*domain.Project, error) {
		return wbs.SetDepartmentWeight(p, name, weight)
	})
}

func (s *departmentService) List(ctx context.Context, key domain.ProjectKey) (domain.Departments, error) {
	p, err := s.loader.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return p.Departments, nil
}
