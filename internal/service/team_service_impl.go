package service

import (
	"context"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/wbs"
)

type teamService struct {
	mutator *Mutator
}

func NewTeamService(mutator *Mutator) TeamService {
	return &teamService{mutator: mutator}
}

func (s *teamService) Add(ctx context.Context, key domain.ProjectKey, parentID, name, role string) (*domain.Project, string, error) {
	var id string
	p, err := s.mutator.Run(ctx, key, "team.add", func(p *domain.Project) (next *domain.Project, err error) {
		next, id, err = wbs.AddMember(p, parentID, name, role)
		return next, err
	})
	return p, id, err
}

func (s *teamService) Update(ctx context.Context, key domain.ProjectKey, id string, name, role *string) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "team.update", func(p *domain.Project) (*domain.Project, error) {
		return wbs.UpdateMember(p, id, name, role)
	})
}

func (s *teamService) Remove(ctx context.Context, key domain.ProjectKey, id string) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "team.remove", func(p *domain.Project) (*domain.Project, error) {
		return wbs.DeleteMember(p, id)
	})
}

func (s *teamService) Move(ctx context.Context, key domain.ProjectKey, draggedID, targetID string) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "team.move", func(p *domain.Project) (*domain.Project, error) {
		return wbs.MoveMember(p, draggedID, targetID)
	})
}
