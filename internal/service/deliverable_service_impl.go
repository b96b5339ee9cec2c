package service

import (
	"context"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/wbs"
)

type deliverableService struct {
	mutator *Mutator
	now     func() time.Time
}

func NewDeliverableService(mutator *Mutator) DeliverableService {
	return &deliverableService{mutator: mutator, now: time.Now}
}

func (s *deliverableService) stamp(up wbs.Upload) wbs.Upload {
	if up.UploadedAt.IsZero() {
		up.UploadedAt = s.now().UTC()
	}
	return up
}

func (s *deliverableService) Add(ctx context.Context, key domain.ProjectKey, taskID string, up wbs.Upload) (*domain.Project, string, error) {
	up = s.stamp(up)
	var id string
	p, err := s.mutator.Run(ctx, key, "deliverable.add", func(p *domain.Project) (next *domain.Project, err error) {
		next, id, err = wbs.AddDeliverable(p, taskID, up)
		return next, err
	})
	return p, id, err
}

func (s *deliverableService) AddVersion(ctx context.Context, key domain.ProjectKey, taskID, deliverableID string, up wbs.Upload) (*domain.Project, int, error) {
	up = s.stamp(up)
	var version int
	p, err := s.mutator.Run(ctx, key, "deliverable.add_version", func(p *domain.Project) (next *domain.Project, err error) {
		next, version, err = wbs.AddDeliverableVersion(p, taskID, deliverableID, up)
		return next, err
	})
	return p, version, err
}

func (s *deliverableService) Remove(ctx context.Context, key domain.ProjectKey, taskID, deliverableID string) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "deliverable.remove", func(p *domain.Project) (*domain.Project, error) {
		return wbs.RemoveDeliverable(p, taskID, deliverableID)
	})
}
