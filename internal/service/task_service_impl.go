package service

import (
	"context"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/scheduler"
	"github.com/alexanderramin/wbsctl/internal/wbs"
)

type taskService struct {
	loader  *Loader
	mutator *Mutator
	now     func() time.Time
}

func NewTaskService(loader *Loader, mutator *Mutator) TaskService {
	return &taskService{loader: loader, mutator: mutator, now: time.Now}
}

func (s *taskService) Add(ctx context.Context, key domain.ProjectKey, draft wbs.TaskDraft) (*domain.Project, string, error) {
	var id string
	p, err := s.mutator.Run(ctx, key, "task.add", func(p *domain.Project) (next *domain.Project, err error) {
		next, id, err = wbs.AddTask(p, draft, s.now())
		return next, err
	})
	return p, id, err
}

func (s *taskService) AddSub(ctx context.Context, key domain.ProjectKey, parentID string, draft wbs.TaskDraft) (*domain.Project, string, error) {
	var id string
	p, err := s.mutator.Run(ctx, key, "task.add_sub", func(p *domain.Project) (next *domain.Project, err error) {
		next, id, err = wbs.AddSubTask(p, parentID, draft)
		return next, err
	})
	return p, id, err
}

func (s *taskService) Update(ctx context.Context, key domain.ProjectKey, id string, patch wbs.TaskPatch) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "task.update", func(p *domain.Project) (*domain.Project, error) {
		return wbs.UpdateTask(p, id, patch)
	})
}

func (s *taskService) Delete(ctx context.Context, key domain.ProjectKey, id string) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "task.delete", func(p *domain.Project) (*domain.Project, error) {
		return wbs.DeleteTask(p, id)
	})
}

func (s *taskService) Move(ctx context.Context, key domain.ProjectKey, draggedID, targetID string) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "task.move", func(p *domain.Project) (*domain.Project, error) {
		return wbs.MoveTask(p, draggedID, targetID)
	})
}

func (s *taskService) ToggleExpand(ctx context.Context, key domain.ProjectKey, id string) (*domain.Project, error) {
	return s.mutator.Run(ctx, key, "task.toggle_expand", func(p *domain.Project) (*domain.Project, error) {
		return wbs.ToggleExpand(p, id)
	})
}

func (s *taskService) List(ctx context.Context, key domain.ProjectKey, baseline string) ([]TaskRow, error) {
	p, err := s.loader.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	baseline, err = baselineOr(baseline, s.now())
	if err != nil {
		return nil, err
	}
	return TaskRows(p, baseline), nil
}

// TaskRows lays out p's tasks in pre-order with their metrics at baseline.
func TaskRows(p *domain.Project, baseline string) []TaskRow {
	nodes := wbs.Walk(p.Tasks)
	rows := make([]TaskRow, len(nodes))
	for i, n := range nodes {
		rows[i] = TaskRow{Node: n, Metrics: scheduler.Evaluate(n.Task, p.Departments, baseline)}
	}
	return rows
}
