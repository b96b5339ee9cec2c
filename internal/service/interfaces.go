package service

import (
	"context"
	"io"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/exporter"
	"github.com/alexanderramin/wbsctl/internal/scheduler"
	"github.com/alexanderramin/wbsctl/internal/wbs"
)

// ProjectDraft holds the descriptive fields of a new project.
type ProjectDraft struct {
	Name        string
	Description string
	Period      string
	Type        string
	Goal        string
}

// DetailsPatch updates descriptive fields; nil fields are left alone.
type DetailsPatch struct {
	Name        *string
	Description *string
	Period      *string
	Type        *string
	Goal        *string
}

type ProjectService interface {
	Create(ctx context.Context, owner string, draft ProjectDraft) (*domain.Project, error)
	Get(ctx context.Context, key domain.ProjectKey) (*domain.Project, error)
	// List returns the owner's projects whose name, description, type or
	// goal contain query. An empty query lists everything.
	List(ctx context.Context, owner, query string) ([]*domain.Project, error)
	UpdateDetails(ctx context.Context, key domain.ProjectKey, patch DetailsPatch) (*domain.Project, error)
	UpdateCharter(ctx context.Context, key domain.ProjectKey, charter domain.Charter) (*domain.Project, error)
	Delete(ctx context.Context, key domain.ProjectKey) error
}

// TaskRow is one rendered task with its schedule metrics.
type TaskRow struct {
	wbs.Node
	Metrics scheduler.TaskMetrics
}

type TaskService interface {
	Add(ctx context.Context, key domain.ProjectKey, draft wbs.TaskDraft) (*domain.Project, string, error)
	AddSub(ctx context.Context, key domain.ProjectKey, parentID string, draft wbs.TaskDraft) (*domain.Project, string, error)
	Update(ctx context.Context, key domain.ProjectKey, id string, patch wbs.TaskPatch) (*domain.Project, error)
	Delete(ctx context.Context, key domain.ProjectKey, id string) (*domain.Project, error)
	Move(ctx context.Context, key domain.ProjectKey, draggedID, targetID string) (*domain.Project, error)
	ToggleExpand(ctx context.Context, key domain.ProjectKey, id string) (*domain.Project, error)
	// List renders tasks in pre-order with metrics at baseline ("" for today).
	List(ctx context.Context, key domain.ProjectKey, baseline string) ([]TaskRow, error)
}

type DepartmentService interface {
	Add(ctx context.Context, key domain.ProjectKey, name string, weight float64) (*domain.Project, error)
	Rename(ctx context.Context, key domain.ProjectKey, oldName, newName string) (*domain.Project, error)
	Remove(ctx context.Context, key domain.ProjectKey, name string) (*domain.Project, error)
	SetWeight(ctx context.Context, key domain.ProjectKey, name string, weight float64) (*domain.Project, error)
	List(ctx context.Context, key domain.ProjectKey) (domain.Departments, error)
}

type TeamService interface {
	Add(ctx context.Context, key domain.ProjectKey, parentID, name, role string) (*domain.Project, string, error)
	Update(ctx context.Context, key domain.ProjectKey, id string, name, role *string) (*domain.Project, error)
	Remove(ctx context.Context, key domain.ProjectKey, id string) (*domain.Project, error)
	Move(ctx context.Context, key domain.ProjectKey, draggedID, targetID string) (*domain.Project, error)
}

type DeliverableService interface {
	Add(ctx context.Context, key domain.ProjectKey, taskID string, up wbs.Upload) (*domain.Project, string, error)
	AddVersion(ctx context.Context, key domain.ProjectKey, taskID, deliverableID string, up wbs.Upload) (*domain.Project, int, error)
	Remove(ctx context.Context, key domain.ProjectKey, taskID, deliverableID string) (*domain.Project, error)
}

// ImportResult holds the outcome of an import.
type ImportResult struct {
	Project            *domain.Project
	TaskCount          int
	DepartmentsCreated int
	Warnings           []domain.Warning
}

type ImportService interface {
	// ImportTable replaces the project's tasks with the table's rows.
	ImportTable(ctx context.Context, key domain.ProjectKey, r io.Reader, format domain.Format) (*ImportResult, error)
	ImportTableFile(ctx context.Context, key domain.ProjectKey, path string) (*ImportResult, error)
	// ImportDocument stores a project JSON document as a new project.
	ImportDocument(ctx context.Context, owner string, r io.Reader) (*ImportResult, error)
}

type ExportService interface {
	Export(ctx context.Context, key domain.ProjectKey, format domain.Format, w io.Writer, opts exporter.Options) error
}

type SummaryService interface {
	Summary(ctx context.Context, key domain.ProjectKey, baseline string) (*scheduler.Summary, error)
}

type WatchService interface {
	// Watch streams committed snapshots of the project until ctx ends. A
	// nil snapshot means the project was removed.
	Watch(ctx context.Context, key domain.ProjectKey) (<-chan *domain.Project, error)
}
