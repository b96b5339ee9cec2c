package service

import (
	"github.com/alexanderramin/wbsctl/internal/metrics"
	"github.com/alexanderramin/wbsctl/internal/repository"
)

// Services is the full set of use cases over one project store, shared by
// the CLI and the HTTP host.
type Services struct {
	Projects     ProjectService
	Tasks        TaskService
	Departments  DepartmentService
	Team         TeamService
	Deliverables DeliverableService
	Import       ImportService
	Export       ExportService
	Summary      SummaryService
	Watch        WatchService

	Mutator *Mutator
}

// New wires every service over repo. m may be nil.
func New(repo repository.ProjectRepo, m *metrics.Metrics, observer UseCaseObserver) *Services {
	loader := NewLoader(repo)
	mutator := NewMutator(repo, m, observer)
	return &Services{
		Projects:     NewProjectService(repo, loader, mutator, observer),
		Tasks:        NewTaskService(loader, mutator),
		Departments:  NewDepartmentService(loader, mutator),
		Team:         NewTeamService(mutator),
		Deliverables: NewDeliverableService(mutator),
		Import:       NewImportService(repo, mutator, observer),
		Export:       NewExportService(loader, observer),
		Summary:      NewSummaryService(loader),
		Watch:        NewWatchService(repo),
		Mutator:      mutator,
	}
}
