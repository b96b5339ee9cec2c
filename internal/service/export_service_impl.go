package service

import (
	"context"
	"io"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/exporter"
	"github.com/alexanderramin/wbsctl/internal/repository"
	"github.com/alexanderramin/wbsctl/internal/scheduler"
)

type exportService struct {
	loader   *Loader
	observer UseCaseObserver
	now      func() time.Time
}

func NewExportService(loader *Loader, observers ...UseCaseObserver) ExportService {
	return &exportService{loader: loader, observer: useCaseObserverOrNoop(observers), now: time.Now}
}

func (s *exportService) Export(ctx context.Context, key domain.ProjectKey, format domain.Format, w io.Writer, opts exporter.Options) (err error) {
	start := time.Now()
	defer func() {
		observe(ctx, s.observer, "export", start, err, map[string]any{"project": key.Path(), "format": string(format)})
	}()

	p, err := s.loader.Get(ctx, key)
	if err != nil {
		return err
	}
	if opts.Baseline, err = baselineOr(opts.Baseline, s.now()); err != nil {
		return err
	}
	return exporter.Write(w, p, format, opts)
}

type summaryService struct {
	loader *Loader
	now    func() time.Time
}

func NewSummaryService(loader *Loader) SummaryService {
	return &summaryService{loader: loader, now: time.Now}
}

func (s *summaryService) Summary(ctx context.Context, key domain.ProjectKey, baseline string) (*scheduler.Summary, error) {
	p, err := s.loader.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	baseline, err = baselineOr(baseline, s.now())
	if err != nil {
		return nil, err
	}
	summary := scheduler.Summarize(p, baseline)
	return &summary, nil
}

type watchService struct {
	projects repository.ProjectRepo
}

func NewWatchService(projects repository.ProjectRepo) WatchService {
	return &watchService{projects: projects}
}

func (s *watchService) Watch(ctx context.Context, key domain.ProjectKey) (<-chan *domain.Project, error) {
	return s.projects.Subscribe(ctx, key)
}
