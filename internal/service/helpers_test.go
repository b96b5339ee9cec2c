package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/events"
	"github.com/alexanderramin/wbsctl/internal/metrics"
	"github.com/alexanderramin/wbsctl/internal/repository"
	"github.com/alexanderramin/wbsctl/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const owner = "alice"

// recordingObserver keeps every use-case event for assertions.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

type fixture struct {
	svc      *Services
	repo     *repository.SQLiteProjectRepo
	reg      *prometheus.Registry
	observer *recordingObserver
}

func setup(t *testing.T) *fixture {
	t.Helper()
	bus := events.NewBus()
	t.Cleanup(bus.Close)
	repo := repository.NewSQLiteProjectRepo(testutil.NewTestDB(t), bus)
	reg := prometheus.NewRegistry()
	obs := &recordingObserver{}
	return &fixture{
		svc:      New(repo, metrics.New(reg), obs),
		repo:     repo,
		reg:      reg,
		observer: obs,
	}
}

// createProject stores a new project with one dated root task "1".
func (f *fixture) createProject(t *testing.T, name string) domain.ProjectKey {
	t.Helper()
	ctx := context.Background()
	p, err := f.svc.Projects.Create(ctx, owner, ProjectDraft{Name: name})
	require.NoError(t, err)
	key := domain.ProjectKey{Owner: owner, ProjectID: p.ID}
	_, _, err = f.svc.Tasks.Add(ctx, key, wbsDraft("Design", "2025-01-01", "2025-01-10"))
	require.NoError(t, err)
	return key
}

func (f *fixture) mutationCount(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := f.reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, fam := range families {
		if fam.GetName() != "wbs_mutations_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}
