package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/metrics"
	"github.com/alexanderramin/wbsctl/internal/repository"
	"github.com/alexanderramin/wbsctl/internal/wbs"
)

// MutationPhase is where a mutation stands in
// Idle → Validating → (Rejected | Applying) → Recomputing → Committed.
// Failed marks a store error after validation succeeded.
type MutationPhase string

const (
	PhaseIdle        MutationPhase = "idle"
	PhaseValidating  MutationPhase = "validating"
	PhaseRejected    MutationPhase = "rejected"
	PhaseApplying    MutationPhase = "applying"
	PhaseRecomputing MutationPhase = "recomputing"
	PhaseCommitted   MutationPhase = "committed"
	PhaseFailed      MutationPhase = "failed"
)

// Mutation validates a command against a private copy of the stored
// project and returns the changed snapshot. Returning nil, nil means there
// is nothing to write.
type Mutation func(p *domain.Project) (*domain.Project, error)

type MutationResult struct {
	Phase    MutationPhase
	Project  *domain.Project
	Changed  bool
	Warnings []domain.Warning
	// Trace lists every phase entered, in order.
	Trace []MutationPhase
}

func (r *MutationResult) enter(p MutationPhase) {
	r.Phase = p
	r.Trace = append(r.Trace, p)
}

// Mutator runs mutations as one atomic read-modify-write against the
// store, so concurrent writers to the same project are serialized.
type Mutator struct {
	repo     repository.ProjectRepo
	metrics  *metrics.Metrics
	observer UseCaseObserver
}

func NewMutator(repo repository.ProjectRepo, m *metrics.Metrics, observers ...UseCaseObserver) *Mutator {
	return &Mutator{repo: repo, metrics: m, observer: useCaseObserverOrNoop(observers)}
}

// Apply runs fn for operation op. The returned result is never nil; on a
// rejection its Phase is PhaseRejected and the error is the validation
// error, with nothing written.
func (m *Mutator) Apply(ctx context.Context, key domain.ProjectKey, op string, fn Mutation) (*MutationResult, error) {
	start := time.Now()
	res := &MutationResult{}
	res.enter(PhaseIdle)

	stored, err := m.repo.Update(ctx, key, func(current *domain.Project) (*domain.Project, error) {
		// the store may retry on contention, so every attempt starts clean
		*res = MutationResult{}
		res.enter(PhaseIdle)
		res.enter(PhaseValidating)
		next, err := fn(current)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		res.enter(PhaseApplying)
		res.Changed = true

		res.enter(PhaseRecomputing)
		began := time.Now()
		res.Warnings = wbs.Refresh(next)
		m.metrics.RecordRecompute(len(next.Tasks), time.Since(began))
		return next, nil
	})

	outcome := metrics.OutcomeCommitted
	switch {
	case err != nil && rejection(err):
		res.enter(PhaseRejected)
		outcome = metrics.OutcomeRejected
	case err != nil:
		res.enter(PhaseFailed)
		outcome = metrics.OutcomeFailed
	default:
		res.enter(PhaseCommitted)
		res.Project = stored
		if !res.Changed {
			outcome = metrics.OutcomeUnchanged
		}
	}
	m.metrics.RecordMutation(op, outcome)
	observe(ctx, m.observer, op, start, err, map[string]any{
		"phase":   string(res.Phase),
		"project": key.Path(),
	})
	return res, err
}

// rejection reports whether err is the command's fault rather than the
// store's.
func rejection(err error) bool {
	return errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound)
}

// Run is Apply for callers that only need the committed snapshot.
func (m *Mutator) Run(ctx context.Context, key domain.ProjectKey, op string, fn Mutation) (*domain.Project, error) {
	res, err := m.Apply(ctx, key, op, fn)
	if err != nil {
		return nil, err
	}
	return res.Project, nil
}
