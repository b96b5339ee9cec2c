package service

import (
	"context"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/repository"
	"golang.org/x/sync/singleflight"
)

// Loader reads project snapshots, coalescing concurrent reads of the same
// key into one store round trip. Every caller gets its own copy.
type Loader struct {
	repo  repository.ProjectRepo
	group singleflight.Group
}

func NewLoader(repo repository.ProjectRepo) *Loader {
	return &Loader{repo: repo}
}

// Get returns when the shared read finishes or ctx ends. The shared read
// itself ignores cancellation so one caller leaving does not fail the
// others waiting on it.
func (l *Loader) Get(ctx context.Context, key domain.ProjectKey) (*domain.Project, error) {
	ch := l.group.DoChan(key.Path(), func() (any, error) {
		return l.repo.Get(context.WithoutCancel(ctx), key)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Project).Clone(), nil
	}
}
