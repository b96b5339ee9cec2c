package repository

import (
	"context"

	"github.com/alexanderramin/wbsctl/internal/domain"
)

// UpdateFunc receives a private copy of the stored project and returns the
// replacement. Returning a nil project with a nil error leaves the document
// unchanged.
type UpdateFunc func(p *domain.Project) (*domain.Project, error)

// ProjectRepo persists one JSON document per project, addressed by
// domain.ProjectKey. Every successful write bumps Revision by one.
type ProjectRepo interface {
	Get(ctx context.Context, key domain.ProjectKey) (*domain.Project, error)
	// Put creates or overwrites the document. p.Revision is set to the
	// stored revision.
	Put(ctx context.Context, key domain.ProjectKey, p *domain.Project) error
	// Update runs fn as an atomic read-modify-write. Errors from fn abort
	// the write and are returned as-is.
	Update(ctx context.Context, key domain.ProjectKey, fn UpdateFunc) (*domain.Project, error)
	Remove(ctx context.Context, key domain.ProjectKey) error
	// List returns the owner's projects, oldest first.
	List(ctx context.Context, owner string) ([]*domain.Project, error)
	// Subscribe sends the current snapshot, then one snapshot per committed
	// change. A removal is sent as nil. The channel closes when ctx ends.
	Subscribe(ctx context.Context, key domain.ProjectKey) (<-chan *domain.Project, error)
}

var (
	_ ProjectRepo = (*SQLiteProjectRepo)(nil)
	_ ProjectRepo = (*PostgresProjectRepo)(nil)
	_ ProjectRepo = (*RedisProjectRepo)(nil)
)
