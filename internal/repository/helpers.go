package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/events"
)

const timeLayout = time.RFC3339Nano

// storePrecision is the finest time resolution every backend keeps.
const storePrecision = time.Microsecond

func notFound(key domain.ProjectKey) error {
	return fmt.Errorf("project %s: %w", key.Path(), domain.ErrNotFound)
}

// encodeProject serializes p as the stored document body.
func encodeProject(p *domain.Project) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}
	return body, nil
}

// unmarshalProject parses a stored body and fills in defaults for optional
// fields.
func unmarshalProject(body []byte) (*domain.Project, error) {
	var p domain.Project
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	p.Normalize()
	return &p, nil
}

// decodeProject is unmarshalProject for stores that keep the revision in a
// column of its own, which wins over the body's copy.
func decodeProject(body []byte, revision int64) (*domain.Project, error) {
	p, err := unmarshalProject(body)
	if err != nil {
		return nil, err
	}
	p.Revision = revision
	return p, nil
}

// applyUpdate runs fn against a copy of current and stamps the result for
// storage. changed is false when fn asked for no write.
func applyUpdate(current *domain.Project, key domain.ProjectKey, fn UpdateFunc, now time.Time) (next *domain.Project, changed bool, err error) {
	next, err = fn(current.Clone())
	if err != nil {
		return nil, false, err
	}
	if next == nil {
		return current, false, nil
	}
	next.ID = key.ProjectID
	next.Revision = current.Revision + 1
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = now.Truncate(storePrecision)
	return next, true, nil
}

// stampPut prepares p for an overwrite at revision.
func stampPut(p *domain.Project, key domain.ProjectKey, revision int64, now time.Time) {
	p.ID = key.ProjectID
	p.Revision = revision
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.CreatedAt = p.CreatedAt.UTC().Truncate(storePrecision)
	p.UpdatedAt = now.Truncate(storePrecision)
}

func sortProjects(projects []*domain.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i], projects[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// deliver sends snapshots to out until ctx ends, always preferring the
// newest pending snapshot. Snapshots older than one already seen are
// dropped; nil marks a removal. It closes out on return.
func deliver(ctx context.Context, out chan<- *domain.Project, first *domain.Project, in <-chan *domain.Project) {
	defer close(out)

	pending, have := first, true
	seen := first.Revision
	for {
		var send chan<- *domain.Project
		if have {
			send = out
		}
		select {
		case <-ctx.Done():
			return
		case p, ok := <-in:
			if !ok {
				if have {
					select {
					case out <- pending:
					case <-ctx.Done():
					}
				}
				return
			}
			switch {
			case p == nil:
				seen = 0
			case p.Revision <= seen:
				continue
			default:
				seen = p.Revision
			}
			pending, have = p, true
		case send <- pending:
			have = false
		}
	}
}

// busSnapshots adapts a bus subscription to a stream of project snapshots.
func busSnapshots(ctx context.Context, changes <-chan events.Change) <-chan *domain.Project {
	out := make(chan *domain.Project)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-changes:
				if !ok {
					return
				}
				var p *domain.Project
				if !c.Removed() {
					p = c.Project.Clone()
				}
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
