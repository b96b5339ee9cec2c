package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/wbsctl/internal/db"
	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/events"
	"github.com/alexanderramin/wbsctl/internal/lock"
)

// SQLiteProjectRepo stores project documents in the project_documents table.
// Writers to the same path are serialized in-process; change notification
// goes through an events.Bus, so subscribers only see writes made by this
// process.
type SQLiteProjectRepo struct {
	db    *sql.DB
	uow   db.UnitOfWork
	bus   *events.Bus
	locks *lock.MutexMap
	now   func() time.Time
}

func NewSQLiteProjectRepo(database *sql.DB, bus *events.Bus) *SQLiteProjectRepo {
	if bus == nil {
		bus = events.NewBus()
	}
	return &SQLiteProjectRepo{
		db:    database,
		uow:   db.NewSQLiteUnitOfWork(database),
		bus:   bus,
		locks: lock.NewMutexMap(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithUnitOfWork returns a copy of r that runs writes through uow.
func (r *SQLiteProjectRepo) WithUnitOfWork(uow db.UnitOfWork) *SQLiteProjectRepo {
	c := *r
	c.uow = uow
	return &c
}

func (r *SQLiteProjectRepo) Get(ctx context.Context, key domain.ProjectKey) (*domain.Project, error) {
	return r.load(ctx, r.db, key)
}

func (r *SQLiteProjectRepo) load(ctx context.Context, q db.DBTX, key domain.ProjectKey) (*domain.Project, error) {
	var revision int64
	var body string
	err := q.QueryRowContext(ctx,
		`SELECT revision, body FROM project_documents WHERE path = ?`, key.Path(),
	).Scan(&revision, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return decodeProject([]byte(body), revision)
}

func (r *SQLiteProjectRepo) write(ctx context.Context, q db.DBTX, key domain.ProjectKey, p *domain.Project) error {
	body, err := encodeProject(p)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO project_documents (path, owner, project_id, name, revision, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			revision = excluded.revision,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		key.Path(),
		key.Owner,
		key.ProjectID,
		p.Name,
		p.Revision,
		string(body),
		p.CreatedAt.Format(timeLayout),
		p.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("writing project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) Put(ctx context.Context, key domain.ProjectKey, p *domain.Project) error {
	r.locks.Lock(key.Path())
	defer r.locks.Unlock(key.Path())

	err := r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var revision int64
		var createdAt string
		err := tx.QueryRowContext(ctx,
			`SELECT revision, created_at FROM project_documents WHERE path = ?`, key.Path(),
		).Scan(&revision, &createdAt)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("reading revision: %w", err)
		}
		if t, perr := time.Parse(timeLayout, createdAt); perr == nil && p.CreatedAt.IsZero() {
			p.CreatedAt = t
		}
		stampPut(p, key, revision+1, r.now())
		return r.write(ctx, tx, key, p)
	})
	if err != nil {
		return err
	}
	r.publish(key, p)
	return nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, key domain.ProjectKey, fn UpdateFunc) (*domain.Project, error) {
	r.locks.Lock(key.Path())
	defer r.locks.Unlock(key.Path())

	var next *domain.Project
	var changed bool
	err := r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		current, err := r.load(ctx, tx, key)
		if err != nil {
			return err
		}
		next, changed, err = applyUpdate(current, key, fn, r.now())
		if err != nil || !changed {
			return err
		}
		return r.write(ctx, tx, key, next)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		r.publish(key, next)
	}
	return next, nil
}

func (r *SQLiteProjectRepo) Remove(ctx context.Context, key domain.ProjectKey) error {
	r.locks.Lock(key.Path())
	defer r.locks.Unlock(key.Path())

	res, err := r.db.ExecContext(ctx, `DELETE FROM project_documents WHERE path = ?`, key.Path())
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n == 0 {
		return notFound(key)
	}
	r.bus.Publish(key.Path(), events.Change{Key: key})
	return nil
}

func (r *SQLiteProjectRepo) List(ctx context.Context, owner string) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT revision, body FROM project_documents WHERE owner = ? ORDER BY created_at, project_id`, owner)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	projects := []*domain.Project{}
	for rows.Next() {
		var revision int64
		var body string
		if err := rows.Scan(&revision, &body); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		p, err := decodeProject([]byte(body), revision)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	sortProjects(projects)
	return projects, nil
}

func (r *SQLiteProjectRepo) Subscribe(ctx context.Context, key domain.ProjectKey) (<-chan *domain.Project, error) {
	changes, unsubscribe := r.bus.Subscribe(key.Path())
	current, err := r.Get(ctx, key)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	out := make(chan *domain.Project, 1)
	go func() {
		defer unsubscribe()
		deliver(ctx, out, current, busSnapshots(ctx, changes))
	}()
	return out, nil
}

func (r *SQLiteProjectRepo) publish(key domain.ProjectKey, p *domain.Project) {
	r.bus.Publish(key.Path(), events.Change{Key: key, Revision: p.Revision, Project: p.Clone()})
}
