package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotifyChannel is the LISTEN/NOTIFY channel carrying "<revision> <path>"
// for every committed write. Removals carry revision 0.
const NotifyChannel = "wbs_project_changes"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS project_documents (
	path       TEXT PRIMARY KEY,
	owner      TEXT NOT NULL,
	project_id TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	revision   BIGINT NOT NULL CHECK (revision >= 0),
	body       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_project_documents_owner ON project_documents(owner);
CREATE UNIQUE INDEX IF NOT EXISTS idx_project_documents_owner_project ON project_documents(owner, project_id);
`

// PostgresProjectRepo stores project documents as jsonb rows. Writes lock
// the row for the length of the transaction and announce themselves with
// pg_notify, so subscribers see changes from every process.
type PostgresProjectRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresProjectRepo(pool *pgxpool.Pool) *PostgresProjectRepo {
	return &PostgresProjectRepo{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the document table when it is missing.
func (r *PostgresProjectRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("creating postgres schema: %w", err)
	}
	return nil
}

func (r *PostgresProjectRepo) Get(ctx context.Context, key domain.ProjectKey) (*domain.Project, error) {
	var revision int64
	var body []byte
	err := r.pool.QueryRow(ctx,
		`SELECT revision, body FROM project_documents WHERE path = $1`, key.Path(),
	).Scan(&revision, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return decodeProject(body, revision)
}

func (r *PostgresProjectRepo) Put(ctx context.Context, key domain.ProjectKey, p *domain.Project) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var revision int64
		var createdAt time.Time
		err := tx.QueryRow(ctx,
			`SELECT revision, created_at FROM project_documents WHERE path = $1 FOR UPDATE`, key.Path(),
		).Scan(&revision, &createdAt)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("reading revision: %w", err)
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = createdAt.UTC()
		}
		stampPut(p, key, revision+1, r.now())
		return r.write(ctx, tx, key, p)
	})
}

func (r *PostgresProjectRepo) Update(ctx context.Context, key domain.ProjectKey, fn UpdateFunc) (*domain.Project, error) {
	var next *domain.Project
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var revision int64
		var body []byte
		err := tx.QueryRow(ctx,
			`SELECT revision, body FROM project_documents WHERE path = $1 FOR UPDATE`, key.Path(),
		).Scan(&revision, &body)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(key)
		}
		if err != nil {
			return fmt.Errorf("loading project: %w", err)
		}
		current, err := decodeProject(body, revision)
		if err != nil {
			return err
		}
		var changed bool
		next, changed, err = applyUpdate(current, key, fn, r.now())
		if err != nil || !changed {
			return err
		}
		return r.write(ctx, tx, key, next)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// write upserts p and queues the change notification, which Postgres
// delivers only if the transaction commits.
func (r *PostgresProjectRepo) write(ctx context.Context, tx pgx.Tx, key domain.ProjectKey, p *domain.Project) error {
	body, err := encodeProject(p)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO project_documents (path, owner, project_id, name, revision, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (path) DO UPDATE SET
			name = EXCLUDED.name,
			revision = EXCLUDED.revision,
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at`,
		key.Path(), key.Owner, key.ProjectID, p.Name, p.Revision, body, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("writing project: %w", err)
	}
	return notify(ctx, tx, key, p.Revision)
}

func notify(ctx context.Context, tx pgx.Tx, key domain.ProjectKey, revision int64) error {
	payload := strconv.FormatInt(revision, 10) + " " + key.Path()
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, payload); err != nil {
		return fmt.Errorf("notifying change: %w", err)
	}
	return nil
}

func (r *PostgresProjectRepo) Remove(ctx context.Context, key domain.ProjectKey) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM project_documents WHERE path = $1`, key.Path())
		if err != nil {
			return fmt.Errorf("deleting project: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return notFound(key)
		}
		return notify(ctx, tx, key, 0)
	})
}

func (r *PostgresProjectRepo) List(ctx context.Context, owner string) ([]*domain.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT revision, body FROM project_documents WHERE owner = $1 ORDER BY created_at, project_id`, owner)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	projects := []*domain.Project{}
	for rows.Next() {
		var revision int64
		var body []byte
		if err := rows.Scan(&revision, &body); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		p, err := decodeProject(body, revision)
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

// Subscribe holds a dedicated pooled connection in LISTEN mode for as long
// as ctx lives.
func (r *PostgresProjectRepo) Subscribe(ctx context.Context, key domain.ProjectKey) (<-chan *domain.Project, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{NotifyChannel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listening for changes: %w", err)
	}
	current, err := r.Get(ctx, key)
	if err != nil {
		release(conn)
		return nil, err
	}

	in := make(chan *domain.Project)
	go func() {
		defer close(in)
		defer release(conn)
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				return
			}
			revision, path, ok := parseNotification(n.Payload)
			if !ok || path != key.Path() {
				continue
			}
			var p *domain.Project
			if revision > 0 {
				if p, err = r.Get(ctx, key); err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						p = nil
					} else {
						return
					}
				}
			}
			select {
			case in <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make(chan *domain.Project, 1)
	go deliver(ctx, out, current, in)
	return out, nil
}

func parseNotification(payload string) (int64, string, bool) {
	rev, path, ok := strings.Cut(payload, " ")
	if !ok {
		return 0, "", false
	}
	n, err := strconv.ParseInt(rev, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return n, path, true
}

// release drops the LISTEN registration before handing the connection
// back. A connection closed by a canceled wait is discarded by the pool.
func release(conn *pgxpool.Conn) {
	if !conn.Conn().IsClosed() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = conn.Exec(ctx, "UNLISTEN *")
	}
	conn.Release()
}
