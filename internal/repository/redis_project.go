package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic retries when a watched key changes under us.
const maxTxRetries = 16

// RedisProjectRepo keeps each project document as a JSON string at its key
// path, plus a set of project ids per owner. Writes use WATCH/MULTI and
// publish the new body on the key's change channel.
type RedisProjectRepo struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisProjectRepo namespaces every key under prefix, which may be empty.
func NewRedisProjectRepo(client redis.UniversalClient, prefix string) *RedisProjectRepo {
	return &RedisProjectRepo{client: client, prefix: prefix, now: func() time.Time { return time.Now().UTC() }}
}

func (r *RedisProjectRepo) docKey(key domain.ProjectKey) string { return r.prefix + key.Path() }
func (r *RedisProjectRepo) indexKey(owner string) string      { return r.prefix + domain.OwnerPrefix(owner) }
func (r *RedisProjectRepo) channel(key domain.ProjectKey) string {
	return r.prefix + "changes:" + key.Path()
}

func (r *RedisProjectRepo) Get(ctx context.Context, key domain.ProjectKey) (*domain.Project, error) {
	return r.load(ctx, r.client, key)
}

func (r *RedisProjectRepo) load(ctx context.Context, c redis.Cmdable, key domain.ProjectKey) (*domain.Project, error) {
	body, err := c.Get(ctx, r.docKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return unmarshalProject(body)
}

// watch runs fn under WATCH on the document key, retrying when another
// client wrote it first.
func (r *RedisProjectRepo) watch(ctx context.Context, key domain.ProjectKey, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, fn, r.docKey(key))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("project %s: too many concurrent writers: %w", key.Path(), domain.ErrConflict)
}

func (r *RedisProjectRepo) store(ctx context.Context, tx *redis.Tx, key domain.ProjectKey, p *domain.Project) error {
	body, err := encodeProject(p)
	if err != nil {
		return err
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.docKey(key), body, 0)
		pipe.SAdd(ctx, r.indexKey(key.Owner), key.ProjectID)
		pipe.Publish(ctx, r.channel(key), body)
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing project: %w", err)
	}
	return nil
}

func (r *RedisProjectRepo) Put(ctx context.Context, key domain.ProjectKey, p *domain.Project) error {
	return r.watch(ctx, key, func(tx *redis.Tx) error {
		var revision int64
		current, err := r.load(ctx, tx, key)
		switch {
		case err == nil:
			revision = current.Revision
			if p.CreatedAt.IsZero() {
				p.CreatedAt = current.CreatedAt
			}
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		stampPut(p, key, revision+1, r.now())
		return r.store(ctx, tx, key, p)
	})
}

func (r *RedisProjectRepo) Update(ctx context.Context, key domain.ProjectKey, fn UpdateFunc) (*domain.Project, error) {
	var next *domain.Project
	err := r.watch(ctx, key, func(tx *redis.Tx) error {
		current, err := r.load(ctx, tx, key)
		if err != nil {
			return err
		}
		var changed bool
		next, changed, err = applyUpdate(current, key, fn, r.now())
		if err != nil || !changed {
			return err
		}
		return r.store(ctx, tx, key, next)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (r *RedisProjectRepo) Remove(ctx context.Context, key domain.ProjectKey) error {
	return r.watch(ctx, key, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, r.docKey(key)).Result()
		if err != nil {
			return fmt.Errorf("checking project: %w", err)
		}
		if n == 0 {
			return notFound(key)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, r.docKey(key))
			pipe.SRem(ctx, r.indexKey(key.Owner), key.ProjectID)
			pipe.Publish(ctx, r.channel(key), "")
			return nil
		})
		if err != nil {
			return fmt.Errorf("deleting project: %w", err)
		}
		return nil
	})
}

func (r *RedisProjectRepo) List(ctx context.Context, owner string) ([]*domain.Project, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	projects := []*domain.Project{}
	if len(ids) == 0 {
		return projects, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(domain.ProjectKey{Owner: owner, ProjectID: id})
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// index entry outlived its document
			continue
		}
		p, err := unmarshalProject([]byte(s))
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	sortProjects(projects)
	return projects, nil
}

// Subscribe listens on the key's pub/sub channel. Messages carry the full
// document body, so no read-back is needed.
func (r *RedisProjectRepo) Subscribe(ctx context.Context, key domain.ProjectKey) (<-chan *domain.Project, error) {
	sub := r.client.Subscribe(ctx, r.channel(key))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribing to changes: %w", err)
	}
	current, err := r.Get(ctx, key)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}

	in := make(chan *domain.Project)
	go func() {
		defer close(in)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var p *domain.Project
				if msg.Payload != "" {
					decoded, err := unmarshalProject([]byte(msg.Payload))
					if err != nil {
						continue
					}
					p = decoded
				}
				select {
				case in <- p:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	out := make(chan *domain.Project, 1)
	go deliver(ctx, out, current, in)
	return out, nil
}
