package main

import (
	"context"
	"fmt"

	"github.com/alexanderramin/wbsctl/internal/config"
	"github.com/alexanderramin/wbsctl/internal/db"
	"github.com/alexanderramin/wbsctl/internal/events"
	"github.com/alexanderramin/wbsctl/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// store is the opened project repository with its probe and teardown.
type store struct {
	repo    repository.ProjectRepo
	health  func(ctx context.Context) error
	closers []func()
}

func (s *store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.PostgresDSN)
	case config.DriverRedis:
		return openRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
	default:
		return openSQLite(cfg.SQLitePath)
	}
}

func openSQLite(path string) (*store, error) {
	database, err := db.OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	bus := events.NewBus()
	return &store{
		repo:    repository.NewSQLiteProjectRepo(database, bus),
		health:  database.PingContext,
		closers: []func(){func() { _ = database.Close() }, bus.Close},
	}, nil
}

func openPostgres(ctx context.Context, dsn string) (*store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	repo := repository.NewPostgresProjectRepo(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating postgres schema: %w", err)
	}
	return &store{repo: repo, health: pool.Ping, closers: []func(){pool.Close}}, nil
}

func openRedis(ctx context.Context, url, prefix string) (*store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &store{
		repo:    repository.NewRedisProjectRepo(client, prefix),
		health:  func(ctx context.Context) error { return client.Ping(ctx).Err() },
		closers: []func(){func() { _ = client.Close() }},
	}, nil
}

