package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runProjectRepoContract exercises behavior every ProjectRepo must share.
func runProjectRepoContract(t *testing.T, newRepo func(t *testing.T) ProjectRepo) {
	t.Run("GetMissing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(context.Background(), newKey())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("PutAndGet", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		key := newKey()

		p := sampleDocument("Apollo")
		require.NoError(t, repo.Put(ctx, key, p))
		assert.Equal(t, int64(1), p.Revision)
		assert.Equal(t, key.ProjectID, p.ID)
		assert.False(t, p.CreatedAt.IsZero())

		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "Apollo", got.Name)
		assert.Equal(t, int64(1), got.Revision)
		assert.Equal(t, testutil.TaskIDs(p.Tasks), testutil.TaskIDs(got.Tasks))
		assert.Equal(t, p.Departments, got.Departments)
		assert.Equal(t, 40, got.Tasks[1].DepartmentProgress["d1"])
		assert.NotNil(t, got.Tasks[0].Deliverables)
		assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("PutOverwriteBumpsRevision", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		key := newKey()

		first := sampleDocument("One")
		require.NoError(t, repo.Put(ctx, key, first))

		second := sampleDocument("Two")
		second.CreatedAt = time.Time{}
		require.NoError(t, repo.Put(ctx, key, second))
		assert.Equal(t, int64(2), second.Revision)
		assert.True(t, first.CreatedAt.Equal(second.CreatedAt), "creation time survives overwrite")

		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "Two", got.Name)
	})

	t.Run("Update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		key := newKey()
		require.NoError(t, repo.Put(ctx, key, sampleDocument("Before")))

		next, err := repo.Update(ctx, key, func(p *domain.Project) (*domain.Project, error) {
			p.Name = "After"
			return p, nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), next.Revision)
		assert.Equal(t, "After", next.Name)

		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "After", got.Name)
		assert.Equal(t, int64(2), got.Revision)
	})

	t.Run("UpdateErrorWritesNothing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		key := newKey()
		require.NoError(t, repo.Put(ctx, key, sampleDocument("Stable")))
		boom := errors.New("rejected")

		_, err := repo.Update(ctx, key, func(p *domain.Project) (*domain.Project, error) {
			p.Name = "Mutated"
			return nil, boom
		})
		require.ErrorIs(t, err, boom)

		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "Stable", got.Name)
		assert.Equal(t, int64(1), got.Revision)
	})

	t.Run("UpdateNoChange", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		key := newKey()
		require.NoError(t, repo.Put(ctx, key, sampleDocument("Same")))

		got, err := repo.Update(ctx, key, func(*domain.Project) (*domain.Project, error) { return nil, nil })
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Revision)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Update(context.Background(), newKey(), func(p *domain.Project) (*domain.Project, error) { return p, nil })
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Remove", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		key := newKey()
		require.NoError(t, repo.Put(ctx, key, sampleDocument("Doomed")))

		require.NoError(t, repo.Remove(ctx, key))
		_, err := repo.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.Remove(ctx, key), domain.ErrNotFound)

		list, err := repo.List(ctx, key.Owner)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("ListByOwner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := uuid.NewString()
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		for i, name := range []string{"Second", "First", "Third"} {
			p := sampleDocument(name)
			p.CreatedAt = base.Add(time.Duration([]int{2, 1, 3}[i]) * time.Hour)
			require.NoError(t, repo.Put(ctx, domain.ProjectKey{Owner: owner, ProjectID: uuid.NewString()}, p))
		}
		require.NoError(t, repo.Put(ctx, newKey(), sampleDocument("Someone else's")))

		list, err := repo.List(ctx, owner)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "First", list[0].Name)
		assert.Equal(t, "Second", list[1].Name)
		assert.Equal(t, "Third", list[2].Name)

		empty, err := repo.List(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("Subscribe", func(t *testing.T) {
		repo := newRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		key := newKey()
		require.NoError(t, repo.Put(ctx, key, sampleDocument("Live")))

		ch, err := repo.Subscribe(ctx, key)
		require.NoError(t, err)
		first := nextSnapshot(t, ch)
		require.NotNil(t, first)
		assert.Equal(t, int64(1), first.Revision)

		_, err = repo.Update(ctx, key, func(p *domain.Project) (*domain.Project, error) {
			p.Name = "Live v2"
			return p, nil
		})
		require.NoError(t, err)
		second := waitForRevision(t, ch, 2)
		assert.Equal(t, "Live v2", second.Name)

		require.NoError(t, repo.Remove(ctx, key))
		assert.Nil(t, waitForRemoval(t, ch))

		cancel()
		assert.Eventually(t, func() bool {
			for {
				select {
				case _, ok := <-ch:
					if !ok {
						return true
					}
				default:
					return false
				}
			}
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("SubscribeMissing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Subscribe(context.Background(), newKey())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ConcurrentUpdatesSerialize", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		key := newKey()
		start := testutil.NewTestProject("Counter", testutil.WithoutDepartments())
		require.NoError(t, repo.Put(ctx, key, start))

		const writers = 12
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Update(ctx, key, func(p *domain.Project) (*domain.Project, error) {
					p.Tasks = append(p.Tasks, testutil.NewTestTask(uuid.NewString(), ""))
					return p, nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Len(t, got.Tasks, writers, "no lost updates")
		assert.Equal(t, int64(writers+1), got.Revision)
	})
}

func newKey() domain.ProjectKey {
	return domain.ProjectKey{Owner: uuid.NewString(), ProjectID: uuid.NewString()}
}

func sampleDocument(name string) *domain.Project {
	return testutil.NewTestProject(name,
		testutil.WithDepartment("d1", "Design", 60),
		testutil.WithTasks(
			testutil.NewTestTask("1", ""),
			testutil.NewTestTask("1.1", "1", testutil.WithProgress("d1", 40)),
		),
	)
}

func nextSnapshot(t *testing.T, ch <-chan *domain.Project) *domain.Project {
	t.Helper()
	select {
	case p, ok := <-ch:
		require.True(t, ok, "subscription closed early")
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func waitForRevision(t *testing.T, ch <-chan *domain.Project, rev int64) *domain.Project {
	t.Helper()
	for {
		p := nextSnapshot(t, ch)
		if p != nil && p.Revision >= rev {
			return p
		}
	}
}

func waitForRemoval(t *testing.T, ch <-chan *domain.Project) *domain.Project {
	t.Helper()
	for {
		if p := nextSnapshot(t, ch); p == nil {
			return nil
		}
	}
}
