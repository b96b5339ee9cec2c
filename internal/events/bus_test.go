package events

import (
	"testing"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = domain.ProjectKey{Owner: "u1", ProjectID: "p1"}

func change(rev int64) Change {
	return Change{Key: key, Revision: rev, Project: &domain.Project{ID: "p1", Revision: rev}}
}

func receive(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "channel closed")
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe(key.Path())
	defer unsub()

	bus.Publish(key.Path(), change(1))
	got := receive(t, ch)
	assert.Equal(t, int64(1), got.Revision)
	assert.False(t, got.Timestamp.IsZero())
	assert.False(t, got.Removed())
}

func TestBus_TopicsAreIsolated(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe(key.Path())
	defer unsub()

	bus.Publish("users/u1/projects/other", change(9))
	select {
	case c := <-ch:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	a, unsubA := bus.Subscribe(key.Path())
	defer unsubA()
	b, unsubB := bus.Subscribe(key.Path())
	defer unsubB()
	assert.Equal(t, 2, bus.Subscribers(key.Path()))

	bus.Publish(key.Path(), change(3))
	assert.Equal(t, int64(3), receive(t, a).Revision)
	assert.Equal(t, int64(3), receive(t, b).Revision)
}

func TestBus_SlowReaderGetsLatest(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe(key.Path())
	defer unsub()

	for rev := int64(1); rev <= 5; rev++ {
		bus.Publish(key.Path(), change(rev))
	}
	assert.Equal(t, int64(5), receive(t, ch).Revision)
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe(key.Path())
	unsub()
	unsub()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, bus.Subscribers(key.Path()))

	bus.Publish(key.Path(), change(1))
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()
	ch, unsub := bus.Subscribe(key.Path())
	bus.Close()

	_, ok := <-ch
	assert.False(t, ok)
	unsub()

	late, _ := bus.Subscribe(key.Path())
	_, ok = <-late
	assert.False(t, ok, "subscriptions after Close are closed immediately")
}
