package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectlink/projectlink-api/internal/core/ports"
)

type recorder struct {
	mu   sync.Mutex
	seen []string
	done chan struct{}
	want int
}

func (r *recorder) handle(_ context.Context, job ports.FollowRepair) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, job.ID)
	if len(r.seen) == r.want {
		close(r.done)
	}
	return nil
}

func TestDispatcher_PreservesOrderPerFollowee(t *testing.T) {
	rec := &recorder{done: make(chan struct{}), want: 3}
	d := NewDispatcher(4, rec.handle, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for _, id := range []string{"j1", "j2", "j3"} {
		if !d.Enqueue(ports.FollowRepair{ID: id, FollowerID: "a", FolloweeID: "b"}) {
			t.Fatalf("enqueue %s dropped", id)
		}
	}

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("jobs not processed in time")
	}
	cancel()
	d.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i, want := range []string{"j1", "j2", "j3"} {
		if rec.seen[i] != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, rec.seen[i])
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, func(context.Context, ports.FollowRepair) error { return nil }, zerolog.Nop())

	first := d.shardIndex("user-42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("user-42"); got != first {
			t.Fatalf("shard changed: %d != %d", got, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard out of range: %d", first)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, func(context.Context, ports.FollowRepair) error { return nil }, zerolog.Nop())
	// Workers are not started, so the buffer fills up.
	for i := 0; i < channelBuffer; i++ {
		if !d.Enqueue(ports.FollowRepair{FolloweeID: "b"}) {
			t.Fatalf("job %d dropped before buffer was full", i)
		}
	}
	if d.Enqueue(ports.FollowRepair{FolloweeID: "b"}) {
		t.Fatalf("expected job to be dropped once buffer is full")
	}
}
