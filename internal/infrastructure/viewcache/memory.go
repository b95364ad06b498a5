// Package viewcache holds the process-local view deduplication store.
package viewcache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MemoryDeduper remembers the last counted view per (viewer, project) in
// memory. State is lost on restart and is not shared between instances.
type MemoryDeduper struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewMemoryDeduper(cooldown time.Duration, log zerolog.Logger) *MemoryDeduper {
	return &MemoryDeduper{
		lastSeen: make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
		log:      log,
	}
}

// Admit reports whether the view should be counted, recording it if so.
func (d *MemoryDeduper) Admit(_ context.Context, viewerKey, projectID string) (bool, error) {
	key := viewerKey + "|" + projectID
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.lastSeen[key]; ok && now.Sub(last) < d.cooldown {
		return false, nil
	}
	d.lastSeen[key] = now
	return true, nil
}

// Sweep drops entries whose cooldown has elapsed and returns how many were
// removed.
func (d *MemoryDeduper) Sweep() int {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for key, last := range d.lastSeen {
		if now.Sub(last) >= d.cooldown {
			delete(d.lastSeen, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked (viewer, project) pairs.
func (d *MemoryDeduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lastSeen)
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval
// disables sweeping.
func (d *MemoryDeduper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := d.Sweep()
			d.log.Debug().Int("expired", removed).Int("tracked", d.Len()).Msg("view cache swept")
		}
	}
}
