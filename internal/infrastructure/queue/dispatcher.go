// Package queue runs follow-graph repair jobs on a fixed pool of workers.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/projectlink/projectlink-api/internal/core/ports"
	"github.com/projectlink/projectlink-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// RepairFunc handles one repair job.
type RepairFunc func(ctx context.Context, job ports.FollowRepair) error

// Dispatcher routes repair jobs to workers by consistent hashing on the
// followee id, so repairs of one followers list are applied in order.
type Dispatcher struct {
	workers []chan ports.FollowRepair
	handle  RepairFunc
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, handle RepairFunc, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.FollowRepair, numWorkers),
		handle:  handle,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.FollowRepair, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands job to the worker owning its followee. It never blocks: a
// job is dropped when that worker's buffer is full, leaving it to the
// periodic reconciler.
func (d *Dispatcher) Enqueue(job ports.FollowRepair) bool {
	idx := d.shardIndex(job.FolloweeID)
	select {
	case d.workers[idx] <- job:
		metrics.RepairQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		d.log.Warn().
			Str("repair_id", job.ID).
			Str("followee_id", job.FolloweeID).
			Int("worker_id", idx).
			Msg("repair queue full, job dropped")
		return false
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.FollowRepair) {
	defer d.wg.Done()
	depth := metrics.RepairQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-ch:
			depth.Set(float64(len(ch)))
			if err := d.handle(ctx, job); err != nil {
				d.log.Error().Err(err).
					Str("repair_id", job.ID).
					Str("follower_id", job.FollowerID).
					Str("followee_id", job.FolloweeID).
					Int("worker_id", id).
					Msg("follow repair failed")
			}
		}
	}
}
