// =============================================================================
// Sales Report Bot - Event Dispatcher
// =============================================================================
//
// The dispatcher fans inbound messages out to a fixed set of workers.
//
// ORDERING:
//   Every user is pinned to one worker by a hash of the user ID, and each
//   worker handles its events one at a time. Messages of one user are
//   therefore processed in arrival order, while different users proceed in
//   parallel.
//
// LIFECYCLE:
//   NewDispatcher -> Start -> Submit... -> Stop
//   Stop closes the intake and waits until every queued event is handled.
//
// =============================================================================

package bot

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"
)

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("dispatcher stopped")

// defaultQueueSize is the per-worker buffer.
const defaultQueueSize = 64

// Dispatcher shards events by user across workers.
type Dispatcher struct {
	handler *Handler
	logger  *slog.Logger
	queues  []chan Event
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a dispatcher with the given number of workers.
// Values below one are raised to one.
func NewDispatcher(h *Handler, workers int, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		handler: h,
		logger:  logger,
		queues:  make([]chan Event, workers),
	}
	for i := range d.queues {
		d.queues[i] = make(chan Event, defaultQueueSize)
	}
	return d
}

// Start launches the workers. ctx is passed to every handled event.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, q := range d.queues {
		d.wg.Add(1)
		go d.worker(ctx, i, q)
	}
	d.logger.Info("dispatcher started", "workers", len(d.queues))
}

// Submit queues ev on the worker owning ev.UserID. It blocks while that
// worker's queue is full.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrStopped
	}

	select {
	case d.queues[d.shard(ev.UserID)] <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop rejects further events and waits for queued ones to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int, q <-chan Event) {
	defer d.wg.Done()
	for ev := range q {
		d.logger.Debug("handling event", "worker", id, "user", ev.UserID)
		d.handler.Handle(ctx, ev)
	}
}

func (d *Dispatcher) shard(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.queues)))
}
