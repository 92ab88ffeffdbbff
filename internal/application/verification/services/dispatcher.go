package services

import (
	"context"
	"sync"

	"github.com/edupay-lk/edupay/internal/shared/goroutine"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

// ClaimVerifier is the unit of background work the dispatcher drives.
type ClaimVerifier interface {
	Execute(ctx context.Context, claimSID string) error
}

// Dispatcher is the fire-and-forget verification queue: a bounded channel
// of claim IDs consumed by a fixed pool of workers. Submission enqueues
// and returns; verification failures are logged here and never reach the
// submitting request. A full queue drops the enqueue, the periodic sweep
// re-offers such claims.
type Dispatcher struct {
	verifier ClaimVerifier
	queue    chan string
	workers  int
	logger   logger.Interface

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewDispatcher(verifier ClaimVerifier, workers, queueSize int, log logger.Interface) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		verifier: verifier,
		queue:    make(chan string, queueSize),
		workers:  workers,
		logger:   log,
		done:     make(chan struct{}),
	}
}

// Start launches the worker pool. Safe to call once.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			worker := i
			goroutine.SafeGo(d.logger, "verification-worker", func() {
				defer d.wg.Done()
				d.run(ctx, worker)
			})
		}
		d.logger.Infow("verification dispatcher started",
			"workers", d.workers,
			"queue_size", cap(d.queue),
		)
	})
}

// Stop drains nothing: queued claims not yet picked up are abandoned and
// recovered by the sweep job. Workers finish their in-flight claim.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
		d.logger.Infow("verification dispatcher stopped")
	})
}

// Enqueue offers a claim for background verification. Returns false when
// the queue is full.
func (d *Dispatcher) Enqueue(claimSID string) bool {
	select {
	case d.queue <- claimSID:
		return true
	default:
		d.logger.Warnw("verification queue full, claim left for sweep",
			"claim_id", claimSID,
		)
		return false
	}
}

func (d *Dispatcher) run(ctx context.Context, worker int) {
	for {
		select {
		case <-d.done:
			return
		case <-ctx.Done():
			return
		case claimSID := <-d.queue:
			if err := d.verifier.Execute(ctx, claimSID); err != nil {
				// Background failures never propagate; the claim simply
				// stays pending for the sweep or an administrator.
				d.logger.Errorw("background verification failed",
					"claim_id", claimSID,
					"worker", worker,
					"error", err,
				)
			}
		}
	}
}
