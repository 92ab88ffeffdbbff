package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edupay-lk/edupay/internal/shared/logger"
)

type recordingVerifier struct {
	mu   sync.Mutex
	seen []string
	done chan struct{}
	want int
}

func (v *recordingVerifier) Execute(ctx context.Context, claimSID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seen = append(v.seen, claimSID)
	if len(v.seen) == v.want {
		close(v.done)
	}
	return nil
}

func TestDispatcher_ProcessesEnqueuedClaims(t *testing.T) {
	verifier := &recordingVerifier{done: make(chan struct{}), want: 3}
	d := NewDispatcher(verifier, 2, 8, logger.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Stop()

	assert.True(t, d.Enqueue("clm_a"))
	assert.True(t, d.Enqueue("clm_b"))
	assert.True(t, d.Enqueue("clm_c"))

	select {
	case <-verifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not process enqueued claims in time")
	}

	verifier.mu.Lock()
	defer verifier.mu.Unlock()
	assert.ElementsMatch(t, []string{"clm_a", "clm_b", "clm_c"}, verifier.seen)
}

func TestDispatcher_EnqueueReportsFullQueue(t *testing.T) {
	verifier := &recordingVerifier{done: make(chan struct{}), want: 0}
	d := NewDispatcher(verifier, 1, 1, logger.NewLogger())
	// Not started: the single slot fills and the next offer is refused.

	assert.True(t, d.Enqueue("clm_a"))
	assert.False(t, d.Enqueue("clm_b"))
}
