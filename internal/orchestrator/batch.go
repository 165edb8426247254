package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"footdata/sync/internal/metrics"

	"github.com/rs/zerolog/log"
)

// BatchScheduler partitions competition-scoped activities into fixed-size
// batches and inserts a wait between them. Batch size and wait are calibrated
// against the provider's requests-per-window budget; this is the worker's
// sole rate limiting mechanism.
type BatchScheduler struct {
	batchSize int
	wait      time.Duration

	// sleep is swapped out in tests to avoid real waits
	sleep func(ctx context.Context, d time.Duration) error
}

// NewBatchScheduler creates a scheduler with the given batch size and
// inter-batch wait
func NewBatchScheduler(batchSize int, wait time.Duration) *BatchScheduler {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BatchScheduler{
		batchSize: batchSize,
		wait:      wait,
		sleep:     sleepContext,
	}
}

// Wait suspends for one full batch window. The workflow calls this before
// every network phase so a phase never rides on the previous phase's budget.
func (b *BatchScheduler) Wait(ctx context.Context) error {
	metrics.BatchWaitsTotal.Inc()
	log.Debug().Dur("wait", b.wait).Msg("Waiting for next rate limit window")
	return b.sleep(ctx, b.wait)
}

// ExecuteInBatches runs fn concurrently for every ID, batchSize IDs at a
// time, waiting one window between consecutive batches. It returns exactly
// one result per input ID, in input order.
//
// If any member of a batch fails, the whole call fails after the batch has
// fully joined (fail-fast: remaining batches are not started).
func (b *BatchScheduler) ExecuteInBatches(ctx context.Context, ids []int, fn ActivityFunc) ([]ActivityResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	results := make([]ActivityResult, 0, len(ids))

	for start := 0; start < len(ids); start += b.batchSize {
		if start > 0 {
			metrics.BatchWaitsTotal.Inc()
			if err := b.sleep(ctx, b.wait); err != nil {
				return nil, err
			}
		}

		end := start + b.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		log.Debug().
			Ints("competition_ids", batch).
			Int("batch_start", start).
			Int("total", len(ids)).
			Msg("Executing activity batch")

		batchResults := make([]ActivityResult, len(batch))
		batchErrs := make([]error, len(batch))

		var wg sync.WaitGroup
		for i, id := range batch {
			wg.Add(1)
			go func(i, id int) {
				defer wg.Done()
				batchResults[i], batchErrs[i] = fn(ctx, id)
			}(i, id)
		}
		wg.Wait()
		metrics.BatchesTotal.Inc()

		// The join is complete; propagate the first failure in input order.
		for i, err := range batchErrs {
			if err != nil {
				return nil, fmt.Errorf("activity for competition %d failed: %w", batch[i], err)
			}
		}

		results = append(results, batchResults...)
	}

	return results, nil
}

// sleepContext waits for d or until ctx is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
