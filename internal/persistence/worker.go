package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"TxLedger/internal/event"
	"TxLedger/internal/observability"
	"TxLedger/internal/processor"
)

// SnapshotFunc asks the processor for the current account states. The daemon
// wires this to a snapshot request over the event channel.
type SnapshotFunc func(ctx context.Context) ([]event.AccountState, error)

// StatementWorker periodically projects account statements into Postgres.
// It runs independently from the processor; a slow database delays the next
// projection but never the event loop.
type StatementWorker struct {
	writer   *LedgerWriter
	snapshot SnapshotFunc
	interval time.Duration
	metrics  *observability.Metrics
}

func NewStatementWorker(writer *LedgerWriter, snapshot SnapshotFunc, interval time.Duration, metrics *observability.Metrics) *StatementWorker {
	return &StatementWorker{
		writer:   writer,
		snapshot: snapshot,
		interval: interval,
		metrics:  metrics,
	}
}

// Run projects a statement snapshot every interval until ctx is cancelled.
func (sw *StatementWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := sw.Project(ctx); err != nil {
				log.Printf("ERROR: statement projection failed: %v", err)
			}
		}
	}
}

// Project takes one snapshot and upserts it. Called on every tick and once
// more during shutdown so the final state always lands.
func (sw *StatementWorker) Project(ctx context.Context) error {
	states, err := sw.snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if len(states) == 0 {
		return nil
	}

	start := time.Now()
	tx, err := sw.writer.DB().BeginTx(ctx, nil)
	if err != nil {
		if sw.metrics != nil {
			sw.metrics.PersistErrors.WithLabelValues("tx_begin").Inc()
		}
		return err
	}
	defer tx.Rollback()

	if err := sw.writer.UpsertStatements(ctx, tx, states); err != nil {
		if sw.metrics != nil {
			sw.metrics.PersistErrors.WithLabelValues("write_statements").Inc()
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		if sw.metrics != nil {
			sw.metrics.PersistErrors.WithLabelValues("tx_commit").Inc()
		}
		return err
	}

	if sw.metrics != nil {
		sw.metrics.PersistBatchDur.Observe(time.Since(start).Seconds())
		sw.metrics.StatementsWritten.Add(float64(len(states)))
	}
	return nil
}

// RejectionWorker drains the rejection channel and batch-writes audit rows
// to Postgres. It flushes when the batch fills or the flush timeout expires,
// and retries failed writes with exponential backoff so no rejection is lost.
type RejectionWorker struct {
	writer       *LedgerWriter
	inputChan    <-chan processor.Rejection
	batchSize    int
	flushTimeout time.Duration
	metrics      *observability.Metrics
}

func NewRejectionWorker(
	db *sql.DB,
	inputChan <-chan processor.Rejection,
	batchSize int,
	flushTimeout time.Duration,
	metrics *observability.Metrics,
) *RejectionWorker {
	return &RejectionWorker{
		writer:       NewLedgerWriter(db),
		inputChan:    inputChan,
		batchSize:    batchSize,
		flushTimeout: flushTimeout,
		metrics:      metrics,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled or the input
// channel closes; either way the remaining batch is flushed first.
func (rw *RejectionWorker) Run(ctx context.Context) error {
	batch := make([]processor.Rejection, 0, rw.batchSize)

	timer := time.NewTimer(rw.flushTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				if err := rw.flush(context.Background(), batch); err != nil {
					log.Printf("ERROR: final rejection flush failed: %v", err)
				}
			}
			return ctx.Err()

		case r, ok := <-rw.inputChan:
			if !ok {
				if len(batch) > 0 {
					if err := rw.flush(context.Background(), batch); err != nil {
						log.Printf("ERROR: final rejection flush failed: %v", err)
					}
				}
				return nil
			}

			batch = append(batch, r)
			if len(batch) >= rw.batchSize {
				if err := rw.flushWithRetry(ctx, batch); err != nil {
					log.Printf("ERROR: rejection flush failed after retries: %v", err)
				}
				batch = batch[:0]
				timer.Reset(rw.flushTimeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				if err := rw.flushWithRetry(ctx, batch); err != nil {
					log.Printf("ERROR: rejection timeout flush failed after retries: %v", err)
				}
				batch = batch[:0]
			}
			timer.Reset(rw.flushTimeout)
		}
	}
}

// flushWithRetry retries with exponential backoff until the write succeeds or
// the context is cancelled, at which point one final attempt runs with a
// background context so shutdown does not drop the batch.
func (rw *RejectionWorker) flushWithRetry(ctx context.Context, batch []processor.Rejection) error {
	backoff := 100 * time.Millisecond
	const maxBackoff = 30 * time.Second

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			log.Printf("WARN: rejection persist retry attempt %d (backoff=%v, rows=%d)",
				attempt, backoff, len(batch))
			select {
			case <-ctx.Done():
				if err := rw.flush(context.Background(), batch); err != nil {
					return fmt.Errorf("final flush on shutdown failed: %w", err)
				}
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		err := rw.flush(ctx, batch)
		if err == nil {
			if attempt > 0 {
				log.Printf("INFO: rejection flush succeeded after %d retries", attempt)
			}
			return nil
		}

		if rw.metrics != nil {
			rw.metrics.PersistRetry.Inc()
		}
	}
}

func (rw *RejectionWorker) flush(ctx context.Context, batch []processor.Rejection) error {
	start := time.Now()

	tx, err := rw.writer.DB().BeginTx(ctx, nil)
	if err != nil {
		if rw.metrics != nil {
			rw.metrics.PersistErrors.WithLabelValues("tx_begin").Inc()
		}
		return err
	}
	defer tx.Rollback()

	if err := rw.writer.WriteRejections(ctx, tx, batch); err != nil {
		if rw.metrics != nil {
			rw.metrics.PersistErrors.WithLabelValues("write_rejections").Inc()
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		if rw.metrics != nil {
			rw.metrics.PersistErrors.WithLabelValues("tx_commit").Inc()
		}
		return err
	}

	if rw.metrics != nil {
		rw.metrics.PersistBatchDur.Observe(time.Since(start).Seconds())
		rw.metrics.PersistBatchSize.Observe(float64(len(batch)))
		rw.metrics.RejectionsWritten.Add(float64(len(batch)))
	}
	return nil
}
