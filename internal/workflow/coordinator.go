// Package workflow owns the priority queue of pending items and drives each
// one through classification, knowledge retrieval, and response synthesis,
// persisting the outcome through a transactional store handle.
//
// Concurrency contract: Enqueue may be called from any number of goroutines;
// DequeueAndProcess is serialized so the pop-classify-synthesize-persist
// sequence is atomic with respect to other consumers of the same queue. An
// item, once popped, runs to completion (success or recorded failure);
// cancellation applies at batch granularity only.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mailflow/internal/classify"
	"mailflow/internal/config"
	"mailflow/internal/respond"
	"mailflow/internal/store"
	"mailflow/internal/types"
)

// ErrNotPending is returned by Enqueue when the item is not in pending
// status. The violation is a caller error; no mutation is performed.
var ErrNotPending = errors.New("item is not pending")

// Summary is the read-only breakdown of queued work.
type Summary struct {
	Total  int `json:"total"`
	Urgent int `json:"urgent"`
	Normal int `json:"normal"`
}

// Coordinator schedules and processes pending items.
type Coordinator struct {
	qmu  sync.Mutex // guards entries and seq
	pmu  sync.Mutex // serializes dequeue-and-process
	heap entryHeap
	seq  uint64

	engine *classify.Engine
	synth  *respond.Synthesizer
	cfg    config.QueueConfig
	logger *zap.Logger
}

// NewCoordinator wires a coordinator over the given classifier and
// synthesizer. A nil logger is replaced with a no-op logger.
func NewCoordinator(engine *classify.Engine, synth *respond.Synthesizer, cfg config.QueueConfig, logger *zap.Logger) *Coordinator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		engine: engine,
		synth:  synth,
		cfg:    cfg,
		logger: logger,
	}
}

// Enqueue inserts a pending item into the priority queue. The priority rank
// comes from the item's current urgency; the sequence number preserves FIFO
// order within a rank. O(log n).
func (c *Coordinator) Enqueue(item *types.Item) error {
	if item.Status != types.ItemStatusPending {
		return fmt.Errorf("%w: item %s is %s", ErrNotPending, item.ID, item.Status)
	}

	c.qmu.Lock()
	c.seq++
	entry := &queueEntry{rank: item.Urgency.Rank(), seq: c.seq, item: item}
	c.heap.push(entry)
	depth := c.heap.Len()
	c.qmu.Unlock()

	c.logger.Debug("Enqueued item",
		zap.String("id", item.ID),
		zap.Int("rank", entry.rank),
		zap.Uint64("seq", entry.seq),
		zap.Int("depth", depth))
	return nil
}

// DequeueAndProcess pops the highest-priority item and runs it through the
// pipeline, persisting the item and its draft response as one unit. An
// empty queue is a no-op, not an error: the first return reports whether an
// item was consumed at all (a recorded failure still counts). The returned
// error is non-nil only for fatal conditions: context cancellation before
// the pop, or a failure to commit the failed status itself.
func (c *Coordinator) DequeueAndProcess(ctx context.Context, st store.Store) (bool, error) {
	c.pmu.Lock()
	defer c.pmu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.qmu.Lock()
	entry := c.heap.pop()
	c.qmu.Unlock()
	if entry == nil {
		return false, nil
	}

	item := entry.item
	c.logger.Info("Processing item",
		zap.String("id", item.ID),
		zap.Int("rank", entry.rank))

	if err := c.process(item, st); err != nil {
		if rbErr := st.Rollback(); rbErr != nil {
			c.logger.Warn("Rollback failed", zap.String("id", item.ID), zap.Error(rbErr))
		}
		item.Status = types.ItemStatusFailed

		// The failure must be recorded, not silently dropped. If even
		// this commit fails there is nowhere left to record the
		// outcome, so it propagates.
		if recErr := c.commitStatus(item, st); recErr != nil {
			return true, fmt.Errorf("recording failed status for item %s: %w", item.ID, recErr)
		}
		c.logger.Warn("Item processing failed",
			zap.String("id", item.ID),
			zap.Error(err))
		return true, nil
	}

	c.logger.Info("Processed item",
		zap.String("id", item.ID),
		zap.String("sentiment", string(item.Sentiment)),
		zap.String("urgency", string(item.Urgency)))
	return true, nil
}

// process runs classification and synthesis for one item and stages both
// records for a single commit.
func (c *Coordinator) process(item *types.Item, st store.Store) error {
	result := c.engine.Classify(item.Subject, item.Body)

	item.Sentiment = result.Sentiment
	item.Urgency = result.Urgency
	item.Extracted = item.Extracted.Merge(result.Extracted)
	item.Status = types.ItemStatusProcessed

	// The variant is chosen by the freshly computed sentiment, never the
	// value the item carried at enqueue time.
	var content string
	if item.Sentiment == types.SentimentNegative {
		content = c.synth.SynthesizeEmpathetic(item.Subject, item.Body, item.Sentiment, item.Extracted)
	} else {
		content = c.synth.Synthesize(item.Subject, item.Body, item.Sentiment, item.Extracted)
	}

	resp := &types.Response{
		ID:               uuid.NewString(),
		ItemID:           item.ID,
		GeneratedContent: content,
		Status:           types.ResponseStatusDraft,
	}

	if err := st.Add(item); err != nil {
		return fmt.Errorf("staging item: %w", err)
	}
	if err := st.Add(resp); err != nil {
		return fmt.Errorf("staging response: %w", err)
	}
	if err := st.Commit(); err != nil {
		return fmt.Errorf("committing item %s: %w", item.ID, err)
	}
	return nil
}

// commitStatus commits just the item's current status as its own
// transaction.
func (c *Coordinator) commitStatus(item *types.Item, st store.Store) error {
	if err := st.Add(item); err != nil {
		return err
	}
	return st.Commit()
}

// ProcessBatch calls DequeueAndProcess up to max times or until the queue is
// empty, returning the count actually consumed. It never blocks waiting for
// new work. max <= 0 selects the configured batch size.
func (c *Coordinator) ProcessBatch(ctx context.Context, st store.Store, max int) (int, error) {
	if max <= 0 {
		max = c.cfg.BatchSize
	}

	processed := 0
	for i := 0; i < max; i++ {
		ok, err := c.DequeueAndProcess(ctx, st)
		if err != nil {
			if ok {
				processed++
			}
			return processed, err
		}
		if !ok {
			break
		}
		processed++
	}

	c.logger.Info("Batch complete", zap.Int("processed", processed))
	return processed, nil
}

// QueueDepth returns the number of queued items.
func (c *Coordinator) QueueDepth() int {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	return c.heap.Len()
}

// QueueSummary returns the urgent/normal breakdown of queued items without
// mutating queue order.
func (c *Coordinator) QueueSummary() Summary {
	c.qmu.Lock()
	defer c.qmu.Unlock()

	summary := Summary{Total: c.heap.Len()}
	for _, entry := range c.heap {
		if entry.rank == 0 {
			summary.Urgent++
		} else {
			summary.Normal++
		}
	}
	return summary
}
