package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"pgregory.net/rapid"

	"mailflow/internal/classify"
	"mailflow/internal/config"
	"mailflow/internal/knowledge"
	"mailflow/internal/respond"
	"mailflow/internal/store"
	"mailflow/internal/types"
)

func newTestCoordinator() *Coordinator {
	cfg := config.Default()
	ix := knowledge.NewMemoryIndex(nil)
	knowledge.SeedDefaults(ix)
	engine := classify.NewEngine(cfg.Vocabulary)
	synth := respond.NewSynthesizer(ix, cfg.Vocabulary, cfg.Templates, nil)
	return NewCoordinator(engine, synth, cfg.Queue, nil)
}

func pendingItem(id string, urgency types.Urgency) *types.Item {
	return &types.Item{
		ID:         id,
		Sender:     "user@example.com",
		Subject:    "Subscription question",
		Body:       "Please tell me about my subscription.",
		ReceivedAt: time.Now(),
		Urgency:    urgency,
		Status:     types.ItemStatusPending,
	}
}

// recordingStore wraps a MemoryStore and notes the order in which items are
// staged, which is the order the coordinator processed them in.
type recordingStore struct {
	*store.MemoryStore
	mu    sync.Mutex
	order []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: store.NewMemoryStore()}
}

func (r *recordingStore) Add(entity interface{}) error {
	if item, ok := entity.(*types.Item); ok {
		r.mu.Lock()
		r.order = append(r.order, item.ID)
		r.mu.Unlock()
	}
	return r.MemoryStore.Add(entity)
}

func TestEnqueueRejectsNonPending(t *testing.T) {
	coord := newTestCoordinator()

	item := pendingItem("a", types.UrgencyNotUrgent)
	item.Status = types.ItemStatusProcessed

	err := coord.Enqueue(item)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Equal(t, 0, coord.QueueDepth())
}

func TestDequeueOrdering(t *testing.T) {
	coord := newTestCoordinator()
	st := newRecordingStore()

	require.NoError(t, coord.Enqueue(pendingItem("n1", types.UrgencyNotUrgent)))
	require.NoError(t, coord.Enqueue(pendingItem("u1", types.UrgencyUrgent)))
	require.NoError(t, coord.Enqueue(pendingItem("n2", types.UrgencyNotUrgent)))
	require.NoError(t, coord.Enqueue(pendingItem("u2", types.UrgencyUrgent)))

	processed, err := coord.ProcessBatch(context.Background(), st, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, processed)

	// Urgent items drain first; within a rank, enqueue order holds.
	assert.Equal(t, []string{"u1", "u2", "n1", "n2"}, st.order)
}

func TestDequeueOrderingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		coord := newTestCoordinator()
		st := newRecordingStore()

		urgentFlags := rapid.SliceOfN(rapid.Bool(), 0, 20).Draw(t, "urgent")

		var wantUrgent, wantNormal []string
		for i, urgent := range urgentFlags {
			id := fmt.Sprintf("item-%d", i)
			urgency := types.UrgencyNotUrgent
			if urgent {
				urgency = types.UrgencyUrgent
				wantUrgent = append(wantUrgent, id)
			} else {
				wantNormal = append(wantNormal, id)
			}
			if err := coord.Enqueue(pendingItem(id, urgency)); err != nil {
				t.Fatalf("enqueue: %v", err)
			}
		}

		processed, err := coord.ProcessBatch(context.Background(), st, len(urgentFlags))
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		if processed != len(urgentFlags) {
			t.Fatalf("processed %d of %d", processed, len(urgentFlags))
		}

		want := append(append([]string{}, wantUrgent...), wantNormal...)
		if len(st.order) != len(want) {
			t.Fatalf("order length %d, want %d", len(st.order), len(want))
		}
		for i := range want {
			if st.order[i] != want[i] {
				t.Fatalf("position %d: got %s, want %s", i, st.order[i], want[i])
			}
		}
	})
}

func TestDequeueEmptyQueue(t *testing.T) {
	coord := newTestCoordinator()
	st := store.NewMemoryStore()

	ok, err := coord.DequeueAndProcess(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, ok)

	processed, err := coord.ProcessBatch(context.Background(), st, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestProcessSuccess(t *testing.T) {
	coord := newTestCoordinator()
	st := store.NewMemoryStore()

	item := pendingItem("ok", types.UrgencyNotUrgent)
	item.Subject = "Thanks"
	item.Body = "Thank you, the password reset worked great."
	require.NoError(t, coord.Enqueue(item))

	ok, err := coord.DequeueAndProcess(context.Background(), st)
	require.NoError(t, err)
	require.True(t, ok)

	stored, found := st.Item("ok")
	require.True(t, found)
	assert.Equal(t, types.ItemStatusProcessed, stored.Status)
	assert.Equal(t, types.SentimentPositive, stored.Sentiment)

	resp, found := st.ResponseForItem("ok")
	require.True(t, found)
	assert.Equal(t, types.ResponseStatusDraft, resp.Status)
	assert.NotEmpty(t, resp.GeneratedContent)

	// Item and response land in one commit.
	assert.Equal(t, 1, st.Commits())
}

func TestProcessNegativeSelectsEmpatheticVariant(t *testing.T) {
	coord := newTestCoordinator()
	st := store.NewMemoryStore()

	item := pendingItem("neg", types.UrgencyNotUrgent)
	item.Subject = "Login broken"
	item.Body = "I cannot log in. I am very frustrated and angry."
	require.NoError(t, coord.Enqueue(item))

	ok, err := coord.DequeueAndProcess(context.Background(), st)
	require.NoError(t, err)
	require.True(t, ok)

	resp, found := st.ResponseForItem("neg")
	require.True(t, found)
	assert.Contains(t, resp.GeneratedContent, "I'm truly sorry to hear about the difficulties")
}

func TestProcessMergePreservesUnrelatedKeys(t *testing.T) {
	coord := newTestCoordinator()
	st := store.NewMemoryStore()

	item := pendingItem("merge", types.UrgencyNotUrgent)
	item.Extracted = types.ExtractedInfo{"source": "import"}
	require.NoError(t, coord.Enqueue(item))

	ok, err := coord.DequeueAndProcess(context.Background(), st)
	require.NoError(t, err)
	require.True(t, ok)

	stored, found := st.Item("merge")
	require.True(t, found)
	assert.Equal(t, "import", stored.Extracted["source"])
	assert.Contains(t, stored.Extracted, "phones")
}

func TestProcessFailureRecordsFailedStatus(t *testing.T) {
	coord := newTestCoordinator()
	st := store.NewMemoryStore()
	st.CommitErrOnce = errors.New("disk full")

	require.NoError(t, coord.Enqueue(pendingItem("boom", types.UrgencyUrgent)))

	// A recorded failure still counts as a consumed item.
	ok, err := coord.DequeueAndProcess(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, found := st.Item("boom")
	require.True(t, found)
	assert.Equal(t, types.ItemStatusFailed, stored.Status)

	_, found = st.ResponseForItem("boom")
	assert.False(t, found)
}

func TestProcessFailureRecordingFailureIsFatal(t *testing.T) {
	coord := newTestCoordinator()
	st := store.NewMemoryStore()
	st.CommitErr = errors.New("store unavailable")

	require.NoError(t, coord.Enqueue(pendingItem("fatal", types.UrgencyNotUrgent)))
	require.NoError(t, coord.Enqueue(pendingItem("next", types.UrgencyNotUrgent)))

	ok, err := coord.DequeueAndProcess(context.Background(), st)
	assert.True(t, ok)
	assert.Error(t, err)

	// The batch stops at the fatal error but reports the consumed item.
	processed, err := coord.ProcessBatch(context.Background(), st, 5)
	assert.Error(t, err)
	assert.Equal(t, 1, processed)
}

func TestProcessBatchRespectsMax(t *testing.T) {
	coord := newTestCoordinator()
	st := store.NewMemoryStore()

	for i := 0; i < 5; i++ {
		require.NoError(t, coord.Enqueue(pendingItem(fmt.Sprintf("i%d", i), types.UrgencyNotUrgent)))
	}

	processed, err := coord.ProcessBatch(context.Background(), st, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, processed)
	assert.Equal(t, 2, coord.QueueDepth())
}

func TestProcessBatchCancelledContext(t *testing.T) {
	coord := newTestCoordinator()
	st := store.NewMemoryStore()

	require.NoError(t, coord.Enqueue(pendingItem("stay", types.UrgencyNotUrgent)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processed, err := coord.ProcessBatch(ctx, st, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, processed)
	// The queued item was never popped.
	assert.Equal(t, 1, coord.QueueDepth())
}

func TestQueueSummary(t *testing.T) {
	coord := newTestCoordinator()

	require.NoError(t, coord.Enqueue(pendingItem("u1", types.UrgencyUrgent)))
	require.NoError(t, coord.Enqueue(pendingItem("u2", types.UrgencyUrgent)))
	require.NoError(t, coord.Enqueue(pendingItem("n1", types.UrgencyNotUrgent)))
	require.NoError(t, coord.Enqueue(pendingItem("n2", types.UrgencyNotUrgent)))
	require.NoError(t, coord.Enqueue(pendingItem("n3", types.UrgencyNotUrgent)))

	want := Summary{Total: 5, Urgent: 2, Normal: 3}
	assert.Equal(t, want, coord.QueueSummary())
	// Inspection does not consume or reorder anything.
	assert.Equal(t, want, coord.QueueSummary())
	assert.Equal(t, 5, coord.QueueDepth())
}

func TestConcurrentEnqueue(t *testing.T) {
	coord := newTestCoordinator()
	st := newRecordingStore()

	const n = 64
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return coord.Enqueue(pendingItem(fmt.Sprintf("c%d", i), types.UrgencyNotUrgent))
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, n, coord.QueueDepth())

	processed, err := coord.ProcessBatch(context.Background(), st, n)
	require.NoError(t, err)
	assert.Equal(t, n, processed)
	assert.Equal(t, 0, coord.QueueDepth())
}
