package triage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbristol/sift/internal/actions"
	"github.com/kbristol/sift/internal/approval"
	"github.com/kbristol/sift/internal/assembler"
	"github.com/kbristol/sift/internal/classifier"
	"github.com/kbristol/sift/internal/engine"
	"github.com/kbristol/sift/internal/inference"
	"github.com/kbristol/sift/internal/mailbox"
	"github.com/kbristol/sift/internal/messages"
	"github.com/kbristol/sift/internal/priority"
	"github.com/kbristol/sift/internal/vector"
	"github.com/kbristol/sift/pkg/pagination"
)

// downProvider simulates an unreachable inference endpoint, forcing the
// rule-based classification path.
type downProvider struct{}

func (downProvider) Complete(ctx context.Context, req inference.Request) (*inference.Result, error) {
	return nil, inference.NewTransientError(errors.New("connection refused"))
}

func (downProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, inference.NewTransientError(errors.New("connection refused"))
}

type testStack struct {
	system   System
	store    *engine.MemoryCheckpointStore
	provider *mailbox.Memory
	approval *approval.Recorder
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var cfg Config
	require.NoError(t, cfg.Finalize())
	cfg.Classifier.BackoffBase = "1ms"
	cfg.Classifier.MaxBackoff = "5ms"

	msgStore := messages.NewMemory()
	vecStore := vector.NewMemory()
	mailboxProvider := mailbox.NewMemory()
	approvalChannel := approval.NewRecorder()
	store := engine.NewMemoryCheckpointStore()
	provider := downProvider{}

	eng := engine.New(engine.Dependencies{
		Checkpoints: store,
		Messages:    msgStore,
		Vectors:     vecStore,
		Embedder:    provider,
		Assembler:   assembler.New(msgStore, vecStore, provider, logger, cfg.Assembler),
		Priority:    priority.NewScorer(cfg.Priority),
		Classifier:  classifier.New(provider, logger, cfg.Classifier),
		Approval:    approvalChannel,
		Actions:     actions.New(mailboxProvider, logger),
		Logger:      logger,
	})

	return &testStack{
		system:   New(eng, store, mailboxProvider, logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}, cfg.Workers),
		store:    store,
		provider: mailboxProvider,
		approval: approvalChannel,
	}
}

func unreadItem(id string) mailbox.Item {
	return mailbox.Item{
		ItemID:   id,
		OwnerID:  "owner1",
		ThreadID: "thread-" + id,
		Sender:   "alice@example.com",
		Subject:  "subject " + id,
		Body:     "Could you take a look?",
		SentAt:   time.Now().Add(-time.Hour),
	}
}

func TestProcessUnreadSuspendsEveryItem(t *testing.T) {
	stack := newTestStack(t)
	stack.provider.Enqueue(unreadItem("a"), unreadItem("b"), unreadItem("c"))

	result, err := stack.system.ProcessUnread(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 3, result.Started)
	assert.Equal(t, 3, result.Suspended)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Failed)

	// With inference down every instance carries a rule-based result and
	// still reaches the suspend point.
	page, err := stack.system.List(context.Background(), pagination.PageRequest{}, "awaiting_decision")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	for _, inst := range page.Data {
		require.NotNil(t, inst.Classification)
		assert.True(t, inst.Classification.Fallback)
		assert.NotEmpty(t, inst.Classification.Language)
		assert.NotEmpty(t, inst.Classification.Tone)
	}

	assert.Equal(t, 3, stack.approval.NotifyCount())
}

func TestProcessUnreadSkipsDuplicates(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	stack.provider.Enqueue(unreadItem("a"))
	_, err := stack.system.ProcessUnread(ctx)
	require.NoError(t, err)

	// Same item delivered again, plus one new item.
	stack.provider.Enqueue(unreadItem("a"), unreadItem("b"))
	result, err := stack.system.ProcessUnread(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Started)
}

func TestResumeThroughSystem(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	stack.provider.Enqueue(unreadItem("a"))
	_, err := stack.system.ProcessUnread(ctx)
	require.NoError(t, err)

	page, err := stack.system.List(ctx, pagination.PageRequest{}, "awaiting_decision")
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	inst, err := stack.system.Resume(ctx, page.Data[0].ID, approval.Decision{Action: approval.ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, engine.StageDone, inst.Stage)

	// The approved category landed on the mailbox item as a label.
	labels := stack.provider.Labels("a")
	require.Len(t, labels, 1)
	assert.Equal(t, "other", labels[0])
}

func TestListRejectsUnknownStage(t *testing.T) {
	stack := newTestStack(t)

	_, err := stack.system.List(context.Background(), pagination.PageRequest{}, "archived")
	assert.ErrorIs(t, err, engine.ErrUnknownStage)
}

func TestFindReturnsNotFound(t *testing.T) {
	stack := newTestStack(t)

	_, err := stack.system.Find(context.Background(), "missing")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}
