package actions

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbristol/sift/internal/approval"
	"github.com/kbristol/sift/internal/classifier"
	"github.com/kbristol/sift/internal/mailbox"
)

func newTestExecutor() (*Executor, *mailbox.Memory) {
	provider := mailbox.NewMemory()
	return New(provider, slog.New(slog.NewTextHandler(io.Discard, nil))), provider
}

func draft(s string) *string { return &s }

var item = mailbox.Item{
	ItemID:  "item1",
	Sender:  "alice@example.com",
	Subject: "lunch plans",
}

func TestApplyApproveLabels(t *testing.T) {
	exec, provider := newTestExecutor()
	cls := &classifier.Classification{Category: "personal"}

	err := exec.Apply(context.Background(), item, cls, approval.Decision{Action: approval.ActionApprove})
	require.NoError(t, err)

	assert.Equal(t, []string{"personal"}, provider.Labels("item1"))
	assert.Empty(t, provider.Sent())
}

func TestApplyChangeCategoryLabelsChosen(t *testing.T) {
	exec, provider := newTestExecutor()
	cls := &classifier.Classification{Category: "personal"}
	chosen := "work"

	err := exec.Apply(context.Background(), item, cls, approval.Decision{
		Action:         approval.ActionChangeCategory,
		ChosenCategory: &chosen,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"work"}, provider.Labels("item1"))
}

func TestApplySendDraft(t *testing.T) {
	exec, provider := newTestExecutor()
	cls := &classifier.Classification{Category: "personal", DraftText: draft("Sounds good, see you there.")}

	err := exec.Apply(context.Background(), item, cls, approval.Decision{Action: approval.ActionSendDraft})
	require.NoError(t, err)

	sent := provider.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@example.com", sent[0].To)
	assert.Equal(t, "Re: lunch plans", sent[0].Subject)
	assert.Equal(t, "Sounds good, see you there.", sent[0].Body)
	assert.Equal(t, "item1", sent[0].InReplyTo)
}

func TestApplySendDraftWithoutDraft(t *testing.T) {
	exec, _ := newTestExecutor()
	cls := &classifier.Classification{Category: "personal"}

	err := exec.Apply(context.Background(), item, cls, approval.Decision{Action: approval.ActionSendDraft})
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestApplyRejectionsAreNoOps(t *testing.T) {
	exec, provider := newTestExecutor()
	cls := &classifier.Classification{Category: "personal", DraftText: draft("unused")}

	for _, action := range []approval.Action{approval.ActionReject, approval.ActionRejectDraft} {
		err := exec.Apply(context.Background(), item, cls, approval.Decision{Action: action})
		require.NoError(t, err)
	}

	assert.Empty(t, provider.Labels("item1"))
	assert.Empty(t, provider.Sent())
}
