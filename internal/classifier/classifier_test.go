package classifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbristol/sift/internal/assembler"
	"github.com/kbristol/sift/internal/inference"
	"github.com/kbristol/sift/internal/mailbox"
)

type stubProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubProvider) Complete(ctx context.Context, req inference.Request) (*inference.Result, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	content := ""
	if i < len(s.responses) {
		content = s.responses[i]
	}
	return &inference.Result{Content: content, Model: "stub"}, nil
}

func (s *stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0}, nil
}

func fastConfig() Config {
	return Config{BackoffBase: "1ms", MaxBackoff: "5ms"}
}

func newTestClassifier(p inference.Provider) *Classifier {
	return New(p, slog.New(slog.NewTextHandler(io.Discard, nil)), fastConfig())
}

func testItem() mailbox.Item {
	return mailbox.Item{
		ItemID:  "item1",
		OwnerID: "owner1",
		Sender:  "alice@example.com",
		Subject: "quarterly invoice",
		Body:    "Please find the invoice attached. Can you confirm receipt?",
	}
}

const validResponse = `{
	"category": "finance",
	"reasoning": "Invoice from a known correspondent.",
	"confidence": 0.92,
	"response_needed": true,
	"language": "en",
	"tone": "formal",
	"draft_text": "Received, thank you."
}`

func TestClassifyValidResponse(t *testing.T) {
	provider := &stubProvider{responses: []string{validResponse}}
	c := newTestClassifier(provider)

	cls := c.Classify(context.Background(), testItem(), &assembler.Bundle{}, 80)

	require.NotNil(t, cls)
	assert.Equal(t, "finance", cls.Category)
	assert.Equal(t, 80, cls.PriorityScore)
	assert.True(t, cls.ResponseNeeded)
	assert.False(t, cls.Fallback)
	require.NotNil(t, cls.DraftText)
	assert.Equal(t, "Received, thank you.", *cls.DraftText)
	assert.Equal(t, 1, provider.calls)
}

func TestClassifyRetriesTransientErrors(t *testing.T) {
	provider := &stubProvider{
		errs:      []error{inference.NewTransientError(errors.New("502")), inference.NewRateLimitError(errors.New("429"))},
		responses: []string{"", "", validResponse},
	}
	c := newTestClassifier(provider)

	cls := c.Classify(context.Background(), testItem(), &assembler.Bundle{}, 10)

	assert.Equal(t, 3, provider.calls)
	assert.False(t, cls.Fallback)
	assert.Equal(t, "finance", cls.Category)
}

func TestClassifyExhaustedRetriesUsesFallback(t *testing.T) {
	transient := inference.NewTransientError(errors.New("503"))
	provider := &stubProvider{errs: []error{transient, transient, transient}}
	c := newTestClassifier(provider)

	cls := c.Classify(context.Background(), testItem(), &assembler.Bundle{}, 40)

	assert.Equal(t, 3, provider.calls)
	require.NotNil(t, cls)
	assert.True(t, cls.Fallback)
	assert.Equal(t, "other", cls.Category)
	assert.Equal(t, 40, cls.PriorityScore)
	assert.NotEmpty(t, cls.Language)
	assert.NotEmpty(t, cls.Tone)
}

func TestClassifyFatalErrorSkipsRetries(t *testing.T) {
	provider := &stubProvider{errs: []error{inference.NewFatalError(errors.New("401"))}}
	c := newTestClassifier(provider)

	cls := c.Classify(context.Background(), testItem(), &assembler.Bundle{}, 0)

	assert.Equal(t, 1, provider.calls)
	assert.True(t, cls.Fallback)
}

func TestClassifyInvalidOutputUsesFallback(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "I think this is a work email."},
		{"unknown category", `{"category":"spam","reasoning":"r","confidence":0.5,"language":"en","tone":"neutral"}`},
		{"reasoning too long", `{"category":"work","reasoning":"` + strings.Repeat("x", 301) + `","confidence":0.5,"language":"en","tone":"neutral"}`},
		{"confidence out of range", `{"category":"work","reasoning":"r","confidence":1.5,"language":"en","tone":"neutral"}`},
		{"missing language", `{"category":"work","reasoning":"r","confidence":0.5,"tone":"neutral"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(&stubProvider{responses: []string{tt.response}})

			cls := c.Classify(context.Background(), testItem(), &assembler.Bundle{}, 0)

			require.NotNil(t, cls)
			assert.True(t, cls.Fallback, "invalid output must fall back")
			assert.Equal(t, "other", cls.Category)
		})
	}
}

func TestClassifyRecoversFencedOutput(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	c := newTestClassifier(&stubProvider{responses: []string{fenced}})

	cls := c.Classify(context.Background(), testItem(), &assembler.Bundle{}, 0)

	assert.False(t, cls.Fallback)
	assert.Equal(t, "finance", cls.Category)
}
