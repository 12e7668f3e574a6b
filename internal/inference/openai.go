package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI implements Provider using the OpenAI-compatible completions and
// embeddings APIs. Any endpoint speaking the same wire protocol works
// through the base_url setting.
type OpenAI struct {
	client openai.Client
	cfg    Config
}

// NewOpenAI creates a provider from the given configuration.
func NewOpenAI(cfg Config) *OpenAI {
	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

func (p *OpenAI) Complete(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.TimeoutDuration())
	defer cancel()

	temperature := p.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	maxTokens := p.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Model:               p.cfg.Model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}

	if req.JSONOutput {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyError(err)
	}

	if len(completion.Choices) == 0 {
		return nil, NewTransientError(fmt.Errorf("completion returned no choices"))
	}

	return &Result{
		Content:    completion.Choices[0].Message.Content,
		Model:      completion.Model,
		TokensUsed: int(completion.Usage.TotalTokens),
	}, nil
}

func (p *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.TimeoutDuration())
	defer cancel()

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.cfg.EmbeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Dimensions: openai.Int(int64(p.cfg.EmbeddingDimensions)),
	})
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Data) == 0 {
		return nil, NewTransientError(fmt.Errorf("embedding returned no data"))
	}

	embedding := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

// classifyError maps SDK and transport errors onto the package taxonomy.
// Rate limits and server-side failures are retryable; everything else is not.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTransientError(err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return NewRateLimitError(err)
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return NewTransientError(err)
		default:
			return NewFatalError(err)
		}
	}

	// Transport-level failures without a status code are worth retrying.
	return NewTransientError(err)
}
