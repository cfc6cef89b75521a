package openaiembed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"earmark/internal/config"
	"earmark/internal/embedding"
	"earmark/internal/services"
)

const (
	defaultModel     = "text-embedding-3-small"
	defaultBatchSize = 100
	defaultTimeout   = 30 * time.Second
)

// embeddingAPI is the slice of the OpenAI client this package uses.
// Narrowed to an interface so tests can substitute a fake.
type embeddingAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Client embeds chunk texts through the OpenAI embeddings endpoint. Inputs
// are sent in sub-batches; a failed sub-batch marks only its own items so
// one bad request does not void the whole corpus. Returned vectors are
// unit-normalized.
type Client struct {
	api       embeddingAPI
	model     string
	batchSize int
	timeout   time.Duration
	retry     services.RetryPolicy
	logger    *slog.Logger
}

// Option customizes the embedding client.
type Option func(*Client)

// WithAPI overrides the underlying OpenAI client (useful for tests).
func WithAPI(api embeddingAPI) Option {
	return func(c *Client) {
		if api != nil {
			c.api = api
		}
	}
}

// WithRetryPolicy overrides the per-batch retry policy.
func WithRetryPolicy(policy services.RetryPolicy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// New constructs an embedding client from the OpenAI section of the
// configuration. The API key is required here rather than at config
// validation so read-only commands work without one.
func New(cfg config.OpenAI, logger *slog.Logger, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "openaiembed", "new", "api key required (set openai.api_key or OPENAI_API_KEY)", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientConfig.BaseURL = strings.TrimRight(base, "/")
	}

	client := &Client{
		api:       openai.NewClientWithConfig(clientConfig),
		model:     strings.TrimSpace(cfg.Model),
		batchSize: cfg.BatchSize,
		timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		retry:     services.RetryPolicy{MaxAttempts: cfg.RetryMaxAttempts},
		logger:    logger.With("component", "openaiembed"),
	}
	if client.model == "" {
		client.model = defaultModel
	}
	if client.batchSize <= 0 {
		client.batchSize = defaultBatchSize
	}
	if client.timeout <= 0 {
		client.timeout = defaultTimeout
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// EmbedBatch embeds texts in input order. Items in a sub-batch that fails
// all retries carry a per-item error; the returned error is reserved for
// total failure, when no item produced a vector.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([]embedding.Result, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([]embedding.Result, len(texts))
	var (
		succeeded int
		lastErr   error
	)
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		vectors, err := c.embedOnce(ctx, batch)
		if err != nil {
			lastErr = err
			c.logger.Warn("embedding sub-batch failed",
				"offset", start,
				"size", len(batch),
				"error", err)
			for i := range batch {
				results[start+i] = embedding.Result{Err: err}
			}
			continue
		}
		for i, vec := range vectors {
			results[start+i] = embedding.Result{Vector: embedding.Normalize(vec)}
			succeeded++
		}
	}

	if succeeded == 0 {
		return nil, services.Wrap(services.ErrEmbedding, "openaiembed", "embed batch",
			fmt.Sprintf("all %d texts failed", len(texts)), lastErr)
	}
	return results, nil
}

// embedOnce sends one sub-batch with retries and a bounded timeout.
func (c *Client) embedOnce(ctx context.Context, batch []string) ([][]float32, error) {
	var vectors [][]float32
	err := services.Retry(ctx, c.retry, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.api.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(c.model),
		})
		if err != nil {
			// A per-call timeout is retryable; only the caller's own
			// cancellation must abort the retry loop.
			if callCtx.Err() != nil && ctx.Err() == nil {
				return services.Wrap(services.ErrTimeout, "openaiembed", "create embeddings",
					fmt.Sprintf("timed out after %s", c.timeout), nil)
			}
			return fmt.Errorf("create embeddings: %w", err)
		}
		if len(resp.Data) != len(batch) {
			return fmt.Errorf("create embeddings: got %d vectors for %d inputs", len(resp.Data), len(batch))
		}

		vectors = make([][]float32, len(batch))
		for _, item := range resp.Data {
			if item.Index < 0 || item.Index >= len(batch) {
				return fmt.Errorf("create embeddings: vector index %d out of range", item.Index)
			}
			vectors[item.Index] = item.Embedding
		}
		for i, vec := range vectors {
			if len(vec) == 0 {
				return fmt.Errorf("create embeddings: empty vector at index %d", i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}
