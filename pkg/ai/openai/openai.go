package openai

import (
	"sync"

	"github.com/mkm-lab/analysis-engine/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// Client wraps an OpenAI-compatible embedding endpoint. A semaphore
// bounds concurrent requests so batch ingestion cannot flood the
// upstream service.
//
// A Client should be created using NewClient.
type Client struct {
	embeddingModel string
	dimensions     int
	timeoutMin     int

	embeddingLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	EmbeddingClient *openai.Client
}

// NewClientParams defines the configuration parameters for creating a
// new Client.
//
// EmbeddingModel specifies the model used for embeddings.
// BaseURL and APIKey configure the API endpoint; BaseURL may be empty
// for the default OpenAI endpoint.
// Dimensions is the expected vector length; responses are truncated or
// zero-padded to match.
type NewClientParams struct {
	EmbeddingModel string
	BaseURL        string
	APIKey         string

	Dimensions            int
	MaxConcurrentRequests int
	TimeoutMinutes        int
}

// NewClient creates and returns a new Client configured with the
// provided parameters.
//
// Example:
//
//	client := openai.NewClient(openai.NewClientParams{
//		EmbeddingModel: "text-embedding-3-small",
//		APIKey:         os.Getenv("OPENAI_API_KEY"),
//		Dimensions:     384,
//	})
func NewClient(params NewClientParams) *Client {
	dim := params.Dimensions
	if dim <= 0 {
		dim = defaultDimensions
	}
	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	timeoutMin := params.TimeoutMinutes
	if timeoutMin <= 0 {
		timeoutMin = 2
	}

	return &Client{
		embeddingModel: params.EmbeddingModel,
		dimensions:     dim,
		timeoutMin:     timeoutMin,

		embeddingLock: semaphore.NewWeighted(int64(maxConcurrent)),

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		EmbeddingClient: newOpenaiClient(params.BaseURL, params.APIKey),
	}
}

func newOpenaiClient(baseURL string, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

// Metrics returns a copy of the accumulated embedding metrics.
func (c *Client) Metrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *Client) modifyMetrics(delta ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics.InputTokens += delta.InputTokens
	c.metrics.TotalTokens += delta.TotalTokens
	c.metrics.DurationMs += delta.DurationMs
}
