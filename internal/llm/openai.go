package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultModel           = "gpt-4o-mini"
	defaultAzureAPIVersion = "2024-10-21"
)

// OpenAIConfig configures the chat completion client. When AzureEndpoint is
// set the client talks to Azure OpenAI and Model names the deployment.
type OpenAIConfig struct {
	APIKey          string
	Model           string
	BaseURL         string // optional (tests, proxies)
	AzureEndpoint   string
	AzureAPIVersion string
	Temperature     float64
	MaxRetries      int
	Timeout         time.Duration
	HTTPClient      *http.Client // optional (tests)
}

// OpenAIClient implements Completer with the official OpenAI SDK.
type OpenAIClient struct {
	client      openai.Client
	model       string
	temperature float64
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.AzureEndpoint != "" {
		version := cfg.AzureAPIVersion
		if version == "" {
			version = defaultAzureAPIVersion
		}
		opts = append(opts,
			azure.WithEndpoint(cfg.AzureEndpoint, version),
			azure.WithAPIKey(cfg.APIKey),
		)
	} else {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
	}

	return &OpenAIClient{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Complete sends prompt as a single user message.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model %s", c.model)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Model returns the configured model or deployment name.
func (c *OpenAIClient) Model() string {
	return c.model
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}
	return fmt.Errorf("chat completion: %w", err)
}
