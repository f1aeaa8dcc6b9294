package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to the OpenAI (or Azure OpenAI) chat completion API.
type OpenAIClient struct {
	client *openai.Client
	name   string
}

// NewOpenAIClient creates a client against the public OpenAI API.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		name:   "openai",
	}, nil
}

// NewAzureOpenAIClient creates a client against an Azure OpenAI deployment.
func NewAzureOpenAIClient(apiKey, endpoint string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("Azure OpenAI API key is required")
	}
	if endpoint == "" {
		return nil, errors.New("Azure OpenAI endpoint is required")
	}
	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		name:   "azure",
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return c.name
}

// Complete sends a completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = "gpt-4o"
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 800
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, err
	}

	var content string
	var stopReason string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		stopReason = string(resp.Choices[0].FinishReason)
	}

	return &CompletionResponse{
		Content:    content,
		Model:      resp.Model,
		TokensIn:   resp.Usage.PromptTokens,
		TokensOut:  resp.Usage.CompletionTokens,
		StopReason: stopReason,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

var _ Client = (*OpenAIClient)(nil)
