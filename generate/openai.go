package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"mindflow/diagram"
)

// OpenAIConfig configures the OpenAI generator. Empty fields fall back to
// the OPENAI_API_KEY, OPENAI_MODEL and OPENAI_BASE_URL environment
// variables.
type OpenAIConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// OpenAI implements Generator with the OpenAI chat completion API.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAI creates a generator. It fails with ErrAPIKeyMissing when no
// key is configured.
func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger) (*OpenAI, error) {
	if logger == nil {
		logger = slog.Default()
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		logger.Error("OpenAI API key missing")
		return nil, ErrAPIKeyMissing
	}

	model := cfg.Model
	if model == "" {
		model = os.Getenv("OPENAI_MODEL")
	}
	if model == "" {
		model = openai.GPT4o
		logger.Info("OPENAI_MODEL not set, defaulting", "model", model)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}, nil
}

// GenerateDiagram implements Generator.
func (g *OpenAI) GenerateDiagram(ctx context.Context, req Request) (*diagram.Diagram, error) {
	content, err := g.complete(ctx, diagramPrompt(req))
	if err != nil {
		return nil, err
	}
	d, err := ParseDiagram(content, req.Mode)
	if err != nil {
		g.logger.Warn("Could not parse generated diagram", "error", err, "response_length", len(content))
		return nil, err
	}
	g.logger.Info("Generated diagram", "topic", req.Topic, "nodes", len(d.Nodes), "connectors", len(d.Connectors))
	return d, nil
}

// ExpandNode implements Generator.
func (g *OpenAI) ExpandNode(ctx context.Context, req ExpandRequest) ([]Child, error) {
	content, err := g.complete(ctx, expandPrompt(req))
	if err != nil {
		return nil, err
	}
	children, err := ParseChildren(content)
	if err != nil {
		g.logger.Warn("Could not parse generated children", "error", err)
		return nil, err
	}
	if req.Count > 0 && len(children) > req.Count {
		children = children[:req.Count]
	}
	return children, nil
}

func (g *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("Sending query to OpenAI", "model", g.model, "prompt_length", len(prompt))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		g.logger.Error("OpenAI API call failed", "error", err)
		return "", classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		g.logger.Warn("OpenAI response missing choices or content")
		return "", fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	content := resp.Choices[0].Message.Content
	g.logger.Debug("Received response from OpenAI", "response_length", len(content))
	return content, nil
}

// classify wraps API errors with ErrTransient when retrying may help.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && transientStatus(apiErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && transientStatus(reqErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return fmt.Errorf("generation request failed: %w", err)
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
