package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/pkg/config"
)

const serviceName = "github-models"

// Client is a minimal OpenAI-compatible chat completions client used for
// schema-constrained extraction
type Client struct {
	token       string
	baseURL     string
	model       string
	temperature float64
	client      *http.Client
	logger      *zap.Logger
}

// NewClient creates a client for one model. An empty model uses the
// configured default.
func NewClient(cfg config.LLMConfig, model string, logger *zap.Logger) *Client {
	if model == "" {
		model = cfg.DefaultModel
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		token:       cfg.Token,
		baseURL:     strings.TrimRight(cfg.Endpoint, "/"),
		model:       model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Model returns the model name sent with every request
func (c *Client) Model() string {
	return c.model
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateStructured sends a system and user prompt constrained by a strict
// JSON schema and returns the raw assistant content
func (c *Client) GenerateStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]any) (string, error) {
	reqBody := ChatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.temperature,
		ResponseFormat: responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaFormat{
				Name:   schemaName,
				Strict: true,
				Schema: schema,
			},
		},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.ErrInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", apperrors.ErrInternal(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.ErrDependencyTransient(serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		statusErr := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if c.logger != nil {
			c.logger.Warn("⚠️ Model endpoint returned error",
				zap.String("model", c.model),
				zap.Int("status", resp.StatusCode),
			)
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", apperrors.ErrDependencyTransient(serviceName, statusErr)
		}
		return "", apperrors.ErrDependencyTerminal(serviceName, statusErr)
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", apperrors.ErrInvalidModelOutput(fmt.Errorf("decode completion: %w", err))
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", apperrors.ErrInvalidModelOutput(fmt.Errorf("no content in response from %s", serviceName))
	}
	return cr.Choices[0].Message.Content, nil
}
