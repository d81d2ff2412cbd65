package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"matchday/config"
	apperrors "matchday/errors"

	"go.uber.org/zap"
)

// Request/response types mirror the OpenAI-compatible schema.

type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.ProviderTimeout},
		logger:     logger,
	}
}

// Embed converts text to a vector of the configured dimensionality. Empty or
// whitespace-only input fails before any network call. Provider failures are
// terminal for the request; there is deliberately no retry loop, keeping cost
// per request predictable.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, apperrors.WrapError(apperrors.ErrValidation, "embedding input is empty")
	}

	reqBody := embeddingRequest{
		Input:      []string{trimmed},
		Model:      c.cfg.EmbeddingModel,
		Dimensions: c.cfg.EmbeddingDimensions,
	}
	bodyBytes, err := c.post(ctx, "/embeddings", reqBody, apperrors.ErrEmbedding)
	if err != nil {
		return nil, err
	}

	var er embeddingResponse
	if err := json.Unmarshal(bodyBytes, &er); err != nil {
		return nil, fmt.Errorf("%w: decode embedding response: %v", apperrors.ErrEmbedding, err)
	}
	if len(er.Data) == 0 || len(er.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: embedding response was empty", apperrors.ErrEmbedding)
	}

	vector := er.Data[0].Embedding
	if len(vector) != c.cfg.EmbeddingDimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, provider returned %d",
			apperrors.ErrEmbedding, c.cfg.EmbeddingDimensions, len(vector))
	}

	c.logger.Debug("Generated embedding",
		zap.Int("dimensions", len(vector)),
		zap.Int("tokens", er.Usage.TotalTokens))
	return vector, nil
}

// Chat performs a non-streaming chat completion call with the configured
// low temperature. No retries; upstream failure fails the request.
func (c *Client) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.cfg.ChatModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.cfg.ChatTemperature,
	}
	bodyBytes, err := c.post(ctx, "/chat/completions", reqBody, apperrors.ErrGeneration)
	if err != nil {
		return "", err
	}

	var cr chatResponse
	if err := json.Unmarshal(bodyBytes, &cr); err != nil {
		return "", fmt.Errorf("%w: decode chat response: %v", apperrors.ErrGeneration, err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: no response choices from provider", apperrors.ErrGeneration)
	}
	return cr.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, kind error) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", kind, err)
	}

	url := strings.TrimRight(c.cfg.ProviderBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", kind, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.ProviderAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kind, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", kind, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider status %s: %s", kind, resp.Status, truncateBody(bodyBytes))
	}
	return bodyBytes, nil
}

func truncateBody(body []byte) string {
	const maxLen = 512
	s := string(body)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
