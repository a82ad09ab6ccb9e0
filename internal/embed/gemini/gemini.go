// Package gemini implements the embedding oracle on the Gemini API.
package gemini

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Vievek/zero-hunger-sub000/internal/logger"
	"github.com/Vievek/zero-hunger-sub000/internal/utils"
)

const defaultModel = "gemini-embedding-001"

// Client wraps the Google GenAI client for text embeddings. Vectors are
// memoized by content hash so repeated profile texts cost one API call.
type Client struct {
	client    *genai.Client
	modelName string
	logger    *zap.Logger

	cacheMu sync.RWMutex
	vectors map[[32]byte][]float64
}

// NewClient creates an embedding client for the Gemini API backend.
func NewClient(ctx context.Context, apiKey, model string, log *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Client{
		client:    client,
		modelName: model,
		logger:    logger.WithCommonFields(log, "gemini", model),
		vectors:   make(map[[32]byte][]float64),
	}, nil
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	key := sha256.Sum256([]byte(text))

	c.cacheMu.RLock()
	cached, ok := c.vectors[key]
	c.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	c.logger.Debug("requesting embedding",
		zap.Int("text_len", len(text)),
		zap.String("text", utils.TruncateForLog(text, 80)),
	)

	resp, err := c.client.Models.EmbedContent(ctx, c.modelName, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned empty embedding")
	}

	values := resp.Embeddings[0].Values
	vector := make([]float64, len(values))
	for i, v := range values {
		vector[i] = float64(v)
	}

	c.cacheMu.Lock()
	c.vectors[key] = vector
	c.cacheMu.Unlock()

	return vector, nil
}

// Model returns the configured embedding model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}
