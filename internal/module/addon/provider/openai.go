package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker/v2"
	"github.com/wishloop/server/internal/shared/config"
	"go.uber.org/zap"
)

// chatMessage is one message in an OpenAI-compatible chat request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// OpenAIClient streams chat completions from an OpenAI-compatible API.
// A circuit breaker trips after repeated upstream failures so a dead
// provider fails fast instead of tying up request handlers.
type OpenAIClient struct {
	cfg     *config.AIConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	logger  *zap.Logger
}

// NewOpenAIClient creates a streaming client for the configured provider.
func NewOpenAIClient(cfg *config.AIConfig, logger *zap.Logger) *OpenAIClient {
	settings := gobreaker.Settings{
		Name:    "ai-provider",
		Timeout: cfg.CircuitTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &OpenAIClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		logger:  logger,
	}
}

// Generate opens a streaming completion and relays content deltas on
// the returned channel. The channel is closed at stream end; a final
// chunk carries the error when the stream dies early.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (<-chan Chunk, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Stream: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return nil, fmt.Errorf("upstream returned %d: %s", resp.StatusCode, payload)
		}
		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("upstream call: %w", err)
	}

	chunks := make(chan Chunk)
	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		err := scanSSE(resp.Body, func(data string) error {
			var parsed chatStreamChunk
			if err := json.Unmarshal([]byte(data), &parsed); err != nil {
				// Skip unparseable frames rather than killing the stream.
				c.logger.Debug("skipping malformed stream frame", zap.Error(err))
				return nil
			}
			if len(parsed.Choices) == 0 {
				return nil
			}

			content := parsed.Choices[0].Delta.Content
			if content == "" {
				return nil
			}

			select {
			case chunks <- Chunk{Content: content}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && ctx.Err() == nil {
			select {
			case chunks <- Chunk{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return chunks, nil
}
