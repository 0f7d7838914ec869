// Package flavor fetches monster dialogue from a local language-model
// endpoint. Requests are fire-and-forget: the worker computes pure string
// results off-thread and the tick scheduler drains them later, so agent
// state is never touched from here.
package flavor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/otcraft/mobsim/internal/ai"
	"github.com/otcraft/mobsim/internal/config"
)

type request struct {
	objectID    uint32
	description string
}

// Client implements ai.FlavorSource over an HTTP generate endpoint.
type Client struct {
	cfg  config.FlavorConfig
	http *http.Client

	requests chan request
	results  chan ai.FlavorLine
}

// NewClient creates a flavor client from cfg.
func NewClient(cfg config.FlavorConfig) *Client {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		requests: make(chan request, cfg.QueueSize),
		results:  make(chan ai.FlavorLine, cfg.QueueSize),
	}
}

// Request submits a prompt for objectID. Returns false when the queue is
// full; a dropped line costs nothing.
func (c *Client) Request(objectID uint32, description string) bool {
	select {
	case c.requests <- request{objectID: objectID, description: description}:
		return true
	default:
		return false
	}
}

// Drain returns the completed lines since the last call. Called on the
// tick scheduler goroutine.
func (c *Client) Drain() []ai.FlavorLine {
	var out []ai.FlavorLine
	for {
		select {
		case line := <-c.results:
			out = append(out, line)
		default:
			return out
		}
	}
}

// Start runs the worker loop until ctx is canceled.
func (c *Client) Start(ctx context.Context) error {
	slog.Info("flavor worker started", "endpoint", c.cfg.Endpoint, "model", c.cfg.Model)
	for {
		select {
		case <-ctx.Done():
			slog.Info("flavor worker stopping")
			return ctx.Err()

		case req := <-c.requests:
			text, err := c.generate(ctx, req.description)
			if err != nil {
				slog.Debug("flavor generation failed", "objectID", req.objectID, "error", err)
				continue
			}
			select {
			case c.results <- ai.FlavorLine{ObjectID: req.objectID, Text: text}:
			default:
				// Result queue full; drop the line.
			}
		}
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// generate performs one blocking call against the generate endpoint.
func (c *Client) generate(ctx context.Context, description string) (string, error) {
	prompt := fmt.Sprintf(
		"You are %s, a monster in a fantasy world. Say one short menacing line in character. Reply with the line only.",
		description,
	)
	body, err := json.Marshal(generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding flavor request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building flavor request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling flavor endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("flavor endpoint returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading flavor response: %w", err)
	}
	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decoding flavor response: %w", err)
	}
	if parsed.Response == "" {
		return "", fmt.Errorf("flavor endpoint returned empty response")
	}
	return parsed.Response, nil
}
