// Package llm provides the Ollama-backed language model client plus an
// instrumentation wrapper. It is the only package that talks HTTP to the
// backend; everything above it sees framework.LanguageModel.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lexcodex/agentloop/framework"
)

// Client implements framework.LanguageModel for Ollama.
type Client struct {
	Endpoint  string
	Model     string
	FastModel string
	Debug     bool
	client    *http.Client
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaResponse struct {
	Response string         `json:"response"`
	Message  *ollamaMessage `json:"message"`
	Error    string         `json:"error"`
}

// NewClient builds a new Ollama client.
func NewClient(endpoint, model, fastModel string) *Client {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	return &Client{
		Endpoint:  endpoint,
		Model:     model,
		FastModel: fastModel,
		client: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

// Ask implements single-prompt completion via /api/generate.
func (c *Client) Ask(ctx context.Context, prompt string, tier framework.Tier) (string, error) {
	payload := map[string]interface{}{
		"model":  c.modelFor(tier),
		"prompt": prompt,
		"stream": false,
	}
	resp, err := c.doRequest(ctx, "/api/generate", payload)
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

// AskMessages implements chat-style completion via /api/chat.
func (c *Client) AskMessages(ctx context.Context, messages []framework.Message, tier framework.Tier) (string, error) {
	converted := make([]ollamaMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, ollamaMessage{Role: m.Role, Content: m.Content})
	}
	payload := map[string]interface{}{
		"model":    c.modelFor(tier),
		"messages": converted,
		"stream":   false,
	}
	resp, err := c.doRequest(ctx, "/api/chat", payload)
	if err != nil {
		return "", err
	}
	if resp.Message == nil {
		return resp.Response, nil
	}
	return resp.Message.Content, nil
}

func (c *Client) modelFor(tier framework.Tier) string {
	if tier == framework.TierFast && c.FastModel != "" {
		return c.FastModel
	}
	return c.Model
}

func (c *Client) doRequest(ctx context.Context, path string, payload map[string]interface{}) (*ollamaResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Debug {
		log.Printf("[llm] POST %s model=%v bytes=%d", path, payload["model"], len(body))
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	var parsed ollamaResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("ollama %s: decode response: %w", path, err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("ollama %s: %s", path, parsed.Error)
	}
	return &parsed, nil
}
