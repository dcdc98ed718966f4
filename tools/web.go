package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultMaxBody clamps fetched response bodies.
const DefaultMaxBody = 4000

// WebTools serves the web_fetch and web_search verbs.
type WebTools struct {
	Client    *http.Client
	SearchURL string
	MaxBody   int
}

// Fetch validates the target is a well-formed http/https reference and
// returns the truncated body text.
func (t *WebTools) Fetch(ctx context.Context, arg string) string {
	target := strings.TrimSpace(arg)
	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Sprintf("Tool error: not a valid http(s) URL: %s", target)
	}
	return t.get(ctx, target)
}

// Search queries the configured search endpoint with the argument.
func (t *WebTools) Search(ctx context.Context, arg string) string {
	query := strings.TrimSpace(arg)
	if query == "" {
		return "Tool error: empty search query"
	}
	endpoint := t.SearchURL
	if endpoint == "" {
		endpoint = "https://duckduckgo.com/html/?q="
	}
	return t.get(ctx, endpoint+url.QueryEscape(query))
}

func (t *WebTools) get(ctx context.Context, target string) string {
	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Sprintf("Tool error: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Sprintf("Fetch failed: %v", err)
	}
	defer resp.Body.Close()
	limit := t.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(limit)+1))
	if err != nil {
		return fmt.Sprintf("Fetch failed reading body: %v", err)
	}
	text := string(body)
	if len(text) > limit {
		text = text[:limit] + "\n... [truncated]"
	}
	return fmt.Sprintf("HTTP %d\n%s", resp.StatusCode, text)
}
