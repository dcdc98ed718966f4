package framework

import "context"

// Tier selects a cost/quality bucket on the model backend. The runtime never
// interprets tiers beyond passing them through, so backends are free to map
// them onto whatever models they expose.
type Tier string

const (
	TierDefault Tier = ""
	TierFast    Tier = "fast"
)

// Message is a single role-tagged entry in a chat-style prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LanguageModel is the backend every strategy drives. Ask takes a flat prompt,
// AskMessages a role-segmented transcript; both block until the completion is
// available or the context is cancelled.
type LanguageModel interface {
	Ask(ctx context.Context, prompt string, tier Tier) (string, error)
	AskMessages(ctx context.Context, messages []Message, tier Tier) (string, error)
}
