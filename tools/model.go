package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lexcodex/agentloop/framework"
)

// ModelTools serves the llm_query and code_review verbs by delegating to the
// backend as a sub-call. Delegated calls use the fast tier: they are helper
// lookups, not the main reasoning thread.
type ModelTools struct {
	Model framework.LanguageModel
	Tier  framework.Tier
}

// Query forwards the argument to the model verbatim.
func (t *ModelTools) Query(ctx context.Context, arg string) string {
	prompt := strings.TrimSpace(arg)
	if prompt == "" {
		return "Tool error: empty query"
	}
	answer, err := t.Model.Ask(ctx, prompt, t.Tier)
	if err != nil {
		return fmt.Sprintf("Model call failed: %v", err)
	}
	return strings.TrimSpace(answer)
}

// Review asks the model to review code. The argument may name a file, in
// which case its (clamped) content is reviewed, or carry the code inline.
func (t *ModelTools) Review(ctx context.Context, arg string) string {
	subject := strings.TrimSpace(arg)
	if subject == "" {
		return "Tool error: nothing to review"
	}
	label := "inline snippet"
	if data, err := os.ReadFile(subject); err == nil {
		label = subject
		if len(data) > DefaultMaxReadBytes {
			data = data[:DefaultMaxReadBytes]
		}
		subject = string(data)
	}
	prompt := fmt.Sprintf(`Review the following code (%s) for correctness, clarity, and safety.
List concrete issues with line references where possible, then an overall verdict.

%s`, label, subject)
	answer, err := t.Model.Ask(ctx, prompt, t.Tier)
	if err != nil {
		return fmt.Sprintf("Model call failed: %v", err)
	}
	return strings.TrimSpace(answer)
}
