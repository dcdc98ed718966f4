package framework

import (
	"regexp"
	"strings"
)

// Response is the parsed form of one raw model completion.
type Response struct {
	Thought string
	Action  string
}

// DefaultThought is substituted when the model omits a Thought marker.
const DefaultThought = "Continuing"

// fallbackPrefixLen bounds how much raw text the synthesized fallback action
// feeds back to the model.
const fallbackPrefixLen = 200

var (
	thoughtRe    = regexp.MustCompile(`(?is)Thought:\s*(.*?)(?:Action:|ANSWER:|DONE:|$)`)
	actionRe     = regexp.MustCompile(`(?is)Action:\s*(.*?)(?:Observation:|Thought:|$)`)
	completionRe = regexp.MustCompile(`(?is)((?:ANSWER|DONE|COMPLETE):.*)`)
	finalRe      = regexp.MustCompile(`(?is)^(ANSWER|DONE|COMPLETE):\s*(.*)$`)
)

// ParseResponse extracts a thought and an action from raw model output. The
// parser never fails: missing markers degrade to a default thought and, as a
// last resort, an action that re-asks the model with a bounded prefix of the
// raw text, so the owning loop always has something to dispatch.
func ParseResponse(raw string) Response {
	resp := Response{Thought: DefaultThought}
	if m := thoughtRe.FindStringSubmatch(raw); m != nil {
		if thought := strings.TrimSpace(m[1]); thought != "" {
			resp.Thought = thought
		}
	}
	if m := actionRe.FindStringSubmatch(raw); m != nil {
		resp.Action = strings.TrimSpace(m[1])
	}
	if resp.Action == "" {
		if m := completionRe.FindStringSubmatch(raw); m != nil {
			resp.Action = strings.TrimSpace(m[1])
		}
	}
	if resp.Action == "" {
		resp.Action = fallbackAction(raw)
	}
	return resp
}

// fallbackAction wraps unparseable output into an llm_query call so the loop
// keeps moving instead of stalling.
func fallbackAction(raw string) string {
	prefix := strings.TrimSpace(raw)
	if len(prefix) > fallbackPrefixLen {
		prefix = prefix[:fallbackPrefixLen]
	}
	prefix = strings.ReplaceAll(prefix, `"`, "'")
	return `llm_query "Clarify next concrete step for: ` + prefix + `"`
}

// FinalAnswer reports whether the action is a completion marker and, if so,
// returns the trailing answer text.
func FinalAnswer(action string) (string, bool) {
	m := finalRe.FindStringSubmatch(strings.TrimSpace(action))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[2]), true
}
