package framework

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// PromptSection is a labeled block rendered as "LABEL:\ncontent".
type PromptSection struct {
	Label   string
	Content string
}

// maxProjectContext bounds how much of an external project-context file is
// inlined into the prompt.
const maxProjectContext = 4000

// closingInstruction pins the response shape the Response Parser expects.
const closingInstruction = `Respond with:
Thought: <your reasoning about the next step>
Action: <one tool invocation, e.g. file_read "path">
When the task is complete respond instead with:
ANSWER: <the final answer>`

// PromptBuilder assembles the prompt (or role-segmented message list) from
// identity, static sections, the tool catalog, the task goal, and a trailing
// window of history. Builders are configured once and then only read, so a
// single instance serves concurrent runs.
type PromptBuilder struct {
	Identity           string
	Preamble           []string
	Sections           []PromptSection
	Commands           string
	Persona            string
	ProjectContextPath string
	Version            string
	HistoryWindow      int
}

// systemText renders everything that precedes the task section.
func (b *PromptBuilder) systemText() string {
	var sb strings.Builder
	if b.Identity != "" {
		identity := strings.ReplaceAll(b.Identity, "{version}", b.Version)
		identity = strings.ReplaceAll(identity, "{platform}", runtime.GOOS+"/"+runtime.GOARCH)
		sb.WriteString(identity)
		sb.WriteString("\n\n")
	}
	for _, section := range b.Preamble {
		if section == "" {
			continue
		}
		sb.WriteString(section)
		sb.WriteString("\n\n")
	}
	for _, section := range b.Sections {
		if section.Content == "" {
			continue
		}
		sb.WriteString(section.Label)
		sb.WriteString(":\n")
		sb.WriteString(section.Content)
		sb.WriteString("\n\n")
	}
	if b.Commands != "" {
		sb.WriteString("COMMANDS:\n")
		sb.WriteString(b.Commands)
		sb.WriteString("\n\n")
	}
	if b.Persona != "" {
		sb.WriteString("ACTIVE PERSONA:\n")
		sb.WriteString(b.Persona)
		sb.WriteString("\n\n")
	}
	if project := b.projectContext(); project != "" {
		sb.WriteString("PROJECT CONTEXT:\n")
		sb.WriteString(project)
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// taskText renders the goal, tool catalog, and trailing history window.
func (b *PromptBuilder) taskText(goal string, specs []ToolSpec, history []Step) string {
	var sb strings.Builder
	sb.WriteString("TASK:\n")
	sb.WriteString(goal)
	sb.WriteString("\n\n")
	if len(specs) > 0 {
		sb.WriteString("Available tools:\n")
		for _, spec := range specs {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", spec.Name, spec.Description))
		}
		sb.WriteString("\nUsage patterns:\n")
		for _, spec := range specs {
			sb.WriteString(fmt.Sprintf("- %s\n", spec.Usage))
		}
		sb.WriteString("\n")
	}
	if len(history) > 0 {
		sb.WriteString("Previous steps:\n")
		for _, step := range history {
			sb.WriteString(fmt.Sprintf("Thought: %s\nAction: %s\n", step.Thought, step.Action))
			if step.Observation != "" {
				sb.WriteString("Observation: " + clampText(step.Observation, DefaultObservationLimit) + "\n")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString(closingInstruction)
	return sb.String()
}

// BuildPrompt produces a single concatenated prompt string.
func (b *PromptBuilder) BuildPrompt(goal string, specs []ToolSpec, history []Step) string {
	system := b.systemText()
	task := b.taskText(goal, specs, history)
	if system == "" {
		return task
	}
	return system + "\n\n" + task
}

// BuildMessages produces the role-segmented form for chat-style backends.
func (b *PromptBuilder) BuildMessages(goal string, specs []ToolSpec, history []Step) []Message {
	var messages []Message
	if system := b.systemText(); system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: b.taskText(goal, specs, history)})
	return messages
}

// projectContext reads the optional external context file, truncated so a
// large file cannot blow up the prompt.
func (b *PromptBuilder) projectContext() string {
	if b.ProjectContextPath == "" {
		return ""
	}
	data, err := os.ReadFile(b.ProjectContextPath)
	if err != nil {
		return ""
	}
	return clampText(strings.TrimSpace(string(data)), maxProjectContext)
}

func clampText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
