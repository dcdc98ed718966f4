package tools

import (
	"github.com/lexcodex/agentloop/framework"
)

// RegisterAll wires every handler group into the dispatcher under the
// standard verb grammar. Registration order decides match precedence.
func RegisterAll(d *framework.Dispatcher, files *FileTools, execs *ExecTools, web *WebTools, model *ModelTools) {
	if files != nil {
		d.Register(framework.ToolSpec{
			Name:        "file_read",
			Description: "Reads a file and returns its (truncated) content.",
			Usage:       `file_read "path/to/file"`,
		}, files.Read)
		d.Register(framework.ToolSpec{
			Name:        "file_write",
			Description: "Writes content to a file inside the workspace.",
			Usage:       `file_write "path/to/file" :: content`,
		}, files.Write)
	}
	if execs != nil {
		d.Register(framework.ToolSpec{
			Name:        "shell_exec",
			Description: "Runs a shell command in the workspace and captures its output.",
			Usage:       `shell_exec "ls -la"`,
		}, execs.Shell)
		d.Register(framework.ToolSpec{
			Name:        "code_run",
			Description: "Executes a code snippet in a fresh interpreter process.",
			Usage:       `code_run "print(2 + 2)"`,
		}, execs.RunCode)
		d.Register(framework.ToolSpec{
			Name:        "self_test",
			Description: "Runs the project's configured test command.",
			Usage:       `self_test "optional filter"`,
		}, execs.SelfTest)
	}
	if web != nil {
		d.Register(framework.ToolSpec{
			Name:        "web_fetch",
			Description: "Fetches an http(s) URL and returns the truncated body.",
			Usage:       `web_fetch "https://example.com"`,
		}, web.Fetch)
		d.Register(framework.ToolSpec{
			Name:        "web_search",
			Description: "Searches the web and returns the truncated result page.",
			Usage:       `web_search "query terms"`,
		}, web.Search)
	}
	if model != nil {
		d.Register(framework.ToolSpec{
			Name:        "llm_query",
			Description: "Asks the language model a free-form sub-question.",
			Usage:       `llm_query "question"`,
		}, model.Query)
		d.Register(framework.ToolSpec{
			Name:        "code_review",
			Description: "Asks the model to review a file or inline snippet.",
			Usage:       `code_review "path/or/snippet"`,
		}, model.Review)
	}
}
