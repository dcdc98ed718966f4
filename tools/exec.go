package tools

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"syscall"

	"github.com/lexcodex/agentloop/framework"
)

// maxCommandOutput clamps captured stdout+stderr before the dispatcher's own
// clamp applies.
const maxCommandOutput = 4000

// codeDangerRes rejects snippets that spawn processes, talk to foreign
// processes, or delete recursively. The interpreter never sees a snippet that
// trips one of these.
var codeDangerRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bos\.system\b`),
	regexp.MustCompile(`(?i)\bsubprocess\b`),
	regexp.MustCompile(`(?i)\bos\.(fork|exec[lv]p?e?)\b`),
	regexp.MustCompile(`(?i)\bshutil\.rmtree\b`),
	regexp.MustCompile(`(?i)\bsocket\.\b`),
	regexp.MustCompile("`[^`]+`"),
	regexp.MustCompile(`(?i)\bos\.kill\b`),
}

// ExecTools serves the shell_exec, code_run, and self_test verbs.
type ExecTools struct {
	Workdir         string
	Policy          framework.PolicyFunc
	SelfTestCommand []string
	Interpreter     string
}

// Shell executes a command line under sh. The dispatcher's sanitizer has
// already vetted the action; the check is repeated here as defense in depth
// because this handler can also be wired directly.
func (t *ExecTools) Shell(ctx context.Context, arg string) string {
	command := strings.TrimSpace(arg)
	if command == "" {
		return "Tool error: empty command"
	}
	if blocked, ok := framework.Sanitize(command); !ok {
		return blocked
	}
	if t.Policy != nil {
		if err := t.Policy("shell_exec", command); err != nil {
			return framework.BlockedPrefix + err.Error()
		}
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = t.Workdir
	return renderCommandResult(cmd.CombinedOutput())
}

// RunCode executes a snippet in a fresh interpreter process with stdin, site
// imports, and environment stripped.
func (t *ExecTools) RunCode(ctx context.Context, arg string) string {
	code := strings.TrimSpace(arg)
	if code == "" {
		return "Tool error: empty code"
	}
	for _, re := range codeDangerRes {
		if re.MatchString(code) {
			return framework.BlockedPrefix + "code contains dangerous construct " + re.String()
		}
	}
	interpreter := t.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}
	cmd := exec.CommandContext(ctx, interpreter, "-I", "-c", code)
	cmd.Dir = t.Workdir
	cmd.Env = []string{"PATH=/usr/bin:/bin"}
	// Own process group so a timeout kill reaches children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return renderCommandResult(cmd.CombinedOutput())
}

// SelfTest runs the configured test command, appending the argument as a
// filter pattern when present.
func (t *ExecTools) SelfTest(ctx context.Context, arg string) string {
	if len(t.SelfTestCommand) == 0 {
		return "Tool error: no self-test command configured"
	}
	args := append([]string{}, t.SelfTestCommand[1:]...)
	if pattern := strings.TrimSpace(arg); pattern != "" {
		args = append(args, pattern)
	}
	cmd := exec.CommandContext(ctx, t.SelfTestCommand[0], args...)
	cmd.Dir = t.Workdir
	return renderCommandResult(cmd.CombinedOutput())
}

func renderCommandResult(output []byte, err error) string {
	text := strings.TrimSpace(string(output))
	if len(text) > maxCommandOutput {
		text = text[:maxCommandOutput] + fmt.Sprintf("\n... [truncated, %d bytes total]", len(output))
	}
	if err != nil {
		if text == "" {
			return fmt.Sprintf("Command failed: %v", err)
		}
		return fmt.Sprintf("Command failed: %v\n%s", err, text)
	}
	if text == "" {
		return "(no output)"
	}
	return text
}
