package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexcodex/agentloop/framework"
)

func TestShellRunsCommand(t *testing.T) {
	et := &ExecTools{Workdir: t.TempDir()}
	obs := et.Shell(context.Background(), "echo hello")
	assert.Equal(t, "hello", obs)
}

func TestShellCapturesFailure(t *testing.T) {
	et := &ExecTools{Workdir: t.TempDir()}
	obs := et.Shell(context.Background(), "exit 3")
	assert.Contains(t, obs, "Command failed:")
	assert.Contains(t, obs, "exit status 3")
}

func TestShellEmptyCommand(t *testing.T) {
	et := &ExecTools{Workdir: t.TempDir()}
	assert.Equal(t, "Tool error: empty command", et.Shell(context.Background(), "  "))
}

func TestShellReappliesBlocklist(t *testing.T) {
	et := &ExecTools{Workdir: t.TempDir()}
	obs := et.Shell(context.Background(), "rm -rf /")
	assert.True(t, strings.HasPrefix(obs, framework.BlockedPrefix))
}

func TestShellPolicyVeto(t *testing.T) {
	et := &ExecTools{
		Workdir: t.TempDir(),
		Policy: func(operation, args string) error {
			return errors.New("shell disabled")
		},
	}
	obs := et.Shell(context.Background(), "echo hi")
	assert.Equal(t, framework.BlockedPrefix+"shell disabled", obs)
}

func TestRunCodeBlocksDangerousConstructs(t *testing.T) {
	et := &ExecTools{Workdir: t.TempDir()}
	for _, code := range []string{
		"import os; os.system('ls')",
		"import subprocess",
		"import shutil; shutil.rmtree('/tmp')",
		"s = socket.socket()",
	} {
		obs := et.RunCode(context.Background(), code)
		assert.True(t, strings.HasPrefix(obs, framework.BlockedPrefix), code)
	}
}

func TestSelfTest(t *testing.T) {
	et := &ExecTools{Workdir: t.TempDir(), SelfTestCommand: []string{"echo", "running"}}
	assert.Equal(t, "running", et.SelfTest(context.Background(), ""))
	assert.Equal(t, "running filter", et.SelfTest(context.Background(), "filter"))

	unset := &ExecTools{Workdir: t.TempDir()}
	assert.Contains(t, unset.SelfTest(context.Background(), ""), "no self-test command configured")
}

func TestRenderCommandResult(t *testing.T) {
	assert.Equal(t, "(no output)", renderCommandResult(nil, nil))
	assert.Equal(t, "out", renderCommandResult([]byte("out\n"), nil))

	long := strings.Repeat("y", maxCommandOutput+100)
	clamped := renderCommandResult([]byte(long), nil)
	assert.Contains(t, clamped, "[truncated")
}
