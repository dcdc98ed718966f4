// Package tools holds the concrete handlers behind the dispatcher's verbs:
// filesystem access, command execution, web access, and model delegation.
// Handlers never return errors; every failure is rendered into the
// observation string so the driving model can react to it.
package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexcodex/agentloop/framework"
)

// DefaultMaxReadBytes clamps file-read observations.
const DefaultMaxReadBytes = 8000

// writeSeparator splits the file_write argument into path and content.
const writeSeparator = "::"

// FileTools serves the file_read and file_write verbs. Writes are confined to
// the working directory and rejected under any protected prefix.
type FileTools struct {
	Workdir      string
	Protected    []string
	MaxReadBytes int
}

// Read returns file content truncated to the configured maximum, with a
// suffix noting the total size when truncated.
func (t *FileTools) Read(ctx context.Context, arg string) string {
	path := t.resolve(strings.TrimSpace(arg))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("File not found: %s", arg)
		}
		return fmt.Sprintf("Tool error: %v", err)
	}
	limit := t.MaxReadBytes
	if limit <= 0 {
		limit = DefaultMaxReadBytes
	}
	if len(data) > limit {
		return string(data[:limit]) + fmt.Sprintf("\n... [truncated, %d bytes total]", len(data))
	}
	return string(data)
}

// Write parses `path :: content`, applies the confinement checks, creates
// parent directories, and writes the content.
func (t *FileTools) Write(ctx context.Context, arg string) string {
	path, content, ok := splitWriteArg(arg)
	if !ok {
		return "Tool error: file_write expects: file_write \"path\" :: content"
	}
	abs := t.resolve(path)
	if blocked := t.confine(abs); blocked != "" {
		return blocked
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Sprintf("Tool error: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Sprintf("Tool error: %v", err)
	}
	return fmt.Sprintf("Wrote %d bytes to %s", len(content), path)
}

// confine rejects paths under a protected prefix or outside the workdir.
func (t *FileTools) confine(abs string) string {
	for _, prefix := range t.Protected {
		resolved := prefix
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(t.Workdir, resolved)
		}
		resolved = filepath.Clean(resolved)
		if abs == resolved || strings.HasPrefix(abs, resolved+string(filepath.Separator)) {
			return framework.BlockedPrefix + "path is protected: " + abs
		}
	}
	root := filepath.Clean(t.Workdir)
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return framework.BlockedPrefix + "path escapes working directory: " + abs
	}
	return ""
}

// resolve turns a possibly-relative argument into a cleaned absolute path.
func (t *FileTools) resolve(path string) string {
	path = strings.Trim(strings.TrimSpace(path), `"'`)
	if !filepath.IsAbs(path) {
		path = filepath.Join(t.Workdir, path)
	}
	return filepath.Clean(path)
}

func splitWriteArg(arg string) (path, content string, ok bool) {
	idx := strings.Index(arg, writeSeparator)
	if idx < 0 {
		return "", "", false
	}
	path = strings.TrimSpace(arg[:idx])
	content = strings.TrimPrefix(arg[idx+len(writeSeparator):], " ")
	if path == "" {
		return "", "", false
	}
	return path, content, true
}
