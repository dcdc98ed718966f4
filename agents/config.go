package agents

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lexcodex/agentloop/framework"
)

const configDirName = "agentloop_cfg"

// ConfigDir returns the workspace-local configuration directory.
func ConfigDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, configDirName)
}

// DefaultConfigPath returns agentloop_cfg/config.yaml within the workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(ConfigDir(workspace), "config.yaml")
}

// GlobalConfig matches agentloop_cfg/config.yaml inside the workspace.
type GlobalConfig struct {
	Version        string        `yaml:"version"`
	DefaultModel   string        `yaml:"default_model"`
	FastModel      string        `yaml:"fast_model"`
	OllamaEndpoint string        `yaml:"ollama_endpoint"`
	Limits         LimitsConfig  `yaml:"limits"`
	Prompt         PromptConfig  `yaml:"prompt"`
	ProtectedPaths []string      `yaml:"protected_paths"`
	SelfTest       []string      `yaml:"self_test_command"`
	Logging        LoggingConfig `yaml:"logging"`
}

// LimitsConfig tunes budgets per run.
type LimitsConfig struct {
	MaxSteps         int `yaml:"max_steps"`
	WallClockSeconds int `yaml:"wall_clock_seconds"`
	HistoryLimit     int `yaml:"history_limit"`
	HistoryWindow    int `yaml:"history_window"`
	MaxAttempts      int `yaml:"max_attempts"`
	ObservationLimit int `yaml:"observation_limit"`
	ToolTimeoutSecs  int `yaml:"tool_timeout_seconds"`
}

// SectionConfig is one labeled prompt section.
type SectionConfig struct {
	Label   string `yaml:"label"`
	Content string `yaml:"content"`
}

// PromptConfig overrides the built-in prompt assembly inputs.
type PromptConfig struct {
	Identity       string          `yaml:"identity"`
	Preamble       []string        `yaml:"preamble"`
	Sections       []SectionConfig `yaml:"sections"`
	Commands       string          `yaml:"commands"`
	Persona        string          `yaml:"persona"`
	ProjectContext string          `yaml:"project_context"`
}

// LoggingConfig describes log output.
type LoggingConfig struct {
	File  string `yaml:"file"`
	LLM   bool   `yaml:"llm_debug"`
	Agent bool   `yaml:"agent_debug"`
}

// defaultSections are the labeled blocks every prompt carries unless the
// config overrides them.
var defaultSections = []SectionConfig{
	{Label: "TASK WORKFLOW", Content: "Work one step at a time. Inspect before you mutate. Prefer small, verifiable actions."},
	{Label: "SAFETY RULES", Content: "Never run destructive commands. Stay inside the workspace. Blocked operations are final."},
	{Label: "CORE AXIOMS", Content: "Observations are ground truth. If an observation contradicts an assumption, drop the assumption."},
	{Label: "EVIDENCE RULES", Content: "Cite observations when you answer. Do not invent file contents or command output."},
}

// LoadGlobalConfig loads the config or returns defaults when the file is
// missing.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	cfg := &GlobalConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (g *GlobalConfig) applyDefaults() {
	if g.DefaultModel == "" {
		g.DefaultModel = "codellama"
	}
	if g.OllamaEndpoint == "" {
		g.OllamaEndpoint = "http://localhost:11434"
	}
	if g.Prompt.Identity == "" {
		g.Prompt.Identity = "You are agentloop {version}, an autonomous task runner on {platform}."
	}
	if len(g.Prompt.Sections) == 0 {
		g.Prompt.Sections = defaultSections
	}
}

// RuntimeConfig converts the YAML view into the framework view.
func (g *GlobalConfig) RuntimeConfig() *framework.Config {
	cfg := &framework.Config{
		Model:         g.DefaultModel,
		FastModel:     g.FastModel,
		MaxSteps:      g.Limits.MaxSteps,
		WallClock:     time.Duration(g.Limits.WallClockSeconds) * time.Second,
		HistoryLimit:  g.Limits.HistoryLimit,
		HistoryWindow: g.Limits.HistoryWindow,
		MaxAttempts:   g.Limits.MaxAttempts,
		DebugAgent:    g.Logging.Agent,
		DebugLLM:      g.Logging.LLM,
	}
	cfg.Defaults()
	return cfg
}

// PromptBuilder converts the prompt config into a builder.
func (g *GlobalConfig) PromptBuilder(version string) *framework.PromptBuilder {
	sections := make([]framework.PromptSection, 0, len(g.Prompt.Sections))
	for _, s := range g.Prompt.Sections {
		sections = append(sections, framework.PromptSection{Label: s.Label, Content: s.Content})
	}
	return &framework.PromptBuilder{
		Identity:           g.Prompt.Identity,
		Preamble:           g.Prompt.Preamble,
		Sections:           sections,
		Commands:           g.Prompt.Commands,
		Persona:            g.Prompt.Persona,
		ProjectContextPath: g.Prompt.ProjectContext,
		Version:            version,
	}
}
