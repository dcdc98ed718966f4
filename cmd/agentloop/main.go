package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexcodex/agentloop/agents"
	"github.com/lexcodex/agentloop/framework"
	"github.com/lexcodex/agentloop/llm"
	"github.com/lexcodex/agentloop/persistence"
	"github.com/lexcodex/agentloop/tools"
)

const version = "0.3.0"

var (
	flagModel     string
	flagEndpoint  string
	flagWorkspace string
	flagStrategy  string
	flagTier      string
	flagDebug     bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentloop",
		Short: "Run autonomous tasks against a local model",
	}
	root.PersistentFlags().StringVar(&flagModel, "model", envOrDefault("OLLAMA_MODEL", ""), "Ollama model (overrides config)")
	root.PersistentFlags().StringVar(&flagEndpoint, "ollama", envOrDefault("OLLAMA_ENDPOINT", ""), "Ollama endpoint (overrides config)")
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", ".", "Workspace root the tools operate in")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log each step and model call")

	root.AddCommand(newRunCmd(), newToolsCmd(), newRunsCmd())
	return root
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// buildRuntime loads the workspace config and wires the tool surface, model
// client, and run store into a Runtime.
func buildRuntime() (*agents.Runtime, *persistence.RunStore, error) {
	global, err := agents.LoadGlobalConfig(agents.DefaultConfigPath(flagWorkspace))
	if err != nil {
		return nil, nil, err
	}
	if flagModel != "" {
		global.DefaultModel = flagModel
	}
	if flagEndpoint != "" {
		global.OllamaEndpoint = flagEndpoint
	}
	cfg := global.RuntimeConfig()
	if flagDebug {
		cfg.DebugAgent = true
		cfg.DebugLLM = true
	}
	cfg.Telemetry = buildTelemetry(global)

	client := llm.NewClient(global.OllamaEndpoint, cfg.Model, cfg.FastModel)
	client.Debug = cfg.DebugLLM
	model := llm.NewInstrumentedModel(client, cfg.Telemetry)

	workdir, err := filepath.Abs(flagWorkspace)
	if err != nil {
		return nil, nil, err
	}
	files := &tools.FileTools{Workdir: workdir, Protected: global.ProtectedPaths}
	execs := &tools.ExecTools{Workdir: workdir, SelfTestCommand: global.SelfTest}
	web := &tools.WebTools{Client: &http.Client{Timeout: 20 * time.Second}}
	modelTools := &tools.ModelTools{Model: model, Tier: framework.TierFast}

	dispatcher := framework.NewDispatcher(
		framework.WithObservationLimit(global.Limits.ObservationLimit),
		framework.WithToolTimeout(time.Duration(global.Limits.ToolTimeoutSecs)*time.Second),
	)
	tools.RegisterAll(dispatcher, files, execs, web, modelTools)

	runtime := agents.New(model, dispatcher, global.PromptBuilder(version), cfg)

	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	runtime.Store = store
	return runtime, store, nil
}

func buildTelemetry(global *agents.GlobalConfig) framework.Telemetry {
	sinks := []framework.Telemetry{}
	if flagDebug || global.Logging.Agent {
		sinks = append(sinks, &framework.LoggerTelemetry{})
	}
	if global.Logging.File != "" {
		if sink, err := framework.NewJSONFileTelemetry(global.Logging.File); err == nil {
			sinks = append(sinks, sink)
		} else {
			fmt.Fprintf(os.Stderr, "telemetry file unavailable: %v\n", err)
		}
	}
	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	default:
		return &framework.MultiplexTelemetry{Sinks: sinks}
	}
}

func openStore() (*persistence.RunStore, error) {
	dir := agents.ConfigDir(flagWorkspace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return persistence.NewRunStore(filepath.Join(dir, "runs.db"))
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [goal]",
		Short: "Execute a goal under the chosen strategy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, store, err := buildRuntime()
			if err != nil {
				return err
			}
			defer store.Close()
			goal := strings.Join(args, " ")
			outcome, err := runtime.Run(cmd.Context(), goal, flagStrategy, framework.Tier(flagTier))
			if err != nil {
				return err
			}
			fmt.Printf("Strategy: %s\nSteps: %d\n\n%s\n", outcome.Strategy, outcome.Steps, outcome.Answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagStrategy, "strategy", "react",
		"Execution strategy: "+strings.Join(agents.StrategyNames(), ", "))
	cmd.Flags().StringVar(&flagTier, "tier", "", `Model tier ("" or "fast")`)
	return cmd
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered tool verbs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, store, err := buildRuntime()
			if err != nil {
				return err
			}
			defer store.Close()
			for _, spec := range runtime.Dispatcher.Specs() {
				fmt.Printf("%-12s %s\n             usage: %s\n", spec.Name, spec.Description, spec.Usage)
			}
			return nil
		},
	}
}

func newRunsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "Show recent runs from the workspace store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if len(args) == 1 {
				rec, steps, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("%s  [%s]  steps=%d\ngoal: %s\n", rec.ID, rec.Strategy, rec.Steps, rec.Goal)
				if rec.Error != "" {
					fmt.Printf("error: %s\n", rec.Error)
				} else {
					fmt.Printf("answer: %s\n", rec.Answer)
				}
				for _, step := range steps {
					fmt.Printf("\n[%d] thought: %s\n    action:  %s\n    result:  %s\n",
						step.Index, step.Thought, step.Action, framework.Excerpt(step.Observation, 200))
				}
				return nil
			}
			records, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, rec := range records {
				status := "ok"
				if rec.Error != "" {
					status = "failed"
				}
				fmt.Printf("%s  %-9s %-7s steps=%-3d %s\n",
					rec.CreatedAt.Format(time.RFC3339), rec.Strategy, status, rec.Steps, framework.Excerpt(rec.Goal, 60))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	return cmd
}
