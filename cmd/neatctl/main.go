package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ruphel/neat-python/internal/config"
	"github.com/ruphel/neat-python/internal/nn"
	neat "github.com/ruphel/neat-python/pkg/neat"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	store      string
	dbPath     string
	scope      string
	logLevel   string
	jsonOut    bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "neatctl",
		Short: "Evaluate NEAT neurons and networks",
		Long: `neatctl builds networks of NEAT neurons from fixture files, evaluates
them under a chosen activation mode and keeps id counters and sweep
traces in a store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "YAML config file")
	pf.StringVar(&g.store, "store", "", "store backend: memory|sqlite")
	pf.StringVar(&g.dbPath, "db-path", "", "sqlite database path")
	pf.StringVar(&g.scope, "scope", "", "allocator and policy scope")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug|info|warn|error")
	pf.BoolVar(&g.jsonOut, "json", false, "output as JSON")

	root.AddCommand(
		newModesCmd(g),
		newEvalCmd(g),
		newXORCmd(g),
		newBenchCmd(g),
		newIDsCmd(g),
		newTracesCmd(g),
	)
	return root
}

// loadConfig merges the config file, environment and explicit flags, in
// increasing precedence.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store = g.store
	}
	if flags.Changed("db-path") {
		cfg.DBPath = g.dbPath
	}
	if flags.Changed("scope") {
		cfg.Scope = g.scope
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = lvl
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// openClient builds a client from the merged config and restores the
// persisted allocator counter and activation mode for its scope. The
// persisted mode only applies when the config leaves activation empty.
func (g *globalFlags) openClient(cmd *cobra.Command) (*neat.Client, *zap.Logger, error) {
	cfg, err := g.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	client, err := neat.New(neat.Options{
		StoreKind:      cfg.Store,
		DBPath:         cfg.DBPath,
		Scope:          cfg.Scope,
		ActivationMode: cfg.Activation,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := client.Restore(cmd.Context()); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	// a configured mode outranks the one persisted by an earlier run
	if cfg.Activation != "" {
		if err := client.SetActivationMode(cfg.Activation); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
	}
	return client, logger, nil
}

func newModesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List activation modes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modes := nn.ListModes()
			if g.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"modes": modes, "fallback": nn.ModeTanh})
			}
			for _, mode := range modes {
				fmt.Fprintln(cmd.OutOrStdout(), mode)
			}
			return nil
		},
	}
}

func newEvalCmd(g *globalFlags) *cobra.Command {
	var (
		fixturePath string
		inputs      []string
		mode        string
		passes      int
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Build a fixture network and evaluate it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fixturePath == "" {
				return fmt.Errorf("--fixture is required")
			}
			fx, err := config.LoadFixture(fixturePath)
			if err != nil {
				return err
			}
			overrides, err := parseInputs(inputs)
			if err != nil {
				return err
			}

			client, logger, err := g.openClient(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
				_ = logger.Sync()
			}()

			if mode == "" {
				mode = fx.Activation
			}
			if mode != "" {
				if err := client.SetActivationMode(mode); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("passes") {
				fx.Passes = passes
			}

			result, err := evaluateFixture(cmd.Context(), client, fx, overrides)
			if err != nil {
				return err
			}
			if err := client.Checkpoint(cmd.Context()); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), g.jsonOut, result)
		},
	}
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "network fixture YAML file")
	cmd.Flags().StringArrayVar(&inputs, "input", nil, "sensor value as key=value (repeatable)")
	cmd.Flags().StringVar(&mode, "mode", "", "activation mode (overrides config and fixture)")
	cmd.Flags().IntVar(&passes, "passes", 1, "sweeps per evaluation")
	return cmd
}

func newXORCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "xor",
		Short: "Run the recurrent tanh XOR demo network",
		RunE: func(cmd *cobra.Command, _ []string) error {
			demo, err := nn.NewXORDemo(nn.NewIDAllocator())
			if err != nil {
				return err
			}
			type row struct {
				X1     float64 `json:"x1"`
				X2     float64 `json:"x2"`
				Output float64 `json:"output"`
			}
			var rows []row
			for _, c := range [][2]float64{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
				out, err := demo.Step(c[0], c[1])
				if err != nil {
					return err
				}
				rows = append(rows, row{X1: c[0], X2: c[1], Output: out})
			}
			if g.jsonOut {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "xor x1=%g x2=%g output=%.6f\n", r.X1, r.X2, r.Output)
			}
			return nil
		},
	}
}

func newIDsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ids",
		Short: "Inspect or reset the persisted neuron id counter",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the last allocated id for the scope",
			RunE: func(cmd *cobra.Command, _ []string) error {
				client, logger, err := g.openClient(cmd)
				if err != nil {
					return err
				}
				defer func() {
					_ = client.Close()
					_ = logger.Sync()
				}()
				mode, _ := client.ActivationMode()
				if g.jsonOut {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"counter": client.IDCounter(), "mode": mode})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "id_counter=%d mode=%s\n", client.IDCounter(), mode)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restart the id sequence for the scope",
			RunE: func(cmd *cobra.Command, _ []string) error {
				client, logger, err := g.openClient(cmd)
				if err != nil {
					return err
				}
				defer func() {
					_ = client.Close()
					_ = logger.Sync()
				}()
				if err := client.ResetIDs(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "id_counter=0")
				return nil
			},
		},
	)
	return cmd
}

func newTracesCmd(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "traces",
		Short: "List recorded evaluation sweeps, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, logger, err := g.openClient(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
				_ = logger.Sync()
			}()
			items, err := client.SweepTraces(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "run_id=%s created_at=%s mode=%s passes=%d neurons=%d\n",
					item.RunID, item.CreatedAtUTC, item.Mode, item.Passes, len(item.Outputs))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max traces to list (0 for all)")
	return cmd
}

func parseInputs(values []string) (map[string]float64, error) {
	out := make(map[string]float64, len(values))
	for _, raw := range values {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --input %q: expected key=value", raw)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --input %q: %w", raw, err)
		}
		out[strings.TrimSpace(key)] = v
	}
	return out, nil
}

func printResult(w io.Writer, jsonOut bool, result fixtureResult) error {
	if jsonOut {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "fixture=%s run_id=%s mode=%s passes=%d\n", result.Name, result.RunID, result.Mode, result.Passes)
	keys := make([]string, 0, len(result.Outputs))
	for key := range result.Outputs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		o := result.Outputs[key]
		fmt.Fprintf(w, "neuron key=%s id=%d type=%s output=%.6f\n", key, o.ID, o.Type, o.Output)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
