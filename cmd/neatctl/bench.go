package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ruphel/neat-python/internal/config"
	neat "github.com/ruphel/neat-python/pkg/neat"
)

type benchItem struct {
	fixtureResult
	Elapsed time.Duration `json:"elapsed_ns"`
}

func newBenchCmd(g *globalFlags) *cobra.Command {
	var (
		fixtures []string
		mode     string
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Evaluate several fixture networks concurrently, each with its own policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(fixtures) == 0 {
				return fmt.Errorf("at least one --fixture is required")
			}
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			loaded := make([]*config.Fixture, len(fixtures))
			for i, path := range fixtures {
				fx, err := config.LoadFixture(path)
				if err != nil {
					return err
				}
				loaded[i] = fx
			}

			items, err := runBench(cmd, loaded, firstNonEmpty(mode, cfg.Activation), workers, logger)
			if err != nil {
				return err
			}
			if g.jsonOut {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "bench fixture=%s mode=%s passes=%d neurons=%d elapsed=%s\n",
					item.Name, item.Mode, item.Passes, len(item.Outputs), item.Elapsed)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&fixtures, "fixture", nil, "network fixture YAML file (repeatable)")
	cmd.Flags().StringVar(&mode, "mode", "", "default activation mode for fixtures without one")
	cmd.Flags().IntVar(&workers, "workers", 4, "max fixtures evaluated at once")
	return cmd
}

// runBench gives every fixture its own in-memory client, so allocators and
// policies never cross networks. Each network is still swept by a single
// goroutine.
func runBench(cmd *cobra.Command, fixtures []*config.Fixture, defaultMode string, workers int, logger *zap.Logger) ([]benchItem, error) {
	if workers < 1 {
		workers = 1
	}
	items := make([]benchItem, len(fixtures))

	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(workers)
	for i, fx := range fixtures {
		i, fx := i, fx
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			client, err := neat.New(neat.Options{
				ActivationMode: firstNonEmpty(fx.Activation, defaultMode),
				Logger:         logger.With(zap.String("fixture", fx.Name)),
			})
			if err != nil {
				return fmt.Errorf("fixture %s: %w", fx.Name, err)
			}
			defer func() { _ = client.Close() }()

			start := time.Now()
			res, err := evaluateFixture(ctx, client, fx, nil)
			if err != nil {
				return err
			}
			items[i] = benchItem{fixtureResult: res, Elapsed: time.Since(start)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
