// Command ecsbench drives a configurable churn benchmark over ecscore's
// tables and prints basic timing. It exercises the package's configuration
// surface (page sizes, logging) end to end under repeated add/iterate/remove
// cycles.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/edwinsyarief/ecscore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

type benchProfile struct {
	EntityPageSize    uint32 `mapstructure:"entity_page_size"`
	ComponentPageSize uint32 `mapstructure:"component_page_size"`
	NumEntities       int    `mapstructure:"num_entities"`
	Iterations        int    `mapstructure:"iterations"`
	Tables            int    `mapstructure:"tables"`
}

func defaultProfile() benchProfile {
	return benchProfile{
		EntityPageSize: ecscore.DefaultEntityPageSize,
		NumEntities:    10000,
		Iterations:     100,
		Tables:         4,
	}
}

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ecsbench",
		Short: "Benchmark ecscore's dense and stable component tables",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a TOML benchmark profile")
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the churn benchmark across N independent tables in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			return runBenchmark(cmd.Context(), p, logger)
		},
	}
	return cmd
}

func loadProfile() (benchProfile, error) {
	p := defaultProfile()
	v := viper.New()
	v.SetConfigType("toml")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return p, fmt.Errorf("reading benchmark profile: %w", err)
		}
		if err := v.Unmarshal(&p); err != nil {
			return p, fmt.Errorf("parsing benchmark profile: %w", err)
		}
	}
	return p, nil
}

// slogAdapter bridges ecscore.Logger onto a *slog.Logger, the pattern the
// pack's MycelicMemory repo uses for its own logging seam.
type slogAdapter struct{ l *slog.Logger }

func (a slogAdapter) Debugf(format string, args ...any) {
	a.l.Debug(fmt.Sprintf(format, args...))
}

// runBenchmark drives p.Tables independent DenseTable/StableTable pairs
// concurrently, one goroutine per table pair, bounded by an errgroup. Each
// goroutine owns its tables exclusively for their lifetime, honoring the
// single-writer-per-table rule the core assumes; only cross-table
// parallelism is exercised here, never concurrent mutation of one table.
func runBenchmark(ctx context.Context, p benchProfile, logger *slog.Logger) error {
	type payload struct{ N int64 }

	start := time.Now()
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < p.Tables; i++ {
		i := i
		g.Go(func() error {
			opts := []ecscore.Option{
				ecscore.WithEntityPageSize(p.EntityPageSize),
				ecscore.WithLogger(slogAdapter{logger.With("table", i)}),
			}
			if p.ComponentPageSize != 0 {
				opts = append(opts, ecscore.WithComponentPageSize(p.ComponentPageSize))
			}
			alloc := ecscore.NewAllocator()
			dense := ecscore.NewDenseTable[payload](opts...)
			stable := ecscore.NewStableTable[payload](opts...)

			for iter := 0; iter < p.Iterations; iter++ {
				r := alloc.AddRange(uint32(p.NumEntities))
				dense.AddRange(r, payload{})
				stable.AddRange(r, payload{})

				dense.Iter(func(c *payload) bool { c.N++; return true })
				stable.Iter(func(c *payload) bool { c.N++; return true })

				dense.RemoveRange(r)
				stable.RemoveRange(r)
				stable.Pack()
				alloc.RemoveRange(r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("benchmark complete",
		"tables", p.Tables,
		"iterations", p.Iterations,
		"entities_per_iteration", p.NumEntities,
		"elapsed", time.Since(start).String(),
	)
	return nil
}
