// Package cmd implements the qdispatch command line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/qdispatch/config"
	"github.com/kilianp07/qdispatch/core/costmodel"
	"github.com/kilianp07/qdispatch/core/dispatch"
	coremetrics "github.com/kilianp07/qdispatch/core/metrics"
	"github.com/kilianp07/qdispatch/core/quantum"
	"github.com/kilianp07/qdispatch/core/route"
	"github.com/kilianp07/qdispatch/infra/geo"
	"github.com/kilianp07/qdispatch/infra/logger"
	"github.com/kilianp07/qdispatch/infra/metrics"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "qdispatch",
	Short: "Quantum-inspired ride dispatch optimizer",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// buildOptimizer wires an Optimizer from the configuration. The caller
// owns the returned context cancel for the optional metrics server.
func buildOptimizer(ctx context.Context, cfg *config.Config, log logger.Logger) (*dispatch.Optimizer, error) {
	provider, err := geo.New(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusAddr); err != nil {
				log.Errorf("prom server: %v", err)
			}
		}()
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = coremetrics.NewMultiSink(sinks...)
	}

	builder := costmodel.NewBuilder(provider)
	builder.Weights = cfg.Cost.Weights
	builder.Workers = cfg.Cost.Workers

	refiner := route.NewRefiner(provider)
	refiner.Workers = cfg.Cost.Workers

	engine := quantum.New(cfg.Engine, log)
	return dispatch.NewOptimizer(builder, engine, refiner, log, sink)
}
