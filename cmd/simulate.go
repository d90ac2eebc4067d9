package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/qdispatch/config"
	"github.com/kilianp07/qdispatch/core/model"
	"github.com/kilianp07/qdispatch/infra/logger"
	"github.com/kilianp07/qdispatch/simulator"
)

var (
	simDrivers    int
	simPassengers int
	simSeed       int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Optimize a randomly generated fleet and print a summary",
	RunE:  simulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simDrivers, "drivers", 20, "number of drivers")
	simulateCmd.Flags().IntVar(&simPassengers, "passengers", 15, "number of ride requests")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "fleet generation seed (0 = random)")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("simulate")
	opt, err := buildOptimizer(ctx, cfg, log)
	if err != nil {
		return err
	}

	drivers, passengers := simulator.GenerateFleet(simulator.Config{
		Drivers:    simDrivers,
		Passengers: simPassengers,
		Seed:       simSeed,
	})
	routes, err := opt.Optimize(drivers, passengers)
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}

	var assigned int
	var totalKm float64
	for _, segs := range routes {
		if len(segs) > 0 {
			assigned++
		}
		totalKm += model.TotalDistance(segs)
	}
	fmt.Printf("drivers: %d, requests: %d, routes: %d, total distance: %.1f km\n",
		len(drivers), len(passengers), assigned, totalKm)
	return nil
}
