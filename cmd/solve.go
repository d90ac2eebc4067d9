package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/qdispatch/config"
	"github.com/kilianp07/qdispatch/core/model"
	"github.com/kilianp07/qdispatch/infra/logger"
)

var fleetPath string

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Optimize a fleet snapshot and print the routes",
	RunE:  solve,
}

func init() {
	solveCmd.Flags().StringVarP(&fleetPath, "fleet", "f", "fleet.json", "fleet snapshot file")
	rootCmd.AddCommand(solveCmd)
}

// snapshot is the on-disk input format of the solve command.
type snapshot struct {
	Drivers    []model.Driver    `json:"drivers"`
	Passengers []model.Passenger `json:"passengers"`
}

func solve(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, err := os.ReadFile(fleetPath)
	if err != nil {
		return fmt.Errorf("read fleet: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse fleet: %w", err)
	}

	log := logger.New("solve")
	opt, err := buildOptimizer(ctx, cfg, log)
	if err != nil {
		return err
	}

	routes, err := opt.Optimize(snap.Drivers, snap.Passengers)
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}

	out, err := json.MarshalIndent(routes, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
