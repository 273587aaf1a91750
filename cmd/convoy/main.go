/*
 * main.go, part of convoy.
 *
 * Copyright 2024 The convoy authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */


// Command convoy finds groups of atoms that move together along a
// molecular dynamics trajectory, and searches them for hydrogen bonds.
//
// Usage:
//
//	convoy convoys --config job.yaml [--traj prod.npy] [--k 5] [--m 25] [--eps 3.5] [--end 500] [--out result.json]
//	convoy hbonds --result result.json --index 0 --roles roles.yaml [--traj prod.npy] [--start s] [--end e] [--out hb.json]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rmera/convoy"
	"github.com/rmera/convoy/cfg"
	"github.com/rmera/convoy/traj/npy"
	"github.com/rmera/convoy/traj/stf"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Job flags shared by the subcommands
	trajPath   string
	trajFormat string
	endFrame   int
	outPath    string
	boxLength  float64
	cpus       int

	logger *zap.Logger
	runID  string
)

var rootCmd = &cobra.Command{
	Use:   "convoy",
	Short: "Find convoys of atoms in a trajectory, and hydrogen bonds in them",
	Long: `convoy finds convoys: groups of at least m atoms that stay in the same
density-based cluster for at least k consecutive frames of a trajectory.
The members of a convoy can then be searched for N-H···O hydrogen bonds,
frame by frame.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		runID = uuid.NewString()
		logger = l.With(zap.String("run", runID))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML job configuration")
	rootCmd.PersistentFlags().StringVar(&trajPath, "traj", "", "Trajectory file (.npy or STF)")
	rootCmd.PersistentFlags().StringVar(&trajFormat, "format", "", "Trajectory format: npy or stf (default: from the extension)")
	rootCmd.PersistentFlags().IntVar(&endFrame, "end", 500, "Number of frames to read")
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "Output file, .zst for compressed (default: standard output)")
	rootCmd.PersistentFlags().Float64Var(&boxLength, "box", convoy.BoxLength, "Length of the periodic box in x and y, A")
	rootCmd.PersistentFlags().IntVar(&cpus, "cpus", 0, "Frames processed concurrently (default: one per CPU)")

	rootCmd.AddCommand(convoysCmd)
	rootCmd.AddCommand(hbondsCmd)
}

// jobConfig reads the configuration file, if one was given, and overrides it
// with the flags set in the command line.
func jobConfig(cmd *cobra.Command) (*cfg.Cfg, error) {
	c := cfg.Default()
	if configPath != "" {
		var err error
		if c, err = cfg.New(configPath); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("traj") {
		c.Traj = trajPath
	}
	if flags.Changed("format") {
		c.Format = cfg.Format(trajFormat)
	}
	if flags.Changed("end") {
		c.End = endFrame
	}
	if flags.Changed("out") {
		c.Out = outPath
	}
	if flags.Changed("box") {
		c.Box = boxLength
	}
	if flags.Changed("cpus") {
		c.Cpus = cpus
	}
	return c, nil
}

// loadTraj reads the first c.End frames of the trajectory in c.
func loadTraj(c *cfg.Cfg) (*convoy.MemTraj, error) {
	var T *convoy.MemTraj
	var err error
	switch c.TrajFormat() {
	case cfg.FNPY:
		T, err = npy.Load(c.Traj, c.End)
	default:
		T, _, err = stf.Load(c.Traj, c.End)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("trajectory read", zap.String("file", c.Traj), zap.Int("atoms", T.Len()), zap.Int("frames", T.Frames()))
	return T, nil
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
