/*
 * convoys.go, part of convoy.
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


package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rmera/convoy"
	"github.com/rmera/convoy/cmc"
	"github.com/rmera/convoy/convoyjson"
	"github.com/rmera/convoy/dbscan"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	minFrames  int
	minAtoms   int
	eps        float64
	minSamples float64
	periodic   bool
)

var convoysCmd = &cobra.Command{
	Use:   "convoys",
	Short: "Find the convoys in a trajectory",
	Long: `Clusters the atoms of each frame with DBSCAN and follows the clusters
along the trajectory. Groups of at least m atoms that stay together for k or
more consecutive frames are written as a JSON result.`,
	Args: cobra.NoArgs,
	RunE: runConvoys,
}

func init() {
	convoysCmd.Flags().IntVar(&minFrames, "k", 5, "Minimum number of consecutive frames")
	convoysCmd.Flags().IntVar(&minAtoms, "m", 25, "Minimum number of atoms")
	convoysCmd.Flags().Float64Var(&eps, "eps", 3.5, "DBSCAN neighborhood radius, A")
	convoysCmd.Flags().Float64Var(&minSamples, "min-samples", 5, "DBSCAN minimum samples for a core point")
	convoysCmd.Flags().BoolVar(&periodic, "periodic", false, "Cluster with the minimum image convention in x and y")
}

func runConvoys(cmd *cobra.Command, args []string) error {
	c, err := jobConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("k") {
		c.K = minFrames
	}
	if flags.Changed("m") {
		c.M = minAtoms
	}
	if flags.Changed("eps") {
		c.Eps = eps
	}
	if flags.Changed("min-samples") {
		c.MinSamples = minSamples
	}
	if flags.Changed("periodic") {
		c.Periodic = periodic
	}
	if err := c.Check(); err != nil {
		return err
	}
	T, err := loadTraj(c)
	if err != nil {
		return err
	}

	dopt := dbscan.DefaultOptions()
	dopt.Eps(c.Eps)
	dopt.MinSamples(c.MinSamples)
	dopt.Logger(logger)
	if c.Periodic {
		dopt.Periodic(&convoy.Box{L: c.Box})
	}
	clf, err := dbscan.New(dopt)
	if err != nil {
		return err
	}
	copt := cmc.DefaultOptions()
	copt.K(c.K)
	copt.M(c.M)
	copt.Logger(logger)
	engine, err := cmc.New(clf, copt)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	convoys, err := engine.Run(ctx, T.Frames(), cmc.PositionFeatures(T))
	if err != nil {
		logger.Error("convoy search failed", zap.Error(err), zap.Int("confirmed", len(convoys)))
		return err
	}
	logger.Info("convoy search done", zap.Stringer("stats", cmc.Summarize(convoys)))

	R := convoyjson.NewResult(convoyjson.Params{
		Traj:       c.Traj,
		End:        c.End,
		K:          c.K,
		M:          c.M,
		Eps:        c.Eps,
		MinSamples: c.MinSamples,
		Periodic:   c.Periodic,
		Box:        c.Box,
	}, convoys)
	R.RunID = runID
	if c.Out == "" {
		return convoyjson.Encode(os.Stdout, R)
	}
	if err := convoyjson.WriteFile(c.Out, R); err != nil {
		return err
	}
	for _, v := range convoys {
		b, err := json.Marshal(v.Serialize())
		if err != nil {
			return err
		}
		fmt.Println(string(b))
	}
	return nil
}
