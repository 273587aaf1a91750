/*
 * hbonds.go, part of convoy.
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
	"os"

	"github.com/rmera/convoy"
	"github.com/rmera/convoy/cfg"
	"github.com/rmera/convoy/convoyjson"
	"github.com/rmera/convoy/hbscan"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resultPath  string
	rolesPath   string
	convoyIndex int
	startFrame  int
)

var hbondsCmd = &cobra.Command{
	Use:   "hbonds",
	Short: "Search a convoy for hydrogen bonds",
	Long: `Takes one convoy from a convoys result and, for each frame in
[start, end), looks for the first N-H···O hydrogen bond among its members.
The roles of the atoms (n, hn, o) are read from a YAML or JSON file.
By default the frames are the lifetime of the convoy.`,
	Args: cobra.NoArgs,
	RunE: runHBonds,
}

func init() {
	hbondsCmd.Flags().StringVarP(&resultPath, "result", "r", "", "Result of a convoys run")
	hbondsCmd.Flags().StringVar(&rolesPath, "roles", "", "Role map file")
	hbondsCmd.Flags().IntVarP(&convoyIndex, "index", "i", 0, "Index of the convoy in the result")
	hbondsCmd.Flags().IntVar(&startFrame, "start", 0, "First frame to scan")
	hbondsCmd.MarkFlagRequired("result")
}

func runHBonds(cmd *cobra.Command, args []string) error {
	c, err := jobConfig(cmd)
	if err != nil {
		return err
	}
	R, err := convoyjson.ResultFileRead(resultPath)
	if err != nil {
		return err
	}
	if convoyIndex < 0 || convoyIndex >= len(R.Convoys) {
		return convoy.NewError(convoy.ErrOutOfRange, "hbonds", "convoy %d requested, result has %d", convoyIndex, len(R.Convoys))
	}
	cv := R.Convoys[convoyIndex]
	if c.Traj == "" {
		c.Traj = R.Params.Traj
	}
	if cmd.Flags().Changed("roles") {
		c.Roles = rolesPath
	}
	start, end := cv.StartTime, cv.EndTime+1
	if cmd.Flags().Changed("start") {
		start = startFrame
	}
	if cmd.Flags().Changed("end") {
		end = endFrame
	}
	if c.Roles == "" {
		return convoy.NewError(convoy.ErrInvalidParameter, "hbonds", "no role map given")
	}
	//only the frames that will be scanned are read
	c.End = end
	if err := c.Check(); err != nil {
		return err
	}
	roles, err := convoy.RoleMapFileRead(c.Roles)
	if err != nil {
		return err
	}
	T, err := loadTraj(c)
	if err != nil {
		return err
	}

	opt := hbscan.DefaultOptions()
	if c.Cpus > 0 {
		opt.Cpus(c.Cpus)
	}
	test := convoy.DefaultHBondTest()
	test.Box = convoy.Box{L: scanBox(cmd, c, R.Params)}
	opt.Test(test)
	opt.Logger(logger)
	S, err := hbscan.New(T, roles, opt)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	frames, err := S.ScanRange(ctx, cv.Indices, start, end)
	if err != nil {
		return err
	}
	found := 0
	for _, v := range frames {
		if v != nil {
			found++
		}
	}
	logger.Info("hydrogen bond scan done", zap.Int("convoy", convoyIndex), zap.Int("start", start), zap.Int("end", end), zap.Int("frames with bonds", found))
	H := convoyjson.NewHBonds(R.RunID, convoyIndex, start, end, frames)
	if c.Out == "" {
		return convoyjson.Encode(os.Stdout, H)
	}
	return convoyjson.WriteFile(c.Out, H)
}

// scanBox returns the box length for a hydrogen bond scan. The box given in
// the command line or in a configuration file is used if there is one,
// otherwise, the one the convoys were found with.
func scanBox(cmd *cobra.Command, c *cfg.Cfg, p convoyjson.Params) float64 {
	if cmd.Flags().Changed("box") || configPath != "" || p.Box <= 0 {
		return c.Box
	}
	return p.Box
}
