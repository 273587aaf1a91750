/*
 * scanner.go, part of convoy.
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


// Package hbscan searches the members of a convoy for N-H···O hydrogen bonds,
// frame by frame.
package hbscan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rmera/convoy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Triple is a hydrogen bond: the indexes of the donor hydrogen, its nitrogen
// and the acceptor oxygen. It is serialized as [hn, n, o].
type Triple struct {
	HN int
	N  int
	O  int
}

// MarshalJSON encodes the triple as a 3-element list.
func (T Triple) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{T.HN, T.N, T.O})
}

// UnmarshalJSON decodes a 3-element list into the triple.
func (T *Triple) UnmarshalJSON(b []byte) error {
	var a []int
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a) != 3 {
		return convoy.NewError(convoy.ErrFormat, "Triple.UnmarshalJSON", "%d elements in hydrogen bond, expected 3", len(a))
	}
	T.HN, T.N, T.O = a[0], a[1], a[2]
	return nil
}

func (T Triple) String() string {
	return fmt.Sprintf("[hn=%d, n=%d, o=%d]", T.HN, T.N, T.O)
}

// Scanner looks for hydrogen bonds among groups of atoms of a trajectory.
// The trajectory and the role map must not change while a Scanner uses them.
// A Scanner can be used from several goroutines.
type Scanner struct {
	traj  convoy.Trajectory
	roles *convoy.RoleMap
	test  *convoy.HBondTest
	cpus  int
	log   *zap.Logger
}

// New returns a Scanner for traj, where the atoms play the roles given in
// roles. Role conflicts and role indexes outside the trajectory are logged,
// not returned.
func New(traj convoy.Trajectory, roles *convoy.RoleMap, options ...*Options) (*Scanner, error) {
	o := DefaultOptions()
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	}
	if traj == nil || roles == nil {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "hbscan.New", "nil trajectory or role map")
	}
	S := &Scanner{traj: traj, roles: roles, test: o.test, cpus: o.cpus, log: o.logger}
	if S.test == nil {
		S.test = convoy.DefaultHBondTest()
	}
	if S.log == nil {
		S.log = zap.NewNop()
	}
	if S.cpus < 1 {
		S.cpus = 1
	}
	for _, w := range roles.Conflicts() {
		S.log.Debug("role map", zap.Error(w))
	}
	for _, w := range roles.Check(traj.Len()) {
		S.log.Debug("role map", zap.Error(w))
	}
	return S, nil
}

// positions returns the coordinates of the atoms in indexes at frame t.
func (S *Scanner) positions(indexes []int, t int) ([]convoy.Position, error) {
	ret := make([]convoy.Position, len(indexes))
	for i, v := range indexes {
		p, err := S.traj.Position(v, t)
		if err != nil {
			return nil, convoy.Decorate(err, convoy.ErrOutOfRange, "hbscan.Scanner.Scan")
		}
		ret[i] = p
	}
	return ret, nil
}

// Scan looks for a hydrogen bond among the atoms in indexes at frame t.
// Hydrogens are tried in ascending index order, then nitrogens, then oxygens,
// and the first triple that passes the test is returned with true.
// If none does, it returns false. Atoms without a role are ignored.
func (S *Scanner) Scan(indexes []int, t int) (Triple, bool, error) {
	if t < 0 || t >= S.traj.Frames() {
		return Triple{}, false, convoy.NewError(convoy.ErrOutOfRange, "hbscan.Scanner.Scan", "frame %d requested, trajectory has %d", t, S.traj.Frames())
	}
	n, hn, o := S.roles.Partition(indexes)
	if len(n) == 0 || len(hn) == 0 || len(o) == 0 {
		return Triple{}, false, nil
	}
	var pos [3][]convoy.Position
	var err error
	for i, list := range [][]int{hn, n, o} {
		if pos[i], err = S.positions(list, t); err != nil {
			return Triple{}, false, err
		}
	}
	for i, h := range pos[0] {
		for j, nit := range pos[1] {
			for l, oxy := range pos[2] {
				if S.test.Test(h, nit, oxy) {
					return Triple{HN: hn[i], N: n[j], O: o[l]}, true, nil
				}
			}
		}
	}
	return Triple{}, false, nil
}

// ScanRange scans frames start to end-1 for the atoms in indexes. Frames are
// processed concurrently, up to the number of CPUs in the options.
// It returns a slice of length end where element t is the hydrogen bond found
// at frame t, or nil if there was none or t < start.
func (S *Scanner) ScanRange(ctx context.Context, indexes []int, start, end int) ([]*Triple, error) {
	if start < 0 || end < start {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "hbscan.Scanner.ScanRange", "invalid frame range [%d, %d)", start, end)
	}
	if end > S.traj.Frames() {
		return nil, convoy.NewError(convoy.ErrOutOfRange, "hbscan.Scanner.ScanRange", "frame range [%d, %d) but trajectory has %d frames", start, end, S.traj.Frames())
	}
	ret := make([]*Triple, end)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(S.cpus)
	for t := start; t < end; t++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tr, ok, err := S.Scan(indexes, t)
			if err != nil {
				return convoy.Decorate(err, convoy.ErrOutOfRange, fmt.Sprintf("hbscan.Scanner.ScanRange: frame %d", t))
			}
			if ok {
				ret[t] = &tr
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	found := 0
	for _, v := range ret {
		if v != nil {
			found++
		}
	}
	S.log.Debug("hydrogen bond scan", zap.Int("start", start), zap.Int("end", end), zap.Int("found", found))
	return ret, nil
}
