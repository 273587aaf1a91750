/*
 * engine.go, part of convoy.
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

package cmc

import (
	"context"
	"fmt"
	"sort"

	"github.com/rmera/convoy"
	"go.uber.org/zap"
)

// FeatureSource returns the feature vectors of all atoms for frame t, one per
// atom, in atom order. A nil vector means the atom is not defined in that frame.
type FeatureSource func(t int) ([][]float64, error)

// Engine runs the Coherence Moving Cluster algorithm. An Engine keeps the set of
// active candidates between calls to Step, so it must not be shared by
// concurrent runs.
type Engine struct {
	clf     convoy.Clusterer
	k       int
	m       int
	log     *zap.Logger
	weights []float64
	labels  []int
	active  []*Candidate
	convoys []*Candidate
}

// New returns an engine that will use clf to cluster each frame. If no
// options are given, DefaultOptions are used.
func New(clf convoy.Clusterer, options ...*Options) (*Engine, error) {
	o := DefaultOptions()
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	}
	if clf == nil {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "cmc.New", "nil clusterer")
	}
	if o.k < 1 || o.m < 1 {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "cmc.New", "k and m must be at least 1, got k=%d m=%d", o.k, o.m)
	}
	log := o.logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{clf: clf, k: o.k, m: o.m, log: log, weights: o.weights, labels: o.labels}, nil
}

// Reset drops all active candidates and confirmed convoys.
func (E *Engine) Reset() {
	E.active = nil
	E.convoys = nil
}

// Active returns a copy of the candidates that are still being followed.
func (E *Engine) Active() []*Candidate {
	ret := make([]*Candidate, len(E.active))
	for i, v := range E.active {
		ret[i] = v.clone()
	}
	return ret
}

// Convoys returns the convoys confirmed so far, in the order they were
// confirmed.
func (E *Engine) Convoys() []*Candidate {
	ret := make([]*Candidate, len(E.convoys))
	copy(ret, E.convoys)
	return ret
}

// cluster is the set of atoms that got the same label in one frame.
type cluster struct {
	label    int
	indexes  []int
	assigned bool
}

// Step processes frame t, given the feature vectors of all atoms in that
// frame. last must be true for the last frame of the trajectory, so the
// candidates still alive are confirmed if they are old enough.
// It returns the convoys confirmed in this frame.
// If fewer than m atoms are defined in the frame, the frame is skipped and
// nothing changes.
func (E *Engine) Step(t int, features [][]float64, last bool) ([]*Candidate, error) {
	defined := make([]int, 0, len(features))
	for i, f := range features {
		if f != nil {
			defined = append(defined, i)
		}
	}
	if len(defined) < E.m {
		E.log.Debug("frame skipped", zap.Int("frame", t), zap.Int("defined", len(defined)), zap.Int("m", E.m))
		return nil, nil
	}
	clusters, err := E.clusterize(t, features, defined)
	if err != nil {
		return nil, err
	}
	next, emitted := advance(E.active, clusters, t, E.k, E.m, last)
	E.active = next
	E.convoys = append(E.convoys, emitted...)
	for _, v := range emitted {
		E.log.Debug("convoy confirmed", zap.Int("frame", t), zap.Int("atoms", v.Len()), zap.Int("start", v.Start), zap.Int("end", v.End))
	}
	return emitted, nil
}

// clusterize calls the clusterer on the defined atoms of frame t and groups
// them by label, in ascending label order.
func (E *Engine) clusterize(t int, features [][]float64, defined []int) ([]*cluster, error) {
	if E.weights != nil && len(E.weights) != len(features) {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "cmc.Engine.Step", "frame %d: %d weights for %d atoms", t, len(E.weights), len(features))
	}
	if E.labels != nil && len(E.labels) != len(features) {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "cmc.Engine.Step", "frame %d: %d labels given for %d atoms", t, len(E.labels), len(features))
	}
	values, weights, given := features, E.weights, E.labels
	if len(defined) != len(features) {
		values = make([][]float64, len(defined))
		for i, v := range defined {
			values[i] = features[v]
		}
		if weights != nil {
			weights = make([]float64, len(defined))
			for i, v := range defined {
				weights[i] = E.weights[v]
			}
		}
		if given != nil {
			given = make([]int, len(defined))
			for i, v := range defined {
				given[i] = E.labels[v]
			}
		}
	}
	labels, err := E.clf.Cluster(values, given, weights)
	if err != nil {
		return nil, convoy.Wrap(err, convoy.ErrClusteringFailure, fmt.Sprintf("cmc.Engine.Step: frame %d", t))
	}
	if len(labels) != len(values) {
		return nil, convoy.NewError(convoy.ErrClusteringFailure, "cmc.Engine.Step", "frame %d: %d labels for %d elements", t, len(labels), len(values))
	}
	bylabel := make(map[int]*cluster)
	for i, l := range labels {
		c, ok := bylabel[l]
		if !ok {
			c = &cluster{label: l}
			bylabel[l] = c
		}
		c.indexes = append(c.indexes, defined[i])
	}
	ret := make([]*cluster, 0, len(bylabel))
	for _, c := range bylabel {
		ret = append(ret, c)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].label < ret[j].label })
	return ret, nil
}

// advance computes, from the candidates active before frame t and the clusters
// of frame t, the candidates active after t and the convoys confirmed at t.
// active is not modified. Each candidate is matched against every cluster,
// and every cluster that shares at least m atoms with it replaces its members,
// so the last such cluster, in label order, wins. Clusters not matched by any
// candidate become new candidates.
func advance(active []*Candidate, clusters []*cluster, t, k, m int, last bool) (next, emitted []*Candidate) {
	next = make([]*Candidate, 0, len(active)+len(clusters))
	for _, c := range active {
		nc := c.clone()
		nc.assigned = false
		for _, cl := range clusters {
			overlap := intersect(cl.indexes, c.indexes)
			if len(overlap) < m {
				continue
			}
			nc.indexes = overlap
			nc.End = t
			nc.assigned = true
			cl.assigned = true
		}
		if (!nc.assigned || last) && nc.Lifetime() >= k {
			emitted = append(emitted, nc.clone())
		}
		if nc.assigned {
			next = append(next, nc)
		}
	}
	for _, cl := range clusters {
		if cl.assigned {
			continue
		}
		next = append(next, &Candidate{indexes: cl.indexes, Start: t, End: t})
	}
	return next, emitted
}

// Run resets the engine and processes frames 0 to frames-1, taking the
// feature vectors from source. The context is checked between frames.
// It returns the confirmed convoys in the order they were confirmed. On error,
// the convoys confirmed before the failing frame are returned with it.
func (E *Engine) Run(ctx context.Context, frames int, source FeatureSource) ([]*Candidate, error) {
	E.Reset()
	for t := 0; t < frames; t++ {
		if err := ctx.Err(); err != nil {
			return E.Convoys(), err
		}
		features, err := source(t)
		if err != nil {
			return E.Convoys(), convoy.Decorate(err, convoy.ErrOutOfRange, fmt.Sprintf("cmc.Engine.Run: frame %d", t))
		}
		if _, err := E.Step(t, features, t == frames-1); err != nil {
			return E.Convoys(), convoy.Decorate(err, convoy.ErrClusteringFailure, "cmc.Engine.Run")
		}
	}
	return E.Convoys(), nil
}

// FitPredict runs the engine on data laid out as X[atom][frame], where each
// element is the feature vector of an atom in a frame. The number of frames is
// taken from the first atom. Atoms with fewer frames are undefined in the
// frames they lack.
func (E *Engine) FitPredict(X [][][]float64) ([]*Candidate, error) {
	if len(X) == 0 {
		E.Reset()
		return nil, nil
	}
	source := func(t int) ([][]float64, error) {
		ret := make([][]float64, len(X))
		for i, row := range X {
			if t < len(row) {
				ret[i] = row[t]
			}
		}
		return ret, nil
	}
	return E.Run(context.Background(), len(X[0]), source)
}

// featurer is implemented by trajectories that can give all the feature
// vectors of a frame at once, like convoy.MemTraj.
type featurer interface {
	Features(frame int) ([][]float64, error)
}

// PositionFeatures returns a FeatureSource that uses the cartesian coordinates
// of each atom in T as its feature vector.
func PositionFeatures(T convoy.Trajectory) FeatureSource {
	if f, ok := T.(featurer); ok {
		return f.Features
	}
	return func(t int) ([][]float64, error) {
		ret := make([][]float64, T.Len())
		for i := range ret {
			p, err := T.Position(i, t)
			if err != nil {
				return nil, convoy.Decorate(err, convoy.ErrOutOfRange, "PositionFeatures")
			}
			ret[i] = []float64{p[0], p[1], p[2]}
		}
		return ret, nil
	}
}
