/*
 * dbscan.go, part of convoy.
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


// Package dbscan is a density based clusterer that follows the semantics of
// the DBSCAN implementation in scikit-learn: the eps neighborhood of a point
// includes the point itself and every point at distance <= eps, a point is a
// core point if the weights in its neighborhood add up to at least
// MinSamples, and points that are not reachable from any core point get the
// label -1.
package dbscan

import (
	"math"

	"github.com/rmera/convoy"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// Noise is the label of points that belong to no cluster.
const Noise = -1

// Options contains the parameters of the clusterer.
type Options struct {
	eps        float64
	minSamples float64
	box        *convoy.Box
	logger     *zap.Logger
}

// DefaultOptions returns the parameters used for convoy detection: eps 3.5,
// 5 minimum samples and a non periodic Euclidean metric.
func DefaultOptions() *Options {
	return &Options{eps: 3.5, minSamples: 5, logger: zap.NewNop()}
}

// Eps returns the neighborhood radius and sets it, if a valid value is given.
func (O *Options) Eps(eps ...float64) float64 {
	if len(eps) > 0 && eps[0] > 0 {
		O.eps = eps[0]
	}
	return O.eps
}

// MinSamples returns the weight a neighborhood needs for its center to be
// a core point, and sets it, if a valid value is given.
func (O *Options) MinSamples(n ...float64) float64 {
	if len(n) > 0 && n[0] > 0 {
		O.minSamples = n[0]
	}
	return O.minSamples
}

// Periodic returns the box used for the minimum image metric, or nil if the
// metric is the plain Euclidean one. If a box is given, it is set. With a box,
// all feature vectors must be positions (3 elements).
func (O *Options) Periodic(box ...*convoy.Box) *convoy.Box {
	if len(box) > 0 {
		O.box = box[0]
	}
	return O.box
}

// Logger returns the logger and sets it, if a non-nil one is given.
func (O *Options) Logger(l ...*zap.Logger) *zap.Logger {
	if len(l) > 0 && l[0] != nil {
		O.logger = l[0]
	}
	return O.logger
}

// DBSCAN clusters feature vectors. It implements convoy.Clusterer.
type DBSCAN struct {
	eps        float64
	minSamples float64
	box        *convoy.Box
	log        *zap.Logger
}

// New returns a clusterer with the given options, or the default ones.
func New(options ...*Options) (*DBSCAN, error) {
	o := DefaultOptions()
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	}
	if o.eps <= 0 || math.IsNaN(o.eps) {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "dbscan.New", "eps must be positive, got %g", o.eps)
	}
	if o.minSamples <= 0 {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "dbscan.New", "minimum samples must be positive, got %g", o.minSamples)
	}
	if o.box != nil && o.box.L <= 0 {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "dbscan.New", "box length must be positive, got %g", o.box.L)
	}
	log := o.logger
	if log == nil {
		log = zap.NewNop()
	}
	return &DBSCAN{eps: o.eps, minSamples: o.minSamples, box: o.box, log: log}, nil
}

// distance returns the distance between two feature vectors.
func (D *DBSCAN) distance(a, b []float64) float64 {
	if D.box == nil {
		return floats.Distance(a, b, 2)
	}
	d, _, _, _ := D.box.Distance(convoy.Position{a[0], a[1], a[2]}, convoy.Position{b[0], b[1], b[2]})
	return d
}

// Cluster returns one label per feature vector. Clusters are numbered from 0
// in the order their first core point appears in features. Labels, if given,
// are ignored. Weights, if not nil, must have one element per feature vector.
func (D *DBSCAN) Cluster(features [][]float64, labels []int, weights []float64) ([]int, error) {
	n := len(features)
	if weights != nil && len(weights) != n {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "DBSCAN.Cluster", "%d weights for %d samples", len(weights), n)
	}
	if n == 0 {
		return []int{}, nil
	}
	dims := len(features[0])
	for i, f := range features {
		if len(f) != dims {
			return nil, convoy.NewError(convoy.ErrInvalidParameter, "DBSCAN.Cluster", "sample %d has %d features, sample 0 has %d", i, len(f), dims)
		}
	}
	if D.box != nil && dims != 3 {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "DBSCAN.Cluster", "periodic metric needs 3 features per sample, got %d", dims)
	}
	neighbors := D.neighborhoods(features)
	core := make([]bool, n)
	for i, nb := range neighbors {
		var w float64
		for _, j := range nb {
			if weights == nil {
				w++
			} else {
				w += weights[j]
			}
		}
		core[i] = w >= D.minSamples
	}
	ret := make([]int, n)
	for i := range ret {
		ret[i] = Noise
	}
	label := 0
	stack := make([]int, 0, n)
	for i := range features {
		if ret[i] != Noise || !core[i] {
			continue
		}
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if ret[p] != Noise {
				continue
			}
			ret[p] = label
			if !core[p] {
				continue
			}
			for _, q := range neighbors[p] {
				if ret[q] == Noise {
					stack = append(stack, q)
				}
			}
		}
		label++
	}
	D.log.Debug("dbscan", zap.Int("samples", n), zap.Int("clusters", label))
	return ret, nil
}

// neighborhoods returns, for each sample, the indexes of the samples within
// eps of it, itself included.
func (D *DBSCAN) neighborhoods(features [][]float64) [][]int {
	ret := make([][]int, len(features))
	for i := range features {
		ret[i] = append(ret[i], i)
		for j := i + 1; j < len(features); j++ {
			if D.distance(features[i], features[j]) <= D.eps {
				ret[i] = append(ret[i], j)
				ret[j] = append(ret[j], i)
			}
		}
	}
	return ret
}
