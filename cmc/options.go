/*
 * options.go, part of convoy.
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

import "go.uber.org/zap"

// Options contains the parameters of the CMC engine.
type Options struct {
	k      int
	m      int
	logger  *zap.Logger
	weights []float64
	labels  []int
}

// DefaultOptions returns the options used by the convoy jobs when nothing
// else is given: convoys of at least 25 atoms that live 5 frames or more.
func DefaultOptions() *Options {
	r := new(Options)
	r.k = 5
	r.m = 25
	r.logger = zap.NewNop()
	return r
}

// K returns the minimum number of consecutive frames for a candidate to become
// a convoy, and sets it to a new value, if a valid one is given.
func (O *Options) K(k ...int) int {
	if len(k) > 0 && k[0] > 0 {
		O.k = k[0]
	}
	return O.k
}

// M returns the minimum number of atoms a cluster, or the intersection of a
// candidate with a cluster, must have to count, and sets it to a new value,
// if a valid one is given.
func (O *Options) M(m ...int) int {
	if len(m) > 0 && m[0] > 0 {
		O.m = m[0]
	}
	return O.m
}

// Logger returns the logger used by the engine, and sets it, if a non-nil
// one is given.
func (O *Options) Logger(l ...*zap.Logger) *zap.Logger {
	if len(l) > 0 && l[0] != nil {
		O.logger = l[0]
	}
	return O.logger
}

// Weights returns the per-atom sample weights passed to the clusterer, and
// sets them, if a slice is given. Weights are indexed by atom, not by the
// position of the atom among those defined in a frame. A nil slice means
// unweighted clustering.
func (O *Options) Weights(w ...[]float64) []float64 {
	if len(w) > 0 {
		O.weights = w[0]
	}
	return O.weights
}

// Labels returns the per-atom labels passed to the clusterer, and sets them,
// if a slice is given. Like weights, labels are indexed by atom.
func (O *Options) Labels(l ...[]int) []int {
	if len(l) > 0 {
		O.labels = l[0]
	}
	return O.labels
}
