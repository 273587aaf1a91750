/*
 * stats.go, part of convoy.
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
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a set of convoys.
type Stats struct {
	N            int
	MeanLifetime float64
	StdLifetime  float64
	MeanSize     float64
	StdSize      float64
	Longest      int //index of the longest lived convoy, the first one on ties. -1 if N is 0.
}

// String returns a string representation of the statistics.
func (S Stats) String() string {
	return fmt.Sprintf("convoys: %d, lifetime: %.2f +/- %.2f frames, size: %.2f +/- %.2f atoms", S.N, S.MeanLifetime, S.StdLifetime, S.MeanSize, S.StdSize)
}

// Summarize obtains the number of convoys, the mean and standard deviation of
// their lifetimes and sizes, and the longest lived one. The standard
// deviations are 0 with less than 2 convoys.
func Summarize(convoys []*Candidate) Stats {
	ret := Stats{N: len(convoys), Longest: -1}
	if len(convoys) == 0 {
		return ret
	}
	lifetimes := make([]float64, len(convoys))
	sizes := make([]float64, len(convoys))
	for i, v := range convoys {
		lifetimes[i] = float64(v.Lifetime())
		sizes[i] = float64(v.Len())
		if ret.Longest < 0 || v.Lifetime() > convoys[ret.Longest].Lifetime() {
			ret.Longest = i
		}
	}
	if len(convoys) < 2 {
		ret.MeanLifetime = lifetimes[0]
		ret.MeanSize = sizes[0]
		return ret
	}
	ret.MeanLifetime, ret.StdLifetime = stat.MeanStdDev(lifetimes, nil)
	ret.MeanSize, ret.StdSize = stat.MeanStdDev(sizes, nil)
	return ret
}
