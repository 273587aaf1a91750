/*
 * interfaces.go, part of convoy.
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

package convoy

// Trajectory gives random access to the positions of a fixed set of atoms
// over a fixed number of frames.
type Trajectory interface {
	//Returns the number of atoms per frame
	Len() int

	//Returns the number of frames
	Frames() int

	//Position returns the coordinates of atom entity in the given frame.
	//Out of range requests return an error, never a default position.
	Position(entity, frame int) (Position, error)
}

// Clusterer is a clustering routine that is run once per frame.
// Cluster takes one feature vector per element and returns one label per
// element, in the same order. labels and weights are optional (nil) and are
// passed through to the routine, which may ignore them.
// Labels are opaque: the only thing that matters is whether two labels are
// equal. No value is reserved for "unclustered" elements.
type Clusterer interface {
	Cluster(features [][]float64, labels []int, weights []float64) ([]int, error)
}

// ClustererFunc allows a plain function to be used as a Clusterer.
type ClustererFunc func(features [][]float64, labels []int, weights []float64) ([]int, error)

// Cluster calls f.
func (f ClustererFunc) Cluster(features [][]float64, labels []int, weights []float64) ([]int, error) {
	return f(features, labels, weights)
}
