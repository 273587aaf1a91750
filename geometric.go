/*
 * geometric.go, part of convoy.
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

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// BoxLength is the default length, in A, of the simulation box along the
// periodic X and Y axes.
const BoxLength float64 = 72.475

// appzero is used to correct floating point errors. Everything equal or less
// than this is considered zero.
const appzero float64 = 0.000000000001

// Position is a point in space, in A.
type Position [3]float64

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", p[0], p[1], p[2])
}

// Box is a simulation box periodic in X and Y, with side L. Z is never periodic.
// The zero value is not useful, use StdBox or set L.
type Box struct {
	L float64
}

// StdBox is the box used when nothing else is given.
var StdBox = Box{L: BoxLength}

// Half returns half the side of the box.
func (B Box) Half() float64 {
	return B.L / 2
}

// Wrap moves a negative coordinate into the box by adding one box length.
// Coordinates larger than the box are returned unchanged.
func (B Box) Wrap(x float64) float64 {
	if x < 0 {
		return x + B.L
	}
	return x
}

// AxisDelta returns x2-x1 along a periodic axis. When the difference is
// larger than half a box, its magnitude is replaced by the minimum image one,
// but the sign of the raw difference is kept.
func (B Box) AxisDelta(x1, x2 float64) float64 {
	d := B.Wrap(x2) - B.Wrap(x1)
	if a := math.Abs(d); a > B.Half() {
		return math.Copysign(B.L-a, d)
	}
	return d
}

// Delta returns the minimum-image vector going from p1 to p2. Only the X and Y
// components are corrected.
func (B Box) Delta(p1, p2 Position) Position {
	return Position{B.AxisDelta(p1[0], p2[0]), B.AxisDelta(p1[1], p2[1]), p2[2] - p1[2]}
}

// Distance returns the minimum-image distance between p1 and p2, followed by
// the X, Y and Z components of the vector going from p1 to p2.
func (B Box) Distance(p1, p2 Position) (float64, float64, float64, float64) {
	d := B.Delta(p1, p2)
	return math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2]), d[0], d[1], d[2]
}

// Angle returns the angle, in radians, between the vectors v1 and v2.
// The cosine is clamped to [-1, 1] before the arccosine, so floating point
// overshoot never produces NaN.
func Angle(v1, v2 Position) float64 {
	normproduct := floats.Norm(v1[:], 2) * floats.Norm(v2[:], 2)
	argument := floats.Dot(v1[:], v2[:]) / normproduct
	if argument > 1 {
		argument = 1
	} else if argument < -1 {
		argument = -1
	}
	angle := math.Acos(argument)
	if math.Abs(angle) <= appzero {
		return 0.00
	}
	return angle
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(f float64) float64 {
	return f * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(f float64) float64 {
	return f * 180 / math.Pi
}
