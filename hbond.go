/*
 * hbond.go, part of convoy.
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

import "math"

// Default geometric criteria for an N-H···O hydrogen bond.
const (
	HBMinAngle  float64 = 2.35619 // 135 degrees, excluded
	HBMaxAngle  float64 = math.Pi // 180 degrees, included
	HBMaxDistNO float64 = 3.5     // A, included
)

// HBondTest decides whether a donor hydrogen, its nitrogen and an acceptor
// oxygen form a hydrogen bond. The angle is measured at the hydrogen, between
// the H->O and H->N vectors, and must be in (MinAngle, MaxAngle]. The N-O
// distance must be <= MaxDistNO. All distances use the minimum image
// convention of Box.
type HBondTest struct {
	Box       Box
	MinAngle  float64
	MaxAngle  float64
	MaxDistNO float64
}

// DefaultHBondTest returns the standard near-linear criterion in the
// default box.
func DefaultHBondTest() *HBondTest {
	return &HBondTest{Box: StdBox, MinAngle: HBMinAngle, MaxAngle: HBMaxAngle, MaxDistNO: HBMaxDistNO}
}

// Geometry returns the H-centered angle (radians) and the N-O distance (A)
// for the given triple.
func (H *HBondTest) Geometry(h, n, o Position) (float64, float64) {
	distNO, _, _, _ := H.Box.Distance(n, o)
	_, x, y, z := H.Box.Distance(h, n)
	hn := Position{x, y, z}
	_, x, y, z = H.Box.Distance(h, o)
	ho := Position{x, y, z}
	return Angle(ho, hn), distNO
}

// Test returns true if h, n and o form a hydrogen bond.
func (H *HBondTest) Test(h, n, o Position) bool {
	angle, distNO := H.Geometry(h, n, o)
	return angle > H.MinAngle && angle <= H.MaxAngle && distNO <= H.MaxDistNO
}

// IsHBond tests h, n and o with the default criterion.
func IsHBond(h, n, o Position) bool {
	return DefaultHBondTest().Test(h, n, o)
}
