/*
 * geometric_test.go, part of convoy.
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
	"math"
	"testing"
)

const tol = 1e-9

func TestWrap(Te *testing.T) {
	if w := StdBox.Wrap(-2.475); math.Abs(w-70) > tol {
		Te.Errorf("Wrap(-2.475) = %f, want 70", w)
	}
	if w := StdBox.Wrap(10); w != 10 {
		Te.Errorf("Wrap(10) = %f, want 10", w)
	}
	//one-sided: coordinates past the box are not touched
	if w := StdBox.Wrap(80); w != 80 {
		Te.Errorf("Wrap(80) = %f, want 80", w)
	}
}

func TestAxisDelta(Te *testing.T) {
	cases := []struct {
		x1, x2, want float64
	}{
		{0, 70, 2.475},
		{70, 0, -2.475},
		{10, 20, 10},
		{20, 10, -10},
		{-1, 1, -2}, //the corrected delta keeps the sign of the raw one
		{0, 36.2375, 36.2375}, //exactly half a box is not corrected
		{-2.475, 0, -2.475},
		{5, 5 + 72.475, 0}, //x >= L is not wrapped, but the image correction still applies
	}
	for _, c := range cases {
		if d := StdBox.AxisDelta(c.x1, c.x2); math.Abs(d-c.want) > tol {
			Te.Errorf("AxisDelta(%v, %v) = %v, want %v", c.x1, c.x2, d, c.want)
		}
	}
}

func TestDistance(Te *testing.T) {
	p1 := Position{1, 1, 0}
	p2 := Position{71.475, 71.475, 5}
	d, dx, dy, dz := StdBox.Distance(p1, p2)
	if math.Abs(dx-2) > tol || math.Abs(dy-2) > tol || math.Abs(dz-5) > tol {
		Te.Errorf("components (%f, %f, %f), want (2, 2, 5)", dx, dy, dz)
	}
	if math.Abs(d-math.Sqrt(33)) > tol {
		Te.Errorf("distance %f, want %f", d, math.Sqrt(33))
	}
	//Z is never periodic
	d, _, _, dz = StdBox.Distance(Position{0, 0, 0}, Position{0, 0, 70})
	if d != 70 || dz != 70 {
		Te.Errorf("z distance %f (dz %f), want 70", d, dz)
	}
	small := Box{L: 10}
	d, _, _, _ = small.Distance(Position{1, 0, 0}, Position{9, 0, 0})
	if math.Abs(d-2) > tol {
		Te.Errorf("distance in a 10 A box %f, want 2", d)
	}
}

func TestAngle(Te *testing.T) {
	if a := Angle(Position{1, 0, 0}, Position{-3, 0, 0}); a != math.Pi {
		Te.Errorf("antiparallel angle %v, want pi", a)
	}
	if a := Angle(Position{1, 1, 0}, Position{2, 2, 0}); a != 0 {
		Te.Errorf("parallel angle %v, want 0", a)
	}
	if a := Angle(Position{1, 0, 0}, Position{0, 5, 0}); math.Abs(a-math.Pi/2) > tol {
		Te.Errorf("perpendicular angle %v, want pi/2", a)
	}
	//These would give a cosine slightly off [-1,1] without clamping.
	v := Position{0.1, 0.2, 0.3}
	w := Position{0.1 * 3, 0.2 * 3, 0.3 * 3}
	if a := Angle(v, w); math.IsNaN(a) {
		Te.Errorf("Angle returned NaN for parallel vectors")
	}
	if a := Angle(v, Position{-w[0], -w[1], -w[2]}); math.IsNaN(a) || math.Abs(a-math.Pi) > 1e-7 {
		Te.Errorf("Angle returned %v for antiparallel vectors", a)
	}
}

func TestDegRad(Te *testing.T) {
	if math.Abs(Rad2Deg(HBMinAngle)-135) > 1e-3 {
		Te.Errorf("HBMinAngle is %f degrees", Rad2Deg(HBMinAngle))
	}
	if math.Abs(Deg2Rad(180)-math.Pi) > tol {
		Te.Errorf("Deg2Rad(180) = %f", Deg2Rad(180))
	}
}
