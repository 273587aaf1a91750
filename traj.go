/*
 * traj.go, part of convoy.
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
	"gonum.org/v1/gonum/mat"
)

// MemTraj is a trajectory kept in memory. Each frame is a matrix with one row
// per atom and one column per cartesian coordinate.
// A MemTraj must not be modified while it is being analyzed.
type MemTraj struct {
	natoms int
	frames []*mat.Dense
}

// NewMemTraj returns an empty trajectory for natoms atoms.
func NewMemTraj(natoms int) *MemTraj {
	return &MemTraj{natoms: natoms, frames: make([]*mat.Dense, 0, 100)}
}

// Len returns the number of atoms per frame.
func (M *MemTraj) Len() int {
	return M.natoms
}

// Frames returns the number of frames.
func (M *MemTraj) Frames() int {
	return len(M.frames)
}

// Append adds a frame at the end of the trajectory. The matrix is not
// copied.
func (M *MemTraj) Append(frame *mat.Dense) error {
	r, c := frame.Dims()
	if r != M.natoms || c != 3 {
		return NewError(ErrInvalidParameter, "MemTraj.Append", "frame is %dx%d, expected %dx3", r, c, M.natoms)
	}
	M.frames = append(M.frames, frame)
	return nil
}

// AppendData adds a frame built from data, a row-major slice with 3*Len()
// elements (x1, y1, z1, x2, ...). The slice is not copied.
func (M *MemTraj) AppendData(data []float64) error {
	if len(data) != 3*M.natoms {
		return NewError(ErrInvalidParameter, "MemTraj.AppendData", "%d values given, %d expected", len(data), 3*M.natoms)
	}
	M.frames = append(M.frames, mat.NewDense(M.natoms, 3, data))
	return nil
}

// Frame returns a view of the given frame.
func (M *MemTraj) Frame(frame int) (*mat.Dense, error) {
	if frame < 0 || frame >= len(M.frames) {
		return nil, NewError(ErrOutOfRange, "MemTraj.Frame", "frame %d requested, trajectory has %d", frame, len(M.frames))
	}
	return M.frames[frame], nil
}

// Position returns the coordinates of the atom entity in the given frame.
func (M *MemTraj) Position(entity, frame int) (Position, error) {
	if frame < 0 || frame >= len(M.frames) {
		return Position{}, NewError(ErrOutOfRange, "MemTraj.Position", "frame %d requested, trajectory has %d", frame, len(M.frames))
	}
	if entity < 0 || entity >= M.natoms {
		return Position{}, NewError(ErrOutOfRange, "MemTraj.Position", "atom %d requested, trajectory has %d", entity, M.natoms)
	}
	f := M.frames[frame]
	return Position{f.At(entity, 0), f.At(entity, 1), f.At(entity, 2)}, nil
}

// Features returns one feature vector (x, y, z) per atom for the given frame.
// The vectors are copies.
func (M *MemTraj) Features(frame int) ([][]float64, error) {
	f, err := M.Frame(frame)
	if err != nil {
		return nil, Decorate(err, ErrOutOfRange, "MemTraj.Features")
	}
	ret := make([][]float64, M.natoms)
	for i := range ret {
		ret[i] = mat.Row(nil, i, f)
	}
	return ret, nil
}

// Truncate drops all frames from end on. It does nothing if the trajectory
// has end frames or less.
func (M *MemTraj) Truncate(end int) {
	if end >= 0 && end < len(M.frames) {
		M.frames = M.frames[:end]
	}
}
