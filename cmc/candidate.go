/*
 * candidate.go, part of convoy.
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
	"sort"
)

// Candidate is a group of atoms that has moved together from Start to End
// (both frame indexes, inclusive). Once returned by the Engine it is a
// confirmed convoy and is not modified anymore.
type Candidate struct {
	indexes  []int //sorted, no repetitions
	assigned bool
	Start    int
	End      int
}

// NewCandidate returns a candidate with the given members, living only in
// frame t. indexes is copied, sorted and deduplicated.
func NewCandidate(indexes []int, t int) *Candidate {
	return &Candidate{indexes: normalize(indexes), Start: t, End: t}
}

// Indexes returns a copy of the member indexes, in ascending order.
func (C *Candidate) Indexes() []int {
	ret := make([]int, len(C.indexes))
	copy(ret, C.indexes)
	return ret
}

// Len returns the number of members.
func (C *Candidate) Len() int {
	return len(C.indexes)
}

// Has returns true if atom i is a member.
func (C *Candidate) Has(i int) bool {
	j := sort.SearchInts(C.indexes, i)
	return j < len(C.indexes) && C.indexes[j] == i
}

// Lifetime returns the number of frames from Start to End, both included.
func (C *Candidate) Lifetime() int {
	return C.End - C.Start + 1
}

// Summary is the serialized form of a convoy.
type Summary struct {
	NumOfIndices int `json:"num_of_indices"`
	StartTime    int `json:"start_time"`
	EndTime      int `json:"end_time"`
}

// Serialize returns the summary of the candidate. The member indexes
// themselves are not part of it.
func (C *Candidate) Serialize() Summary {
	return Summary{NumOfIndices: len(C.indexes), StartTime: C.Start, EndTime: C.End}
}

// String returns a string representation of the candidate.
func (C *Candidate) String() string {
	return fmt.Sprintf("<Candidate indexes=%v, start=%d, end=%d>", C.indexes, C.Start, C.End)
}

// clone returns a deep copy of C.
func (C *Candidate) clone() *Candidate {
	ret := *C
	ret.indexes = C.Indexes()
	return &ret
}

func normalize(indexes []int) []int {
	ret := make([]int, len(indexes))
	copy(ret, indexes)
	sort.Ints(ret)
	out := ret[:0]
	for _, v := range ret {
		if len(out) > 0 && v == out[len(out)-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}

// intersect returns the elements present in both sorted slices.
func intersect(a, b []int) []int {
	ret := make([]int, 0, min(len(a), len(b)))
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			ret = append(ret, a[i])
			i++
			j++
		}
	}
	return ret
}
