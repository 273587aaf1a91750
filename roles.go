/*
 * roles.go, part of convoy.
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
	"bufio"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Role is the structural role of an atom in a hydrogen bond search.
type Role string

// The accepted roles: amide nitrogen, amide hydrogen and carbonyl oxygen.
const (
	RoleN  Role = "n"
	RoleHN Role = "hn"
	RoleO  Role = "o"
)

// Roles is the enumeration order of the roles. When an atom is listed under
// more than one role, the first one in this order wins.
var Roles = []Role{RoleN, RoleHN, RoleO}

// RoleMap maps atom indexes to their role. Atoms not listed have no role.
type RoleMap struct {
	members   map[Role][]int
	byIndex   map[int]Role
	conflicts []error
}

// NewRoleMap builds a RoleMap from lists of atom indexes per role. Keys that are
// not one of the known roles are ignored. Indexes listed under more than one
// role are kept under the first role in Roles and reported by Conflicts.
func NewRoleMap(members map[Role][]int) *RoleMap {
	R := &RoleMap{members: make(map[Role][]int, len(Roles)), byIndex: make(map[int]Role)}
	for _, role := range Roles {
		list := make([]int, 0, len(members[role]))
		for _, i := range members[role] {
			if prev, ok := R.byIndex[i]; ok {
				if prev != role {
					R.conflicts = append(R.conflicts, NewWarning(ErrRoleConflict, "NewRoleMap", "atom %d listed as %q and %q, %q kept", i, prev, role, prev))
				}
				continue
			}
			R.byIndex[i] = role
			list = append(list, i)
		}
		sort.Ints(list)
		R.members[role] = list
	}
	return R
}

// ReadRoleMap decodes a role map from a YAML (or JSON) document of the form
// {n: [...], hn: [...], o: [...]}.
func ReadRoleMap(r io.Reader) (*RoleMap, error) {
	raw := make(map[Role][]int)
	dec := yaml.NewDecoder(bufio.NewReader(r))
	if err := dec.Decode(&raw); err != nil {
		return nil, NewError(ErrFormat, "ReadRoleMap", "can't decode role map: %s", err.Error())
	}
	return NewRoleMap(raw), nil
}

// RoleMapFileRead opens the file name and reads a role map from it.
func RoleMapFileRead(name string) (*RoleMap, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, NewError(ErrFormat, "RoleMapFileRead", "unable to open %s: %s", name, err.Error())
	}
	defer f.Close()
	R, err := ReadRoleMap(f)
	if err != nil {
		return nil, Decorate(err, ErrFormat, "RoleMapFileRead")
	}
	return R, nil
}

// Role returns the role of atom i and true, or "" and false if the atom
// has no role.
func (R *RoleMap) Role(i int) (Role, bool) {
	role, ok := R.byIndex[i]
	return role, ok
}

// Members returns a copy of the sorted indexes with the given role.
func (R *RoleMap) Members(role Role) []int {
	ret := make([]int, len(R.members[role]))
	copy(ret, R.members[role])
	return ret
}

// Conflicts returns the RoleConflict warnings found when building the map.
func (R *RoleMap) Conflicts() []error {
	return R.conflicts
}

// Check returns a RoleConflict warning for each atom index that is not in
// [0, natoms). Those atoms can never be matched, so they are harmless.
func (R *RoleMap) Check(natoms int) []error {
	var ret []error
	for _, role := range Roles {
		for _, i := range R.members[role] {
			if i < 0 || i >= natoms {
				ret = append(ret, NewWarning(ErrRoleConflict, "RoleMap.Check", "atom %d (%q) is outside [0, %d)", i, role, natoms))
			}
		}
	}
	return ret
}

// Partition splits indexes by role, each list in ascending order. Indexes
// without a role are dropped.
func (R *RoleMap) Partition(indexes []int) (n, hn, o []int) {
	for _, i := range indexes {
		role, ok := R.byIndex[i]
		if !ok {
			continue
		}
		switch role {
		case RoleN:
			n = append(n, i)
		case RoleHN:
			hn = append(hn, i)
		case RoleO:
			o = append(o, i)
		}
	}
	sort.Ints(n)
	sort.Ints(hn)
	sort.Ints(o)
	return n, hn, o
}
