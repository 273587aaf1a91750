/*
 * doc.go, part of convoy.
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

/*
Package convoy is the main package of the convoy library. It provides the
geometric building blocks for finding groups of atoms that travel together
along a molecular dynamics trajectory ("convoys") and for testing, frame by
frame, whether a convoy holds a backbone N-H···O hydrogen bond.


	**Capabilities**


    Minimum-image distances in a box that is periodic along X and Y only
	(the Z axis is not periodic). The default box is 72.475 A wide.

    A geometric hydrogen bond test (N-O distance plus H-N / H-O angle).

    Role maps that classify atoms as amide nitrogen (n), amide hydrogen (hn)
	or carbonyl oxygen (o), read from YAML or JSON files.

    An in-memory trajectory (MemTraj) with bounds-checked access. Readers for
	NumPy (.npy) and STF trajectories live in the traj/npy and traj/stf
	subpackages.

The convoy search itself (the Coherence Moving Cluster algorithm) lives in the
cmc subpackage, the per-frame hydrogen bond scan in hbscan and a density-based
clusterer that can feed the CMC engine in dbscan.

Positions are in Angstrom. In a MemTraj each frame is a gonum *mat.Dense with
one row per atom and 3 columns.
*/
package convoy
