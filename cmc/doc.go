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


// Package cmc implements the Coherence Moving Cluster algorithm for convoy
// detection. At each frame the atoms are clustered, and the candidates from
// the previous frame are intersected with the new clusters. A candidate that
// keeps at least m atoms for k or more consecutive frames is a convoy.
//
// The Engine does not cluster by itself: it takes any convoy.Clusterer, such
// as the one in the dbscan package.
package cmc
