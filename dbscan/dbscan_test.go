/*
 * dbscan_test.go, part of convoy.
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


package dbscan

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rmera/convoy"
)

var _ convoy.Clusterer = (*DBSCAN)(nil)

func clusterer(Te *testing.T, eps, minSamples float64, box *convoy.Box) *DBSCAN {
	Te.Helper()
	o := DefaultOptions()
	o.Eps(eps)
	o.MinSamples(minSamples)
	o.Periodic(box)
	D, err := New(o)
	if err != nil {
		Te.Fatal(err)
	}
	return D
}

func TestBlobs(Te *testing.T) {
	D := clusterer(Te, 1, 2, nil)
	X := [][]float64{{0, 0}, {0.5, 0}, {10, 10}, {10, 10.5}, {50, 50}}
	labels, err := D.Cluster(X, nil, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 0, 1, 1, Noise}, labels); diff != "" {
		Te.Errorf("labels (-want +got):\n%s", diff)
	}
}

func TestBorderPoints(Te *testing.T) {
	//only the middle point is a core point, the others are reached from it.
	D := clusterer(Te, 1, 3, nil)
	labels, err := D.Cluster([][]float64{{0}, {1}, {2}, {3.5}}, nil, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 0, 0, Noise}, labels); diff != "" {
		Te.Errorf("labels (-want +got):\n%s", diff)
	}
}

func TestWeights(Te *testing.T) {
	D := clusterer(Te, 1, 3, nil)
	labels, err := D.Cluster([][]float64{{0, 0}, {100, 100}}, nil, []float64{3, 1})
	if err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, Noise}, labels); diff != "" {
		Te.Errorf("labels (-want +got):\n%s", diff)
	}
	if _, err := D.Cluster([][]float64{{0, 0}}, nil, []float64{1, 2}); !errors.Is(err, convoy.ErrInvalidParameter) {
		Te.Errorf("wrong number of weights gave %v", err)
	}
}

func TestPeriodic(Te *testing.T) {
	X := [][]float64{{0.5, 0, 0}, {9.5, 0, 0}}
	D := clusterer(Te, 1.5, 2, &convoy.Box{L: 10})
	labels, err := D.Cluster(X, nil, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 0}, labels); diff != "" {
		Te.Errorf("periodic labels (-want +got):\n%s", diff)
	}
	D = clusterer(Te, 1.5, 2, nil)
	labels, _ = D.Cluster(X, nil, nil)
	if diff := cmp.Diff([]int{Noise, Noise}, labels); diff != "" {
		Te.Errorf("euclidean labels (-want +got):\n%s", diff)
	}
	D = clusterer(Te, 1.5, 2, &convoy.Box{L: 10})
	if _, err := D.Cluster([][]float64{{0, 0}, {1, 1}}, nil, nil); !errors.Is(err, convoy.ErrInvalidParameter) {
		Te.Errorf("2D features with a periodic metric gave %v", err)
	}
}

func TestInvalid(Te *testing.T) {
	if _, err := New(&Options{eps: -1, minSamples: 5}); !errors.Is(err, convoy.ErrInvalidParameter) {
		Te.Errorf("negative eps gave %v", err)
	}
	if _, err := New(&Options{eps: 1}); !errors.Is(err, convoy.ErrInvalidParameter) {
		Te.Errorf("zero minimum samples gave %v", err)
	}
	D, _ := New()
	if _, err := D.Cluster([][]float64{{0, 0}, {1}}, nil, nil); !errors.Is(err, convoy.ErrInvalidParameter) {
		Te.Errorf("ragged features gave %v", err)
	}
	labels, err := D.Cluster(nil, nil, nil)
	if err != nil || len(labels) != 0 {
		Te.Errorf("no samples gave %v, %v", labels, err)
	}
}
