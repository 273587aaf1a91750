/*
 * engine_test.go, part of convoy.
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
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rmera/convoy"
)

// byLabel is a clusterer that reads the label of each element from its
// single feature. It counts how many times it was called.
type byLabel struct {
	calls int
}

func (B *byLabel) Cluster(features [][]float64, labels []int, weights []float64) ([]int, error) {
	B.calls++
	ret := make([]int, len(features))
	for i, f := range features {
		ret[i] = int(f[0])
	}
	return ret, nil
}

// frames builds X[atom][frame] from per-frame label lists.
func frames(labels ...[]int) [][][]float64 {
	X := make([][][]float64, len(labels[0]))
	for _, frame := range labels {
		for i, l := range frame {
			X[i] = append(X[i], []float64{float64(l)})
		}
	}
	return X
}

func engine(Te *testing.T, k, m int) (*Engine, *byLabel) {
	Te.Helper()
	o := DefaultOptions()
	o.K(k)
	o.M(m)
	clf := new(byLabel)
	E, err := New(clf, o)
	if err != nil {
		Te.Fatal(err)
	}
	return E, clf
}

type conv struct {
	Indexes    []int
	Start, End int
}

func simple(cands []*Candidate) []conv {
	ret := make([]conv, 0, len(cands))
	for _, c := range cands {
		ret = append(ret, conv{c.Indexes(), c.Start, c.End})
	}
	return ret
}

func TestMinimumLifetime(Te *testing.T) {
	const k = 3
	E, _ := engine(Te, k, 2)
	//atoms 0 and 1 together for k frames, then apart.
	X := frames([]int{0, 0, 1}, []int{0, 0, 1}, []int{0, 0, 1}, []int{0, 1, 2})
	convoys, err := E.FitPredict(X)
	if err != nil {
		Te.Fatal(err)
	}
	want := []conv{{[]int{0, 1}, 0, k - 1}}
	if diff := cmp.Diff(want, simple(convoys)); diff != "" {
		Te.Errorf("convoys (-want +got):\n%s", diff)
	}
	//only k-1 frames together
	X = frames([]int{0, 0, 1}, []int{0, 0, 1}, []int{0, 1, 2}, []int{0, 1, 2})
	convoys, err = E.FitPredict(X)
	if err != nil {
		Te.Fatal(err)
	}
	if len(convoys) != 0 {
		Te.Errorf("a pair together for k-1 frames was reported: %v", convoys)
	}
}

func TestConfirmedAtLastFrame(Te *testing.T) {
	E, _ := engine(Te, 2, 2)
	X := frames([]int{4, 4, 4}, []int{4, 4, 9}, []int{4, 4, 9})
	convoys, err := E.FitPredict(X)
	if err != nil {
		Te.Fatal(err)
	}
	//{0,1} is still alive at the last frame.
	want := []conv{{[]int{0, 1}, 0, 2}}
	if diff := cmp.Diff(want, simple(convoys)); diff != "" {
		Te.Errorf("convoys (-want +got):\n%s", diff)
	}
	for _, c := range convoys {
		s := c.Serialize()
		if s.NumOfIndices != c.Len() || s.StartTime != c.Start || s.EndTime != c.End {
			Te.Errorf("summary %+v does not match %v", s, c)
		}
	}
}

func TestLastMatchWins(Te *testing.T) {
	E, _ := engine(Te, 1, 2)
	if _, err := E.Step(0, [][]float64{{3}, {3}, {3}, {3}, {3}}, false); err != nil {
		Te.Fatal(err)
	}
	//The candidate shares 3 atoms with the cluster labeled -1 and 2 with the
	//one labeled 7. Labels are visited in ascending order, so 7 wins.
	if _, err := E.Step(1, [][]float64{{-1}, {-1}, {-1}, {7}, {7}}, false); err != nil {
		Te.Fatal(err)
	}
	want := []conv{{[]int{3, 4}, 0, 1}}
	if diff := cmp.Diff(want, simple(E.Active())); diff != "" {
		Te.Errorf("active after frame 1 (-want +got):\n%s", diff)
	}
	//Swapping the labels makes the larger overlap the last one.
	E.Reset()
	E.Step(0, [][]float64{{3}, {3}, {3}, {3}, {3}}, false)
	E.Step(1, [][]float64{{7}, {7}, {7}, {-1}, {-1}}, false)
	want = []conv{{[]int{0, 1, 2}, 0, 1}}
	if diff := cmp.Diff(want, simple(E.Active())); diff != "" {
		Te.Errorf("active after frame 1, swapped labels (-want +got):\n%s", diff)
	}
}

func TestSkipUndersizedFrame(Te *testing.T) {
	E, clf := engine(Te, 1, 2)
	if _, err := E.Step(0, [][]float64{{0}, {0}, {1}}, false); err != nil {
		Te.Fatal(err)
	}
	before := simple(E.Active())
	calls := clf.calls
	emitted, err := E.Step(1, [][]float64{nil, {0}, nil}, false)
	if err != nil || emitted != nil {
		Te.Fatalf("undersized frame gave %v, %v", emitted, err)
	}
	if diff := cmp.Diff(before, simple(E.Active())); diff != "" {
		Te.Errorf("active set changed in a skipped frame (-before +after):\n%s", diff)
	}
	if clf.calls != calls {
		Te.Errorf("clusterer called for a skipped frame")
	}
	//the skipped frame does not break the candidate
	E.Step(2, [][]float64{{0}, {0}, {1}}, false)
	want := []conv{{[]int{0, 1}, 0, 2}}
	if diff := cmp.Diff(want, simple(E.Active())[:1]); diff != "" {
		Te.Errorf("active after frame 2 (-want +got):\n%s", diff)
	}
}

func TestUndefinedAtoms(Te *testing.T) {
	E, _ := engine(Te, 1, 1)
	if _, err := E.Step(0, [][]float64{{0}, nil, {0}, {1}}, false); err != nil {
		Te.Fatal(err)
	}
	want := []conv{{[]int{0, 2}, 0, 0}, {[]int{3}, 0, 0}}
	if diff := cmp.Diff(want, simple(E.Active())); diff != "" {
		Te.Errorf("active (-want +got):\n%s", diff)
	}
}

func TestClusteringFailure(Te *testing.T) {
	boom := errors.New("no convergence")
	calls := 0
	clf := convoy.ClustererFunc(func(f [][]float64, l []int, w []float64) ([]int, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return make([]int, len(f)), nil
	})
	o := DefaultOptions()
	o.K(1)
	o.M(1)
	E, err := New(clf, o)
	if err != nil {
		Te.Fatal(err)
	}
	_, err = E.FitPredict(frames([]int{0, 0}, []int{0, 0}, []int{0, 0}))
	if !errors.Is(err, convoy.ErrClusteringFailure) || !errors.Is(err, boom) {
		Te.Errorf("got %v, want a clustering failure caused by %v", err, boom)
	}
	if calls != 2 {
		Te.Errorf("the run should stop at the failing frame, clusterer called %d times", calls)
	}
	short := convoy.ClustererFunc(func(f [][]float64, l []int, w []float64) ([]int, error) {
		return []int{0}, nil
	})
	E, _ = New(short, o)
	if _, err := E.Step(0, [][]float64{{1}, {2}}, false); !errors.Is(err, convoy.ErrClusteringFailure) {
		Te.Errorf("wrong number of labels gave %v", err)
	}
}

func TestWeightsAndLabels(Te *testing.T) {
	var gotw [][]float64
	var gotl [][]int
	clf := convoy.ClustererFunc(func(f [][]float64, l []int, w []float64) ([]int, error) {
		gotw = append(gotw, w)
		gotl = append(gotl, l)
		return make([]int, len(f)), nil
	})
	o := DefaultOptions()
	o.K(1)
	o.M(1)
	o.Weights([]float64{1, 2, 3, 4})
	o.Labels([]int{10, 20, 30, 40})
	E, err := New(clf, o)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := E.Step(0, [][]float64{{0}, {0}, {0}, {0}}, false); err != nil {
		Te.Fatal(err)
	}
	//atom 1 is undefined, so its weight and label must be left out.
	if _, err := E.Step(1, [][]float64{{0}, nil, {0}, {0}}, false); err != nil {
		Te.Fatal(err)
	}
	wantw := [][]float64{{1, 2, 3, 4}, {1, 3, 4}}
	if diff := cmp.Diff(wantw, gotw); diff != "" {
		Te.Errorf("weights (-want +got):\n%s", diff)
	}
	wantl := [][]int{{10, 20, 30, 40}, {10, 30, 40}}
	if diff := cmp.Diff(wantl, gotl); diff != "" {
		Te.Errorf("labels (-want +got):\n%s", diff)
	}
	o.Weights([]float64{1, 2})
	E, _ = New(clf, o)
	if _, err := E.Step(0, [][]float64{{0}, {0}, {0}, {0}}, false); !errors.Is(err, convoy.ErrInvalidParameter) {
		Te.Errorf("2 weights for 4 atoms gave %v", err)
	}
	//without options the clusterer gets nil weights and labels
	plain := DefaultOptions()
	plain.M(1)
	E, _ = New(clf, plain)
	gotw, gotl = nil, nil
	E.Step(0, [][]float64{{0}, {0}}, false)
	if len(gotw) != 1 {
		Te.Fatalf("clusterer called %d times, want 1", len(gotw))
	}
	if gotw[0] != nil || gotl[0] != nil {
		Te.Errorf("unweighted engine passed %v %v", gotw[0], gotl[0])
	}
}

func TestRunCancelled(Te *testing.T) {
	E, _ := engine(Te, 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := func(t int) ([][]float64, error) { return [][]float64{{0}}, nil }
	if _, err := E.Run(ctx, 3, source); !errors.Is(err, context.Canceled) {
		Te.Errorf("cancelled run gave %v", err)
	}
}

func TestNewInvalid(Te *testing.T) {
	if _, err := New(nil); !errors.Is(err, convoy.ErrInvalidParameter) {
		Te.Errorf("nil clusterer gave %v", err)
	}
	if _, err := New(new(byLabel), &Options{k: 0, m: 2}); !errors.Is(err, convoy.ErrInvalidParameter) {
		Te.Errorf("k=0 gave %v", err)
	}
}

func TestPositionFeatures(Te *testing.T) {
	T := convoy.NewMemTraj(3)
	T.AppendData([]float64{0, 0, 0, 1, 0, 0, 30, 30, 30})
	T.AppendData([]float64{0, 1, 0, 1, 1, 0, 30, 31, 30})
	//a clusterer that puts together everything closer than 2 A to the first atom
	clf := convoy.ClustererFunc(func(f [][]float64, l []int, w []float64) ([]int, error) {
		ret := make([]int, len(f))
		for i, v := range f {
			if math.Abs(v[0]-f[0][0]) > 2 {
				ret[i] = 1
			}
		}
		return ret, nil
	})
	o := DefaultOptions()
	o.K(2)
	o.M(2)
	E, _ := New(clf, o)
	convoys, err := E.Run(context.Background(), T.Frames(), PositionFeatures(T))
	if err != nil {
		Te.Fatal(err)
	}
	want := []conv{{[]int{0, 1}, 0, 1}}
	if diff := cmp.Diff(want, simple(convoys)); diff != "" {
		Te.Errorf("convoys (-want +got):\n%s", diff)
	}
	if _, err := PositionFeatures(T)(5); !errors.Is(err, convoy.ErrOutOfRange) {
		Te.Errorf("frame 5 gave %v", err)
	}
}

func TestSummarize(Te *testing.T) {
	c := []*Candidate{NewCandidate([]int{1, 2}, 0), NewCandidate([]int{3, 4, 5, 5}, 2)}
	c[0].End = 4
	c[1].End = 4
	S := Summarize(c)
	if S.N != 2 || S.MeanLifetime != 4 || S.MeanSize != 2.5 || S.Longest != 0 {
		Te.Errorf("unexpected statistics %+v", S)
	}
	if math.Abs(S.StdLifetime-math.Sqrt2) > 1e-12 {
		Te.Errorf("std lifetime %v, want sqrt(2)", S.StdLifetime)
	}
	if Summarize(nil).Longest != -1 {
		Te.Errorf("empty set should have no longest convoy")
	}
}
