/*
 * convoyjson_test.go, part of convoy.
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


package convoyjson

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/convoy"
	"github.com/rmera/convoy/cmc"
	"github.com/rmera/convoy/hbscan"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func convoys() []*cmc.Candidate {
	a := cmc.NewCandidate([]int{4, 1, 2}, 0)
	a.End = 6
	b := cmc.NewCandidate([]int{10, 11}, 3)
	b.End = 9
	return []*cmc.Candidate{a, b}
}

func TestResult(Te *testing.T) {
	R := NewResult(Params{Traj: "traj.npy", End: 500, K: 5, M: 2, Eps: 3.5, MinSamples: 5, Box: convoy.BoxLength}, convoys())
	var b bytes.Buffer
	require.NoError(Te, Encode(&b, R))
	require.Contains(Te, b.String(), `"num_of_indices": 3`)
	require.Contains(Te, b.String(), `"start_time": 3`)
	back, err := ReadResult(&b)
	require.NoError(Te, err)
	require.Equal(Te, R, back)
	c := back.Candidates()
	require.Len(Te, c, 2)
	require.Equal(Te, []int{1, 2, 4}, c[0].Indexes())
	require.Equal(Te, convoys()[1].Serialize(), c[1].Serialize())
}

func TestHBondsFile(Te *testing.T) {
	frames := []*hbscan.Triple{nil, nil, {HN: 1, N: 0, O: 2}, nil}
	H := NewHBonds("", 0, 2, 4, frames)
	for _, name := range []string{"hb.json", "hb.json.zst"} {
		name = filepath.Join(Te.TempDir(), name)
		require.NoError(Te, WriteFile(name, H))
		back, err := HBondsFileRead(name)
		require.NoError(Te, err)
		require.Equal(Te, H, back)
	}
}

func TestResultFile(Te *testing.T) {
	R := NewResult(Params{K: 5, M: 25}, convoys())
	name := filepath.Join(Te.TempDir(), "result.json.zst")
	require.NoError(Te, WriteFile(name, R))
	back, err := ResultFileRead(name)
	require.NoError(Te, err)
	require.Equal(Te, R.RunID, back.RunID)
	require.Equal(Te, R.Convoys, back.Convoys)
	_, err = ResultFileRead(filepath.Join(Te.TempDir(), "none.json"))
	require.True(Te, errors.Is(err, convoy.ErrFormat))
}

func TestWriteFileEncodeError(Te *testing.T) {
	defer goleak.VerifyNone(Te)
	name := filepath.Join(Te.TempDir(), "bad.json.zst")
	err := WriteFile(name, map[string]interface{}{"c": make(chan int)})
	require.True(Te, errors.Is(err, convoy.ErrFormat), "unencodable value gave %v", err)
}

func TestRejected(Te *testing.T) {
	id := NewResult(Params{}, nil).RunID
	bad := []string{
		`{"version": 2, "run_id": "` + id + `", "convoys": []}`,
		`{"version": 1, "run_id": "not-a-uuid", "convoys": []}`,
		`{"version": 1, "run_id": "` + id + `", "convoys": [{"num_of_indices": 3, "start_time": 0, "end_time": 1, "indices": [1, 2]}]}`,
		`{"version": 1, "run_id": "` + id + `", "convoys": [{"num_of_indices": 1, "start_time": 4, "end_time": 1, "indices": [1]}]}`,
		`{"version": 1,`,
	}
	for _, v := range bad {
		_, err := ReadResult(strings.NewReader(v))
		require.Error(Te, err, v)
		require.True(Te, errors.Is(err, convoy.ErrFormat), v)
	}
	_, err := ReadHBonds(strings.NewReader(`{"version": 1, "run_id": "` + id + `", "start": 0, "end": 3, "frames": [null]}`))
	require.True(Te, errors.Is(err, convoy.ErrFormat))
}
