/*
 * convoyjson.go, part of convoy.
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


// Package convoyjson serializes the results of convoy and hydrogen bond
// searches. Files whose names end in ".zst" are zstd compressed.
package convoyjson

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/rmera/convoy"
	"github.com/rmera/convoy/cmc"
	"github.com/rmera/convoy/hbscan"
)

// Version is the version of the documents written by this package. Documents
// with other versions are rejected.
const Version = 1

// Params are the parameters of the run that produced a Result.
type Params struct {
	Traj       string  `json:"traj,omitempty"`
	End        int     `json:"end"`
	K          int     `json:"k"`
	M          int     `json:"m"`
	Eps        float64 `json:"eps"`
	MinSamples float64 `json:"min_samples"`
	Periodic   bool    `json:"periodic"`
	Box        float64 `json:"box"`
}

// Convoy is a serialized convoy. Unlike cmc.Summary, it keeps the member
// indices, so hydrogen bonds can be searched later.
type Convoy struct {
	cmc.Summary
	Indices []int `json:"indices"`
}

// Result is the output of a convoy search.
type Result struct {
	Version int      `json:"version"`
	RunID   string   `json:"run_id"`
	Params  Params   `json:"params"`
	Convoys []Convoy `json:"convoys"`
}

// NewResult builds a Result for the given convoys, with a new run id.
func NewResult(params Params, convoys []*cmc.Candidate) *Result {
	R := &Result{Version: Version, RunID: uuid.NewString(), Params: params, Convoys: make([]Convoy, 0, len(convoys))}
	for _, c := range convoys {
		R.Convoys = append(R.Convoys, Convoy{Summary: c.Serialize(), Indices: c.Indexes()})
	}
	return R
}

// Candidates rebuilds the convoys of the result.
func (R *Result) Candidates() []*cmc.Candidate {
	ret := make([]*cmc.Candidate, len(R.Convoys))
	for i, c := range R.Convoys {
		ret[i] = cmc.NewCandidate(c.Indices, c.StartTime)
		ret[i].End = c.EndTime
	}
	return ret
}

func (R *Result) check() error {
	if err := checkHead(R.Version, R.RunID); err != nil {
		return err
	}
	for i, c := range R.Convoys {
		if c.NumOfIndices != len(c.Indices) || c.StartTime > c.EndTime {
			return convoy.NewError(convoy.ErrFormat, "convoyjson.Result", "inconsistent convoy %d: %d indices, %d listed, frames %d to %d", i, c.NumOfIndices, len(c.Indices), c.StartTime, c.EndTime)
		}
	}
	return nil
}

// HBonds is the output of a hydrogen bond scan of one convoy. Frames has End
// elements, element t holding the bond found at frame t, or null.
type HBonds struct {
	Version     int              `json:"version"`
	RunID       string           `json:"run_id"`
	ConvoyIndex int              `json:"convoy_index"`
	Start       int              `json:"start"`
	End         int              `json:"end"`
	Frames      []*hbscan.Triple `json:"frames"`
}

// NewHBonds returns the HBonds document for the scan of convoy index from
// start to end. runID should be the id of the Result the convoy comes from.
// If it is empty, a new one is created.
func NewHBonds(runID string, index, start, end int, frames []*hbscan.Triple) *HBonds {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &HBonds{Version: Version, RunID: runID, ConvoyIndex: index, Start: start, End: end, Frames: frames}
}

func (H *HBonds) check() error {
	if err := checkHead(H.Version, H.RunID); err != nil {
		return err
	}
	if len(H.Frames) != H.End || H.Start < 0 || H.Start > H.End {
		return convoy.NewError(convoy.ErrFormat, "convoyjson.HBonds", "%d frames for the range [%d, %d)", len(H.Frames), H.Start, H.End)
	}
	return nil
}

func checkHead(version int, runID string) error {
	if version != Version {
		return convoy.NewError(convoy.ErrFormat, "convoyjson", "unsupported version %d, expected %d", version, Version)
	}
	if _, err := uuid.Parse(runID); err != nil {
		return convoy.NewError(convoy.ErrFormat, "convoyjson", "bad run id %q: %s", runID, err.Error())
	}
	return nil
}

// document is implemented by Result and HBonds.
type document interface {
	check() error
}

// Encode writes v to out as indented JSON.
func Encode(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return convoy.NewError(convoy.ErrFormat, "convoyjson.Encode", "%s", err.Error())
	}
	return nil
}

func decode(in io.Reader, d document, caller string) error {
	dec := json.NewDecoder(bufio.NewReader(in))
	if err := dec.Decode(d); err != nil {
		return convoy.NewError(convoy.ErrFormat, caller, "%s", err.Error())
	}
	return convoy.Decorate(d.check(), convoy.ErrFormat, caller)
}

// ReadResult decodes a Result from in.
func ReadResult(in io.Reader) (*Result, error) {
	R := new(Result)
	if err := decode(in, R, "convoyjson.ReadResult"); err != nil {
		return nil, err
	}
	return R, nil
}

// ReadHBonds decodes an HBonds document from in.
func ReadHBonds(in io.Reader) (*HBonds, error) {
	H := new(HBonds)
	if err := decode(in, H, "convoyjson.ReadHBonds"); err != nil {
		return nil, err
	}
	return H, nil
}

func compressed(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zst")
}

// WriteFile encodes v into the file name.
func WriteFile(name string, v interface{}) error {
	f, err := os.Create(name)
	if err != nil {
		return convoy.NewError(convoy.ErrFormat, "convoyjson.WriteFile", "unable to create %s: %s", name, err.Error())
	}
	defer f.Close()
	var w io.Writer = f
	var z *zstd.Encoder
	if compressed(name) {
		if z, err = zstd.NewWriter(f); err != nil {
			return convoy.NewError(convoy.ErrFormat, "convoyjson.WriteFile", "%s", err.Error())
		}
		w = z
	}
	if err := Encode(w, v); err != nil {
		if z != nil {
			z.Close()
		}
		return convoy.Decorate(err, convoy.ErrFormat, "convoyjson.WriteFile")
	}
	if z != nil {
		if err := z.Close(); err != nil {
			return convoy.NewError(convoy.ErrFormat, "convoyjson.WriteFile", "%s", err.Error())
		}
	}
	if err := f.Close(); err != nil {
		return convoy.NewError(convoy.ErrFormat, "convoyjson.WriteFile", "can't close %s: %s", name, err.Error())
	}
	return nil
}

func readFile(name string, d document, caller string) error {
	f, err := os.Open(name)
	if err != nil {
		return convoy.NewError(convoy.ErrFormat, caller, "unable to open %s: %s", name, err.Error())
	}
	defer f.Close()
	var r io.Reader = f
	if compressed(name) {
		z, err := zstd.NewReader(f)
		if err != nil {
			return convoy.NewError(convoy.ErrFormat, caller, "%s", err.Error())
		}
		defer z.Close()
		r = z
	}
	return decode(r, d, caller)
}

// ResultFileRead reads a Result from the file name.
func ResultFileRead(name string) (*Result, error) {
	R := new(Result)
	if err := readFile(name, R, "convoyjson.ResultFileRead"); err != nil {
		return nil, err
	}
	return R, nil
}

// HBondsFileRead reads an HBonds document from the file name.
func HBondsFileRead(name string) (*HBonds, error) {
	H := new(HBonds)
	if err := readFile(name, H, "convoyjson.HBondsFileRead"); err != nil {
		return nil, err
	}
	return H, nil
}
