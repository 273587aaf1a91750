/*
 * npy.go, part of convoy.
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


// Package npy reads and writes trajectories stored as NumPy arrays of shape
// (frames, atoms, 3). Files are memory mapped for reading.
package npy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/rmera/convoy"
)

const magic = "\x93NUMPY"

// Header contains the array description of a .npy file.
type Header struct {
	Major, Minor int
	Order        binary.ByteOrder
	ItemSize     int //4 or 8
	Shape        []int
	DataOffset   int //bytes from the beginning of the file to the data
}

// Frames returns the number of frames in the array.
func (H *Header) Frames() int { return H.Shape[0] }

// Atoms returns the number of atoms per frame.
func (H *Header) Atoms() int { return H.Shape[1] }

var (
	descrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	fortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// ParseHeader reads the header at the beginning of b, which must hold a
// float trajectory array in C order.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) < 10 || string(b[:6]) != magic {
		return nil, convoy.NewError(convoy.ErrFormat, "npy.ParseHeader", "not a .npy file")
	}
	H := &Header{Major: int(b[6]), Minor: int(b[7])}
	var hlen, start int
	switch H.Major {
	case 1:
		hlen, start = int(binary.LittleEndian.Uint16(b[8:10])), 10
	case 2, 3:
		if len(b) < 12 {
			return nil, convoy.NewError(convoy.ErrFormat, "npy.ParseHeader", "truncated header")
		}
		hlen, start = int(binary.LittleEndian.Uint32(b[8:12])), 12
	default:
		return nil, convoy.NewError(convoy.ErrFormat, "npy.ParseHeader", "unsupported format version %d.%d", H.Major, H.Minor)
	}
	if start+hlen > len(b) {
		return nil, convoy.NewError(convoy.ErrFormat, "npy.ParseHeader", "truncated header")
	}
	H.DataOffset = start + hlen
	dict := string(b[start:H.DataOffset])
	m := descrRe.FindStringSubmatch(dict)
	if m == nil {
		return nil, convoy.NewError(convoy.ErrFormat, "npy.ParseHeader", "no data type in header %q", dict)
	}
	switch m[1] {
	case "<f8":
		H.Order, H.ItemSize = binary.LittleEndian, 8
	case ">f8":
		H.Order, H.ItemSize = binary.BigEndian, 8
	case "<f4":
		H.Order, H.ItemSize = binary.LittleEndian, 4
	case ">f4":
		H.Order, H.ItemSize = binary.BigEndian, 4
	default:
		return nil, convoy.NewError(convoy.ErrFormat, "npy.ParseHeader", "unsupported data type %s", m[1])
	}
	m = fortranRe.FindStringSubmatch(dict)
	if m == nil || m[1] == "True" {
		return nil, convoy.NewError(convoy.ErrFormat, "npy.ParseHeader", "only C ordered arrays are supported")
	}
	m = shapeRe.FindStringSubmatch(dict)
	if m == nil {
		return nil, convoy.NewError(convoy.ErrFormat, "npy.ParseHeader", "no shape in header %q", dict)
	}
	for _, v := range strings.Split(m[1], ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 {
			return nil, convoy.NewError(convoy.ErrFormat, "npy.ParseHeader", "bad dimension %q in shape", v)
		}
		H.Shape = append(H.Shape, d)
	}
	if len(H.Shape) != 3 || H.Shape[2] != 3 {
		return nil, convoy.NewError(convoy.ErrFormat, "npy.ParseHeader", "shape %v is not (frames, atoms, 3)", H.Shape)
	}
	if H.Shape[1] < 1 {
		return nil, convoy.NewError(convoy.ErrFormat, "npy.ParseHeader", "shape %v has no atoms", H.Shape)
	}
	return H, nil
}

// Load maps the file name and reads its first end frames into memory. If end
// is 0 or negative, or larger than the number of frames, all frames are read.
func Load(name string, end int) (*convoy.MemTraj, error) {
	fp, err := os.Open(name)
	if err != nil {
		return nil, convoy.NewError(convoy.ErrFormat, "npy.Load", "unable to open %s: %s", name, err.Error())
	}
	defer fp.Close()
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return nil, convoy.NewError(convoy.ErrFormat, "npy.Load", "unable to map %s: %s", name, err.Error())
	}
	defer mm.Unmap()
	T, err := decode(mm, end)
	if err != nil {
		return nil, convoy.Decorate(err, convoy.ErrFormat, "npy.Load: "+name)
	}
	return T, nil
}

// decode copies the first end frames of the array in b into a MemTraj.
func decode(b []byte, end int) (*convoy.MemTraj, error) {
	H, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	frames, natoms := H.Frames(), H.Atoms()
	if end > frames {
		log.Printf("npy: %d frames requested, only %d available", end, frames)
	}
	if end <= 0 || end > frames {
		end = frames
	}
	//sizes are compared by division, as the header dimensions can overflow a product
	avail := len(b) - H.DataOffset
	if end > 0 && natoms > avail/(3*H.ItemSize) {
		return nil, convoy.NewError(convoy.ErrFormat, "npy.decode", "data is %d bytes, too short for one frame of %d atoms", avail, natoms)
	}
	fsize := natoms * 3 * H.ItemSize
	if end > 0 && end > avail/fsize {
		return nil, convoy.NewError(convoy.ErrFormat, "npy.decode", "data is %d bytes, %d frames of %d bytes expected", avail, end, fsize)
	}
	T := convoy.NewMemTraj(natoms)
	for f := 0; f < end; f++ {
		raw := b[H.DataOffset+f*fsize : H.DataOffset+(f+1)*fsize]
		data := make([]float64, natoms*3)
		for i := range data {
			if H.ItemSize == 8 {
				data[i] = math.Float64frombits(H.Order.Uint64(raw[i*8:]))
			} else {
				data[i] = float64(math.Float32frombits(H.Order.Uint32(raw[i*4:])))
			}
		}
		if err := T.AppendData(data); err != nil {
			return nil, err
		}
	}
	return T, nil
}

// Write writes T to w as a version 1.0, little endian float64 array.
func Write(w io.Writer, T convoy.Trajectory) error {
	dict := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d, 3), }", T.Frames(), T.Len())
	//the data must start at a multiple of 64 bytes
	total := len(magic) + 4 + len(dict) + 1
	dict += strings.Repeat(" ", (64-total%64)%64) + "\n"
	var head bytes.Buffer
	head.WriteString(magic)
	head.Write([]byte{1, 0})
	binary.Write(&head, binary.LittleEndian, uint16(len(dict)))
	head.WriteString(dict)
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(head.Bytes()); err != nil {
		return convoy.NewError(convoy.ErrFormat, "npy.Write", "can't write header: %s", err.Error())
	}
	buf := make([]byte, 8)
	for f := 0; f < T.Frames(); f++ {
		for i := 0; i < T.Len(); i++ {
			p, err := T.Position(i, f)
			if err != nil {
				return convoy.Decorate(err, convoy.ErrOutOfRange, "npy.Write")
			}
			for _, v := range p {
				binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
				if _, err := bw.Write(buf); err != nil {
					return convoy.NewError(convoy.ErrFormat, "npy.Write", "can't write frame %d: %s", f, err.Error())
				}
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return convoy.NewError(convoy.ErrFormat, "npy.Write", "can't write: %s", err.Error())
	}
	return nil
}

// WriteFile writes T to the file name, creating or truncating it.
func WriteFile(name string, T convoy.Trajectory) error {
	f, err := os.Create(name)
	if err != nil {
		return convoy.NewError(convoy.ErrFormat, "npy.WriteFile", "unable to create %s: %s", name, err.Error())
	}
	if err := Write(f, T); err != nil {
		f.Close()
		return convoy.Decorate(err, convoy.ErrFormat, "npy.WriteFile")
	}
	if err := f.Close(); err != nil {
		return convoy.NewError(convoy.ErrFormat, "npy.WriteFile", "can't close %s: %s", name, err.Error())
	}
	return nil
}
