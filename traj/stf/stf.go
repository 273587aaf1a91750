/*
 * stf.go, part of convoy.
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


package stf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/lzw"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rmera/convoy"
	"gonum.org/v1/gonum/mat"
)

const (
	lzwLitwidth int = 8
	defaultPrec int = 2
)

// compression returns the constructors for the compressed writer and reader
// that correspond to the file name: the last letter of the name selects lzw
// ('l'), gzip ('z') or flate ('r'). Anything else is zstd.
func compression(name string, level int) (func(io.Writer) (io.WriteCloser, error), func(io.Reader) (io.ReadCloser, error)) {
	last := byte(0)
	if name != "" {
		last = strings.ToLower(name)[len(name)-1]
	}
	switch last {
	case 'l':
		return func(a io.Writer) (io.WriteCloser, error) { return lzw.NewWriter(a, lzw.MSB, lzwLitwidth), nil },
			func(a io.Reader) (io.ReadCloser, error) { return lzw.NewReader(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		return func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, level) },
			func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	case 'r':
		return func(a io.Writer) (io.WriteCloser, error) { return flate.NewWriter(a, level) },
			func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	default:
		return func(a io.Writer) (io.WriteCloser, error) {
				return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
			},
			func(a io.Reader) (io.ReadCloser, error) {
				r, err := zstd.NewReader(a)
				if err != nil {
					return nil, err
				}
				return zstdCloser{r}, nil
			}
	}
}

// zstdCloser turns a *zstd.Decoder, whose Close method returns nothing,
// into an io.ReadCloser.
type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// Writer writes a STF trajectory.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	filename  string
	writeable bool
	prec      int
}

// NewWriter creates the file name and writes the header, with the entries of
// header (sorted by key) and the number of atoms. The precision can be given
// in the header, with the key "prec". The compression level is used by the
// gzip and flate compressors only.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*Writer, error) {
	level := flate.BestCompression
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	if natoms < 1 {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "stf.NewWriter", "%d atoms per frame", natoms)
	}
	S := &Writer{natoms: natoms, filename: name, prec: defaultPrec}
	h := make(map[string]string, len(header)+1)
	for k, v := range header {
		h[k] = v
	}
	if p, ok := h["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Printf("Invalid precision for trajectory %s. Will use the default", name)
		}
	}
	h["prec"] = strconv.Itoa(S.prec)
	newWriter, _ := compression(name, level)
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, convoy.NewError(convoy.ErrFormat, "stf.NewWriter", "unable to create %s: %s", name, err.Error())
	}
	S.h, err = newWriter(S.f)
	if err != nil {
		S.f.Close()
		return nil, convoy.NewError(convoy.ErrFormat, "stf.NewWriter", "can't compress %s: %s", name, err.Error())
	}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, h[k])
	}
	fmt.Fprintf(&b, "** %d\n", S.natoms)
	if _, err := io.WriteString(S.h, b.String()); err != nil {
		S.h.Close()
		S.f.Close()
		return nil, convoy.NewError(convoy.ErrFormat, "stf.NewWriter", "can't write header to %s: %s", name, err.Error())
	}
	S.writeable = true
	return S, nil
}

// Len returns the number of atoms per frame.
func (S *Writer) Len() int {
	return S.natoms
}

func coordsEncode(f [3]float64, prec int) string {
	p := math.Pow(10.0, float64(prec))
	var temp [3]int
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

// WNext writes a frame, given as a natoms x 3 matrix, and, if given with at
// least 9 elements, the box vectors.
func (S *Writer) WNext(frame *mat.Dense, box ...[]float64) error {
	if !S.writeable {
		return convoy.NewError(convoy.ErrFormat, "stf.Writer.WNext", "%s is not open for writing", S.filename)
	}
	if frame == nil {
		return convoy.NewError(convoy.ErrInvalidParameter, "stf.Writer.WNext", "nil coordinates")
	}
	if r, c := frame.Dims(); r != S.natoms || c != 3 {
		return convoy.NewError(convoy.ErrInvalidParameter, "stf.Writer.WNext", "frame is %dx%d, expected %dx3", r, c, S.natoms)
	}
	w := bufio.NewWriter(S.h)
	for i := 0; i < S.natoms; i++ {
		w.WriteString(coordsEncode([3]float64{frame.At(i, 0), frame.At(i, 1), frame.At(i, 2)}, S.prec))
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		fmt.Fprintf(w, "* %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f\n", b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		w.WriteString("*\n")
	}
	if err := w.Flush(); err != nil {
		return convoy.NewError(convoy.ErrFormat, "stf.Writer.WNext", "can't write to %s: %s", S.filename, err.Error())
	}
	return nil
}

// Close flushes the compressor and closes the file. The Writer can't be used
// after this call.
func (S *Writer) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.h.Close()
	if err2 := S.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return convoy.NewError(convoy.ErrFormat, "stf.Writer.Close", "closing %s: %s", S.filename, err.Error())
	}
	return nil
}

// WriteTraj writes all frames of T to the file name.
func WriteTraj(name string, T convoy.Trajectory, header map[string]string) error {
	W, err := NewWriter(name, T.Len(), header)
	if err != nil {
		return convoy.Decorate(err, convoy.ErrFormat, "stf.WriteTraj")
	}
	frame := mat.NewDense(T.Len(), 3, nil)
	for f := 0; f < T.Frames(); f++ {
		for i := 0; i < T.Len(); i++ {
			p, err := T.Position(i, f)
			if err != nil {
				W.Close()
				return convoy.Decorate(err, convoy.ErrOutOfRange, "stf.WriteTraj")
			}
			frame.SetRow(i, p[:])
		}
		if err := W.WNext(frame); err != nil {
			W.Close()
			return convoy.Decorate(err, convoy.ErrFormat, "stf.WriteTraj")
		}
	}
	return W.Close()
}

// Reader reads a STF trajectory, one frame at a time.
type Reader struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
}

// New opens a STF trajectory for reading, and returns the handle and a map
// with the header entries.
func New(name string) (*Reader, map[string]string, error) {
	S := &Reader{natoms: -1, filename: name, prec: defaultPrec}
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, convoy.NewError(convoy.ErrFormat, "stf.New", "unable to open %s: %s", name, err.Error())
	}
	_, newReader := compression(name, 0)
	S.dec, err = newReader(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, convoy.NewError(convoy.ErrFormat, "stf.New", "can't decompress %s: %s", name, err.Error())
	}
	S.h = bufio.NewReader(S.dec)
	m := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			return nil, nil, convoy.NewError(convoy.ErrFormat, "stf.New", "can't read header of %s: %s", name, err.Error())
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.close()
				return nil, nil, convoy.NewError(convoy.ErrFormat, "stf.New", "no atom number in %q", str)
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms < 1 {
				S.close()
				return nil, nil, convoy.NewError(convoy.ErrFormat, "stf.New", "can't read atom number from %q", nat[1])
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			S.close()
			return nil, nil, convoy.NewError(convoy.ErrFormat, "stf.New", "malformed header line %q in %s", str, name)
		}
		m[k] = v
	}
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Printf("Invalid precision for trajectory %s. Will assume the default", name)
		}
	}
	S.readable = true
	return S, m, nil
}

// Readable returns true if it is possible to call Next on the handle.
func (S *Reader) Readable() bool {
	return S.readable
}

// Len returns the number of atoms per frame.
func (S *Reader) Len() int {
	return S.natoms
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("%d fields in coordinates line %q", len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("can't parse coordinate %d (%s): %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

// Next puts the coordinates of the next frame in c, which must be a natoms x 3
// matrix or nil (the frame is then read and checked, but discarded). If box is
// given with at least 9 elements and the frame has box information, it is
// put there. At the end of the trajectory, Next closes the handle and
// returns io.EOF.
func (S *Reader) Next(c *mat.Dense, box ...[]float64) error {
	if !S.readable {
		return convoy.NewError(convoy.ErrFormat, "stf.Reader.Next", "%s is not open for reading", S.filename)
	}
	if c != nil {
		if r, col := c.Dims(); r != S.natoms || col != 3 {
			return convoy.NewError(convoy.ErrInvalidParameter, "stf.Reader.Next", "matrix is %dx%d, expected %dx3", r, col, S.natoms)
		}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && i == 0 && b == "" {
				S.Close()
				return io.EOF
			}
			return convoy.NewError(convoy.ErrFormat, "stf.Reader.Next", "%s: truncated frame: %s", S.filename, err.Error())
		}
		if err := coordsDecode(strings.TrimSuffix(b, "\n"), &temp, S.prec); err != nil {
			return convoy.NewError(convoy.ErrFormat, "stf.Reader.Next", "%s: %s", S.filename, err.Error())
		}
		if c != nil {
			c.SetRow(i, temp[:])
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil && s == "" {
		return convoy.NewError(convoy.ErrFormat, "stf.Reader.Next", "%s: can't read the frame termination mark: %s", S.filename, err.Error())
	}
	if s[0] != '*' {
		return convoy.NewError(convoy.ErrFormat, "stf.Reader.Next", "%s: wrong number of atoms in frame", S.filename)
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		fields := strings.Fields(s)
		if len(fields) < 10 {
			log.Printf("Trajectory file %s does not contain (correct) box information: %s", S.filename, fields)
			return nil
		}
		for j, v := range fields[1:10] {
			box[0][j], err = strconv.ParseFloat(v, 64)
			if err != nil {
				log.Printf("Failed to read box in a frame from %s", S.filename)
				for i := range box[0] {
					box[0][i] = 0
				}
				break
			}
		}
	}
	return nil
}

func (S *Reader) close() {
	S.dec.Close()
	S.f.Close()
}

// Close closes the handle, and marks it as unreadable.
func (S *Reader) Close() {
	if !S.readable {
		return
	}
	S.close()
	S.readable = false
}

// Load reads the first end frames of the trajectory in the file name, or all
// of them if end is 0 or negative, and returns them with the header.
func Load(name string, end int) (*convoy.MemTraj, map[string]string, error) {
	S, header, err := New(name)
	if err != nil {
		return nil, nil, convoy.Decorate(err, convoy.ErrFormat, "stf.Load")
	}
	defer S.Close()
	T := convoy.NewMemTraj(S.Len())
	for end <= 0 || T.Frames() < end {
		frame := mat.NewDense(S.Len(), 3, nil)
		err := S.Next(frame)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, convoy.Decorate(err, convoy.ErrFormat, fmt.Sprintf("stf.Load: frame %d", T.Frames()))
		}
		if err := T.Append(frame); err != nil {
			return nil, nil, convoy.Decorate(err, convoy.ErrFormat, "stf.Load")
		}
	}
	if end > 0 && T.Frames() < end {
		log.Printf("stf: %d frames requested, only %d available in %s", end, T.Frames(), name)
	}
	return T, header, nil
}
