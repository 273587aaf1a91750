/*
 * cfg.go, part of convoy.
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


// Package cfg reads the configuration of a convoy search job.
package cfg

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmera/convoy"
	"gopkg.in/yaml.v3"
)

// Format is the format of the trajectory file.
type Format string

// The accepted formats. NPY is a NumPy array of shape (frames, atoms, 3),
// STF is the simple trajectory format.
var (
	FNPY Format = "npy"
	FSTF Format = "stf"
)

// Cfg is a structure containing the parameters specified in the configuration
// file. It can be instanced through New, or with Default and by "hand". If it
// is instanced by hand, please use the Check method to check if the Cfg meets
// the requirements.
type Cfg struct {
	// Traj is the trajectory file
	Traj string `yaml:"traj"`

	// Format is the format of Traj. If empty, it is guessed from the
	// extension: ".npy" is NPY, anything else STF.
	Format Format `yaml:"format"`

	// End is the number of frames that will be read.
	End int `yaml:"end"`

	// K is the minimum number of consecutive frames for a convoy
	K int `yaml:"k"`

	// M is the minimum number of atoms in a convoy
	M int `yaml:"m"`

	// Eps is the neighborhood radius for the clustering, in A
	Eps float64 `yaml:"eps"`

	// MinSamples is the minimum weight of a neighborhood for its center
	// to be a core point in the clustering
	MinSamples float64 `yaml:"minSamples"`

	// Periodic sets the use of the minimum image convention in the clustering
	Periodic bool `yaml:"periodic"`

	// Box is the length of the periodic box in the x and y axes, in A
	Box float64 `yaml:"box"`

	// Roles is the file with the roles of the atoms for the hydrogen bond search
	Roles string `yaml:"roles"`

	// Out is the file where the results are written. Empty means standard output.
	Out string `yaml:"out"`

	// Cpus is the number of frames processed concurrently in the
	// hydrogen bond search. 0 means one per logical CPU.
	Cpus int `yaml:"cpus"`
}

// Default returns a Cfg with the default parameters and no trajectory.
func Default() *Cfg {
	return &Cfg{End: 500, K: 5, M: 25, Eps: 3.5, MinSamples: 5, Box: convoy.BoxLength}
}

// New opens and decodes the specified configuration file. The file must be
// a YAML file. Parameters missing in the file keep their default values.
// This method automatically calls the Check method to check the
// integrity of Cfg.
func New(path string) (*Cfg, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, convoy.NewError(convoy.ErrInvalidParameter, "cfg.New", "unable to open %s: %s", path, err.Error())
	}
	defer f.Close()

	c := Default()
	r := bufio.NewReader(f)
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return nil, convoy.NewError(convoy.ErrFormat, "cfg.New", "can't decode %s: %s", path, err.Error())
	}

	if err := c.Check(); err != nil {
		return nil, convoy.Decorate(err, convoy.ErrInvalidParameter, "cfg.New")
	}

	return c, nil
}

// TrajFormat returns the format of the trajectory, guessing it from the
// file name if it was not given.
func (c *Cfg) TrajFormat() Format {
	if c.Format != "" {
		return c.Format
	}
	if strings.EqualFold(filepath.Ext(c.Traj), ".npy") {
		return FNPY
	}
	return FSTF
}

// Check checks if Cfg is correct. It returns an error if a field doesn't meet
// the requirements.
func (c *Cfg) Check() error {
	if c.Traj == "" {
		return convoy.NewError(convoy.ErrInvalidParameter, "cfg.Check", "no trajectory given")
	}
	if f := c.TrajFormat(); f != FNPY && f != FSTF {
		return convoy.NewError(convoy.ErrInvalidParameter, "cfg.Check", "unknown trajectory format %q", f)
	}
	if c.End < 1 {
		return convoy.NewError(convoy.ErrInvalidParameter, "cfg.Check", "end must be at least 1, got %d", c.End)
	}
	if c.K < 1 || c.M < 1 {
		return convoy.NewError(convoy.ErrInvalidParameter, "cfg.Check", "k and m must be at least 1, got k=%d m=%d", c.K, c.M)
	}
	if c.Eps <= 0 {
		return convoy.NewError(convoy.ErrInvalidParameter, "cfg.Check", "eps must be positive, got %g", c.Eps)
	}
	if c.MinSamples <= 0 {
		return convoy.NewError(convoy.ErrInvalidParameter, "cfg.Check", "minSamples must be positive, got %g", c.MinSamples)
	}
	if c.Box <= 0 {
		return convoy.NewError(convoy.ErrInvalidParameter, "cfg.Check", "box must be positive, got %g", c.Box)
	}
	if c.Cpus < 0 {
		return convoy.NewError(convoy.ErrInvalidParameter, "cfg.Check", "cpus can't be negative")
	}
	return nil
}
