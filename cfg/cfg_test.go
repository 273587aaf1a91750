/*
 * cfg_test.go, part of convoy.
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


package cfg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/convoy"
	"github.com/stretchr/testify/require"
)

func write(Te *testing.T, content string) string {
	Te.Helper()
	name := filepath.Join(Te.TempDir(), "job.yaml")
	require.NoError(Te, os.WriteFile(name, []byte(content), 0o644))
	return name
}

func TestNew(Te *testing.T) {
	c, err := New(write(Te, "traj: run/prod.npy\nk: 10\neps: 4.0\nperiodic: true\nroles: roles.yaml\n"))
	require.NoError(Te, err)
	want := Default()
	want.Traj = "run/prod.npy"
	want.K = 10
	want.Eps = 4
	want.Periodic = true
	want.Roles = "roles.yaml"
	require.Equal(Te, want, c)
	require.Equal(Te, FNPY, c.TrajFormat())
	c.Traj = "prod.stf"
	require.Equal(Te, FSTF, c.TrajFormat())
}

func TestInvalid(Te *testing.T) {
	bad := map[string]string{
		"no trajectory":  "k: 5\n",
		"bad k":          "traj: a.npy\nk: 0\n",
		"bad eps":        "traj: a.npy\neps: -1\n",
		"bad end":        "traj: a.npy\nend: 0\n",
		"bad format":     "traj: a.npy\nformat: xtc\n",
		"unknown field":  "traj: a.npy\nkk: 3\n",
		"not a document": "traj: [\n",
	}
	for what, content := range bad {
		_, err := New(write(Te, content))
		require.Error(Te, err, what)
	}
	_, err := New(write(Te, "traj: a.npy\nm: -2\n"))
	require.True(Te, errors.Is(err, convoy.ErrInvalidParameter))
	_, err = New(filepath.Join(Te.TempDir(), "missing.yaml"))
	require.Error(Te, err)
}
