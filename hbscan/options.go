/*
 * options.go, part of convoy.
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

package hbscan

import (
	"runtime"

	"github.com/rmera/convoy"
	"go.uber.org/zap"
)

// Options contains the parameters of a hydrogen bond scan.
type Options struct {
	cpus   int
	test   *convoy.HBondTest
	logger *zap.Logger
}

// DefaultOptions returns a Options with the default options: one goroutine per
// logical CPU and the default hydrogen bond criterion.
func DefaultOptions() *Options {
	ret := new(Options)
	ret.cpus = runtime.NumCPU()
	ret.test = convoy.DefaultHBondTest()
	ret.logger = zap.NewNop()
	return ret
}

// Cpus returns the current number of frames scanned concurrently
// and sets it, if a valid value is given.
func (O *Options) Cpus(cpus ...int) int {
	if len(cpus) > 0 && cpus[0] > 0 {
		O.cpus = cpus[0]
	}
	return O.cpus
}

// Test returns the hydrogen bond criterion and sets it, if a non-nil one is given.
func (O *Options) Test(test ...*convoy.HBondTest) *convoy.HBondTest {
	if len(test) > 0 && test[0] != nil {
		O.test = test[0]
	}
	return O.test
}

// Logger returns the logger and sets it, if a non-nil one is given.
func (O *Options) Logger(l ...*zap.Logger) *zap.Logger {
	if len(l) > 0 && l[0] != nil {
		O.logger = l[0]
	}
	return O.logger
}
