// Copyright 2026 The Ramfs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ramfs is the public surface of the engine: the operations an
// interception layer would route intercepted paths and handles to (spec.md
// §6). Mounting, wiring, and teardown live in internal/engine; this package
// only maps POSIX-shaped calls onto that engine and onto internal/errs at
// the boundary.
package ramfs

import (
	"os"

	"github.com/hpc-scratch/ramfs/cfg"
	"github.com/hpc-scratch/ramfs/internal/descriptor"
	"github.com/hpc-scratch/ramfs/internal/engine"
	"github.com/hpc-scratch/ramfs/internal/errs"
)

// Whence mirrors internal/descriptor.Whence at the public boundary.
type Whence = descriptor.Whence

const (
	SeekSet = descriptor.SeekSet
	SeekCur = descriptor.SeekCur
	SeekEnd = descriptor.SeekEnd
)

// Open flags honored by Open (spec.md §6): O_CREAT, O_EXCL, O_TRUNC,
// O_APPEND, O_DIRECTORY. Flags beyond these are ignored rather than
// rejected, matching the original shim's permissive flag handling.
const (
	OCreat     = os.O_CREATE
	OExcl      = os.O_EXCL
	OTrunc     = os.O_TRUNC
	OAppend    = os.O_APPEND
	ODirectory = 1 << 29 // distinct bit from os.O_* so it never collides
)

// Mount wraps engine.Mount so callers only ever import this package.
type Mount struct {
	e *engine.Engine
}

// NewMount creates or attaches the superblock described by c.
func NewMount(c cfg.Config) (*Mount, error) {
	e, err := engine.Mount(c)
	if err != nil {
		return nil, err
	}
	return &Mount{e: e}, nil
}

// Close unmounts, releasing the superblock mapping and any spillover file
// handle (spec.md §5: no explicit free-list teardown).
func (m *Mount) Close() error { return m.e.Close() }

// Stat is the externally-visible attribute set spec.md §6's stat family
// fills: size, mode (regular-file or directory bit plus a fixed permission
// pattern per SPEC_FULL.md §9.1), everything else zeroed.
type Stat struct {
	Size int64
	Mode os.FileMode
}

func toBoundaryErr(err error) error {
	if err == nil {
		return nil
	}
	if code, ok := err.(errs.Code); ok {
		return code.Errno()
	}
	return err
}

// observe records op's outcome in the mount's metrics registry (ramfs_ops_
// total, ramfs_op_errors_total), then translates err to its boundary form.
// Every exported operation funnels its final error through this one point so
// /metrics reflects real call activity rather than sitting at zero.
func (m *Mount) observe(op string, err error) error {
	code := ""
	if c, ok := err.(errs.Code); ok {
		code = c.String()
	}
	m.e.Metr.ObserveOp(op, code)
	return toBoundaryErr(err)
}
