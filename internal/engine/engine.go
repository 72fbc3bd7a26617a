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

// Package engine implements mount lifecycle (C10): attaching or creating
// the superblock, wiring every component package together, and exposing
// the handful of entry points the root ramfs package calls into (spec.md
// §4.2, §4.8).
package engine

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/hpc-scratch/ramfs/cfg"
	"github.com/hpc-scratch/ramfs/internal/addr"
	"github.com/hpc-scratch/ramfs/internal/chunkstore"
	"github.com/hpc-scratch/ramfs/internal/descriptor"
	"github.com/hpc-scratch/ramfs/internal/logger"
	"github.com/hpc-scratch/ramfs/internal/meta"
	"github.com/hpc-scratch/ramfs/internal/metrics"
	"github.com/hpc-scratch/ramfs/internal/pipeline"
	"github.com/hpc-scratch/ramfs/internal/router"
	"github.com/hpc-scratch/ramfs/internal/shm"
	"github.com/hpc-scratch/ramfs/internal/stack"
)

// descriptorsPerFile is the headroom factor the descriptor table is sized
// by relative to MAX_FILES (DESIGN.md's C9 section): arbitrarily more than
// one open descriptor per file slot is allowed. internal/router must be
// given this same bound, not MaxFiles, or handles for descriptor slots at
// index >= MaxFiles fall outside InterceptHandle's range and every
// subsequent call on them wrongly reports ENOSYS.
const descriptorsPerFile = 4

// Engine is one mounted superblock and every component wired against it:
// the exact set of collaborators internal/pipeline, internal/meta, and
// internal/descriptor need, assembled once at Mount time (spec.md §4.2).
type Engine struct {
	ID   uuid.UUID // mount-instance correlation id, stamped into every log line
	Cfg  cfg.Config
	Log  *logger.Logger
	Metr *metrics.Registry

	segment *shm.Segment
	layout  shm.Layout
	mu      shm.Mutex

	fidStack  stack.Stack
	table     *meta.Table
	pipe      *pipeline.Pipeline
	descs     *descriptor.Table
	router    *router.Router
	spillFile *chunkstore.Spillover // non-nil only if spillover is enabled
}

// segmentPath returns the path Segment.Open should use: empty for private
// (single-owner) mode, or a /dev/shm path keyed by SuperblockKey+Rank for
// shared mode (spec.md §4.2, §6).
func segmentPath(c cfg.Config) string {
	if c.UseSingleShm {
		return ""
	}
	return filepath.Join("/dev/shm", fmt.Sprintf("ramfs_%d", c.SuperblockKey+c.Rank))
}

// fdLimit reads the process's current RLIMIT_NOFILE soft limit, used by
// internal/router to pick a disjoint handle range above every real fd
// (spec.md §4.9).
func fdLimit() (int, error) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return 0, fmt.Errorf("ramfs: getrlimit: %w", err)
	}
	return int(rl.Cur), nil
}

// Mount creates or attaches the superblock described by c and wires every
// engine component against it. The memory tier is always enabled (spec.md
// §9: "implicit always-on default"); the spillover tier is enabled only
// when c.UseSpillover is set.
func Mount(c cfg.Config) (*Engine, error) {
	if err := cfg.Validate(c); err != nil {
		return nil, err
	}

	dims := shm.Dims{
		MaxFiles:         c.MaxFiles,
		MaxFilename:      c.MaxFilename,
		ChunkSize:        c.ChunkSize,
		MaxChunks:        c.MaxChunks,
		MaxChunksPerFile: c.MaxChunksPerFile,
		MaxSpillChunks:   c.MaxSpillChunks,
		UseMemory:        true,
		UseSpillover:     c.UseSpillover,
	}
	layout := shm.NewLayout(dims)

	seg, err := shm.Open(segmentPath(c), layout.Total)
	if err != nil {
		return nil, err
	}

	var mu shm.Mutex
	if c.UseSingleShm {
		mu = shm.NullMutex{}
	} else {
		mu = shm.NewSpinMutex(seg.Bytes[layout.MutexOff : layout.MutexOff+shm.MutexSize])
	}

	fidStack := stack.New(seg.Bytes[layout.FreeFidStackOff : layout.FreeFidStackOff+layout.FreeFidStackLen])
	memStack := stack.New(seg.Bytes[layout.FreeChunkStackOff : layout.FreeChunkStackOff+layout.FreeChunkStackLen])

	var spillStack stack.Stack
	if dims.UseSpillover {
		spillStack = stack.New(seg.Bytes[layout.FreeSpillStackOff : layout.FreeSpillStackOff+layout.FreeSpillStackLen])
	}

	table := meta.New(layout, seg.Bytes)

	if seg.Created {
		stack.Init(seg.Bytes[layout.FreeFidStackOff:layout.FreeFidStackOff+layout.FreeFidStackLen], dims.MaxFiles)
		chunkCap := dims.MaxChunks
		stack.Init(seg.Bytes[layout.FreeChunkStackOff:layout.FreeChunkStackOff+layout.FreeChunkStackLen], chunkCap)
		if dims.UseSpillover {
			stack.Init(seg.Bytes[layout.FreeSpillStackOff:layout.FreeSpillStackOff+layout.FreeSpillStackLen], dims.MaxSpillChunks)
		}
		table.Init()
	}

	var memStore chunkstore.Store = chunkstore.NewMemory(
		seg.Bytes[layout.ChunkPoolOff:layout.ChunkPoolOff+layout.ChunkPoolLen], dims.ChunkSize)

	var spillStore chunkstore.Store
	var spillFile *chunkstore.Spillover
	if dims.UseSpillover {
		spillFile, err = chunkstore.OpenSpillover(c.SpilloverPath, dims.MaxSpillChunks, dims.ChunkSize)
		if err != nil {
			seg.Close()
			return nil, err
		}
		spillStore = spillFile
	}

	geo, err := addr.NewGeometry(dims.ChunkSize)
	if err != nil {
		seg.Close()
		return nil, err
	}

	metr := metrics.New()
	pipe := pipeline.New(geo, memStore, spillStore, memStack, spillStack, mu, table, metr)

	limit, err := fdLimit()
	if err != nil {
		seg.Close()
		return nil, err
	}

	descCap := dims.MaxFiles * descriptorsPerFile

	e := &Engine{
		ID:        uuid.New(),
		Cfg:       c,
		Log:       logger.New(c.Logging),
		Metr:      metr,
		segment:   seg,
		layout:    layout,
		mu:        mu,
		fidStack:  fidStack,
		table:     table,
		pipe:      pipe,
		descs:     descriptor.New(descCap),
		router:    router.New(c.MountPrefix, limit, descCap),
		spillFile: spillFile,
	}
	e.Log = e.Log.With("mount_id", e.ID.String())
	e.Log.Info("mounted", "mount_prefix", c.MountPrefix, "created", seg.Created, "use_spillover", c.UseSpillover)
	return e, nil
}

// Close unmaps the superblock and closes any spillover backing file. Per
// spec.md §5, no explicit teardown of free-list state happens here: in
// shared mode the /dev/shm file stays and the next attacher sees its state
// as left; in private mode the anonymous mapping is gone and the next mount
// starts fresh.
func (e *Engine) Close() error {
	e.Log.Info("unmounting")
	var err error
	if e.spillFile != nil {
		if cerr := e.spillFile.Close(); cerr != nil {
			err = cerr
		}
	}
	if cerr := e.segment.Close(); err == nil {
		err = cerr
	}
	_ = e.Log.Close()
	return err
}

// Table exposes the file metadata table to the root ramfs package.
func (e *Engine) Table() *meta.Table { return e.table }

// Pipeline exposes the I/O pipeline to the root ramfs package.
func (e *Engine) Pipeline() *pipeline.Pipeline { return e.pipe }

// Descriptors exposes the descriptor table to the root ramfs package.
func (e *Engine) Descriptors() *descriptor.Table { return e.descs }

// Router exposes the path/handle router to the root ramfs package.
func (e *Engine) Router() *router.Router { return e.router }

// NewFile creates a fresh file or directory entry and returns its fid.
func (e *Engine) NewFile(path string, isDir bool) (int, error) {
	return e.table.AddNewFile(e.fidStack, e.mu, path, isDir)
}

// RemoveFile truncates fid to zero length and returns its fid slot to the
// free pool (spec.md §4.6 unlink/rmdir shared tail).
func (e *Engine) RemoveFile(fid int) error {
	if err := e.pipe.Unlink(fid); err != nil {
		return err
	}
	e.table.Remove(fid, e.fidStack, e.mu)
	return nil
}
