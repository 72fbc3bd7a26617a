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

// Package errs defines the engine's internal error taxonomy (spec.md §7) and
// its one translation point to host-facing syscall errno values.
package errs

import "syscall"

// Code is a pipeline-level error. Internal functions never wrap or decorate
// it further; it unwinds unchanged to the boundary call that maps it.
type Code int

const (
	// Success is never returned as an error; it exists so a Code zero value
	// reads as "no error" in debug output.
	Success Code = iota
	NoSpc
	IO
	BadF
	NoEnt
	Exist
	IsDir
	NotDir
	NotEmpty
	NameTooLong
	Inval
	CrossDevice
	NotSupported
)

var names = map[Code]string{
	Success:      "SUCCESS",
	NoSpc:        "ERR_NOSPC",
	IO:           "ERR_IO",
	BadF:         "ERR_BADF",
	NoEnt:        "ERR_NOENT",
	Exist:        "ERR_EXIST",
	IsDir:        "ERR_ISDIR",
	NotDir:       "ERR_NOTDIR",
	NotEmpty:     "ERR_NOTEMPTY",
	NameTooLong:  "ERR_NAMETOOLONG",
	Inval:        "ERR_INVAL",
	CrossDevice:  "ERR_XDEV",
	NotSupported: "ERR_NOSYS",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "ERR_UNKNOWN"
}

func (c Code) Error() string {
	return c.String()
}

var errnoByCode = map[Code]syscall.Errno{
	NoSpc:        syscall.ENOSPC,
	IO:           syscall.EIO,
	BadF:         syscall.EBADF,
	NoEnt:        syscall.ENOENT,
	Exist:        syscall.EEXIST,
	IsDir:        syscall.EISDIR,
	NotDir:       syscall.ENOTDIR,
	NotEmpty:     syscall.ENOTEMPTY,
	NameTooLong:  syscall.ENAMETOOLONG,
	Inval:        syscall.EINVAL,
	CrossDevice:  syscall.EXDEV,
	NotSupported: syscall.ENOSYS,
}

// Errno maps a pipeline Code to the syscall.Errno the external boundary
// returns to the caller, per spec.md §7's one-for-one table.
func (c Code) Errno() syscall.Errno {
	if e, ok := errnoByCode[c]; ok {
		return e
	}
	return syscall.EINVAL
}

// Is reports whether err carries the given pipeline Code, unwrapping plain
// Code values (the only form pipeline functions return).
func Is(err error, c Code) bool {
	code, ok := err.(Code)
	return ok && code == c
}
