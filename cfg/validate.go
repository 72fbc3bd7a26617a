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

package cfg

import "fmt"

// Validate checks the bounds/overflow discipline spec.md §4.4 and §4.2
// require before a superblock is ever sized: chunk size must be a power of
// two (so the shift/mask addressing scheme in internal/addr is exact), the
// file, filename and per-file chunk capacities must be positive, max-chunks
// must not be negative, and max-spill-chunks must be positive only when
// spillover is enabled.
func Validate(c Config) error {
	if c.MountPrefix == "" {
		return fmt.Errorf("cfg: mount-prefix must not be empty")
	}
	if c.ChunkSize <= 0 || c.ChunkSize&(c.ChunkSize-1) != 0 {
		return fmt.Errorf("cfg: chunk-size must be a positive power of two, got %d", c.ChunkSize)
	}
	if c.MaxFiles <= 0 {
		return fmt.Errorf("cfg: max-files must be positive")
	}
	if c.MaxFilename <= 0 {
		return fmt.Errorf("cfg: max-filename must be positive")
	}
	if c.MaxChunks < 0 {
		return fmt.Errorf("cfg: max-chunks must not be negative")
	}
	if c.MaxChunksPerFile <= 0 {
		return fmt.Errorf("cfg: max-chunks-per-file must be positive")
	}
	if c.UseSpillover {
		if c.MaxSpillChunks <= 0 {
			return fmt.Errorf("cfg: max-spill-chunks must be positive when use-spillover is set")
		}
		if c.SpilloverPath == "" {
			return fmt.Errorf("cfg: spillover-path is required when use-spillover is set")
		}
	}
	if c.UseContainers {
		return fmt.Errorf("cfg: use-containers is reserved and not implemented")
	}
	if c.Logging.Severity.Rank() < 0 {
		return fmt.Errorf("cfg: invalid log severity %q", c.Logging.Severity)
	}
	return nil
}
