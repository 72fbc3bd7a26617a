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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpc-scratch/ramfs"
	"github.com/hpc-scratch/ramfs/cfg"
)

// newStatCmd mounts a fresh superblock and reports the stat of a single
// path within it — useful mainly for exercising cfg flags against a live
// engine rather than as a real administrative tool (the superblock does
// not outlive this process in private mode).
func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat [path]",
		Short: "Mount and stat a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(c); err != nil {
				return err
			}

			m, err := ramfs.NewMount(c)
			if err != nil {
				return fmt.Errorf("mount: %w", err)
			}
			defer m.Close()

			st, err := m.Stat(args[0])
			if err != nil {
				return fmt.Errorf("stat %s: %w", args[0], err)
			}
			fmt.Printf("%s: size=%d mode=%s\n", args[0], st.Size, st.Mode)
			return nil
		},
	}
}
