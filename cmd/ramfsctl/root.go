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
	"github.com/spf13/cobra"

	"github.com/hpc-scratch/ramfs/cfg"
)

var configFile string

// newRootCmd builds the cobra command tree, binding cfg.Config onto the
// root command's persistent flags the way gcsfuse's cmd/root.go does.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ramfsctl",
		Short: "Introspection and local smoke-test tool for the ramfs engine",
	}

	if err := cfg.BindFlags(root.PersistentFlags()); err != nil {
		panic(err)
	}
	root.PersistentFlags().StringVar(&configFile, "config-file", "",
		"Optional YAML mount-config file; its values override flag/env values.")

	root.AddCommand(newMountCmd())
	root.AddCommand(newStatCmd())
	root.AddCommand(newServeMetricsCmd())
	return root
}

// loadConfig resolves Config, preferring an explicit YAML file over
// flags/env when --config-file is given (this tool is a smoke-test
// harness, not the production bootstrap path, so it does not attempt
// gcsfuse's full flag-over-file precedence merge).
func loadConfig() (cfg.Config, error) {
	if configFile == "" {
		return cfg.Decode(), nil
	}
	return cfg.LoadFile(configFile, cfg.Decode())
}
