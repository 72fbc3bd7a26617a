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

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the engine's full mount-time configuration: the compile-time
// constants of spec.md §6 exposed as overridable mount parameters (per
// spec.md §9's permission to do so), the two-tier enable flags, the
// superblock addressing key, and the ambient logging setup.
type Config struct {
	// MountPrefix is the absolute path prefix routed to the engine (C11).
	MountPrefix string `yaml:"mount-prefix"`

	// Rank selects this process's shared-segment key offset in multi-owner
	// mode; ignored in private mode.
	Rank int `yaml:"rank"`

	// UseSpillover enables the local-disk overflow tier (C4).
	UseSpillover bool `yaml:"use-spillover"`

	// UseSingleShm selects private (true) vs shared (false) segment mode.
	UseSingleShm bool `yaml:"use-single-shm"`

	// UseContainers is reserved for the exploratory container tier; always
	// false in this implementation (spec.md §1, §6 — out of scope).
	UseContainers bool `yaml:"use-containers"`

	// SpilloverPath is the backing file for the spillover tier.
	SpilloverPath string `yaml:"spillover-path"`

	// SuperblockKey is added to Rank to form the shared-segment identity in
	// shared mode (spec.md §6's SUPERBLOCK_KEY).
	SuperblockKey int `yaml:"superblock-key"`

	MaxFiles         int `yaml:"max-files"`
	MaxFilename      int `yaml:"max-filename"`
	ChunkSize        int `yaml:"chunk-size"`
	MaxChunks        int `yaml:"max-chunks"`
	MaxChunksPerFile int `yaml:"max-chunks-per-file"`
	MaxSpillChunks   int `yaml:"max-spill-chunks"`

	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Severity LogSeverity `yaml:"severity"`
	Format   LogFormat   `yaml:"format"`
	FilePath string      `yaml:"file-path"`
}

// BindFlags registers every Config field on flagSet and binds it into
// viper, following the same BindPFlag idiom gcsfuse's cfg.BindFlags uses.
// Besides flags, only the three environment variables bound below supply
// values; a YAML file is applied separately by LoadFile.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.String("mount-prefix", "/tmp", "Absolute path prefix routed to the engine.")
	flagSet.Int("rank", 0, "Process rank, used to derive the shared-segment key in multi-owner mode.")
	flagSet.Bool("use-spillover", false, "Enable the local-disk spillover tier (USE_SPILLOVER).")
	flagSet.Bool("use-single-shm", true, "Use a private (true) or shared-segment (false) superblock (USE_SINGLE_SHM).")
	flagSet.Bool("use-containers", false, "Reserved; the container tier is out of scope (USE_CONTAINERS).")
	flagSet.String("spillover-path", "", "Backing file path for the spillover tier.")
	flagSet.Int("superblock-key", 1234, "Base key for the shared superblock segment (SUPERBLOCK_KEY).")
	flagSet.Int("max-files", 128, "Maximum number of file slots (MAX_FILES).")
	flagSet.Int("max-filename", 128, "Maximum inline filename length (MAX_FILENAME).")
	flagSet.Int("chunk-size", 1<<20, "Fixed chunk size in bytes; must be a power of two (CHUNK_SIZE).")
	flagSet.Int("max-chunks", 1024, "Maximum memory-tier chunk count (MAX_CHUNKS).")
	flagSet.Int("max-chunks-per-file", 1024, "Maximum logical chunks per file (MAX_CHUNKS_PER_FILE).")
	flagSet.Int("max-spill-chunks", 1024, "Maximum spillover-tier chunk count (MAX_SPILL_CHUNKS).")
	flagSet.String("log-severity", string(InfoLogSeverity), "Minimum log severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF.")
	flagSet.String("log-format", string(TextLogFormat), "Log format: text or json.")
	flagSet.String("log-file", "", "Optional log file path; empty logs to stderr.")

	for _, name := range []string{
		"mount-prefix", "rank", "use-spillover", "use-single-shm", "use-containers",
		"spillover-path", "superblock-key", "max-files", "max-filename", "chunk-size",
		"max-chunks", "max-chunks-per-file", "max-spill-chunks",
		"log-severity", "log-format", "log-file",
	} {
		if err := viper.BindPFlag(name, flagSet.Lookup(name)); err != nil {
			return err
		}
	}

	// Environment variables named directly after the spec, rather than a
	// uniform prefix, since spec.md §6 fixes their exact names.
	_ = viper.BindEnv("use-containers", "USE_CONTAINERS")
	_ = viper.BindEnv("use-spillover", "USE_SPILLOVER")
	_ = viper.BindEnv("use-single-shm", "USE_SINGLE_SHM")
	return nil
}

// Decode builds a Config from viper's current bound state, after BindFlags
// and flagSet.Parse have run.
func Decode() Config {
	return Config{
		MountPrefix:      viper.GetString("mount-prefix"),
		Rank:             viper.GetInt("rank"),
		UseSpillover:     viper.GetBool("use-spillover"),
		UseSingleShm:     viper.GetBool("use-single-shm"),
		UseContainers:    viper.GetBool("use-containers"),
		SpilloverPath:    viper.GetString("spillover-path"),
		SuperblockKey:    viper.GetInt("superblock-key"),
		MaxFiles:         viper.GetInt("max-files"),
		MaxFilename:      viper.GetInt("max-filename"),
		ChunkSize:        viper.GetInt("chunk-size"),
		MaxChunks:        viper.GetInt("max-chunks"),
		MaxChunksPerFile: viper.GetInt("max-chunks-per-file"),
		MaxSpillChunks:   viper.GetInt("max-spill-chunks"),
		Logging: LoggingConfig{
			Severity: LogSeverity(viper.GetString("log-severity")),
			Format:   LogFormat(viper.GetString("log-format")),
			FilePath: viper.GetString("log-file"),
		},
	}
}

// Default returns the spec.md §6 defaults without touching viper/pflag at
// all, for library callers (internal/engine tests, cmd smoke runs) that
// want sane values without a CLI.
func Default() Config {
	return Config{
		MountPrefix:      "/tmp",
		UseSingleShm:     true,
		SuperblockKey:    1234,
		MaxFiles:         128,
		MaxFilename:      128,
		ChunkSize:        1 << 20,
		MaxChunks:        1024,
		MaxChunksPerFile: 1024,
		MaxSpillChunks:   1024,
		Logging: LoggingConfig{
			Severity: InfoLogSeverity,
			Format:   TextLogFormat,
		},
	}
}
