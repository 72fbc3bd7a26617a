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

// Package cfg defines the engine's mount-time configuration, bound from
// flags, environment variables, and an optional YAML file the way gcsfuse's
// cfg package binds its own Config (github.com/spf13/viper +
// github.com/spf13/pflag).
package cfg

import (
	"fmt"
	"slices"
	"strings"
)

// LogSeverity mirrors gcsfuse's cfg.LogSeverity: TRACE/DEBUG/INFO/WARNING/
// ERROR/OFF, decoded from text and ranked for level filtering.
type LogSeverity string

const (
	TraceLogSeverity   LogSeverity = "TRACE"
	DebugLogSeverity   LogSeverity = "DEBUG"
	InfoLogSeverity    LogSeverity = "INFO"
	WarningLogSeverity LogSeverity = "WARNING"
	ErrorLogSeverity   LogSeverity = "ERROR"
	OffLogSeverity     LogSeverity = "OFF"
)

var severityRanking = map[LogSeverity]int{
	TraceLogSeverity:   0,
	DebugLogSeverity:   1,
	InfoLogSeverity:    2,
	WarningLogSeverity: 3,
	ErrorLogSeverity:   4,
	OffLogSeverity:     5,
}

func (l *LogSeverity) UnmarshalText(text []byte) error {
	level := LogSeverity(strings.ToUpper(string(text)))
	if _, ok := severityRanking[level]; !ok {
		return fmt.Errorf("invalid log severity: %s", text)
	}
	*l = level
	return nil
}

// Rank returns the integer rank used to compare severities; -1 if unknown.
func (l LogSeverity) Rank() int {
	if r, ok := severityRanking[l]; ok {
		return r
	}
	return -1
}

// LogFormat selects the slog handler: "text" or "json".
type LogFormat string

const (
	TextLogFormat LogFormat = "text"
	JSONLogFormat LogFormat = "json"
)

func (f *LogFormat) UnmarshalText(text []byte) error {
	v := LogFormat(strings.ToLower(string(text)))
	if !slices.Contains([]LogFormat{TextLogFormat, JSONLogFormat}, v) {
		return fmt.Errorf("invalid log format: %s", text)
	}
	*f = v
	return nil
}
