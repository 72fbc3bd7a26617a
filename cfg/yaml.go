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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile decodes an optional YAML mount-config file on top of base, the
// way gcsfuse's legacy mount-config decoding reads a YAML file. Fields
// present in the file replace base's values; fields absent from the file
// keep base's values (Default(), or Decode() as cmd/ramfsctl passes).
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("cfg: read config file %s: %w", path, err)
	}
	c := base
	if err := yaml.Unmarshal(data, &c); err != nil {
		return base, fmt.Errorf("cfg: parse config file %s: %w", path, err)
	}
	return c, nil
}
