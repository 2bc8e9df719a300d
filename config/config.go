// Dfalex
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package config reads the engine options from a yaml file.
package config

import (
	"fmt"

	"github.com/purpleidea/dfalex/lexer"
	"github.com/purpleidea/dfalex/util/errwrap"

	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v2"
)

// Config is the yaml form of the engine options. Anything which is left out
// keeps the engine default.
type Config struct {
	// Start is the start state. It is a pointer so that an explicit zero
	// can be told apart from a missing value.
	Start *int `yaml:"start,omitempty"`

	// Identifier is the label that keyword resolution applies to.
	Identifier string `yaml:"identifier,omitempty"`

	// Keyword is the label given to resolved keywords.
	Keyword string `yaml:"keyword,omitempty"`

	// Filtered is the list of labels dropped from the output. When it's
	// missing, the default list is used, and an empty list keeps
	// everything.
	Filtered []string `yaml:"filtered"`

	// Policy is either `abort` or `resync`.
	Policy string `yaml:"policy,omitempty"`

	// FoldCase retries upper case characters in lower case.
	FoldCase bool `yaml:"foldcase,omitempty"`
}

// Parse decodes a config. Unknown fields are an error.
func Parse(data []byte) (*Config, error) {
	obj := &Config{}
	if err := yaml.UnmarshalStrict(data, obj); err != nil {
		return nil, errwrap.Wrapf(err, "can't decode config")
	}
	if err := obj.Validate(); err != nil {
		return nil, err
	}
	return obj, nil
}

// ParseFile reads and decodes the named config file.
func ParseFile(fs afero.Fs, name string) (*Config, error) {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't read config `%s`", name)
	}
	obj, err := Parse(data)
	if err != nil {
		return nil, errwrap.Wrapf(err, "config `%s`", name)
	}
	return obj, nil
}

// Validate checks the values which the yaml decoder can't.
func (obj *Config) Validate() error {
	if obj.Start != nil && *obj.Start < 0 {
		return fmt.Errorf("negative start state: %d", *obj.Start)
	}
	if _, err := lexer.ParsePolicy(obj.Policy); err != nil {
		return err
	}
	for _, label := range obj.Filtered {
		if label == "" {
			return fmt.Errorf("empty filtered label")
		}
	}
	return nil
}

// Apply copies the options which are set onto the engine. Run it before the
// engine Init.
func (obj *Config) Apply(engine *lexer.Engine) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	if obj.Start != nil {
		engine.Start = lexer.State(*obj.Start)
	}
	if obj.Identifier != "" {
		engine.Identifier = lexer.Label(obj.Identifier)
	}
	if obj.Keyword != "" {
		engine.Keyword = lexer.Label(obj.Keyword)
	}
	if obj.Filtered != nil {
		engine.Filtered = []lexer.Label{}
		for _, label := range obj.Filtered {
			engine.Filtered = append(engine.Filtered, lexer.Label(label))
		}
	}
	if obj.Policy != "" {
		policy, _ := lexer.ParsePolicy(obj.Policy) // validated above
		engine.Policy = policy
	}
	if obj.FoldCase {
		engine.FoldCase = true
	}
	return nil
}

// String returns the config in yaml form.
func (obj *Config) String() string {
	data, err := yaml.Marshal(obj)
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}
	return string(data)
}
