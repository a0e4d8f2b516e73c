// Mgmt
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
//
// Additional permission under GNU GPL version 3 section 7
//
// If you modify this program, or any covered work, by linking or combining it
// with embedded mcl code and modules (and that the embedded mcl code and
// modules which link with this program, contain a copy of their source code in
// the authoritative form) containing parts covered by the terms of any other
// license, the licensors of this program grant you additional permission to
// convey the resulting work. Furthermore, the licensors of this program grant
// the original author, James Shubin, additional permission to update this
// additional permission if he deems it necessary to achieve the goals of this
// additional permission.

package lib

import (
	"fmt"
	"time"

	"github.com/rtfl-lang/rtfl/prometheus"
	"github.com/rtfl-lang/rtfl/util"
	"github.com/rtfl-lang/rtfl/util/errwrap"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultGCInterval is the time between two periodic collections.
	DefaultGCInterval = 20 * time.Second

	// DefaultLibs is the default library directory.
	DefaultLibs = "libs"
)

// Config is the set of options that a run accepts. It is filled in by the
// command line parser and by the config file. The arg tags are used by the
// cli parser, and the yaml tags by the file loader.
type Config struct {
	// ConfigFile is a yaml file with defaults for the other fields.
	ConfigFile string `arg:"--config" yaml:"-" help:"yaml file with default settings"`

	// GCInterval is parsed with time.ParseDuration.
	GCInterval string `arg:"--gc-interval" yaml:"gc-interval" help:"time between two garbage collector sweeps"`

	Prometheus       bool   `arg:"--prometheus" yaml:"prometheus" help:"start a prometheus instance"`
	PrometheusListen string `arg:"--prometheus-listen" yaml:"prometheus-listen" help:"specify prometheus instance binding"`

	Libs string `arg:"--libs,env:RTFL_LIBS" yaml:"libs" help:"directory that require searches for libraries"`

	Time  bool `arg:"--time" yaml:"time" help:"print how long the run took"`
	Watch bool `arg:"--watch" yaml:"watch" help:"run again whenever the file changes"`
}

// LoadConfig reads a yaml config file.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	path, err := util.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not read config file")
	}
	config := &Config{}
	if err := yaml.UnmarshalStrict(b, config); err != nil {
		return nil, errwrap.Wrapf(err, "could not parse config file %s", path)
	}
	return config, nil
}

// Override returns a copy of the config where every field that is set in the
// other config replaces the value here. Flags can only turn booleans on.
func (obj *Config) Override(other *Config) *Config {
	result := *obj
	if other == nil {
		return &result
	}
	if other.ConfigFile != "" {
		result.ConfigFile = other.ConfigFile
	}
	if other.GCInterval != "" {
		result.GCInterval = other.GCInterval
	}
	result.Prometheus = result.Prometheus || other.Prometheus
	if other.PrometheusListen != "" {
		result.PrometheusListen = other.PrometheusListen
	}
	if other.Libs != "" {
		result.Libs = other.Libs
	}
	result.Time = result.Time || other.Time
	result.Watch = result.Watch || other.Watch
	return &result
}

// Validate fills in the defaults and checks the values.
func (obj *Config) Validate() error {
	if obj.GCInterval == "" {
		obj.GCInterval = DefaultGCInterval.String()
	}
	d, err := time.ParseDuration(obj.GCInterval)
	if err != nil {
		return errwrap.Wrapf(err, "invalid gc interval")
	}
	if d <= 0 {
		return fmt.Errorf("the gc interval must be positive, got: %s", obj.GCInterval)
	}
	if obj.PrometheusListen == "" {
		obj.PrometheusListen = prometheus.DefaultPrometheusListen
	}
	if obj.Libs == "" {
		obj.Libs = DefaultLibs
	}
	libs, err := util.ExpandHome(obj.Libs)
	if err != nil {
		return errwrap.Wrapf(err, "invalid libs directory")
	}
	obj.Libs = libs
	return nil
}

// Interval returns the parsed gc interval. Call Validate first.
func (obj *Config) Interval() time.Duration {
	d, err := time.ParseDuration(obj.GCInterval)
	if err != nil {
		return DefaultGCInterval
	}
	return d
}
