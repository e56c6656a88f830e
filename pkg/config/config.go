// Copyright 2025 Flowkite Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the operator-facing configuration of the scheduler
// tooling.
package config

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/pkg/logutil"
)

const (
	defaultCluster     = "default"
	defaultDialTimeout = 5 * time.Second
)

// Config is the scheduler client configuration, read from a toml file.
type Config struct {
	// Cluster is the cluster name all metadata lives under.
	Cluster string `toml:"cluster" json:"cluster"`
	// Endpoints are the etcd endpoints of the metadata store.
	Endpoints []string `toml:"endpoints" json:"endpoints"`
	// DialTimeout bounds the initial etcd connection.
	DialTimeout TomlDuration   `toml:"dial-timeout" json:"dial-timeout"`
	Log         logutil.Config `toml:"log" json:"log"`
}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Cluster:     defaultCluster,
		Endpoints:   []string{"http://127.0.0.1:2379"},
		DialTimeout: TomlDuration(defaultDialTimeout),
		Log:         logutil.Config{Level: "info"},
	}
}

// ValidateAndAdjust fills defaults and rejects inconsistent settings.
func (c *Config) ValidateAndAdjust() error {
	if c.Cluster == "" {
		c.Cluster = defaultCluster
	}
	if len(c.Endpoints) == 0 {
		return errors.New("no etcd endpoints configured")
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = TomlDuration(defaultDialTimeout)
	}
	c.Log.Adjust()
	return nil
}

// FromTomlFile loads and adjusts a Config, rejecting unknown keys so typos
// fail loudly instead of silently falling back to defaults.
func FromTomlFile(path string) (*Config, error) {
	cfg := GetDefaultConfig()
	metaData, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if undecoded := metaData.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, item := range undecoded {
			keys = append(keys, item.String())
		}
		return nil, errors.Errorf(
			"config file %s contained unknown configuration options: %s",
			path, strings.Join(keys, ", "))
	}
	if err := cfg.ValidateAndAdjust(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// String renders the config for logging.
func (c *Config) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
}

// TomlDuration makes time.Duration toml-decodable from strings like "5s".
type TomlDuration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *TomlDuration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Trace(err)
	}
	*d = TomlDuration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d TomlDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration converts back to a time.Duration.
func (d TomlDuration) Duration() time.Duration {
	return time.Duration(d)
}
