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

package logutil

import (
	"strings"

	"github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cerror "github.com/flowkite/flowkite/pkg/errors"
)

// Config defines the logging configuration of a flowkite process.
type Config struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level"`
	// File is the log file path. Empty means stderr.
	File string `toml:"file" json:"file"`
	// FileMaxSize is the max size of a log file in MB before rotation.
	FileMaxSize int `toml:"max-size" json:"max-size"`
	// FileMaxDays is how many days rotated files are kept.
	FileMaxDays int `toml:"max-days" json:"max-days"`
	// FileMaxBackups is how many rotated files are kept.
	FileMaxBackups int `toml:"max-backups" json:"max-backups"`
}

// Adjust fills default values.
func (cfg *Config) Adjust() {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	// "warning" is accepted for compatibility with other TiDB tooling.
	if strings.ToLower(strings.TrimSpace(cfg.Level)) == "warning" {
		cfg.Level = "warn"
	}
	if cfg.FileMaxSize == 0 {
		cfg.FileMaxSize = 300
	}
}

// InitLogger initializes the global logger used by every flowkite package.
func InitLogger(cfg *Config) error {
	pclogConfig := &log.Config{
		Level: cfg.Level,
		File: log.FileLogConfig{
			Filename:   cfg.File,
			MaxSize:    cfg.FileMaxSize,
			MaxDays:    cfg.FileMaxDays,
			MaxBackups: cfg.FileMaxBackups,
		},
	}
	logger, props, err := log.InitLogger(pclogConfig)
	if err != nil {
		return cerror.Trace(err)
	}
	log.ReplaceGlobals(logger, props)
	return nil
}

// SetLogLevel changes the log level of the global logger at run time.
func SetLogLevel(level string) error {
	lv := zapcore.InfoLevel
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return cerror.Trace(err)
	}
	log.SetLevel(lv)
	return nil
}

// WithComponent returns a logger tagged with the given component name.
func WithComponent(component string) *zap.Logger {
	return log.L().With(zap.String("component", component))
}
