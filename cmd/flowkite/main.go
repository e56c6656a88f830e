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

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/flowkite/flowkite/pkg/config"
	"github.com/flowkite/flowkite/pkg/logutil"
)

// options defines flags shared by every flowkite command.
type options struct {
	configPath string
	endpoints  []string
	cluster    string
	logLevel   string

	cfg *config.Config
}

func newOptions() *options {
	return &options{}
}

func (o *options) addFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "config file path")
	cmd.PersistentFlags().StringSliceVar(&o.endpoints, "endpoints", nil,
		"etcd endpoints, overrides the config file")
	cmd.PersistentFlags().StringVar(&o.cluster, "cluster", "",
		"cluster name, overrides the config file")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "",
		"log level (debug|info|warn|error)")
}

// complete loads the config file and applies flag overrides.
func (o *options) complete() error {
	cfg := config.GetDefaultConfig()
	if o.configPath != "" {
		loaded, err := config.FromTomlFile(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if len(o.endpoints) > 0 {
		cfg.Endpoints = o.endpoints
	}
	if o.cluster != "" {
		cfg.Cluster = o.cluster
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.ValidateAndAdjust(); err != nil {
		return err
	}
	o.cfg = cfg
	return logutil.InitLogger(&cfg.Log)
}

func newCmdRoot() *cobra.Command {
	o := newOptions()
	cmd := &cobra.Command{
		Use:          "flowkite",
		Short:        "Manage workflows and job queues of a flowkite cluster",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.complete()
		},
	}
	o.addFlags(cmd)
	cmd.AddCommand(newCmdCreate(o))
	cmd.AddCommand(newCmdEnqueue(o))
	cmd.AddCommand(newCmdDeleteJob(o))
	cmd.AddCommand(newCmdStop(o))
	cmd.AddCommand(newCmdResume(o))
	cmd.AddCommand(newCmdDelete(o))
	cmd.AddCommand(newCmdFlush(o))
	cmd.AddCommand(newCmdCleanup(o))
	cmd.AddCommand(newCmdStatus(o))
	cmd.AddCommand(newCmdList(o))
	return cmd
}

func main() {
	if err := newCmdRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
