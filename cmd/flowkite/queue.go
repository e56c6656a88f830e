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
	"context"

	"github.com/spf13/cobra"

	"github.com/flowkite/flowkite/scheduler/driver"
)

// newCmdFlush creates the `flush` command.
func newCmdFlush(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "flush <queue>",
		Short: "Remove every job from a job queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cmd.Context(), o, func(ctx context.Context, d *driver.Driver) error {
				if err := d.FlushQueue(ctx, args[0]); err != nil {
					return err
				}
				cmd.Printf("flushed queue %s\n", args[0])
				return nil
			})
		},
	}
}

// newCmdCleanup creates the `cleanup` command.
func newCmdCleanup(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <queue>",
		Short: "Remove finished jobs from a job queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cmd.Context(), o, func(ctx context.Context, d *driver.Driver) error {
				if err := d.CleanupJobQueue(ctx, args[0]); err != nil {
					return err
				}
				cmd.Printf("cleaned up queue %s\n", args[0])
				return nil
			})
		},
	}
}
