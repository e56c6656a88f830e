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
	"time"

	"github.com/spf13/cobra"

	"github.com/flowkite/flowkite/scheduler/driver"
)

// newCmdStop creates the `stop` command.
func newCmdStop(o *options) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "stop <workflow>",
		Short: "Request a workflow and its jobs to stop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cmd.Context(), o, func(ctx context.Context, d *driver.Driver) error {
				workflow := args[0]
				if wait > 0 {
					if err := d.WaitToStop(ctx, workflow, wait); err != nil {
						return err
					}
					cmd.Printf("workflow %s stopped\n", workflow)
					return nil
				}
				if err := d.Stop(ctx, workflow); err != nil {
					return err
				}
				cmd.Printf("requested stop of workflow %s\n", workflow)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0,
		"block until the workflow reports stopped, or fail after this duration")
	return cmd
}

// newCmdResume creates the `resume` command.
func newCmdResume(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <workflow>",
		Short: "Resume a stopped workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cmd.Context(), o, func(ctx context.Context, d *driver.Driver) error {
				if err := d.Resume(ctx, args[0]); err != nil {
					return err
				}
				cmd.Printf("resumed workflow %s\n", args[0])
				return nil
			})
		},
	}
}

// newCmdDelete creates the `delete` command.
func newCmdDelete(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <workflow>",
		Short: "Request deletion of a workflow or job queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cmd.Context(), o, func(ctx context.Context, d *driver.Driver) error {
				if err := d.Delete(ctx, args[0]); err != nil {
					return err
				}
				cmd.Printf("requested deletion of workflow %s\n", args[0])
				return nil
			})
		},
	}
}

// withDriver connects, runs fn and closes the connection.
func withDriver(ctx context.Context, o *options, fn func(context.Context, *driver.Driver) error) error {
	s, err := connect(o)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s.driver)
}
