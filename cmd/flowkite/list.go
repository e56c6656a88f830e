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
	"sort"

	"github.com/spf13/cobra"

	"github.com/flowkite/flowkite/scheduler/driver"
)

// newCmdList creates the `list` command.
func newCmdList(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every workflow and job queue in the cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cmd.Context(), o, func(ctx context.Context, d *driver.Driver) error {
				workflows, err := d.ListWorkflows(ctx)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(workflows))
				for name := range workflows {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					cfg := workflows[name]
					kind := "workflow"
					switch {
					case cfg.IsRecurring():
						kind = "template"
					case !cfg.Terminable:
						kind = "queue"
					}
					cmd.Printf("%s\t%s\t%s\n", name, kind, cfg.TargetState)
				}
				return nil
			})
		},
	}
}
