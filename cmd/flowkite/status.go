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
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/scheduler/driver"
	"github.com/flowkite/flowkite/scheduler/model"
)

// workflowStatus is the printable snapshot of a workflow.
type workflowStatus struct {
	Name        string            `json:"name"`
	TargetState model.TargetState `json:"target-state"`
	Terminable  bool              `json:"terminable"`
	Recurring   bool              `json:"recurring"`
	State       model.TaskState   `json:"state,omitempty"`
	// Jobs lists the DAG nodes in chain order when the DAG is a single
	// chain, otherwise in name order.
	Jobs      []string                   `json:"jobs,omitempty"`
	JobStates map[string]model.TaskState `json:"job-states,omitempty"`
}

// newCmdStatus creates the `status` command.
func newCmdStatus(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status <workflow>",
		Short: "Print the configuration and runtime state of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cmd.Context(), o, func(ctx context.Context, d *driver.Driver) error {
				workflow := args[0]
				cfg, err := d.GetWorkflowConfig(ctx, workflow)
				if err != nil {
					return err
				}
				status := &workflowStatus{
					Name:        cfg.Name,
					TargetState: cfg.TargetState,
					Terminable:  cfg.Terminable,
					Recurring:   cfg.IsRecurring(),
				}
				dag, err := cfg.JobDag()
				if err != nil {
					return err
				}
				status.Jobs = chainOrder(dag.Nodes(), dag.Children)
				wfCtx, err := d.GetWorkflowContext(ctx, workflow)
				if err != nil {
					return err
				}
				if wfCtx != nil {
					status.State = wfCtx.State
					status.JobStates = wfCtx.JobStates
				}
				data, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return errors.WrapError(errors.ErrEncodeFailed, err)
				}
				cmd.Println(string(data))
				return nil
			})
		},
	}
}

// chainOrder walks a single-chain DAG head to tail. A DAG with branches
// falls back to the sorted node list.
func chainOrder(nodes []string, children func(string) []string) []string {
	if len(nodes) == 0 {
		return nil
	}
	hasParent := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		for _, child := range children(node) {
			hasParent[child] = true
		}
	}
	var head string
	heads := 0
	for _, node := range nodes {
		if !hasParent[node] {
			head = node
			heads++
		}
	}
	if heads != 1 {
		return nodes
	}
	ordered := make([]string, 0, len(nodes))
	for node := head; ; {
		ordered = append(ordered, node)
		next := children(node)
		if len(next) != 1 {
			break
		}
		node = next[0]
	}
	if len(ordered) != len(nodes) {
		return nodes
	}
	return ordered
}
