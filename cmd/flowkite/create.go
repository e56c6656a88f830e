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
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/scheduler/model"
)

// workflowDefinition is the json document the create command consumes.
type workflowDefinition struct {
	Name string `json:"name"`
	// Queue marks a long-lived job queue instead of a one-shot workflow.
	Queue    bool                        `json:"queue,omitempty"`
	Capacity int                         `json:"capacity,omitempty"`
	Schedule *model.ScheduleConfig       `json:"schedule,omitempty"`
	Expiry   int64                       `json:"expiry,omitempty"`
	Jobs     map[string]*model.JobConfig `json:"jobs,omitempty"`
	Edges    [][2]string                 `json:"edges,omitempty"`
}

func (def *workflowDefinition) toWorkflow() (*model.Workflow, error) {
	var w *model.Workflow
	if def.Queue {
		w = model.NewJobQueue(def.Name, def.Capacity)
	} else {
		w = model.NewWorkflow(def.Name)
	}
	for job, cfg := range def.Jobs {
		w.AddJob(job, cfg)
	}
	for _, edge := range def.Edges {
		w.AddParentChild(edge[0], edge[1])
	}
	if def.Schedule != nil {
		w.WithSchedule(def.Schedule)
	}
	if def.Expiry > 0 {
		w.WithExpiry(def.Expiry)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// createOptions defines flags for the `create` command.
type createOptions struct {
	definitionPath string
}

func (o *createOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.definitionPath, "definition", "d", "",
		"path of the json workflow definition")
	_ = cmd.MarkFlagRequired("definition")
}

// newCmdCreate creates the `create` command.
func newCmdCreate(o *options) *cobra.Command {
	co := &createOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create and start a workflow or job queue from a definition file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(co.definitionPath)
			if err != nil {
				return errors.Trace(err)
			}
			def := &workflowDefinition{}
			if err := json.Unmarshal(data, def); err != nil {
				return errors.WrapError(errors.ErrDecodeFailed, err)
			}
			w, err := def.toWorkflow()
			if err != nil {
				return err
			}
			s, err := connect(o)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.driver.Start(cmd.Context(), w); err != nil {
				return err
			}
			cmd.Printf("created workflow %s\n", w.Name())
			return nil
		},
	}
	co.addFlags(cmd)
	return cmd
}
