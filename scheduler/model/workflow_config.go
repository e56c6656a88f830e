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

package model

import (
	"encoding/json"

	"github.com/robfig/cron"

	cerror "github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/scheduler/dag"
)

// ScheduleConfig describes the recurrence of a template workflow. A workflow
// with a non-empty cron expression is recurring: each firing produces an
// independent concrete workflow instance.
type ScheduleConfig struct {
	// CronExpr is a standard 5-field cron expression.
	CronExpr string `json:"cron"`
	// StartTime delays the first firing, unix milliseconds. Zero means
	// fire on the next cron boundary.
	StartTime int64 `json:"start-time,omitempty"`
}

// Validate checks the cron expression parses.
func (s *ScheduleConfig) Validate() error {
	if s.CronExpr == "" {
		return nil
	}
	if _, err := cron.ParseStandard(s.CronExpr); err != nil {
		return cerror.Annotatef(err, "invalid cron expression %q", s.CronExpr)
	}
	return nil
}

// WorkflowConfig is the persisted configuration of a workflow or queue.
// A terminable workflow's config is immutable once written; only queue
// (non-terminable) configs may be replaced through UpdateWorkflow.
type WorkflowConfig struct {
	Name string `json:"name"`
	// JobTypes maps de-namespaced job names to their job type.
	JobTypes    map[string]string `json:"job-types,omitempty"`
	TargetState TargetState       `json:"target-state"`
	Schedule    *ScheduleConfig   `json:"schedule,omitempty"`
	// Capacity bounds the number of concurrently present job nodes in a
	// queue's DAG. Zero means unbounded.
	Capacity int `json:"capacity"`
	// Terminable marks a one-shot workflow. False means a long-lived
	// queue that supports enqueue and delete of individual jobs.
	Terminable bool `json:"terminable"`
	// Dag is the serialized JobDag (see scheduler/dag).
	Dag string `json:"dag"`
	// Expiry is how long a finished workflow's records are kept, unix
	// milliseconds. Zero means keep forever.
	Expiry int64 `json:"expiry,omitempty"`
}

// Marshal returns the json format of the WorkflowConfig.
func (c *WorkflowConfig) Marshal() ([]byte, error) {
	data, err := json.Marshal(c)
	return data, cerror.WrapError(cerror.ErrEncodeFailed, err)
}

// Unmarshal parses the json format into the WorkflowConfig.
func (c *WorkflowConfig) Unmarshal(data []byte) error {
	err := json.Unmarshal(data, c)
	return cerror.WrapError(cerror.ErrDecodeFailed, err)
}

// IsRecurring reports whether the workflow is a recurring template.
func (c *WorkflowConfig) IsRecurring() bool {
	return c.Schedule != nil && c.Schedule.CronExpr != ""
}

// JobDag decodes the embedded DAG. An empty Dag field decodes to an empty
// graph.
func (c *WorkflowConfig) JobDag() (*dag.JobDag, error) {
	if c.Dag == "" {
		return dag.NewJobDag(), nil
	}
	return dag.Unmarshal([]byte(c.Dag))
}

// SetJobDag re-embeds the DAG after a mutation.
func (c *WorkflowConfig) SetJobDag(d *dag.JobDag) error {
	encoded, err := d.Marshal()
	if err != nil {
		return err
	}
	c.Dag = encoded
	return nil
}

// IsWorkflowConfigRecord reports whether a raw config record is a workflow
// config rather than a job config. Both record kinds share the configs
// prefix in the store; job configs always carry their owning workflow's
// name, workflow configs never do.
func IsWorkflowConfigRecord(data []byte) bool {
	var head struct {
		Workflow string `json:"workflow"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return false
	}
	return head.Workflow == ""
}

// Validate checks the config is well-formed.
func (c *WorkflowConfig) Validate() error {
	if c.Name == "" {
		return cerror.ErrInvalidWorkflow.GenWithStackByArgs(c.Name, "workflow name is empty")
	}
	if c.Capacity < 0 {
		return cerror.ErrInvalidWorkflow.GenWithStackByArgs(c.Name, "capacity is negative")
	}
	if c.Schedule != nil {
		if err := c.Schedule.Validate(); err != nil {
			return cerror.ErrInvalidWorkflow.GenWithStackByArgs(c.Name, err.Error())
		}
	}
	d, err := c.JobDag()
	if err != nil {
		return err
	}
	return d.Validate()
}
