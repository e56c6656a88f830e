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

	cerror "github.com/flowkite/flowkite/pkg/errors"
)

// UnfinishedTime is the finish-time sentinel of a workflow that is still
// running. A context whose finish time is anything else is frozen: its
// target state must not be overwritten anymore.
const UnfinishedTime int64 = -1

// WorkflowContext is the mutable runtime state of a workflow, owned by the
// rebalance subsystem. The scheduler reads it to gate operations and to
// drive polling, and only writes the recurrence bookkeeping fields.
type WorkflowContext struct {
	State TaskState `json:"state,omitempty"`
	// JobStates maps namespaced job names to their state.
	JobStates map[string]TaskState `json:"job-states,omitempty"`
	// StartTime and FinishTime are unix milliseconds. FinishTime is
	// UnfinishedTime while the workflow runs.
	StartTime  int64 `json:"start-time,omitempty"`
	FinishTime int64 `json:"finish-time"`
	// LastScheduledWorkflow is the most recently fired concrete instance
	// of a recurring template.
	LastScheduledWorkflow string `json:"last-scheduled-workflow,omitempty"`
	// ScheduledWorkflows lists every instance the template ever fired.
	ScheduledWorkflows []string `json:"scheduled-workflows,omitempty"`
}

// NewWorkflowContext returns a context in the not-started state.
func NewWorkflowContext() *WorkflowContext {
	return &WorkflowContext{
		State:      TaskStateNotStarted,
		FinishTime: UnfinishedTime,
	}
}

// Marshal returns the json format of the WorkflowContext.
func (c *WorkflowContext) Marshal() ([]byte, error) {
	data, err := json.Marshal(c)
	return data, cerror.WrapError(cerror.ErrEncodeFailed, err)
}

// Unmarshal parses the json format into the WorkflowContext.
func (c *WorkflowContext) Unmarshal(data []byte) error {
	err := json.Unmarshal(data, c)
	return cerror.WrapError(cerror.ErrDecodeFailed, err)
}

// Finished reports whether the workflow has a concrete finish time. Both the
// sentinel and an absent (zero) field count as unfinished.
func (c *WorkflowContext) Finished() bool {
	return c.FinishTime > 0
}

// JobState returns the state of the given namespaced job, or "" if the job
// has no recorded state yet.
func (c *WorkflowContext) JobState(namespacedJob string) TaskState {
	return c.JobStates[namespacedJob]
}

// JobContext is the mutable runtime state of one job, owned by the rebalance
// subsystem.
type JobContext struct {
	State      TaskState `json:"state,omitempty"`
	StartTime  int64     `json:"start-time,omitempty"`
	FinishTime int64     `json:"finish-time"`
	// TaskStates maps task partition index to its state.
	TaskStates map[int]TaskState `json:"task-states,omitempty"`
}

// Marshal returns the json format of the JobContext.
func (c *JobContext) Marshal() ([]byte, error) {
	data, err := json.Marshal(c)
	return data, cerror.WrapError(cerror.ErrEncodeFailed, err)
}

// Unmarshal parses the json format into the JobContext.
func (c *JobContext) Unmarshal(data []byte) error {
	err := json.Unmarshal(data, c)
	return cerror.WrapError(cerror.ErrDecodeFailed, err)
}
