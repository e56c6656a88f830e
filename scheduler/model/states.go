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

// TaskState is the lifecycle state of a workflow or job, written by the
// rebalance subsystem and read by the scheduler.
type TaskState string

// TaskState values
const (
	TaskStateNotStarted TaskState = "NOT_STARTED"
	TaskStateInProgress TaskState = "IN_PROGRESS"
	TaskStateStopped    TaskState = "STOPPED"
	TaskStateCompleted  TaskState = "COMPLETED"
	TaskStateFailed     TaskState = "FAILED"
	TaskStateAborted    TaskState = "ABORTED"
)

// Terminal reports whether the state is final.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateAborted:
		return true
	}
	return false
}

// Valid reports whether s is a known TaskState.
func (s TaskState) Valid() bool {
	switch s {
	case TaskStateNotStarted, TaskStateInProgress, TaskStateStopped,
		TaskStateCompleted, TaskStateFailed, TaskStateAborted:
		return true
	}
	return false
}

// TargetState is the desired lifecycle command layered onto a workflow's
// config. The execution subsystem observes it and drives TaskState
// transitions; the scheduler never overwrites it once the workflow context
// carries a finish time.
type TargetState string

// TargetState values
const (
	TargetStateStart  TargetState = "START"
	TargetStateStop   TargetState = "STOP"
	TargetStateDelete TargetState = "DELETE"
)
