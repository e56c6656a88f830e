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

// JobConfig is the immutable persisted configuration of one job.
type JobConfig struct {
	// Name is the namespaced job name once persisted; builders may carry
	// the bare name until the owning workflow is known.
	Name string `json:"name"`
	// Workflow is the owning workflow or queue name.
	Workflow string `json:"workflow"`
	// Type groups jobs for quota purposes; optional.
	Type string `json:"type,omitempty"`
	// Command is what the executing worker runs.
	Command string `json:"command,omitempty"`
	// TaskConfigs carries per-task key/value parameters.
	TaskConfigs []map[string]string `json:"task-configs,omitempty"`
	// TimeoutPerTask bounds a single task attempt, milliseconds. Zero
	// means no bound.
	TimeoutPerTask int64 `json:"timeout-per-task,omitempty"`
	// MaxAttempts caps retries per task. Zero means the executor default.
	MaxAttempts int `json:"max-attempts,omitempty"`
}

// Marshal returns the json format of the JobConfig.
func (c *JobConfig) Marshal() ([]byte, error) {
	data, err := json.Marshal(c)
	return data, cerror.WrapError(cerror.ErrEncodeFailed, err)
}

// Unmarshal parses the json format into the JobConfig.
func (c *JobConfig) Unmarshal(data []byte) error {
	err := json.Unmarshal(data, c)
	return cerror.WrapError(cerror.ErrDecodeFailed, err)
}

// Validate checks the config is well-formed.
func (c *JobConfig) Validate() error {
	if c.Name == "" {
		return cerror.ErrInvalidJob.GenWithStackByArgs(c.Name, "job name is empty")
	}
	if c.TimeoutPerTask < 0 {
		return cerror.ErrInvalidJob.GenWithStackByArgs(c.Name, "timeout-per-task is negative")
	}
	if c.MaxAttempts < 0 {
		return cerror.ErrInvalidJob.GenWithStackByArgs(c.Name, "max-attempts is negative")
	}
	return nil
}

// Clone returns a deep copy.
func (c *JobConfig) Clone() *JobConfig {
	clone := *c
	if c.TaskConfigs != nil {
		clone.TaskConfigs = make([]map[string]string, 0, len(c.TaskConfigs))
		for _, tc := range c.TaskConfigs {
			m := make(map[string]string, len(tc))
			for k, v := range tc {
				m[k] = v
			}
			clone.TaskConfigs = append(clone.TaskConfigs, m)
		}
	}
	return &clone
}
