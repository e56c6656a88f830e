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
	cerror "github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/scheduler/dag"
)

// Workflow is the builder callers hand to Driver.Start: a named set of job
// configs plus the DAG of their execution order. A terminable workflow runs
// once; a queue is long-lived and supports enqueue/delete of individual jobs.
type Workflow struct {
	name       string
	jobs       map[string]*JobConfig // keyed by de-namespaced job name
	dag        *dag.JobDag           // nodes are namespaced
	capacity   int
	terminable bool
	schedule   *ScheduleConfig
	expiry     int64
}

// NewWorkflow starts building a one-shot (terminable) workflow.
func NewWorkflow(name string) *Workflow {
	return &Workflow{
		name:       name,
		jobs:       make(map[string]*JobConfig),
		dag:        dag.NewJobDag(),
		terminable: true,
	}
}

// NewJobQueue starts building a long-lived queue. capacity bounds the number
// of concurrently queued jobs, 0 means unbounded.
func NewJobQueue(name string, capacity int) *Workflow {
	w := NewWorkflow(name)
	w.terminable = false
	w.capacity = capacity
	return w
}

// Name returns the workflow name.
func (w *Workflow) Name() string { return w.name }

// Terminable reports whether the workflow is one-shot.
func (w *Workflow) Terminable() bool { return w.terminable }

// Jobs returns the job configs keyed by de-namespaced name.
func (w *Workflow) Jobs() map[string]*JobConfig { return w.jobs }

// Dag returns the DAG under construction; nodes are namespaced job names.
func (w *Workflow) Dag() *dag.JobDag { return w.dag }

// AddJob registers a job and its DAG node.
func (w *Workflow) AddJob(job string, cfg *JobConfig) *Workflow {
	w.jobs[job] = cfg
	w.dag.AddNode(NamespacedJobName(w.name, job))
	return w
}

// AddParentChild orders parent before child. Both must have been added with
// AddJob for the workflow to validate.
func (w *Workflow) AddParentChild(parent, child string) *Workflow {
	w.dag.AddEdge(
		NamespacedJobName(w.name, parent),
		NamespacedJobName(w.name, child),
	)
	return w
}

// WithSchedule makes the workflow a recurring template.
func (w *Workflow) WithSchedule(schedule *ScheduleConfig) *Workflow {
	w.schedule = schedule
	return w
}

// WithExpiry sets how long finished records are kept, unix milliseconds.
func (w *Workflow) WithExpiry(expiry int64) *Workflow {
	w.expiry = expiry
	return w
}

// Validate checks the definition: a non-empty name, no dangling DAG
// references, and well-formed job configs.
func (w *Workflow) Validate() error {
	if w.name == "" {
		return cerror.ErrInvalidWorkflow.GenWithStackByArgs(w.name, "workflow name is empty")
	}
	if w.capacity < 0 {
		return cerror.ErrInvalidWorkflow.GenWithStackByArgs(w.name, "capacity is negative")
	}
	if w.schedule != nil {
		if err := w.schedule.Validate(); err != nil {
			return cerror.ErrInvalidWorkflow.GenWithStackByArgs(w.name, err.Error())
		}
	}
	known := make(map[string]struct{}, len(w.jobs))
	for job, cfg := range w.jobs {
		if cfg == nil {
			return cerror.ErrInvalidWorkflow.GenWithStackByArgs(w.name, "job "+job+" has no config")
		}
		if cfg.Name == "" {
			cfg.Name = job
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		known[NamespacedJobName(w.name, job)] = struct{}{}
	}
	for _, node := range w.dag.Nodes() {
		if _, ok := known[node]; !ok {
			return cerror.ErrInvalidWorkflow.GenWithStackByArgs(
				w.name, "DAG references job "+node+" with no config")
		}
	}
	return w.dag.Validate()
}

// Config assembles the WorkflowConfig to persist, aggregating job types and
// embedding the DAG.
func (w *Workflow) Config() (*WorkflowConfig, error) {
	cfg := &WorkflowConfig{
		Name:        w.name,
		TargetState: TargetStateStart,
		Schedule:    w.schedule,
		Capacity:    w.capacity,
		Terminable:  w.terminable,
		Expiry:      w.expiry,
	}
	jobTypes := make(map[string]string)
	for job, jobCfg := range w.jobs {
		if jobCfg.Type != "" {
			jobTypes[job] = jobCfg.Type
		}
	}
	if len(jobTypes) > 0 {
		cfg.JobTypes = jobTypes
	}
	if err := cfg.SetJobDag(w.dag); err != nil {
		return nil, err
	}
	return cfg, nil
}
