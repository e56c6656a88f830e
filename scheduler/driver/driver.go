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

// Package driver implements the workflow lifecycle operations of the
// scheduler: starting and updating workflows, queue mutation (enqueue,
// delete, flush, cleanup), target-state commands and state polling.
//
// Every DAG or config mutation goes through the store's atomic conditional
// update, so any number of drivers may operate on the same cluster
// concurrently without client-side locks.
package driver

import (
	"context"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/pingcap/log"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	cerror "github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/pkg/metastore"
	"github.com/flowkite/flowkite/scheduler/admin"
	"github.com/flowkite/flowkite/scheduler/keyspace"
	"github.com/flowkite/flowkite/scheduler/model"
)

// Driver is the orchestration facade over the metadata store, resource admin
// and rebalance trigger. It owns workflow configs and DAGs; workflow and job
// contexts are owned by the rebalance subsystem and only read here.
type Driver struct {
	store   metastore.Store
	admin   admin.Admin
	trigger admin.RebalanceTrigger
	cluster string
	// clock is swapped for a mock in time-dependent tests
	clock clock.Clock
}

// NewDriver creates a Driver for the given cluster.
func NewDriver(
	store metastore.Store, adm admin.Admin, trigger admin.RebalanceTrigger, cluster string,
) *Driver {
	return &Driver{
		store:   store,
		admin:   adm,
		trigger: trigger,
		cluster: cluster,
		clock:   clock.New(),
	}
}

// Start schedules a new workflow: validates the definition, persists every
// job config, persists the workflow config and materializes the schedulable
// resource. Starting a terminable workflow twice fails, surfaced by the
// duplicate resource creation.
func (d *Driver) Start(ctx context.Context, w *model.Workflow) (err error) {
	defer func() { recordOp("start", err) }()
	log.Info("starting workflow", zap.String("workflow", w.Name()))
	if err := w.Validate(); err != nil {
		return err
	}

	// Job configs are written before the workflow config so that any
	// reader observing the workflow already finds its jobs.
	for job, jobCfg := range w.Jobs() {
		namespaced := model.NamespacedJobName(w.Name(), job)
		if err := d.addJobConfig(ctx, w.Name(), namespaced, jobCfg); err != nil {
			return err
		}
	}

	cfg, err := w.Config()
	if err != nil {
		return err
	}
	if err := d.writeWorkflowConfig(ctx, cfg); err != nil {
		return err
	}

	return d.addWorkflowResource(ctx, w.Name())
}

// UpdateWorkflow replaces the configuration of a queue. Terminable workflows
// are immutable once created.
func (d *Driver) UpdateWorkflow(ctx context.Context, workflow string, newCfg *model.WorkflowConfig) (err error) {
	defer func() { recordOp("updateWorkflow", err) }()
	key := keyspace.ConfigKey(d.cluster, workflow)
	err = d.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, cerror.ErrWorkflowNotExists.GenWithStackByArgs(workflow)
		}
		currentCfg := &model.WorkflowConfig{}
		if err := currentCfg.Unmarshal(current); err != nil {
			return nil, err
		}
		if currentCfg.Terminable {
			return nil, cerror.ErrWorkflowImmutable.GenWithStackByArgs(workflow)
		}
		next := *newCfg
		next.Name = workflow
		next.Terminable = false
		// An update carrying no DAG keeps the live one; replacing the
		// DAG is queue mutation, not configuration.
		if next.Dag == "" {
			next.Dag = currentCfg.Dag
		}
		if err := next.Validate(); err != nil {
			return nil, err
		}
		return next.Marshal()
	})
	if err != nil {
		return err
	}
	d.trigger.Invoke(ctx, workflow)
	return nil
}

// EnqueueJob appends a job to the end of a queue. The job config is written
// before the DAG gains the node, so a reader observing the node always finds
// its config. Capacity and duplicate checks run inside the atomic DAG
// mutation.
func (d *Driver) EnqueueJob(ctx context.Context, queue, job string, jobCfg *model.JobConfig) (err error) {
	defer func() { recordOp("enqueueJob", err) }()
	cfg, err := d.GetWorkflowConfig(ctx, queue)
	if err != nil {
		return err
	}
	if cfg.Terminable {
		return cerror.ErrNotQueue.GenWithStackByArgs(queue)
	}
	capacity := cfg.Capacity

	namespaced := model.NamespacedJobName(queue, job)
	if err := d.addJobConfig(ctx, queue, namespaced, jobCfg); err != nil {
		return err
	}
	jobType := jobCfg.Type

	key := keyspace.ConfigKey(d.cluster, queue)
	err = d.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, cerror.ErrWorkflowNotExists.GenWithStackByArgs(queue)
		}
		queueCfg := &model.WorkflowConfig{}
		if err := queueCfg.Unmarshal(current); err != nil {
			return nil, err
		}
		jobDag, err := queueCfg.JobDag()
		if err != nil {
			return nil, err
		}
		if capacity > 0 && jobDag.Size() >= capacity {
			return nil, cerror.ErrQueueFull.GenWithStackByArgs(queue, capacity, job)
		}
		if jobDag.Contains(namespaced) {
			return nil, cerror.ErrJobAlreadyExists.GenWithStackByArgs(job, queue)
		}
		jobDag.AddNode(namespaced)
		if tail := jobDag.Tail(namespaced); tail != "" {
			jobDag.AddEdge(tail, namespaced)
		}
		if jobType != "" {
			if queueCfg.JobTypes == nil {
				queueCfg.JobTypes = make(map[string]string)
			}
			queueCfg.JobTypes[job] = jobType
		}
		if err := queueCfg.SetJobDag(jobDag); err != nil {
			return nil, err
		}
		return queueCfg.Marshal()
	})
	if err != nil {
		return err
	}

	if err := d.addWorkflowResourceIfNecessary(ctx, queue); err != nil {
		return err
	}
	d.trigger.Invoke(ctx, queue)
	return nil
}

// DeleteJob removes a job from a queue. For a recurring queue the job is
// deleted from the last scheduled concrete instance and stripped from the
// template DAG so future firings omit it; for a plain queue the queue must
// not be in progress.
func (d *Driver) DeleteJob(ctx context.Context, queue, job string) (err error) {
	defer func() { recordOp("deleteJob", err) }()
	cfg, err := d.GetWorkflowConfig(ctx, queue)
	if err != nil {
		return err
	}
	if cfg.Terminable {
		return cerror.ErrNotQueue.GenWithStackByArgs(queue)
	}

	if !cfg.IsRecurring() {
		return d.deleteJobFromScheduledQueue(ctx, queue, job, false)
	}

	wctx, err := d.GetWorkflowContext(ctx, queue)
	if err != nil {
		return err
	}
	if wctx != nil && wctx.LastScheduledWorkflow != "" {
		if err := d.deleteJobFromScheduledQueue(
			ctx, wctx.LastScheduledWorkflow, job, true); err != nil {
			return err
		}
	}

	// Strip the job from the template so future firings omit it, then
	// drop the template's own resource and context for the job.
	if err := d.removeJobFromDag(ctx, queue, job); err != nil {
		return err
	}
	namespaced := model.NamespacedJobName(queue, job)
	if err := d.admin.DropResource(ctx, d.cluster, namespaced); err != nil {
		return err
	}
	if err := d.store.Remove(ctx, keyspace.ConfigKey(d.cluster, namespaced)); err != nil {
		return err
	}
	return d.store.Remove(ctx, keyspace.ContextKey(d.cluster, namespaced))
}

// deleteJobFromScheduledQueue removes a job from a concrete (non-template)
// queue. A recurring instance that no longer has a config is tolerated: it
// either never started or already finished.
func (d *Driver) deleteJobFromScheduledQueue(ctx context.Context, queue, job string, recurrent bool) error {
	cfg, err := d.getWorkflowConfigIfExists(ctx, queue)
	if err != nil {
		return err
	}
	if cfg == nil {
		if recurrent {
			return nil
		}
		return cerror.ErrWorkflowNotExists.GenWithStackByArgs(queue)
	}

	wctx, err := d.GetWorkflowContext(ctx, queue)
	if err != nil {
		return err
	}
	if wctx != nil && !wctx.State.Valid() {
		return cerror.ErrInvalidWorkflowState.GenWithStackByArgs(queue)
	}
	state := model.TaskStateNotStarted
	if wctx != nil {
		state = wctx.State
	}
	if state == model.TaskStateInProgress {
		return cerror.ErrQueueInProgress.GenWithStackByArgs(queue)
	}

	return d.removeJob(ctx, queue, job)
}

// removeJob performs the full per-job removal: DAG edit, resource drop,
// context job-state strip and job context deletion.
func (d *Driver) removeJob(ctx context.Context, queue, job string) error {
	if err := d.removeJobFromDag(ctx, queue, job); err != nil {
		return err
	}

	namespaced := model.NamespacedJobName(queue, job)
	if err := d.admin.DropResource(ctx, d.cluster, namespaced); err != nil {
		return err
	}

	// Stripping the queue context's job-state entry is best effort; a
	// stale entry does not affect the DAG or config invariants.
	if err := d.removeJobStateFromQueue(ctx, queue, namespaced); err != nil {
		log.Warn("failed to remove job state from queue context",
			zap.String("queue", queue), zap.String("job", namespaced), zap.Error(err))
	}

	if err := d.store.Remove(ctx, keyspace.ConfigKey(d.cluster, namespaced)); err != nil {
		return err
	}
	return d.store.Remove(ctx, keyspace.ContextKey(d.cluster, namespaced))
}

// removeJobFromDag deletes the job's node from the queue's DAG, reconnecting
// its single parent and single child when both exist so the chain stays
// connected.
func (d *Driver) removeJobFromDag(ctx context.Context, queue, job string) error {
	namespaced := model.NamespacedJobName(queue, job)
	key := keyspace.ConfigKey(d.cluster, queue)
	return d.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, cerror.ErrWorkflowNotExists.GenWithStackByArgs(queue)
		}
		queueCfg := &model.WorkflowConfig{}
		if err := queueCfg.Unmarshal(current); err != nil {
			return nil, err
		}
		jobDag, err := queueCfg.JobDag()
		if err != nil {
			return nil, err
		}
		if !jobDag.Contains(namespaced) {
			log.Warn("job not in queue DAG, nothing to delete",
				zap.String("queue", queue), zap.String("job", namespaced))
			return nil, cerror.ErrStoreUnchanged.GenWithStackByArgs()
		}
		jobDag.RemoveNode(namespaced)
		delete(queueCfg.JobTypes, job)
		if err := queueCfg.SetJobDag(jobDag); err != nil {
			return nil, err
		}
		return queueCfg.Marshal()
	})
}

// removeJobStateFromQueue strips namespacedJob from the queue context's
// per-job state map, if present.
func (d *Driver) removeJobStateFromQueue(ctx context.Context, queue, namespacedJob string) error {
	key := keyspace.ContextKey(d.cluster, queue)
	return d.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, cerror.ErrStoreUnchanged.GenWithStackByArgs()
		}
		wctx := &model.WorkflowContext{}
		if err := wctx.Unmarshal(current); err != nil {
			return nil, err
		}
		if _, ok := wctx.JobStates[namespacedJob]; !ok {
			return nil, cerror.ErrStoreUnchanged.GenWithStackByArgs()
		}
		delete(wctx.JobStates, namespacedJob)
		return wctx.Marshal()
	})
}

// FlushQueue removes every job from a queue: all job resources, configs and
// contexts are dropped, then the DAG is cleared and the context's job-state map is
// stripped, each in its own atomic write. Stopping the queue first is the
// caller's responsibility.
//
// The two atomic writes are independent; a crash between them can leave the
// context referencing removed jobs until the next cleanup.
func (d *Driver) FlushQueue(ctx context.Context, queue string) (err error) {
	defer func() { recordOp("flushQueue", err) }()
	cfg, err := d.GetWorkflowConfig(ctx, queue)
	if err != nil {
		return err
	}
	jobDag, err := cfg.JobDag()
	if err != nil {
		return err
	}
	toRemove := jobDag.Nodes()

	var cleanupErr error
	for _, node := range toRemove {
		if err := d.admin.DropResource(ctx, d.cluster, node); err != nil {
			cleanupErr = multierr.Append(cleanupErr, err)
		}
		if err := d.store.Remove(ctx, keyspace.ConfigKey(d.cluster, node)); err != nil {
			cleanupErr = multierr.Append(cleanupErr, err)
		}
		if err := d.store.Remove(ctx, keyspace.ContextKey(d.cluster, node)); err != nil {
			cleanupErr = multierr.Append(cleanupErr, err)
		}
	}
	if cleanupErr != nil {
		log.Warn("best-effort job cleanup failed during queue flush",
			zap.String("queue", queue), zap.Error(cleanupErr))
	}

	key := keyspace.ConfigKey(d.cluster, queue)
	err = d.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, cerror.ErrWorkflowNotExists.GenWithStackByArgs(queue)
		}
		queueCfg := &model.WorkflowConfig{}
		if err := queueCfg.Unmarshal(current); err != nil {
			return nil, err
		}
		liveDag, err := queueCfg.JobDag()
		if err != nil {
			return nil, err
		}
		liveDag.Clear()
		queueCfg.JobTypes = nil
		if err := queueCfg.SetJobDag(liveDag); err != nil {
			return nil, err
		}
		return queueCfg.Marshal()
	})
	if err != nil {
		return err
	}

	ctxKey := keyspace.ContextKey(d.cluster, queue)
	return d.store.Update(ctx, ctxKey, func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, cerror.ErrStoreUnchanged.GenWithStackByArgs()
		}
		wctx := &model.WorkflowContext{}
		if err := wctx.Unmarshal(current); err != nil {
			return nil, err
		}
		for _, node := range toRemove {
			delete(wctx.JobStates, node)
		}
		return wctx.Marshal()
	})
}

// CleanupJobQueue removes every job in a terminal state (COMPLETED, FAILED,
// ABORTED) from the queue, including its config, resource and context.
func (d *Driver) CleanupJobQueue(ctx context.Context, queue string) (err error) {
	defer func() { recordOp("cleanupJobQueue", err) }()
	cfg, err := d.GetWorkflowConfig(ctx, queue)
	if err != nil {
		return err
	}
	wctx, err := d.GetWorkflowContext(ctx, queue)
	if err != nil {
		return err
	}
	if wctx != nil && !wctx.State.Valid() {
		return cerror.ErrInvalidWorkflowState.GenWithStackByArgs(queue)
	}
	if wctx == nil {
		// Nothing ever ran, so nothing is in a terminal state.
		return nil
	}

	jobDag, err := cfg.JobDag()
	if err != nil {
		return err
	}
	for _, node := range jobDag.Nodes() {
		if !wctx.JobState(node).Terminal() {
			continue
		}
		if err := d.removeJob(ctx, queue, model.DenamespacedJobName(queue, node)); err != nil {
			return err
		}
	}
	return nil
}

// Resume sets the START target state on a workflow and all of its scheduled
// instances.
func (d *Driver) Resume(ctx context.Context, workflow string) (err error) {
	defer func() { recordOp("resume", err) }()
	return d.setWorkflowTargetState(ctx, workflow, model.TargetStateStart)
}

// Stop sets the STOP target state on a workflow and all of its scheduled
// instances. The call is asynchronous: it does not wait for the workflow to
// actually stop. Use WaitToStop for the synchronous form.
func (d *Driver) Stop(ctx context.Context, workflow string) (err error) {
	defer func() { recordOp("stop", err) }()
	return d.setWorkflowTargetState(ctx, workflow, model.TargetStateStop)
}

// Delete marks a workflow and all of its finished scheduled instances for
// deletion. Unfinished instances are left for the execution subsystem to
// finish first.
func (d *Driver) Delete(ctx context.Context, workflow string) (err error) {
	defer func() { recordOp("delete", err) }()
	// The rebalancer may remove the workflow the moment the DELETE target
	// state lands, so the scheduled-instance list is read first.
	wctx, err := d.GetWorkflowContext(ctx, workflow)
	if err != nil {
		return err
	}

	if err := d.setWorkflowTargetState(ctx, workflow, model.TargetStateDelete); err != nil {
		return err
	}

	if wctx == nil {
		return nil
	}
	for _, scheduled := range wctx.ScheduledWorkflows {
		instCtx, err := d.GetWorkflowContext(ctx, scheduled)
		if err != nil {
			return err
		}
		if instCtx == nil || !instCtx.Finished() {
			continue
		}
		if err := d.setSingleWorkflowTargetState(ctx, scheduled, model.TargetStateDelete); err != nil {
			return err
		}
	}
	return nil
}

// setWorkflowTargetState applies the target state to the named workflow and
// to every config whose name shares the workflow's prefix, which is the
// naming convention of recurring scheduled instances. DELETE fans out only
// to instances that have already finished; unfinished instances are left for
// the execution subsystem to finish first.
func (d *Driver) setWorkflowTargetState(ctx context.Context, workflow string, state model.TargetState) error {
	if err := d.setSingleWorkflowTargetState(ctx, workflow, state); err != nil {
		return err
	}

	resources, err := d.store.ListChildren(ctx, keyspace.ConfigsPrefix(d.cluster))
	if err != nil {
		return err
	}
	for _, resource := range resources {
		if resource == workflow || !strings.HasPrefix(resource, workflow) {
			continue
		}
		if state == model.TargetStateDelete {
			instCtx, err := d.GetWorkflowContext(ctx, resource)
			if err != nil {
				return err
			}
			if instCtx == nil || !instCtx.Finished() {
				continue
			}
		}
		if err := d.setSingleWorkflowTargetState(ctx, resource, state); err != nil {
			return err
		}
	}
	return nil
}

// setSingleWorkflowTargetState writes the target state into one config. A
// finished workflow's target state is frozen against START and STOP: once
// its context carries a finish time those commands are ignored. DELETE is
// always allowed, finished workflows are exactly the ones safe to delete.
// Job configs found under the same prefix are skipped.
func (d *Driver) setSingleWorkflowTargetState(ctx context.Context, workflow string, state model.TargetState) error {
	key := keyspace.ConfigKey(d.cluster, workflow)
	value, exists, err := d.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		log.Warn("workflow configuration not found, target state not set",
			zap.String("workflow", workflow))
		return nil
	}
	if !model.IsWorkflowConfigRecord(value) {
		return nil
	}

	log.Info("setting workflow target state",
		zap.String("workflow", workflow), zap.String("targetState", string(state)))

	wctx, err := d.GetWorkflowContext(ctx, workflow)
	if err != nil {
		return err
	}
	if state != model.TargetStateDelete && wctx != nil && wctx.Finished() {
		log.Info("ignoring target state for finished workflow",
			zap.String("workflow", workflow),
			zap.Int64("finishTime", wctx.FinishTime))
		return nil
	}

	err = d.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, cerror.ErrStoreUnchanged.GenWithStackByArgs()
		}
		cfg := &model.WorkflowConfig{}
		if err := cfg.Unmarshal(current); err != nil {
			return nil, err
		}
		cfg.TargetState = state
		return cfg.Marshal()
	})
	if err != nil {
		return err
	}
	d.trigger.Invoke(ctx, workflow)
	return nil
}

// GetWorkflowConfig reads a workflow's config, failing with
// ErrWorkflowNotExists when absent.
func (d *Driver) GetWorkflowConfig(ctx context.Context, workflow string) (*model.WorkflowConfig, error) {
	cfg, err := d.getWorkflowConfigIfExists(ctx, workflow)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, cerror.ErrWorkflowNotExists.GenWithStackByArgs(workflow)
	}
	return cfg, nil
}

func (d *Driver) getWorkflowConfigIfExists(ctx context.Context, workflow string) (*model.WorkflowConfig, error) {
	value, exists, err := d.store.Get(ctx, keyspace.ConfigKey(d.cluster, workflow))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	cfg := &model.WorkflowConfig{}
	if err := cfg.Unmarshal(value); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetWorkflowContext reads a workflow's context. Absence is reported with a
// nil context, not an error: a context only appears once the rebalance
// subsystem first acts on the workflow.
func (d *Driver) GetWorkflowContext(ctx context.Context, workflow string) (*model.WorkflowContext, error) {
	value, exists, err := d.store.Get(ctx, keyspace.ContextKey(d.cluster, workflow))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	wctx := &model.WorkflowContext{}
	if err := wctx.Unmarshal(value); err != nil {
		return nil, err
	}
	return wctx, nil
}

// GetJobConfig reads a namespaced job's config, failing with ErrJobNotExists
// when absent.
func (d *Driver) GetJobConfig(ctx context.Context, namespacedJob string) (*model.JobConfig, error) {
	value, exists, err := d.store.Get(ctx, keyspace.ConfigKey(d.cluster, namespacedJob))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, cerror.ErrJobNotExists.GenWithStackByArgs(namespacedJob, d.cluster)
	}
	cfg := &model.JobConfig{}
	if err := cfg.Unmarshal(value); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetJobContext reads a namespaced job's context, nil when absent.
func (d *Driver) GetJobContext(ctx context.Context, namespacedJob string) (*model.JobContext, error) {
	value, exists, err := d.store.Get(ctx, keyspace.ContextKey(d.cluster, namespacedJob))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	jctx := &model.JobContext{}
	if err := jctx.Unmarshal(value); err != nil {
		return nil, err
	}
	return jctx, nil
}

// ListWorkflows returns the configs of every workflow in the cluster, keyed
// by name. Records that do not decode as workflow configs (job configs share
// the prefix) are skipped.
func (d *Driver) ListWorkflows(ctx context.Context) (map[string]*model.WorkflowConfig, error) {
	names, err := d.store.ListChildren(ctx, keyspace.ConfigsPrefix(d.cluster))
	if err != nil {
		return nil, err
	}
	workflows := make(map[string]*model.WorkflowConfig)
	for _, name := range names {
		value, exists, err := d.store.Get(ctx, keyspace.ConfigKey(d.cluster, name))
		if err != nil {
			return nil, err
		}
		// Job configs live under the same prefix; skip them.
		if !exists || !model.IsWorkflowConfigRecord(value) {
			continue
		}
		cfg := &model.WorkflowConfig{}
		if err := cfg.Unmarshal(value); err != nil {
			continue
		}
		workflows[name] = cfg
	}
	return workflows, nil
}

// addJobConfig persists one namespaced job config.
func (d *Driver) addJobConfig(ctx context.Context, workflow, namespacedJob string, jobCfg *model.JobConfig) error {
	log.Info("adding job configuration", zap.String("job", namespacedJob))
	cfg := jobCfg.Clone()
	cfg.Name = namespacedJob
	cfg.Workflow = workflow
	if err := cfg.Validate(); err != nil {
		return err
	}
	value, err := cfg.Marshal()
	if err != nil {
		return err
	}
	return d.store.Set(ctx, keyspace.ConfigKey(d.cluster, namespacedJob), value)
}

// writeWorkflowConfig persists a workflow config. Terminable workflows are
// create-only; queues may be re-created in place.
func (d *Driver) writeWorkflowConfig(ctx context.Context, cfg *model.WorkflowConfig) error {
	value, err := cfg.Marshal()
	if err != nil {
		return err
	}
	key := keyspace.ConfigKey(d.cluster, cfg.Name)
	if !cfg.Terminable {
		return d.store.Set(ctx, key, value)
	}
	return d.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		if exists {
			return nil, cerror.ErrWorkflowAlreadyExists.GenWithStackByArgs(cfg.Name)
		}
		return value, nil
	})
}

// addWorkflowResource materializes the workflow as a schedulable resource
// and seeds its user-content record.
func (d *Driver) addWorkflowResource(ctx context.Context, workflow string) error {
	if err := d.admin.AddResource(ctx, d.cluster, workflow, 1, admin.TaskStateModel); err != nil {
		return err
	}
	return d.store.Set(ctx, keyspace.UserContentKey(d.cluster, workflow), []byte("{}"))
}

// addWorkflowResourceIfNecessary backfills the schedulable resource for
// queues created before the resource existed.
func (d *Driver) addWorkflowResourceIfNecessary(ctx context.Context, workflow string) error {
	layout, err := d.admin.GetResourceLayout(ctx, d.cluster, workflow)
	if err != nil {
		return err
	}
	if layout != nil {
		return nil
	}
	return d.addWorkflowResource(ctx, workflow)
}
