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

// Package recur fires recurring workflow templates. The agent scans the
// cluster for templates whose schedule is due and materializes each firing
// as a concrete terminable workflow instance, leaving the scheduler itself
// purely reactive.
package recur

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pingcap/log"
	"github.com/robfig/cron"
	"go.uber.org/zap"

	cerror "github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/pkg/metastore"
	"github.com/flowkite/flowkite/scheduler/admin"
	"github.com/flowkite/flowkite/scheduler/dag"
	"github.com/flowkite/flowkite/scheduler/keyspace"
	"github.com/flowkite/flowkite/scheduler/model"
)

const defaultScanInterval = 10 * time.Second

// Agent periodically fires due recurring templates. Multiple agents may run
// against the same cluster; instance creation is conditional on the instance
// name, so concurrent firings of the same schedule slot collapse into one.
type Agent struct {
	store   metastore.Store
	admin   admin.Admin
	trigger admin.RebalanceTrigger
	cluster string
	id      string

	scanInterval time.Duration
	// clock is swapped for a mock in firing tests
	clock clock.Clock
}

// NewAgent creates an Agent for the given cluster.
func NewAgent(
	store metastore.Store, adm admin.Admin, trigger admin.RebalanceTrigger, cluster string,
) *Agent {
	return &Agent{
		store:        store,
		admin:        adm,
		trigger:      trigger,
		cluster:      cluster,
		id:           uuid.NewString(),
		scanInterval: defaultScanInterval,
		clock:        clock.New(),
	}
}

// Run scans for due templates until the context is canceled. Scan failures
// are logged and do not stop the loop.
func (a *Agent) Run(ctx context.Context) error {
	log.Info("recurrence agent started",
		zap.String("cluster", a.cluster), zap.String("agentID", a.id))
	ticker := a.clock.Ticker(a.scanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("recurrence agent stopped", zap.String("agentID", a.id))
			return ctx.Err()
		case <-ticker.C:
			if err := a.Tick(ctx); err != nil {
				log.Warn("recurrence scan failed",
					zap.String("agentID", a.id), zap.Error(err))
			}
		}
	}
}

// Tick runs one scan: every recurring template whose target state is START
// and whose next fire time has passed is fired exactly once.
func (a *Agent) Tick(ctx context.Context) error {
	templates, err := a.store.ListChildren(ctx, keyspace.ConfigsPrefix(a.cluster))
	if err != nil {
		return err
	}
	now := a.clock.Now()
	for _, name := range templates {
		cfg, err := a.recurringConfig(ctx, name)
		if err != nil {
			return err
		}
		if cfg == nil || cfg.TargetState != model.TargetStateStart {
			continue
		}
		fireTime, due, err := a.dueTime(ctx, cfg, now)
		if err != nil {
			log.Warn("skipping template with bad schedule",
				zap.String("template", name), zap.Error(err))
			continue
		}
		if !due {
			continue
		}
		if _, err := a.FireOnce(ctx, name, fireTime); err != nil {
			return err
		}
	}
	return nil
}

// recurringConfig reads one config record and returns it only when it is a
// recurring workflow template. Job configs and plain workflows yield nil.
func (a *Agent) recurringConfig(ctx context.Context, name string) (*model.WorkflowConfig, error) {
	value, exists, err := a.store.Get(ctx, keyspace.ConfigKey(a.cluster, name))
	if err != nil {
		return nil, err
	}
	if !exists || !model.IsWorkflowConfigRecord(value) {
		return nil, nil
	}
	cfg := &model.WorkflowConfig{}
	if err := cfg.Unmarshal(value); err != nil {
		return nil, err
	}
	if !cfg.IsRecurring() {
		return nil, nil
	}
	return cfg, nil
}

// dueTime computes the template's next fire time and whether it has already
// passed. The fire chain restarts from the last fired instance, so a stopped
// and resumed template does not backfill missed slots one by one.
func (a *Agent) dueTime(
	ctx context.Context, cfg *model.WorkflowConfig, now time.Time,
) (time.Time, bool, error) {
	sched, err := cron.ParseStandard(cfg.Schedule.CronExpr)
	if err != nil {
		return time.Time{}, false, cerror.ErrInvalidWorkflow.GenWithStackByArgs(cfg.Name, err.Error())
	}
	after := time.UnixMilli(cfg.Schedule.StartTime)
	wfCtx, err := a.templateContext(ctx, cfg.Name)
	if err != nil {
		return time.Time{}, false, err
	}
	if wfCtx != nil && wfCtx.LastScheduledWorkflow != "" {
		if last, ok := instanceFireTime(cfg.Name, wfCtx.LastScheduledWorkflow); ok && last.After(after) {
			after = last
		}
	}
	next := sched.Next(after)
	return next, !next.After(now), nil
}

// FireOnce materializes one concrete instance of the template at the given
// fire time and records it in the template's context. Firing an already
// fired slot is a no-op returning the existing instance name.
func (a *Agent) FireOnce(ctx context.Context, template string, fireTime time.Time) (string, error) {
	value, exists, err := a.store.Get(ctx, keyspace.ConfigKey(a.cluster, template))
	if err != nil {
		return "", err
	}
	if !exists {
		return "", cerror.ErrWorkflowNotExists.GenWithStackByArgs(template)
	}
	cfg := &model.WorkflowConfig{}
	if err := cfg.Unmarshal(value); err != nil {
		return "", err
	}
	if !cfg.IsRecurring() {
		return "", cerror.ErrInvalidWorkflow.GenWithStackByArgs(template, "workflow is not recurring")
	}

	instance := model.ScheduledWorkflowName(template, fireTime)
	instanceCfg, err := instanceConfig(cfg, instance)
	if err != nil {
		return "", err
	}

	// Job configs first, then the instance config, the same visibility
	// order Start uses for plain workflows.
	if err := a.copyJobConfigs(ctx, template, instance, cfg); err != nil {
		return "", err
	}
	created, err := a.createInstanceConfig(ctx, instanceCfg)
	if err != nil {
		return "", err
	}
	if !created {
		log.Info("schedule slot already fired",
			zap.String("template", template), zap.String("instance", instance))
		return instance, nil
	}

	if err := a.admin.AddResource(ctx, a.cluster, instance, 1, admin.TaskStateModel); err != nil &&
		!cerror.ErrResourceExists.Equal(cerror.Cause(err)) {
		return "", err
	}
	if err := a.store.Set(ctx, keyspace.UserContentKey(a.cluster, instance), []byte("{}")); err != nil {
		return "", err
	}
	if err := a.recordFiring(ctx, template, instance); err != nil {
		return "", err
	}
	a.trigger.Invoke(ctx, instance)
	log.Info("fired recurring template",
		zap.String("template", template),
		zap.String("instance", instance),
		zap.Time("fireTime", fireTime))
	return instance, nil
}

// instanceConfig clones the template into a concrete terminable workflow
// with the DAG re-namespaced onto the instance name.
func instanceConfig(template *model.WorkflowConfig, instance string) (*model.WorkflowConfig, error) {
	templateDag, err := template.JobDag()
	if err != nil {
		return nil, err
	}
	instanceDag := dag.NewJobDag()
	for _, node := range templateDag.Nodes() {
		instanceDag.AddNode(renamespace(template.Name, instance, node))
	}
	for _, node := range templateDag.Nodes() {
		for _, child := range templateDag.Children(node) {
			instanceDag.AddEdge(
				renamespace(template.Name, instance, node),
				renamespace(template.Name, instance, child))
		}
	}

	jobTypes := make(map[string]string, len(template.JobTypes))
	for job, typ := range template.JobTypes {
		jobTypes[job] = typ
	}
	cfg := &model.WorkflowConfig{
		Name:        instance,
		JobTypes:    jobTypes,
		TargetState: model.TargetStateStart,
		Capacity:    template.Capacity,
		Terminable:  true,
		Expiry:      template.Expiry,
	}
	if err := cfg.SetJobDag(instanceDag); err != nil {
		return nil, err
	}
	return cfg, nil
}

// copyJobConfigs clones every template job config under the instance's
// namespace.
func (a *Agent) copyJobConfigs(
	ctx context.Context, template, instance string, cfg *model.WorkflowConfig,
) error {
	for job := range cfg.JobTypes {
		templateJob := model.NamespacedJobName(template, job)
		value, exists, err := a.store.Get(ctx, keyspace.ConfigKey(a.cluster, templateJob))
		if err != nil {
			return err
		}
		if !exists {
			return cerror.ErrJobNotExists.GenWithStackByArgs(templateJob)
		}
		jobCfg := &model.JobConfig{}
		if err := jobCfg.Unmarshal(value); err != nil {
			return err
		}
		jobCfg.Name = model.NamespacedJobName(instance, job)
		jobCfg.Workflow = instance
		copied, err := jobCfg.Marshal()
		if err != nil {
			return err
		}
		if err := a.store.Set(ctx, keyspace.ConfigKey(a.cluster, jobCfg.Name), copied); err != nil {
			return err
		}
	}
	return nil
}

// createInstanceConfig conditionally creates the instance config. Returns
// false when another agent already fired this slot.
func (a *Agent) createInstanceConfig(ctx context.Context, cfg *model.WorkflowConfig) (bool, error) {
	value, err := cfg.Marshal()
	if err != nil {
		return false, err
	}
	created := false
	err = a.store.Update(ctx, keyspace.ConfigKey(a.cluster, cfg.Name),
		func(current []byte, exists bool) ([]byte, error) {
			if exists {
				return nil, cerror.ErrStoreUnchanged.FastGenByArgs()
			}
			created = true
			return value, nil
		})
	if err != nil {
		return false, err
	}
	return created, nil
}

// recordFiring appends the instance to the template context's bookkeeping.
func (a *Agent) recordFiring(ctx context.Context, template, instance string) error {
	key := keyspace.ContextKey(a.cluster, template)
	return a.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		wfCtx := model.NewWorkflowContext()
		if exists {
			if err := wfCtx.Unmarshal(current); err != nil {
				return nil, err
			}
		}
		wfCtx.LastScheduledWorkflow = instance
		for _, existing := range wfCtx.ScheduledWorkflows {
			if existing == instance {
				return wfCtx.Marshal()
			}
		}
		wfCtx.ScheduledWorkflows = append(wfCtx.ScheduledWorkflows, instance)
		return wfCtx.Marshal()
	})
}

// templateContext reads the template's context, nil when absent.
func (a *Agent) templateContext(ctx context.Context, template string) (*model.WorkflowContext, error) {
	value, exists, err := a.store.Get(ctx, keyspace.ContextKey(a.cluster, template))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	wfCtx := &model.WorkflowContext{}
	if err := wfCtx.Unmarshal(value); err != nil {
		return nil, err
	}
	return wfCtx, nil
}

// renamespace moves a namespaced job node from the template's namespace to
// the instance's.
func renamespace(template, instance, node string) string {
	return model.NamespacedJobName(instance, model.DenamespacedJobName(template, node))
}

// instanceFireTime recovers the fire time encoded in an instance name.
func instanceFireTime(template, instance string) (time.Time, bool) {
	suffix := strings.TrimPrefix(instance, template+"_")
	if suffix == instance {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}
