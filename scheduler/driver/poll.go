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

package driver

import (
	"context"
	"time"

	cerror "github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/scheduler/model"
)

const (
	// defaultPollTimeout bounds poll calls that pass no timeout.
	defaultPollTimeout = 3 * time.Minute
	// pollInterval is the base sleep between context reads.
	pollInterval = 100 * time.Millisecond
	// stopPollInterval is the sleep between reads in WaitToStop.
	stopPollInterval = time.Second
)

// WaitToStop stops a workflow and blocks until its context reports STOPPED
// or the timeout elapses.
func (d *Driver) WaitToStop(ctx context.Context, workflow string, timeout time.Duration) (err error) {
	defer func() { recordOp("waitToStop", err) }()
	if err := d.Stop(ctx, workflow); err != nil {
		return err
	}

	deadline := d.clock.Now().Add(timeout)
	var observed model.TaskState
	for !d.clock.Now().After(deadline) {
		wctx, err := d.GetWorkflowContext(ctx, workflow)
		if err != nil {
			return err
		}
		if wctx != nil {
			observed = wctx.State
			if observed == model.TaskStateStopped {
				return nil
			}
		}
		if err := d.sleep(ctx, stopPollInterval); err != nil {
			return err
		}
	}
	return cerror.ErrPollTimeout.GenWithStackByArgs(
		"workflow "+workflow, []model.TaskState{model.TaskStateStopped}, timeout, observed)
}

// PollForWorkflowState blocks until the workflow's context reports one of
// the target states, returning that state, or fails with ErrPollTimeout. A
// non-positive timeout uses the 3-minute default.
func (d *Driver) PollForWorkflowState(
	ctx context.Context, workflow string, timeout time.Duration, targetStates ...model.TaskState,
) (model.TaskState, error) {
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	allowed := stateSet(targetStates)
	deadline := d.clock.Now().Add(timeout)

	var observed model.TaskState
	for {
		if err := d.sleep(ctx, d.remainingInterval(deadline, pollInterval)); err != nil {
			return "", err
		}
		wctx, err := d.GetWorkflowContext(ctx, workflow)
		if err != nil {
			return "", err
		}
		if wctx != nil {
			observed = wctx.State
			if _, ok := allowed[observed]; ok {
				return observed, nil
			}
		}
		if !d.clock.Now().Before(deadline) {
			return "", cerror.ErrPollTimeout.GenWithStackByArgs(
				"workflow "+workflow, targetStates, timeout, observed)
		}
	}
}

// PollForJobState blocks until the job's state in its workflow context is
// one of the target states, returning that state, or fails with
// ErrPollTimeout. For a recurring workflow the wait is two-phase: first the
// template context must expose its last scheduled instance, then the job is
// re-resolved against that instance and its state polled there.
func (d *Driver) PollForJobState(
	ctx context.Context, workflow, job string, timeout time.Duration, targetStates ...model.TaskState,
) (model.TaskState, error) {
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	cfg, err := d.GetWorkflowConfig(ctx, workflow)
	if err != nil {
		return "", err
	}

	allowed := stateSet(targetStates)
	deadline := d.clock.Now().Add(timeout)
	namespaced := model.NamespacedJobName(workflow, job)

	if cfg.IsRecurring() {
		for {
			if err := d.sleep(ctx, d.remainingInterval(deadline, pollInterval)); err != nil {
				return "", err
			}
			wctx, err := d.GetWorkflowContext(ctx, workflow)
			if err != nil {
				return "", err
			}
			if wctx != nil && wctx.LastScheduledWorkflow != "" {
				workflow = wctx.LastScheduledWorkflow
				namespaced = model.NamespacedJobName(workflow, job)
				break
			}
			if !d.clock.Now().Before(deadline) {
				return "", cerror.ErrPollTimeout.GenWithStackByArgs(
					"job "+namespaced, targetStates, timeout, model.TaskState(""))
			}
		}
	}

	var observed model.TaskState
	for {
		if err := d.sleep(ctx, d.remainingInterval(deadline, pollInterval)); err != nil {
			return "", err
		}
		wctx, err := d.GetWorkflowContext(ctx, workflow)
		if err != nil {
			return "", err
		}
		if wctx != nil {
			observed = wctx.JobState(namespaced)
			if _, ok := allowed[observed]; ok {
				return observed, nil
			}
		}
		if !d.clock.Now().Before(deadline) {
			return "", cerror.ErrPollTimeout.GenWithStackByArgs(
				"job "+namespaced, targetStates, timeout, observed)
		}
	}
}

// remainingInterval caps the poll interval by the time left to deadline so a
// short timeout is still honored precisely.
func (d *Driver) remainingInterval(deadline time.Time, interval time.Duration) time.Duration {
	remaining := deadline.Sub(d.clock.Now())
	if remaining < interval {
		if remaining < time.Millisecond {
			return time.Millisecond
		}
		return remaining
	}
	return interval
}

// sleep blocks for the given duration on the driver's clock, honoring
// context cancellation.
func (d *Driver) sleep(ctx context.Context, duration time.Duration) error {
	timer := d.clock.Timer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return cerror.Trace(ctx.Err())
	case <-timer.C:
		return nil
	}
}

func stateSet(states []model.TaskState) map[model.TaskState]struct{} {
	set := make(map[model.TaskState]struct{}, len(states))
	for _, state := range states {
		set[state] = struct{}{}
	}
	return set
}
