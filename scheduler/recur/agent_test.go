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

package recur

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	cerror "github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/pkg/metastore"
	"github.com/flowkite/flowkite/scheduler/admin"
	"github.com/flowkite/flowkite/scheduler/driver"
	"github.com/flowkite/flowkite/scheduler/model"
)

const testCluster = "test"

type fixture struct {
	store   *metastore.MemStore
	admin   *admin.StoreAdmin
	trigger *admin.RecordingTrigger
	driver  *driver.Driver
	agent   *Agent
}

func newFixture() *fixture {
	store := metastore.NewMemStore()
	adm := admin.NewStoreAdmin(store)
	trigger := admin.NewRecordingTrigger()
	return &fixture{
		store:   store,
		admin:   adm,
		trigger: trigger,
		driver:  driver.NewDriver(store, adm, trigger, testCluster),
		agent:   NewAgent(store, adm, trigger, testCluster),
	}
}

func (f *fixture) startTemplate(t *testing.T, cronExpr string, startTime int64) {
	t.Helper()
	template := model.NewJobQueue("nightly", 0).
		AddJob("clean", &model.JobConfig{Type: "Clean", Command: "clean"}).
		AddJob("report", &model.JobConfig{Type: "Report", Command: "report"}).
		AddParentChild("clean", "report").
		WithSchedule(&model.ScheduleConfig{CronExpr: cronExpr, StartTime: startTime})
	require.NoError(t, f.driver.Start(context.Background(), template))
}

func TestFireOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	f.startTemplate(t, "0 0 * * *", 0)

	fireTime := time.UnixMilli(1700000000000)
	instance, err := f.agent.FireOnce(ctx, "nightly", fireTime)
	require.NoError(t, err)
	require.Equal(t, "nightly_1700000000000", instance)

	cfg, err := f.driver.GetWorkflowConfig(ctx, instance)
	require.NoError(t, err)
	require.True(t, cfg.Terminable)
	require.False(t, cfg.IsRecurring())
	require.Equal(t, model.TargetStateStart, cfg.TargetState)
	require.Equal(t, map[string]string{"clean": "Clean", "report": "Report"}, cfg.JobTypes)

	jobDag, err := cfg.JobDag()
	require.NoError(t, err)
	require.Equal(t,
		[]string{instance + "_clean", instance + "_report"}, jobDag.Nodes())
	require.Equal(t,
		[]string{instance + "_report"}, jobDag.Children(instance+"_clean"))

	jobCfg, err := f.driver.GetJobConfig(ctx, instance+"_clean")
	require.NoError(t, err)
	require.Equal(t, instance, jobCfg.Workflow)
	require.Equal(t, "clean", jobCfg.Command)

	layout, err := f.admin.GetResourceLayout(ctx, testCluster, instance)
	require.NoError(t, err)
	require.NotNil(t, layout)

	wctx, err := f.driver.GetWorkflowContext(ctx, "nightly")
	require.NoError(t, err)
	require.Equal(t, instance, wctx.LastScheduledWorkflow)
	require.Equal(t, []string{instance}, wctx.ScheduledWorkflows)

	require.Contains(t, f.trigger.Invocations(), instance)
}

func TestFireOnceIdempotentPerSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	f.startTemplate(t, "0 0 * * *", 0)

	fireTime := time.UnixMilli(1700000000000)
	first, err := f.agent.FireOnce(ctx, "nightly", fireTime)
	require.NoError(t, err)
	again, err := f.agent.FireOnce(ctx, "nightly", fireTime)
	require.NoError(t, err)
	require.Equal(t, first, again)

	wctx, err := f.driver.GetWorkflowContext(ctx, "nightly")
	require.NoError(t, err)
	require.Equal(t, []string{first}, wctx.ScheduledWorkflows)
}

func TestFireOnceErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()

	_, err := f.agent.FireOnce(ctx, "absent", time.Now())
	require.True(t, cerror.ErrWorkflowNotExists.Equal(cerror.Cause(err)))

	require.NoError(t, f.driver.Start(ctx, model.NewJobQueue("plain", 0)))
	_, err = f.agent.FireOnce(ctx, "plain", time.Now())
	require.True(t, cerror.ErrInvalidWorkflow.Equal(cerror.Cause(err)))
}

func TestTickFiresDueTemplate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()

	mock := clock.NewMock()
	now := time.Date(2026, 1, 2, 3, 4, 30, 0, time.UTC)
	mock.Set(now)
	f.agent.clock = mock

	// exactly one minute boundary lies between the start time and now
	f.startTemplate(t, "* * * * *", now.Add(-time.Minute).UnixMilli())

	require.NoError(t, f.agent.Tick(ctx))

	wctx, err := f.driver.GetWorkflowContext(ctx, "nightly")
	require.NoError(t, err)
	require.NotEmpty(t, wctx.LastScheduledWorkflow)
	require.True(t, model.IsScheduledInstanceOf(wctx.LastScheduledWorkflow, "nightly"))

	_, err = f.driver.GetWorkflowConfig(ctx, wctx.LastScheduledWorkflow)
	require.NoError(t, err)

	// the same slot is not fired twice
	require.NoError(t, f.agent.Tick(ctx))
	again, err := f.driver.GetWorkflowContext(ctx, "nightly")
	require.NoError(t, err)
	require.Equal(t, wctx.ScheduledWorkflows, again.ScheduledWorkflows)
}

func TestTickSkipsStoppedTemplate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()

	mock := clock.NewMock()
	now := time.Date(2026, 1, 2, 3, 4, 30, 0, time.UTC)
	mock.Set(now)
	f.agent.clock = mock

	f.startTemplate(t, "* * * * *", now.Add(-2*time.Minute).UnixMilli())
	require.NoError(t, f.driver.Stop(ctx, "nightly"))

	require.NoError(t, f.agent.Tick(ctx))

	wctx, err := f.driver.GetWorkflowContext(ctx, "nightly")
	require.NoError(t, err)
	require.Nil(t, wctx)
}

func TestTickIgnoresPlainWorkflows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.driver.Start(ctx, model.NewJobQueue("plain", 0)))

	require.NoError(t, f.agent.Tick(ctx))
	wctx, err := f.driver.GetWorkflowContext(ctx, "plain")
	require.NoError(t, err)
	require.Nil(t, wctx)
}
