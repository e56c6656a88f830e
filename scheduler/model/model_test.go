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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cerror "github.com/flowkite/flowkite/pkg/errors"
)

func TestNamespacedJobNames(t *testing.T) {
	t.Parallel()

	require.Equal(t, "q_backup", NamespacedJobName("q", "backup"))
	require.Equal(t, "backup", DenamespacedJobName("q", "q_backup"))
	// a name without the qualifier passes through unchanged
	require.Equal(t, "other", DenamespacedJobName("q", "other"))
}

func TestScheduledWorkflowName(t *testing.T) {
	t.Parallel()

	fireTime := time.UnixMilli(1700000000000)
	name := ScheduledWorkflowName("nightly", fireTime)
	require.Equal(t, "nightly_1700000000000", name)
	require.True(t, IsScheduledInstanceOf(name, "nightly"))
	require.False(t, IsScheduledInstanceOf("nightly", "nightly"))
	require.False(t, IsScheduledInstanceOf("daily_123", "nightly"))
}

func TestTaskState(t *testing.T) {
	t.Parallel()

	require.True(t, TaskStateCompleted.Terminal())
	require.True(t, TaskStateFailed.Terminal())
	require.True(t, TaskStateAborted.Terminal())
	require.False(t, TaskStateInProgress.Terminal())
	require.False(t, TaskStateStopped.Terminal())

	require.True(t, TaskStateNotStarted.Valid())
	require.False(t, TaskState("BOGUS").Valid())
}

func TestScheduleConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, (&ScheduleConfig{}).Validate())
	require.NoError(t, (&ScheduleConfig{CronExpr: "*/5 * * * *"}).Validate())
	require.Error(t, (&ScheduleConfig{CronExpr: "not cron"}).Validate())
}

func TestWorkflowConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := &WorkflowConfig{Name: "w", TargetState: TargetStateStart}
	require.NoError(t, cfg.Validate())

	require.Error(t, (&WorkflowConfig{}).Validate())
	require.Error(t, (&WorkflowConfig{Name: "w", Capacity: -1}).Validate())
	require.Error(t, (&WorkflowConfig{
		Name:     "w",
		Schedule: &ScheduleConfig{CronExpr: "bad"},
	}).Validate())
}

func TestWorkflowConfigDagRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := &WorkflowConfig{Name: "q"}
	d, err := cfg.JobDag()
	require.NoError(t, err)
	require.Equal(t, 0, d.Size())

	d.AddEdge("q_a", "q_b")
	require.NoError(t, cfg.SetJobDag(d))

	reread, err := cfg.JobDag()
	require.NoError(t, err)
	require.Equal(t, []string{"q_a", "q_b"}, reread.Nodes())
	require.Equal(t, []string{"q_b"}, reread.Children("q_a"))
}

func TestIsWorkflowConfigRecord(t *testing.T) {
	t.Parallel()

	wfCfg := &WorkflowConfig{Name: "w", TargetState: TargetStateStart}
	wfData, err := wfCfg.Marshal()
	require.NoError(t, err)
	require.True(t, IsWorkflowConfigRecord(wfData))

	jobCfg := &JobConfig{Name: "w_j", Workflow: "w", Command: "run"}
	jobData, err := jobCfg.Marshal()
	require.NoError(t, err)
	require.False(t, IsWorkflowConfigRecord(jobData))

	require.False(t, IsWorkflowConfigRecord([]byte("{broken")))
}

func TestIsRecurring(t *testing.T) {
	t.Parallel()

	require.False(t, (&WorkflowConfig{Name: "w"}).IsRecurring())
	require.False(t, (&WorkflowConfig{Name: "w", Schedule: &ScheduleConfig{}}).IsRecurring())
	require.True(t, (&WorkflowConfig{
		Name:     "w",
		Schedule: &ScheduleConfig{CronExpr: "0 0 * * *"},
	}).IsRecurring())
}

func TestJobConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, (&JobConfig{Name: "j"}).Validate())
	require.Error(t, (&JobConfig{}).Validate())
	require.Error(t, (&JobConfig{Name: "j", TimeoutPerTask: -1}).Validate())
	require.Error(t, (&JobConfig{Name: "j", MaxAttempts: -1}).Validate())
}

func TestJobConfigClone(t *testing.T) {
	t.Parallel()

	cfg := &JobConfig{
		Name:        "j",
		TaskConfigs: []map[string]string{{"k": "v"}},
	}
	clone := cfg.Clone()
	clone.TaskConfigs[0]["k"] = "changed"
	require.Equal(t, "v", cfg.TaskConfigs[0]["k"])
}

func TestWorkflowBuilder(t *testing.T) {
	t.Parallel()

	w := NewWorkflow("backup").
		AddJob("dump", &JobConfig{Type: "Dump", Command: "dump"}).
		AddJob("upload", &JobConfig{Type: "Upload", Command: "upload"}).
		AddParentChild("dump", "upload")
	require.NoError(t, w.Validate())
	require.True(t, w.Terminable())

	cfg, err := w.Config()
	require.NoError(t, err)
	require.Equal(t, "backup", cfg.Name)
	require.True(t, cfg.Terminable)
	require.Equal(t, TargetStateStart, cfg.TargetState)
	require.Equal(t, map[string]string{"dump": "Dump", "upload": "Upload"}, cfg.JobTypes)

	d, err := cfg.JobDag()
	require.NoError(t, err)
	require.Equal(t, []string{"backup_dump", "backup_upload"}, d.Nodes())
	require.Equal(t, []string{"backup_upload"}, d.Children("backup_dump"))
}

func TestWorkflowBuilderValidateFailures(t *testing.T) {
	t.Parallel()

	require.Error(t, NewWorkflow("").Validate())

	dangling := NewWorkflow("w").
		AddJob("a", &JobConfig{}).
		AddParentChild("a", "ghost")
	err := dangling.Validate()
	require.Error(t, err)
	require.True(t, cerror.ErrInvalidWorkflow.Equal(cerror.Cause(err)))

	nilCfg := NewWorkflow("w")
	nilCfg.Jobs()["a"] = nil
	require.Error(t, nilCfg.Validate())
}

func TestJobQueueBuilder(t *testing.T) {
	t.Parallel()

	q := NewJobQueue("q", 5)
	require.False(t, q.Terminable())
	require.NoError(t, q.Validate())

	cfg, err := q.Config()
	require.NoError(t, err)
	require.False(t, cfg.Terminable)
	require.Equal(t, 5, cfg.Capacity)
}

func TestWorkflowContext(t *testing.T) {
	t.Parallel()

	wfCtx := NewWorkflowContext()
	require.Equal(t, TaskStateNotStarted, wfCtx.State)
	require.False(t, wfCtx.Finished())

	wfCtx.FinishTime = time.Now().UnixMilli()
	require.True(t, wfCtx.Finished())

	wfCtx.JobStates = map[string]TaskState{"w_j": TaskStateInProgress}
	require.Equal(t, TaskStateInProgress, wfCtx.JobState("w_j"))
	require.Equal(t, TaskState(""), wfCtx.JobState("w_other"))

	data, err := wfCtx.Marshal()
	require.NoError(t, err)
	reread := &WorkflowContext{}
	require.NoError(t, reread.Unmarshal(data))
	require.Equal(t, wfCtx, reread)
}
