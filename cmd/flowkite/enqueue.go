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

package main

import (
	"github.com/spf13/cobra"

	"github.com/flowkite/flowkite/scheduler/model"
)

// enqueueOptions defines flags for the `enqueue` command.
type enqueueOptions struct {
	queue       string
	job         string
	jobType     string
	command     string
	timeout     int64
	maxAttempts int
}

func (o *enqueueOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.queue, "queue", "q", "", "target job queue")
	cmd.Flags().StringVarP(&o.job, "job", "j", "", "job name, unique within the queue")
	cmd.Flags().StringVar(&o.jobType, "type", "", "job type")
	cmd.Flags().StringVar(&o.command, "command", "", "command the worker runs")
	cmd.Flags().Int64Var(&o.timeout, "timeout-per-task", 0, "per task timeout in milliseconds")
	cmd.Flags().IntVar(&o.maxAttempts, "max-attempts", 0, "retry cap per task")
	_ = cmd.MarkFlagRequired("queue")
	_ = cmd.MarkFlagRequired("job")
}

// newCmdEnqueue creates the `enqueue` command.
func newCmdEnqueue(o *options) *cobra.Command {
	eo := &enqueueOptions{}
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Append a job to the tail of a job queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connect(o)
			if err != nil {
				return err
			}
			defer s.close()
			jobCfg := &model.JobConfig{
				Name:           eo.job,
				Type:           eo.jobType,
				Command:        eo.command,
				TimeoutPerTask: eo.timeout,
				MaxAttempts:    eo.maxAttempts,
			}
			if err := s.driver.EnqueueJob(cmd.Context(), eo.queue, eo.job, jobCfg); err != nil {
				return err
			}
			cmd.Printf("enqueued job %s on queue %s\n", eo.job, eo.queue)
			return nil
		},
	}
	eo.addFlags(cmd)
	return cmd
}
