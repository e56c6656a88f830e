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
)

// deleteJobOptions defines flags for the `delete-job` command.
type deleteJobOptions struct {
	queue string
	job   string
}

func (o *deleteJobOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.queue, "queue", "q", "", "owning job queue")
	cmd.Flags().StringVarP(&o.job, "job", "j", "", "job to delete")
	_ = cmd.MarkFlagRequired("queue")
	_ = cmd.MarkFlagRequired("job")
}

// newCmdDeleteJob creates the `delete-job` command.
func newCmdDeleteJob(o *options) *cobra.Command {
	do := &deleteJobOptions{}
	cmd := &cobra.Command{
		Use:   "delete-job",
		Short: "Delete a job from a job queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connect(o)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.driver.DeleteJob(cmd.Context(), do.queue, do.job); err != nil {
				return err
			}
			cmd.Printf("deleted job %s from queue %s\n", do.job, do.queue)
			return nil
		},
	}
	do.addFlags(cmd)
	return cmd
}
