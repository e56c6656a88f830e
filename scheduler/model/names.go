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
	"fmt"
	"strings"
	"time"
)

// NamespacedJobName qualifies a job name with its owning workflow, making it
// unique cluster-wide. Every DAG node and resource name uses this form.
func NamespacedJobName(workflow, job string) string {
	return workflow + "_" + job
}

// DenamespacedJobName strips the workflow qualifier from a namespaced job
// name. A name that does not carry the qualifier is returned unchanged.
func DenamespacedJobName(workflow, namespacedJob string) string {
	return strings.TrimPrefix(namespacedJob, workflow+"_")
}

// ScheduledWorkflowName names the concrete workflow instance a recurring
// template fires at the given time. Instance names always share the
// template's name as prefix; prefix matching is the documented discovery
// mechanism for a template's instances.
func ScheduledWorkflowName(template string, fireTime time.Time) string {
	return fmt.Sprintf("%s_%d", template, fireTime.UnixMilli())
}

// IsScheduledInstanceOf reports whether name looks like a scheduled instance
// of template, by the naming convention above.
func IsScheduledInstanceOf(name, template string) bool {
	return name != template && strings.HasPrefix(name, template+"_")
}
