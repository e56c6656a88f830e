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

// Package keyspace owns the metadata store key layout of a flowkite cluster.
// All keys live under /flowkite/<cluster>.
package keyspace

import "fmt"

// KeyBase is the root of all flowkite keys.
const KeyBase = "/flowkite"

// ClusterBase returns the root key of a cluster.
func ClusterBase(cluster string) string {
	return fmt.Sprintf("%s/%s", KeyBase, cluster)
}

// ConfigsPrefix returns the parent key of all workflow and job configs.
func ConfigsPrefix(cluster string) string {
	return ClusterBase(cluster) + "/configs"
}

// ConfigKey returns the key of a workflow or job config.
func ConfigKey(cluster, resource string) string {
	return fmt.Sprintf("%s/%s", ConfigsPrefix(cluster), resource)
}

// ContextsPrefix returns the parent key of all workflow and job contexts.
func ContextsPrefix(cluster string) string {
	return ClusterBase(cluster) + "/contexts"
}

// ContextKey returns the key of a workflow or job context.
func ContextKey(cluster, resource string) string {
	return fmt.Sprintf("%s/%s/context", ContextsPrefix(cluster), resource)
}

// ContextBase returns the parent key of one resource's context records.
func ContextBase(cluster, resource string) string {
	return fmt.Sprintf("%s/%s", ContextsPrefix(cluster), resource)
}

// UserContentKey returns the key of a resource's user-content scratch record.
func UserContentKey(cluster, resource string) string {
	return fmt.Sprintf("%s/%s/user-content", ContextsPrefix(cluster), resource)
}

// ResourcesPrefix returns the parent key of all schedulable resources.
func ResourcesPrefix(cluster string) string {
	return ClusterBase(cluster) + "/resources"
}

// ResourceKey returns the key of a schedulable resource layout.
func ResourceKey(cluster, resource string) string {
	return fmt.Sprintf("%s/%s", ResourcesPrefix(cluster), resource)
}

// RebalanceKey returns the key a rebalance hint for a workflow is written to.
func RebalanceKey(cluster, workflow string) string {
	return fmt.Sprintf("%s/rebalance/%s", ClusterBase(cluster), workflow)
}
