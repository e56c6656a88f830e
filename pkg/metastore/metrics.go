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

package metastore

import (
	"github.com/prometheus/client_golang/prometheus"
)

// store operation names
const (
	OpGet    = "Get"
	OpPut    = "Put"
	OpDel    = "Del"
	OpTxn    = "Txn"
	OpList   = "List"
	OpUpdate = "Update"
)

var (
	storeRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowkite",
			Subsystem: "metastore",
			Name:      "request_total",
			Help:      "Total number of metastore requests by operation.",
		}, []string{"op"})

	storeConflictCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "flowkite",
			Subsystem: "metastore",
			Name:      "update_conflict_total",
			Help:      "Total number of conditional writes rejected by the store.",
		})

	storeSlowRequestCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "flowkite",
			Subsystem: "metastore",
			Name:      "slow_request_total",
			Help:      "Total number of store requests slower than the slow-request threshold.",
		})
)

// InitMetrics registers metastore metrics with the given registry.
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(storeRequestCounter)
	registry.MustRegister(storeConflictCounter)
	registry.MustRegister(storeSlowRequestCounter)
}

// OpCounters returns the per-operation counter map an EtcdStore consumes.
func OpCounters() map[string]prometheus.Counter {
	ops := []string{OpGet, OpPut, OpDel, OpTxn, OpList, OpUpdate}
	counters := make(map[string]prometheus.Counter, len(ops))
	for _, op := range ops {
		counters[op] = storeRequestCounter.WithLabelValues(op)
	}
	return counters
}
