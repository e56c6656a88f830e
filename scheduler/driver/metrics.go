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
	"github.com/prometheus/client_golang/prometheus"
)

var driverOpCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "flowkite",
		Subsystem: "driver",
		Name:      "operation_total",
		Help:      "Total number of driver operations by name and result.",
	}, []string{"op", "result"})

// InitMetrics registers driver metrics with the given registry.
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(driverOpCounter)
}

func recordOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	driverOpCounter.WithLabelValues(op, result).Inc()
}
