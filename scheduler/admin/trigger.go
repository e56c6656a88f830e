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

package admin

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/flowkite/flowkite/pkg/metastore"
	"github.com/flowkite/flowkite/scheduler/keyspace"
)

// RebalanceTrigger asks the external rebalance subsystem to recompute task
// placement for a workflow. The signal is fire-and-forget: no result is
// awaited and delivery failure never fails the operation that raised it.
type RebalanceTrigger interface {
	Invoke(ctx context.Context, workflow string)
}

// StoreTrigger signals rebalance by bumping a per-workflow hint key in the
// metadata store, which the rebalancer watches. Writes are retried briefly
// with exponential backoff and dropped with a warning on final failure.
type StoreTrigger struct {
	store   metastore.Store
	cluster string
}

// NewStoreTrigger creates a StoreTrigger.
func NewStoreTrigger(store metastore.Store, cluster string) *StoreTrigger {
	return &StoreTrigger{store: store, cluster: cluster}
}

// Invoke implements RebalanceTrigger.
func (t *StoreTrigger) Invoke(ctx context.Context, workflow string) {
	key := keyspace.RebalanceKey(t.cluster, workflow)
	value := []byte(strconv.FormatInt(time.Now().UnixMilli(), 10))

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	err := backoff.Retry(func() error {
		return t.store.Set(ctx, key, value)
	}, bo)
	if err != nil {
		log.Warn("failed to deliver rebalance hint",
			zap.String("workflow", workflow), zap.Error(err))
	}
}

// RecordingTrigger collects invocations for tests.
type RecordingTrigger struct {
	mu        sync.Mutex
	workflows []string
}

// NewRecordingTrigger creates an empty RecordingTrigger.
func NewRecordingTrigger() *RecordingTrigger {
	return &RecordingTrigger{}
}

// Invoke implements RebalanceTrigger.
func (t *RecordingTrigger) Invoke(_ context.Context, workflow string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.workflows = append(t.workflows, workflow)
}

// Invocations returns every workflow name passed to Invoke, in order.
func (t *RecordingTrigger) Invocations() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.workflows))
	copy(out, t.workflows)
	return out
}
