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
	"context"
	"sort"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	cerror "github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/pkg/retry"
)

const (
	// etcdClientTimeoutDuration represents the timeout duration for the
	// etcd client to execute a remote call
	etcdClientTimeoutDuration = 30 * time.Second

	updateBackoffBaseDelayInMs = 10
	updateBackoffMaxDelayInMs  = 500

	// etcdSlowRequestDuration is the threshold above which a remote call is
	// logged and counted as slow
	etcdSlowRequestDuration = time.Second
)

// set to var instead of const for mocking the value to speedup test
var updateMaxTries int64 = 16

// EtcdStore implements Store on an etcd cluster. Conditional updates use a
// ModRevision-compare transaction per write; a ModRevision of 0 asserts the
// key does not exist yet.
type EtcdStore struct {
	cli     *clientv3.Client
	metrics map[string]prometheus.Counter
	// clock makes time-dependent behavior mockable in unit tests
	clock clock.Clock
}

// NewEtcdStore wraps a clientv3.Client into a Store. metrics may be nil.
func NewEtcdStore(cli *clientv3.Client, metrics map[string]prometheus.Counter) *EtcdStore {
	return &EtcdStore{cli: cli, metrics: metrics, clock: clock.New()}
}

// Unwrap returns the underlying clientv3.Client.
func (s *EtcdStore) Unwrap() *clientv3.Client {
	return s.cli
}

func (s *EtcdStore) count(op string) {
	if metric, ok := s.metrics[op]; ok {
		metric.Inc()
	}
}

// observe logs and counts a remote call that exceeded the slow-request
// threshold. Call as `defer s.observe(op, s.clock.Now())`.
func (s *EtcdStore) observe(op string, start time.Time) {
	elapsed := s.clock.Since(start)
	if elapsed < etcdSlowRequestDuration {
		return
	}
	storeSlowRequestCounter.Inc()
	log.Warn("slow etcd request",
		zap.String("op", op), zap.Duration("duration", elapsed))
}

// Get implements Store.
func (s *EtcdStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.count(OpGet)
	defer s.observe(OpGet, s.clock.Now())
	getCtx, cancel := context.WithTimeout(ctx, etcdClientTimeoutDuration)
	defer cancel()
	resp, err := s.cli.Get(getCtx, key)
	if err != nil {
		return nil, false, cerror.WrapError(cerror.ErrStoreOpFailed, err, key)
	}
	if resp.Count == 0 {
		return nil, false, nil
	}
	return resp.Kvs[0].Value, true, nil
}

// Set implements Store.
func (s *EtcdStore) Set(ctx context.Context, key string, value []byte) error {
	s.count(OpPut)
	defer s.observe(OpPut, s.clock.Now())
	putCtx, cancel := context.WithTimeout(ctx, etcdClientTimeoutDuration)
	defer cancel()
	_, err := s.cli.Put(putCtx, key, string(value))
	return cerror.WrapError(cerror.ErrStoreOpFailed, err, key)
}

// Remove implements Store. We don't retry on delete, it's dangerous.
func (s *EtcdStore) Remove(ctx context.Context, key string) error {
	s.count(OpDel)
	defer s.observe(OpDel, s.clock.Now())
	delCtx, cancel := context.WithTimeout(ctx, etcdClientTimeoutDuration)
	defer cancel()
	_, err := s.cli.Delete(delCtx, key)
	return cerror.WrapError(cerror.ErrStoreOpFailed, err, key)
}

// ListChildren implements Store. The direct child names are extracted from
// the first path segment below key, de-duplicated and sorted.
func (s *EtcdStore) ListChildren(ctx context.Context, key string) ([]string, error) {
	s.count(OpList)
	defer s.observe(OpList, s.clock.Now())
	getCtx, cancel := context.WithTimeout(ctx, etcdClientTimeoutDuration)
	defer cancel()
	prefix := strings.TrimSuffix(key, "/") + "/"
	resp, err := s.cli.Get(getCtx, prefix, clientv3.WithPrefix(), clientv3.WithKeysOnly())
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrStoreOpFailed, err, key)
	}
	seen := make(map[string]struct{}, resp.Count)
	for _, kv := range resp.Kvs {
		rest := strings.TrimPrefix(string(kv.Key), prefix)
		name := rest
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			name = rest[:i]
		}
		if name == "" {
			continue
		}
		seen[name] = struct{}{}
	}
	children := make([]string, 0, len(seen))
	for name := range seen {
		children = append(children, name)
	}
	sort.Strings(children)
	return children, nil
}

// Update implements Store.
func (s *EtcdStore) Update(ctx context.Context, key string, f UpdateFunc, opts ...retry.Option) error {
	s.count(OpUpdate)
	retryOpts := append([]retry.Option{
		retry.WithBackoffBaseDelay(updateBackoffBaseDelayInMs),
		retry.WithBackoffMaxDelay(updateBackoffMaxDelayInMs),
		retry.WithMaxTries(updateMaxTries),
		retry.WithIsRetryableErr(cerror.IsRetryableError),
	}, opts...)

	err := retry.Do(ctx, func() error {
		return s.updateOnce(ctx, key, f)
	}, retryOpts...)
	if cerror.ErrReachMaxTry.Equal(cerror.Cause(err)) {
		return cerror.ErrStoreConflict.Wrap(err).GenWithStackByArgs(key)
	}
	return err
}

func (s *EtcdStore) updateOnce(ctx context.Context, key string, f UpdateFunc) error {
	current, modRevision, exists, err := s.getWithRevision(ctx, key)
	if err != nil {
		return err
	}

	next, err := f(current, exists)
	if err != nil {
		if cerror.ErrStoreUnchanged.Equal(cerror.Cause(err)) {
			return nil
		}
		return err
	}

	s.count(OpTxn)
	defer s.observe(OpTxn, s.clock.Now())
	txnCtx, cancel := context.WithTimeout(ctx, etcdClientTimeoutDuration)
	defer cancel()
	resp, err := s.cli.Txn(txnCtx).
		If(clientv3.Compare(clientv3.ModRevision(key), "=", modRevision)).
		Then(clientv3.OpPut(key, string(next))).
		Commit()
	if err != nil {
		return cerror.WrapError(cerror.ErrStoreOpFailed, err, key)
	}
	if !resp.Succeeded {
		storeConflictCounter.Inc()
		log.Debug("conditional write rejected, retrying with latest value",
			zap.String("key", key), zap.Int64("modRevision", modRevision))
		return cerror.ErrStoreConflict.FastGenByArgs(key)
	}
	return nil
}

// getWithRevision reports existence explicitly so that an existing key with
// an empty value is not mistaken for an absent one.
func (s *EtcdStore) getWithRevision(ctx context.Context, key string) ([]byte, int64, bool, error) {
	getCtx, cancel := context.WithTimeout(ctx, etcdClientTimeoutDuration)
	defer cancel()
	resp, err := s.cli.Get(getCtx, key)
	if err != nil {
		return nil, 0, false, cerror.WrapError(cerror.ErrStoreOpFailed, err, key)
	}
	if resp.Count == 0 {
		return nil, 0, false, nil
	}
	return resp.Kvs[0].Value, resp.Kvs[0].ModRevision, true, nil
}
