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
	"sync"

	cerror "github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/pkg/retry"
)

type memRecord struct {
	value   []byte
	version int64
}

// MemStore is an in-memory Store with the same conflict semantics as the etcd
// implementation: every record carries a version, and Update only commits if
// the version is unchanged since the read. Used by unit tests and embedded
// single-process deployments.
type MemStore struct {
	mu      sync.Mutex
	records map[string]memRecord
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]memRecord)}
}

// Get implements Store.
func (s *MemStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(rec.value), true, nil
}

// Set implements Store.
func (s *MemStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[key]
	s.records[key] = memRecord{value: cloneBytes(value), version: rec.version + 1}
	return nil
}

// Remove implements Store.
func (s *MemStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// ListChildren implements Store.
func (s *MemStore) ListChildren(_ context.Context, key string) ([]string, error) {
	prefix := strings.TrimSuffix(key, "/") + "/"
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	for k := range s.records {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := strings.TrimPrefix(k, prefix)
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

// Update implements Store. The update function runs outside the lock so that
// concurrent updaters genuinely race on the version check, mirroring the CAS
// behavior of a remote store.
func (s *MemStore) Update(ctx context.Context, key string, f UpdateFunc, opts ...retry.Option) error {
	retryOpts := append([]retry.Option{
		retry.WithBackoffBaseDelay(1),
		retry.WithBackoffMaxDelay(10),
		retry.WithMaxTries(updateMaxTries),
		retry.WithIsRetryableErr(cerror.IsRetryableError),
	}, opts...)

	err := retry.Do(ctx, func() error {
		return s.updateOnce(key, f)
	}, retryOpts...)
	if cerror.ErrReachMaxTry.Equal(cerror.Cause(err)) {
		return cerror.ErrStoreConflict.Wrap(err).GenWithStackByArgs(key)
	}
	return err
}

func (s *MemStore) updateOnce(key string, f UpdateFunc) error {
	s.mu.Lock()
	rec, exists := s.records[key]
	current := cloneBytes(rec.value)
	version := rec.version
	s.mu.Unlock()

	if !exists {
		current = nil
	}
	next, err := f(current, exists)
	if err != nil {
		if cerror.ErrStoreUnchanged.Equal(cerror.Cause(err)) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	latest, stillExists := s.records[key]
	if stillExists != exists || latest.version != version {
		storeConflictCounter.Inc()
		return cerror.ErrStoreConflict.FastGenByArgs(key)
	}
	s.records[key] = memRecord{value: cloneBytes(next), version: version + 1}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
