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

// Package metastore defines the hierarchical metadata store contract the
// scheduler mutates through, and ships an etcd-backed implementation plus an
// in-memory one for tests and embedded use.
package metastore

import (
	"context"

	"github.com/flowkite/flowkite/pkg/retry"
)

// UpdateFunc computes the next value of a record from its current value.
// current is nil and exists is false when the record is absent. The function
// must be pure: it can run any number of times for one logical update, so it
// must not have side effects. Returning an error aborts the update without
// writing; returning errors.ErrStoreUnchanged aborts without writing and
// without failing the update.
type UpdateFunc func(current []byte, exists bool) (next []byte, err error)

// Store is a hierarchical key/value store with atomic conditional update.
// Keys are slash-separated paths. Any number of processes may call these
// methods concurrently against the same backing store; Update is the only
// mutual-exclusion primitive the scheduler relies on.
type Store interface {
	// Get returns the record at key, reporting absence via the bool.
	Get(ctx context.Context, key string) (value []byte, exists bool, err error)

	// Set writes the record at key unconditionally, creating it if absent.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes the record at key. Removing an absent key is not an
	// error.
	Remove(ctx context.Context, key string) error

	// ListChildren returns the sorted names of the direct children of key.
	ListChildren(ctx context.Context, key string) ([]string, error)

	// Update applies f to the record at key through a compare-and-retry
	// loop. Exactly one successful application of f is visible to readers;
	// concurrent updates of the same key serialize through retries. When
	// the store never accepts the write within the retry budget the update
	// fails with errors.ErrStoreConflict and the record is unchanged.
	Update(ctx context.Context, key string, f UpdateFunc, opts ...retry.Option) error
}
