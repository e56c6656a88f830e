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
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	cerror "github.com/flowkite/flowkite/pkg/errors"
)

func TestMemStoreBasicOps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()

	_, exists, err := s.Get(ctx, "/a/b")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, s.Set(ctx, "/a/b", []byte("v1")))
	value, exists, err := s.Get(ctx, "/a/b")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, []byte("v1"), value)

	require.NoError(t, s.Remove(ctx, "/a/b"))
	_, exists, err = s.Get(ctx, "/a/b")
	require.NoError(t, err)
	require.False(t, exists)

	// removing an absent key is fine
	require.NoError(t, s.Remove(ctx, "/a/b"))
}

func TestMemStoreGetReturnsCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.Set(ctx, "/k", []byte("abc")))
	value, _, err := s.Get(ctx, "/k")
	require.NoError(t, err)
	value[0] = 'x'

	again, _, err := s.Get(ctx, "/k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}

func TestMemStoreListChildren(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.Set(ctx, "/c/configs/w1", []byte("{}")))
	require.NoError(t, s.Set(ctx, "/c/configs/w2", []byte("{}")))
	require.NoError(t, s.Set(ctx, "/c/contexts/w1/context", []byte("{}")))
	require.NoError(t, s.Set(ctx, "/c/contexts/w2/context", []byte("{}")))

	children, err := s.ListChildren(ctx, "/c/configs")
	require.NoError(t, err)
	require.Equal(t, []string{"w1", "w2"}, children)

	// nested records collapse to their first path segment
	children, err = s.ListChildren(ctx, "/c/contexts")
	require.NoError(t, err)
	require.Equal(t, []string{"w1", "w2"}, children)

	children, err = s.ListChildren(ctx, "/c/empty")
	require.NoError(t, err)
	require.Empty(t, children)
}

func TestMemStoreUpdateCreatesRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()

	err := s.Update(ctx, "/k", func(current []byte, exists bool) ([]byte, error) {
		require.False(t, exists)
		require.Nil(t, current)
		return []byte("created"), nil
	})
	require.NoError(t, err)

	value, exists, err := s.Get(ctx, "/k")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, []byte("created"), value)
}

func TestMemStoreUpdateSeesEmptyValueAsExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.Set(ctx, "/k", []byte{}))
	err := s.Update(ctx, "/k", func(current []byte, exists bool) ([]byte, error) {
		require.True(t, exists)
		require.Empty(t, current)
		return []byte("filled"), nil
	})
	require.NoError(t, err)
}

func TestMemStoreUpdateAbortsOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Set(ctx, "/k", []byte("v1")))

	wantErr := cerror.ErrWorkflowNotExists.GenWithStackByArgs("w")
	err := s.Update(ctx, "/k", func(current []byte, exists bool) ([]byte, error) {
		return nil, wantErr
	})
	require.True(t, cerror.ErrWorkflowNotExists.Equal(cerror.Cause(err)))

	value, _, err := s.Get(ctx, "/k")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), value)
}

func TestMemStoreUpdateUnchangedSkipsWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Set(ctx, "/k", []byte("v1")))

	err := s.Update(ctx, "/k", func(current []byte, exists bool) ([]byte, error) {
		return nil, cerror.ErrStoreUnchanged.FastGenByArgs()
	})
	require.NoError(t, err)

	value, _, err := s.Get(ctx, "/k")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), value)
}

func TestMemStoreConcurrentUpdates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Set(ctx, "/counter", []byte("0")))

	const workers = 16
	var eg errgroup.Group
	for i := 0; i < workers; i++ {
		eg.Go(func() error {
			return s.Update(ctx, "/counter", func(current []byte, exists bool) ([]byte, error) {
				n, err := strconv.Atoi(string(current))
				if err != nil {
					return nil, err
				}
				return []byte(strconv.Itoa(n + 1)), nil
			})
		})
	}
	require.NoError(t, eg.Wait())

	value, _, err := s.Get(ctx, "/counter")
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(workers), string(value))
}
