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

package errors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	t.Parallel()

	require.Nil(t, WrapError(ErrDecodeFailed, nil))

	inner := New("boom")
	wrapped := WrapError(ErrDecodeFailed, inner)
	require.Error(t, wrapped)
	require.True(t, ErrDecodeFailed.Equal(Cause(wrapped)))
}

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	require.False(t, IsRetryableError(nil))
	require.False(t, IsRetryableError(context.Canceled))
	require.False(t, IsRetryableError(context.DeadlineExceeded))
	require.False(t, IsRetryableError(ErrWorkflowNotExists.GenWithStackByArgs("w")))
	require.False(t, IsRetryableError(ErrQueueFull.GenWithStackByArgs("q", 2, "j")))
	require.False(t, IsRetryableError(ErrJobAlreadyExists.GenWithStackByArgs("j", "q")))
	require.False(t, IsRetryableError(ErrQueueInProgress.GenWithStackByArgs("q")))
	require.False(t, IsRetryableError(ErrWorkflowAlreadyExists.GenWithStackByArgs("w")))
	require.False(t, IsRetryableError(ErrResourceExists.GenWithStackByArgs("r", "c")))

	require.True(t, IsRetryableError(ErrStoreConflict.FastGenByArgs("/k")))
	require.True(t, IsRetryableError(New("transient")))
}

func TestTaxonomyPredicates(t *testing.T) {
	t.Parallel()

	require.True(t, IsNotFound(ErrJobNotExists.GenWithStackByArgs("j")))
	require.False(t, IsNotFound(ErrQueueFull.GenWithStackByArgs("q", 2, "j")))

	require.True(t, IsInvalidArgument(ErrNotQueue.GenWithStackByArgs("w")))
	require.True(t, IsIllegalState(ErrWorkflowImmutable.GenWithStackByArgs("w")))
	require.True(t, IsTimeout(ErrPollTimeout.GenWithStackByArgs("w", nil, "1s", "")))
	require.True(t, IsStoreConflict(ErrStoreConflict.FastGenByArgs("/k")))
}
