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

package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cerror "github.com/flowkite/flowkite/pkg/errors"
)

func TestShouldRetryAtMostSpecifiedTimes(t *testing.T) {
	t.Parallel()

	var callCount int
	f := func() error {
		callCount++
		return cerror.New("test")
	}

	err := Do(context.Background(), f,
		WithBackoffBaseDelay(1), WithBackoffMaxDelay(2), WithMaxTries(3))
	require.True(t, cerror.ErrReachMaxTry.Equal(cerror.Cause(err)))
	require.Equal(t, 3, callCount)
}

func TestShouldStopOnSuccess(t *testing.T) {
	t.Parallel()

	var callCount int
	f := func() error {
		callCount++
		if callCount < 2 {
			return cerror.New("test")
		}
		return nil
	}

	err := Do(context.Background(), f,
		WithBackoffBaseDelay(1), WithBackoffMaxDelay(2), WithMaxTries(5))
	require.NoError(t, err)
	require.Equal(t, 2, callCount)
}

func TestShouldStopOnNonRetryableError(t *testing.T) {
	t.Parallel()

	var callCount int
	wantErr := cerror.ErrWorkflowNotExists.GenWithStackByArgs("w")
	f := func() error {
		callCount++
		return wantErr
	}

	err := Do(context.Background(), f,
		WithBackoffBaseDelay(1), WithMaxTries(10),
		WithIsRetryableErr(cerror.IsRetryableError))
	require.True(t, cerror.ErrWorkflowNotExists.Equal(cerror.Cause(err)))
	require.Equal(t, 1, callCount)
}

func TestCanceledContextStopsRetry(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, func() error { return nil })
	require.ErrorIs(t, cerror.Cause(err), context.Canceled)
}

func TestCancellationDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var callCount int
	f := func() error {
		callCount++
		if callCount == 1 {
			cancel()
		}
		return cerror.New("test")
	}

	err := Do(ctx, f, WithBackoffBaseDelay(1000), WithInfiniteTries())
	require.ErrorIs(t, cerror.Cause(err), context.Canceled)
	require.Equal(t, 1, callCount)
}

func TestBackoffIsBounded(t *testing.T) {
	t.Parallel()

	for try := float64(1); try < 30; try++ {
		backoff := getBackoffInMs(10, 100, try)
		require.GreaterOrEqual(t, backoff, 1*time.Millisecond)
		require.LessOrEqual(t, backoff, 100*time.Millisecond)
	}
}
