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
	"math"
	"math/rand"
	"time"

	cerror "github.com/flowkite/flowkite/pkg/errors"
)

// Operation is the action to retry.
type Operation func() error

// Do runs the operation until it succeeds, the retry budget is exhausted, or
// the error is reported non-retryable. Backoff between tries is exponential
// with full jitter, capped by WithBackoffMaxDelay.
func Do(ctx context.Context, operation Operation, opts ...Option) error {
	retryOption := setOptions(opts...)
	return run(ctx, operation, retryOption)
}

func setOptions(opts ...Option) *retryOptions {
	retryOption := newRetryOptions()
	for _, opt := range opts {
		opt(retryOption)
	}
	return retryOption
}

func run(ctx context.Context, op Operation, retryOption *retryOptions) error {
	if err := ctx.Err(); err != nil {
		return cerror.Trace(err)
	}

	var t *time.Timer
	try := float64(0)
	backOff := time.Duration(0)
	for {
		err := op()
		if err == nil {
			return nil
		}

		if !retryOption.isRetryable(err) {
			return err
		}

		try++
		if try >= retryOption.maxTries {
			return cerror.ErrReachMaxTry.
				Wrap(err).GenWithStackByArgs(retryOption.maxTries, err)
		}

		backOff = getBackoffInMs(retryOption.backoffBase, retryOption.backoffCap, try)
		if t == nil {
			t = time.NewTimer(backOff)
			defer t.Stop()
		} else {
			t.Reset(backOff)
		}

		select {
		case <-ctx.Done():
			if !t.Stop() {
				<-t.C
			}
			return cerror.Trace(ctx.Err())
		case <-t.C:
		}
	}
}

// getBackoffInMs returns a duration sampled uniformly from
// [0, min(backoffCap, backoffBase*2^try)) milliseconds.
func getBackoffInMs(backoffBase, backoffCap, try float64) time.Duration {
	rate := math.Pow(2, try)
	if rate < 1 {
		rate = 1
	}
	sleep := math.Min(backoffCap, backoffBase*rate)
	if sleep < 1 {
		sleep = 1
	}
	backoffInMs := rand.Float64() * sleep
	if backoffInMs < 1 {
		backoffInMs = 1
	}
	return time.Duration(math.Round(backoffInMs)) * time.Millisecond
}
