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

	"github.com/pingcap/errors"
)

// WrapError wraps an internal error into a normalized error with stack.
// If err is nil, returns nil.
func WrapError(rfcError *errors.Error, err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return rfcError.Wrap(err).GenWithStackByArgs(args...)
}

// Trace is a lightweight re-export so most call sites only import this package.
func Trace(err error) error {
	return errors.Trace(err)
}

// Cause re-exports errors.Cause.
func Cause(err error) error {
	return errors.Cause(err)
}

// Annotatef re-exports errors.Annotatef.
func Annotatef(err error, format string, args ...interface{}) error {
	return errors.Annotatef(err, format, args...)
}

// New re-exports errors.New.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf re-exports errors.Errorf.
func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// IsRetryableError reports whether an error is worth another try. Context
// cancellation and deadline expiry are permanent, as are all precondition
// failures raised by scheduler validation.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	switch errors.Cause(err) {
	case context.Canceled, context.DeadlineExceeded:
		return false
	}
	if IsNotFound(err) || IsInvalidArgument(err) || IsIllegalState(err) {
		return false
	}
	cause := errors.Cause(err)
	if ErrWorkflowAlreadyExists.Equal(cause) || ErrResourceExists.Equal(cause) {
		return false
	}
	return true
}

// IsNotFound reports whether err means a required workflow, job or resource
// record is absent.
func IsNotFound(err error) bool {
	err = errors.Cause(err)
	return ErrWorkflowNotExists.Equal(err) ||
		ErrJobNotExists.Equal(err) ||
		ErrResourceNotExists.Equal(err)
}

// IsInvalidArgument reports whether err means the operation shape itself is
// illegal, independent of current lifecycle state.
func IsInvalidArgument(err error) bool {
	err = errors.Cause(err)
	return ErrNotQueue.Equal(err) ||
		ErrQueueFull.Equal(err) ||
		ErrJobAlreadyExists.Equal(err) ||
		ErrInvalidWorkflow.Equal(err) ||
		ErrInvalidJob.Equal(err)
}

// IsIllegalState reports whether err means the operation conflicts with the
// workflow's current lifecycle state.
func IsIllegalState(err error) bool {
	err = errors.Cause(err)
	return ErrQueueInProgress.Equal(err) ||
		ErrWorkflowImmutable.Equal(err) ||
		ErrInvalidWorkflowState.Equal(err)
}

// IsTimeout reports whether err is a bounded-wait expiry.
func IsTimeout(err error) bool {
	return ErrPollTimeout.Equal(errors.Cause(err))
}

// IsStoreConflict reports whether err means an atomic update exhausted its
// retry budget without the store accepting a write.
func IsStoreConflict(err error) bool {
	return ErrStoreConflict.Equal(errors.Cause(err))
}
