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
	"github.com/pingcap/errors"
)

// errors
var (
	// kv related errors
	ErrStoreOpFailed = errors.Normalize(
		"metadata store operation failed, key: %s",
		errors.RFCCodeText("FLOW:ErrStoreOpFailed"),
	)
	ErrStoreConflict = errors.Normalize(
		"metadata store update gave up after repeated conflicts, key: %s",
		errors.RFCCodeText("FLOW:ErrStoreConflict"),
	)
	ErrStoreUnchanged = errors.Normalize(
		"metadata store record unchanged",
		errors.RFCCodeText("FLOW:ErrStoreUnchanged"),
	)
	ErrInvalidStoreKey = errors.Normalize(
		"invalid metadata store key: %s",
		errors.RFCCodeText("FLOW:ErrInvalidStoreKey"),
	)

	// model errors
	ErrEncodeFailed = errors.Normalize(
		"encode failed",
		errors.RFCCodeText("FLOW:ErrEncodeFailed"),
	)
	ErrDecodeFailed = errors.Normalize(
		"decode failed",
		errors.RFCCodeText("FLOW:ErrDecodeFailed"),
	)
	ErrInvalidWorkflow = errors.Normalize(
		"invalid workflow definition %s: %s",
		errors.RFCCodeText("FLOW:ErrInvalidWorkflow"),
	)
	ErrInvalidJob = errors.Normalize(
		"invalid job config %s: %s",
		errors.RFCCodeText("FLOW:ErrInvalidJob"),
	)

	// scheduler errors
	ErrWorkflowNotExists = errors.Normalize(
		"workflow %s does not exist",
		errors.RFCCodeText("FLOW:ErrWorkflowNotExists"),
	)
	ErrWorkflowAlreadyExists = errors.Normalize(
		"workflow %s already exists",
		errors.RFCCodeText("FLOW:ErrWorkflowAlreadyExists"),
	)
	ErrWorkflowImmutable = errors.Normalize(
		"workflow %s is terminable, its configuration cannot change",
		errors.RFCCodeText("FLOW:ErrWorkflowImmutable"),
	)
	ErrNotQueue = errors.Normalize(
		"workflow %s is not a queue",
		errors.RFCCodeText("FLOW:ErrNotQueue"),
	)
	ErrQueueFull = errors.Normalize(
		"queue %s is at capacity %d, will not add %s",
		errors.RFCCodeText("FLOW:ErrQueueFull"),
	)
	ErrQueueInProgress = errors.Normalize(
		"queue %s is still in progress",
		errors.RFCCodeText("FLOW:ErrQueueInProgress"),
	)
	ErrJobNotExists = errors.Normalize(
		"job %s does not exist in queue %s",
		errors.RFCCodeText("FLOW:ErrJobNotExists"),
	)
	ErrJobAlreadyExists = errors.Normalize(
		"job %s already exists in queue %s",
		errors.RFCCodeText("FLOW:ErrJobAlreadyExists"),
	)
	ErrInvalidWorkflowState = errors.Normalize(
		"workflow %s does not have a valid state",
		errors.RFCCodeText("FLOW:ErrInvalidWorkflowState"),
	)
	ErrPollTimeout = errors.Normalize(
		"%s did not reach states %v within %s, last observed state: %s",
		errors.RFCCodeText("FLOW:ErrPollTimeout"),
	)

	// resource admin errors
	ErrResourceExists = errors.Normalize(
		"resource %s already exists in cluster %s",
		errors.RFCCodeText("FLOW:ErrResourceExists"),
	)
	ErrResourceNotExists = errors.Normalize(
		"resource %s does not exist in cluster %s",
		errors.RFCCodeText("FLOW:ErrResourceNotExists"),
	)

	// internal errors
	ErrReachMaxTry = errors.Normalize(
		"reach maximum try: %s, error: %s",
		errors.RFCCodeText("FLOW:ErrReachMaxTry"),
	)
)
