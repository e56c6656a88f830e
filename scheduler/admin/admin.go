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

// Package admin materializes workflows and jobs as schedulable resources the
// external rebalancer acts on, and carries the rebalance trigger.
package admin

import (
	"context"
	"encoding/json"

	cerror "github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/pkg/metastore"
	"github.com/flowkite/flowkite/scheduler/keyspace"
)

// TaskStateModel is the state model every workflow/job resource is created
// with.
const TaskStateModel = "Task"

// ResourceLayout is the schedulable representation of a workflow or job. The
// rebalancer fills Assignments; the scheduler only creates and drops layouts.
type ResourceLayout struct {
	Name       string `json:"name"`
	Partitions int    `json:"partitions"`
	StateModel string `json:"state-model"`
	// Assignments maps partition name to the instances it is placed on.
	Assignments map[string][]string `json:"assignments,omitempty"`
}

// Marshal returns the json format of the ResourceLayout.
func (l *ResourceLayout) Marshal() ([]byte, error) {
	data, err := json.Marshal(l)
	return data, cerror.WrapError(cerror.ErrEncodeFailed, err)
}

// Unmarshal parses the json format into the ResourceLayout.
func (l *ResourceLayout) Unmarshal(data []byte) error {
	err := json.Unmarshal(data, l)
	return cerror.WrapError(cerror.ErrDecodeFailed, err)
}

// Admin is the cluster resource administration contract the scheduler
// consumes. Implementations must reject duplicate resource creation; that
// rejection is how a double Start of a terminable workflow surfaces.
type Admin interface {
	// AddResource creates the schedulable resource. Fails with
	// ErrResourceExists when the resource is already present.
	AddResource(ctx context.Context, cluster, name string, partitions int, stateModel string) error

	// DropResource removes the schedulable resource. Dropping an absent
	// resource is not an error.
	DropResource(ctx context.Context, cluster, name string) error

	// GetResourceLayout reads a resource's layout, reporting absence with
	// a nil layout.
	GetResourceLayout(ctx context.Context, cluster, name string) (*ResourceLayout, error)

	// SetResourceLayout overwrites a resource's layout.
	SetResourceLayout(ctx context.Context, cluster, name string, layout *ResourceLayout) error

	// ListResources returns the sorted names of all resources.
	ListResources(ctx context.Context, cluster string) ([]string, error)
}

// StoreAdmin implements Admin on the metadata store itself, persisting
// layouts under the cluster's resources prefix.
type StoreAdmin struct {
	store metastore.Store
}

// NewStoreAdmin creates a StoreAdmin.
func NewStoreAdmin(store metastore.Store) *StoreAdmin {
	return &StoreAdmin{store: store}
}

// AddResource implements Admin. Creation goes through a conditional update
// so two concurrent creators cannot both succeed.
func (a *StoreAdmin) AddResource(
	ctx context.Context, cluster, name string, partitions int, stateModel string,
) error {
	layout := &ResourceLayout{
		Name:       name,
		Partitions: partitions,
		StateModel: stateModel,
	}
	value, err := layout.Marshal()
	if err != nil {
		return err
	}
	key := keyspace.ResourceKey(cluster, name)
	return a.store.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		if exists {
			return nil, cerror.ErrResourceExists.GenWithStackByArgs(name, cluster)
		}
		return value, nil
	})
}

// DropResource implements Admin.
func (a *StoreAdmin) DropResource(ctx context.Context, cluster, name string) error {
	return a.store.Remove(ctx, keyspace.ResourceKey(cluster, name))
}

// GetResourceLayout implements Admin.
func (a *StoreAdmin) GetResourceLayout(
	ctx context.Context, cluster, name string,
) (*ResourceLayout, error) {
	value, exists, err := a.store.Get(ctx, keyspace.ResourceKey(cluster, name))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	layout := &ResourceLayout{}
	if err := layout.Unmarshal(value); err != nil {
		return nil, err
	}
	return layout, nil
}

// SetResourceLayout implements Admin.
func (a *StoreAdmin) SetResourceLayout(
	ctx context.Context, cluster, name string, layout *ResourceLayout,
) error {
	value, err := layout.Marshal()
	if err != nil {
		return err
	}
	return a.store.Set(ctx, keyspace.ResourceKey(cluster, name), value)
}

// ListResources implements Admin.
func (a *StoreAdmin) ListResources(ctx context.Context, cluster string) ([]string, error) {
	return a.store.ListChildren(ctx, keyspace.ResourcesPrefix(cluster))
}
