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

package main

import (
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/flowkite/flowkite/pkg/errors"
	"github.com/flowkite/flowkite/pkg/metastore"
	"github.com/flowkite/flowkite/scheduler/admin"
	"github.com/flowkite/flowkite/scheduler/driver"
)

// session bundles the connected driver with its etcd client so commands can
// close the connection when done.
type session struct {
	cli    *clientv3.Client
	driver *driver.Driver
}

func (s *session) close() {
	if err := s.cli.Close(); err != nil {
		zap.L().Warn("closing etcd client", zap.Error(err))
	}
}

// connect dials etcd and wires the driver on top of it.
func connect(o *options) (*session, error) {
	cfg := o.cfg
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout.Duration(),
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	store := metastore.NewEtcdStore(cli, metastore.OpCounters())
	adm := admin.NewStoreAdmin(store)
	trigger := admin.NewStoreTrigger(store, cfg.Cluster)
	return &session{
		cli:    cli,
		driver: driver.NewDriver(store, adm, trigger, cfg.Cluster),
	}, nil
}
