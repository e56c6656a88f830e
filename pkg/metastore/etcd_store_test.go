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
	"testing"

	"github.com/benbjohnson/clock"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// no t.Parallel, the test reads a package-level counter.
func TestEtcdStoreSlowRequestObservation(t *testing.T) {
	mock := clock.NewMock()
	s := &EtcdStore{clock: mock}

	read := func() float64 {
		var m dto.Metric
		require.NoError(t, storeSlowRequestCounter.Write(&m))
		return m.GetCounter().GetValue()
	}

	before := read()

	start := mock.Now()
	mock.Add(etcdSlowRequestDuration / 2)
	s.observe(OpGet, start)
	require.Equal(t, before, read())

	start = mock.Now()
	mock.Add(2 * etcdSlowRequestDuration)
	s.observe(OpTxn, start)
	require.Equal(t, before+1, read())
}
