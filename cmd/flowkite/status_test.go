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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowkite/flowkite/scheduler/dag"
)

func TestChainOrder(t *testing.T) {
	t.Parallel()

	require.Nil(t, chainOrder(nil, nil))

	// enqueue order c, a, b forms the chain c -> a -> b
	d := dag.NewJobDag()
	d.AddEdge("q_c", "q_a")
	d.AddEdge("q_a", "q_b")
	require.Equal(t, []string{"q_c", "q_a", "q_b"}, chainOrder(d.Nodes(), d.Children))

	// a branching DAG falls back to sorted names
	forked := dag.NewJobDag()
	forked.AddEdge("w_a", "w_b")
	forked.AddEdge("w_a", "w_c")
	require.Equal(t, []string{"w_a", "w_b", "w_c"}, chainOrder(forked.Nodes(), forked.Children))
}
