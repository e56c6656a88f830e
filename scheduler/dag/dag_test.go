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

package dag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func chain(nodes ...string) *JobDag {
	d := NewJobDag()
	for i, node := range nodes {
		d.AddNode(node)
		if i > 0 {
			d.AddEdge(nodes[i-1], node)
		}
	}
	return d
}

func TestAddAndQuery(t *testing.T) {
	t.Parallel()

	d := chain("a", "b", "c")
	require.Equal(t, 3, d.Size())
	require.True(t, d.Contains("b"))
	require.False(t, d.Contains("x"))
	require.Equal(t, []string{"a", "b", "c"}, d.Nodes())
	require.Equal(t, []string{"b"}, d.Children("a"))
	require.Equal(t, []string{"b"}, d.Parents("c"))
	require.Empty(t, d.Children("c"))
	require.NoError(t, d.Validate())
}

func TestRemoveNodeReconnectsChain(t *testing.T) {
	t.Parallel()

	d := chain("a", "b", "c")
	d.RemoveNode("b")
	require.Equal(t, []string{"a", "c"}, d.Nodes())
	require.Equal(t, []string{"c"}, d.Children("a"))
	require.Equal(t, []string{"a"}, d.Parents("c"))
	require.NoError(t, d.Validate())
}

func TestRemoveNodeNoReconnectOnFanOut(t *testing.T) {
	t.Parallel()

	// b has two children, so removing it must not invent edges.
	d := NewJobDag()
	d.AddEdge("a", "b")
	d.AddEdge("b", "c")
	d.AddEdge("b", "d")
	d.RemoveNode("b")
	require.Empty(t, d.Children("a"))
	require.Empty(t, d.Parents("c"))
	require.Empty(t, d.Parents("d"))
	require.NoError(t, d.Validate())
}

func TestRemoveHeadAndTail(t *testing.T) {
	t.Parallel()

	d := chain("a", "b", "c")
	d.RemoveNode("a")
	require.Equal(t, []string{"b", "c"}, d.Nodes())
	require.Empty(t, d.Parents("b"))

	d.RemoveNode("c")
	require.Equal(t, []string{"b"}, d.Nodes())
	require.Empty(t, d.Children("b"))
	require.NoError(t, d.Validate())
}

func TestRemoveAbsentNode(t *testing.T) {
	t.Parallel()

	d := chain("a", "b")
	d.RemoveNode("zzz")
	require.Equal(t, []string{"a", "b"}, d.Nodes())
}

func TestTail(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", NewJobDag().Tail(""))

	d := chain("a", "b", "c")
	require.Equal(t, "c", d.Tail(""))
	// the node being attached never counts as its own tail
	d.AddNode("d")
	require.Equal(t, "c", d.Tail("d"))

	// two childless nodes, the lexicographically-first wins
	forked := NewJobDag()
	forked.AddEdge("a", "b")
	forked.AddEdge("a", "c")
	require.Equal(t, "b", forked.Tail(""))
}

func TestClear(t *testing.T) {
	t.Parallel()

	d := chain("a", "b", "c")
	d.Clear()
	require.Equal(t, 0, d.Size())
	require.Empty(t, d.Children("a"))
	require.Equal(t, "", d.Tail(""))
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	d := NewJobDag()
	d.AddEdge("a", "b")
	d.AddEdge("a", "c")
	d.AddEdge("b", "d")
	d.AddNode("lonely")

	encoded, err := d.Marshal()
	require.NoError(t, err)
	decoded, err := Unmarshal([]byte(encoded))
	require.NoError(t, err)

	require.Equal(t, d.Nodes(), decoded.Nodes())
	for _, node := range d.Nodes() {
		require.Equal(t, d.Children(node), decoded.Children(node))
		require.Equal(t, d.Parents(node), decoded.Parents(node))
	}
	require.NoError(t, decoded.Validate())
}

func TestUnmarshalGarbage(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte("{not json"))
	require.Error(t, err)
}

func TestValidateDetectsBrokenMapping(t *testing.T) {
	t.Parallel()

	d := chain("a", "b")
	// break the reverse mapping by hand
	delete(d.childrenToParents, "b")
	require.Error(t, d.Validate())
}
