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

// Package dag implements the in-memory job DAG a workflow's execution order
// is derived from. Nodes are namespaced job names. Both adjacency directions
// are kept and stay mutually consistent across every mutation.
//
// Acyclicity is a caller invariant: the scheduler only ever builds template
// DAGs and single-chain queues, so mutations do not run a cycle check.
package dag

import (
	"encoding/json"
	"sort"

	cerror "github.com/flowkite/flowkite/pkg/errors"
)

// JobDag is a directed acyclic graph of namespaced job names.
// The zero value is not usable; construct with NewJobDag or Unmarshal.
type JobDag struct {
	nodes             map[string]struct{}
	parentsToChildren map[string]map[string]struct{}
	childrenToParents map[string]map[string]struct{}
}

// jobDagWire is the serialized form. Set ordering is not significant.
type jobDagWire struct {
	Nodes             []string            `json:"nodes"`
	ParentsToChildren map[string][]string `json:"parents-to-children"`
	ChildrenToParents map[string][]string `json:"children-to-parents"`
}

// NewJobDag creates an empty DAG.
func NewJobDag() *JobDag {
	return &JobDag{
		nodes:             make(map[string]struct{}),
		parentsToChildren: make(map[string]map[string]struct{}),
		childrenToParents: make(map[string]map[string]struct{}),
	}
}

// AddNode adds a node without edges. Adding an existing node is a no-op.
func (d *JobDag) AddNode(node string) {
	d.nodes[node] = struct{}{}
}

// Contains reports whether node is in the DAG.
func (d *JobDag) Contains(node string) bool {
	_, ok := d.nodes[node]
	return ok
}

// Size returns the number of nodes.
func (d *JobDag) Size() int {
	return len(d.nodes)
}

// Nodes returns all nodes in lexicographic order.
func (d *JobDag) Nodes() []string {
	nodes := make([]string, 0, len(d.nodes))
	for node := range d.nodes {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}

// AddEdge records parent→child in both adjacency directions. Endpoints are
// added to the node set if missing.
func (d *JobDag) AddEdge(parent, child string) {
	d.nodes[parent] = struct{}{}
	d.nodes[child] = struct{}{}
	if d.parentsToChildren[parent] == nil {
		d.parentsToChildren[parent] = make(map[string]struct{})
	}
	d.parentsToChildren[parent][child] = struct{}{}
	if d.childrenToParents[child] == nil {
		d.childrenToParents[child] = make(map[string]struct{})
	}
	d.childrenToParents[child][parent] = struct{}{}
}

// RemoveEdge removes parent→child from both adjacency directions.
func (d *JobDag) RemoveEdge(parent, child string) {
	if children, ok := d.parentsToChildren[parent]; ok {
		delete(children, child)
		if len(children) == 0 {
			delete(d.parentsToChildren, parent)
		}
	}
	if parents, ok := d.childrenToParents[child]; ok {
		delete(parents, parent)
		if len(parents) == 0 {
			delete(d.childrenToParents, child)
		}
	}
}

// Children returns the direct children of node in lexicographic order.
func (d *JobDag) Children(node string) []string {
	return sortedKeys(d.parentsToChildren[node])
}

// Parents returns the direct parents of node in lexicographic order.
func (d *JobDag) Parents(node string) []string {
	return sortedKeys(d.childrenToParents[node])
}

// RemoveNode deletes node and its incident edges. When the node has exactly
// one parent and exactly one child, the parent is connected directly to the
// child so that a queue chain stays connected with its order preserved.
// Removing an absent node is a no-op.
func (d *JobDag) RemoveNode(node string) {
	if !d.Contains(node) {
		return
	}
	parents := d.Parents(node)
	children := d.Children(node)
	for _, parent := range parents {
		d.RemoveEdge(parent, node)
	}
	for _, child := range children {
		d.RemoveEdge(node, child)
	}
	if len(parents) == 1 && len(children) == 1 {
		d.AddEdge(parents[0], children[0])
	}
	delete(d.nodes, node)
}

// Tail returns the lexicographically-first node, other than exclude, that has
// no children, or "" when there is none. This is the deterministic attach
// point for enqueue.
func (d *JobDag) Tail(exclude string) string {
	for _, node := range d.Nodes() {
		if node == exclude {
			continue
		}
		if len(d.parentsToChildren[node]) == 0 {
			return node
		}
	}
	return ""
}

// Clear removes every node and edge.
func (d *JobDag) Clear() {
	d.nodes = make(map[string]struct{})
	d.parentsToChildren = make(map[string]map[string]struct{})
	d.childrenToParents = make(map[string]map[string]struct{})
}

// Validate checks that both adjacency directions agree and that every edge
// endpoint is in the node set.
func (d *JobDag) Validate() error {
	for parent, children := range d.parentsToChildren {
		if !d.Contains(parent) {
			return cerror.New("edge references unknown node " + parent)
		}
		for child := range children {
			if !d.Contains(child) {
				return cerror.New("edge references unknown node " + child)
			}
			if _, ok := d.childrenToParents[child][parent]; !ok {
				return cerror.New("edge " + parent + "->" + child + " missing reverse mapping")
			}
		}
	}
	for child, parents := range d.childrenToParents {
		for parent := range parents {
			if _, ok := d.parentsToChildren[parent][child]; !ok {
				return cerror.New("edge " + parent + "->" + child + " missing forward mapping")
			}
		}
	}
	return nil
}

// Marshal returns the json form of the DAG.
func (d *JobDag) Marshal() (string, error) {
	wire := jobDagWire{
		Nodes:             d.Nodes(),
		ParentsToChildren: make(map[string][]string, len(d.parentsToChildren)),
		ChildrenToParents: make(map[string][]string, len(d.childrenToParents)),
	}
	for parent := range d.parentsToChildren {
		wire.ParentsToChildren[parent] = d.Children(parent)
	}
	for child := range d.childrenToParents {
		wire.ChildrenToParents[child] = d.Parents(child)
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return "", cerror.WrapError(cerror.ErrEncodeFailed, err)
	}
	return string(data), nil
}

// Unmarshal parses the json form produced by Marshal into a new JobDag.
func Unmarshal(data []byte) (*JobDag, error) {
	var wire jobDagWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, cerror.WrapError(cerror.ErrDecodeFailed, err)
	}
	d := NewJobDag()
	for _, node := range wire.Nodes {
		d.AddNode(node)
	}
	for parent, children := range wire.ParentsToChildren {
		for _, child := range children {
			d.AddEdge(parent, child)
		}
	}
	// children-to-parents repeats the same edge set; replay it anyway so a
	// hand-edited record still round-trips into a consistent graph.
	for child, parents := range wire.ChildrenToParents {
		for _, parent := range parents {
			d.AddEdge(parent, child)
		}
	}
	return d, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
