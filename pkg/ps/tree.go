/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ps

import (
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/rabbitstack/toolhelp/pkg/toolhelp"
)

// Node is a process linked to its parent and child processes.
type Node struct {
	Proc     toolhelp.ProcessEntry
	Parent   *Node
	Children []*Node

	idx uint
}

// String returns the label of the process node.
func (n *Node) String() string {
	return fmt.Sprintf("%s (%d)", n.Proc.ExeFile, n.Proc.ProcessID)
}

// Visitor is the type definition for the function that is
// invoked on each ancestor visit walk.
type Visitor func(*Node)

// Walk visits all ancestors of the given process node
// and invokes the visitor function on each parent.
func Walk(v Visitor, n *Node) {
	for n != nil && n.Parent != nil {
		v(n.Parent)
		n = n.Parent
	}
}

// Tree is the process hierarchy reconstructed from a process snapshot.
type Tree struct {
	Roots []*Node
	nodes map[uint32]*Node
}

// BuildTree links every process to its parent. A process whose parent is gone, or that
// names itself as its parent, becomes a root. Parent links that form a cycle because of
// PID reuse are cut, so every process appears exactly once in the tree.
func BuildTree(procs []toolhelp.ProcessEntry) *Tree {
	t := &Tree{nodes: make(map[uint32]*Node, len(procs))}
	order := make([]*Node, 0, len(procs))
	for _, proc := range procs {
		if _, ok := t.nodes[proc.ProcessID]; ok {
			continue
		}
		n := &Node{Proc: proc, idx: uint(len(order))}
		t.nodes[proc.ProcessID] = n
		order = append(order, n)
	}

	for _, n := range order {
		parent, ok := t.nodes[n.Proc.ParentProcessID]
		if !ok || parent == n {
			t.Roots = append(t.Roots, n)
			continue
		}
		n.Parent = parent
		parent.Children = append(parent.Children, n)
	}

	visited := bitset.New(uint(len(order)))
	for _, root := range t.Roots {
		mark(root, visited)
	}
	// whatever is left unreachable hangs off a cycle
	for _, n := range order {
		if visited.Test(n.idx) {
			continue
		}
		n.Parent.Children = remove(n.Parent.Children, n)
		n.Parent = nil
		t.Roots = append(t.Roots, n)
		mark(n, visited)
	}

	return t
}

func mark(n *Node, visited *bitset.BitSet) {
	visited.Set(n.idx)
	for _, child := range n.Children {
		if !visited.Test(child.idx) {
			mark(child, visited)
		}
	}
}

func remove(nodes []*Node, n *Node) []*Node {
	for i, node := range nodes {
		if node == n {
			return append(nodes[:i], nodes[i+1:]...)
		}
	}
	return nodes
}

// Find returns the node of the given process or nil if the process isn't in the tree.
func (t *Tree) Find(pid uint32) *Node { return t.nodes[pid] }

// Len returns the number of processes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Render writes the process hierarchy to the writer.
func (t *Tree) Render(w io.Writer) {
	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedLight)
	for _, root := range t.Roots {
		appendNode(l, root)
	}
	_, _ = fmt.Fprintln(w, l.Render())
}

func appendNode(l list.Writer, n *Node) {
	l.AppendItem(n)
	if len(n.Children) == 0 {
		return
	}
	l.Indent()
	for _, child := range n.Children {
		appendNode(l, child)
	}
	l.UnIndent()
}
