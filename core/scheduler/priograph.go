// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package scheduler

import (
	"container/heap"

	"github.com/chainbase/txsched/core/account"
)

// unionFind is a standard disjoint-set structure used to track which
// transactions belong to the same conflict chain (connected component of
// the dependency graph), with path compression but no union-by-rank —
// chains in a single look-ahead window are small enough that this doesn't
// matter in practice.
type unionFind struct {
	parent map[TransactionID]TransactionID
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[TransactionID]TransactionID)}
}

func (u *unionFind) find(x TransactionID) TransactionID {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		u.parent[x], x = root, u.parent[x]
	}
	return root
}

func (u *unionFind) union(a, b TransactionID) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

type prioGraphNode struct {
	blockedBy int
	blocks    []PriorityID
}

// PrioGraph is a priority-ordered dependency graph over a look-ahead window
// of transactions: transactions are nodes, and a directed edge runs from an
// earlier-inserted (so higher-or-equal priority) transaction to a
// later-inserted one when they declare conflicting account locks. A node
// only becomes ready to pop once every transaction blocking it has been
// popped and unblocked, which guarantees Pop never returns a transaction
// whose still-pending conflicts outrank it.
//
// Nodes stay in the graph after being popped, since "popped" only means
// "handed to the scheduler this pass" — not yet known to have completed.
// UnblockID must be called once the scheduler is done with a popped id's
// batch so that transactions it was blocking can become ready.
type PrioGraph struct {
	nodes      map[TransactionID]*prioGraphNode
	ready      priorityHeap
	writeLocks map[account.Key]TransactionID
	readLocks  map[account.Key][]TransactionID
	chains     *unionFind
}

// NewPrioGraph returns an empty graph.
func NewPrioGraph() *PrioGraph {
	return &PrioGraph{
		nodes:      make(map[TransactionID]*prioGraphNode),
		writeLocks: make(map[account.Key]TransactionID),
		readLocks:  make(map[account.Key][]TransactionID),
		chains:     newUnionFind(),
	}
}

// InsertTransaction adds id to the graph, wiring blocking edges from any
// already-inserted transaction whose locks conflict with message's. Since
// transactions are inserted in priority order, an existing lock holder is
// always higher-or-equal priority, and the inserted node is blocked by
// (never blocks) it.
func (g *PrioGraph) InsertTransaction(id PriorityID, message account.Message) {
	node := &prioGraphNode{}
	blockedBy := make(map[TransactionID]bool)

	addBlocker := func(blocker TransactionID) {
		if blocker == id.ID || blockedBy[blocker] {
			return
		}
		g.chains.union(blocker, id.ID)
		blockerNode, ok := g.nodes[blocker]
		if !ok {
			return // already unblocked, so it no longer holds id back
		}
		blockedBy[blocker] = true
		blockerNode.blocks = append(blockerNode.blocks, id)
	}

	for _, k := range message.WritableAccounts() {
		if w, ok := g.writeLocks[k]; ok {
			addBlocker(w)
		}
		for _, r := range g.readLocks[k] {
			addBlocker(r)
		}
		g.writeLocks[k] = id.ID
	}
	for _, k := range message.ReadableAccounts() {
		if w, ok := g.writeLocks[k]; ok {
			addBlocker(w)
		}
		g.readLocks[k] = append(g.readLocks[k], id.ID)
	}

	node.blockedBy = len(blockedBy)
	g.nodes[id.ID] = node
	g.chains.find(id.ID) // ensure a singleton chain exists even with no conflicts
	if node.blockedBy == 0 {
		heap.Push(&g.ready, id)
	}
}

// ChainID returns the identifier of the connected component id belongs to:
// transactions whose conflict chains are linked (directly or transitively)
// share a ChainID, which the scheduler uses to keep a whole chain of
// mutually-conflicting transactions on one worker thread.
func (g *PrioGraph) ChainID(id TransactionID) TransactionID {
	return g.chains.find(id)
}

// IsEmpty reports whether no ready transactions remain.
func (g *PrioGraph) IsEmpty() bool { return g.ready.Len() == 0 }

// Pop removes and returns the highest-priority ready transaction. The
// transaction remains a node in the graph until UnblockID is called.
func (g *PrioGraph) Pop() (PriorityID, bool) {
	if g.ready.Len() == 0 {
		return PriorityID{}, false
	}
	return heap.Pop(&g.ready).(PriorityID), true
}

// UnblockID releases id's node from the graph and decrements the blocked-by
// count of every transaction it was blocking, moving any that reach zero
// into the ready queue.
func (g *PrioGraph) UnblockID(id PriorityID) {
	node, ok := g.nodes[id.ID]
	if !ok {
		return
	}
	delete(g.nodes, id.ID)
	for _, blocked := range node.blocks {
		blockedNode, ok := g.nodes[blocked.ID]
		if !ok {
			continue
		}
		blockedNode.blockedBy--
		if blockedNode.blockedBy == 0 {
			heap.Push(&g.ready, blocked)
		}
	}
}

// PopAndUnblock pops the highest-priority ready transaction and immediately
// unblocks it, for draining the remainder of the graph at the end of a
// scheduling pass.
func (g *PrioGraph) PopAndUnblock() (PriorityID, bool) {
	id, ok := g.Pop()
	if !ok {
		return PriorityID{}, false
	}
	g.UnblockID(id)
	return id, true
}
