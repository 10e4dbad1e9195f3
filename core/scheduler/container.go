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
	"fmt"

	"github.com/chainbase/txsched/core/account"
)

// TransactionID identifies a transaction for the lifetime it spends in the
// scheduler. Ids count up from zero and are never reused while a
// transaction occupies a slot in the container.
type TransactionID uint64

type transactionIDGenerator struct {
	next TransactionID
}

func (g *transactionIDGenerator) nextID() TransactionID {
	id := g.next
	g.next++
	return id
}

// PriorityID pairs a transaction id with the priority it was queued at, and
// is the unit ordered by the container's priority queue: higher priority
// sorts first, ties broken in favor of the lower (earlier-assigned) id.
type PriorityID struct {
	Priority uint64
	ID       TransactionID
}

// Less reports whether p should be scheduled before o.
func (p PriorityID) Less(o PriorityID) bool {
	if p.Priority != o.Priority {
		return p.Priority > o.Priority
	}
	return p.ID < o.ID
}

// TransactionTTL pairs a schedulable message with the slot after which it is
// no longer valid to execute (a stale blockhash). RawPacket retains the
// original wire bytes the message was sanitized from, so the forward path
// can re-send the untouched packet instead of re-encoding Message.
type TransactionTTL struct {
	Message    account.Message
	MaxAgeSlot uint64
	RawPacket  []byte
}

// PriorityDetails carries the fee-derived priority and the declared compute
// budget of a transaction, computed once at admission time.
type PriorityDetails struct {
	Priority         uint64
	ComputeUnitLimit uint64
}

type transactionLifecycle uint8

const (
	stateUnprocessed transactionLifecycle = iota
	statePending
)

// TransactionState is the record the container keeps for a transaction for
// as long as it is known to the scheduler: its message/TTL, its priority,
// and whether it is currently sitting in the priority queue (Unprocessed)
// or has been handed to a worker (Pending).
type TransactionState struct {
	ttl      TransactionTTL
	priority PriorityDetails
	state    transactionLifecycle
}

// TTL returns the transaction's message and max-age slot.
func (s *TransactionState) TTL() TransactionTTL { return s.ttl }

// Priority returns the transaction's scheduling priority.
func (s *TransactionState) Priority() uint64 { return s.priority.Priority }

// PriorityDetails returns the transaction's full priority/cost record.
func (s *TransactionState) PriorityDetails() PriorityDetails { return s.priority }

// TransitionToPending marks the transaction as handed off to a worker and
// returns its TTL for inclusion in a work batch. If the transaction is
// already pending it returns the TTL and leaves the state unchanged.
func (s *TransactionState) TransitionToPending() TransactionTTL {
	if s.state == statePending {
		return s.ttl // idempotent for callers that already hold the pending view
	}
	s.state = statePending
	return s.ttl
}

// TransitionToUnprocessed moves a retried transaction back into the
// schedulable state with a possibly-updated TTL (e.g. after an address
// lookup table re-resolution).
func (s *TransactionState) TransitionToUnprocessed(ttl TransactionTTL) {
	s.state = stateUnprocessed
	s.ttl = ttl
}

// RefreshTTL updates the max-age slot recorded for this transaction after a
// successful re-sanitization, leaving its message and priority untouched.
func (s *TransactionState) RefreshTTL(maxAgeSlot uint64) {
	s.ttl.MaxAgeSlot = maxAgeSlot
}

// priorityHeap implements container/heap.Interface over PriorityID. prque's
// scalar-priority max-heap cannot express the compound (priority, id)
// ordering PriorityID.Less needs for deterministic tie-breaking, so the
// container orders its queue with a small heap.Interface of its own instead.
type priorityHeap []PriorityID

func (h priorityHeap) Len() int            { return len(h) }
func (h priorityHeap) Less(i, j int) bool  { return h[i].Less(h[j]) }
func (h priorityHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap) Push(x interface{}) { *h = append(*h, x.(PriorityID)) }
func (h *priorityHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Container holds TransactionState for the entirety of a transaction's
// lifetime in the scheduler: a bounded priority queue of ids for ordering,
// and a map of id to state for lookup. When a transaction is Pending, its
// id has been popped from the queue but its state entry remains in the map
// until the worker reports success (RemoveByID) or failure (retry, which
// re-enters the queue).
//
// The container maintains a fixed capacity; if the queue is full when a
// new or retried id is pushed, the lowest-priority id is evicted.
type Container struct {
	capacity int
	queue    priorityHeap
	states   map[TransactionID]*TransactionState
	idGen    transactionIDGenerator
}

// NewContainer constructs an empty container bounded to capacity entries.
func NewContainer(capacity int) *Container {
	return &Container{
		capacity: capacity,
		queue:    make(priorityHeap, 0, capacity),
		states:   make(map[TransactionID]*TransactionState, capacity+1),
	}
}

// IsEmpty reports whether the priority queue (not the state map) is empty.
func (c *Container) IsEmpty() bool { return c.queue.Len() == 0 }

// Len returns the number of transactions currently queued.
func (c *Container) Len() int { return c.queue.Len() }

// RemainingCapacity returns how many more ids the queue can hold before the
// next push evicts the lowest-priority entry.
func (c *Container) RemainingCapacity() int { return c.capacity - c.queue.Len() }

// Pop removes and returns the highest-priority id in the queue.
func (c *Container) Pop() (PriorityID, bool) {
	if c.queue.Len() == 0 {
		return PriorityID{}, false
	}
	return heap.Pop(&c.queue).(PriorityID), true
}

// GetTransactionState returns the state recorded for id, if any.
func (c *Container) GetTransactionState(id TransactionID) (*TransactionState, bool) {
	s, ok := c.states[id]
	return s, ok
}

// GetTransactionTTL returns the TTL recorded for id, if any.
func (c *Container) GetTransactionTTL(id TransactionID) (TransactionTTL, bool) {
	s, ok := c.states[id]
	if !ok {
		return TransactionTTL{}, false
	}
	return s.ttl, true
}

// InsertNewTransaction admits a new transaction into the container,
// assigning it a fresh id. It returns the assigned id and whether admitting
// it caused the lowest-priority queued transaction to be evicted.
func (c *Container) InsertNewTransaction(ttl TransactionTTL, priority PriorityDetails) (TransactionID, bool) {
	id := c.idGen.nextID()
	c.states[id] = &TransactionState{ttl: ttl, priority: priority, state: stateUnprocessed}
	dropped := c.PushIDIntoQueue(PriorityID{Priority: priority.Priority, ID: id})
	return id, dropped
}

// RetryTransaction transitions a previously-pending transaction back to
// Unprocessed with a fresh TTL, and re-enters it into the priority queue.
// It panics if id is not known to the container.
func (c *Container) RetryTransaction(id TransactionID, ttl TransactionTTL) {
	state, ok := c.states[id]
	if !ok {
		panic(fmt.Sprintf("retry transaction: unknown id %d", id))
	}
	priority := state.Priority()
	state.TransitionToUnprocessed(ttl)
	c.PushIDIntoQueue(PriorityID{Priority: priority, ID: id})
}

// PushIDIntoQueue pushes priorityID into the queue, evicting the
// lowest-priority entry (and its state) if doing so exceeds capacity. It
// returns whether an eviction occurred.
func (c *Container) PushIDIntoQueue(priorityID PriorityID) bool {
	heap.Push(&c.queue, priorityID)
	if c.RemainingCapacity() < 0 {
		lowest := c.evictLowest()
		c.RemoveByID(lowest.ID)
		return true
	}
	return false
}

// evictLowest removes and returns the lowest-priority entry in the queue.
func (c *Container) evictLowest() PriorityID {
	worst := 0
	for i := 1; i < len(c.queue); i++ {
		if c.queue[worst].Less(c.queue[i]) {
			worst = i
		}
	}
	id := c.queue[worst]
	c.queue = append(c.queue[:worst], c.queue[worst+1:]...)
	heap.Init(&c.queue)
	return id
}

// RemoveByID deletes the state entry for id. It panics if id is unknown.
func (c *Container) RemoveByID(id TransactionID) {
	if _, ok := c.states[id]; !ok {
		panic(fmt.Sprintf("remove by id: unknown id %d", id))
	}
	delete(c.states, id)
}
