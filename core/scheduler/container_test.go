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

import "testing"

func testTTL(priority uint64) (TransactionTTL, PriorityDetails) {
	return TransactionTTL{MaxAgeSlot: ^uint64(0)}, PriorityDetails{Priority: priority, ComputeUnitLimit: 0}
}

func pushToContainer(c *Container, num int) {
	for priority := 0; priority < num; priority++ {
		ttl, details := testTTL(uint64(priority))
		c.InsertNewTransaction(ttl, details)
	}
}

func TestContainerIsEmpty(t *testing.T) {
	c := NewContainer(1)
	if !c.IsEmpty() {
		t.Fatalf("new container should be empty")
	}
	pushToContainer(c, 1)
	if c.IsEmpty() {
		t.Fatalf("container should not be empty after insert")
	}
}

func TestContainerPriorityQueueCapacity(t *testing.T) {
	c := NewContainer(1)
	pushToContainer(c, 5)
	if got := c.queue.Len(); got != 1 {
		t.Fatalf("queue length = %d, want 1", got)
	}
}

func TestContainerGetTransactionState(t *testing.T) {
	c := NewContainer(5)
	pushToContainer(c, 5)

	if _, ok := c.GetTransactionState(TransactionID(3)); !ok {
		t.Fatalf("expected state for id 3")
	}
	if _, ok := c.GetTransactionState(TransactionID(7)); ok {
		t.Fatalf("did not expect state for id 7")
	}
}

func TestContainerPopPriorityOrder(t *testing.T) {
	c := NewContainer(10)
	pushToContainer(c, 5) // priorities 0..4, ids 0..4

	var order []uint64
	for {
		id, ok := c.Pop()
		if !ok {
			break
		}
		order = append(order, id.Priority)
	}
	want := []uint64{4, 3, 2, 1, 0}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestContainerEvictsLowestPriorityOnOverflow(t *testing.T) {
	// The queue fills up to capacity; the push that would exceed it evicts
	// the single lowest-priority entry, leaving exactly capacity entries.
	c := NewContainer(2)
	pushToContainer(c, 3) // priorities/ids 0, 1, 2 in increasing priority

	if _, ok := c.GetTransactionState(TransactionID(0)); ok {
		t.Fatalf("transaction 0 should have been evicted")
	}
	if _, ok := c.GetTransactionState(TransactionID(1)); !ok {
		t.Fatalf("expected transaction 1 to survive")
	}
	if _, ok := c.GetTransactionState(TransactionID(2)); !ok {
		t.Fatalf("expected transaction 2 (highest priority) to survive")
	}
}

func TestContainerRetryTransaction(t *testing.T) {
	c := NewContainer(10)
	ttl, details := testTTL(5)
	id, _ := c.InsertNewTransaction(ttl, details)

	popped, ok := c.Pop()
	if !ok || popped.ID != id {
		t.Fatalf("Pop = (%v, %v), want (%v, true)", popped, ok, id)
	}
	state, _ := c.GetTransactionState(id)
	state.TransitionToPending()

	c.RetryTransaction(id, ttl)

	popped, ok = c.Pop()
	if !ok || popped.ID != id {
		t.Fatalf("retried transaction should be schedulable again, got (%v, %v)", popped, ok)
	}
}

func TestContainerRemoveByID(t *testing.T) {
	c := NewContainer(10)
	ttl, details := testTTL(1)
	id, _ := c.InsertNewTransaction(ttl, details)
	c.RemoveByID(id)
	if _, ok := c.GetTransactionState(id); ok {
		t.Fatalf("expected transaction to be removed")
	}
}
