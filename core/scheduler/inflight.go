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

import "fmt"

// BatchID identifies a batch of work handed off to a worker thread. Batch
// ids are minted in descending order starting from the maximum value; only
// freshness (never seen before) matters, not any particular ordering.
type BatchID uint64

// batchIDGenerator mints monotonically-decreasing BatchIDs.
type batchIDGenerator struct {
	next BatchID
}

func newBatchIDGenerator() *batchIDGenerator {
	return &batchIDGenerator{next: ^BatchID(0)}
}

func (g *batchIDGenerator) nextID() BatchID {
	id := g.next
	g.next--
	return id
}

type inFlightBatch struct {
	thread          ThreadID
	numTransactions int
	totalCost       uint64
}

// InFlightTracker records, per worker thread, how many transactions are
// currently out for execution, and maps each outstanding batch back to the
// thread and size it was sent on. The scheduler consults
// NumInFlightPerThread to bound how much unacknowledged work a thread may
// be given, and calls CompleteBatch when a worker reports a batch finished.
type InFlightTracker struct {
	idGen *batchIDGenerator

	numInFlightPerThread  []int
	costInFlightPerThread []uint64
	batches               map[BatchID]inFlightBatch
}

// NewInFlightTracker constructs a tracker for numThreads worker threads.
func NewInFlightTracker(numThreads int) *InFlightTracker {
	return &InFlightTracker{
		idGen:                 newBatchIDGenerator(),
		numInFlightPerThread:  make([]int, numThreads),
		costInFlightPerThread: make([]uint64, numThreads),
		batches:               make(map[BatchID]inFlightBatch),
	}
}

// NumInFlightPerThread returns the current outstanding transaction count for
// each thread. The caller must not mutate the returned slice.
func (t *InFlightTracker) NumInFlightPerThread() []int {
	return t.numInFlightPerThread
}

// CostInFlightPerThread returns the current outstanding compute-cost sum for
// each thread. The caller must not mutate the returned slice.
func (t *InFlightTracker) CostInFlightPerThread() []uint64 {
	return t.costInFlightPerThread
}

// TrackBatch registers a new in-flight batch of numTransactions on thread,
// with the given aggregate cost, and returns the id assigned to it.
func (t *InFlightTracker) TrackBatch(numTransactions int, totalCost uint64, thread ThreadID) BatchID {
	id := t.idGen.nextID()
	t.numInFlightPerThread[thread] += numTransactions
	t.costInFlightPerThread[thread] += totalCost
	t.batches[id] = inFlightBatch{
		thread:          thread,
		numTransactions: numTransactions,
		totalCost:       totalCost,
	}
	return id
}

// CompleteBatch marks the batch as finished, decrementing the in-flight
// counters for the thread it was tracked on, and returns that thread. It
// panics if the batch id is unknown — a worker reporting completion of a
// batch it was never handed indicates a protocol bug.
func (t *InFlightTracker) CompleteBatch(id BatchID) ThreadID {
	batch, ok := t.batches[id]
	if !ok {
		panic(fmt.Sprintf("complete batch: unknown batch id %d", id))
	}
	delete(t.batches, id)
	t.numInFlightPerThread[batch.thread] -= batch.numTransactions
	t.costInFlightPerThread[batch.thread] -= batch.totalCost
	return batch.thread
}
