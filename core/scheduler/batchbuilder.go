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

import "github.com/chainbase/txsched/core/account"

// batchBuilder accumulates, per worker thread, the transactions scheduled
// so far in the current pass but not yet shipped as a ConsumeWork.
type batchBuilder struct {
	targetSize  int
	ids         [][]TransactionID
	messages    [][]account.Message
	maxAgeSlots [][]uint64
	totalCost   []uint64
	locks       []*ReadWriteAccountSet
}

func newBatchBuilder(numThreads, targetSize int) *batchBuilder {
	b := &batchBuilder{
		targetSize:  targetSize,
		ids:         make([][]TransactionID, numThreads),
		messages:    make([][]account.Message, numThreads),
		maxAgeSlots: make([][]uint64, numThreads),
		totalCost:   make([]uint64, numThreads),
		locks:       make([]*ReadWriteAccountSet, numThreads),
	}
	for i := 0; i < numThreads; i++ {
		b.ids[i] = make([]TransactionID, 0, targetSize)
		b.messages[i] = make([]account.Message, 0, targetSize)
		b.maxAgeSlots[i] = make([]uint64, 0, targetSize)
		b.locks[i] = NewReadWriteAccountSet()
	}
	return b
}

func (b *batchBuilder) len(thread ThreadID) int { return len(b.ids[thread]) }

func (b *batchBuilder) push(thread ThreadID, id TransactionID, ttl TransactionTTL) {
	b.ids[thread] = append(b.ids[thread], id)
	b.messages[thread] = append(b.messages[thread], ttl.Message)
	b.maxAgeSlots[thread] = append(b.maxAgeSlots[thread], ttl.MaxAgeSlot)
}

// take detaches the accumulated batch for thread, resetting its slot for
// reuse, and returns the detached pieces plus the batch's total cost.
func (b *batchBuilder) take(thread ThreadID) ([]TransactionID, []account.Message, []uint64, uint64) {
	ids := b.ids[thread]
	messages := b.messages[thread]
	maxAgeSlots := b.maxAgeSlots[thread]
	totalCost := b.totalCost[thread]

	b.ids[thread] = make([]TransactionID, 0, b.targetSize)
	b.messages[thread] = make([]account.Message, 0, b.targetSize)
	b.maxAgeSlots[thread] = make([]uint64, 0, b.targetSize)
	b.totalCost[thread] = 0
	b.locks[thread].Clear()

	return ids, messages, maxAgeSlots, totalCost
}
