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
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/chainbase/txsched/core/account"
)

// ReadWriteAccountSet is a scratch structure used during a single
// scheduling pass to track which accounts have already been claimed by a
// transaction earlier in the pass, for two distinct purposes:
//
//  1. Intra-batch conflict detection: accumulating the locks of the
//     transactions already placed into a thread's current batch, so a
//     newly-scheduled transaction that conflicts with the batch-in-progress
//     forces that batch to be sent immediately instead of growing further.
//  2. Priority-guard tracking: accumulating the locks of transactions the
//     scheduler already gave up on this pass (because no thread could take
//     them), so that a later, lower-priority transaction is not allowed to
//     take a lock a higher-priority-but-unschedulable transaction needs —
//     which would let it jump the queue.
type ReadWriteAccountSet struct {
	readSet  mapset.Set[account.Key]
	writeSet mapset.Set[account.Key]
}

// NewReadWriteAccountSet returns an empty set.
func NewReadWriteAccountSet() *ReadWriteAccountSet {
	return &ReadWriteAccountSet{
		readSet:  mapset.NewThreadUnsafeSet[account.Key](),
		writeSet: mapset.NewThreadUnsafeSet[account.Key](),
	}
}

// CheckLocks reports whether message's accounts can be locked without
// conflicting with anything already recorded in the set: a writable
// account must not already be read- or write-locked, and a readable
// account must not already be write-locked.
func (s *ReadWriteAccountSet) CheckLocks(message account.Message) bool {
	for _, k := range message.WritableAccounts() {
		if s.writeSet.Contains(k) || s.readSet.Contains(k) {
			return false
		}
	}
	for _, k := range message.ReadableAccounts() {
		if s.writeSet.Contains(k) {
			return false
		}
	}
	return true
}

// TakeLocks records message's accounts into the set and reports whether
// doing so was conflict-free (equivalent to CheckLocks called beforehand).
// Unlike CheckLocks, it always records the locks, even when conflicts are
// found, so that later conflicting accounts continue to be tracked.
func (s *ReadWriteAccountSet) TakeLocks(message account.Message) bool {
	ok := s.CheckLocks(message)
	for _, k := range message.WritableAccounts() {
		s.writeSet.Add(k)
	}
	for _, k := range message.ReadableAccounts() {
		s.readSet.Add(k)
	}
	return ok
}

// Clear empties the set for reuse.
func (s *ReadWriteAccountSet) Clear() {
	s.readSet.Clear()
	s.writeSet.Clear()
}
