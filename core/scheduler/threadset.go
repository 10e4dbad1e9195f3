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
	"fmt"
	"math/bits"
)

// MaxThreads is the largest number of worker threads a ThreadSet can address:
// one bit per thread in a 64-bit mask.
const MaxThreads = 64

// ThreadID identifies a worker thread, in [0, numThreads).
type ThreadID int

// ThreadSet is a compact bit-set over {0, ..., numThreads-1}, used to track
// which worker threads a transaction may be scheduled onto. All operations
// are O(1).
type ThreadSet uint64

// NoThreads is the empty ThreadSet.
func NoThreads() ThreadSet { return 0 }

// AnyThreads returns a ThreadSet with the first n bits set.
func AnyThreads(n int) ThreadSet {
	if n <= 0 {
		return 0
	}
	if n >= MaxThreads {
		return ^ThreadSet(0)
	}
	return ThreadSet(1<<uint(n)) - 1
}

// OnlyThread returns a ThreadSet containing exactly the given thread.
func OnlyThread(t ThreadID) ThreadSet {
	return threadFlag(t)
}

func threadFlag(t ThreadID) ThreadSet {
	return ThreadSet(1) << uint(t)
}

// Count returns the number of threads in the set.
func (s ThreadSet) Count() int {
	return bits.OnesCount64(uint64(s))
}

// IsEmpty reports whether the set contains no threads.
func (s ThreadSet) IsEmpty() bool {
	return s == 0
}

// Contains reports whether the set contains thread t.
func (s ThreadSet) Contains(t ThreadID) bool {
	return s&threadFlag(t) != 0
}

// Insert adds thread t to the set, returning the updated set.
func (s ThreadSet) Insert(t ThreadID) ThreadSet {
	return s | threadFlag(t)
}

// Remove removes thread t from the set, returning the updated set.
func (s ThreadSet) Remove(t ThreadID) ThreadSet {
	return s &^ threadFlag(t)
}

// OnlyOneContained returns the unique member of the set and true, or
// (0, false) if the set does not contain exactly one thread.
func (s ThreadSet) OnlyOneContained() (ThreadID, bool) {
	if s.Count() != 1 {
		return 0, false
	}
	return ThreadID(bits.TrailingZeros64(uint64(s))), true
}

// And returns the intersection of s and o.
func (s ThreadSet) And(o ThreadSet) ThreadSet {
	return s & o
}

// Sub returns the set difference s - o.
func (s ThreadSet) Sub(o ThreadSet) ThreadSet {
	return s &^ o
}

// Members returns the thread ids contained in the set, in ascending order.
func (s ThreadSet) Members() []ThreadID {
	members := make([]ThreadID, 0, s.Count())
	for remaining := s; remaining != 0; {
		t := ThreadID(bits.TrailingZeros64(uint64(remaining)))
		members = append(members, t)
		remaining = remaining.Remove(t)
	}
	return members
}

// String renders the set as a fixed-width binary mask, for logs.
func (s ThreadSet) String() string {
	return fmt.Sprintf("ThreadSet(%0*b)", MaxThreads, uint64(s))
}
