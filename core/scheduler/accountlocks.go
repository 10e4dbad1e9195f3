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

	"github.com/chainbase/txsched/core/account"
)

type writeLock struct {
	thread ThreadID
	count  uint32
}

type readLock struct {
	threads ThreadSet
	counts  [MaxThreads]uint32
}

// AccountLocks is the thread-aware account lock table. It tracks which
// worker thread currently "owns" each account for reading or writing,
// allowing additional transactions that touch an in-flight account to be
// queued onto the *same* worker thread (safe, because worker execution is
// serial per thread) up to a bounded depth.
//
// All mutation paths run on the scheduler's single goroutine; no internal
// locking is needed.
type AccountLocks struct {
	numThreads           int
	sequentialQueueLimit uint32

	writeLocks map[account.Key]writeLock
	readLocks  map[account.Key]*readLock
}

// NewAccountLocks constructs an AccountLocks table for numThreads worker
// threads, each allowed to sequentially queue up to sequentialQueueLimit
// locks on the same account. It panics on an invalid configuration — these
// are constructor-time programmer errors, not runtime conditions.
func NewAccountLocks(numThreads int, sequentialQueueLimit uint32) *AccountLocks {
	if numThreads <= 0 {
		panic("num threads must be > 0")
	}
	if numThreads > MaxThreads {
		panic(fmt.Sprintf("num threads must be <= %d", MaxThreads))
	}
	if sequentialQueueLimit == 0 {
		panic("sequential queue limit must be > 0")
	}
	return &AccountLocks{
		numThreads:           numThreads,
		sequentialQueueLimit: sequentialQueueLimit,
		writeLocks:           make(map[account.Key]writeLock),
		readLocks:            make(map[account.Key]*readLock),
	}
}

// NumThreads returns the number of worker threads this table was configured
// with.
func (l *AccountLocks) NumThreads() int { return l.numThreads }

// ThreadSelector chooses a single thread from a non-empty candidate set.
type ThreadSelector func(candidates ThreadSet) ThreadID

// TryLock computes the set of threads schedulable for the given write/read
// account keys intersected with schedulableThreads; if the result is
// non-empty, it calls selectFn to pick one, locks the accounts for the
// chosen thread, and returns it. If the result is empty, it returns
// (0, false) without taking any locks.
func (l *AccountLocks) TryLock(writeKeys, readKeys []account.Key, schedulableThreads ThreadSet, selectFn ThreadSelector) (ThreadID, bool) {
	candidates := l.accountsSchedulableThreads(writeKeys, readKeys).And(schedulableThreads)
	if candidates.IsEmpty() {
		return 0, false
	}
	thread := selectFn(candidates)
	l.lockAccounts(writeKeys, readKeys, thread)
	return thread, true
}

// accountsSchedulableThreads intersects the per-account schedulability masks
// of every declared write and read key.
func (l *AccountLocks) accountsSchedulableThreads(writeKeys, readKeys []account.Key) ThreadSet {
	schedulable := AnyThreads(l.numThreads)
	for _, k := range writeKeys {
		schedulable = schedulable.And(l.writeSchedulableThreads(k))
		if schedulable.IsEmpty() {
			return schedulable
		}
	}
	for _, k := range readKeys {
		schedulable = schedulable.And(l.readSchedulableThreads(k))
		if schedulable.IsEmpty() {
			return schedulable
		}
	}
	return schedulable
}

// readSchedulableThreads returns the threads on which a read lock on
// account k could be taken: unlocked -> all threads; write-locked -> only
// that thread (if under the limit); read-locked -> any thread under the
// limit.
func (l *AccountLocks) readSchedulableThreads(k account.Key) ThreadSet {
	return l.schedulableThreads(k, func(rl *readLock) ThreadSet {
		schedulable := AnyThreads(l.numThreads)
		for _, t := range rl.threads.Members() {
			if rl.counts[t] == l.sequentialQueueLimit {
				schedulable = schedulable.Remove(t)
			}
		}
		return schedulable
	})
}

// writeSchedulableThreads returns the threads on which a write lock on
// account k could be taken: unlocked -> all threads; read-locked on a
// single thread -> only that thread (if under the limit); read-locked on
// multiple threads -> none; write-locked -> only that thread (if under the
// limit).
func (l *AccountLocks) writeSchedulableThreads(k account.Key) ThreadSet {
	return l.schedulableThreads(k, func(rl *readLock) ThreadSet {
		t, ok := rl.threads.OnlyOneContained()
		if !ok || rl.counts[t] >= l.sequentialQueueLimit {
			return NoThreads()
		}
		return OnlyThread(t)
	})
}

// schedulableThreads handles the shared write/read-lock/no-lock cases; the
// only difference between read- and write-schedulability is how a
// read-only outstanding lock is handled, supplied via readOnlyHandler.
func (l *AccountLocks) schedulableThreads(k account.Key, readOnlyHandler func(*readLock) ThreadSet) ThreadSet {
	wl, hasWrite := l.writeLocks[k]
	rl, hasRead := l.readLocks[k]

	switch {
	case !hasWrite && !hasRead:
		return AnyThreads(l.numThreads)
	case !hasWrite && hasRead:
		return readOnlyHandler(rl)
	case hasWrite && !hasRead:
		if wl.count == l.sequentialQueueLimit {
			return NoThreads()
		}
		return OnlyThread(wl.thread)
	default: // both
		if owner, ok := rl.threads.OnlyOneContained(); !ok || owner != wl.thread {
			panic(fmt.Sprintf("account %s: read lock set must equal the write owner", k))
		}
		if wl.count+rl.counts[wl.thread] == l.sequentialQueueLimit {
			return NoThreads()
		}
		return OnlyThread(wl.thread)
	}
}

// lockAccounts adds locks for all writable and readable accounts on thread.
// It panics (programmer error) if thread is out of range.
func (l *AccountLocks) lockAccounts(writeKeys, readKeys []account.Key, thread ThreadID) {
	if int(thread) >= l.numThreads {
		panic("thread_id must be < num_threads")
	}
	for _, k := range writeKeys {
		l.writeLockAccount(k, thread)
	}
	for _, k := range readKeys {
		l.readLockAccount(k, thread)
	}
}

func (l *AccountLocks) writeLockAccount(k account.Key, thread ThreadID) {
	wl, ok := l.writeLocks[k]
	if ok {
		if wl.thread != thread {
			panic(fmt.Sprintf("account %s: outstanding write lock must be on same thread", k))
		}
		wl.count++
		if wl.count > l.sequentialQueueLimit {
			panic(fmt.Sprintf("account %s: sequential queue limit must not be exceeded", k))
		}
		l.writeLocks[k] = wl
	} else {
		l.writeLocks[k] = writeLock{thread: thread, count: 1}
	}

	if rl, ok := l.readLocks[k]; ok {
		if owner, unique := rl.threads.OnlyOneContained(); !unique || owner != thread {
			panic(fmt.Sprintf("account %s: outstanding read lock must be on same thread", k))
		}
	}
}

func (l *AccountLocks) writeUnlockAccount(k account.Key, thread ThreadID) {
	wl, ok := l.writeLocks[k]
	if !ok {
		panic(fmt.Sprintf("write lock must exist for account: %s", k))
	}
	if wl.thread != thread {
		panic(fmt.Sprintf("account %s: outstanding write lock must be on same thread", k))
	}
	wl.count--
	if wl.count == 0 {
		delete(l.writeLocks, k)
	} else {
		l.writeLocks[k] = wl
	}
}

func (l *AccountLocks) readLockAccount(k account.Key, thread ThreadID) {
	rl, ok := l.readLocks[k]
	if !ok {
		rl = &readLock{}
		l.readLocks[k] = rl
	}
	rl.threads = rl.threads.Insert(thread)
	rl.counts[thread]++

	if wl, ok := l.writeLocks[k]; ok && wl.thread != thread {
		panic(fmt.Sprintf("account %s: outstanding write lock must be on same thread", k))
	}
}

func (l *AccountLocks) readUnlockAccount(k account.Key, thread ThreadID) {
	rl, ok := l.readLocks[k]
	if !ok || !rl.threads.Contains(thread) {
		panic(fmt.Sprintf("read lock must exist for account: %s", k))
	}
	rl.counts[thread]--
	if rl.counts[thread] == 0 {
		rl.threads = rl.threads.Remove(thread)
		if rl.threads.IsEmpty() {
			delete(l.readLocks, k)
		}
	}
}

// Unlock decrements the lock counts taken by a prior successful TryLock for
// the given thread, removing entries once their count reaches zero. It
// panics if a key is not locked, or is locked on a different thread — both
// indicate a caller bug, not a recoverable runtime condition.
func (l *AccountLocks) Unlock(writeKeys, readKeys []account.Key, thread ThreadID) {
	for _, k := range writeKeys {
		l.writeUnlockAccount(k, thread)
	}
	for _, k := range readKeys {
		l.readUnlockAccount(k, thread)
	}
}
