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

// Package account defines the account-key and declared-lock types shared by
// the scheduler, the receive-and-buffer pipeline and the account-lock table.
package account

import (
	"encoding/hex"
	"fmt"
)

// Key uniquely identifies an account touched by a transaction. Unlike an EVM
// storage slot, a Key names a whole account: the scheduler's locking model is
// whole-account, not per-slot.
type Key [32]byte

// String renders the key as a hex string, for logs.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Message is the minimal capability set the scheduler needs from a
// transaction-like value in order to schedule it: its declared read/write
// locks. Concrete transaction types (or zero-copy views over wire bytes)
// implement this directly rather than the scheduler depending on a concrete
// transaction representation.
type Message interface {
	// WritableAccounts returns the accounts this message will lock for
	// writing. The slice must not be mutated by the caller.
	WritableAccounts() []Key
	// ReadableAccounts returns the accounts this message will lock for
	// reading. The slice must not be mutated by the caller.
	ReadableAccounts() []Key
}

// Locks is a simple concrete Message, useful for tests and for building
// synthetic workloads.
type Locks struct {
	Writable []Key
	Readable []Key
}

func (l Locks) WritableAccounts() []Key { return l.Writable }
func (l Locks) ReadableAccounts() []Key { return l.Readable }

// Validate returns an error if the same key appears as both writable and
// readable, or more than once in the same set — a malformed transaction
// cannot declare overlapping locks.
func (l Locks) Validate() error {
	seen := make(map[Key]bool, len(l.Writable)+len(l.Readable))
	for _, k := range l.Writable {
		if seen[k] {
			return fmt.Errorf("account %s locked more than once", k)
		}
		seen[k] = true
	}
	for _, k := range l.Readable {
		if seen[k] {
			return fmt.Errorf("account %s locked for both read and write", k)
		}
		seen[k] = true
	}
	return nil
}
