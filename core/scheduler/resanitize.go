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

// Resanitizer lets Schedule and ScheduleForward re-validate a transaction
// whose max-age slot has expired against the bank's current state. It is
// declared independently of core/receiver.Bank, which exposes the same two
// methods, because this package is upstream of core/receiver (receiver
// imports scheduler, not the reverse) and cannot import it back. A single
// concrete bank implementation (internal/bankmock.Bank in this repository)
// satisfies both interfaces.
type Resanitizer interface {
	// CurrentSlot returns the bank's current slot.
	CurrentSlot() uint64
	// Resanitize re-checks message's recent blockhash against the current
	// blockhash queue. A non-nil error means re-sanitization failed and the
	// transaction must be dropped; otherwise the returned value is the
	// refreshed max-age slot.
	Resanitize(message account.Message) (maxAgeSlot uint64, err error)
}

// isExpired reports whether ttl's max-age slot has passed according to r.
// A nil Resanitizer disables the check entirely, e.g. for callers (most
// existing tests) that never advance a slot and don't care about expiry.
func isExpired(r Resanitizer, ttl TransactionTTL) bool {
	return r != nil && ttl.MaxAgeSlot < r.CurrentSlot()
}
