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

package receiver

import "github.com/chainbase/txsched/core/account"

// Bank is the minimal view the receive-and-buffer stage needs of current
// ledger state: a stand-in for the single upstream collaborator this package
// depends on but does not implement. A production binary supplies a real
// adapter; internal/bankmock supplies a deterministic fake for tests, the
// CLI and the benchmark harness.
//
// This is a simplified single "working bank" reference rather than the
// original's fork-aware bank-forks registry: fork selection and bank
// rotation are out of scope for a scheduling core and are left to the
// caller, which swaps the bank a ReceiveAndBuffer holds via SetWorkingBank
// whenever its own view of the working bank changes.
type Bank interface {
	// LastSlotInEpoch bounds how long a transaction admitted against this
	// bank remains valid (its TransactionTTL.MaxAgeSlot).
	LastSlotInEpoch() uint64
	// TransactionAccountLockLimit is the maximum number of accounts a single
	// transaction may declare as locked.
	TransactionAccountLockLimit() int
	// CheckTransaction validates message against current ledger state: stale
	// blockhash, already-processed, account-in-use, and similar admission
	// checks. A non-nil error means the transaction should be dropped.
	CheckTransaction(message account.Message, maxAgeSlot uint64) error
	// CalculateCost returns the compute-unit cost message would consume.
	CalculateCost(message account.Message) uint64
	// CalculateReward returns the fee-derived reward for message, given its
	// already-computed cost.
	CalculateReward(message account.Message, cost uint64) uint64
	// CurrentSlot returns the bank's current slot. core/scheduler uses this
	// to detect a transaction whose max_age_slot has expired since
	// admission, without importing this package (see
	// core/scheduler.Resanitizer, the mirrored capability it declares
	// independently to avoid a receiver<->scheduler import cycle).
	CurrentSlot() uint64
	// Resanitize re-validates message against the current blockhash queue
	// for a transaction whose max_age_slot has already expired. A non-nil
	// error means re-sanitization failed and the transaction must be
	// dropped; otherwise the returned value is the refreshed max-age slot.
	Resanitize(message account.Message) (maxAgeSlot uint64, err error)
}
