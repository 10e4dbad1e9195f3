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

// Package bankmock provides a deterministic, in-memory stand-in for the
// scheduler's upstream ledger-state collaborator (core/receiver.Bank) and
// decision oracle. Nothing here is meant for production use: a real binary
// wires a real ledger adapter in its place. This package exists so tests,
// cmd/txsched and cmd/txschedbench have something concrete to drive the
// scheduler against.
package bankmock

import (
	"sync"

	"github.com/chainbase/txsched/core/account"
	"github.com/chainbase/txsched/core/receiver"
)

// Bank is a deterministic fake implementing core/receiver.Bank: cost is a
// fixed formula over the message's writable and readable lock counts,
// reward is derived from the declared fee (or the cost) scaled by the fee
// multiplier, and
// "already processed" / "too old" rejection is driven by a small in-memory
// set and slot counter instead of a real blockhash queue.
type Bank struct {
	mu sync.Mutex

	lockLimit     int
	lastSlot      uint64
	currentSlot   uint64
	feeMultiplier uint64
	processed     map[account.Key]struct{}
	rejectAccount map[account.Key]struct{}
}

// New constructs a Bank with the given account-lock limit and fee
// multiplier (the scale applied to a transaction's declared fee to produce
// CalculateReward's result).
func New(lockLimit int, feeMultiplier uint64) *Bank {
	return &Bank{
		lockLimit:     lockLimit,
		lastSlot:      1_000,
		feeMultiplier: feeMultiplier,
		processed:     make(map[account.Key]struct{}),
		rejectAccount: make(map[account.Key]struct{}),
	}
}

// AdvanceSlot moves the simulated current slot forward by n, the way a real
// bank rotation would, so max-age-slot checks in CheckTransaction can expire
// previously admitted transactions.
func (b *Bank) AdvanceSlot(n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentSlot += n
}

// MarkProcessed flags every account message declares as writable as
// already-processed, so CheckTransaction rejects any later message that
// reuses one of them — a crude stand-in for nonce/signature-status tracking.
func (b *Bank) MarkProcessed(message account.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range message.WritableAccounts() {
		b.processed[key] = struct{}{}
	}
}

// RejectAccount makes any future CheckTransaction call against a message
// touching key fail, simulating an account-in-use or feature-gate rejection.
func (b *Bank) RejectAccount(key account.Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejectAccount[key] = struct{}{}
}

func (b *Bank) LastSlotInEpoch() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSlot
}

func (b *Bank) TransactionAccountLockLimit() int { return b.lockLimit }

func (b *Bank) CheckTransaction(message account.Message, maxAgeSlot uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.currentSlot > maxAgeSlot {
		return errStaleBlockhash
	}
	for _, key := range append(append([]account.Key{}, message.WritableAccounts()...), message.ReadableAccounts()...) {
		if _, ok := b.processed[key]; ok {
			return errAlreadyProcessed
		}
		if _, ok := b.rejectAccount[key]; ok {
			return errAccountRejected
		}
	}
	return nil
}

// CurrentSlot returns the simulated current slot, advanced by AdvanceSlot.
func (b *Bank) CurrentSlot() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentSlot
}

// Resanitize re-checks message against the processed/rejected account sets
// the way CheckTransaction would, minus the staleness check itself (the
// caller already knows max_age_slot expired and is asking whether the
// transaction is otherwise still admissible). On success it returns a
// refreshed max-age slot pinned to the current end-of-epoch slot.
func (b *Bank) Resanitize(message account.Message) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range append(append([]account.Key{}, message.WritableAccounts()...), message.ReadableAccounts()...) {
		if _, ok := b.processed[key]; ok {
			return 0, errAlreadyProcessed
		}
		if _, ok := b.rejectAccount[key]; ok {
			return 0, errAccountRejected
		}
	}
	return b.lastSlot, nil
}

func (b *Bank) CalculateCost(message account.Message) uint64 {
	cost := uint64(len(message.WritableAccounts()))*10 + uint64(len(message.ReadableAccounts()))*2 + 1
	return cost
}

// FeePayer is an optional capability a Message implementation may offer to
// carry its own declared fee budget; messages that don't implement it are
// charged a flat cost-scaled reward instead.
type FeePayer interface {
	Fee() uint64
}

func (b *Bank) CalculateReward(message account.Message, cost uint64) uint64 {
	if payer, ok := message.(FeePayer); ok {
		fee := payer.Fee()
		if fee > cost {
			return (fee - cost) * b.feeMultiplier
		}
		return 0
	}
	return cost * b.feeMultiplier
}

var _ receiver.Bank = (*Bank)(nil)
