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

// ConsumeWork is sent from the scheduler to a worker thread: a batch of
// transactions to execute, record and commit, in order.
type ConsumeWork struct {
	BatchID        BatchID
	TransactionIDs []TransactionID
	Transactions   []account.Message
	MaxAgeSlots    []uint64
}

// FinishedConsumeWork is sent from a worker back to the scheduler once a
// ConsumeWork batch has been processed. RetryableIndexes names the indexes
// within Work that should be retried (e.g. a transient lock conflict with a
// concurrently-committed block); everything else is considered terminal,
// whether it committed or failed permanently.
type FinishedConsumeWork struct {
	Work             ConsumeWork
	RetryableIndexes []int
}

// ForwardWork is sent from the scheduler to a worker thread: transactions
// to be forwarded, as wire packets, to the next leader(s) instead of being
// executed locally.
type ForwardWork struct {
	TransactionIDs []TransactionID
	Packets        [][]byte
}

// FinishedForwardWork is sent from a worker back to the scheduler once a
// ForwardWork batch has been sent on.
type FinishedForwardWork struct {
	Work       ForwardWork
	Successful bool
}
