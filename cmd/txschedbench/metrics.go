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

package main

import (
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
)

// benchMetrics tallies one run's throughput counters. All fields are
// updated with atomic operations since the generator, scheduler-draining
// and execution goroutines all touch it concurrently.
type benchMetrics struct {
	numTransactionsSent      atomic.Uint64
	numTransactionsScheduled atomic.Uint64
	numTransactionsCompleted atomic.Uint64
	priorityCollected        atomic.Uint64
}

func (m *benchMetrics) report(logger log.Logger, runID string) {
	sent := m.numTransactionsSent.Load()
	scheduled := m.numTransactionsScheduled.Load()
	completed := m.numTransactionsCompleted.Load()
	pending := sent - scheduled
	logger.Info("bench progress",
		"run", runID,
		"sent", sent,
		"pending", pending,
		"scheduled", scheduled,
		"completed", completed,
		"priority_collected", m.priorityCollected.Load(),
	)
}
