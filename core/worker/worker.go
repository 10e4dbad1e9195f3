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

// Package worker implements the downstream collaborator end of the
// scheduler's handoff protocol: it consumes ConsumeWork batches from one
// worker thread's channel, executes each transaction through a pluggable
// Executor, and reports completion back to the scheduler.
//
// Execution itself — what it means to run a transaction against a bank — is
// out of scope here and left entirely to the Executor implementation; this
// package only owns the consume/report loop and its lifecycle.
package worker

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/chainbase/txsched/core/account"
	"github.com/chainbase/txsched/core/scheduler"
)

// Executor runs a single transaction and reports whether it should be
// retried (e.g. it lost a race against a concurrently committed block) as
// opposed to treated as terminal, whether it committed or failed outright.
type Executor interface {
	Execute(message account.Message) (retry bool, err error)
}

// Worker drains one thread's ConsumeWork channel until it is closed or its
// context is cancelled.
type Worker struct {
	id       int
	consume  *scheduler.ConsumeChannel
	finished chan<- scheduler.FinishedConsumeWork
	executor Executor
	log      log.Logger
}

// New constructs a Worker for thread id, reading batches from consume and
// reporting completions on finished.
func New(id int, consume *scheduler.ConsumeChannel, finished chan<- scheduler.FinishedConsumeWork, executor Executor) *Worker {
	return &Worker{
		id:       id,
		consume:  consume,
		finished: finished,
		executor: executor,
		log:      log.New("component", "worker", "id", id),
	}
}

// Run processes ConsumeWork batches until ctx is cancelled or consume.Work is
// closed, then closes consume.Closed so the scheduler observes the
// disconnect on its next send attempt. It returns ctx.Err() on cancellation,
// or nil on a clean channel close.
func (w *Worker) Run(ctx context.Context) error {
	defer w.consume.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case work, ok := <-w.consume.Work:
			if !ok {
				return nil
			}
			result := w.process(work)
			select {
			case w.finished <- result:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (w *Worker) process(work scheduler.ConsumeWork) scheduler.FinishedConsumeWork {
	var retryable []int
	for i, message := range work.Transactions {
		retry, err := w.executor.Execute(message)
		if err != nil {
			w.log.Debug("transaction execution failed", "batch", work.BatchID, "index", i, "err", err)
		}
		if retry {
			retryable = append(retryable, i)
		}
	}
	return scheduler.FinishedConsumeWork{Work: work, RetryableIndexes: retryable}
}
