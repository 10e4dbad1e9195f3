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

package worker

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/chainbase/txsched/core/scheduler"
)

// Forwarder sends a batch of already-sanitized wire packets on to the
// current leader(s) instead of executing them locally. As with Executor,
// what "send on" means (a UDP/QUIC client, a relay RPC call, ...) is out of
// scope here and left entirely to the implementation.
type Forwarder interface {
	Forward(packets [][]byte) error
}

// ForwardWorker drains a scheduler.ForwardChannel until it is closed or its
// context is cancelled, the forward-path counterpart to Worker.
type ForwardWorker struct {
	consume   *scheduler.ForwardChannel
	finished  chan<- scheduler.FinishedForwardWork
	forwarder Forwarder
	log       log.Logger
}

// NewForwardWorker constructs a ForwardWorker reading batches from consume
// and reporting completions on finished.
func NewForwardWorker(consume *scheduler.ForwardChannel, finished chan<- scheduler.FinishedForwardWork, forwarder Forwarder) *ForwardWorker {
	return &ForwardWorker{
		consume:   consume,
		finished:  finished,
		forwarder: forwarder,
		log:       log.New("component", "forwarder"),
	}
}

// Run processes ForwardWork batches until ctx is cancelled or consume.Work is
// closed, then closes consume.Closed so the scheduler observes the
// disconnect on its next send attempt. It returns ctx.Err() on cancellation,
// or nil on a clean channel close.
func (w *ForwardWorker) Run(ctx context.Context) error {
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

func (w *ForwardWorker) process(work scheduler.ForwardWork) scheduler.FinishedForwardWork {
	err := w.forwarder.Forward(work.Packets)
	if err != nil {
		w.log.Debug("forward send failed", "count", len(work.Packets), "err", err)
	}
	return scheduler.FinishedForwardWork{Work: work, Successful: err == nil}
}
