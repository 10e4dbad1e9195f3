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

	"golang.org/x/sync/errgroup"

	"github.com/chainbase/txsched/core/scheduler"
)

// Pool supervises one Worker per thread's ConsumeChannel and fans their
// FinishedConsumeWork reports into a single shared channel.
type Pool struct {
	workers  []*Worker
	Finished chan scheduler.FinishedConsumeWork
}

// NewPool constructs one Worker per consume channel, all sharing the same
// Executor implementation and reporting onto a common, internally owned
// Finished channel.
func NewPool(channels []*scheduler.ConsumeChannel, executor Executor) *Pool {
	finished := make(chan scheduler.FinishedConsumeWork, len(channels)*4)
	workers := make([]*Worker, len(channels))
	for i, ch := range channels {
		workers[i] = New(i, ch, finished, executor)
	}
	return &Pool{workers: workers, Finished: finished}
}

// Run starts every worker and blocks until ctx is cancelled or one of them
// returns a non-nil, non-context error, in which case that error is returned
// and the rest are cancelled. A clean shutdown via ctx cancellation reports
// no error.
func (p *Pool) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		w := w
		group.Go(func() error {
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
	}
	err := group.Wait()
	close(p.Finished)
	return err
}
