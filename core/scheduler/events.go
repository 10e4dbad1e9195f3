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

import "github.com/ethereum/go-ethereum/event"

// SchedulingEvent is published on schedulingFeed once a Schedule (or
// ScheduleForward) pass completes, for observers such as metrics reporters
// or trace tooling that want a pass summary without the scheduler needing
// to know they exist.
type SchedulingEvent struct {
	NumScheduled int
	Forwarded    bool
}

// CompletionEvent is published on completionFeed once CompleteWork has
// applied a worker's FinishedConsumeWork report.
type CompletionEvent struct {
	Retried int
	Removed int
}

// SubscribeScheduling registers ch to receive every SchedulingEvent the
// scheduler publishes, the way go-ethereum's core.SubscribeChainEvent
// hands a caller a live feed of block events.
func (s *Scheduler) SubscribeScheduling(ch chan<- SchedulingEvent) event.Subscription {
	return s.schedulingFeed.Subscribe(ch)
}

// SubscribeCompletion registers ch to receive every CompletionEvent the
// scheduler publishes.
func (s *Scheduler) SubscribeCompletion(ch chan<- CompletionEvent) event.Subscription {
	return s.completionFeed.Subscribe(ch)
}
