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

// ConsumeChannel is the scheduler-to-worker handoff for one worker thread.
// A worker that is shutting down closes Closed so that a scheduler blocked
// on sending to Work observes the disconnect instead of hanging forever —
// the Go equivalent of a dropped receiver producing a synchronous send
// error.
type ConsumeChannel struct {
	Work   chan ConsumeWork
	Closed chan struct{}
}

// NewConsumeChannel returns a ConsumeChannel with the given work buffer
// size.
func NewConsumeChannel(buffer int) *ConsumeChannel {
	return &ConsumeChannel{
		Work:   make(chan ConsumeWork, buffer),
		Closed: make(chan struct{}),
	}
}

// Close marks the channel as disconnected. It is safe to call at most once.
func (c *ConsumeChannel) Close() { close(c.Closed) }

// ForwardChannel is the scheduler-to-worker handoff for the forward path.
// Unlike ConsumeChannel there is a single shared ForwardChannel per
// scheduler rather than one per thread: forwarded transactions are not
// assigned to threads by account-lock conflict, so there is no thread
// affinity to preserve.
type ForwardChannel struct {
	Work   chan ForwardWork
	Closed chan struct{}
}

// NewForwardChannel returns a ForwardChannel with the given work buffer
// size.
func NewForwardChannel(buffer int) *ForwardChannel {
	return &ForwardChannel{
		Work:   make(chan ForwardWork, buffer),
		Closed: make(chan struct{}),
	}
}

// Close marks the channel as disconnected. It is safe to call at most once.
func (c *ForwardChannel) Close() { close(c.Closed) }
