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

import (
	"errors"
	"fmt"
)

// Sentinel kinds, matched via errors.Is against a *SchedulerError.
var (
	ErrDisconnectedSendChannel    = errors.New("sending channel disconnected")
	ErrDisconnectedReceiveChannel = errors.New("receiving channel disconnected")
)

// SchedulerError reports a named failure kind together with the channel or
// component it occurred in, so callers can both log a precise message and
// errors.Is-match against the kind.
type SchedulerError struct {
	Kind error
	What string
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.What)
}

func (e *SchedulerError) Unwrap() error { return e.Kind }

// disconnectedSendChannel builds a SchedulerError for a send-side channel
// that has no more receivers.
func disconnectedSendChannel(what string) error {
	return &SchedulerError{Kind: ErrDisconnectedSendChannel, What: what}
}

// disconnectedReceiveChannel builds a SchedulerError for a receive-side
// channel whose senders have all gone away.
func disconnectedReceiveChannel(what string) error {
	return &SchedulerError{Kind: ErrDisconnectedReceiveChannel, What: what}
}
