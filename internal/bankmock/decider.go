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

package bankmock

import "github.com/chainbase/txsched/core/receiver"

// LeaderSchedule is a deterministic decision oracle: it cycles through a
// fixed repeating pattern of slots (our turn to lead / forward / hold) the
// way a real leader schedule would, without any of the stake-weighted
// selection machinery a production implementation needs.
type LeaderSchedule struct {
	bank    *Bank
	pattern []receiver.DecisionKind
	pos     int
}

// NewLeaderSchedule builds an oracle over pattern, replayed in a loop; every
// DecisionConsume entry in pattern resolves against bank.
func NewLeaderSchedule(bank *Bank, pattern []receiver.DecisionKind) *LeaderSchedule {
	if len(pattern) == 0 {
		pattern = []receiver.DecisionKind{receiver.DecisionConsume}
	}
	return &LeaderSchedule{bank: bank, pattern: pattern}
}

// Next returns the decision for the current position and advances to the
// next one.
func (s *LeaderSchedule) Next() receiver.Decision {
	kind := s.pattern[s.pos]
	s.pos = (s.pos + 1) % len(s.pattern)
	switch kind {
	case receiver.DecisionConsume:
		return receiver.Consume(s.bank)
	case receiver.DecisionForward:
		return receiver.Forward()
	case receiver.DecisionForwardAndHold:
		return receiver.ForwardAndHold()
	default:
		return receiver.Hold()
	}
}
