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

package receiver

// DecisionKind is the action a driver loop should take for the current
// leader-schedule position: actively consume buffered transactions, forward
// them to the next leader, forward while still holding them locally, or just
// hold without forwarding.
type DecisionKind uint8

const (
	DecisionConsume DecisionKind = iota
	DecisionForward
	DecisionForwardAndHold
	DecisionHold
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionConsume:
		return "consume"
	case DecisionForward:
		return "forward"
	case DecisionForwardAndHold:
		return "forward_and_hold"
	case DecisionHold:
		return "hold"
	default:
		return "unknown"
	}
}

// Decision is the external decision oracle's output for one iteration of the
// driver loop. Bank is only meaningful when Kind is DecisionConsume.
type Decision struct {
	Kind DecisionKind
	Bank Bank
}

func Consume(bank Bank) Decision { return Decision{Kind: DecisionConsume, Bank: bank} }
func Forward() Decision          { return Decision{Kind: DecisionForward} }
func ForwardAndHold() Decision   { return Decision{Kind: DecisionForwardAndHold} }
func Hold() Decision             { return Decision{Kind: DecisionHold} }
