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

import (
	"math"

	"github.com/chainbase/txsched/core/account"
)

// priorityMultiplier avoids rounding priority down to zero for transactions
// whose reward, in raw terms, is smaller than their cost: P = R*1e6/(C+1).
const priorityMultiplier = 1_000_000

// calculatePriorityAndCost computes a transaction's scheduling priority and
// compute-unit cost against bank. The +1 in the denominator only guards
// against a division by zero if the cost model ever returns zero; costs are
// always positive in practice.
func calculatePriorityAndCost(message account.Message, bank Bank) (priority, cost uint64) {
	cost = bank.CalculateCost(message)
	reward := bank.CalculateReward(message, cost)
	priority = saturatingMul(reward, priorityMultiplier) / saturatingAdd(cost, 1)
	return priority, cost
}

func saturatingMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	result := a * b
	if result/a != b {
		return math.MaxUint64
	}
	return result
}

func saturatingAdd(a, b uint64) uint64 {
	result := a + b
	if result < a {
		return math.MaxUint64
	}
	return result
}
