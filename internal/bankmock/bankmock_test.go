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

import (
	"errors"
	"testing"

	"github.com/chainbase/txsched/core/account"
	"github.com/chainbase/txsched/core/receiver"
)

func testMessage(b byte) account.Locks {
	var k account.Key
	k[0] = b
	return account.Locks{Writable: []account.Key{k}}
}

func TestBankCalculateCostAndReward(t *testing.T) {
	bank := New(64, 3)
	msg := testMessage(1)
	cost := bank.CalculateCost(msg)
	if cost != 11 {
		t.Fatalf("CalculateCost = %d, want 11", cost)
	}
	if reward := bank.CalculateReward(msg, cost); reward != 33 {
		t.Fatalf("CalculateReward = %d, want 33", reward)
	}
}

func TestBankCheckTransactionRejectsStaleAndProcessed(t *testing.T) {
	bank := New(64, 1)
	msg := testMessage(1)

	if err := bank.CheckTransaction(msg, bank.LastSlotInEpoch()); err != nil {
		t.Fatalf("CheckTransaction fresh message: %v", err)
	}

	bank.AdvanceSlot(5)
	if err := bank.CheckTransaction(msg, 2); !errors.Is(err, errStaleBlockhash) {
		t.Fatalf("CheckTransaction stale = %v, want errStaleBlockhash", err)
	}

	bank.MarkProcessed(msg)
	if err := bank.CheckTransaction(msg, bank.LastSlotInEpoch()); !errors.Is(err, errAlreadyProcessed) {
		t.Fatalf("CheckTransaction processed = %v, want errAlreadyProcessed", err)
	}
}

func TestBankCheckTransactionRejectsFlaggedAccount(t *testing.T) {
	bank := New(64, 1)
	var key account.Key
	key[0] = 9
	bank.RejectAccount(key)

	msg := account.Locks{Writable: []account.Key{key}}
	if err := bank.CheckTransaction(msg, bank.LastSlotInEpoch()); !errors.Is(err, errAccountRejected) {
		t.Fatalf("CheckTransaction rejected account = %v, want errAccountRejected", err)
	}
}

func TestBankCurrentSlotTracksAdvanceSlot(t *testing.T) {
	bank := New(64, 1)
	if slot := bank.CurrentSlot(); slot != 0 {
		t.Fatalf("CurrentSlot = %d, want 0", slot)
	}
	bank.AdvanceSlot(7)
	if slot := bank.CurrentSlot(); slot != 7 {
		t.Fatalf("CurrentSlot = %d, want 7", slot)
	}
}

func TestBankResanitizeSucceedsAndRefreshes(t *testing.T) {
	bank := New(64, 1)
	msg := testMessage(1)

	refreshed, err := bank.Resanitize(msg)
	if err != nil {
		t.Fatalf("Resanitize: %v", err)
	}
	if refreshed != bank.LastSlotInEpoch() {
		t.Fatalf("Resanitize refreshed slot = %d, want %d", refreshed, bank.LastSlotInEpoch())
	}
}

func TestBankResanitizeFailsOnProcessedOrRejected(t *testing.T) {
	bank := New(64, 1)
	processedMsg := testMessage(1)
	bank.MarkProcessed(processedMsg)
	if _, err := bank.Resanitize(processedMsg); !errors.Is(err, errAlreadyProcessed) {
		t.Fatalf("Resanitize processed = %v, want errAlreadyProcessed", err)
	}

	var rejectedKey account.Key
	rejectedKey[0] = 9
	bank.RejectAccount(rejectedKey)
	rejectedMsg := account.Locks{Writable: []account.Key{rejectedKey}}
	if _, err := bank.Resanitize(rejectedMsg); !errors.Is(err, errAccountRejected) {
		t.Fatalf("Resanitize rejected account = %v, want errAccountRejected", err)
	}
}

func TestLeaderScheduleCyclesPattern(t *testing.T) {
	bank := New(64, 1)
	oracle := NewLeaderSchedule(bank, []receiver.DecisionKind{
		receiver.DecisionConsume,
		receiver.DecisionForward,
		receiver.DecisionHold,
	})

	kinds := []receiver.DecisionKind{
		oracle.Next().Kind,
		oracle.Next().Kind,
		oracle.Next().Kind,
		oracle.Next().Kind,
	}
	want := []receiver.DecisionKind{
		receiver.DecisionConsume,
		receiver.DecisionForward,
		receiver.DecisionHold,
		receiver.DecisionConsume,
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLeaderScheduleConsumeCarriesBank(t *testing.T) {
	bank := New(64, 1)
	oracle := NewLeaderSchedule(bank, []receiver.DecisionKind{receiver.DecisionConsume})
	decision := oracle.Next()
	if decision.Bank != bank {
		t.Fatalf("Decision.Bank = %v, want %v", decision.Bank, bank)
	}
}
