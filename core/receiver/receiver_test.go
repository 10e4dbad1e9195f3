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
	"errors"
	"testing"
	"time"

	"github.com/chainbase/txsched/core/account"
	"github.com/chainbase/txsched/core/scheduler"
)

type fakeBank struct {
	lockLimit int
	lastSlot  uint64
	rejectKey account.Key
	hasReject bool
	cost      uint64
	reward    uint64
}

func (b *fakeBank) LastSlotInEpoch() uint64           { return b.lastSlot }
func (b *fakeBank) TransactionAccountLockLimit() int  { return b.lockLimit }
func (b *fakeBank) CalculateCost(account.Message) uint64 {
	if b.cost == 0 {
		return 1
	}
	return b.cost
}
func (b *fakeBank) CalculateReward(account.Message, uint64) uint64 {
	if b.reward == 0 {
		return 1000
	}
	return b.reward
}
func (b *fakeBank) CheckTransaction(message account.Message, _ uint64) error {
	if b.hasReject {
		for _, k := range message.WritableAccounts() {
			if k == b.rejectKey {
				return errors.New("account in use")
			}
		}
	}
	return nil
}
func (b *fakeBank) CurrentSlot() uint64 { return b.lastSlot }
func (b *fakeBank) Resanitize(message account.Message) (uint64, error) {
	if err := b.CheckTransaction(message, b.lastSlot); err != nil {
		return 0, err
	}
	return b.lastSlot, nil
}

// fakeDeserializer treats the first byte of the packet as a writable account
// key byte; a packet with no data fails to deserialize.
type fakeDeserializer struct{}

func (fakeDeserializer) Deserialize(p Packet) (account.Message, error) {
	if len(p.Data) == 0 {
		return nil, errors.New("empty packet")
	}
	var key account.Key
	key[0] = p.Data[0]
	return account.Locks{Writable: []account.Key{key}}, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxPacketReceiveTime = 5 * time.Millisecond
	cfg.MaxReceiveAndBufferTime = 5 * time.Millisecond
	return cfg
}

func TestReceiveAndBufferPacketsBuffersValidPackets(t *testing.T) {
	channel := NewPacketChannel(8)
	bank := &fakeBank{lockLimit: 10}
	r := New(channel, fakeDeserializer{}, bank, testConfig())
	container := scheduler.NewContainer(100)

	channel.Packets <- Packet{Data: []byte{1}}
	channel.Packets <- Packet{Data: []byte{2}}

	connected := r.ReceiveAndBufferPackets(Consume(bank), container)
	if !connected {
		t.Fatalf("ReceiveAndBufferPackets reported disconnected")
	}
	if r.Metrics.NumBuffered != 2 {
		t.Fatalf("NumBuffered = %d, want 2", r.Metrics.NumBuffered)
	}
	if container.IsEmpty() {
		t.Fatalf("container should hold the buffered transactions")
	}
}

func TestReceiveAndBufferPacketsDropsOnSanitizationFailure(t *testing.T) {
	channel := NewPacketChannel(8)
	bank := &fakeBank{lockLimit: 10}
	r := New(channel, fakeDeserializer{}, bank, testConfig())
	container := scheduler.NewContainer(100)

	channel.Packets <- Packet{Data: nil}

	r.ReceiveAndBufferPackets(Consume(bank), container)
	if r.Metrics.NumDroppedOnSanitization != 1 {
		t.Fatalf("NumDroppedOnSanitization = %d, want 1", r.Metrics.NumDroppedOnSanitization)
	}
	if !container.IsEmpty() {
		t.Fatalf("container should be empty")
	}
}

func TestReceiveAndBufferPacketsDropsOnLockLimit(t *testing.T) {
	channel := NewPacketChannel(8)
	bank := &fakeBank{lockLimit: 0}
	r := New(channel, fakeDeserializer{}, bank, testConfig())
	container := scheduler.NewContainer(100)

	channel.Packets <- Packet{Data: []byte{1}}

	r.ReceiveAndBufferPackets(Consume(bank), container)
	if r.Metrics.NumDroppedOnValidateLocks != 1 {
		t.Fatalf("NumDroppedOnValidateLocks = %d, want 1", r.Metrics.NumDroppedOnValidateLocks)
	}
}

func TestReceiveAndBufferPacketsDropsOnTransactionCheck(t *testing.T) {
	channel := NewPacketChannel(8)
	var key account.Key
	key[0] = 1
	bank := &fakeBank{lockLimit: 10, hasReject: true, rejectKey: key}
	r := New(channel, fakeDeserializer{}, bank, testConfig())
	container := scheduler.NewContainer(100)

	channel.Packets <- Packet{Data: []byte{1}}

	r.ReceiveAndBufferPackets(Consume(bank), container)
	if r.Metrics.NumDroppedOnTransactionChecks != 1 {
		t.Fatalf("NumDroppedOnTransactionChecks = %d, want 1", r.Metrics.NumDroppedOnTransactionChecks)
	}
}

func TestReceiveAndBufferPacketsDropsDuplicatePackets(t *testing.T) {
	channel := NewPacketChannel(8)
	bank := &fakeBank{lockLimit: 10}
	r := New(channel, fakeDeserializer{}, bank, testConfig())
	container := scheduler.NewContainer(100)

	channel.Packets <- Packet{Data: []byte{1}}
	r.ReceiveAndBufferPackets(Consume(bank), container)

	channel.Packets <- Packet{Data: []byte{1}}
	r.ReceiveAndBufferPackets(Consume(bank), container)

	if r.Metrics.NumDroppedOnDedup != 1 {
		t.Fatalf("NumDroppedOnDedup = %d, want 1", r.Metrics.NumDroppedOnDedup)
	}
	if r.Metrics.NumBuffered != 1 {
		t.Fatalf("NumBuffered = %d, want 1", r.Metrics.NumBuffered)
	}
}

func TestReceiveAndBufferPacketsDisconnected(t *testing.T) {
	channel := NewPacketChannel(8)
	bank := &fakeBank{lockLimit: 10}
	r := New(channel, fakeDeserializer{}, bank, testConfig())
	container := scheduler.NewContainer(100)

	channel.Close()

	if connected := r.ReceiveAndBufferPackets(Consume(bank), container); connected {
		t.Fatalf("ReceiveAndBufferPackets reported connected after Close")
	}
}
