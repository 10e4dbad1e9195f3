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

package syntheticload

import (
	"context"
	"testing"
	"time"

	"github.com/chainbase/txsched/core/account"
	"github.com/chainbase/txsched/core/receiver"
)

func TestEncodeDeserializeRoundTrip(t *testing.T) {
	var w1, w2, r1 account.Key
	w1[0], w2[0], r1[0] = 1, 2, 3
	data := Encode([]account.Key{w1, w2}, []account.Key{r1}, 42)

	msg, err := (Deserializer{}).Deserialize(receiver.Packet{Data: data})
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	writable := msg.WritableAccounts()
	if len(writable) != 2 || writable[0] != w1 || writable[1] != w2 {
		t.Fatalf("WritableAccounts = %v, want [%v %v]", writable, w1, w2)
	}
	readable := msg.ReadableAccounts()
	if len(readable) != 1 || readable[0] != r1 {
		t.Fatalf("ReadableAccounts = %v, want [%v]", readable, r1)
	}
	if fee := msg.(Message).Fee(); fee != 42 {
		t.Fatalf("Fee() = %d, want 42", fee)
	}
}

func TestDeserializeRejectsShortPacket(t *testing.T) {
	if _, err := (Deserializer{}).Deserialize(receiver.Packet{Data: []byte{1, 2}}); err != ErrShortPacket {
		t.Fatalf("Deserialize short packet err = %v, want ErrShortPacket", err)
	}
}

func TestGeneratorProducesWellFormedPackets(t *testing.T) {
	cfg := Config{Rate: 1000, NumAccounts: 16, NumWriteLocks: 2, NumReadLocks: 1}
	gen := NewGenerator(cfg, 1)
	channel := receiver.NewPacketChannel(8)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	gen.Run(ctx, channel)

	select {
	case packet := <-channel.Packets:
		msg, err := (Deserializer{}).Deserialize(packet)
		if err != nil {
			t.Fatalf("Deserialize generated packet: %v", err)
		}
		if len(msg.WritableAccounts()) != 2 {
			t.Fatalf("WritableAccounts len = %d, want 2", len(msg.WritableAccounts()))
		}
		if len(msg.ReadableAccounts()) != 1 {
			t.Fatalf("ReadableAccounts len = %d, want 1", len(msg.ReadableAccounts()))
		}
	default:
		t.Fatal("generator should have produced at least one packet")
	}
}

func TestGeneratorHighConflictPoolIsBounded(t *testing.T) {
	cfg := Config{Rate: 5000, NumAccounts: 1000, NumWriteLocks: 1, NumReadLocks: 0, HighConflictAccounts: 4}
	gen := NewGenerator(cfg, 2)
	channel := receiver.NewPacketChannel(64)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()
	gen.Run(ctx, channel)
	close(channel.Packets)

	seen := map[account.Key]bool{}
	for packet := range channel.Packets {
		msg, err := (Deserializer{}).Deserialize(packet)
		if err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		for _, k := range msg.WritableAccounts() {
			seen[k] = true
		}
	}
	if len(seen) == 0 {
		t.Fatal("expected at least one packet")
	}
	if len(seen) > cfg.HighConflictAccounts {
		t.Fatalf("saw %d distinct writable accounts, want <= %d", len(seen), cfg.HighConflictAccounts)
	}
}
