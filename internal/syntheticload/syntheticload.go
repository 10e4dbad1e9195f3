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

// Package syntheticload generates and decodes a toy wire format for driving
// the scheduling core without a real ledger or network stack, shared by
// cmd/txsched and cmd/txschedbench.
package syntheticload

import (
	"context"
	"encoding/binary"
	"errors"
	"math/rand"
	"time"

	"github.com/chainbase/txsched/core/account"
	"github.com/chainbase/txsched/core/receiver"
)

var ErrShortPacket = errors.New("syntheticload: packet too short to decode")

// Message is the decoded form of a synthetic packet: a fixed set of
// writable/readable account locks plus a declared fee, satisfying both
// account.Message and internal/bankmock.FeePayer.
type Message struct {
	Writable  []account.Key
	Readable  []account.Key
	FeeAmount uint64
}

func (m Message) WritableAccounts() []account.Key { return m.Writable }
func (m Message) ReadableAccounts() []account.Key { return m.Readable }
func (m Message) Fee() uint64                     { return m.FeeAmount }

// Deserializer decodes the wire format Encode produces.
type Deserializer struct{}

func (Deserializer) Deserialize(packet receiver.Packet) (account.Message, error) {
	data := packet.Data
	if len(data) < 9 {
		return nil, ErrShortPacket
	}
	fee := binary.LittleEndian.Uint64(data[:8])
	data = data[8:]

	writable, data, err := readKeys(data)
	if err != nil {
		return nil, err
	}
	readable, _, err := readKeys(data)
	if err != nil {
		return nil, err
	}
	return Message{Writable: writable, Readable: readable, FeeAmount: fee}, nil
}

func readKeys(data []byte) ([]account.Key, []byte, error) {
	if len(data) < 1 {
		return nil, nil, ErrShortPacket
	}
	count := int(data[0])
	data = data[1:]
	if len(data) < count*32 {
		return nil, nil, ErrShortPacket
	}
	keys := make([]account.Key, count)
	for i := range keys {
		copy(keys[i][:], data[i*32:(i+1)*32])
	}
	return keys, data[count*32:], nil
}

// Encode serializes writable/readable locks and a fee into a synthetic
// packet's wire bytes.
func Encode(writable, readable []account.Key, fee uint64) []byte {
	buf := make([]byte, 0, 8+1+len(writable)*32+1+len(readable)*32)
	var feeBytes [8]byte
	binary.LittleEndian.PutUint64(feeBytes[:], fee)
	buf = append(buf, feeBytes[:]...)
	buf = append(buf, byte(len(writable)))
	for _, k := range writable {
		buf = append(buf, k[:]...)
	}
	buf = append(buf, byte(len(readable)))
	for _, k := range readable {
		buf = append(buf, k[:]...)
	}
	return buf
}

// Config tunes a Generator's synthetic workload shape.
type Config struct {
	// Rate is the target packets per second.
	Rate int
	// NumAccounts sizes the account pool transactions draw from.
	NumAccounts int
	// NumWriteLocks and NumReadLocks are the lock counts per transaction.
	NumWriteLocks int
	NumReadLocks  int
	// HighConflictAccounts, if > 0, is the size of a small hot sub-pool that
	// every transaction's first write lock is drawn from instead of the full
	// pool, to synthesize a high-conflict workload.
	HighConflictAccounts int
}

// DefaultConfig mirrors the bench harness's own stock workload shape.
func DefaultConfig() Config {
	return Config{
		Rate:          200_000,
		NumAccounts:   100_000,
		NumWriteLocks: 2,
		NumReadLocks:  4,
	}
}

// Generator produces an endless stream of synthetic packets onto a
// receiver.PacketChannel until its context is cancelled.
type Generator struct {
	cfg  Config
	pool []account.Key
	rng  *rand.Rand
}

// NewGenerator builds a Generator with a deterministic account pool seeded
// from seed, so repeated runs with the same seed produce the same workload.
func NewGenerator(cfg Config, seed int64) *Generator {
	pool := make([]account.Key, cfg.NumAccounts)
	for i := range pool {
		binary.LittleEndian.PutUint64(pool[i][:8], uint64(i))
	}
	return &Generator{cfg: cfg, pool: pool, rng: rand.New(rand.NewSource(seed))}
}

// Run feeds packets into channel at the configured rate until ctx is done.
func (g *Generator) Run(ctx context.Context, channel *receiver.PacketChannel) {
	rate := g.cfg.Rate
	if rate <= 0 {
		rate = 1
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	hotPool := g.pool
	if g.cfg.HighConflictAccounts > 0 && g.cfg.HighConflictAccounts <= len(g.pool) {
		hotPool = g.pool[:g.cfg.HighConflictAccounts]
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			packet := receiver.Packet{Data: Encode(g.nextWritable(hotPool), g.nextReadable(), g.nextFee())}
			select {
			case channel.Packets <- packet:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (g *Generator) nextWritable(hotPool []account.Key) []account.Key {
	keys := make([]account.Key, g.cfg.NumWriteLocks)
	for i := range keys {
		pool := g.pool
		if i == 0 {
			pool = hotPool
		}
		keys[i] = pool[g.rng.Intn(len(pool))]
	}
	return keys
}

func (g *Generator) nextReadable() []account.Key {
	keys := make([]account.Key, g.cfg.NumReadLocks)
	for i := range keys {
		keys[i] = g.pool[g.rng.Intn(len(g.pool))]
	}
	return keys
}

func (g *Generator) nextFee() uint64 { return uint64(g.rng.Intn(1_000_000) + 1) }
