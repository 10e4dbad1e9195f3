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

// Package receiver implements the receive-and-buffer stage: it pulls raw
// packets off an ingress channel, sanitizes and admission-checks them
// against the current bank, computes each transaction's scheduling
// priority and compute-unit cost, and inserts the survivors into a
// core/scheduler.Container.
package receiver

import (
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/chainbase/txsched/core/scheduler"
)

// Config bounds how long one receive-and-buffer pass may run and how
// packets are chunked and deduplicated.
type Config struct {
	// MaxPacketReceiveTime bounds the initial blocking wait for the first
	// packet of a pass, when there is nothing more useful to do (the
	// container is empty, or the driver loop isn't actively consuming).
	MaxPacketReceiveTime time.Duration
	// MaxReceiveAndBufferTime bounds how long, after the first packet (or
	// timeout), a pass keeps non-blockingly draining further packets before
	// returning control to the caller.
	MaxReceiveAndBufferTime time.Duration
	// ChunkSize is how many packets are sanitized and checked together
	// before results are committed into the container and metrics updated.
	ChunkSize int
	// PacketDedupCacheBytes sizes the raw-packet dedup tier.
	PacketDedupCacheBytes int
	// HashDedupCacheSize sizes the post-sanitization dedup tier.
	HashDedupCacheSize int
}

// DefaultConfig returns the stage's stock tuning.
func DefaultConfig() Config {
	return Config{
		MaxPacketReceiveTime:    100 * time.Millisecond,
		MaxReceiveAndBufferTime: 10 * time.Millisecond,
		ChunkSize:               128,
		PacketDedupCacheBytes:   32 * 1024 * 1024,
		HashDedupCacheSize:      65536,
	}
}

// Counts tallies outcomes for one or more receive-and-buffer passes. It is
// not safe for concurrent use; a ReceiveAndBuffer is meant to be driven from
// a single goroutine, mirroring the rest of this module's components.
type Counts struct {
	NumReceived                   uint64
	NumBuffered                   uint64
	NumDroppedOnDedup             uint64
	NumDroppedOnSanitization      uint64
	NumDroppedOnValidateLocks     uint64
	NumDroppedOnTransactionChecks uint64
	NumDroppedOnCapacity          uint64
}

// ReceiveAndBuffer is the receive-and-buffer stage for one ingress channel.
type ReceiveAndBuffer struct {
	cfg          Config
	channel      *PacketChannel
	deserializer Deserializer
	dedup        *DedupCache
	bank         Bank
	log          log.Logger

	Metrics Counts
}

// New constructs a receive-and-buffer stage. The bank is the "working bank"
// used to sanitize and check packets; callers update it via SetWorkingBank
// as their view of the current bank advances.
func New(channel *PacketChannel, deserializer Deserializer, bank Bank, cfg Config) *ReceiveAndBuffer {
	return &ReceiveAndBuffer{
		cfg:          cfg,
		channel:      channel,
		deserializer: deserializer,
		dedup:        NewDedupCache(cfg.PacketDedupCacheBytes, cfg.HashDedupCacheSize),
		bank:         bank,
		log:          log.New("component", "receiver"),
	}
}

// SetWorkingBank replaces the bank used for subsequent sanitize/cost/reward
// calculations.
func (r *ReceiveAndBuffer) SetWorkingBank(bank Bank) { r.bank = bank }

// ReceiveAndBufferPackets runs one receive-and-buffer pass: it waits for at
// least one packet (for as long as decision and the container's current
// occupancy call for), then drains whatever else is immediately available,
// sanitizes and checks the batch, and inserts survivors into container. It
// returns false once the ingress channel is found to be disconnected, at
// which point the caller should stop calling it.
func (r *ReceiveAndBuffer) ReceiveAndBufferPackets(decision Decision, container *scheduler.Container) bool {
	var initialTimeout time.Duration
	switch decision.Kind {
	case DecisionConsume:
		if container.IsEmpty() {
			initialTimeout = r.cfg.MaxPacketReceiveTime
		} else {
			initialTimeout = 0
		}
	default:
		initialTimeout = r.cfg.MaxPacketReceiveTime
	}

	first, received, connected := r.channel.recvTimeout(initialTimeout)
	if !connected {
		return false
	}

	batch := make([]Packet, 0, r.cfg.ChunkSize)
	if received {
		batch = append(batch, first)
	}

	deadline := time.Now().Add(r.cfg.MaxReceiveAndBufferTime)
	for time.Now().Before(deadline) {
		p, ok, stillConnected := r.channel.tryRecv()
		if !stillConnected {
			connected = false
			break
		}
		if !ok {
			break
		}
		batch = append(batch, p)
	}

	if len(batch) > 0 {
		r.bufferPackets(batch, container)
	}
	return connected
}

func (r *ReceiveAndBuffer) bufferPackets(packets []Packet, container *scheduler.Container) {
	r.Metrics.NumReceived += uint64(len(packets))
	for start := 0; start < len(packets); start += r.cfg.ChunkSize {
		end := start + r.cfg.ChunkSize
		if end > len(packets) {
			end = len(packets)
		}
		r.bufferChunk(packets[start:end], container)
	}
}

func (r *ReceiveAndBuffer) bufferChunk(chunk []Packet, container *scheduler.Container) {
	lockLimit := r.bank.TransactionAccountLockLimit()
	maxAgeSlot := r.bank.LastSlotInEpoch()

	for _, packet := range chunk {
		if r.dedup.SeenPacket(packet.Data) {
			r.Metrics.NumDroppedOnDedup++
			continue
		}

		message, err := r.deserializer.Deserialize(packet)
		if err != nil {
			r.Metrics.NumDroppedOnSanitization++
			continue
		}

		if len(message.WritableAccounts())+len(message.ReadableAccounts()) > lockLimit {
			r.Metrics.NumDroppedOnValidateLocks++
			continue
		}

		if err := r.bank.CheckTransaction(message, maxAgeSlot); err != nil {
			r.Metrics.NumDroppedOnTransactionChecks++
			continue
		}

		priority, cost := calculatePriorityAndCost(message, r.bank)
		ttl := scheduler.TransactionTTL{Message: message, MaxAgeSlot: maxAgeSlot, RawPacket: packet.Data}
		_, dropped := container.InsertNewTransaction(ttl, scheduler.PriorityDetails{
			Priority:         priority,
			ComputeUnitLimit: cost,
		})
		if dropped {
			r.Metrics.NumDroppedOnCapacity++
		}
		r.Metrics.NumBuffered++
	}
}

func (c *PacketChannel) recvTimeout(timeout time.Duration) (Packet, bool, bool) {
	if timeout <= 0 {
		select {
		case p := <-c.Packets:
			return p, true, true
		case <-c.Closed:
			return Packet{}, false, false
		default:
			return Packet{}, false, true
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case p := <-c.Packets:
		return p, true, true
	case <-c.Closed:
		return Packet{}, false, false
	case <-timer.C:
		return Packet{}, false, true
	}
}

func (c *PacketChannel) tryRecv() (Packet, bool, bool) {
	select {
	case p := <-c.Packets:
		return p, true, true
	case <-c.Closed:
		return Packet{}, false, false
	default:
		return Packet{}, false, true
	}
}
