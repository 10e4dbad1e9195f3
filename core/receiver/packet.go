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

import "github.com/chainbase/txsched/core/account"

// Packet is a single unit of wire-format transaction data as received from
// the network ingress layer, before sanitization.
type Packet struct {
	Data []byte
}

// Deserializer turns raw packet bytes into a schedulable message. Concrete
// wire formats (and the sanitization/signature-verification/address-lookup
// steps they require) live with the caller's implementation; the receiver
// only needs this capability.
type Deserializer interface {
	Deserialize(packet Packet) (account.Message, error)
}

// PacketChannel is the ingress-to-receiver handoff, mirroring
// core/scheduler's ConsumeChannel: Closed lets a producer that is shutting
// down signal disconnection to a receiver blocked in a timed receive.
type PacketChannel struct {
	Packets chan Packet
	Closed  chan struct{}
}

// NewPacketChannel returns a PacketChannel with the given packet buffer
// size.
func NewPacketChannel(buffer int) *PacketChannel {
	return &PacketChannel{
		Packets: make(chan Packet, buffer),
		Closed:  make(chan struct{}),
	}
}

// Close marks the channel as disconnected. It is safe to call at most once.
func (c *PacketChannel) Close() { close(c.Closed) }
