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
	"crypto/sha256"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/ethereum/go-ethereum/common/lru"

	"github.com/chainbase/txsched/core/account"
)

// DedupCache drops packets and transactions already seen recently, before
// the more expensive deserialize/sanitize path runs. It is two-tiered: a
// byte-keyed fastcache.Cache for the raw-packet check at full ingress
// throughput, and a smaller common/lru.Cache keyed by the transaction's own
// declared accounts for a second check after sanitization (catches
// retransmits that differ at the wire level but decode to the same
// transaction).
type DedupCache struct {
	packets *fastcache.Cache
	hashes  *lru.Cache[account.Key, struct{}]
}

// NewDedupCache returns a cache whose packet tier is bounded to
// packetCacheBytes and whose post-sanitize tier holds up to hashCacheSize
// entries.
func NewDedupCache(packetCacheBytes, hashCacheSize int) *DedupCache {
	return &DedupCache{
		packets: fastcache.New(packetCacheBytes),
		hashes:  lru.NewCache[account.Key, struct{}](hashCacheSize),
	}
}

// SeenPacket reports whether raw packet bytes were already observed. If not,
// it records them before returning.
func (d *DedupCache) SeenPacket(raw []byte) bool {
	h := sha256.Sum256(raw)
	if d.packets.Has(h[:]) {
		return true
	}
	d.packets.Set(h[:], nil)
	return false
}

// SeenHash reports whether key (typically the fee payer, used as a stand-in
// for a transaction signature) was already observed post-sanitization. If
// not, it records it before returning.
func (d *DedupCache) SeenHash(key account.Key) bool {
	if d.hashes.Contains(key) {
		return true
	}
	d.hashes.Add(key, struct{}{})
	return false
}
