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

package scheduler

import "testing"

func TestInFlightTrackerTrackAndComplete(t *testing.T) {
	tracker := NewInFlightTracker(2)

	id1 := tracker.TrackBatch(4, 100, 0)
	id2 := tracker.TrackBatch(2, 50, 1)
	if id1 == id2 {
		t.Fatalf("batch ids must be unique")
	}

	if got := tracker.NumInFlightPerThread(); got[0] != 4 || got[1] != 2 {
		t.Fatalf("NumInFlightPerThread = %v, want [4 2]", got)
	}
	if got := tracker.CostInFlightPerThread(); got[0] != 100 || got[1] != 50 {
		t.Fatalf("CostInFlightPerThread = %v, want [100 50]", got)
	}

	if thread := tracker.CompleteBatch(id1); thread != 0 {
		t.Fatalf("CompleteBatch(id1) thread = %d, want 0", thread)
	}
	if got := tracker.NumInFlightPerThread(); got[0] != 0 || got[1] != 2 {
		t.Fatalf("after complete, NumInFlightPerThread = %v, want [0 2]", got)
	}
	if got := tracker.CostInFlightPerThread(); got[0] != 0 || got[1] != 50 {
		t.Fatalf("after complete, CostInFlightPerThread = %v, want [0 50]", got)
	}

	if thread := tracker.CompleteBatch(id2); thread != 1 {
		t.Fatalf("CompleteBatch(id2) thread = %d, want 1", thread)
	}
	if got := tracker.NumInFlightPerThread(); got[0] != 0 || got[1] != 0 {
		t.Fatalf("after complete, NumInFlightPerThread = %v, want [0 0]", got)
	}
}

func TestInFlightTrackerCompleteUnknownBatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	tracker := NewInFlightTracker(1)
	tracker.CompleteBatch(BatchID(12345))
}

func TestInFlightTrackerMultipleBatchesSameThread(t *testing.T) {
	tracker := NewInFlightTracker(1)

	id1 := tracker.TrackBatch(3, 10, 0)
	id2 := tracker.TrackBatch(5, 20, 0)

	if got := tracker.NumInFlightPerThread(); got[0] != 8 {
		t.Fatalf("NumInFlightPerThread = %v, want [8]", got)
	}

	tracker.CompleteBatch(id1)
	if got := tracker.NumInFlightPerThread(); got[0] != 5 {
		t.Fatalf("after partial complete, NumInFlightPerThread = %v, want [5]", got)
	}

	tracker.CompleteBatch(id2)
	if got := tracker.NumInFlightPerThread(); got[0] != 0 {
		t.Fatalf("after full complete, NumInFlightPerThread = %v, want [0]", got)
	}
}
