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

package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chainbase/txsched/core/scheduler"
)

// fakeForwarder fails whenever any packet in the batch matches failMarker.
type fakeForwarder struct {
	failMarker byte
	sent       [][]byte
}

func (f *fakeForwarder) Forward(packets [][]byte) error {
	f.sent = append(f.sent, packets...)
	for _, p := range packets {
		if len(p) > 0 && p[0] == f.failMarker {
			return errors.New("forward failed")
		}
	}
	return nil
}

func TestForwardWorkerRunProcessesBatchAndReports(t *testing.T) {
	consume := scheduler.NewForwardChannel(1)
	finished := make(chan scheduler.FinishedForwardWork, 1)
	forwarder := &fakeForwarder{failMarker: 0xff}
	w := NewForwardWorker(consume, finished, forwarder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	work := scheduler.ForwardWork{
		TransactionIDs: []scheduler.TransactionID{0, 1},
		Packets:        [][]byte{{1, 2, 3}, {4, 5, 6}},
	}
	consume.Work <- work

	select {
	case result := <-finished:
		if !result.Successful {
			t.Fatalf("Successful = false, want true")
		}
		if len(forwarder.sent) != 2 {
			t.Fatalf("forwarder received %d packets, want 2", len(forwarder.sent))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for FinishedForwardWork")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Run to exit")
	}

	select {
	case <-consume.Closed:
	default:
		t.Fatal("consume.Closed should be closed once Run exits")
	}
}

func TestForwardWorkerReportsUnsuccessfulSend(t *testing.T) {
	consume := scheduler.NewForwardChannel(1)
	finished := make(chan scheduler.FinishedForwardWork, 1)
	forwarder := &fakeForwarder{failMarker: 0xff}
	w := NewForwardWorker(consume, finished, forwarder)

	go func() { _ = w.Run(context.Background()) }()

	consume.Work <- scheduler.ForwardWork{
		TransactionIDs: []scheduler.TransactionID{0},
		Packets:        [][]byte{{0xff, 0, 0}},
	}

	select {
	case result := <-finished:
		if result.Successful {
			t.Fatalf("Successful = true, want false")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for FinishedForwardWork")
	}
}

func TestForwardWorkerRunExitsOnChannelClose(t *testing.T) {
	consume := scheduler.NewForwardChannel(1)
	finished := make(chan scheduler.FinishedForwardWork, 1)
	w := NewForwardWorker(consume, finished, &fakeForwarder{})

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	close(consume.Work)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil on clean channel close", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Run to exit")
	}
}
