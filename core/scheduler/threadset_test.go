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

func TestThreadSet(t *testing.T) {
	s := NoThreads()
	if !s.IsEmpty() {
		t.Fatalf("new set should be empty")
	}
	if _, ok := s.OnlyOneContained(); ok {
		t.Fatalf("empty set should have no unique member")
	}
	for i := 0; i < MaxThreads; i++ {
		if s.Contains(ThreadID(i)) {
			t.Fatalf("thread %d should not be contained", i)
		}
	}

	s = s.Insert(4)
	if s.IsEmpty() {
		t.Fatalf("set should not be empty after insert")
	}
	if got := s.Count(); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
	if id, ok := s.OnlyOneContained(); !ok || id != 4 {
		t.Fatalf("OnlyOneContained = (%d, %v), want (4, true)", id, ok)
	}

	s = s.Insert(2)
	if got := s.Count(); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}
	if _, ok := s.OnlyOneContained(); ok {
		t.Fatalf("two-member set should have no unique member")
	}
	for i := 0; i < MaxThreads; i++ {
		want := i == 2 || i == 4
		if got := s.Contains(ThreadID(i)); got != want {
			t.Fatalf("Contains(%d) = %v, want %v", i, got, want)
		}
	}

	s = s.Remove(4)
	if got := s.Count(); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
	if id, ok := s.OnlyOneContained(); !ok || id != 2 {
		t.Fatalf("OnlyOneContained = (%d, %v), want (2, true)", id, ok)
	}
}

func TestThreadSetAny(t *testing.T) {
	s := AnyThreads(4)
	if got := s.Count(); got != 4 {
		t.Fatalf("count = %d, want 4", got)
	}
	for i := 0; i < 4; i++ {
		if !s.Contains(ThreadID(i)) {
			t.Fatalf("thread %d should be contained", i)
		}
	}
	if s.Contains(4) {
		t.Fatalf("thread 4 should not be contained")
	}

	full := AnyThreads(MaxThreads)
	if got := full.Count(); got != MaxThreads {
		t.Fatalf("count = %d, want %d", got, MaxThreads)
	}
}

func TestThreadSetAndSub(t *testing.T) {
	a := OnlyThread(1).Insert(2).Insert(3)
	b := OnlyThread(2).Insert(3).Insert(4)

	if got := a.And(b); got != OnlyThread(2).Insert(3) {
		t.Fatalf("And = %v, want {2,3}", got)
	}
	if got := a.Sub(b); got != OnlyThread(1) {
		t.Fatalf("Sub = %v, want {1}", got)
	}
}

func TestThreadSetMembers(t *testing.T) {
	s := OnlyThread(0).Insert(5).Insert(63)
	got := s.Members()
	want := []ThreadID{0, 5, 63}
	if len(got) != len(want) {
		t.Fatalf("Members() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Members() = %v, want %v", got, want)
		}
	}
}
