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

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"

	"github.com/chainbase/txsched/core/account"
)

// Config bounds how aggressively the scheduler packs and queues work.
type Config struct {
	// SequentialQueueLimit is how many transactions may be queued onto the
	// same worker thread for the same account while earlier ones on that
	// thread are still outstanding.
	SequentialQueueLimit uint32
	// QueuedTransactionLimit caps how many transactions (in-flight plus
	// queued-this-pass) a single thread may be holding before it is pruned
	// from consideration for further scheduling.
	QueuedTransactionLimit int
	// TargetBatchSize is the number of transactions the scheduler tries to
	// accumulate per thread before shipping a ConsumeWork batch.
	TargetBatchSize int
	// LookAheadWindow bounds how many transactions are pulled out of the
	// container up front to build the dependency graph for one pass.
	LookAheadWindow int
	// MaxTransactionsPerPass bounds total transactions scheduled in a
	// single call to Schedule, so one call cannot run unbounded.
	MaxTransactionsPerPass int
}

// DefaultConfig returns the scheduler's stock tuning.
func DefaultConfig() Config {
	const targetBatchSize = 64
	return Config{
		SequentialQueueLimit:   2,
		QueuedTransactionLimit: targetBatchSize * 100,
		TargetBatchSize:        targetBatchSize,
		LookAheadWindow:        10_000,
		MaxTransactionsPerPass: 100_000,
	}
}

// Scheduler assigns transactions pulled from a Container to worker threads
// in priority order, respecting account-lock conflicts, and hands each
// assigned batch off over that thread's ConsumeChannel.
type Scheduler struct {
	cfg          Config
	inFlight     *InFlightTracker
	accountLocks *AccountLocks
	channels     []*ConsumeChannel
	log          log.Logger

	// resanitizer re-validates transactions whose max-age slot has expired.
	// Nil disables the age-expiry check (§4.H.1 step 3.4), e.g. for tests
	// that never advance a slot.
	resanitizer Resanitizer
	// forwardChannel carries the forward path's output. Nil means the
	// forward path is unused by this scheduler instance.
	forwardChannel *ForwardChannel

	schedulingFeed event.Feed
	completionFeed event.Feed
}

// NewScheduler constructs a scheduler driving one ConsumeChannel per worker
// thread.
func NewScheduler(channels []*ConsumeChannel, cfg Config) *Scheduler {
	numThreads := len(channels)
	return &Scheduler{
		cfg:          cfg,
		inFlight:     NewInFlightTracker(numThreads),
		accountLocks: NewAccountLocks(numThreads, cfg.SequentialQueueLimit),
		channels:     channels,
		log:          log.New("component", "scheduler"),
	}
}

// SetResanitizer installs the bank-backed age-expiry check Schedule uses to
// re-validate transactions whose max-age slot has passed.
func (s *Scheduler) SetResanitizer(r Resanitizer) { s.resanitizer = r }

// SetForwardChannel installs the channel ScheduleForward ships ForwardWork
// batches over.
func (s *Scheduler) SetForwardChannel(ch *ForwardChannel) { s.forwardChannel = ch }

// Schedule runs one scheduling pass over container, returning the number of
// transactions handed off to workers.
func (s *Scheduler) Schedule(container *Container) (numScheduled int, err error) {
	defer func() {
		s.schedulingFeed.Send(SchedulingEvent{NumScheduled: numScheduled})
	}()

	numThreads := len(s.channels)
	schedulableThreads := AnyThreads(numThreads)
	for thread, count := range s.inFlight.NumInFlightPerThread() {
		if count >= s.cfg.QueuedTransactionLimit {
			schedulableThreads = schedulableThreads.Remove(ThreadID(thread))
		}
	}

	batches := newBatchBuilder(numThreads, s.cfg.TargetBatchSize)
	blockingLocks := NewReadWriteAccountSet()
	var unschedulableIDs []PriorityID

	graph := NewPrioGraph()
	for i := 0; i < s.cfg.LookAheadWindow; i++ {
		id, ok := container.Pop()
		if !ok {
			break
		}
		ttl, _ := container.GetTransactionTTL(id.ID)
		graph.InsertTransaction(id, ttl.Message)
	}

	chainIDToThread := make(map[TransactionID]ThreadID)
	var unblockThisBatch []PriorityID

	for numScheduled < s.cfg.MaxTransactionsPerPass {
		if graph.IsEmpty() {
			break
		}

		for {
			id, ok := graph.Pop()
			if !ok {
				break
			}
			unblockThisBatch = append(unblockThisBatch, id)

			if next, ok := container.Pop(); ok {
				nextTTL, _ := container.GetTransactionTTL(next.ID)
				graph.InsertTransaction(next, nextTTL.Message)
			}

			if schedulableThreads.IsEmpty() || numScheduled > s.cfg.MaxTransactionsPerPass {
				unschedulableIDs = append(unschedulableIDs, id)
				break
			}

			state, ok := container.GetTransactionState(id.ID)
			if !ok {
				continue
			}
			ttl := state.TTL()
			message := ttl.Message

			if isExpired(s.resanitizer, ttl) {
				if refreshed, err := s.resanitizer.Resanitize(message); err == nil {
					state.RefreshTTL(refreshed)
				} else {
					container.RemoveByID(id.ID)
					continue
				}
			}

			if !blockingLocks.CheckLocks(message) {
				blockingLocks.TakeLocks(message)
				unschedulableIDs = append(unschedulableIDs, id)
				continue
			}

			chainID := graph.ChainID(id.ID)
			txSchedulableThreads := schedulableThreads
			if thread, ok := chainIDToThread[chainID]; ok {
				txSchedulableThreads = schedulableThreads.And(OnlyThread(thread))
			}

			thread, ok := s.accountLocks.TryLock(message.WritableAccounts(), message.ReadableAccounts(), txSchedulableThreads, func(candidates ThreadSet) ThreadID {
				return selectThread(batches, s.inFlight.NumInFlightPerThread(), candidates)
			})
			if !ok {
				blockingLocks.TakeLocks(message)
				unschedulableIDs = append(unschedulableIDs, id)
				continue
			}
			chainIDToThread[chainID] = thread

			ttl = state.TransitionToPending()
			cuLimit := state.PriorityDetails().ComputeUnitLimit

			shouldSendBatches := !batches.locks[thread].TakeLocks(ttl.Message)
			if shouldSendBatches {
				n, err := s.sendBatches(batches)
				numScheduled += n
				if err != nil {
					return numScheduled, err
				}
				batches.locks[thread].TakeLocks(ttl.Message)
			}

			batches.push(thread, id.ID, ttl)
			batches.totalCost[thread] += cuLimit

			if batches.len(thread)+s.inFlight.NumInFlightPerThread()[thread] >= s.cfg.QueuedTransactionLimit {
				schedulableThreads = schedulableThreads.Remove(thread)
			}

			if batches.len(thread) >= s.cfg.TargetBatchSize {
				n, err := s.sendBatch(batches, thread)
				numScheduled += n
				if err != nil {
					return numScheduled, err
				}
			}
		}

		for _, id := range unblockThisBatch {
			graph.UnblockID(id)
		}
		unblockThisBatch = unblockThisBatch[:0]
	}

	n, err := s.sendBatches(batches)
	numScheduled += n
	if err != nil {
		return numScheduled, err
	}

	for _, id := range unschedulableIDs {
		container.PushIDIntoQueue(id)
	}
	for {
		id, ok := graph.PopAndUnblock()
		if !ok {
			break
		}
		container.PushIDIntoQueue(id)
	}

	return numScheduled, nil
}

// CompleteBatch records a worker's report that batchID finished, unlocking
// the accounts held by transactions so that conflicting transactions
// become schedulable again.
func (s *Scheduler) CompleteBatch(batchID BatchID, transactions []account.Message) {
	thread := s.inFlight.CompleteBatch(batchID)
	for _, message := range transactions {
		s.accountLocks.Unlock(message.WritableAccounts(), message.ReadableAccounts(), thread)
	}
}

// CompleteWork applies a worker's FinishedConsumeWork report in full: it
// unlocks the batch's accounts via CompleteBatch, then re-queues every
// transaction the worker marked retryable and removes the rest from
// container. The scheduler accepts RetryableIndexes verbatim — retryable vs.
// fatal is a call only the worker is positioned to make.
func (s *Scheduler) CompleteWork(finished FinishedConsumeWork, container *Container) {
	s.CompleteBatch(finished.Work.BatchID, finished.Work.Transactions)

	retryable := make(map[int]bool, len(finished.RetryableIndexes))
	for _, idx := range finished.RetryableIndexes {
		retryable[idx] = true
	}
	removed := 0
	for i, id := range finished.Work.TransactionIDs {
		if retryable[i] {
			ttl := TransactionTTL{Message: finished.Work.Transactions[i], MaxAgeSlot: finished.Work.MaxAgeSlots[i]}
			container.RetryTransaction(id, ttl)
		} else {
			container.RemoveByID(id)
			removed++
		}
	}
	s.completionFeed.Send(CompletionEvent{Retried: len(finished.RetryableIndexes), Removed: removed})
}

// ScheduleForward implements the forward path (§4.H.2): it drains
// container's entire queue in priority order and, for every transaction
// that is still valid (age OK, not already processed) and does not
// conflict with anything already claimed for forwarding this pass, ships
// it on forwardChannel. Invalid transactions are dropped unconditionally.
// hold controls what happens to the rest: false (plain Forward) removes
// every drained id once the pass is done, since there is no reason to keep
// them around; true (ForwardAndHold) re-inserts everything still valid, so
// a transaction not chosen to forward this pass remains schedulable (e.g.
// by a later Consume decision). It is a no-op if no ForwardChannel was
// installed via SetForwardChannel.
func (s *Scheduler) ScheduleForward(container *Container, hold bool) (numForwarded int, err error) {
	if s.forwardChannel == nil {
		return 0, nil
	}
	defer func() {
		s.schedulingFeed.Send(SchedulingEvent{NumScheduled: numForwarded, Forwarded: true})
	}()

	var drained []PriorityID
	for {
		id, ok := container.Pop()
		if !ok {
			break
		}
		drained = append(drained, id)
	}

	forwardSet := NewReadWriteAccountSet()
	var ids []TransactionID
	var packets [][]byte

	for _, id := range drained {
		state, ok := container.GetTransactionState(id.ID)
		if !ok {
			continue
		}
		ttl := state.TTL()

		if !s.stillValidForForward(state, ttl) {
			container.RemoveByID(id.ID)
			continue
		}

		if !forwardSet.TakeLocks(ttl.Message) {
			if hold {
				container.PushIDIntoQueue(id)
			} else {
				container.RemoveByID(id.ID)
			}
			continue
		}

		ids = append(ids, id.ID)
		packets = append(packets, ttl.RawPacket)
		numForwarded++

		if hold {
			container.PushIDIntoQueue(id)
		} else {
			container.RemoveByID(id.ID)
		}
	}

	if len(ids) == 0 {
		return numForwarded, nil
	}

	work := ForwardWork{TransactionIDs: ids, Packets: packets}
	select {
	case s.forwardChannel.Work <- work:
		return numForwarded, nil
	case <-s.forwardChannel.Closed:
		return numForwarded, disconnectedSendChannel("forward work sender")
	}
}

// stillValidForForward reports whether ttl is still admissible: if its
// max-age slot expired it must first re-sanitize successfully (refreshing
// the TTL in state on success); independent of age, it must still pass the
// bank's not-already-processed/not-rejected check, which Resanitize also
// performs. A nil resanitizer treats every transaction as valid.
func (s *Scheduler) stillValidForForward(state *TransactionState, ttl TransactionTTL) bool {
	if s.resanitizer == nil {
		return true
	}
	if isExpired(s.resanitizer, ttl) {
		refreshed, err := s.resanitizer.Resanitize(ttl.Message)
		if err != nil {
			return false
		}
		state.RefreshTTL(refreshed)
		return true
	}
	_, err := s.resanitizer.Resanitize(ttl.Message)
	return err == nil
}

// selectThread picks the least-loaded candidate thread, counting both
// transactions already queued into this pass's batches and transactions
// still outstanding from previous passes.
func selectThread(batches *batchBuilder, inFlightPerThread []int, candidates ThreadSet) ThreadID {
	best := ThreadID(-1)
	bestLoad := -1
	for _, thread := range candidates.Members() {
		load := batches.len(thread) + inFlightPerThread[thread]
		if bestLoad == -1 || load < bestLoad {
			best, bestLoad = thread, load
		}
	}
	return best
}

func (s *Scheduler) sendBatches(batches *batchBuilder) (int, error) {
	total := 0
	for thread := 0; thread < len(s.channels); thread++ {
		n, err := s.sendBatch(batches, ThreadID(thread))
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *Scheduler) sendBatch(batches *batchBuilder, thread ThreadID) (int, error) {
	if batches.len(thread) == 0 {
		return 0, nil
	}
	ids, messages, maxAgeSlots, totalCost := batches.take(thread)

	batchID := s.inFlight.TrackBatch(len(ids), totalCost, thread)
	work := ConsumeWork{
		BatchID:        batchID,
		TransactionIDs: ids,
		Transactions:   messages,
		MaxAgeSlots:    maxAgeSlots,
	}

	channel := s.channels[thread]
	select {
	case channel.Work <- work:
		return len(ids), nil
	case <-channel.Closed:
		return 0, disconnectedSendChannel("consume work sender")
	}
}
