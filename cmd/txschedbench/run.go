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

package main

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/chainbase/txsched/core/account"
	"github.com/chainbase/txsched/core/receiver"
	"github.com/chainbase/txsched/core/scheduler"
	"github.com/chainbase/txsched/core/worker"
	"github.com/chainbase/txsched/internal/bankmock"
	"github.com/chainbase/txsched/internal/syntheticload"
)

func run(cliCtx *cli.Context) error {
	runID := uuid.NewString()
	logger := log.New("component", "txschedbench", "run", runID)

	numThreads := cliCtx.Int(numThreadsFlag.Name)
	maxBatchSize := cliCtx.Int(maxBatchSizeFlag.Name)
	duration := time.Duration(cliCtx.Float64(durationFlag.Name) * float64(time.Second))
	perTx := time.Duration(cliCtx.Int64(execPerTxFlag.Name)) * time.Microsecond

	metrics := &benchMetrics{}

	channels := make([]*scheduler.ConsumeChannel, numThreads)
	for i := range channels {
		channels[i] = scheduler.NewConsumeChannel(maxBatchSize * 2)
	}
	schedCfg := scheduler.DefaultConfig()
	schedCfg.TargetBatchSize = maxBatchSize
	sched := scheduler.NewScheduler(channels, schedCfg)
	pool := worker.NewPool(channels, countingExecutor{inner: sleepingExecutor{perTx: perTx}, metrics: metrics})

	bank := bankmock.New(64, 1)
	oracle := bankmock.NewLeaderSchedule(bank, nil)
	sched.SetResanitizer(bank)

	genCfg := syntheticload.Config{
		Rate:                 cliCtx.Int(packetRateFlag.Name),
		NumAccounts:          cliCtx.Int(numAccountsFlag.Name),
		NumWriteLocks:        cliCtx.Int(numWriteLocksFlag.Name),
		NumReadLocks:         cliCtx.Int(numReadLocksFlag.Name),
		HighConflictAccounts: cliCtx.Int(highConflictFlag.Name),
	}
	generator := syntheticload.NewGenerator(genCfg, 1)

	packetChannel := receiver.NewPacketChannel(4096)
	recv := receiver.New(packetChannel, countingDeserializer{inner: syntheticload.Deserializer{}, metrics: metrics}, bank, receiver.DefaultConfig())

	container := scheduler.NewContainer(schedCfg.QueuedTransactionLimit * 4)

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	go generator.Run(ctx, packetChannel)

	poolErr := make(chan error, 1)
	go func() { poolErr <- pool.Run(ctx) }()
	go drainFinished(ctx, pool.Finished, sched, container, metrics)

	reportTicker := time.NewTicker(100 * time.Millisecond)
	defer reportTicker.Stop()

	logger.Info("starting benchmark", "threads", numThreads, "duration", duration)
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-reportTicker.C:
			metrics.report(logger, runID)
		default:
		}

		decision := oracle.Next()
		if !recv.ReceiveAndBufferPackets(decision, container) {
			break loop
		}
		if decision.Kind == receiver.DecisionConsume {
			n, err := sched.Schedule(container)
			if err != nil {
				logger.Error("scheduling pass failed", "err", err)
				break loop
			}
			metrics.numTransactionsScheduled.Add(uint64(n))
		}
	}

	packetChannel.Close()
	<-poolErr
	metrics.report(logger, runID)
	return nil
}

func drainFinished(ctx context.Context, finished <-chan scheduler.FinishedConsumeWork, sched *scheduler.Scheduler, container *scheduler.Container, metrics *benchMetrics) {
	for {
		select {
		case <-ctx.Done():
			return
		case report, ok := <-finished:
			if !ok {
				return
			}
			sched.CompleteWork(report, container)
			completed := len(report.Work.TransactionIDs) - len(report.RetryableIndexes)
			metrics.numTransactionsCompleted.Add(uint64(completed))
		}
	}
}

// countingDeserializer wraps a Deserializer to tally every successfully
// decoded transaction as "sent" into the scheduling pipeline.
type countingDeserializer struct {
	inner   syntheticload.Deserializer
	metrics *benchMetrics
}

func (d countingDeserializer) Deserialize(packet receiver.Packet) (account.Message, error) {
	message, err := d.inner.Deserialize(packet)
	if err != nil {
		return nil, err
	}
	d.metrics.numTransactionsSent.Add(1)
	return message, nil
}

// countingExecutor wraps an Executor to collect the reward each completed
// transaction declares, mirroring the bench's priority_collected tally.
type countingExecutor struct {
	inner   worker.Executor
	metrics *benchMetrics
}

func (e countingExecutor) Execute(message account.Message) (bool, error) {
	if payer, ok := message.(bankmock.FeePayer); ok {
		e.metrics.priorityCollected.Add(payer.Fee())
	}
	return e.inner.Execute(message)
}
