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
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/chainbase/txsched/config"
	"github.com/chainbase/txsched/core/account"
	"github.com/chainbase/txsched/core/receiver"
	"github.com/chainbase/txsched/core/scheduler"
	"github.com/chainbase/txsched/core/worker"
	"github.com/chainbase/txsched/internal/bankmock"
	"github.com/chainbase/txsched/internal/metrics"
	"github.com/chainbase/txsched/internal/syntheticload"
)

func run(cliCtx *cli.Context) error {
	setupLogging(cliCtx)
	logger := log.New("component", "txsched")

	cfg := config.Default()
	if path := cliCtx.String(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if n := cliCtx.Int(threadsFlag.Name); n > 0 {
		cfg.NumThreads = n
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	m := metrics.New()
	go serveMetrics(cliCtx.String(metricsAddrFlag.Name), m, logger)

	channels := make([]*scheduler.ConsumeChannel, cfg.NumThreads)
	for i := range channels {
		channels[i] = scheduler.NewConsumeChannel(cfg.Scheduler.TargetBatchSize * 2)
	}
	sched := scheduler.NewScheduler(channels, cfg.Scheduler)
	pool := worker.NewPool(channels, noopExecutor{})

	bank := bankmock.New(64, 5)
	oracle := bankmock.NewLeaderSchedule(bank, nil)
	sched.SetResanitizer(bank)

	forwardChannel := scheduler.NewForwardChannel(cfg.Scheduler.TargetBatchSize * 2)
	sched.SetForwardChannel(forwardChannel)
	forwardFinished := make(chan scheduler.FinishedForwardWork, 4)
	forwarder := worker.NewForwardWorker(forwardChannel, forwardFinished, noopForwarder{})

	packetChannel := receiver.NewPacketChannel(1024)
	recv := receiver.New(packetChannel, syntheticload.Deserializer{}, bank, cfg.Receiver)

	container := scheduler.NewContainer(cfg.Scheduler.QueuedTransactionLimit * 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	genCfg := syntheticload.Config{
		Rate:          cliCtx.Int(packetRateFlag.Name),
		NumAccounts:   cliCtx.Int(numAccountsFlag.Name),
		NumWriteLocks: 2,
		NumReadLocks:  2,
	}
	generator := syntheticload.NewGenerator(genCfg, 1)
	go generator.Run(ctx, packetChannel)

	poolErr := make(chan error, 1)
	go func() { poolErr <- pool.Run(ctx) }()
	go func() {
		if err := forwarder.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("forward worker stopped", "err", err)
		}
	}()

	go drainFinished(ctx, pool.Finished, sched, container, m)
	go drainForwardFinished(ctx, forwardFinished)

	var prevCounts receiver.Counts
	for {
		select {
		case <-ctx.Done():
			packetChannel.Close()
			<-poolErr
			return nil
		default:
		}

		decision := oracle.Next()
		if !recv.ReceiveAndBufferPackets(decision, container) {
			logger.Warn("ingress channel disconnected")
			cancel()
			continue
		}
		m.ObserveReceiveCounts(prevCounts, recv.Metrics)
		prevCounts = recv.Metrics
		m.SetContainerSize(container.Len())

		switch decision.Kind {
		case receiver.DecisionConsume:
			n, err := sched.Schedule(container)
			if err != nil {
				logger.Error("scheduling pass failed", "err", err)
				cancel()
				continue
			}
			m.ObserveScheduled(n)
		case receiver.DecisionForward, receiver.DecisionForwardAndHold:
			n, err := sched.ScheduleForward(container, decision.Kind == receiver.DecisionForwardAndHold)
			if err != nil {
				logger.Error("forward scheduling pass failed", "err", err)
				cancel()
				continue
			}
			m.ObserveForwarded(n)
		}
	}
}

// drainForwardFinished discards forward-worker completion reports; the
// forward path has no retry/removal bookkeeping the way CompleteWork does,
// since a forwarded transaction's container entry was already resolved (held
// or removed) by ScheduleForward itself.
func drainForwardFinished(ctx context.Context, finished <-chan scheduler.FinishedForwardWork) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-finished:
			if !ok {
				return
			}
		}
	}
}

func drainFinished(ctx context.Context, finished <-chan scheduler.FinishedConsumeWork, sched *scheduler.Scheduler, container *scheduler.Container, m *metrics.Metrics) {
	for {
		select {
		case <-ctx.Done():
			return
		case report, ok := <-finished:
			if !ok {
				return
			}
			retried := len(report.RetryableIndexes)
			removed := len(report.Work.TransactionIDs) - retried
			sched.CompleteWork(report, container)
			m.ObserveCompletion(retried, removed)
		}
	}
}

func serveMetrics(addr string, m *metrics.Metrics, logger log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "err", err)
	}
}

// noopExecutor is the default Executor for the standalone CLI: it accepts
// every transaction without retry, since there is no real ledger to commit
// against.
type noopExecutor struct{}

func (noopExecutor) Execute(_ account.Message) (bool, error) { return false, nil }

// noopForwarder is the default Forwarder for the standalone CLI: it accepts
// every batch without actually sending it anywhere, since there is no real
// upstream relay to forward to.
type noopForwarder struct{}

func (noopForwarder) Forward(_ [][]byte) error { return nil }
