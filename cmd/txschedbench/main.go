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

// txschedbench drives the scheduling core against a synthetic,
// configurable-conflict workload and reports scheduled/completed throughput,
// the way miner/stress exercises the mining pipeline under synthetic load.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	packetRateFlag = &cli.IntFlag{
		Name:  "packet-send-rate",
		Usage: "Packets per second to send to the scheduler",
		Value: 200_000,
	}
	numThreadsFlag = &cli.IntFlag{
		Name:  "num-execution-threads",
		Usage: "Number of worker threads consuming batches from the scheduler",
		Value: 20,
	}
	execPerTxFlag = &cli.Int64Flag{
		Name:  "execution-per-tx-us",
		Usage: "Simulated per-transaction execution time, in microseconds",
		Value: 15,
	}
	durationFlag = &cli.Float64Flag{
		Name:  "duration",
		Usage: "Benchmark duration, in seconds",
		Value: 20.0,
	}
	numAccountsFlag = &cli.IntFlag{
		Name:  "num-accounts",
		Usage: "Number of accounts to choose from when generating transactions",
		Value: 100_000,
	}
	numReadLocksFlag = &cli.IntFlag{
		Name:  "num-read-locks-per-tx",
		Usage: "Number of read locks per transaction",
		Value: 4,
	}
	numWriteLocksFlag = &cli.IntFlag{
		Name:  "num-read-write-locks-per-tx",
		Usage: "Number of write locks per transaction",
		Value: 2,
	}
	maxBatchSizeFlag = &cli.IntFlag{
		Name:  "max-batch-size",
		Usage: "Target number of transactions per scheduled batch",
		Value: 128,
	}
	highConflictFlag = &cli.IntFlag{
		Name:  "high-conflict-accounts",
		Usage: "Size of a hot account sub-pool every transaction's first write lock is drawn from (0 disables)",
		Value: 0,
	}
)

func main() {
	app := &cli.App{
		Name:  "txschedbench",
		Usage: "benchmark the transaction scheduling core against synthetic conflict workloads",
		Flags: []cli.Flag{
			packetRateFlag,
			numThreadsFlag,
			execPerTxFlag,
			durationFlag,
			numAccountsFlag,
			numReadLocksFlag,
			numWriteLocksFlag,
			maxBatchSizeFlag,
			highConflictFlag,
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
