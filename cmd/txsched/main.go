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

// txsched runs a standalone instance of the transaction scheduling core
// against a synthetic packet generator and bank, for manual experimentation
// and local load testing. It is not a production ledger client.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to a TOML configuration file",
	}
	threadsFlag = &cli.IntFlag{
		Name:  "threads",
		Usage: "Number of worker threads (overrides config file)",
		Value: 0,
	}
	metricsAddrFlag = &cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "Address to serve Prometheus metrics on",
		Value: "127.0.0.1:6060",
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "Write logs to this file (with rotation) instead of stderr",
	}
	packetRateFlag = &cli.IntFlag{
		Name:  "packets.rate",
		Usage: "Synthetic packets per second fed into the receive stage",
		Value: 10_000,
	}
	numAccountsFlag = &cli.IntFlag{
		Name:  "accounts.count",
		Usage: "Number of distinct accounts synthetic transactions are drawn from",
		Value: 10_000,
	}
)

func main() {
	app := &cli.App{
		Name:  "txsched",
		Usage: "run a standalone transaction scheduling core against synthetic load",
		Flags: []cli.Flag{
			configFlag,
			threadsFlag,
			metricsAddrFlag,
			logFileFlag,
			packetRateFlag,
			numAccountsFlag,
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(ctx *cli.Context) {
	if path := ctx.String(logFileFlag.Name); path != "" {
		writer := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     28,
		}
		log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(writer, log.LevelInfo, false)))
	}
}
