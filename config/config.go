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

// Package config loads the scheduling core's tunables from a TOML file, the
// way cmd/geth's own gethConfig/loadConfig pair does for its much larger
// configuration surface.
package config

import (
	"errors"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/chainbase/txsched/core/receiver"
	"github.com/chainbase/txsched/core/scheduler"
)

// Config is the top-level, file-loadable configuration for one scheduling
// core instance: a worker thread count plus the two component configs
// that tune it.
type Config struct {
	NumThreads int
	Scheduler  scheduler.Config
	Receiver   receiver.Config
}

// Default returns the stock configuration: the component defaults plus a
// modest thread count suitable for a single benchmark process.
func Default() Config {
	return Config{
		NumThreads: 4,
		Scheduler:  scheduler.DefaultConfig(),
		Receiver:   receiver.DefaultConfig(),
	}
}

// Validate rejects a configuration that could not possibly run: zero
// threads, a zero batch/window size, or a queued-transaction limit smaller
// than the target batch size that would make the scheduler unable to ever
// fill a batch.
func (c Config) Validate() error {
	if c.NumThreads <= 0 {
		return errors.New("config: NumThreads must be positive")
	}
	if c.Scheduler.TargetBatchSize <= 0 {
		return errors.New("config: Scheduler.TargetBatchSize must be positive")
	}
	if c.Scheduler.LookAheadWindow <= 0 {
		return errors.New("config: Scheduler.LookAheadWindow must be positive")
	}
	if c.Scheduler.QueuedTransactionLimit < c.Scheduler.TargetBatchSize {
		return errors.New("config: Scheduler.QueuedTransactionLimit must be at least TargetBatchSize")
	}
	if c.Receiver.ChunkSize <= 0 {
		return errors.New("config: Receiver.ChunkSize must be positive")
	}
	return nil
}

// Load reads and decodes a TOML configuration file, starting from Default so
// that a partial file only overrides the fields it sets, then validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	if err := decode(f, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	_, err := toml.NewDecoder(r).Decode(cfg)
	return err
}
