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

// Package metrics registers Prometheus counters and gauges for every
// drop/eviction/retry category the scheduling core reports, one registry per
// running instance so multiple schedulers in one process do not collide on
// metric names.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chainbase/txsched/core/receiver"
)

// Metrics is the set of counters/gauges one scheduler instance reports.
type Metrics struct {
	Registry *prometheus.Registry

	receivedTotal    prometheus.Counter
	bufferedTotal    prometheus.Counter
	droppedTotal     *prometheus.CounterVec
	scheduledTotal   prometheus.Counter
	retriedTotal     prometheus.Counter
	removedTotal     prometheus.Counter
	forwardedTotal   prometheus.Counter
	containerEvicted prometheus.Counter
	containerSize    prometheus.Gauge
}

// New builds a Metrics set and registers it on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		receivedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "txsched",
			Name:      "packets_received_total",
			Help:      "Packets received from the ingress channel.",
		}),
		bufferedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "txsched",
			Name:      "transactions_buffered_total",
			Help:      "Transactions admitted into the scheduling container.",
		}),
		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "txsched",
			Name:      "transactions_dropped_total",
			Help:      "Transactions dropped, by the stage that dropped them.",
		}, []string{"stage"}),
		scheduledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "txsched",
			Name:      "transactions_scheduled_total",
			Help:      "Transactions handed off to a worker thread.",
		}),
		retriedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "txsched",
			Name:      "transactions_retried_total",
			Help:      "Transactions re-queued after a worker reported them retryable.",
		}),
		removedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "txsched",
			Name:      "transactions_completed_total",
			Help:      "Transactions removed from the container after a terminal outcome.",
		}),
		forwardedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "txsched",
			Name:      "transactions_forwarded_total",
			Help:      "Transactions handed off to the forward worker.",
		}),
		containerEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "txsched",
			Name:      "container_evicted_total",
			Help:      "Lowest-priority transactions evicted on container overflow.",
		}),
		containerSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "txsched",
			Name:      "container_size",
			Help:      "Current number of transactions held in the container.",
		}),
	}
	m.Registry.MustRegister(
		m.receivedTotal,
		m.bufferedTotal,
		m.droppedTotal,
		m.scheduledTotal,
		m.retriedTotal,
		m.removedTotal,
		m.forwardedTotal,
		m.containerEvicted,
		m.containerSize,
	)
	return m
}

// ObserveReceiveCounts adds the delta between prev and cur onto the
// receive-and-buffer counters; callers pass the stage's running Counts
// snapshot on every pass, since Counts itself only accumulates.
func (m *Metrics) ObserveReceiveCounts(prev, cur receiver.Counts) {
	m.receivedTotal.Add(float64(cur.NumReceived - prev.NumReceived))
	m.bufferedTotal.Add(float64(cur.NumBuffered - prev.NumBuffered))
	m.droppedTotal.WithLabelValues("dedup").Add(float64(cur.NumDroppedOnDedup - prev.NumDroppedOnDedup))
	m.droppedTotal.WithLabelValues("sanitization").Add(float64(cur.NumDroppedOnSanitization - prev.NumDroppedOnSanitization))
	m.droppedTotal.WithLabelValues("validate_locks").Add(float64(cur.NumDroppedOnValidateLocks - prev.NumDroppedOnValidateLocks))
	m.droppedTotal.WithLabelValues("transaction_checks").Add(float64(cur.NumDroppedOnTransactionChecks - prev.NumDroppedOnTransactionChecks))
	m.droppedTotal.WithLabelValues("capacity").Add(float64(cur.NumDroppedOnCapacity - prev.NumDroppedOnCapacity))
}

// ObserveScheduled records numScheduled transactions handed off in one
// scheduling pass.
func (m *Metrics) ObserveScheduled(numScheduled int) {
	m.scheduledTotal.Add(float64(numScheduled))
}

// ObserveCompletion records one CompleteWork report's retry/removal split.
func (m *Metrics) ObserveCompletion(retried, removed int) {
	m.retriedTotal.Add(float64(retried))
	m.removedTotal.Add(float64(removed))
}

// ObserveForwarded records numForwarded transactions handed off in one
// forward-scheduling pass.
func (m *Metrics) ObserveForwarded(numForwarded int) {
	m.forwardedTotal.Add(float64(numForwarded))
}

// ObserveEviction records one container eviction.
func (m *Metrics) ObserveEviction() { m.containerEvicted.Inc() }

// SetContainerSize reports the container's current occupancy.
func (m *Metrics) SetContainerSize(n int) { m.containerSize.Set(float64(n)) }
