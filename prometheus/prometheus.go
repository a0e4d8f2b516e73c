// Mgmt
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.
//
// Additional permission under GNU GPL version 3 section 7
//
// If you modify this program, or any covered work, by linking or combining it
// with embedded mcl code and modules (and that the embedded mcl code and
// modules which link with this program, contain a copy of their source code in
// the authoritative form) containing parts covered by the terms of any other
// license, the licensors of this program grant you additional permission to
// convey the resulting work. Furthermore, the licensors of this program grant
// the original author, James Shubin, additional permission to update this
// additional permission if he deems it necessary to achieve the goals of this
// additional permission.

// Package prometheus exports runtime metrics over http, in the format that a
// prometheus server scrapes.
package prometheus

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPrometheusListen is registered in
// https://github.com/prometheus/prometheus/wiki/Default-port-allocations
const DefaultPrometheusListen = "127.0.0.1:9233"

// Prometheus is the struct that contains information about the prometheus
// instance. Run Init() on it.
type Prometheus struct {
	Listen string // the listen specification for the net/http server

	registry *prometheus.Registry
	server   *http.Server
	listener net.Listener

	gcCollectedTotal        prometheus.Counter     // variables reclaimed by the collector
	localVariables          prometheus.Gauge       // size of the local variable table
	asyncTasksTotal         *prometheus.CounterVec // finished async tasks
	executionsTotal         *prometheus.CounterVec // programs started
	processStartTimeSeconds prometheus.Gauge       // process start time in seconds since unix epoch
}

// Init some parameters - currently the Listen address.
func (obj *Prometheus) Init() error {
	if len(obj.Listen) == 0 {
		obj.Listen = DefaultPrometheusListen
	}
	obj.registry = prometheus.NewRegistry()

	obj.gcCollectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rtfl_gc_collected_total",
			Help: "Number of local variables reclaimed by the garbage collector.",
		},
	)
	obj.localVariables = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtfl_local_variables",
			Help: "Number of entries in the local variable table.",
		},
	)
	obj.asyncTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtfl_async_tasks_total",
			Help: "Number of async tasks that have finished.",
		},
		// errorful: did the task end with an error
		[]string{"errorful"},
	)
	obj.executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtfl_executions_total",
			Help: "Number of programs that were started.",
		},
		// kind: file or code
		[]string{"kind"},
	)
	obj.processStartTimeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtfl_process_start_time_seconds",
			Help: "Start time of the process since unix epoch in seconds.",
		},
	)

	for _, c := range []prometheus.Collector{
		obj.gcCollectedTotal,
		obj.localVariables,
		obj.asyncTasksTotal,
		obj.executionsTotal,
		obj.processStartTimeSeconds,
		collectors.NewGoCollector(),
	} {
		if err := obj.registry.Register(c); err != nil {
			return err
		}
	}
	// directly set the processStartTimeSeconds
	obj.processStartTimeSeconds.SetToCurrentTime()

	return nil
}

// Registry returns the registry that holds every metric of this instance.
func (obj *Prometheus) Registry() *prometheus.Registry { return obj.registry }

// Start runs a http server in a go routine, that responds to /metrics as
// prometheus would expect.
func (obj *Prometheus) Start() error {
	listener, err := net.Listen("tcp", obj.Listen)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", obj.Listen, err)
	}
	obj.listener = listener

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(obj.registry, promhttp.HandlerOpts{}))
	obj.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go obj.server.Serve(listener) // returns ErrServerClosed on Stop
	return nil
}

// Addr returns the address the server is listening on, once started.
func (obj *Prometheus) Addr() string {
	if obj.listener == nil {
		return ""
	}
	return obj.listener.Addr().String()
}

// Stop the http server.
func (obj *Prometheus) Stop() error {
	if obj.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return obj.server.Shutdown(ctx)
}

// UpdateGCCollected adds to the number of reclaimed variables.
func (obj *Prometheus) UpdateGCCollected(n int) error {
	if n < 0 {
		return fmt.Errorf("negative count: %d", n)
	}
	obj.gcCollectedTotal.Add(float64(n))
	return nil
}

// UpdateLocals sets the current size of the local variable table.
func (obj *Prometheus) UpdateLocals(n int) error {
	obj.localVariables.Set(float64(n))
	return nil
}

// UpdateAsyncTotal counts a finished async task.
func (obj *Prometheus) UpdateAsyncTotal(errorful bool) error {
	labels := prometheus.Labels{"errorful": strconv.FormatBool(errorful)}
	obj.asyncTasksTotal.With(labels).Inc()
	return nil
}

// UpdateExecutionTotal counts a program that was started.
func (obj *Prometheus) UpdateExecutionTotal(kind string) error {
	labels := prometheus.Labels{"kind": kind}
	obj.executionsTotal.With(labels).Inc()
	return nil
}
