// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package depositcli

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/obolnetwork/wagyu/app/promauto"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultError   = "error"
)

var (
	invocationsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wagyu",
		Subsystem: "depositcli",
		Name:      "invocations_total",
		Help:      "Total number of deposit cli invocations by subcommand and result (success, failure, error)",
	}, []string{"subcommand", "result"})

	durationHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wagyu",
		Subsystem: "depositcli",
		Name:      "duration_seconds",
		Help:      "Duration of deposit cli invocations in seconds by subcommand",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"subcommand"})
)
