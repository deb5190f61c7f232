// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package cmd

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/log"
	"github.com/obolnetwork/wagyu/app/promauto"
	"github.com/obolnetwork/wagyu/app/z"
)

// startMonitoring serves prometheus metrics on addr until the returned stop function is called.
func startMonitoring(ctx context.Context, addr string, network string) (func(), error) {
	registry, err := promauto.NewRegistry(prometheus.Labels{"wagyu_network": network})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "listen monitoring address", z.Str("address", addr))
	}

	server := &http.Server{Handler: mux, ReadHeaderTimeout: time.Second}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "Monitoring server failed", err)
		}
	}()

	log.Info(ctx, "Monitoring server started", z.Str("address", ln.Addr().String()))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}, nil
}
