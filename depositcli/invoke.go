// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package depositcli

import (
	"context"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/obolnetwork/wagyu/app/log"
	"github.com/obolnetwork/wagyu/app/tracer"
	"github.com/obolnetwork/wagyu/app/z"
)

// Subcommand is a deposit cli proxy subcommand.
type Subcommand string

const (
	SubcommandCreateMnemonic          Subcommand = "create_mnemonic"
	SubcommandGenerateKeys            Subcommand = "generate_keys"
	SubcommandValidateMnemonic        Subcommand = "validate_mnemonic"
	SubcommandValidateBLSCredentials  Subcommand = "validate_bls_credentials"
	SubcommandGenerateBLSChange       Subcommand = "bls_change"
	SubcommandGenerateExitTransaction Subcommand = "exit_transaction_mnemonic"
	SubcommandGenerateExitKeystore    Subcommand = "exit_transaction_keystore"
)

const (
	// progressPeriod is the period at which a running invocation is checked.
	progressPeriod = 5 * time.Second
	// progressLogPeriod limits the "still running" logs of a single invocation.
	progressLogPeriod = 30 * time.Second
)

// Flag is a named option emitted before positional arguments. Flags with empty values are omitted.
type Flag struct {
	Name  string
	Value string
}

// Request is a single deposit cli invocation.
type Request struct {
	Subcommand Subcommand
	Flags      []Flag
	// WordList inserts the location's word list directory as the first positional argument.
	WordList bool
	Args     []string
}

// NewInvoker returns an Invoker running processes via runner.
func NewInvoker(runner Runner, clock clockwork.Clock) *Invoker {
	return &Invoker{
		runner: runner,
		clock:  clock,
	}
}

// Invoker runs requests against a resolved Location.
type Invoker struct {
	runner Runner
	clock  clockwork.Clock
}

// Invoke runs the request and returns its result. A non-zero exit status is not an error,
// errors are only returned if the process could not be started.
// Arguments are never logged since they contain secrets.
func (i *Invoker) Invoke(ctx context.Context, loc Location, req Request) (Result, error) {
	ctx = log.WithTopic(ctx, "depositcli")
	ctx, span := tracer.Start(ctx, "depositcli/invoke", trace.WithAttributes(
		attribute.String("subcommand", string(req.Subcommand)),
		attribute.String("kind", loc.Kind.String()),
	))
	defer span.End()

	t0 := i.clock.Now()
	stopProgress := i.logProgress(ctx, req.Subcommand, t0)
	res, err := i.runner.Run(ctx, Command{
		Path: loc.Executable,
		Args: loc.Argv(req),
		Env:  loc.Environ(os.Environ()),
	})
	stopProgress()
	duration := i.clock.Since(t0)

	durationHistogram.WithLabelValues(string(req.Subcommand)).Observe(duration.Seconds())

	if err != nil {
		invocationsCounter.WithLabelValues(string(req.Subcommand), resultError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "spawn failed")

		return Result{}, err
	}

	span.SetAttributes(attribute.Int("exit_code", res.ExitCode))

	if !res.Success() {
		invocationsCounter.WithLabelValues(string(req.Subcommand), resultFailure).Inc()
		span.SetStatus(codes.Error, "non-zero exit")
		log.Debug(ctx, "Deposit cli failed",
			z.Str("subcommand", string(req.Subcommand)),
			z.Int("exit_code", res.ExitCode),
			z.Any("duration", duration),
		)

		return res, nil
	}

	invocationsCounter.WithLabelValues(string(req.Subcommand), resultSuccess).Inc()
	log.Debug(ctx, "Deposit cli succeeded",
		z.Str("subcommand", string(req.Subcommand)),
		z.Any("duration", duration),
	)

	return res, nil
}

// logProgress logs that the invocation is still running until the returned function is called.
// Logs are rate limited to one per progressLogPeriod.
func (i *Invoker) logProgress(ctx context.Context, subcommand Subcommand, t0 time.Time) func() {
	ticker := i.clock.NewTicker(progressPeriod)
	filter := log.Filter(log.WithFilterRateLimit(rate.Every(progressLogPeriod)))
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			select {
			case <-quit:
				return
			case <-ticker.Chan():
				log.Info(ctx, "Deposit cli still running",
					z.Str("subcommand", string(subcommand)),
					z.Str("elapsed", i.clock.Since(t0).Round(time.Second).String()),
					filter,
				)
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(quit)
		<-done
	}
}
