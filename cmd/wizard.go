// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package cmd

import (
	"context"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/log"
	"github.com/obolnetwork/wagyu/app/tracer"
	"github.com/obolnetwork/wagyu/app/version"
	"github.com/obolnetwork/wagyu/app/z"
	"github.com/obolnetwork/wagyu/depositcli"
	"github.com/obolnetwork/wagyu/eth2util"
	"github.com/obolnetwork/wagyu/wizard"
)

// flowFunc returns a wizard flow using the tool.
type flowFunc func(wizard.Tool, wizard.Settings) wizard.Flow

type wizardConfig struct {
	Log            log.Config
	Tool           depositcli.Config
	Network        string
	Language       string
	MonitoringAddr string
	TraceStdout    bool
}

// newWizardCmd returns a command running the flow returned by newFlow.
func newWizardCmd(use, short string, newFlow flowFunc, runFunc func(context.Context, wizardConfig, flowFunc) error) *cobra.Command {
	var config wizardConfig

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFunc(cmd.Context(), config, newFlow)
		},
	}

	bindLogFlags(cmd.Flags(), &config.Log)
	bindToolFlags(cmd.Flags(), &config.Tool)
	bindNetworkFlags(cmd.Flags(), &config.Network, &config.Language)
	bindMonitoringFlags(cmd.Flags(), &config.MonitoringAddr, &config.TraceStdout)

	return cmd
}

// runWizard runs the flow interactively on stdin and stdout.
func runWizard(ctx context.Context, conf wizardConfig, newFlow flowFunc) error {
	if err := log.InitLogger(conf.Log); err != nil {
		return err
	}

	network, err := eth2util.NetworkFromName(conf.Network)
	if err != nil {
		return errors.Wrap(err, "unsupported network", z.Strs("supported", eth2util.SupportedNetworks()))
	}

	if conf.TraceStdout {
		stopTracer, err := tracer.Init(tracer.WithStdOut(os.Stderr))
		if err != nil {
			return err
		}
		defer func() {
			if err := stopTracer(context.Background()); err != nil {
				log.Error(ctx, "Failed to flush traces", err)
			}
		}()
	}

	if conf.MonitoringAddr != "" {
		stop, err := startMonitoring(ctx, conf.MonitoringAddr, network.Name)
		if err != nil {
			return err
		}
		defer stop()
	}

	ctx = log.WithCtx(ctx, z.Str("network", network.Name), z.U64("chain_id", network.ChainID))
	version.LogInfo(ctx, "Wagyu starting")

	runner := depositcli.NewExecRunner()
	client := depositcli.NewClient(
		depositcli.NewLocator(conf.Tool, runner),
		depositcli.NewInvoker(runner, clockwork.NewRealClock()),
	)

	flow := newFlow(client, wizard.Settings{Network: network.Name, Language: conf.Language})

	return newPrompt(os.Stdin, os.Stdout).Run(ctx, flow)
}
