// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/obolnetwork/wagyu/app/log"
	"github.com/obolnetwork/wagyu/depositcli"
)

type locateConfig struct {
	Log  log.Config
	Tool depositcli.Config
}

func newLocateCmd(runFunc func(context.Context, io.Writer, locateConfig) error) *cobra.Command {
	var config locateConfig

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the resolved staking deposit cli",
		Long:  "Resolves the staking deposit cli the wizards would use, installing python dependencies if required, and prints its location.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFunc(cmd.Context(), cmd.OutOrStdout(), config)
		},
	}

	bindLogFlags(cmd.Flags(), &config.Log)
	bindToolFlags(cmd.Flags(), &config.Tool)

	return cmd
}

func runLocate(ctx context.Context, out io.Writer, config locateConfig) error {
	if err := log.InitLogger(config.Log); err != nil {
		return err
	}

	loc, err := depositcli.NewLocator(config.Tool, depositcli.NewExecRunner()).Locate(ctx)
	if err != nil {
		return err
	}

	writeLocation(out, loc)

	return nil
}

func writeLocation(out io.Writer, loc depositcli.Location) {
	_, _ = fmt.Fprintf(out, "Kind:        %s\n", loc.Kind)
	_, _ = fmt.Fprintf(out, "Executable:  %s\n", loc.Executable)
	if loc.ScriptPath != "" {
		_, _ = fmt.Fprintf(out, "Script:      %s\n", loc.ScriptPath)
	}
	_, _ = fmt.Fprintf(out, "Word lists:  %s\n", loc.WordListDir)

	var keys []string
	for k := range loc.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		_, _ = fmt.Fprintf(out, "Env:         %s=%s\n", k, loc.Env[k])
	}
}
