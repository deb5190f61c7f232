// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package cmd

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/obolnetwork/wagyu/app/log"
	"github.com/obolnetwork/wagyu/depositcli"
	"github.com/obolnetwork/wagyu/eth2util"
)

func bindLogFlags(flags *pflag.FlagSet, config *log.Config) {
	def := log.DefaultConfig()

	flags.StringVar(&config.Format, "log-format", def.Format, "Log format; console, logfmt or json")
	flags.StringVar(&config.Level, "log-level", def.Level, "Log level; debug, info, warn or error")
	flags.StringVar(&config.Color, "log-color", def.Color, "Log color; auto, force, disable.")
}

func bindToolFlags(flags *pflag.FlagSet, config *depositcli.Config) {
	def := depositcli.DefaultConfig()
	config.GOOS = def.GOOS

	flags.StringVar(&config.ResourcesDir, "resources-dir", def.ResourcesDir, "Resources directory of the packaged application. The bundled deposit cli is expected in ../build/bin relative to it.")
	flags.StringVar(&config.BuildDir, "build-dir", def.BuildDir, "Local build output directory containing a single-file deposit cli in bin/.")
	flags.StringVar(&config.VendorDir, "vendor-dir", def.VendorDir, "Vendored staking deposit cli source used with the system python interpreter.")
	flags.StringVar(&config.ScriptsDir, "scripts-dir", def.ScriptsDir, "Directory containing the python deposit cli proxy script.")
	flags.StringVar(&config.PackagesDir, "packages-dir", def.PackagesDir, "Directory the python dependencies are installed into on first use.")
}

func bindNetworkFlags(flags *pflag.FlagSet, network, language *string) {
	flags.StringVar(network, "network", eth2util.Mainnet.Name, "Ethereum network to generate files for. Options: "+strings.Join(eth2util.SupportedNetworks(), ", ")+".")
	flags.StringVar(language, "language", "english", "Language of the generated Secret Recovery Phrase.")
}

func bindMonitoringFlags(flags *pflag.FlagSet, addr *string, traceStdout *bool) {
	flags.StringVar(addr, "monitoring-address", "", "Listening address (ip and port) for the prometheus monitoring http server. Disabled if empty.")
	flags.BoolVar(traceStdout, "trace-stdout", false, "Writes OpenTelemetry spans of deposit cli invocations to stderr.")
}
