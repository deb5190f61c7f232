// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package cmd

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obolnetwork/wagyu/app/log"
	"github.com/obolnetwork/wagyu/depositcli"
	"github.com/obolnetwork/wagyu/wizard"
)

func TestCmdFlags(t *testing.T) {
	defaultTool := depositcli.DefaultConfig()

	withTool := func(fn func(*depositcli.Config)) depositcli.Config {
		conf := defaultTool
		fn(&conf)

		return conf
	}

	tests := []struct {
		Name          string
		Args          []string
		Envs          map[string]string
		VersionConfig *versionConfig
		WizardConfig  *wizardConfig
		FlowName      string
		LocateConfig  *locateConfig
		ErrorMsg      string
	}{
		{
			Name:          "version verbose",
			Args:          slice("version", "--verbose"),
			VersionConfig: &versionConfig{Verbose: true},
		},
		{
			Name:          "version verbose env",
			Args:          slice("version"),
			Envs:          map[string]string{"WAGYU_VERBOSE": "true"},
			VersionConfig: &versionConfig{Verbose: true},
		},
		{
			Name: "new mnemonic defaults",
			Args: slice("new-mnemonic"),
			WizardConfig: &wizardConfig{
				Log:      log.DefaultConfig(),
				Tool:     defaultTool,
				Network:  "mainnet",
				Language: "english",
			},
			FlowName: "new-mnemonic",
		},
		{
			Name: "existing mnemonic flags",
			Args: slice("existing-mnemonic", "--network=holesky", "--build-dir=/opt/wagyu/build", "--trace-stdout"),
			WizardConfig: &wizardConfig{
				Log:         log.DefaultConfig(),
				Tool:        withTool(func(c *depositcli.Config) { c.BuildDir = "/opt/wagyu/build" }),
				Network:     "holesky",
				Language:    "english",
				TraceStdout: true,
			},
			FlowName: "existing-mnemonic",
		},
		{
			Name: "bls change env",
			Args: slice("bls-change", "--packages-dir=/tmp/packages"),
			Envs: map[string]string{
				"WAGYU_NETWORK":            "hoodi",
				"WAGYU_PACKAGES_DIR":       "/ignored",
				"WAGYU_MONITORING_ADDRESS": "127.0.0.1:3630",
				"WAGYU_LOG_LEVEL":          "debug",
			},
			WizardConfig: &wizardConfig{
				Log: log.Config{
					Level:  "debug",
					Format: "console",
					Color:  "auto",
				},
				Tool:           withTool(func(c *depositcli.Config) { c.PackagesDir = "/tmp/packages" }),
				Network:        "hoodi",
				Language:       "english",
				MonitoringAddr: "127.0.0.1:3630",
			},
			FlowName: "bls-change",
		},
		{
			Name: "exit",
			Args: slice("exit", "--network=gnosis", "--log-format=logfmt"),
			WizardConfig: &wizardConfig{
				Log: log.Config{
					Level:  "info",
					Format: "logfmt",
					Color:  "auto",
				},
				Tool:     defaultTool,
				Network:  "gnosis",
				Language: "english",
			},
			FlowName: "exit",
		},
		{
			Name: "exit keystore",
			Args: slice("exit-keystore", "--network=sepolia"),
			WizardConfig: &wizardConfig{
				Log:      log.DefaultConfig(),
				Tool:     defaultTool,
				Network:  "sepolia",
				Language: "english",
			},
			FlowName: "exit-keystore",
		},
		{
			Name: "locate",
			Args: slice("locate", "--vendor-dir=vendor", "--scripts-dir=scripts"),
			LocateConfig: &locateConfig{
				Log: log.DefaultConfig(),
				Tool: withTool(func(c *depositcli.Config) {
					c.VendorDir = "vendor"
					c.ScriptsDir = "scripts"
				}),
			},
		},
		{
			Name:     "unknown flag",
			Args:     slice("new-mnemonic", "--mnemonic=foo"),
			ErrorMsg: "unknown flag: --mnemonic",
		},
		{
			Name:     "positional args",
			Args:     slice("exit", "foo"),
			ErrorMsg: `unknown command "foo" for "wagyu exit"`,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			runWizardFunc := func(_ context.Context, config wizardConfig, newFlow flowFunc) error {
				require.NotNil(t, test.WizardConfig)
				require.Equal(t, *test.WizardConfig, config)
				require.Equal(t, test.FlowName, newFlow(nil, wizard.Settings{}).Name)

				return nil
			}

			root := newRootCmd(
				newVersionCmd(func(_ io.Writer, config versionConfig) {
					require.NotNil(t, test.VersionConfig)
					require.Equal(t, *test.VersionConfig, config)
				}),
				newWizardCmd("new-mnemonic", "", wizard.NewCreateMnemonicFlow, runWizardFunc),
				newWizardCmd("existing-mnemonic", "", wizard.NewExistingMnemonicFlow, runWizardFunc),
				newWizardCmd("bls-change", "", wizard.NewBTECFlow, runWizardFunc),
				newWizardCmd("exit", "", wizard.NewExitFlow, runWizardFunc),
				newWizardCmd("exit-keystore", "", wizard.NewKeystoreExitFlow, runWizardFunc),
				newLocateCmd(func(_ context.Context, _ io.Writer, config locateConfig) error {
					require.NotNil(t, test.LocateConfig)
					require.Equal(t, *test.LocateConfig, config)

					return nil
				}),
			)

			// Set envs (only for duration of the test)
			for k, v := range test.Envs {
				t.Setenv(k, v)
			}

			root.SetArgs(test.Args)
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)

			if test.ErrorMsg != "" {
				require.ErrorContains(t, root.Execute(), test.ErrorMsg)
			} else {
				require.NoError(t, root.Execute())
			}
		})
	}
}

func TestNewCommands(t *testing.T) {
	root := New()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}

	require.Subset(t, names, []string{"new-mnemonic", "existing-mnemonic", "bls-change", "exit", "exit-keystore", "locate", "version"})
}

func TestRunWizardUnsupportedNetwork(t *testing.T) {
	err := runWizard(context.Background(), wizardConfig{
		Log:     log.DefaultConfig(),
		Network: "goerli",
	}, wizard.NewExitFlow)
	require.ErrorContains(t, err, "unsupported network")
}

// slice is a convenience function for creating string slice literals.
func slice(strs ...string) []string {
	return strs
}
