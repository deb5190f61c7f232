// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

// Package cmd implements the wagyu command-line interface.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/z"
	"github.com/obolnetwork/wagyu/wizard"
)

const (
	// The name of our config file, without the file extension because
	// viper supports many different config file languages.
	defaultConfigFilename = "wagyu"

	// The environment variable prefix of all environment variables bound to our command line flags.
	envPrefix = "wagyu"
)

// New returns a new root cobra command that handles our command line tool.
func New() *cobra.Command {
	return newRootCmd(
		newWizardCmd("new-mnemonic", "Generate a new Secret Recovery Phrase and validator keys",
			wizard.NewCreateMnemonicFlow, runWizard),
		newWizardCmd("existing-mnemonic", "Generate validator keys from an existing Secret Recovery Phrase",
			wizard.NewExistingMnemonicFlow, runWizard),
		newWizardCmd("bls-change", "Generate BLS to execution change files for withdrawal credentials",
			wizard.NewBTECFlow, runWizard),
		newWizardCmd("exit", "Generate signed voluntary exit transaction files",
			wizard.NewExitFlow, runWizard),
		newWizardCmd("exit-keystore", "Generate signed voluntary exit transaction files from keystores",
			wizard.NewKeystoreExitFlow, runWizard),
		newLocateCmd(runLocate),
		newVersionCmd(runVersionCmd),
	)
}

func newRootCmd(cmds ...*cobra.Command) *cobra.Command {
	root := &cobra.Command{
		Use:   "wagyu",
		Short: "Wagyu - Ethereum validator key generation wizard",
		Long: `Wagyu walks you through generating a Secret Recovery Phrase, validator keys, BLS to execution
change files and exit transactions using the staking deposit cli.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeConfig(cmd)
		},
	}

	root.AddCommand(cmds...)

	return root
}

// initializeConfig sets up the general viper config and binds the cobra flags to the viper flags.
func initializeConfig(cmd *cobra.Command) error {
	v := viper.New()

	v.SetConfigName(defaultConfigFilename)
	v.AddConfigPath(".")

	// Attempt to read the config file, gracefully ignoring errors
	// caused by a config file not being found. Return an error
	// if we cannot parse the config file.
	if err := v.ReadInConfig(); err != nil {
		// It's okay if there isn't a config file
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return errors.Wrap(err, "read config")
		}
	}

	v.SetEnvPrefix(envPrefix)
	// Environment variables can't have dashes in them, so bind them to their equivalent
	// keys with underscores.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// Bind the current command's flags to viper
	return bindFlags(cmd.Flags(), v)
}

// bindFlags binds each cobra flag to its associated viper configuration (config file and environment variable).
func bindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	var lastErr error

	flags.VisitAll(func(f *pflag.Flag) {
		// Cobra provided flags take priority
		if f.Changed {
			return
		}

		// Define all the viper flag names to check
		viperNames := []string{
			f.Name,
			strings.ReplaceAll(f.Name, "_", "."), // TOML uses "." to indicate hierarchy, while we use "_" in this example.
		}

		for _, name := range viperNames {
			if !v.IsSet(name) {
				continue
			}

			val := v.Get(name)
			if err := flags.Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = errors.Wrap(err, "set flag from config", z.Str("flag", f.Name))
			}

			break
		}
	})

	return lastErr
}
