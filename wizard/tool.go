// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package wizard

import (
	"context"

	"github.com/obolnetwork/wagyu/depositcli"
)

// Tool runs deposit cli subcommands, it is implemented by depositcli.Client.
type Tool interface {
	CreateMnemonic(ctx context.Context, language string) ([]string, error)
	GenerateKeys(ctx context.Context, params depositcli.KeysParams) error
	ValidateMnemonic(ctx context.Context, mnemonic string) error
	ValidateBLSCredentials(ctx context.Context, params depositcli.BLSCredentialsParams) error
	GenerateBLSChange(ctx context.Context, params depositcli.BLSChangeParams) error
	GenerateExitTransactions(ctx context.Context, params depositcli.ExitParams) error
	GenerateExitTransactionsKeystore(ctx context.Context, params depositcli.KeystoreExitParams) error
}

var _ Tool = (*depositcli.Client)(nil)

// Settings are the session wide inputs fixed when the wizard starts.
type Settings struct {
	Network  string
	Language string
}
