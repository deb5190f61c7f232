// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package depositcli

import (
	"context"
	"strconv"
	"strings"
	"sync"

	eth2p0 "github.com/attestantio/go-eth2-client/spec/phase0"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/log"
	"github.com/obolnetwork/wagyu/app/z"
)

// KeysParams are the inputs of GenerateKeys.
type KeysParams struct {
	Mnemonic string
	Index    uint64
	Count    uint64
	Folder   string
	Network  string
	Password string
	// WithdrawalAddress is optional, the withdrawal flag is omitted when empty.
	WithdrawalAddress string
}

// BLSCredentialsParams are the inputs of ValidateBLSCredentials.
type BLSCredentialsParams struct {
	Chain                 string
	Mnemonic              string
	Index                 uint64
	WithdrawalCredentials string
}

// BLSChangeParams are the inputs of GenerateBLSChange.
type BLSChangeParams struct {
	Folder                string
	Chain                 string
	Mnemonic              string
	Index                 uint64
	Indices               string
	WithdrawalCredentials string
	ExecutionAddress      string
}

// ExitParams are the inputs of GenerateExitTransactions.
type ExitParams struct {
	Folder   string
	Chain    string
	Mnemonic string
	Index    uint64
	Epoch    eth2p0.Epoch
	Indices  string
}

// KeystoreExit is a single keystore of KeystoreExitParams.
type KeystoreExit struct {
	Keystore       string
	Password       string
	ValidatorIndex eth2p0.ValidatorIndex
}

// KeystoreExitParams are the inputs of GenerateExitTransactionsKeystore.
type KeystoreExitParams struct {
	Folder    string
	Chain     string
	Epoch     eth2p0.Epoch
	Keystores []KeystoreExit
}

// NewClient returns a new deposit cli client. The location is resolved on first use
// and reused by every subsequent call of the client.
func NewClient(locator *Locator, invoker *Invoker) *Client {
	return &Client{
		locator: locator,
		invoker: invoker,
	}
}

// Client runs deposit cli subcommands for a single session.
type Client struct {
	locator *Locator
	invoker *Invoker

	mu  sync.Mutex
	loc *Location
}

// Location returns the session's resolved location, resolving it on first call.
// Resolution errors are not cached.
func (c *Client) Location(ctx context.Context) (Location, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loc != nil {
		return *c.loc, nil
	}

	loc, err := c.locator.Locate(ctx)
	if err != nil {
		return Location{}, err
	}

	c.loc = &loc

	return loc, nil
}

// CreateMnemonic returns the words of a new mnemonic in the given language.
func (c *Client) CreateMnemonic(ctx context.Context, language string) ([]string, error) {
	res, err := c.run(ctx, createMnemonicRequest(language))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Mnemonic string `json:"mnemonic"`
	}
	if err := res.JSON(&resp); err != nil {
		return nil, errors.Wrap(err, "parse create mnemonic output")
	}

	words := strings.Fields(resp.Mnemonic)
	if len(words) == 0 {
		return nil, errors.New("empty mnemonic output")
	}

	log.Debug(ctx, "Mnemonic created", z.Secret("mnemonic", resp.Mnemonic))

	return words, nil
}

// GenerateKeys writes keystores and deposit data into the params folder.
func (c *Client) GenerateKeys(ctx context.Context, params KeysParams) error {
	_, err := c.run(ctx, generateKeysRequest(params))
	return err
}

// ValidateMnemonic returns a Failure if the mnemonic is invalid.
func (c *Client) ValidateMnemonic(ctx context.Context, mnemonic string) error {
	_, err := c.run(ctx, validateMnemonicRequest(mnemonic))
	return err
}

// ValidateBLSCredentials returns a Failure if the withdrawal credentials
// cannot be derived from the mnemonic starting at the index.
func (c *Client) ValidateBLSCredentials(ctx context.Context, params BLSCredentialsParams) error {
	_, err := c.run(ctx, validateBLSCredentialsRequest(params))
	return err
}

// GenerateBLSChange writes BLS to execution change files into the params folder.
func (c *Client) GenerateBLSChange(ctx context.Context, params BLSChangeParams) error {
	_, err := c.run(ctx, blsChangeRequest(params))
	return err
}

// GenerateExitTransactions writes signed voluntary exit files into the params folder.
func (c *Client) GenerateExitTransactions(ctx context.Context, params ExitParams) error {
	_, err := c.run(ctx, exitTransactionRequest(params))
	return err
}

// GenerateExitTransactionsKeystore writes a signed voluntary exit file per keystore into the params folder.
// Keystores are processed in order, the first failure is returned.
func (c *Client) GenerateExitTransactionsKeystore(ctx context.Context, params KeystoreExitParams) error {
	if len(params.Keystores) == 0 {
		return errors.New("no keystores")
	}

	for i, ks := range params.Keystores {
		if _, err := c.run(ctx, exitKeystoreRequest(params, ks)); err != nil {
			return err
		}

		log.Debug(ctx, "Exit transaction created",
			z.Int("keystore", i), z.U64("validator_index", uint64(ks.ValidatorIndex)))
	}

	return nil
}

// run resolves the location, invokes the request and converts non-zero exits into a Failure.
func (c *Client) run(ctx context.Context, req Request) (Result, error) {
	loc, err := c.Location(ctx)
	if err != nil {
		return Result{}, err
	}

	res, err := c.invoker.Invoke(ctx, loc, req)
	if err != nil {
		return Result{}, err
	} else if !res.Success() {
		return res, &Failure{
			Subcommand: req.Subcommand,
			ExitCode:   res.ExitCode,
			Stderr:     res.Stderr,
			Stdout:     res.Stdout,
		}
	}

	return res, nil
}

func createMnemonicRequest(language string) Request {
	return Request{
		Subcommand: SubcommandCreateMnemonic,
		WordList:   true,
		Args:       []string{"--language", language},
	}
}

func generateKeysRequest(p KeysParams) Request {
	return Request{
		Subcommand: SubcommandGenerateKeys,
		Flags:      []Flag{{Name: "--eth1_withdrawal_address", Value: p.WithdrawalAddress}},
		WordList:   true,
		Args: []string{
			p.Mnemonic,
			strconv.FormatUint(p.Index, 10),
			strconv.FormatUint(p.Count, 10),
			p.Folder,
			strings.ToLower(p.Network),
			p.Password,
		},
	}
}

func validateMnemonicRequest(mnemonic string) Request {
	return Request{
		Subcommand: SubcommandValidateMnemonic,
		WordList:   true,
		Args:       []string{mnemonic},
	}
}

func validateBLSCredentialsRequest(p BLSCredentialsParams) Request {
	return Request{
		Subcommand: SubcommandValidateBLSCredentials,
		Args: []string{
			strings.ToLower(p.Chain),
			p.Mnemonic,
			strconv.FormatUint(p.Index, 10),
			p.WithdrawalCredentials,
		},
	}
}

func blsChangeRequest(p BLSChangeParams) Request {
	return Request{
		Subcommand: SubcommandGenerateBLSChange,
		Args: []string{
			p.Folder,
			strings.ToLower(p.Chain),
			p.Mnemonic,
			strconv.FormatUint(p.Index, 10),
			p.Indices,
			p.WithdrawalCredentials,
			p.ExecutionAddress,
		},
	}
}

func exitTransactionRequest(p ExitParams) Request {
	return Request{
		Subcommand: SubcommandGenerateExitTransaction,
		Args: []string{
			p.Folder,
			strings.ToLower(p.Chain),
			p.Mnemonic,
			strconv.FormatUint(p.Index, 10),
			strconv.FormatUint(uint64(p.Epoch), 10),
			p.Indices,
		},
	}
}

func exitKeystoreRequest(p KeystoreExitParams, ks KeystoreExit) Request {
	return Request{
		Subcommand: SubcommandGenerateExitKeystore,
		Args: []string{
			p.Folder,
			strings.ToLower(p.Chain),
			ks.Keystore,
			ks.Password,
			strconv.FormatUint(uint64(ks.ValidatorIndex), 10),
			strconv.FormatUint(uint64(p.Epoch), 10),
		},
	}
}
