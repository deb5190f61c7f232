// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package wizard

import (
	"context"
	"strconv"
	"strings"

	eth2p0 "github.com/attestantio/go-eth2-client/spec/phase0"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/z"
	"github.com/obolnetwork/wagyu/depositcli"
	"github.com/obolnetwork/wagyu/eth2util"
	"github.com/obolnetwork/wagyu/eth2util/keystore"
)

// NewCreateMnemonicFlow returns the flow generating a new mnemonic and validator keys.
func NewCreateMnemonicFlow(tool Tool, settings Settings) Flow {
	steps := []Step{
		{
			Key:        StepMnemonicGeneration,
			Title:      "Create a new Secret Recovery Phrase",
			Action:     createMnemonicAction(tool, settings),
			ErrorField: FieldMnemonic,
		},
		{
			Key:   StepMnemonicGeneration,
			Title: "Write down your Secret Recovery Phrase",
			Clear: []Field{FieldMnemonic},
		},
		{
			Key:    StepMnemonicGeneration,
			Title:  "Confirm your Secret Recovery Phrase",
			Fields: []Field{FieldVerifyMnemonic},
			Clear:  []Field{FieldVerifyMnemonic},
			Validate: func(v Values) []ValidationError {
				var errs validator
				errs.check(FieldVerifyMnemonic, ValidateVerifyMnemonic(v[FieldMnemonic], v[FieldVerifyMnemonic]))

				return errs
			},
		},
	}

	return Flow{
		Name:     "new-mnemonic",
		Steps:    append(steps, keySteps(tool, settings)...),
		Defaults: keyDefaults(),
	}
}

// NewExistingMnemonicFlow returns the flow generating validator keys from an existing mnemonic.
func NewExistingMnemonicFlow(tool Tool, settings Settings) Flow {
	return Flow{
		Name:     "existing-mnemonic",
		Steps:    append([]Step{importStep(tool)}, keySteps(tool, settings)...),
		Defaults: keyDefaults(),
	}
}

// NewBTECFlow returns the flow generating BLS to execution change files.
func NewBTECFlow(tool Tool, settings Settings) Flow {
	return Flow{
		Name: "bls-change",
		Steps: []Step{
			importStep(tool),
			{
				Key:    StepBTECConfiguration,
				Title:  "Withdrawal credentials",
				Fields: []Field{FieldIndex, FieldIndices, FieldCredentials, FieldExecutionAddress},
				Clear:  []Field{FieldIndex, FieldIndices, FieldCredentials, FieldExecutionAddress},
				Validate: func(v Values) []ValidationError {
					var errs validator
					errs.check(FieldIndex, ValidateIndex(v[FieldIndex]))
					errs.check(FieldIndices, ValidateIndices(v[FieldIndices]))
					errs.check(FieldCredentials, ValidateCredentials(v[FieldCredentials]))
					if len(errs) == 0 && len(eth2util.SplitList(v[FieldIndices])) != len(eth2util.SplitList(v[FieldCredentials])) {
						errs.check(FieldIndices, MsgIndicesLength)
					}
					errs.check(FieldExecutionAddress, ValidateAddress(v[FieldExecutionAddress], true))

					return errs
				},
				Action: func(ctx context.Context, v Values) (Values, error) {
					index, err := parseUint(v, FieldIndex)
					if err != nil {
						return nil, err
					}

					return nil, tool.ValidateBLSCredentials(ctx, depositcli.BLSCredentialsParams{
						Chain:                 settings.Network,
						Mnemonic:              normalizeMnemonic(v[FieldMnemonic]),
						Index:                 index,
						WithdrawalCredentials: normalizeList(v[FieldCredentials]),
					})
				},
				ErrorField:     FieldCredentials,
				FailureMessage: credentialsFailureMessage,
			},
			{
				Key:      StepBTECGeneration,
				Title:    "Select a folder for the BLS change files",
				Fields:   []Field{FieldFolder},
				Clear:    []Field{FieldFolder},
				Validate: validateFolderStep,
				Action: func(ctx context.Context, v Values) (Values, error) {
					index, err := parseUint(v, FieldIndex)
					if err != nil {
						return nil, err
					}

					return nil, tool.GenerateBLSChange(ctx, depositcli.BLSChangeParams{
						Folder:                v[FieldFolder],
						Chain:                 settings.Network,
						Mnemonic:              normalizeMnemonic(v[FieldMnemonic]),
						Index:                 index,
						Indices:               normalizeList(v[FieldIndices]),
						WithdrawalCredentials: normalizeList(v[FieldCredentials]),
						ExecutionAddress:      strings.TrimSpace(v[FieldExecutionAddress]),
					})
				},
				ErrorField: FieldFolder,
			},
			{
				Key:   StepFinishBTEC,
				Title: "BLS change files created",
			},
		},
		Defaults: Values{FieldIndex: "0"},
	}
}

// NewExitFlow returns the flow generating signed voluntary exit files.
func NewExitFlow(tool Tool, settings Settings) Flow {
	return Flow{
		Name: "exit",
		Steps: []Step{
			importStep(tool),
			{
				Key:    StepExitConfiguration,
				Title:  "Validators to exit",
				Fields: []Field{FieldIndex, FieldIndices, FieldEpoch},
				Clear:  []Field{FieldIndex, FieldIndices, FieldEpoch},
				Validate: func(v Values) []ValidationError {
					var errs validator
					errs.check(FieldIndex, ValidateIndex(v[FieldIndex]))
					errs.check(FieldIndices, ValidateIndices(v[FieldIndices]))
					errs.check(FieldEpoch, ValidateEpoch(v[FieldEpoch]))

					return errs
				},
			},
			{
				Key:      StepExitGeneration,
				Title:    "Select a folder for the exit transaction files",
				Fields:   []Field{FieldFolder},
				Clear:    []Field{FieldFolder},
				Validate: validateFolderStep,
				Action: func(ctx context.Context, v Values) (Values, error) {
					index, err := parseUint(v, FieldIndex)
					if err != nil {
						return nil, err
					}

					epoch, err := parseUint(v, FieldEpoch)
					if err != nil {
						return nil, err
					}

					return nil, tool.GenerateExitTransactions(ctx, depositcli.ExitParams{
						Folder:   v[FieldFolder],
						Chain:    settings.Network,
						Mnemonic: normalizeMnemonic(v[FieldMnemonic]),
						Index:    index,
						Epoch:    eth2p0.Epoch(epoch),
						Indices:  normalizeList(v[FieldIndices]),
					})
				},
				ErrorField: FieldFolder,
			},
			{
				Key:   StepFinishExit,
				Title: "Exit transaction files created",
			},
		},
		Defaults: Values{FieldIndex: "0", FieldEpoch: "0"},
	}
}

// NewKeystoreExitFlow returns the flow generating signed voluntary exit files from existing keystores.
func NewKeystoreExitFlow(tool Tool, settings Settings) Flow {
	return Flow{
		Name: "exit-keystore",
		Steps: []Step{
			{
				Key:    StepKeystoreSelection,
				Title:  "Select the folder containing your keystore files",
				Fields: []Field{FieldKeystoreFolder},
				Clear:  []Field{FieldKeystoreFolder, FieldKeystores},
				Validate: func(v Values) []ValidationError {
					var errs validator
					errs.check(FieldKeystoreFolder, ValidateKeystoreFolder(v[FieldKeystoreFolder]))

					return errs
				},
				Action:     discoverKeystores,
				ErrorField: FieldKeystoreFolder,
			},
			{
				Key:    StepKeystoreConfiguration,
				Title:  "Validator index and password of each keystore",
				Fields: []Field{FieldEpoch, FieldMasterPassword},
				Expand: keystoreFields,
				Clear:  []Field{FieldEpoch, FieldMasterPassword, FieldKeystores, FieldKeystoreFolder},
				Validate: func(v Values) []ValidationError {
					var errs validator
					errs.check(FieldEpoch, ValidateEpoch(v[FieldEpoch]))

					for i := range v.Keystores() {
						errs.check(ValidatorIndexField(i), ValidateValidatorIndex(v[ValidatorIndexField(i)]))
						if keystorePassword(v, i) == "" {
							errs.check(KeystorePasswordField(i), MsgKeystorePassword)
						}
					}

					return errs
				},
				Action:     verifyKeystorePasswords,
				ErrorField: FieldKeystoreFolder,
			},
			{
				Key:      StepExitGeneration,
				Title:    "Select a folder for the exit transaction files",
				Fields:   []Field{FieldFolder},
				Clear:    []Field{FieldFolder},
				Validate: validateFolderStep,
				Action: func(ctx context.Context, v Values) (Values, error) {
					epoch, err := parseUint(v, FieldEpoch)
					if err != nil {
						return nil, err
					}

					params := depositcli.KeystoreExitParams{
						Folder: v[FieldFolder],
						Chain:  settings.Network,
						Epoch:  eth2p0.Epoch(epoch),
					}

					for i, filename := range v.Keystores() {
						index, err := parseUint(v, ValidatorIndexField(i))
						if err != nil {
							return nil, err
						}

						params.Keystores = append(params.Keystores, depositcli.KeystoreExit{
							Keystore:       filename,
							Password:       keystorePassword(v, i),
							ValidatorIndex: eth2p0.ValidatorIndex(index),
						})
					}

					return nil, tool.GenerateExitTransactionsKeystore(ctx, params)
				},
				ErrorField: FieldFolder,
			},
			{
				Key:   StepFinishExit,
				Title: "Exit transaction files created",
			},
		},
		Defaults: Values{FieldEpoch: "0"},
	}
}

// discoverKeystores loads the keystore files of the selected folder.
func discoverKeystores(_ context.Context, v Values) (Values, error) {
	files, err := keystore.LoadFiles(v[FieldKeystoreFolder])
	if errors.Is(err, keystore.ErrNoKeystores) {
		return nil, ValidationErrors{{Field: FieldKeystoreFolder, Message: MsgKeystoreNotFound}}
	} else if err != nil {
		return nil, ValidationErrors{{Field: FieldKeystoreFolder, Message: MsgKeystoreParse}}
	}

	filenames := make([]string, 0, len(files))
	for _, file := range files {
		filenames = append(filenames, file.Filename)
	}

	return Values{FieldKeystores: strings.Join(filenames, "\n")}, nil
}

// verifyKeystorePasswords decrypts each keystore with its password before any exit is generated.
func verifyKeystorePasswords(_ context.Context, v Values) (Values, error) {
	var errs ValidationErrors
	for i, filename := range v.Keystores() {
		file, err := keystore.LoadFile(filename)
		if err != nil {
			return nil, ValidationErrors{{Field: FieldKeystoreFolder, Message: MsgKeystoreParse}}
		}

		if err := file.VerifyPassword(keystorePassword(v, i)); err != nil {
			errs = append(errs, ValidationError{Field: KeystorePasswordField(i), Message: MsgKeystorePasswordIncorrect})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return nil, nil
}

// keystoreFields returns the validator index and password fields of each discovered keystore.
func keystoreFields(v Values) []Field {
	var resp []Field
	for i := range v.Keystores() {
		resp = append(resp, ValidatorIndexField(i), KeystorePasswordField(i))
	}

	return resp
}

// keystorePassword returns the keystore's password, falling back to the master password.
func keystorePassword(v Values, i int) string {
	if password := v[KeystorePasswordField(i)]; password != "" {
		return password
	}

	return v[FieldMasterPassword]
}

// credentialsFailureMessage is used when credential validation fails without an error message.
func credentialsFailureMessage(stderr string) string {
	if stderr == "" {
		return MsgBLSCredentialsNoMatch
	}

	return ""
}

// importStep returns the step importing and validating an existing mnemonic.
func importStep(tool Tool) Step {
	return Step{
		Key:    StepMnemonicImport,
		Title:  "Enter your Secret Recovery Phrase",
		Fields: []Field{FieldMnemonic},
		Validate: func(v Values) []ValidationError {
			var errs validator
			errs.check(FieldMnemonic, ValidateMnemonic(v[FieldMnemonic]))

			return errs
		},
		Action: func(ctx context.Context, v Values) (Values, error) {
			return nil, tool.ValidateMnemonic(ctx, normalizeMnemonic(v[FieldMnemonic]))
		},
		ErrorField:     FieldMnemonic,
		FailureMessage: invalidMnemonicMessage,
	}
}

// keySteps returns the key configuration and generation steps shared by the mnemonic flows.
func keySteps(tool Tool, settings Settings) []Step {
	return []Step{
		{
			Key:    StepKeyConfiguration,
			Title:  "Key configuration",
			Fields: []Field{FieldNumKeys, FieldIndex, FieldWithdrawalAddress, FieldPassword},
			Clear:  []Field{FieldNumKeys, FieldIndex, FieldWithdrawalAddress, FieldPassword},
			Validate: func(v Values) []ValidationError {
				var errs validator
				errs.check(FieldNumKeys, ValidateNumKeys(v[FieldNumKeys]))
				errs.check(FieldIndex, ValidateIndex(v[FieldIndex]))
				errs.check(FieldWithdrawalAddress, ValidateAddress(v[FieldWithdrawalAddress], false))
				errs.check(FieldPassword, ValidatePassword(v[FieldPassword]))

				return errs
			},
		},
		{
			Key:    StepKeyConfiguration,
			Title:  "Confirm your password",
			Fields: []Field{FieldVerifyPassword},
			Clear:  []Field{FieldPassword, FieldVerifyPassword},
			Validate: func(v Values) []ValidationError {
				var errs validator
				errs.check(FieldVerifyPassword, ValidateVerifyPassword(v[FieldPassword], v[FieldVerifyPassword]))

				return errs
			},
		},
		{
			Key:      StepKeyGeneration,
			Title:    "Select a folder for the keys",
			Fields:   []Field{FieldFolder},
			Clear:    []Field{FieldFolder},
			Validate: validateFolderStep,
			Action: func(ctx context.Context, v Values) (Values, error) {
				index, err := parseUint(v, FieldIndex)
				if err != nil {
					return nil, err
				}

				count, err := parseUint(v, FieldNumKeys)
				if err != nil {
					return nil, err
				}

				return nil, tool.GenerateKeys(ctx, depositcli.KeysParams{
					Mnemonic:          normalizeMnemonic(v[FieldMnemonic]),
					Index:             index,
					Count:             count,
					Folder:            v[FieldFolder],
					Network:           settings.Network,
					Password:          v[FieldPassword],
					WithdrawalAddress: strings.TrimSpace(v[FieldWithdrawalAddress]),
				})
			},
			ErrorField: FieldFolder,
		},
		{
			Key:   StepFinish,
			Title: "Validator keys created",
		},
	}
}

func keyDefaults() Values {
	return Values{FieldNumKeys: "1", FieldIndex: "0"}
}

func createMnemonicAction(tool Tool, settings Settings) func(context.Context, Values) (Values, error) {
	return func(ctx context.Context, _ Values) (Values, error) {
		words, err := tool.CreateMnemonic(ctx, settings.Language)
		if err != nil {
			return nil, err
		}

		return Values{FieldMnemonic: strings.Join(words, " ")}, nil
	}
}

func validateFolderStep(v Values) []ValidationError {
	var errs validator
	errs.check(FieldFolder, ValidateFolder(v[FieldFolder]))

	return errs
}

func parseUint(v Values, field Field) (uint64, error) {
	resp, err := strconv.ParseUint(strings.TrimSpace(v[field]), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse field", z.Str("field", string(field)))
	}

	return resp, nil
}

func normalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(mnemonic), " ")
}

func normalizeList(list string) string {
	return strings.Join(eth2util.SplitList(list), ",")
}
