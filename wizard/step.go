// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package wizard

import (
	"context"
	"strconv"
	"strings"
)

// StepKey identifies a wizard step.
type StepKey int

const (
	StepUnknown StepKey = iota
	StepMnemonicImport
	StepMnemonicGeneration
	StepKeyConfiguration
	StepKeyGeneration
	StepFinish
	StepBTECConfiguration
	StepBTECGeneration
	StepFinishBTEC
	StepExitConfiguration
	StepExitGeneration
	StepFinishExit
	StepKeystoreSelection
	StepKeystoreConfiguration
)

var stepKeyNames = map[StepKey]string{
	StepMnemonicImport:        "MnemonicImport",
	StepMnemonicGeneration:    "MnemonicGeneration",
	StepKeyConfiguration:      "KeyConfiguration",
	StepKeyGeneration:         "KeyGeneration",
	StepFinish:                "Finish",
	StepBTECConfiguration:     "BTECConfiguration",
	StepBTECGeneration:        "BTECGeneration",
	StepFinishBTEC:            "FinishBTEC",
	StepExitConfiguration:     "ExitConfiguration",
	StepExitGeneration:        "ExitGeneration",
	StepFinishExit:            "FinishExit",
	StepKeystoreSelection:     "KeystoreSelection",
	StepKeystoreConfiguration: "KeystoreConfiguration",
}

func (k StepKey) String() string {
	if name, ok := stepKeyNames[k]; ok {
		return name
	}

	return "Unknown"
}

// Field identifies a value collected by the wizard.
type Field string

const (
	FieldMnemonic          Field = "mnemonic"
	FieldVerifyMnemonic    Field = "verify_mnemonic"
	FieldNumKeys           Field = "num_keys"
	FieldIndex             Field = "index"
	FieldWithdrawalAddress Field = "withdrawal_address"
	FieldPassword          Field = "password"
	FieldVerifyPassword    Field = "verify_password"
	FieldFolder            Field = "folder"
	FieldIndices           Field = "indices"
	FieldCredentials       Field = "bls_credentials"
	FieldExecutionAddress  Field = "execution_address"
	FieldEpoch             Field = "epoch"
	FieldKeystoreFolder    Field = "keystore_folder"
	FieldMasterPassword    Field = "master_password"
	// FieldKeystores lists the discovered keystore files, one per line. It is not user input.
	FieldKeystores Field = "keystores"
)

const (
	validatorIndexPrefix   = "validator_index_"
	keystorePasswordPrefix = "keystore_password_"
)

// ValidatorIndexField returns the validator index field of the i'th discovered keystore.
func ValidatorIndexField(i int) Field {
	return Field(validatorIndexPrefix + strconv.Itoa(i))
}

// KeystorePasswordField returns the password field of the i'th discovered keystore.
func KeystorePasswordField(i int) Field {
	return Field(keystorePasswordPrefix + strconv.Itoa(i))
}

// KeystoreIndex returns the keystore index of a per keystore field and true, or false
// if the field is not a per keystore field.
func (f Field) KeystoreIndex() (int, bool) {
	for _, prefix := range []string{validatorIndexPrefix, keystorePasswordPrefix} {
		if suffix, ok := strings.CutPrefix(string(f), prefix); ok {
			i, err := strconv.Atoi(suffix)
			return i, err == nil
		}
	}

	return 0, false
}

// Secret returns true if the field value must not be echoed or logged.
func (f Field) Secret() bool {
	switch f {
	case FieldMnemonic, FieldVerifyMnemonic, FieldPassword, FieldVerifyPassword, FieldMasterPassword:
		return true
	default:
		return strings.HasPrefix(string(f), keystorePasswordPrefix)
	}
}

// Keystores returns the discovered keystore files.
func (v Values) Keystores() []string {
	var resp []string
	for _, line := range strings.Split(v[FieldKeystores], "\n") {
		if line = strings.TrimSpace(line); line != "" {
			resp = append(resp, line)
		}
	}

	return resp
}

// Values is a snapshot of collected field values.
type Values map[Field]string

func (v Values) clone() Values {
	resp := make(Values, len(v))
	for k, val := range v {
		resp[k] = val
	}

	return resp
}

// Step is a single wizard step.
type Step struct {
	Key   StepKey
	Title string
	// Fields are the fields set while this step is active.
	Fields []Field
	// Expand optionally returns further fields derived from the collected values.
	// They are set while this step is active and cleared when retreating from it.
	Expand func(Values) []Field
	// Clear are the fields reset to their flow defaults when retreating from this step.
	Clear []Field
	// Validate returns inline errors, empty if the step may advance.
	Validate func(Values) []ValidationError
	// Action is the optional tool invocation run before advancing. It returns field updates.
	Action func(context.Context, Values) (Values, error)
	// ErrorField receives action failure messages.
	ErrorField Field
	// FailureMessage optionally maps a failed invocation's stderr to a user message.
	// An empty result falls back to the stderr text.
	FailureMessage func(stderr string) string
}

// FieldsFor returns the fields set while this step is active given the collected values.
func (s Step) FieldsFor(v Values) []Field {
	resp := append([]Field(nil), s.Fields...)
	if s.Expand != nil {
		resp = append(resp, s.Expand(v)...)
	}

	return resp
}

// clears returns the fields reset when retreating from this step.
func (s Step) clears(v Values) []Field {
	resp := append([]Field(nil), s.Clear...)
	if s.Expand != nil {
		resp = append(resp, s.Expand(v)...)
	}

	return resp
}

// owns returns true if the field is set by this step.
func (s Step) owns(field Field, v Values) bool {
	for _, f := range s.FieldsFor(v) {
		if f == field {
			return true
		}
	}

	return false
}

// Flow is an ordered list of steps selected once per wizard.
type Flow struct {
	Name  string
	Steps []Step
	// Defaults are the initial field values, restored when a step clears them.
	Defaults Values
}
