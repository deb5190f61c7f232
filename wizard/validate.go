// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package wizard

import (
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/eth2util"
)

// ValidationError is a local input error for a single field, detected before any tool invocation.
type ValidationError struct {
	Field   Field
	Message string
}

func (e ValidationError) Error() string {
	return string(e.Field) + ": " + e.Message
}

// ValidationErrors are returned by step actions that detect input errors locally.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, verr := range e {
		msgs = append(msgs, verr.Error())
	}

	return strings.Join(msgs, ", ")
}

// ValidateMnemonic returns an error message if the mnemonic does not have a BIP-39 word count.
func ValidateMnemonic(mnemonic string) string {
	if !validMnemonicLengths[len(strings.Fields(mnemonic))] {
		return MsgInvalidMnemonic
	}

	return ""
}

// ValidateVerifyMnemonic returns an error message if the re-entered mnemonic differs from the original.
// Whitespace between words is not significant.
func ValidateVerifyMnemonic(mnemonic, verify string) string {
	if strings.Join(strings.Fields(mnemonic), " ") != strings.Join(strings.Fields(verify), " ") {
		return MsgMnemonicsDontMatch
	}

	return ""
}

// ValidateNumKeys returns an error message if n is not an integer between 1 and 1000.
func ValidateNumKeys(n string) string {
	i, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil || i < 1 || i > maxNumberOfKeys {
		return MsgNumberOfKeys
	}

	return ""
}

// ValidateIndex returns an error message if the start index is missing or not a non-negative integer.
func ValidateIndex(index string) string {
	index = strings.TrimSpace(index)
	if index == "" {
		return MsgStartingIndex
	}

	if strings.HasPrefix(index, "-") {
		return MsgNonNegativeIndex
	}

	if _, err := strconv.ParseUint(index, 10, 32); err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return MsgIndexRange
		}

		return MsgNonNegativeIndex
	}

	return ""
}

// ValidateValidatorIndex returns an error message if the validator index is not a non-negative integer.
func ValidateValidatorIndex(index string) string {
	if _, err := strconv.ParseUint(strings.TrimSpace(index), 10, 64); err != nil {
		return MsgValidatorIndex
	}

	return ""
}

// ValidateEpoch returns an error message if the epoch is not a non-negative integer.
func ValidateEpoch(epoch string) string {
	if _, err := strconv.ParseUint(strings.TrimSpace(epoch), 10, 64); err != nil {
		return MsgEpoch
	}

	return ""
}

// ValidatePassword returns an error message if the password is too short.
func ValidatePassword(password string) string {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return MsgPasswordStrength
	}

	return ""
}

// ValidateVerifyPassword returns an error message if the passwords differ.
func ValidateVerifyPassword(password, verify string) string {
	if password != verify {
		return MsgPasswordMatch
	}

	return ""
}

// ValidateAddress returns an error message if the address is not a valid checksummed address.
// Empty addresses are only accepted if not required.
func ValidateAddress(address string, required bool) string {
	address = strings.TrimSpace(address)
	if address == "" {
		if required {
			return MsgWithdrawAddressRequired
		}

		return ""
	}

	if err := eth2util.VerifyChecksumAddress(address); err != nil {
		return MsgAddressFormat
	}

	return ""
}

// ValidateIndices returns an error message if indices is not a comma separated list of validator indices.
func ValidateIndices(indices string) string {
	if strings.TrimSpace(indices) == "" {
		return MsgIndices
	}

	if _, err := eth2util.ParseValidatorIndices(indices); err != nil {
		return MsgIndicesFormat
	}

	return ""
}

// ValidateCredentials returns an error message if credentials is not a comma separated list
// of BLS withdrawal credentials.
func ValidateCredentials(credentials string) string {
	if strings.TrimSpace(credentials) == "" {
		return MsgBLSCredentials
	}

	if _, err := eth2util.ParseBLSCredentials(credentials); err != nil {
		return MsgBLSCredentialsFormat
	}

	return ""
}

// ValidateKeystoreFolder returns an error message if the folder is not selected or not an existing directory.
func ValidateKeystoreFolder(folder string) string {
	if strings.TrimSpace(folder) == "" {
		return MsgFolder
	}

	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		return MsgFolderDoesNotExist
	}

	return ""
}

// ValidateFolder returns an error message if the folder is not selected, not an existing directory or not writable.
func ValidateFolder(folder string) string {
	if strings.TrimSpace(folder) == "" {
		return MsgFolder
	}

	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return MsgFolderDoesNotExist
	}

	f, err := os.CreateTemp(folder, ".wagyu-write-check-*")
	if err != nil {
		return MsgFolderNotWritable
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	return ""
}

// ValidateNetwork returns an error message if the network is not supported.
func ValidateNetwork(network string) string {
	if !eth2util.ValidNetwork(network) {
		return MsgNetwork
	}

	return ""
}

// invalidMnemonicMessage maps the tool's invalid mnemonic stderr to a user message.
func invalidMnemonicMessage(stderr string) string {
	if strings.Contains(stderr, mnemonicErrorSearch) {
		return MsgInvalidMnemonic
	}

	return ""
}

// validator collects the first validation error per field.
type validator []ValidationError

func (v *validator) check(field Field, msg string) {
	if msg == "" {
		return
	}

	for _, e := range *v {
		if e.Field == field {
			return
		}
	}

	*v = append(*v, ValidationError{Field: field, Message: msg})
}
