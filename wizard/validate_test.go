// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package wizard_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obolnetwork/wagyu/wizard"
)

func TestValidateMnemonic(t *testing.T) {
	for _, n := range []int{12, 15, 18, 21, 24} {
		require.Empty(t, wizard.ValidateMnemonic(strings.Repeat("word ", n)))
	}

	for _, n := range []int{0, 1, 11, 13, 23, 25} {
		require.Equal(t, wizard.MsgInvalidMnemonic, wizard.ValidateMnemonic(strings.Repeat("word ", n)))
	}
}

func TestValidateVerifyMnemonic(t *testing.T) {
	require.Empty(t, wizard.ValidateVerifyMnemonic("a b c", " a  b c\n"))
	require.Equal(t, wizard.MsgMnemonicsDontMatch, wizard.ValidateVerifyMnemonic("a b c", "a c b"))
}

func TestValidateInputs(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(string) string
		input  string
		expect string
	}{
		{name: "keys_min", fn: wizard.ValidateNumKeys, input: "1"},
		{name: "keys_max", fn: wizard.ValidateNumKeys, input: "1000"},
		{name: "keys_zero", fn: wizard.ValidateNumKeys, input: "0", expect: wizard.MsgNumberOfKeys},
		{name: "keys_over", fn: wizard.ValidateNumKeys, input: "1001", expect: wizard.MsgNumberOfKeys},
		{name: "keys_text", fn: wizard.ValidateNumKeys, input: "ten", expect: wizard.MsgNumberOfKeys},
		{name: "index_zero", fn: wizard.ValidateIndex, input: "0"},
		{name: "index_empty", fn: wizard.ValidateIndex, input: " ", expect: wizard.MsgStartingIndex},
		{name: "index_negative", fn: wizard.ValidateIndex, input: "-1", expect: wizard.MsgNonNegativeIndex},
		{name: "index_max", fn: wizard.ValidateIndex, input: "4294967295"},
		{name: "index_range", fn: wizard.ValidateIndex, input: "4294967296", expect: wizard.MsgIndexRange},
		{name: "index_text", fn: wizard.ValidateIndex, input: "five", expect: wizard.MsgNonNegativeIndex},
		{name: "validator_index", fn: wizard.ValidateValidatorIndex, input: " 1234567 "},
		{name: "validator_index_empty", fn: wizard.ValidateValidatorIndex, input: "", expect: wizard.MsgValidatorIndex},
		{name: "validator_index_negative", fn: wizard.ValidateValidatorIndex, input: "-1", expect: wizard.MsgValidatorIndex},
		{name: "epoch", fn: wizard.ValidateEpoch, input: "194048"},
		{name: "epoch_negative", fn: wizard.ValidateEpoch, input: "-5", expect: wizard.MsgEpoch},
		{name: "password", fn: wizard.ValidatePassword, input: "password1234"},
		{name: "password_short", fn: wizard.ValidatePassword, input: "password123", expect: wizard.MsgPasswordStrength},
		{name: "indices", fn: wizard.ValidateIndices, input: "1, 2,3"},
		{name: "indices_empty", fn: wizard.ValidateIndices, input: "", expect: wizard.MsgIndices},
		{name: "indices_format", fn: wizard.ValidateIndices, input: "1,0x2", expect: wizard.MsgIndicesFormat},
		{name: "credentials", fn: wizard.ValidateCredentials, input: credential1},
		{name: "credentials_empty", fn: wizard.ValidateCredentials, input: "", expect: wizard.MsgBLSCredentials},
		{name: "credentials_eth1", fn: wizard.ValidateCredentials, input: "0x01" + credential1[4:], expect: wizard.MsgBLSCredentialsFormat},
		{name: "network", fn: wizard.ValidateNetwork, input: "Hoodi"},
		{name: "network_unknown", fn: wizard.ValidateNetwork, input: "goerli", expect: wizard.MsgNetwork},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expect, test.fn(test.input))
		})
	}
}

func TestValidateAddress(t *testing.T) {
	require.Empty(t, wizard.ValidateAddress(address, true))
	require.Empty(t, wizard.ValidateAddress("", false))
	require.Equal(t, wizard.MsgWithdrawAddressRequired, wizard.ValidateAddress("", true))
	require.Equal(t, wizard.MsgAddressFormat, wizard.ValidateAddress(strings.ToLower(address), false))
	require.Equal(t, wizard.MsgAddressFormat, wizard.ValidateAddress("0x1234", false))
}

func TestValidatePasswords(t *testing.T) {
	require.Empty(t, wizard.ValidateVerifyPassword(password, password))
	require.Equal(t, wizard.MsgPasswordMatch, wizard.ValidateVerifyPassword(password, password+"5"))
}

func TestValidateFolder(t *testing.T) {
	dir := t.TempDir()
	require.Empty(t, wizard.ValidateFolder(dir))
	require.Equal(t, wizard.MsgFolder, wizard.ValidateFolder(""))
	require.Equal(t, wizard.MsgFolderDoesNotExist, wizard.ValidateFolder(filepath.Join(dir, "missing")))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	require.Equal(t, wizard.MsgFolderDoesNotExist, wizard.ValidateFolder(file))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permissions not enforced")
	}

	readOnly := filepath.Join(dir, "readonly")
	require.NoError(t, os.Mkdir(readOnly, 0o555))
	require.Equal(t, wizard.MsgFolderNotWritable, wizard.ValidateFolder(readOnly))
}

func TestValidateKeystoreFolder(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "keystore-0.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))

	require.Empty(t, wizard.ValidateKeystoreFolder(dir))
	require.Equal(t, wizard.MsgFolder, wizard.ValidateKeystoreFolder(""))
	require.Equal(t, wizard.MsgFolderDoesNotExist, wizard.ValidateKeystoreFolder(file))
	require.Equal(t, wizard.MsgFolderDoesNotExist, wizard.ValidateKeystoreFolder(filepath.Join(dir, "missing")))
}
