// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package wizard

// User facing validation and failure messages.
const (
	MsgInvalidMnemonic           = "The Secret Recovery Phrase provided is invalid. Please double check each word for any spelling errors."
	MsgMnemonicsDontMatch        = "The Secret Recovery Phrase you entered does not match what was given to you. Please try again."
	MsgNumberOfKeys              = "Please input a number between 1 and 1000."
	MsgAddressFormat             = "Please enter a valid Ethereum address."
	MsgWithdrawAddressRequired   = "Please enter an Ethereum address."
	MsgPasswordStrength          = "Password must be at least 12 characters."
	MsgPasswordMatch             = "Passwords don't match."
	MsgStartingIndex             = "Please input start index."
	MsgNonNegativeIndex          = "Start index can not be a negative number"
	MsgIndexRange                = "Start index must be at most 4294967295."
	MsgIndices                   = "Please input indices."
	MsgIndicesFormat             = "Please input indices with digits only."
	MsgIndicesLength             = "The amount of indices must match the amount of BLS credentials"
	MsgBLSCredentials            = "Please input BLS credentials."
	MsgBLSCredentialsFormat      = "Please enter valid BLS credentials."
	MsgBLSCredentialsNoMatch     = "Those BLS credentials do not match those we can derive from your Secret Recovery Phrase."
	MsgEpoch                     = "Please input a non-negative epoch."
	MsgValidatorIndex            = "Please input a validator index."
	MsgKeystoreNotFound          = "No keystore files found in this folder. Select the folder containing your keystore-*.json files."
	MsgKeystoreParse             = "Could not read the keystore files in this folder."
	MsgKeystorePassword          = "Please input the keystore password or a master password."
	MsgKeystorePasswordIncorrect = "The password does not decrypt this keystore."
	MsgFolder                    = "Please select a folder."
	MsgFolderDoesNotExist        = "Folder does not exist. Select an existing folder."
	MsgFolderNotWritable         = "Cannot write in this folder. Select a folder in which you have write permission."
	MsgNetwork                   = "Please select a supported network."
	MsgGenericFailure            = "The staking deposit tool failed without an error message. Please try again."
	mnemonicErrorSearch          = "That is not a valid mnemonic"
	minPasswordLength            = 12
	maxNumberOfKeys              = 1000
)

// validMnemonicLengths are the BIP-39 mnemonic word counts.
var validMnemonicLengths = map[int]bool{12: true, 15: true, 18: true, 21: true, 24: true}
