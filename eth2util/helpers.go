// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package eth2util

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"

	eth2p0 "github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/z"
)

const (
	// blsWithdrawalPrefix is the first byte of 0x00 (BLS) withdrawal credentials.
	blsWithdrawalPrefix = 0x00
	// maxValidatorIndex is the exclusive upper bound of validator indices accepted by the deposit cli.
	maxValidatorIndex = 1 << 32
)

// ChecksumAddress returns an EIP55-compliant 0xhex representation of the 0xhex ethereum address.
func ChecksumAddress(address string) (string, error) {
	if !strings.HasPrefix(address, "0x") || len(address) != 2+20*2 {
		return "", errors.New("invalid ethereum address", z.Str("address", address))
	}
	b, err := hex.DecodeString(address[2:])
	if err != nil {
		return "", errors.New("invalid ethereum hex address", z.Str("address", address))
	}

	return checksumAddressBytes(b), nil
}

// VerifyChecksumAddress returns an error if the address is not a 0x prefixed hex address
// with a valid EIP55 mixed-case checksum.
func VerifyChecksumAddress(address string) error {
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return errors.New("invalid ethereum address", z.Str("address", address))
	}

	checksummed, err := ChecksumAddress(address)
	if err != nil {
		return err
	}

	if checksummed != address {
		return errors.New("invalid ethereum address checksum", z.Str("address", address))
	}

	return nil
}

// checksumAddressBytes returns an EIP55-compliant 0xhex representation of the address bytes.
func checksumAddressBytes(addressBytes []byte) string {
	hexAddr := hex.EncodeToString(addressBytes)

	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(hexAddr))
	hexHash := hex.EncodeToString(h.Sum(nil))

	resp := []rune{'0', 'x'}
	for i, c := range []rune(hexAddr) {
		if c > '9' && hexHash[i] > '7' {
			c = unicode.ToUpper(c)
		}
		resp = append(resp, c)
	}

	return string(resp)
}

// SplitList splits a comma separated list, trimming whitespace around each element.
// An empty input returns an empty list.
func SplitList(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}

	var resp []string
	for _, elem := range strings.Split(list, ",") {
		resp = append(resp, strings.TrimSpace(elem))
	}

	return resp
}

// ParseValidatorIndices parses a comma separated list of beacon chain validator indices.
func ParseValidatorIndices(list string) ([]eth2p0.ValidatorIndex, error) {
	elems := SplitList(list)
	if len(elems) == 0 {
		return nil, errors.New("empty validator indices")
	}

	var resp []eth2p0.ValidatorIndex
	for _, elem := range elems {
		if elem == "" || strings.TrimLeft(elem, "0123456789") != "" {
			return nil, errors.New("validator index is not a number", z.Str("index", elem))
		}

		idx, err := strconv.ParseUint(elem, 10, 64)
		if err != nil || idx >= maxValidatorIndex {
			return nil, errors.New("validator index out of range", z.Str("index", elem))
		}

		resp = append(resp, eth2p0.ValidatorIndex(idx))
	}

	return resp, nil
}

// ParseBLSCredentials parses a comma separated list of 0x00 prefixed BLS withdrawal credentials.
func ParseBLSCredentials(list string) ([][]byte, error) {
	elems := SplitList(list)
	if len(elems) == 0 {
		return nil, errors.New("empty withdrawal credentials")
	}

	var resp [][]byte
	for _, elem := range elems {
		b, err := hex.DecodeString(strings.TrimPrefix(elem, "0x"))
		if err != nil {
			return nil, errors.New("withdrawal credentials not hex", z.Str("credentials", elem))
		}

		if len(b) != 32 || b[0] != blsWithdrawalPrefix {
			return nil, errors.New("not bls withdrawal credentials", z.Str("credentials", elem))
		}

		resp = append(resp, b)
	}

	return resp, nil
}
