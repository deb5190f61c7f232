// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

// Package keystore reads EIP-2335 keystore files written by the deposit cli.
package keystore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	keystorev4 "github.com/wealdtech/go-eth2-wallet-encryptor-keystorev4"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/z"
)

// FilePrefix is the file name prefix of keystore files.
const FilePrefix = "keystore-"

var (
	// ErrNoKeystores is returned if a folder contains no keystore files.
	ErrNoKeystores = errors.NewSentinel("no keystore files found")
	// ErrIncorrectPassword is returned if a keystore cannot be decrypted with the password.
	ErrIncorrectPassword = errors.NewSentinel("incorrect keystore password")
)

// Keystore is the json representation of an EIP-2335 keystore.
type Keystore struct {
	Crypto      map[string]any `json:"crypto"`
	Description string         `json:"description"`
	Pubkey      string         `json:"pubkey"`
	Path        string         `json:"path"`
	ID          string         `json:"uuid"`
	Version     uint           `json:"version"`
}

// File is a parsed keystore file.
type File struct {
	Keystore
	Filename string
	// FileIndex is the index in the file name or -1 if the name has none.
	FileIndex int
}

// ShortPubkey returns the abbreviated public key for display.
func (f File) ShortPubkey() string {
	pubkey := strings.TrimPrefix(f.Pubkey, "0x")
	if len(pubkey) <= 16 {
		return "0x" + pubkey
	}

	return "0x" + pubkey[:8] + "..." + pubkey[len(pubkey)-8:]
}

// VerifyPassword returns ErrIncorrectPassword if the keystore cannot be decrypted with password.
func (f File) VerifyPassword(password string) error {
	if _, err := keystorev4.New().Decrypt(f.Crypto, password); err != nil {
		return errors.Wrap(ErrIncorrectPassword, "decrypt keystore", z.Str("filename", f.Filename))
	}

	return nil
}

// LoadFiles returns the parsed keystore-*.json files in dir ordered by file index.
func LoadFiles(dir string) ([]File, error) {
	names, err := filepath.Glob(filepath.Join(dir, FilePrefix+"*.json"))
	if err != nil {
		return nil, errors.Wrap(err, "read files")
	} else if len(names) == 0 {
		return nil, errors.Wrap(ErrNoKeystores, "load keystores", z.Str("dir", dir))
	}

	resp := make([]File, 0, len(names))
	for _, name := range names {
		file, err := LoadFile(name)
		if err != nil {
			return nil, err
		}

		resp = append(resp, file)
	}

	sort.SliceStable(resp, func(i, j int) bool {
		if resp[i].FileIndex != resp[j].FileIndex {
			return resp[i].FileIndex < resp[j].FileIndex
		}

		return resp[i].Filename < resp[j].Filename
	})

	return resp, nil
}

// LoadFile returns the parsed keystore file.
func LoadFile(filename string) (File, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return File{}, errors.Wrap(err, "read file", z.Str("filename", filename))
	}

	var store Keystore
	if err := json.Unmarshal(b, &store); err != nil {
		return File{}, errors.Wrap(err, "unmarshal keystore", z.Str("filename", filename))
	}

	if len(store.Crypto) == 0 || store.Pubkey == "" {
		return File{}, errors.New("invalid keystore", z.Str("filename", filename))
	}

	return File{
		Keystore:  store,
		Filename:  filename,
		FileIndex: extractFileIndex(filename),
	}, nil
}

// extractor matches deposit cli keystore names, e.g. keystore-m_12381_3600_0_0_0-1700000000.json,
// and indexed names, e.g. keystore-0.json.
var extractor = regexp.MustCompile(`keystore-(?:m_12381_3600_)?([0-9]+)[_.-]`)

// extractFileIndex extracts the (validator) index from a keystore file name or returns -1
// if an index cannot be extracted.
func extractFileIndex(filename string) int {
	matches := extractor.FindStringSubmatch(filepath.Base(filename))
	if len(matches) != 2 {
		return -1
	}

	idx, err := strconv.Atoi(matches[1])
	if err != nil {
		return -1
	}

	return idx
}
