// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

// Package eth2util provides Ethereum consensus layer helpers used to validate wizard input
// before it is passed to the deposit cli.
package eth2util

import (
	"strings"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/z"
)

// Network contains information about an Ethereum network the deposit cli can create keys for.
type Network struct {
	// ChainID represents chainID of the network.
	ChainID uint64
	// Name is the lowercase chain name passed to the deposit cli.
	Name string
}

// Pre-defined network configurations.
var (
	Mainnet = Network{
		ChainID: 1,
		Name:    "mainnet",
	}
	Gnosis = Network{
		ChainID: 100,
		Name:    "gnosis",
	}
	Chiado = Network{
		ChainID: 10200,
		Name:    "chiado",
	}
	Sepolia = Network{
		ChainID: 11155111,
		Name:    "sepolia",
	}
	// Holesky metadata taken from https://github.com/eth-clients/holesky#metadata.
	Holesky = Network{
		ChainID: 17000,
		Name:    "holesky",
	}
	// Hoodi metadata taken from https://github.com/eth-clients/hoodi/#metadata.
	Hoodi = Network{
		ChainID: 560048,
		Name:    "hoodi",
	}
)

var supportedNetworks = []Network{
	Mainnet, Gnosis, Chiado, Sepolia, Holesky, Hoodi,
}

// SupportedNetworks returns the names of all supported networks.
func SupportedNetworks() []string {
	var resp []string
	for _, network := range supportedNetworks {
		resp = append(resp, network.Name)
	}

	return resp
}

// NetworkFromName returns the network with the given name, ignoring case.
func NetworkFromName(name string) (Network, error) {
	for _, network := range supportedNetworks {
		if strings.EqualFold(strings.TrimSpace(name), network.Name) {
			return network, nil
		}
	}

	return Network{}, errors.New("invalid network name", z.Str("network", name))
}

// ValidNetwork returns true if the provided network name is a valid one.
func ValidNetwork(name string) bool {
	_, err := NetworkFromName(name)
	return err == nil
}
