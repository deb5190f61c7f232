// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obolnetwork/wagyu/app/version"
)

func TestRunVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	runVersionCmd(&buf, versionConfig{Verbose: false})

	output := buf.String()
	require.True(t, strings.HasPrefix(output, version.Version))
	require.Contains(t, output, version.DepositCLIVersion)
	require.NotContains(t, output, "Dependencies")

	buf.Reset()
	runVersionCmd(&buf, versionConfig{Verbose: true})
	require.Contains(t, buf.String(), "Package: ")
}
