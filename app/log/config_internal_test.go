// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package log

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatZapStack(t *testing.T) {
	input := `github.com/obolnetwork/wagyu/depositcli.(*Invoker).Invoke
	/home/dev/src/wagyu/depositcli/invoke.go:57
testing.tRunner
	/usr/local/go/src/testing/testing.go:1259`

	require.Equal(t, "\tdepositcli/invoke.go:57 .Invoke", formatZapStack(input))
}
