// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package z_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/z"
)

func TestFields(t *testing.T) {
	err := errors.New("test", z.Str("foo", "bar"), z.Int("zet", 123))

	fields := z.Fields(err)
	require.Len(t, fields, 2)
}

func TestErr(t *testing.T) {
	err := errors.New("test", z.Str("foo", "bar"))

	ufs := unwrap(z.Err(err))
	require.Len(t, ufs, 3) // zap.Error, zap.Stack, foo
	require.True(t, slices.ContainsFunc(ufs, func(f zap.Field) bool {
		return f.Equals(zap.String("foo", "bar"))
	}))
	require.True(t, slices.ContainsFunc(ufs, func(f zap.Field) bool {
		return f.Key == "stacktrace"
	}))
}

func TestSecret(t *testing.T) {
	ufs := unwrap(z.Secret("mnemonic", "abandon abandon about"))
	require.Len(t, ufs, 1)
	require.Equal(t, "<redacted 3 words>", ufs[0].String)
	require.NotContains(t, ufs[0].String, "abandon")
}

func TestStrs(t *testing.T) {
	ufs := unwrap(z.Strs("args", []string{"a", "b"}))
	require.Len(t, ufs, 1)
	require.Equal(t, "args", ufs[0].Key)
}

func unwrap(field z.Field) []zap.Field {
	var resp []zap.Field
	field(func(f zap.Field) {
		resp = append(resp, f)
	})

	return resp
}
