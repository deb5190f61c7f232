// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package log_test

import (
	"context"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/log"
	"github.com/obolnetwork/wagyu/app/z"
)

func TestWithContext(t *testing.T) {
	buf := setup(t)

	ctx1 := context.Background()
	ctx2 := log.WithCtx(ctx1, z.Int("wrap2", 2))
	ctx3a := log.WithCtx(ctx2, z.Str("wrap3", "a"))
	ctx3b := log.WithCtx(ctx2, z.Str("wrap3", "b"))

	log.Debug(ctx1, "msg1", z.Int("ctx1", 1))
	log.Info(ctx2, "msg2", z.Int("ctx2", 2))
	log.Warn(ctx3a, "msg3a", nil)
	log.Warn(ctx3b, "msg3b", nil)

	lines := buf.Lines()
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "msg=msg1")
	require.Contains(t, lines[0], "ctx1=1")
	require.Contains(t, lines[1], "wrap2=2")
	require.Contains(t, lines[2], "wrap3=a")
	require.Contains(t, lines[3], "wrap3=b")
}

func TestErrorWrap(t *testing.T) {
	buf := setup(t)

	err1 := errors.New("first", z.Int("1", 1))
	err2 := errors.Wrap(err1, "second", z.Str("2", "two"))

	ctx := context.Background()
	log.Error(ctx, "err2", err2)

	lines := buf.Lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `msg="err2: second: first"`)
	require.Contains(t, lines[0], "1=1")
	require.Contains(t, lines[0], "2=two")
	require.Contains(t, lines[0], "stacktrace=")
}

func TestErrorWrapOther(t *testing.T) {
	buf := setup(t)

	log.Error(context.Background(), "wrap", io.EOF)

	lines := buf.Lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `msg="wrap: EOF"`)
}

func TestTopic(t *testing.T) {
	buf := setup(t)

	ctx := log.WithTopic(context.Background(), "depositcli")
	log.Info(ctx, "Invoking deposit cli")

	require.Contains(t, buf.String(), "topic=depositcli")
}

func TestFilterAll(t *testing.T) {
	buf := setup(t)

	ctx := context.Background()

	filter := log.Filter(log.WithFilterRateLimit(0)) // Limit of 0 results in no logs.
	log.Info(ctx, "should", filter)
	log.Info(ctx, "all", filter)
	log.Info(ctx, "be", filter)
	log.Info(ctx, "dropped", filter)

	require.Empty(t, buf.String())
}

func TestFilterDefault(t *testing.T) {
	buf := setup(t)

	ctx := context.Background()

	filter := log.Filter()
	log.Info(ctx, "expect", filter)
	log.Info(ctx, "dropped", filter)
	log.Info(ctx, "dropped", filter)

	lines := buf.Lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "msg=expect")
}

func TestFilterNone(t *testing.T) {
	buf := setup(t)

	ctx := context.Background()

	filter := log.Filter(log.WithFilterRateLimit(math.MaxInt64))
	log.Info(ctx, "expect1", filter)
	time.Sleep(time.Millisecond)
	log.Info(ctx, "expect2", filter)

	require.Len(t, buf.Lines(), 2)
}

func TestConsole(t *testing.T) {
	var buf zaptest.Buffer
	log.InitConsoleForT(t, &buf)

	log.Info(log.WithTopic(context.Background(), "wizard"), "Step advanced", z.Str("step", "verify-password"))

	out := buf.String()
	require.True(t, strings.Contains(out, "wizard"))
	require.Contains(t, out, "Step advanced")
	require.Contains(t, out, "verify-password")
}

func TestInferColor(t *testing.T) {
	color, err := log.Config{Color: "force"}.InferColor()
	require.NoError(t, err)
	require.True(t, color)

	color, err = log.Config{Color: "disable"}.InferColor()
	require.NoError(t, err)
	require.False(t, color)

	_, err = log.Config{Color: "rainbow"}.InferColor()
	require.ErrorContains(t, err, "invalid --log-color value")
}

// setup returns a buffer that logfmt logs are written to and stubs non-deterministic logging fields.
func setup(t *testing.T) *zaptest.Buffer {
	t.Helper()

	var buf zaptest.Buffer

	log.InitLogfmtForT(t, &buf, func(config *zapcore.EncoderConfig) {
		config.EncodeTime = func(time.Time, zapcore.PrimitiveArrayEncoder) {}
		config.CallerKey = ""
	})

	return &buf
}
