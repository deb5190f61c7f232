// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"github.com/moby/term"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/z"
)

const (
	padLength = 40
	keyStack  = "stacktrace"
	keyTopic  = "topic"
)

const (
	colorDisable = "disable"
	colorForce   = "force"
	colorAuto    = "auto"
)

// zapLogger abstracts a zap logger.
type zapLogger interface {
	Debug(string, ...zap.Field)
	Info(string, ...zap.Field)
	Warn(string, ...zap.Field)
	Error(string, ...zap.Field)
}

var (
	initMu sync.RWMutex
	// logger is the global logger.
	logger zapLogger = newDefaultLogger()

	padding = strings.Repeat(" ", padLength)
)

func getLogger() zapLogger {
	initMu.RLock()
	defer initMu.RUnlock()

	return logger
}

// Config defines the logging configuration.
type Config struct {
	Level  string // debug, info, warn or error
	Format string // console or json or logfmt
	Color  string // disable, force or auto
}

// ZapLevel returns the zapcore level.
func (c Config) ZapLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return 0, errors.Wrap(err, "parse level")
	}

	return level, nil
}

// InferColor returns true if color logs should be used.
func (c Config) InferColor() (bool, error) {
	switch strings.ToLower(strings.TrimSpace(c.Color)) {
	case colorDisable:
		return false, nil
	case colorForce:
		return true, nil
	case colorAuto, "":
		return term.IsTerminal(os.Stderr.Fd()), nil
	}

	return false, errors.New("invalid --log-color value", z.Str("value", c.Color))
}

// DefaultConfig returns the default logging config.
func DefaultConfig() Config {
	return Config{
		Level:  zapcore.InfoLevel.String(),
		Format: "console",
		Color:  colorAuto,
	}
}

// InitLogger initialises the global logger based on the provided config.
// Logs are always written to stderr so that they never interleave with wizard prompts on stdout.
func InitLogger(config Config) error {
	initMu.Lock()
	defer initMu.Unlock()

	level, err := config.ZapLevel()
	if err != nil {
		return err
	}

	color, err := config.InferColor()
	if err != nil {
		return err
	}

	writer, _, err := zap.Open("stderr")
	if err != nil {
		return errors.Wrap(err, "open writer")
	}

	if config.Format == "console" {
		logger = newConsoleLogger(level, color, writer)
		return nil
	}

	logger, err = newStructuredLogger(config.Format, level, writer)

	return err
}

// InitConsoleForT initialises a console logger for testing purposes.
func InitConsoleForT(_ *testing.T, ws zapcore.WriteSyncer, opts ...func(*zapcore.EncoderConfig)) {
	initMu.Lock()
	defer initMu.Unlock()
	logger = newConsoleLogger(zapcore.DebugLevel, false, ws, opts...)
}

// InitLogfmtForT initialises a logfmt logger for testing purposes.
func InitLogfmtForT(t *testing.T, ws zapcore.WriteSyncer, opts ...func(*zapcore.EncoderConfig)) {
	t.Helper()
	initMu.Lock()
	defer initMu.Unlock()

	var err error
	logger, err = newStructuredLogger("logfmt", zapcore.DebugLevel, ws, opts...)
	require.NoError(t, err)
}

// newStructuredLogger returns an opinionated logfmt or json logger.
func newStructuredLogger(format string, level zapcore.Level, ws zapcore.WriteSyncer, opts ...func(*zapcore.EncoderConfig)) (*zap.Logger, error) {
	encConfig := zap.NewProductionEncoderConfig()
	encConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	for _, opt := range opts {
		opt(&encConfig)
	}

	var encoder zapcore.Encoder
	switch format {
	case "logfmt":
		encoder = zaplogfmt.NewEncoder(encConfig)
	case "json":
		encoder = zapcore.NewJSONEncoder(encConfig)
	default:
		return nil, errors.New("invalid logger format; not console, logfmt or json", z.Str("format", format))
	}

	return zap.New(
		zapcore.NewCore(structuredEncoder{Encoder: encoder}, ws, zap.NewAtomicLevelAt(level)),
		zap.WithCaller(true),
		zap.AddCallerSkip(1),
	), nil
}

// newDefaultLogger returns an opinionated console logger writing to stderr.
func newDefaultLogger() *zap.Logger {
	writer, _, _ := zap.Open("stderr")
	return newConsoleLogger(zapcore.InfoLevel, false, writer)
}

// newConsoleLogger returns an opinionated console logger.
func newConsoleLogger(level zapcore.Level, color bool, ws zapcore.WriteSyncer, opts ...func(*zapcore.EncoderConfig)) *zap.Logger {
	encConfig := zap.NewDevelopmentEncoderConfig()
	encConfig.ConsoleSeparator = " "
	encConfig.EncodeLevel = newLevel4CharEncoder(color)
	encConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")

	for _, opt := range opts {
		opt(&encConfig)
	}

	return zap.New(
		zapcore.NewCore(
			consoleEncoder{Encoder: zapcore.NewConsoleEncoder(encConfig), color: color},
			ws,
			zap.NewAtomicLevelAt(level),
		),
	)
}

// structuredEncoder wraps a structured encoder and formats concise "stacktrace" fields.
type structuredEncoder struct {
	zapcore.Encoder
}

func (e structuredEncoder) EncodeEntry(ent zapcore.Entry, fields []zap.Field) (*buffer.Buffer, error) {
	for i, f := range fields {
		if f.Key == keyStack {
			fields[i].String = formatZapStack(f.String)
			ent.Stack = ""

			break
		}
	}

	return e.Encoder.EncodeEntry(ent, fields)
}

// consoleEncoder wraps an encoder and transforms fields:
//   - "stacktrace" fields are converted to concise entry stack traces.
//   - "topic" fields are prepended as "logger name", colored green if color enabled.
//   - the "message" is padded so fields are aligned.
type consoleEncoder struct {
	zapcore.Encoder
	color bool
}

func (e consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zap.Field) (*buffer.Buffer, error) {
	filtered := make([]zap.Field, 0, len(fields))

	for _, f := range fields {
		if f.Key == keyStack {
			ent.Stack = formatZapStack(f.String)
			continue
		}

		if f.Key == keyTopic {
			ent.LoggerName = f.String
			continue
		}

		filtered = append(filtered, f)
	}

	ent.LoggerName = (ent.LoggerName + "          ")[:10] // Align topic/LoggerName spacing.

	if e.color {
		const green = uint8(32)
		ent.LoggerName = fmt.Sprintf("\x1b[%dm%s\x1b[0m", green, ent.LoggerName)
	}

	ent.Caller.Defined = false

	if len(ent.Message) < padLength {
		ent.Message = (ent.Message + padding)[:padLength]
	}

	return e.Encoder.EncodeEntry(ent, filtered)
}

// formatZapStack formats the zap generated stack for concise printing.
func formatZapStack(zapStack string) string {
	var (
		resp     []string
		prevFunc string
	)

	for _, line := range strings.Split(zapStack, "\n") {
		if strings.HasPrefix(line, "\t") {
			const sep = "wagyu/"
			i := strings.LastIndex(line, sep)
			if i < 0 {
				continue
			}

			resp = append(resp, "\t"+line[i+len(sep):]+" "+prevFunc)
			prevFunc = ""

			continue
		}

		if i := strings.LastIndex(line, "."); i > 0 {
			prevFunc = line[i:]
		}
	}

	return strings.Join(resp, "\n")
}

// level4Map defines 4 character mappings of log levels.
var level4Map = map[zapcore.Level]string{
	zapcore.DebugLevel: "DEBG",
	zapcore.ErrorLevel: "ERRO",
}

// newLevel4CharEncoder adapts zapcore CapitalColorLevelEncoder but trims level strings to 4 characters.
func newLevel4CharEncoder(color bool) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		replace, ok := level4Map[l]
		trimLevel := func(level string) string {
			if !ok {
				return level
			}

			return strings.Replace(level, l.CapitalString(), replace, 1)
		}
		wrappedEnc := appendWrapper{enc, trimLevel}

		if !color {
			zapcore.CapitalLevelEncoder(l, wrappedEnc)
			return
		}
		zapcore.CapitalColorLevelEncoder(l, wrappedEnc)
	}
}

// appendWrapper wraps zapcore.PrimitiveArrayEncoder's AppendString function with custom transformation function.
type appendWrapper struct {
	zapcore.PrimitiveArrayEncoder
	appendWrapFunc func(string) string
}

func (w appendWrapper) AppendString(s string) {
	w.PrimitiveArrayEncoder.AppendString(w.appendWrapFunc(s))
}
