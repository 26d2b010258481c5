// internal/logger/pretty.go
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// JSON keys shared by the TUI encoder and LogBuffer.Write.
const (
	keyTime    = "time"
	keyLevel   = "level"
	keyLogger  = "logger"
	keyMessage = "msg"
	timeLayout = "2006-01-02T15:04:05.000Z0700"
)

func levelFor(debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func prettyEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     keyMessage,
		LevelKey:       keyLevel,
		TimeKey:        keyTime,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// customLevelEncoder formats log levels with colors
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(ColorCyan + "[DEBUG]" + ColorReset)
	case zapcore.InfoLevel:
		enc.AppendString(ColorGreen + "[INFO]" + ColorReset)
	case zapcore.WarnLevel:
		enc.AppendString(ColorYellow + "[WARN]" + ColorReset)
	case zapcore.ErrorLevel:
		enc.AppendString(ColorRed + "[ERROR]" + ColorReset)
	case zapcore.FatalLevel:
		enc.AppendString(ColorRed + ColorBold + "[FATAL]" + ColorReset)
	default:
		enc.AppendString(fmt.Sprintf("[%s]", level.CapitalString()))
	}
}

// customTimeEncoder formats time in a readable way
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// CreatePrettyLogger creates a logger with user-friendly output for CLI commands.
func CreatePrettyLogger(debug bool) (*zap.Logger, error) {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(prettyEncoderConfig()),
		zapcore.Lock(os.Stdout),
		levelFor(debug),
	)
	return zap.New(&FieldFilterCore{core: core, debug: debug}), nil
}

// CreateTUILoggerWithBuffer creates a TUI-compatible logger that only writes to buffer
func CreateTUILoggerWithBuffer(debug bool, buffer *LogBuffer) (*zap.Logger, error) {
	if buffer == nil {
		return nil, fmt.Errorf("buffer is required for TUI logger")
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     keyMessage,
		LevelKey:       keyLevel,
		TimeKey:        keyTime,
		NameKey:        keyLogger,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	// Only use buffer core - NO console output to avoid breaking TUI
	bufferCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buffer),
		levelFor(debug),
	)
	return zap.New(bufferCore), nil
}

// FormatMessage creates user-friendly log messages
func FormatMessage(msg string, fields ...zap.Field) string {
	switch {
	case strings.Contains(msg, "RPC pool ready"):
		return fmt.Sprintf("%s🔌 Connected to %s RPC node(s)%s", ColorBlue, extractField(fields, "nodes"), ColorReset)

	case strings.Contains(msg, "Transaction sent"):
		method := extractField(fields, "method")
		tx := extractField(fields, "tx")
		return fmt.Sprintf("%s📤 %s sent: %s%s", ColorYellow, method, shortenHash(tx), ColorReset)

	case strings.Contains(msg, "Transaction confirmed"):
		kind := extractField(fields, "kind")
		tx := extractField(fields, "tx")
		block := extractField(fields, "block")
		return fmt.Sprintf("%s✅ %s confirmed in block %s: %s%s", ColorGreen, kind, block, shortenHash(tx), ColorReset)

	case strings.Contains(msg, "Transaction not confirmed"):
		kind := extractField(fields, "kind")
		return fmt.Sprintf("%s❌ %s failed: %s%s", ColorRed, kind, extractField(fields, "error"), ColorReset)

	case strings.Contains(msg, "Failed to send transaction"):
		return fmt.Sprintf("%s❌ Could not send %s: %s%s", ColorRed, extractField(fields, "kind"), extractField(fields, "error"), ColorReset)

	case strings.Contains(msg, "Metrics server listening"):
		return fmt.Sprintf("%s📈 Metrics on %s%s", ColorPurple, extractField(fields, "addr"), ColorReset)

	case strings.Contains(msg, "Bet placed"):
		return fmt.Sprintf("%s🎉 Bet placed!%s", ColorGreen+ColorBold, ColorReset)

	default:
		return msg
	}
}

// extractField renders a field value the same way zap's JSON encoder would.
func extractField(fields []zap.Field, key string) string {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		enc := zapcore.NewMapObjectEncoder()
		field.AddTo(enc)
		return fmt.Sprintf("%v", enc.Fields[key])
	}
	return ""
}

func shortenHash(hash string) string {
	if len(hash) > 18 {
		return hash[:10] + "…" + hash[len(hash)-8:]
	}
	return hash
}

// FieldFilterCore rewrites known messages and drops structured fields so CLI
// output stays readable. With debug enabled fields are kept.
type FieldFilterCore struct {
	core   zapcore.Core
	fields []zapcore.Field
	debug  bool
}

func (c *FieldFilterCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *FieldFilterCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &FieldFilterCore{core: c.core, fields: merged, debug: c.debug}
}

func (c *FieldFilterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *FieldFilterCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, c.fields...), fields...)
	entry.Message = FormatMessage(entry.Message, all...)
	if c.debug {
		return c.core.Write(entry, all)
	}
	return c.core.Write(entry, nil)
}

func (c *FieldFilterCore) Sync() error {
	return c.core.Sync()
}
