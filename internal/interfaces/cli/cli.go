// Package cli holds the output helpers shared by the command-line tools.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a console logger on w that only reports warnings and errors,
// so that stdout carries nothing but command output.
func NewLogger(w io.Writer) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), zap.WarnLevel)
	return zap.New(core)
}

// WriteJSON writes v indented by two spaces. Non-ASCII text is kept as is.
func WriteJSON(w io.Writer, v interface{}) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// WriteSection writes a "=== title ===" header followed by v as JSON
func WriteSection(w io.Writer, title string, v interface{}) error {
	if _, err := fmt.Fprintf(w, "=== %s ===\n", title); err != nil {
		return err
	}
	return WriteJSON(w, v)
}
