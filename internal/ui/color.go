// Package ui provides colored console output for edgedev commands.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	// Colors
	Red    = color.New(color.FgRed)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Blue   = color.New(color.FgBlue)
	Bold   = color.New(color.Bold)
)

// Output writes human-readable progress and error messages.
// Errors go to the error writer, everything else to the standard writer.
type Output struct {
	out io.Writer
	err io.Writer
}

// NewOutput creates an Output writing to out and err.
// A nil writer falls back to os.Stdout or os.Stderr respectively.
func NewOutput(out, err io.Writer) *Output {
	if out == nil {
		out = os.Stdout
	}
	if err == nil {
		err = os.Stderr
	}
	return &Output{out: out, err: err}
}

// Default returns an Output bound to os.Stdout and os.Stderr.
func Default() *Output {
	return NewOutput(os.Stdout, os.Stderr)
}

// Success prints a green success message with checkmark.
func (o *Output) Success(format string, args ...any) {
	Green.Fprintf(o.out, "✓ "+format+"\n", args...)
}

// Error prints a red error message with X to the error writer.
func (o *Output) Error(format string, args ...any) {
	Red.Fprintf(o.err, "✗ "+format+"\n", args...)
}

// Warning prints a yellow warning message.
func (o *Output) Warning(format string, args ...any) {
	Yellow.Fprintf(o.out, "⚠ "+format+"\n", args...)
}

// Info prints a blue info message.
func (o *Output) Info(format string, args ...any) {
	Blue.Fprintf(o.out, format+"\n", args...)
}

// Header prints a bold header.
func (o *Output) Header(format string, args ...any) {
	Bold.Fprintf(o.out, format+"\n", args...)
}

// Line prints an uncolored line.
func (o *Output) Line(format string, args ...any) {
	fmt.Fprintf(o.out, format+"\n", args...)
}

// Error prints an error message to stderr.
func Error(format string, args ...any) {
	Default().Error(format, args...)
}
