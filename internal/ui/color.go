// Package ui provides colored console output.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	// Colors
	Red    = color.New(color.FgRed)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Blue   = color.New(color.FgBlue)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
)

// Out receives all console output. Commands point it at their own writer.
var Out io.Writer = color.Output

// SetOutput redirects console output and returns a func restoring the previous writer.
func SetOutput(w io.Writer) func() {
	prev := Out
	Out = w
	return func() { Out = prev }
}

// Success prints a green success message with checkmark.
func Success(format string, args ...any) {
	Green.Fprintf(Out, "✓ "+format+"\n", args...)
}

// Error prints a red error message with X.
func Error(format string, args ...any) {
	Red.Fprintf(Out, "✗ "+format+"\n", args...)
}

// Warning prints a yellow warning message.
func Warning(format string, args ...any) {
	Yellow.Fprintf(Out, "⚠ "+format+"\n", args...)
}

// Info prints a blue info message.
func Info(format string, args ...any) {
	Blue.Fprintf(Out, format+"\n", args...)
}

// Step prints a numbered step in cyan.
func Step(n int, format string, args ...any) {
	Cyan.Fprintf(Out, "[%d] ", n)
	fmt.Fprintf(Out, format+"\n", args...)
}

// Header prints a bold header.
func Header(format string, args ...any) {
	Bold.Fprintf(Out, format+"\n", args...)
}

// Package prints an archive message.
func Package(format string, args ...any) {
	Green.Fprintf(Out, "📦 "+format+"\n", args...)
}

// Plain prints an uncolored line.
func Plain(format string, args ...any) {
	fmt.Fprintf(Out, format+"\n", args...)
}
