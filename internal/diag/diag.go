// Package diag formats the compiler's fixed-prefix diagnostics and writes
// them to stderr, coloring the prefix unless fatih/color's NoColor is set.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Kind identifies which pipeline stage raised a diagnostic.
type Kind int

const (
	Parse Kind = iota
	Semantic
	Type
)

func (k Kind) prefix() string {
	switch k {
	case Parse:
		return "[Parse error]"
	case Semantic:
		return "[Semantic error]"
	case Type:
		return "[Type error]"
	default:
		return "[error]"
	}
}

func (k Kind) color() *color.Color {
	switch k {
	case Parse:
		return color.New(color.FgRed, color.Bold)
	case Semantic:
		return color.New(color.FgYellow, color.Bold)
	case Type:
		return color.New(color.FgMagenta, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// Diagnostic is a single fatal pipeline error, optionally located in source.
type Diagnostic struct {
	Kind    Kind
	Line    int
	Col     int
	Message string
}

// HasLoc reports whether the diagnostic carries a source location.
func (d Diagnostic) HasLoc() bool { return d.Line > 0 }

// Error implements the error interface so a Diagnostic can flow through
// normal Go error plumbing inside the driver.
func (d Diagnostic) Error() string {
	if d.HasLoc() {
		return fmt.Sprintf("%s[%d:%d]: %s.", d.Kind.prefix(), d.Line, d.Col, d.Message)
	}
	return fmt.Sprintf("%s: %s.", d.Kind.prefix(), d.Message)
}

// New builds a located diagnostic.
func New(kind Kind, line, col int, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Line: line, Col: col, Message: fmt.Sprintf(format, args...)}
}

// Print writes the diagnostic to w, coloring the prefix unless
// color.NoColor is set. fatih/color derives NoColor from whether stdout
// is a terminal; whether w itself is a terminal is not checked.
func Print(w io.Writer, d Diagnostic) {
	c := d.Kind.color()
	c.Fprint(w, d.Kind.prefix())
	if d.HasLoc() {
		fmt.Fprintf(w, "[%d:%d]", d.Line, d.Col)
	}
	fmt.Fprintf(w, ": %s.\n", d.Message)
}
