// Package driver sequences the full FL-to-C pipeline: read source, lex
// and parse, run flchk, tc, ttoi, and itoc, and invoke the external C
// compiler. It is the single seam where an internal panic is recovered
// and turned into a clean error return.
package driver

import (
	"fmt"
	"os"

	"github.com/icflang/ic/internal/diag"
	"github.com/icflang/ic/internal/flchk"
	"github.com/icflang/ic/internal/itoc"
	"github.com/icflang/ic/internal/parser"
	"github.com/icflang/ic/internal/tc"
	"github.com/icflang/ic/internal/ttoi"
)

// Compile runs the full pipeline over the source at sourcePath, emitting
// _build/out.c and invoking the external C compiler with icHome's
// runtime. A parse, flchk or tc diagnostic is printed to stderr once,
// by Compile, and then returned as the error.
func Compile(sourcePath, icHome string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			internalErr := fmt.Errorf("internal error: %v", r)
			fmt.Fprintln(os.Stderr, internalErr)
			err = internalErr
		}
	}()

	fmt.Fprintf(os.Stderr, "TRACE: reading %s\n", sourcePath)
	src, readErr := os.ReadFile(sourcePath)
	if readErr != nil {
		return fmt.Errorf("reading %s: %w", sourcePath, readErr)
	}

	fmt.Fprintln(os.Stderr, "TRACE: parsing")
	prog, err := parser.Parse(string(src))
	if err != nil {
		report(err)
		return err
	}

	fmt.Fprintln(os.Stderr, "TRACE: flchk")
	if err := flchk.Check(prog); err != nil {
		report(err)
		return err
	}

	fmt.Fprintln(os.Stderr, "TRACE: tc")
	typed, err := tc.Check(prog)
	if err != nil {
		report(err)
		return err
	}

	fmt.Fprintln(os.Stderr, "TRACE: ttoi")
	lowered := ttoi.Lower(typed)

	fmt.Fprintln(os.Stderr, "TRACE: itoc")
	if icHome == "" {
		return fmt.Errorf("IC_HOME is not set")
	}
	result, err := itoc.Generate(lowered, icHome)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "TRACE: wrote %s\n", result.OutPath)
	return nil
}

func report(err error) {
	if d, ok := err.(diag.Diagnostic); ok {
		diag.Print(os.Stderr, d)
		return
	}
	fmt.Fprintln(os.Stderr, err)
}
