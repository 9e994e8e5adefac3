// Package itoc emits a C translation unit from an il.Program and invokes
// the external C compiler to link it against the IC runtime.
package itoc

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/icflang/ic/internal/il"
)

// BuildDir is the fixed output directory, created relative to the
// current working directory.
const BuildDir = "_build"

// Result reports where the generated C source and executable ended up.
type Result struct {
	CPath   string
	OutPath string
}

// Generate writes prog as _build/out.c and invokes the external C
// compiler (located via exec.LookPath) against $icHome/runtime. icHome
// must be the root of an installed IC runtime (its runtime/include and
// runtime/lib subdirectories hold the headers and library).
func Generate(prog *il.Program, icHome string) (*Result, error) {
	if err := os.MkdirAll(BuildDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", BuildDir, err)
	}

	cPath := filepath.Join(BuildDir, "out.c")
	f, err := os.Create(cPath)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", cPath, err)
	}
	defer f.Close()

	if _, err := f.WriteString(Source(prog)); err != nil {
		return nil, fmt.Errorf("writing %s: %w", cPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", cPath, err)
	}

	outPath := filepath.Join(BuildDir, "out")
	if err := compile(cPath, outPath, icHome); err != nil {
		return nil, err
	}
	return &Result{CPath: cPath, OutPath: outPath}, nil
}

// Source renders prog as a complete C translation unit, without touching
// the filesystem or invoking a compiler.
func Source(prog *il.Program) string {
	var b strings.Builder
	w := bufio.NewWriter(&b)
	c := &codegen{w: w}
	c.emitProgram(prog)
	w.Flush()
	return b.String()
}

func compile(cPath, outPath, icHome string) error {
	ccName := os.Getenv("CC")
	if ccName == "" {
		ccName = "cc"
	}
	ccPath, err := exec.LookPath(ccName)
	if err != nil {
		return fmt.Errorf("locating C compiler %q: %w", ccName, err)
	}

	args := []string{
		"-O3",
		"-I", filepath.Join(icHome, "runtime", "include"),
		"-L", filepath.Join(icHome, "runtime", "lib"),
		cPath,
		"-o", outPath,
		"-licr",
	}
	cmd := exec.Command(ccPath, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("C compiler failed: %w", err)
	}
	return nil
}

// codegen tracks indentation and per-function temporary numbering while
// writing straight-line C statements.
type codegen struct {
	w        *bufio.Writer
	indent   int
	tempNext int
}

func (c *codegen) writeIndent() {
	for i := 0; i < c.indent; i++ {
		c.w.WriteString("    ")
	}
}

func (c *codegen) line(format string, args ...any) {
	c.writeIndent()
	fmt.Fprintf(c.w, format, args...)
	c.w.WriteByte('\n')
}

func (c *codegen) newTemp() string {
	t := fmt.Sprintf("__t%d", c.tempNext)
	c.tempNext++
	return t
}

func (c *codegen) emitProgram(prog *il.Program) {
	c.line("#include \"value.h\"")
	c.line("#include <locale.h>")
	c.line("#include <stdio.h>")
	c.line("#include <time.h>")
	c.w.WriteByte('\n')

	for _, name := range prog.Order {
		c.line("static IC_VALUE %s(IC_LAR_PROTO* lar);", name)
	}
	c.w.WriteByte('\n')

	c.emitMain()
	c.w.WriteByte('\n')

	for _, name := range prog.Order {
		c.emitDef(prog, prog.Defs[name])
		c.w.WriteByte('\n')
	}
}

func (c *codegen) emitMain() {
	c.line("int main(void) {")
	c.indent++
	c.line("setlocale(LC_ALL, \"\");")
	c.line("IC_LAR_PROTO* __root = IC_lar_new(NULL, 0, NULL);")
	c.line("IC_FUNCTION_PUSH(__root);")
	c.line("IC_VALUE __result = result(IC_lar_new(__root, 0, NULL));")
	c.line("IC_value_show(__result);")
	c.line("IC_FUNCTION_POP(__root);")
	c.line("fprintf(stderr, \"gc time: %%f\\n\", IC_get_gc_time());")
	c.line("fprintf(stderr, \"allocated: %%zu\\n\", IC_get_alloc_size());")
	c.line("IC_mem_cleanup();")
	c.line("return 0;")
	c.indent--
	c.line("}")
}

func (c *codegen) emitDef(prog *il.Program, def *il.Function) {
	c.tempNext = 0
	c.line("static IC_VALUE %s(IC_LAR_PROTO* lar) {", def.Name)
	c.indent++
	if def.IsFunction {
		c.line("IC_FUNCTION_PUSH(lar);")
	}
	result := c.emitExpr(prog, def.Body)
	if def.IsFunction {
		c.line("IC_FUNCTION_POP(lar);")
	}
	c.line("return %s;", result)
	c.indent--
	c.line("}")
}

// emitExpr writes the statements computing e and returns the name of the
// temporary holding its value.
func (c *codegen) emitExpr(prog *il.Program, e il.Expr) string {
	switch n := e.(type) {
	case *il.Local:
		t := c.newTemp()
		c.line("IC_VALUE %s = IC_lar_get_arg(lar, %d);", t, n.Position)
		return t

	case *il.Global:
		t := c.newTemp()
		c.line("IC_VALUE %s = %s(IC_lar_new(lar, 0, NULL));", t, n.Name)
		return t

	case *il.Num:
		t := c.newTemp()
		c.line("IC_VALUE %s = IC_BOX(%d);", t, n.Value)
		return t

	case *il.Bool:
		t := c.newTemp()
		v := 0
		if n.Value {
			v = 1
		}
		c.line("IC_VALUE %s = IC_BOX((int)%d);", t, v)
		return t

	case *il.BinOp:
		lt := c.emitExpr(prog, n.Left)
		rt := c.emitExpr(prog, n.Right)
		t := c.newTemp()
		c.line("IC_VALUE %s = IC_%s(%s, %s);", t, binOpName(n.Op), lt, rt)
		return t

	case *il.If:
		ct := c.emitExpr(prog, n.Cond)
		t := c.newTemp()
		c.line("IC_VALUE %s;", t)
		c.line("if (IC_UNBOX(%s)) {", ct)
		c.indent++
		tt := c.emitExpr(prog, n.Then)
		c.line("%s = %s;", t, tt)
		c.indent--
		c.line("} else {")
		c.indent++
		et := c.emitExpr(prog, n.Else)
		c.line("%s = %s;", t, et)
		c.indent--
		c.line("}")
		return t

	case *il.Call:
		callee := prog.Defs[n.Callee]
		return c.emitCallLike(n.Callee, callee.ParamNames, n.CallIndex)

	case *il.Field:
		ot := c.emitExpr(prog, n.Receiver)
		t := c.newTemp()
		c.line("IC_VALUE %s = IC_lar_get_arg((IC_LAR_PROTO*)%s, %d);", t, ot, n.FieldPosition)
		return t

	case *il.Constructor:
		fields := prog.StructFields[n.StructName]
		return c.emitCallLike(n.StructName, fields, n.CallIndex)
	}
	panic(fmt.Sprintf("internal error: itoc: unhandled IL expression %T", e))
}

// emitCallLike emits the shared Call/Constructor pattern: a LARF array
// naming each parameter's (or field's) synthesized thunk, in positional
// order, then a single call that builds a new activation record from it.
func (c *codegen) emitCallLike(callee string, paramNames []string, callIndex int) string {
	t := c.newTemp()
	if len(paramNames) == 0 {
		c.line("IC_VALUE %s = %s(IC_lar_new(lar, 0, NULL));", t, callee)
		return t
	}
	argsVar := c.newTemp() + "_args"
	c.line("IC_LARF %s[] = {", argsVar)
	c.indent++
	for _, p := range paramNames {
		c.line("%s,", il.ThunkName(callee, p, callIndex))
	}
	c.indent--
	c.line("};")
	c.line("IC_VALUE %s = %s(IC_lar_new(lar, %d, %s));", t, callee, len(paramNames), argsVar)
	return t
}

func binOpName(op il.BinOpKind) string {
	switch op {
	case il.Add:
		return "ADD"
	case il.Sub:
		return "SUB"
	case il.Mul:
		return "MUL"
	case il.Eq:
		return "EQ"
	case il.Neq:
		return "NEQ"
	case il.Lt:
		return "LT"
	case il.Gt:
		return "GT"
	case il.Le:
		return "LE"
	case il.Ge:
		return "GE"
	}
	return "ADD"
}
