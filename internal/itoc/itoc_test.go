package itoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icflang/ic/internal/flchk"
	"github.com/icflang/ic/internal/parser"
	"github.com/icflang/ic/internal/tc"
	"github.com/icflang/ic/internal/ttoi"
)

func generateSource(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	require.NoError(t, flchk.Check(prog))
	typed, err := tc.Check(prog)
	require.NoError(t, err)
	lowered := ttoi.Lower(typed)
	return Source(lowered)
}

func TestEmitsPreludeAndMain(t *testing.T) {
	out := generateSource(t, "result:int = 42")
	assert.Contains(t, out, `#include "value.h"`)
	assert.Contains(t, out, "int main(void) {")
	assert.Contains(t, out, "result(IC_lar_new(__root, 0, NULL))")
	assert.Contains(t, out, "IC_value_show(__result);")
}

func TestEmitsPrototypeForEveryDef(t *testing.T) {
	out := generateSource(t, "twice(x:int):int = x + x\nresult:int = twice(10)")
	assert.Contains(t, out, "static IC_VALUE twice(IC_LAR_PROTO* lar);")
	assert.Contains(t, out, "static IC_VALUE result(IC_LAR_PROTO* lar);")
	assert.Contains(t, out, "static IC_VALUE twice__x__0(IC_LAR_PROTO* lar);")
}

func TestFunctionPushPopOnlyOnRealFunctions(t *testing.T) {
	out := generateSource(t, "twice(x:int):int = x + x\nresult:int = twice(10)")
	assert.Contains(t, out, "IC_FUNCTION_PUSH(lar);")
	assert.Contains(t, out, "IC_FUNCTION_POP(lar);")
	// The hoisted argument thunk has neither a push nor a pop.
	assert.Contains(t, out, "static IC_VALUE twice__x__0(IC_LAR_PROTO* lar) {\n    IC_VALUE __t0 = IC_BOX(10);\n    return __t0;\n}")
}

func TestCallEmitsLARFArrayOrderedByParamPosition(t *testing.T) {
	out := generateSource(t, "add(a:int,b:int):int = a + b\nresult:int = add(1,2)")
	assert.Contains(t, out, "IC_LARF")
	assert.Contains(t, out, "add__a__0,")
	assert.Contains(t, out, "add__b__0,")
}

func TestZeroFieldConstructorUsesEmptyArgPath(t *testing.T) {
	out := generateSource(t, "struct Unit {}\nf(u:Unit):int = 1\nresult:int = f(Unit{})")
	assert.NotContains(t, out, "Unit__")
}

func TestIfEmitsBranchAssignment(t *testing.T) {
	out := generateSource(t, "result:int = if 1 == 2 then 10 else 20")
	assert.Contains(t, out, "if (IC_UNBOX(")
	assert.Contains(t, out, "} else {")
}

func TestFieldAccessCastsReceiverToLAR(t *testing.T) {
	out := generateSource(t, "struct P { a:int, b:int }\nresult:int = P{a=1,b=2}.b")
	assert.Contains(t, out, "(IC_LAR_PROTO*)")
}

func TestBinOpEmitsRuntimeHelper(t *testing.T) {
	out := generateSource(t, "result:int = 2 + 3 * 4")
	assert.Contains(t, out, "IC_ADD(")
	assert.Contains(t, out, "IC_MUL(")
}
