package tc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icflang/ic/internal/flchk"
	"github.com/icflang/ic/internal/parser"
	"github.com/icflang/ic/internal/tir"
)

func typecheck(t *testing.T, src string) (*tir.Program, error) {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	require.NoError(t, flchk.Check(prog))
	return Check(prog)
}

func TestIdentityExpr(t *testing.T) {
	typed, err := typecheck(t, "result:int = 42")
	require.NoError(t, err)
	assert.Equal(t, tir.IntType, typed.Functions["result"].Body.Ty())
}

func TestArithmeticIsInt(t *testing.T) {
	typed, err := typecheck(t, "result:int = 2 + 3 * 4")
	require.NoError(t, err)
	assert.Equal(t, tir.IntType, typed.Functions["result"].Body.Ty())
}

func TestComparisonIsBool(t *testing.T) {
	typed, err := typecheck(t, "result:bool = 1 < 2")
	require.NoError(t, err)
	assert.Equal(t, tir.BoolType, typed.Functions["result"].Body.Ty())
}

func TestIfBranchesMustMatch(t *testing.T) {
	_, err := typecheck(t, "result:int = if true then 1 else false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[Type error]")
}

func TestAddingBoolIsTypeError(t *testing.T) {
	_, err := typecheck(t, "result:int = 1 + true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[Type error]")
}

func TestStructEqualityIsRejected(t *testing.T) {
	src := "struct P { a:int }\nresult:bool = P{a=1} == P{a=2}"
	_, err := typecheck(t, src)
	require.Error(t, err)
}

func TestArgumentTypeMismatch(t *testing.T) {
	src := "f(x:int):int = x\nresult:int = f(true)"
	_, err := typecheck(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Argument")
}

func TestDeclaredReturnTypeMismatch(t *testing.T) {
	_, err := typecheck(t, "result:bool = 1")
	require.Error(t, err)
}

func TestFieldAccessType(t *testing.T) {
	src := "struct P { a:int, b:bool }\nresult:bool = P{a=1,b=true}.b"
	typed, err := typecheck(t, src)
	require.NoError(t, err)
	assert.Equal(t, tir.BoolType, typed.Functions["result"].Body.Ty())
}

func TestNullaryVarUsesFunctionReturnType(t *testing.T) {
	src := "one:int = 1\nresult:int = one + one"
	typed, err := typecheck(t, src)
	require.NoError(t, err)
	assert.Equal(t, tir.IntType, typed.Functions["result"].Body.Ty())
}
