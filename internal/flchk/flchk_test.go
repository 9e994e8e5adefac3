package flchk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icflang/ic/internal/parser"
)

func checkSrc(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	return Check(prog)
}

func TestValidProgramsPass(t *testing.T) {
	srcs := []string{
		"result:int = 42",
		"twice(x:int):int = x + x\nresult:int = twice(10)",
		"struct P { a:int, b:int }\nresult:int = P{a=1,b=2}.b",
		"result:int = if 1 == 2 then 10 else 20",
		"result:bool = true",
	}
	for _, src := range srcs {
		assert.NoError(t, checkSrc(t, src))
	}
}

func TestMissingResultFails(t *testing.T) {
	err := checkSrc(t, "f:int=1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[Semantic error]")
	assert.Contains(t, err.Error(), "result")
}

func TestResultMustBeNullary(t *testing.T) {
	err := checkSrc(t, "result(x:int):int = x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "result")
}

func TestShadowingParameterFails(t *testing.T) {
	src := "g:int = 1\nf(g:int):int = g\nresult:int = f(1)"
	err := checkSrc(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shadows")
}

func TestUndefinedFunctionCallFails(t *testing.T) {
	err := checkSrc(t, "result:int = nope(1)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined")
}

func TestUndefinedStructFails(t *testing.T) {
	err := checkSrc(t, "result:int = Nope{}.x")
	require.Error(t, err)
}

func TestArityMismatchFails(t *testing.T) {
	src := "f(x:int):int=x\nresult:int=f(1,2)"
	err := checkSrc(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arguments")
}

func TestConstructorMissingFieldFails(t *testing.T) {
	src := "struct P { a:int, b:int }\nresult:int = P{a=1}.a"
	err := checkSrc(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing field")
}

func TestConstructorExtraFieldFails(t *testing.T) {
	src := "struct P { a:int }\nresult:int = P{a=1,b=2}.a"
	err := checkSrc(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no field")
}

func TestUndefinedVariableFails(t *testing.T) {
	err := checkSrc(t, "f(x:int):int = y\nresult:int = f(1)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Variable")
}

func TestUndefinedTypeFails(t *testing.T) {
	err := checkSrc(t, "f(x:Nope):int = 1\nresult:int = f(1)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Type")
}
