package ttoi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icflang/ic/internal/flchk"
	"github.com/icflang/ic/internal/il"
	"github.com/icflang/ic/internal/parser"
	"github.com/icflang/ic/internal/tc"
)

func lower(t *testing.T, src string) *il.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	require.NoError(t, flchk.Check(prog))
	typed, err := tc.Check(prog)
	require.NoError(t, err)
	return Lower(typed)
}

func TestCallHoistsArgumentIntoThunk(t *testing.T) {
	src := "twice(x:int):int = x + x\nresult:int = twice(10)"
	lowered := lower(t, src)

	twice, ok := lowered.Defs["twice"]
	require.True(t, ok)
	assert.True(t, twice.IsFunction)
	binop, ok := twice.Body.(*il.BinOp)
	require.True(t, ok)
	left, ok := binop.Left.(*il.Local)
	require.True(t, ok)
	assert.Equal(t, 0, left.Position)

	thunk, ok := lowered.Defs["twice__x__0"]
	require.True(t, ok)
	assert.False(t, thunk.IsFunction)
	num, ok := thunk.Body.(*il.Num)
	require.True(t, ok)
	assert.Equal(t, int64(10), num.Value)

	call, ok := lowered.Defs["result"].Body.(*il.Call)
	require.True(t, ok)
	assert.Equal(t, "twice", call.Callee)
	assert.Equal(t, 0, call.CallIndex)
}

func TestConstructorHoistsFieldsIntoThunks(t *testing.T) {
	src := "struct P { a:int, b:int }\nresult:int = P{a=1,b=2}.b"
	lowered := lower(t, src)

	_, ok := lowered.Defs["P__a__0"]
	require.True(t, ok)
	_, ok = lowered.Defs["P__b__0"]
	require.True(t, ok)

	field, ok := lowered.Defs["result"].Body.(*il.Field)
	require.True(t, ok)
	assert.Equal(t, 1, field.FieldPosition)
	ctor, ok := field.Receiver.(*il.Constructor)
	require.True(t, ok)
	assert.Equal(t, "P", ctor.StructName)
	assert.Equal(t, 0, ctor.CallIndex)
}

func TestPerCalleeCallIndexIncrements(t *testing.T) {
	src := "id(x:int):int = x\nresult:int = id(1) + id(2)"
	lowered := lower(t, src)

	_, ok := lowered.Defs["id__x__0"]
	require.True(t, ok)
	_, ok = lowered.Defs["id__x__1"]
	require.True(t, ok)
}

func TestZeroParamFunctionReachableViaGlobal(t *testing.T) {
	src := "answer:int = 42\nresult:int = answer"
	lowered := lower(t, src)
	g, ok := lowered.Defs["result"].Body.(*il.Global)
	require.True(t, ok)
	assert.Equal(t, "answer", g.Name)
}

func TestZeroFieldStructUsesEmptyArgPath(t *testing.T) {
	src := "struct Unit {}\nresult:int = if true then 1 else 2"
	lowered := lower(t, src)
	_, ok := lowered.StructFields["Unit"]
	require.True(t, ok)
	assert.Empty(t, lowered.StructFields["Unit"])
}

func TestNestedCallAssignsIndicesBeforeDescending(t *testing.T) {
	src := "inc(x:int):int = x + 1\nresult:int = inc(inc(1))"
	lowered := lower(t, src)

	outer, ok := lowered.Defs["result"].Body.(*il.Call)
	require.True(t, ok)
	assert.Equal(t, 0, outer.CallIndex)

	argThunk, ok := lowered.Defs["inc__x__0"]
	require.True(t, ok)
	inner, ok := argThunk.Body.(*il.Call)
	require.True(t, ok)
	assert.Equal(t, 1, inner.CallIndex)
}

func TestNoThunkNameCollidesWithAFunctionName(t *testing.T) {
	src := "twice(x:int):int = x + x\nresult:int = twice(10)"
	lowered := lower(t, src)
	for _, name := range lowered.Order {
		def := lowered.Defs[name]
		if def.IsFunction {
			assert.NotContains(t, name, "__")
		}
	}
}
