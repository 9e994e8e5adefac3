// Package il defines the lowered intermediate language ttoi produces:
// every call-site argument and constructor field has been hoisted into
// its own nullary top-level thunk, so Call and Constructor nodes carry
// only a call index, never an argument list.
package il

import (
	"strconv"

	"github.com/icflang/ic/internal/tir"
)

// Program is keyed by definition name; Order preserves a deterministic
// emission order (functions and thunks interleaved as ttoi created
// them).
type Program struct {
	Defs  map[string]*Function
	Order []string
	// StructFields records, per struct name, its field names in
	// declared order — needed by the C emitter to build a Constructor
	// call site's "struct__field__k" thunk names without reaching back
	// into the TIR.
	StructFields map[string][]string
}

func NewProgram() *Program {
	return &Program{Defs: make(map[string]*Function), StructFields: make(map[string][]string)}
}

// Add registers def, tracking emission order. Names are unique by
// construction (see package ttoi).
func (p *Program) Add(def *Function) {
	p.Defs[def.Name] = def
	p.Order = append(p.Order, def.Name)
}

// Function is either a real FL function (IsFunction true, needs an
// explicit runtime stack push/pop) or a synthesized nullary thunk
// (IsFunction false) created by hoisting one call argument or
// constructor field.
type Function struct {
	Name       string
	Args       []tir.Type
	ArgNames   map[string]int // obfuscated name -> position
	ArgOrder   []string        // obfuscated names, positional
	ParamNames []string        // original (un-obfuscated) parameter names, positional — used to build "callee__param__k" thunk names at a call site
	RetTy      tir.Type
	Body       Expr
	IsFunction bool
}

type Expr interface {
	exprNode()
	Ty() tir.Type
}

// Local is parameter access by position within the current frame.
type Local struct {
	Name     string
	Position int
	Type     tir.Type
}

// Global references a nullary FL function by its own zero-argument call.
type Global struct {
	Name string
	Type tir.Type
}

type Num struct {
	Value int64
	Type  tir.Type
}

type Bool struct {
	Value bool
	Type  tir.Type
}

type BinOpKind int

const (
	Add BinOpKind = iota
	Sub
	Mul
	Eq
	Neq
	Lt
	Gt
	Le
	Ge
)

type BinOp struct {
	Op    BinOpKind
	Left  Expr
	Right Expr
	Type  tir.Type
}

type If struct {
	Cond Expr
	Then Expr
	Else Expr
	Type tir.Type
}

// Call references a callee and the call index assigned to this call
// site; its arguments live as separately-registered thunks named
// "<callee>__<param>__<index>", not inline.
type Call struct {
	Callee    string
	CallIndex int
	Type      tir.Type
}

// Field addresses a struct field by its positional index.
type Field struct {
	Receiver      Expr
	FieldPosition int
	Type          tir.Type
}

// Constructor mirrors Call: its field values live as thunks named
// "<struct>__<field>__<index>".
type Constructor struct {
	StructName string
	CallIndex  int
	Type       tir.Type
}

func (*Local) exprNode()       {}
func (*Global) exprNode()      {}
func (*Num) exprNode()         {}
func (*Bool) exprNode()        {}
func (*BinOp) exprNode()       {}
func (*If) exprNode()          {}
func (*Call) exprNode()        {}
func (*Field) exprNode()       {}
func (*Constructor) exprNode() {}

func (e *Local) Ty() tir.Type       { return e.Type }
func (e *Global) Ty() tir.Type      { return e.Type }
func (e *Num) Ty() tir.Type         { return e.Type }
func (e *Bool) Ty() tir.Type        { return e.Type }
func (e *BinOp) Ty() tir.Type       { return e.Type }
func (e *If) Ty() tir.Type          { return e.Type }
func (e *Call) Ty() tir.Type        { return e.Type }
func (e *Field) Ty() tir.Type       { return e.Type }
func (e *Constructor) Ty() tir.Type { return e.Type }

// ThunkName builds the synthesized name for the k-th call to callee's
// parameter p — "callee__p__k". The identifier grammar forbids '_', so
// this can never collide with a user identifier.
func ThunkName(callee, param string, index int) string {
	return callee + "__" + param + "__" + strconv.Itoa(index)
}
