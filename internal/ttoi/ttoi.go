// Package ttoi lowers a tir.Program into an il.Program: the central
// hoisting transform that extracts every call argument and constructor
// field-value into its own synthesized nullary thunk, leaving Call and
// Constructor nodes carrying only a call index.
package ttoi

import (
	"fmt"

	"github.com/icflang/ic/internal/il"
	"github.com/icflang/ic/internal/tir"
)

// Lower runs the hoisting transform over a fully type-checked program.
// It never fails on well-typed input: any internal inconsistency here
// is a compiler bug, reported as a panic recovered at the driver
// boundary.
func Lower(prog *tir.Program) *il.Program {
	l := &lowerer{tirProg: prog, out: il.NewProgram(), callIndex: map[string]int{}}
	for _, name := range prog.StructOrder {
		s := prog.Structs[name]
		l.out.StructFields[name] = append([]string(nil), s.FieldOrder...)
	}
	for _, name := range prog.FunctionOrder {
		l.lowerFunction(prog.Functions[name])
	}
	return l.out
}

type lowerer struct {
	tirProg *tir.Program
	out     *il.Program
	// per-callee monotonic counter, threaded explicitly rather than kept
	// as package-level mutable state.
	callIndex map[string]int
}

func (l *lowerer) lowerFunction(fn *tir.Function) {
	argNames := make(map[string]int, len(fn.ArgOrder))
	argOrder := make([]string, len(fn.ArgOrder))
	for i, pname := range fn.ArgOrder {
		obf := fn.Name + "__" + pname
		argNames[obf] = i
		argOrder[i] = obf
	}
	body := l.lowerExpr(fn, fn.Body)
	l.out.Add(&il.Function{
		Name:       fn.Name,
		Args:       fn.Args,
		ArgNames:   argNames,
		ArgOrder:   argOrder,
		ParamNames: append([]string(nil), fn.ArgOrder...),
		RetTy:      fn.RetTy,
		Body:       body,
		IsFunction: true,
	})
}

// addThunk registers a synthesized nullary definition for one hoisted
// argument or field value. Its body is lowered in the *caller's*
// context (fn), since the thunk is invoked lazily with the caller's
// activation record as its environment.
func (l *lowerer) addThunk(name string, ty tir.Type, fn *tir.Function, valueExpr tir.Expr) {
	l.out.Add(&il.Function{
		Name:       name,
		RetTy:      ty,
		Body:       l.lowerExpr(fn, valueExpr),
		IsFunction: false,
	})
}

func (l *lowerer) lowerExpr(fn *tir.Function, e tir.Expr) il.Expr {
	switch n := e.(type) {
	case *tir.Var:
		if pos, ok := fn.ArgNames[n.Name]; ok {
			return &il.Local{Name: fn.Name + "__" + n.Name, Position: pos, Type: n.Type}
		}
		if target, ok := l.tirProg.Functions[n.Name]; !ok || len(target.Args) != 0 {
			panic(fmt.Sprintf("internal error: ttoi: variable %s is neither a parameter nor a nullary function", n.Name))
		}
		return &il.Global{Name: n.Name, Type: n.Type}

	case *tir.Num:
		return &il.Num{Value: n.Value, Type: n.Type}

	case *tir.Bool:
		return &il.Bool{Value: n.Value, Type: n.Type}

	case *tir.BinOp:
		return &il.BinOp{
			Op:    lowerOp(n.Op),
			Left:  l.lowerExpr(fn, n.Left),
			Right: l.lowerExpr(fn, n.Right),
			Type:  n.Type,
		}

	case *tir.If:
		return &il.If{
			Cond: l.lowerExpr(fn, n.Cond),
			Then: l.lowerExpr(fn, n.Then),
			Else: l.lowerExpr(fn, n.Else),
			Type: n.Type,
		}

	case *tir.Call:
		callee, ok := l.tirProg.Functions[n.Name]
		if !ok {
			panic(fmt.Sprintf("internal error: ttoi: call to undefined function %s", n.Name))
		}
		// Index is allocated before descending into the arguments, so a
		// call nested inside one of its own arguments gets a strictly
		// later index than its enclosing call.
		idx := l.callIndex[n.Name]
		l.callIndex[n.Name] = idx + 1
		for i, argExpr := range n.Args {
			param := callee.ArgOrder[i]
			l.addThunk(il.ThunkName(n.Name, param, idx), callee.Args[i], fn, argExpr)
		}
		return &il.Call{Callee: n.Name, CallIndex: idx, Type: n.Type}

	case *tir.Field:
		recv := l.lowerExpr(fn, n.Receiver)
		s, ok := l.tirProg.Structs[n.Receiver.Ty().Struct]
		if !ok {
			panic(fmt.Sprintf("internal error: ttoi: field access on undefined struct %s", n.Receiver.Ty().Struct))
		}
		pos, ok := s.FieldNames[n.Name]
		if !ok {
			panic(fmt.Sprintf("internal error: ttoi: struct %s has no field %s", s.Name, n.Name))
		}
		return &il.Field{Receiver: recv, FieldPosition: pos, Type: n.Type}

	case *tir.Constructor:
		s, ok := l.tirProg.Structs[n.StructName]
		if !ok {
			panic(fmt.Sprintf("internal error: ttoi: constructor for undefined struct %s", n.StructName))
		}
		idx := l.callIndex[n.StructName]
		l.callIndex[n.StructName] = idx + 1
		for _, fname := range s.FieldOrder {
			valueExpr, ok := n.Fields[fname]
			if !ok {
				panic(fmt.Sprintf("internal error: ttoi: constructor for %s missing field %s", n.StructName, fname))
			}
			l.addThunk(il.ThunkName(n.StructName, fname, idx), s.Fields[s.FieldNames[fname]], fn, valueExpr)
		}
		return &il.Constructor{StructName: n.StructName, CallIndex: idx, Type: n.Type}
	}
	panic("internal error: ttoi: unhandled TIR expression")
}

func lowerOp(op tir.BinOpKind) il.BinOpKind {
	switch op {
	case tir.Add:
		return il.Add
	case tir.Sub:
		return il.Sub
	case tir.Mul:
		return il.Mul
	case tir.Eq:
		return il.Eq
	case tir.Neq:
		return il.Neq
	case tir.Lt:
		return il.Lt
	case tir.Gt:
		return il.Gt
	case tir.Le:
		return il.Le
	case tir.Ge:
		return il.Ge
	}
	panic("internal error: ttoi: unhandled operator")
}
