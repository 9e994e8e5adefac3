// Package tc type-checks a validated FL ast.Program into a tir.Program,
// attaching a concrete tir.Type to every expression node.
package tc

import (
	"github.com/icflang/ic/internal/ast"
	"github.com/icflang/ic/internal/diag"
	"github.com/icflang/ic/internal/tir"
)

func errf(loc ast.Loc, format string, args ...any) error {
	return diag.New(diag.Type, loc.Line, loc.Col, format, args...)
}

// Check type-checks prog, which must already have passed flchk.
func Check(prog *ast.Program) (*tir.Program, error) {
	out := &tir.Program{
		Functions:   make(map[string]*tir.Function),
		Structs:     make(map[string]*tir.Struct),
		StructOrder: append([]string(nil), prog.StructOrder...),
	}

	for _, name := range prog.StructOrder {
		s := prog.Structs[name]
		ts := &tir.Struct{
			Name:       s.Name,
			FieldNames: s.FieldNames,
			FieldOrder: s.FieldOrder,
		}
		for _, t := range s.Fields {
			rt, err := resolveType(prog, s.Loc, t)
			if err != nil {
				return nil, err
			}
			ts.Fields = append(ts.Fields, rt)
		}
		out.Structs[name] = ts
	}

	// Register every function's signature before checking any body, so
	// recursive and forward-referencing calls see a fully-typed callee.
	for _, name := range prog.FunctionOrder {
		fn := prog.Functions[name]
		tf := &tir.Function{
			Name:     fn.Name,
			ArgNames: fn.ArgNames,
			ArgOrder: fn.ArgOrder,
		}
		for _, t := range fn.Args {
			rt, err := resolveType(prog, fn.Loc, t)
			if err != nil {
				return nil, err
			}
			tf.Args = append(tf.Args, rt)
		}
		rt, err := resolveType(prog, fn.Loc, fn.RetTy)
		if err != nil {
			return nil, err
		}
		tf.RetTy = rt
		out.Functions[name] = tf
		out.FunctionOrder = append(out.FunctionOrder, name)
	}

	c := &checker{ast: prog, tir: out}
	for _, name := range prog.FunctionOrder {
		fn := prog.Functions[name]
		tf := out.Functions[name]
		body, err := c.check(fn, tf, fn.Body)
		if err != nil {
			return nil, err
		}
		if body.Ty() != tf.RetTy {
			return nil, errf(fn.Loc, "Function %s has declared return type %s but body has type %s", fn.Name, tf.RetTy, body.Ty())
		}
		tf.Body = body
	}

	return out, nil
}

func resolveType(prog *ast.Program, loc ast.Loc, t ast.TypeName) (tir.Type, error) {
	switch t {
	case ast.IntType:
		return tir.IntType, nil
	case ast.BoolType:
		return tir.BoolType, nil
	default:
		if _, ok := prog.Structs[string(t)]; ok {
			return tir.StructType(string(t)), nil
		}
		return tir.Type{}, errf(loc, "Type %s is undefined", t)
	}
}

type checker struct {
	ast *ast.Program
	tir *tir.Program
}

func (c *checker) check(fn *ast.Function, tf *tir.Function, e ast.Expr) (tir.Expr, error) {
	switch n := e.(type) {
	case *ast.Num:
		return &tir.Num{Value: n.Value, Type: tir.IntType}, nil

	case *ast.Bool:
		return &tir.Bool{Value: n.Value, Type: tir.BoolType}, nil

	case *ast.Var:
		if pos, ok := fn.ArgNames[n.Name]; ok {
			return &tir.Var{Name: n.Name, Type: tf.Args[pos]}, nil
		}
		target := c.tir.Functions[n.Name]
		return &tir.Var{Name: n.Name, Type: target.RetTy}, nil

	case *ast.BinOp:
		left, err := c.check(fn, tf, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.check(fn, tf, n.Right)
		if err != nil {
			return nil, err
		}
		return c.checkBinOp(n, left, right)

	case *ast.If:
		cond, err := c.check(fn, tf, n.Cond)
		if err != nil {
			return nil, err
		}
		if cond.Ty() != tir.BoolType {
			return nil, errf(n.Cond.Position(), "Cannot use %s as a condition", cond.Ty())
		}
		then, err := c.check(fn, tf, n.Then)
		if err != nil {
			return nil, err
		}
		els, err := c.check(fn, tf, n.Else)
		if err != nil {
			return nil, err
		}
		if then.Ty() != els.Ty() {
			return nil, errf(n.Loc, "If branches have different types: %s and %s", then.Ty(), els.Ty())
		}
		return &tir.If{Cond: cond, Then: then, Else: els, Type: then.Ty()}, nil

	case *ast.Call:
		callee := c.tir.Functions[n.Name]
		var args []tir.Expr
		for i, a := range n.Args {
			ta, err := c.check(fn, tf, a)
			if err != nil {
				return nil, err
			}
			if ta.Ty() != callee.Args[i] {
				return nil, errf(a.Position(), "Argument %d to function %s has type %s but should have type %s", i+1, n.Name, ta.Ty(), callee.Args[i])
			}
			args = append(args, ta)
		}
		return &tir.Call{Name: n.Name, Args: args, Type: callee.RetTy}, nil

	case *ast.Field:
		recv, err := c.check(fn, tf, n.Receiver)
		if err != nil {
			return nil, err
		}
		if recv.Ty().Kind != tir.StructKind {
			return nil, errf(n.Loc, "Cannot access field %s on non-struct type %s", n.Name, recv.Ty())
		}
		s := c.tir.Structs[recv.Ty().Struct]
		pos, ok := s.FieldNames[n.Name]
		if !ok {
			return nil, errf(n.Loc, "Struct %s has no field %s", s.Name, n.Name)
		}
		return &tir.Field{Receiver: recv, Name: n.Name, Type: s.Fields[pos]}, nil

	case *ast.Constructor:
		s := c.tir.Structs[n.StructName]
		fields := make(map[string]tir.Expr, len(n.Fields))
		for _, fname := range n.FieldOrder {
			fexpr := n.Fields[fname]
			tf2, err := c.check(fn, tf, fexpr)
			if err != nil {
				return nil, err
			}
			want := s.Fields[s.FieldNames[fname]]
			if tf2.Ty() != want {
				return nil, errf(fexpr.Position(), "Field %s of struct %s has type %s but should have type %s", fname, n.StructName, tf2.Ty(), want)
			}
			fields[fname] = tf2
		}
		return &tir.Constructor{StructName: n.StructName, Fields: fields, FieldOrder: n.FieldOrder, Type: tir.StructType(n.StructName)}, nil
	}
	return nil, errf(e.Position(), "internal error: unhandled expression in type checker")
}

func (c *checker) checkBinOp(n *ast.BinOp, left, right tir.Expr) (tir.Expr, error) {
	switch n.Op {
	case ast.Add, ast.Sub, ast.Mul:
		if left.Ty() != tir.IntType || right.Ty() != tir.IntType {
			return nil, errf(n.Loc, "Cannot %s %s and %s", arithVerb(n.Op), left.Ty(), right.Ty())
		}
		return &tir.BinOp{Op: tirOp(n.Op), Left: left, Right: right, Type: tir.IntType}, nil

	case ast.Lt, ast.Le, ast.Gt, ast.Ge:
		if left.Ty() != tir.IntType || right.Ty() != tir.IntType {
			return nil, errf(n.Loc, "Cannot compare %s and %s", left.Ty(), right.Ty())
		}
		return &tir.BinOp{Op: tirOp(n.Op), Left: left, Right: right, Type: tir.BoolType}, nil

	case ast.Eq, ast.Neq:
		if !left.Ty().IsBase() || !right.Ty().IsBase() || left.Ty() != right.Ty() {
			return nil, errf(n.Loc, "Cannot compare %s and %s for equality", left.Ty(), right.Ty())
		}
		return &tir.BinOp{Op: tirOp(n.Op), Left: left, Right: right, Type: tir.BoolType}, nil
	}
	return nil, errf(n.Loc, "internal error: unhandled operator")
}

func arithVerb(op ast.BinOpKind) string {
	switch op {
	case ast.Add:
		return "add"
	case ast.Sub:
		return "subtract"
	case ast.Mul:
		return "multiply"
	}
	return "combine"
}

func tirOp(op ast.BinOpKind) tir.BinOpKind {
	switch op {
	case ast.Add:
		return tir.Add
	case ast.Sub:
		return tir.Sub
	case ast.Mul:
		return tir.Mul
	case ast.Eq:
		return tir.Eq
	case ast.Neq:
		return tir.Neq
	case ast.Lt:
		return tir.Lt
	case ast.Gt:
		return tir.Gt
	case ast.Le:
		return tir.Le
	case ast.Ge:
		return tir.Ge
	}
	return tir.Add
}
