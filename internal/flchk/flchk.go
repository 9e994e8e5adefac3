// Package flchk runs the eight semantic passes that validate an FL
// ast.Program before type checking. Passes run in a fixed order because
// later ones assume earlier ones already hold (arity checking, for
// instance, assumes every Call names a defined function).
package flchk

import (
	"github.com/icflang/ic/internal/ast"
	"github.com/icflang/ic/internal/diag"
)

func errf(loc ast.Loc, format string, args ...any) error {
	return diag.New(diag.Semantic, loc.Line, loc.Col, format, args...)
}

// Check runs all eight passes in order, returning the first diagnostic
// raised.
func Check(prog *ast.Program) error {
	checks := []func(*ast.Program) error{
		checkResultExists,
		checkNoShadowing,
		checkCallsDefined,
		checkConstructorsDefined,
		checkArity,
		checkConstructorFields,
		checkVarsResolved,
		checkTypesResolve,
	}
	for _, c := range checks {
		if err := c(prog); err != nil {
			return err
		}
	}
	return nil
}

// walkExprs visits every expression in every function body, in source
// order, calling visit(fn, expr) pre-order (parent before children).
// The walk stops and returns the first non-nil error.
func walkExprs(prog *ast.Program, visit func(fn *ast.Function, e ast.Expr) error) error {
	for _, name := range prog.FunctionOrder {
		fn := prog.Functions[name]
		if err := walkExpr(fn, fn.Body, visit); err != nil {
			return err
		}
	}
	return nil
}

func walkExpr(fn *ast.Function, e ast.Expr, visit func(*ast.Function, ast.Expr) error) error {
	if e == nil {
		return nil
	}
	if err := visit(fn, e); err != nil {
		return err
	}
	switch n := e.(type) {
	case *ast.Var, *ast.Num, *ast.Bool:
		return nil
	case *ast.BinOp:
		if err := walkExpr(fn, n.Left, visit); err != nil {
			return err
		}
		return walkExpr(fn, n.Right, visit)
	case *ast.If:
		if err := walkExpr(fn, n.Cond, visit); err != nil {
			return err
		}
		if err := walkExpr(fn, n.Then, visit); err != nil {
			return err
		}
		return walkExpr(fn, n.Else, visit)
	case *ast.Call:
		for _, a := range n.Args {
			if err := walkExpr(fn, a, visit); err != nil {
				return err
			}
		}
		return nil
	case *ast.Field:
		return walkExpr(fn, n.Receiver, visit)
	case *ast.Constructor:
		for _, fname := range n.FieldOrder {
			if err := walkExpr(fn, n.Fields[fname], visit); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// 1. result exists and is nullary.
func checkResultExists(prog *ast.Program) error {
	result, ok := prog.Functions["result"]
	if !ok || len(result.Args) != 0 {
		return errf(ast.Loc{Line: 1, Col: 1}, "Exactly one 'result' nullary function must be defined")
	}
	return nil
}

// 2. no parameter shadows a global function or struct name.
func checkNoShadowing(prog *ast.Program) error {
	for _, name := range prog.FunctionOrder {
		fn := prog.Functions[name]
		for _, arg := range fn.ArgOrder {
			_, isFunc := prog.Functions[arg]
			_, isStruct := prog.Structs[arg]
			if isFunc || isStruct {
				return errf(fn.Loc, "Parameter %s in function %s shadows global name %s", arg, fn.Name, arg)
			}
		}
	}
	return nil
}

// 3. every Call references a defined function.
func checkCallsDefined(prog *ast.Program) error {
	return walkExprs(prog, func(fn *ast.Function, e ast.Expr) error {
		if c, ok := e.(*ast.Call); ok {
			if _, exists := prog.Functions[c.Name]; !exists {
				return errf(c.Loc, "Function %s is undefined", c.Name)
			}
		}
		return nil
	})
}

// 4. every Constructor references a defined struct.
func checkConstructorsDefined(prog *ast.Program) error {
	return walkExprs(prog, func(fn *ast.Function, e ast.Expr) error {
		if c, ok := e.(*ast.Constructor); ok {
			if _, exists := prog.Structs[c.StructName]; !exists {
				return errf(c.Loc, "Function %s is undefined", c.StructName)
			}
		}
		return nil
	})
}

// 5. call arity matches callee arity.
func checkArity(prog *ast.Program) error {
	return walkExprs(prog, func(fn *ast.Function, e ast.Expr) error {
		if c, ok := e.(*ast.Call); ok {
			callee := prog.Functions[c.Name]
			if len(c.Args) != len(callee.Args) {
				return errf(c.Loc, "Function %s called with %d arguments, but expects %d", c.Name, len(c.Args), len(callee.Args))
			}
		}
		return nil
	})
}

// 6. constructor field set equals struct field set exactly.
func checkConstructorFields(prog *ast.Program) error {
	return walkExprs(prog, func(fn *ast.Function, e ast.Expr) error {
		c, ok := e.(*ast.Constructor)
		if !ok {
			return nil
		}
		s := prog.Structs[c.StructName]
		for _, fname := range s.FieldOrder {
			if _, provided := c.Fields[fname]; !provided {
				return errf(c.Loc, "Constructor %s missing field %s", c.StructName, fname)
			}
		}
		for _, fname := range c.FieldOrder {
			if _, declared := s.FieldNames[fname]; !declared {
				return errf(c.Loc, "Constructor %s has no field %s", c.StructName, fname)
			}
		}
		return nil
	})
}

// 7. every Var is a current-function parameter or a nullary top-level
// function.
func checkVarsResolved(prog *ast.Program) error {
	return walkExprs(prog, func(fn *ast.Function, e ast.Expr) error {
		v, ok := e.(*ast.Var)
		if !ok {
			return nil
		}
		if _, isParam := fn.ArgNames[v.Name]; isParam {
			return nil
		}
		if target, isFunc := prog.Functions[v.Name]; isFunc && len(target.Args) == 0 {
			return nil
		}
		return errf(v.Loc, "Variable %s is undefined", v.Name)
	})
}

// 8. every type annotation resolves to int, bool, or a declared struct.
func checkTypesResolve(prog *ast.Program) error {
	resolves := func(t ast.TypeName) bool {
		if t == ast.IntType || t == ast.BoolType {
			return true
		}
		_, ok := prog.Structs[string(t)]
		return ok
	}
	for _, name := range prog.FunctionOrder {
		fn := prog.Functions[name]
		for _, t := range fn.Args {
			if !resolves(t) {
				return errf(fn.Loc, "Type %s is undefined", t)
			}
		}
		if !resolves(fn.RetTy) {
			return errf(fn.Loc, "Type %s is undefined", fn.RetTy)
		}
	}
	for _, name := range prog.StructOrder {
		s := prog.Structs[name]
		for _, t := range s.Fields {
			if !resolves(t) {
				return errf(s.Loc, "Type %s is undefined", t)
			}
		}
	}
	return nil
}
