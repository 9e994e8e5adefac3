// Package parser builds an FL ast.Program out of a token stream, using a
// recursive-descent parser with a small Pratt-style expression core.
//
// Internally the parser panics on malformed input (mirroring the donor's
// own error/compilerError helpers) and recovers at the single public
// Parse boundary, where the panic is converted into a plain (*Program,
// error) result.
package parser

import (
	"fmt"

	"github.com/icflang/ic/internal/ast"
	"github.com/icflang/ic/internal/diag"
	"github.com/icflang/ic/internal/lexer"
)

type parseError struct {
	diag.Diagnostic
}

func fail(line, col int, format string, args ...any) {
	panic(parseError{diag.New(diag.Parse, line, col, format, args...)})
}

// Parser holds two-token lookahead over a lexer.Lexer.
type Parser struct {
	lex     *lexer.Lexer
	current lexer.Token
	peek    lexer.Token
}

// Parse lexes and parses a complete FL source file.
func Parse(source string) (prog *ast.Program, err error) {
	p := &Parser{lex: lexer.New(source)}
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(parseError); ok {
				err = pe.Diagnostic
				return
			}
			panic(r)
		}
	}()

	p.bump()
	p.bump()
	prog = p.parseProgram()
	return prog, nil
}

func (p *Parser) bump() {
	p.current = p.peek
	tok, err := p.lex.Next()
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			fail(le.Line, le.Col, "%s", le.Message)
		}
		fail(0, 0, "%s", err.Error())
	}
	p.peek = tok
}

func (p *Parser) at(tt lexer.TokenType) bool { return p.current.Type == tt }

func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	if !p.at(tt) {
		fail(p.current.Line, p.current.Col, "expected %s but found %s", tt, p.current.Type)
	}
	tok := p.current
	p.bump()
	return tok
}

func (p *Parser) loc() ast.Loc { return ast.Loc{Line: p.current.Line, Col: p.current.Col} }

func (p *Parser) parseProgram() *ast.Program {
	prog := ast.NewProgram()
	for !p.at(lexer.EOF) {
		p.parseDef(prog)
	}
	return prog
}

func (p *Parser) parseDef(prog *ast.Program) {
	if p.at(lexer.KwStruct) {
		s := p.parseStruct()
		if _, exists := prog.Structs[s.Name]; exists {
			fail(s.Loc.Line, s.Loc.Col, "duplicate definition of struct %s", s.Name)
		}
		if _, exists := prog.Functions[s.Name]; exists {
			fail(s.Loc.Line, s.Loc.Col, "struct %s collides with a function of the same name", s.Name)
		}
		prog.AddStruct(s)
		return
	}

	loc := p.loc()
	name := p.expect(lexer.Ident).Value

	if _, exists := prog.Structs[name]; exists {
		fail(loc.Line, loc.Col, "function %s collides with a struct of the same name", name)
	}
	if _, exists := prog.Functions[name]; exists {
		fail(loc.Line, loc.Col, "duplicate definition of function %s", name)
	}

	fn := &ast.Function{Name: name, ArgNames: map[string]int{}, Loc: loc}

	if p.at(lexer.LParen) {
		p.bump()
		if !p.at(lexer.RParen) {
			for {
				pname := p.expect(lexer.Ident).Value
				if _, dup := fn.ArgNames[pname]; dup {
					fail(loc.Line, loc.Col, "duplicate parameter %s in function %s", pname, name)
				}
				p.expect(lexer.Colon)
				ty := p.parseType()
				fn.ArgNames[pname] = len(fn.ArgOrder)
				fn.ArgOrder = append(fn.ArgOrder, pname)
				fn.Args = append(fn.Args, ty)
				if p.at(lexer.Comma) {
					p.bump()
					continue
				}
				break
			}
		}
		p.expect(lexer.RParen)
	}

	p.expect(lexer.Colon)
	fn.RetTy = p.parseType()
	p.expect(lexer.Equals)
	fn.Body = p.parseExpr()

	prog.AddFunction(fn)
}

func (p *Parser) parseStruct() *ast.Struct {
	loc := p.loc()
	p.expect(lexer.KwStruct)
	name := p.expect(lexer.Ident).Value
	s := &ast.Struct{Name: name, FieldNames: map[string]int{}, Loc: loc}

	p.expect(lexer.LBrace)
	if !p.at(lexer.RBrace) {
		for {
			fname := p.expect(lexer.Ident).Value
			if _, dup := s.FieldNames[fname]; dup {
				fail(loc.Line, loc.Col, "duplicate field %s in struct %s", fname, name)
			}
			p.expect(lexer.Colon)
			ty := p.parseType()
			s.FieldNames[fname] = len(s.FieldOrder)
			s.FieldOrder = append(s.FieldOrder, fname)
			s.Fields = append(s.Fields, ty)
			if p.at(lexer.Comma) {
				p.bump()
				continue
			}
			break
		}
	}
	p.expect(lexer.RBrace)
	return s
}

func (p *Parser) parseType() ast.TypeName {
	switch p.current.Type {
	case lexer.KwInt:
		p.bump()
		return ast.IntType
	case lexer.KwBool:
		p.bump()
		return ast.BoolType
	case lexer.Ident:
		name := p.current.Value
		p.bump()
		return ast.TypeName(name)
	default:
		fail(p.current.Line, p.current.Col, "expected a type but found %s", p.current.Type)
		return ""
	}
}

// expr := cmp { ('==' | '!=') cmp }
func (p *Parser) parseExpr() ast.Expr {
	left := p.parseCmp()
	for p.at(lexer.Eq) || p.at(lexer.Neq) {
		loc := p.loc()
		op := ast.Eq
		if p.at(lexer.Neq) {
			op = ast.Neq
		}
		p.bump()
		right := p.parseCmp()
		left = &ast.BinOp{Op: op, Left: left, Right: right, Loc: loc}
	}
	return left
}

// cmp := sum { ('<'|'<='|'>'|'>=') sum }
func (p *Parser) parseCmp() ast.Expr {
	left := p.parseSum()
	for p.at(lexer.Lt) || p.at(lexer.Le) || p.at(lexer.Gt) || p.at(lexer.Ge) {
		loc := p.loc()
		var op ast.BinOpKind
		switch p.current.Type {
		case lexer.Lt:
			op = ast.Lt
		case lexer.Le:
			op = ast.Le
		case lexer.Gt:
			op = ast.Gt
		case lexer.Ge:
			op = ast.Ge
		}
		p.bump()
		right := p.parseSum()
		left = &ast.BinOp{Op: op, Left: left, Right: right, Loc: loc}
	}
	return left
}

// sum := mul { ('+'|'-') mul }
func (p *Parser) parseSum() ast.Expr {
	left := p.parseMul()
	for p.at(lexer.Plus) || p.at(lexer.Minus) {
		loc := p.loc()
		op := ast.Add
		if p.at(lexer.Minus) {
			op = ast.Sub
		}
		p.bump()
		right := p.parseMul()
		left = &ast.BinOp{Op: op, Left: left, Right: right, Loc: loc}
	}
	return left
}

// mul := atom { '*' atom }
func (p *Parser) parseMul() ast.Expr {
	left := p.parseAtom()
	for p.at(lexer.Star) {
		loc := p.loc()
		p.bump()
		right := p.parseAtom()
		left = &ast.BinOp{Op: ast.Mul, Left: left, Right: right, Loc: loc}
	}
	return left
}

// atom parses a primary expression, then applies any trailing '.' field
// accesses (the tightest-binding suffix).
func (p *Parser) parseAtom() ast.Expr {
	e := p.parsePrimary()
	for p.at(lexer.Dot) {
		loc := p.loc()
		p.bump()
		fname := p.expect(lexer.Ident).Value
		e = &ast.Field{Receiver: e, Name: fname, Loc: loc}
	}
	return e
}

func (p *Parser) parsePrimary() ast.Expr {
	loc := p.loc()
	switch p.current.Type {
	case lexer.LParen:
		p.bump()
		e := p.parseExpr()
		p.expect(lexer.RParen)
		return e

	case lexer.Number:
		text := p.current.Value
		p.bump()
		var v int64
		_, err := fmt.Sscanf(text, "%d", &v)
		if err != nil {
			fail(loc.Line, loc.Col, "invalid integer literal %s", text)
		}
		return &ast.Num{Value: v, Loc: loc}

	case lexer.KwTrue:
		p.bump()
		return &ast.Bool{Value: true, Loc: loc}

	case lexer.KwFalse:
		p.bump()
		return &ast.Bool{Value: false, Loc: loc}

	case lexer.KwIf:
		p.bump()
		cond := p.parseExpr()
		p.expect(lexer.KwThen)
		then := p.parseExpr()
		p.expect(lexer.KwElse)
		els := p.parseExpr()
		return &ast.If{Cond: cond, Then: then, Else: els, Loc: loc}

	case lexer.Ident:
		name := p.current.Value
		p.bump()
		if p.at(lexer.LParen) {
			p.bump()
			var args []ast.Expr
			if !p.at(lexer.RParen) {
				for {
					args = append(args, p.parseExpr())
					if p.at(lexer.Comma) {
						p.bump()
						continue
					}
					break
				}
			}
			p.expect(lexer.RParen)
			return &ast.Call{Name: name, Args: args, Loc: loc}
		}
		if p.at(lexer.LBrace) {
			p.bump()
			fields := map[string]ast.Expr{}
			var order []string
			if !p.at(lexer.RBrace) {
				for {
					fname := p.expect(lexer.Ident).Value
					if _, dup := fields[fname]; dup {
						fail(loc.Line, loc.Col, "duplicate field assignment %s in constructor for %s", fname, name)
					}
					p.expect(lexer.Equals)
					fields[fname] = p.parseExpr()
					order = append(order, fname)
					if p.at(lexer.Comma) {
						p.bump()
						continue
					}
					break
				}
			}
			p.expect(lexer.RBrace)
			return &ast.Constructor{StructName: name, Fields: fields, FieldOrder: order, Loc: loc}
		}
		return &ast.Var{Name: name, Loc: loc}

	default:
		fail(loc.Line, loc.Col, "unexpected %s", p.current.Type)
		return nil
	}
}
