// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/probechain/go-pseudo/lang/ast"
	"github.com/probechain/go-pseudo/lang/lalr"
	"github.com/probechain/go-pseudo/lang/token"
)

var (
	// ErrDuplicateParameter is the cause of a syntax error for a parameter
	// list that names the same parameter twice.
	ErrDuplicateParameter = errors.New("duplicate parameter")

	// ErrBadNumber is the cause of a syntax error for a numeric literal that
	// does not fit a float64.
	ErrBadNumber = errors.New("invalid number literal")
)

// action is the reduction step of one production.
type action func(args []interface{}) (interface{}, error)

// language is the pseudocode grammar together with its parse table.
type language struct {
	table   *lalr.Table
	terms   map[token.Type]lalr.Symbol
	actions []action
}

// terminalName returns the grammar name of a token type: quoted for
// punctuation, bare for keywords and token classes.
func terminalName(typ token.Type) string {
	switch {
	case typ == token.ILLEGAL:
		return "illegal character"
	case typ.IsOperator(), typ == token.LPAREN, typ == token.RPAREN,
		typ == token.COLON, typ == token.COMMA:
		return "'" + typ.String() + "'"
	}
	return typ.String()
}

// ---------------------------------------------------------------------------
// Grammar declaration
// ---------------------------------------------------------------------------

// newLanguage declares the grammar
//
//	CompUnit  : FuncDef | ProcDef | Block
//	FuncDef   : FUNCTION IDENT '(' [Params] ')' RETURNS VarType Block ENDFUNCTION
//	ProcDef   : PROCEDURE IDENT '(' [Params] ')' Block ENDPROCEDURE
//	Params    : Param | Params ',' Param
//	Param     : IDENT ':' VarType
//	Block     : Stmt | Block Stmt
//	Stmt      : VarDecl | VarAssign | If | While | For | Return | Output | error
//	VarDecl   : DECLARE IDENT ':' VarType
//	VarType   : INTEGER | REAL | CHAR | STRING | BOOLEAN
//	VarAssign : IDENT '<-' Expr
//	If        : IF Expr THEN Block [ELSE Block] ENDIF
//	While     : WHILE Expr Block ENDWHILE
//	For       : FOR IDENT '<-' Expr TO Expr Block NEXT
//	Return    : RETURN Expr
//	Output    : OUTPUT Expr
//	Expr      : IDENT | NUMBER | '(' Expr ')' | UnaryOp Expr | Expr BinaryOp Expr
//
// with operator precedence, loosest first:
//
//	%left OR
//	%left AND
//	%left '=' '<>' '<' '>' '<=' '>='
//	%left '+' '-'
//	%left '*' '/' MOD
//	%right NOT UNARY
//
// and builds its LALR(1) table.
func newLanguage() (*language, error) {
	g := lalr.NewGrammar()
	l := &language{terms: make(map[token.Type]lalr.Symbol)}
	l.terms[token.EOF] = lalr.EOF
	for _, typ := range token.Types() {
		if typ != token.EOF {
			l.terms[typ] = g.Terminal(terminalName(typ))
		}
	}
	t := func(typ token.Type) lalr.Symbol { return l.terms[typ] }
	unary := g.Terminal("UNARY")

	var (
		compUnit  = g.Nonterminal("CompUnit")
		funcDef   = g.Nonterminal("FuncDef")
		procDef   = g.Nonterminal("ProcDef")
		params    = g.Nonterminal("Params")
		param     = g.Nonterminal("Param")
		block     = g.Nonterminal("Block")
		stmt      = g.Nonterminal("Stmt")
		varDecl   = g.Nonterminal("VarDecl")
		varType   = g.Nonterminal("VarType")
		varAssign = g.Nonterminal("VarAssign")
		ifStmt    = g.Nonterminal("If")
		while     = g.Nonterminal("While")
		forStmt   = g.Nonterminal("For")
		ret       = g.Nonterminal("Return")
		output    = g.Nonterminal("Output")
		expr      = g.Nonterminal("Expr")
	)

	g.Precedence(lalr.AssocLeft, t(token.OR))
	g.Precedence(lalr.AssocLeft, t(token.AND))
	g.Precedence(lalr.AssocLeft, t(token.EQ), t(token.NE), t(token.LT), t(token.GT), t(token.LE), t(token.GE))
	g.Precedence(lalr.AssocLeft, t(token.PLUS), t(token.MINUS))
	g.Precedence(lalr.AssocLeft, t(token.STAR), t(token.SLASH), t(token.MOD))
	g.Precedence(lalr.AssocRight, t(token.NOT), unary)

	rule := func(act action, lhs lalr.Symbol, rhs ...lalr.Symbol) *lalr.Production {
		p := g.Rule(lhs, rhs...)
		for len(l.actions) <= p.ID {
			l.actions = append(l.actions, nil)
		}
		l.actions[p.ID] = act
		return p
	}

	// Compilation unit and definitions
	rule(buildCompUnit, compUnit, funcDef)
	rule(buildCompUnit, compUnit, procDef)
	rule(buildCompUnit, compUnit, block)
	rule(buildFuncDef(-1, 5, 6), funcDef,
		t(token.FUNCTION), t(token.IDENT), t(token.LPAREN), t(token.RPAREN),
		t(token.RETURNS), varType, block, t(token.ENDFUNCTION))
	rule(buildFuncDef(3, 6, 7), funcDef,
		t(token.FUNCTION), t(token.IDENT), t(token.LPAREN), params, t(token.RPAREN),
		t(token.RETURNS), varType, block, t(token.ENDFUNCTION))
	rule(buildProcDef(-1, 4), procDef,
		t(token.PROCEDURE), t(token.IDENT), t(token.LPAREN), t(token.RPAREN),
		block, t(token.ENDPROCEDURE))
	rule(buildProcDef(3, 5), procDef,
		t(token.PROCEDURE), t(token.IDENT), t(token.LPAREN), params, t(token.RPAREN),
		block, t(token.ENDPROCEDURE))
	rule(buildParams, params, param)
	rule(appendParam, params, params, t(token.COMMA), param)
	rule(buildParam, param, t(token.IDENT), t(token.COLON), varType)

	// Blocks and statements
	rule(buildBlock, block, stmt)
	rule(appendStmt, block, block, stmt)
	for _, s := range []lalr.Symbol{varDecl, varAssign, ifStmt, while, forStmt, ret, output, lalr.Error} {
		rule(passThrough, stmt, s)
	}
	rule(buildVarDecl, varDecl, t(token.DECLARE), t(token.IDENT), t(token.COLON), varType)
	for _, typ := range []token.Type{token.INTEGER, token.REAL, token.CHAR, token.STRING, token.BOOLEAN} {
		rule(buildVarType, varType, t(typ))
	}
	rule(buildVarAssign, varAssign, t(token.IDENT), t(token.ASSIGN), expr)
	rule(buildIf, ifStmt, t(token.IF), expr, t(token.THEN), block, t(token.ENDIF))
	rule(buildIfElse, ifStmt, t(token.IF), expr, t(token.THEN), block, t(token.ELSE), block, t(token.ENDIF))
	rule(buildWhile, while, t(token.WHILE), expr, block, t(token.ENDWHILE))
	rule(buildFor, forStmt,
		t(token.FOR), t(token.IDENT), t(token.ASSIGN), expr, t(token.TO), expr, block, t(token.NEXT))
	rule(buildReturn, ret, t(token.RETURN), expr)
	rule(buildOutput, output, t(token.OUTPUT), expr)

	// Expressions
	rule(buildVarRef, expr, t(token.IDENT))
	rule(buildNumber, expr, t(token.NUMBER))
	rule(buildPrimary, expr, t(token.LPAREN), expr, t(token.RPAREN))
	rule(buildUnary, expr, t(token.PLUS), expr).Prec = unary
	rule(buildUnary, expr, t(token.MINUS), expr).Prec = unary
	rule(buildUnary, expr, t(token.NOT), expr)
	for _, op := range []token.Type{
		token.OR, token.AND,
		token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE,
		token.PLUS, token.MINUS,
		token.STAR, token.SLASH, token.MOD,
	} {
		rule(buildBinary, expr, expr, t(op), expr)
	}

	g.SetStart(compUnit)
	table, err := lalr.Build(g)
	if err != nil {
		return nil, err
	}
	if len(table.Conflicts) > 0 {
		return nil, fmt.Errorf("grammar has %d unresolved conflicts: %s", len(table.Conflicts), table.DescribeConflicts()[0])
	}
	l.table = table
	return l, nil
}

// reduce dispatches a reduction to its action.
func (l *language) reduce(p *lalr.Production, args []interface{}) (interface{}, error) {
	return l.actions[p.ID](args)
}

// ---------------------------------------------------------------------------
// Reduction actions
// ---------------------------------------------------------------------------

func tokenAt(args []interface{}, i int) token.Token { return args[i].(token.Token) }

func exprAt(args []interface{}, i int) ast.Expression { return args[i].(ast.Expression) }

func blockAt(args []interface{}, i int) *ast.Block { return args[i].(*ast.Block) }

func passThrough(args []interface{}) (interface{}, error) { return args[0], nil }

func buildCompUnit(args []interface{}) (interface{}, error) {
	return &ast.CompilationUnit{Def: args[0].(ast.Definition)}, nil
}

func paramsAt(args []interface{}, i int) []*ast.Parameter {
	if i < 0 {
		return nil
	}
	return args[i].([]*ast.Parameter)
}

func buildFuncDef(paramsIdx, typeIdx, bodyIdx int) action {
	return func(args []interface{}) (interface{}, error) {
		return &ast.FunctionDef{
			Token:      tokenAt(args, 0),
			Name:       tokenAt(args, 1).Literal,
			Params:     paramsAt(args, paramsIdx),
			ReturnType: args[typeIdx].(ast.TypeTag),
			Body:       blockAt(args, bodyIdx),
		}, nil
	}
}

func buildProcDef(paramsIdx, bodyIdx int) action {
	return func(args []interface{}) (interface{}, error) {
		return &ast.ProcedureDef{
			Token:  tokenAt(args, 0),
			Name:   tokenAt(args, 1).Literal,
			Params: paramsAt(args, paramsIdx),
			Body:   blockAt(args, bodyIdx),
		}, nil
	}
}

func buildParams(args []interface{}) (interface{}, error) {
	return []*ast.Parameter{args[0].(*ast.Parameter)}, nil
}

func appendParam(args []interface{}) (interface{}, error) {
	list := args[0].([]*ast.Parameter)
	p := args[2].(*ast.Parameter)
	for _, prev := range list {
		if prev.Name == p.Name {
			return nil, &lalr.SyntaxError{
				Pos:        p.Token.Pos,
				Unexpected: p.Token,
				Cause:      fmt.Errorf("%w %q", ErrDuplicateParameter, p.Name),
			}
		}
	}
	return append(list, p), nil
}

func buildParam(args []interface{}) (interface{}, error) {
	tok := tokenAt(args, 0)
	return &ast.Parameter{Token: tok, Name: tok.Literal, Type: args[2].(ast.TypeTag)}, nil
}

func buildBlock(args []interface{}) (interface{}, error) {
	b := &ast.Block{}
	if s, ok := args[0].(ast.Statement); ok {
		b.Append(s)
	}
	return b, nil
}

func appendStmt(args []interface{}) (interface{}, error) {
	b := blockAt(args, 0)
	if s, ok := args[1].(ast.Statement); ok {
		b.Append(s)
	}
	return b, nil
}

func buildVarDecl(args []interface{}) (interface{}, error) {
	return &ast.VarDecl{
		Token: tokenAt(args, 0),
		Name:  tokenAt(args, 1).Literal,
		Type:  args[3].(ast.TypeTag),
	}, nil
}

func buildVarType(args []interface{}) (interface{}, error) {
	tag, _ := ast.TypeTagOf(tokenAt(args, 0).Type)
	return tag, nil
}

func buildVarAssign(args []interface{}) (interface{}, error) {
	tok := tokenAt(args, 0)
	return &ast.VarAssign{Token: tok, Name: tok.Literal, Value: exprAt(args, 2)}, nil
}

func buildIf(args []interface{}) (interface{}, error) {
	return &ast.If{Token: tokenAt(args, 0), Cond: exprAt(args, 1), Then: blockAt(args, 3)}, nil
}

func buildIfElse(args []interface{}) (interface{}, error) {
	return &ast.If{
		Token:   tokenAt(args, 0),
		Cond:    exprAt(args, 1),
		Then:    blockAt(args, 3),
		Else:    blockAt(args, 5),
		HasElse: true,
	}, nil
}

func buildWhile(args []interface{}) (interface{}, error) {
	return &ast.While{Token: tokenAt(args, 0), Cond: exprAt(args, 1), Body: blockAt(args, 2)}, nil
}

func buildFor(args []interface{}) (interface{}, error) {
	return &ast.For{
		Token: tokenAt(args, 0),
		Var:   tokenAt(args, 1).Literal,
		From:  exprAt(args, 3),
		To:    exprAt(args, 5),
		Body:  blockAt(args, 6),
	}, nil
}

func buildReturn(args []interface{}) (interface{}, error) {
	return &ast.Return{Token: tokenAt(args, 0), Value: exprAt(args, 1)}, nil
}

func buildOutput(args []interface{}) (interface{}, error) {
	return &ast.Output{Token: tokenAt(args, 0), Value: exprAt(args, 1)}, nil
}

func buildVarRef(args []interface{}) (interface{}, error) {
	tok := tokenAt(args, 0)
	return &ast.VariableRef{Token: tok, Name: tok.Literal}, nil
}

func buildNumber(args []interface{}) (interface{}, error) {
	tok := tokenAt(args, 0)
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		return nil, &lalr.SyntaxError{
			Pos:        tok.Pos,
			Unexpected: tok,
			Cause:      fmt.Errorf("%w %q", ErrBadNumber, tok.Literal),
		}
	}
	return &ast.Literal{Token: tok, Value: v}, nil
}

func buildPrimary(args []interface{}) (interface{}, error) {
	return &ast.PrimaryExpr{Token: tokenAt(args, 0), X: exprAt(args, 1)}, nil
}

func buildUnary(args []interface{}) (interface{}, error) {
	tok := tokenAt(args, 0)
	return &ast.UnaryExpr{Token: tok, Op: tok.Literal, X: exprAt(args, 1)}, nil
}

func buildBinary(args []interface{}) (interface{}, error) {
	tok := tokenAt(args, 1)
	return &ast.BinaryExpr{Token: tok, X: exprAt(args, 0), Op: tok.Literal, Y: exprAt(args, 2)}, nil
}
