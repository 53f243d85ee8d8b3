// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package ast defines the syntax tree of the pseudocode language.
//
// Design overview:
//
//   - The set of node types is closed: Definition, Statement and Expression
//     carry unexported marker methods, so only this package can add variants.
//     Consumers dispatch with a type switch over the concrete pointer types.
//   - Every child is owned by exactly one parent. Nodes hold no back
//     references and the parser never shares a subtree.
//   - Nodes keep the token that introduced them so diagnostics can cite a
//     source position. Positions never affect String or the tree renderer.
//   - Nodes are immutable once the parser hands the tree out. Block is the one
//     node that grows while the parser is still building it.
package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/probechain/go-pseudo/lang/token"
)

// ---------------------------------------------------------------------------
// Core interfaces
// ---------------------------------------------------------------------------

// Node is the base interface that every syntax tree node implements.
type Node interface {
	// Kind returns the node discriminant.
	Kind() Kind

	// TokenLiteral returns the literal value of the token that originated this
	// node. Used primarily for debugging and testing.
	TokenLiteral() string

	// Pos returns the source position of the originating token.
	Pos() token.Position

	// String returns a compact single-line pseudocode form of the node.
	String() string
}

// Definition is a node that may sit directly under a CompilationUnit.
type Definition interface {
	Node
	definitionNode()
}

// Statement is a marker interface for all statement nodes.
type Statement interface {
	Node
	statementNode()
}

// Expression is a marker interface for all expression nodes.
type Expression interface {
	Node
	expressionNode()
}

// Kind is the node discriminant.
type Kind int

const (
	KindInvalid Kind = iota
	KindCompUnit
	KindFuncDef
	KindProcDef
	KindParam
	KindBlock
	KindVarDecl
	KindVarAssign
	KindIf
	KindWhile
	KindFor
	KindReturn
	KindOutput
	KindVarExpr
	KindNumber
	KindPrimaryExpr
	KindUnaryExpr
	KindBinaryExpr
)

var kindNames = [...]string{
	KindInvalid:     "Invalid",
	KindCompUnit:    "CompUnit",
	KindFuncDef:     "FuncDef",
	KindProcDef:     "ProcDef",
	KindParam:       "Param",
	KindBlock:       "Block",
	KindVarDecl:     "VarDecl",
	KindVarAssign:   "VarAssign",
	KindIf:          "If",
	KindWhile:       "While",
	KindFor:         "For",
	KindReturn:      "Return",
	KindOutput:      "Output",
	KindVarExpr:     "VarExpr",
	KindNumber:      "Number",
	KindPrimaryExpr: "PrimaryExpr",
	KindUnaryExpr:   "UnaryExpr",
	KindBinaryExpr:  "BinaryExpr",
}

// String returns the display name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// TypeTag is a declared variable, parameter or return type.
type TypeTag int

const (
	TypeInvalid TypeTag = iota
	TypeInteger
	TypeReal
	TypeChar
	TypeString
	TypeBoolean
)

var typeTagNames = [...]string{
	TypeInvalid: "INVALID",
	TypeInteger: "INTEGER",
	TypeReal:    "REAL",
	TypeChar:    "CHAR",
	TypeString:  "STRING",
	TypeBoolean: "BOOLEAN",
}

func (t TypeTag) String() string {
	if t < 0 || int(t) >= len(typeTagNames) {
		return "TypeTag(" + strconv.Itoa(int(t)) + ")"
	}
	return typeTagNames[t]
}

// TypeTagOf maps a type keyword token to its tag.
func TypeTagOf(typ token.Type) (TypeTag, bool) {
	switch typ {
	case token.INTEGER:
		return TypeInteger, true
	case token.REAL:
		return TypeReal, true
	case token.CHAR:
		return TypeChar, true
	case token.STRING:
		return TypeString, true
	case token.BOOLEAN:
		return TypeBoolean, true
	}
	return TypeInvalid, false
}

// ---------------------------------------------------------------------------
// Compilation unit and definitions
// ---------------------------------------------------------------------------

// CompilationUnit is the root of every parse tree. It holds exactly one
// top-level definition: a function, a procedure or a bare block.
type CompilationUnit struct {
	Def Definition
}

func (c *CompilationUnit) Kind() Kind { return KindCompUnit }
func (c *CompilationUnit) TokenLiteral() string {
	if c.Def == nil {
		return ""
	}
	return c.Def.TokenLiteral()
}
func (c *CompilationUnit) Pos() token.Position {
	if c.Def == nil {
		return token.Position{}
	}
	return c.Def.Pos()
}
func (c *CompilationUnit) String() string {
	if c.Def == nil {
		return ""
	}
	return c.Def.String()
}

// FunctionDef is FUNCTION name(params) RETURNS type ... ENDFUNCTION.
type FunctionDef struct {
	Token      token.Token // the FUNCTION token
	Name       string
	Params     []*Parameter
	ReturnType TypeTag
	Body       *Block
}

func (f *FunctionDef) definitionNode()      {}
func (f *FunctionDef) Kind() Kind           { return KindFuncDef }
func (f *FunctionDef) TokenLiteral() string { return f.Token.Literal }
func (f *FunctionDef) Pos() token.Position  { return f.Token.Pos }
func (f *FunctionDef) String() string {
	return "FUNCTION " + f.Name + "(" + joinParams(f.Params) + ") RETURNS " +
		f.ReturnType.String() + " " + f.Body.String() + " ENDFUNCTION"
}

// ProcedureDef is PROCEDURE name(params) ... ENDPROCEDURE.
type ProcedureDef struct {
	Token  token.Token // the PROCEDURE token
	Name   string
	Params []*Parameter
	Body   *Block
}

func (p *ProcedureDef) definitionNode()      {}
func (p *ProcedureDef) Kind() Kind           { return KindProcDef }
func (p *ProcedureDef) TokenLiteral() string { return p.Token.Literal }
func (p *ProcedureDef) Pos() token.Position  { return p.Token.Pos }
func (p *ProcedureDef) String() string {
	return "PROCEDURE " + p.Name + "(" + joinParams(p.Params) + ") " +
		p.Body.String() + " ENDPROCEDURE"
}

// Parameter is a single name : type entry of a parameter list.
type Parameter struct {
	Token token.Token // the IDENT token
	Name  string
	Type  TypeTag
}

func (p *Parameter) Kind() Kind           { return KindParam }
func (p *Parameter) TokenLiteral() string { return p.Token.Literal }
func (p *Parameter) Pos() token.Position  { return p.Token.Pos }
func (p *Parameter) String() string       { return p.Name + " : " + p.Type.String() }

func joinParams(params []*Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// Block is a non-empty sequence of statements in execution order.
type Block struct {
	Stmts []Statement
}

func (b *Block) definitionNode() {}
func (b *Block) Kind() Kind      { return KindBlock }
func (b *Block) TokenLiteral() string {
	if len(b.Stmts) == 0 {
		return ""
	}
	return b.Stmts[0].TokenLiteral()
}
func (b *Block) Pos() token.Position {
	if len(b.Stmts) == 0 {
		return token.Position{}
	}
	return b.Stmts[0].Pos()
}
func (b *Block) String() string {
	var out bytes.Buffer
	for i, s := range b.Stmts {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

// Append adds a statement at the end of the block. It is only called by the
// parser while the block is being reduced.
func (b *Block) Append(s Statement) {
	b.Stmts = append(b.Stmts, s)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// VarDecl is DECLARE name : type.
type VarDecl struct {
	Token token.Token // the DECLARE token
	Name  string
	Type  TypeTag
}

func (s *VarDecl) statementNode()       {}
func (s *VarDecl) Kind() Kind           { return KindVarDecl }
func (s *VarDecl) TokenLiteral() string { return s.Token.Literal }
func (s *VarDecl) Pos() token.Position  { return s.Token.Pos }
func (s *VarDecl) String() string {
	return "DECLARE " + s.Name + " : " + s.Type.String()
}

// VarAssign is name <- expr.
type VarAssign struct {
	Token token.Token // the IDENT token
	Name  string
	Value Expression
}

func (s *VarAssign) statementNode()       {}
func (s *VarAssign) Kind() Kind           { return KindVarAssign }
func (s *VarAssign) TokenLiteral() string { return s.Token.Literal }
func (s *VarAssign) Pos() token.Position  { return s.Token.Pos }
func (s *VarAssign) String() string       { return s.Name + " <- " + s.Value.String() }

// If is IF cond THEN block [ELSE block] ENDIF. Else is non-nil iff HasElse.
type If struct {
	Token   token.Token // the IF token
	Cond    Expression
	Then    *Block
	Else    *Block
	HasElse bool
}

func (s *If) statementNode()       {}
func (s *If) Kind() Kind           { return KindIf }
func (s *If) TokenLiteral() string { return s.Token.Literal }
func (s *If) Pos() token.Position  { return s.Token.Pos }
func (s *If) String() string {
	out := "IF " + s.Cond.String() + " THEN " + s.Then.String()
	if s.HasElse {
		out += " ELSE " + s.Else.String()
	}
	return out + " ENDIF"
}

// While is WHILE cond block ENDWHILE.
type While struct {
	Token token.Token // the WHILE token
	Cond  Expression
	Body  *Block
}

func (s *While) statementNode()       {}
func (s *While) Kind() Kind           { return KindWhile }
func (s *While) TokenLiteral() string { return s.Token.Literal }
func (s *While) Pos() token.Position  { return s.Token.Pos }
func (s *While) String() string {
	return "WHILE " + s.Cond.String() + " " + s.Body.String() + " ENDWHILE"
}

// For is FOR var <- from TO to block NEXT. Both bounds are kept exactly as
// written; the loop range is decided by whatever executes the tree.
type For struct {
	Token token.Token // the FOR token
	Var   string
	From  Expression
	To    Expression
	Body  *Block
}

func (s *For) statementNode()       {}
func (s *For) Kind() Kind           { return KindFor }
func (s *For) TokenLiteral() string { return s.Token.Literal }
func (s *For) Pos() token.Position  { return s.Token.Pos }
func (s *For) String() string {
	return "FOR " + s.Var + " <- " + s.From.String() + " TO " + s.To.String() +
		" " + s.Body.String() + " NEXT"
}

// Return is RETURN expr.
type Return struct {
	Token token.Token // the RETURN token
	Value Expression
}

func (s *Return) statementNode()       {}
func (s *Return) Kind() Kind           { return KindReturn }
func (s *Return) TokenLiteral() string { return s.Token.Literal }
func (s *Return) Pos() token.Position  { return s.Token.Pos }
func (s *Return) String() string       { return "RETURN " + s.Value.String() }

// Output is OUTPUT expr.
type Output struct {
	Token token.Token // the OUTPUT token
	Value Expression
}

func (s *Output) statementNode()       {}
func (s *Output) Kind() Kind           { return KindOutput }
func (s *Output) TokenLiteral() string { return s.Token.Literal }
func (s *Output) Pos() token.Position  { return s.Token.Pos }
func (s *Output) String() string       { return "OUTPUT " + s.Value.String() }

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// VariableRef names a variable. The name is resolved during lowering.
type VariableRef struct {
	Token token.Token // the IDENT token
	Name  string
}

func (e *VariableRef) expressionNode()      {}
func (e *VariableRef) Kind() Kind           { return KindVarExpr }
func (e *VariableRef) TokenLiteral() string { return e.Token.Literal }
func (e *VariableRef) Pos() token.Position  { return e.Token.Pos }
func (e *VariableRef) String() string       { return e.Name }

// Literal is a numeric constant. Integer and real literals share the same
// float64 storage.
type Literal struct {
	Token token.Token // the NUMBER token
	Value float64
}

func (e *Literal) expressionNode()      {}
func (e *Literal) Kind() Kind           { return KindNumber }
func (e *Literal) TokenLiteral() string { return e.Token.Literal }
func (e *Literal) Pos() token.Position  { return e.Token.Pos }
func (e *Literal) String() string       { return FormatNumber(e.Value) }

// FormatNumber renders a literal value in its shortest exact form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// PrimaryExpr is a parenthesised expression.
type PrimaryExpr struct {
	Token token.Token // the '(' token
	X     Expression
}

func (e *PrimaryExpr) expressionNode()      {}
func (e *PrimaryExpr) Kind() Kind           { return KindPrimaryExpr }
func (e *PrimaryExpr) TokenLiteral() string { return e.Token.Literal }
func (e *PrimaryExpr) Pos() token.Position  { return e.Token.Pos }
func (e *PrimaryExpr) String() string       { return "(" + e.X.String() + ")" }

// UnaryExpr is a prefix operation: +x, -x or NOT x.
type UnaryExpr struct {
	Token token.Token // the operator token
	Op    string
	X     Expression
}

func (e *UnaryExpr) expressionNode()      {}
func (e *UnaryExpr) Kind() Kind           { return KindUnaryExpr }
func (e *UnaryExpr) TokenLiteral() string { return e.Token.Literal }
func (e *UnaryExpr) Pos() token.Position  { return e.Token.Pos }
func (e *UnaryExpr) String() string {
	if e.Op == "NOT" {
		return "(NOT " + e.X.String() + ")"
	}
	return "(" + e.Op + e.X.String() + ")"
}

// BinaryExpr is an infix operation. Precedence and associativity have already
// been applied by the parser, so the tree shape is final.
type BinaryExpr struct {
	Token token.Token // the operator token
	X     Expression
	Op    string
	Y     Expression
}

func (e *BinaryExpr) expressionNode()      {}
func (e *BinaryExpr) Kind() Kind           { return KindBinaryExpr }
func (e *BinaryExpr) TokenLiteral() string { return e.Token.Literal }
func (e *BinaryExpr) Pos() token.Position  { return e.Token.Pos }
func (e *BinaryExpr) String() string {
	return "(" + e.X.String() + " " + e.Op + " " + e.Y.String() + ")"
}
