// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ast

import "fmt"

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *CompilationUnit:
		if n.Def == nil {
			return nil
		}
		return []Node{n.Def}
	case *FunctionDef:
		return append(paramNodes(n.Params), n.Body)
	case *ProcedureDef:
		return append(paramNodes(n.Params), n.Body)
	case *Block:
		kids := make([]Node, len(n.Stmts))
		for i, s := range n.Stmts {
			kids[i] = s
		}
		return kids
	case *VarAssign:
		return []Node{n.Value}
	case *If:
		if n.HasElse {
			return []Node{n.Cond, n.Then, n.Else}
		}
		return []Node{n.Cond, n.Then}
	case *While:
		return []Node{n.Cond, n.Body}
	case *For:
		return []Node{n.From, n.To, n.Body}
	case *Return:
		return []Node{n.Value}
	case *Output:
		return []Node{n.Value}
	case *PrimaryExpr:
		return []Node{n.X}
	case *UnaryExpr:
		return []Node{n.X}
	case *BinaryExpr:
		return []Node{n.X, n.Y}
	case *Parameter, *VarDecl, *VariableRef, *Literal:
		return nil
	}
	panic(fmt.Sprintf("ast.Children: unexpected node type %T", n))
}

func paramNodes(params []*Parameter) []Node {
	kids := make([]Node, 0, len(params)+1)
	for _, p := range params {
		kids = append(kids, p)
	}
	return kids
}

// Walk traverses a syntax tree in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor
// w for each of the non-nil children of node, followed by a call of
// w.Visit(nil).
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range Children(node) {
		Walk(v, child)
	}
	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses a syntax tree in depth-first order: It starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the children of node, followed by a call of
// f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
