// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package ast

import (
	"bytes"
	"fmt"
	"io"
)

// Tree drawing glyphs.
const (
	branchGlyph = "├── "
	lastGlyph   = "└── "
	pipeIndent  = "│   "
	blankIndent = "    "
)

// item is one printable line of the rendered tree. Group items (Cond, Then,
// Else, From, To) have no node of their own and exist only in the output.
type item struct {
	label string
	kids  []item
}

// Label returns the text printed for n on its own line.
func Label(n Node) string {
	switch n := n.(type) {
	case *FunctionDef:
		return fmt.Sprintf("%s %s RETURNS %s", n.Kind(), n.Name, n.ReturnType)
	case *ProcedureDef:
		return fmt.Sprintf("%s %s", n.Kind(), n.Name)
	case *Parameter:
		return fmt.Sprintf("%s %s: %s", n.Kind(), n.Name, n.Type)
	case *VarDecl:
		return fmt.Sprintf("%s %s: %s", n.Kind(), n.Name, n.Type)
	case *VarAssign:
		return fmt.Sprintf("%s %s", n.Kind(), n.Name)
	case *For:
		return fmt.Sprintf("%s %s", n.Kind(), n.Var)
	case *VariableRef:
		return fmt.Sprintf("%s %s", n.Kind(), n.Name)
	case *Literal:
		return fmt.Sprintf("%s %s", n.Kind(), FormatNumber(n.Value))
	case *UnaryExpr:
		return fmt.Sprintf("%s %s", n.Kind(), n.Op)
	case *BinaryExpr:
		return fmt.Sprintf("%s %s", n.Kind(), n.Op)
	}
	return n.Kind().String()
}

func group(label string, n Node) item {
	return item{label: label, kids: []item{layout(n)}}
}

// layout converts a subtree into printable items.
func layout(n Node) item {
	it := item{label: Label(n)}
	switch n := n.(type) {
	case *If:
		it.kids = []item{group("Cond", n.Cond), group("Then", n.Then)}
		if n.HasElse {
			it.kids = append(it.kids, group("Else", n.Else))
		}
	case *While:
		it.kids = []item{group("Cond", n.Cond), layout(n.Body)}
	case *For:
		it.kids = []item{group("From", n.From), group("To", n.To), layout(n.Body)}
	default:
		for _, child := range Children(n) {
			it.kids = append(it.kids, layout(child))
		}
	}
	return it
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}

func (p *printer) children(kids []item, prefix string) {
	for i, kid := range kids {
		p.render(kid, prefix, i == len(kids)-1)
	}
}

func (p *printer) render(it item, prefix string, last bool) {
	if last {
		p.line(prefix + lastGlyph + it.label)
		prefix += blankIndent
	} else {
		p.line(prefix + branchGlyph + it.label)
		prefix += pipeIndent
	}
	p.children(it.kids, prefix)
}

// RenderNode writes node as a branch of a larger tree. The node's own line is
// prefixed with prefix and a connector glyph; last selects the closing
// connector and stops the vertical rule from continuing below the node.
func RenderNode(w io.Writer, node Node, prefix string, last bool) error {
	p := &printer{w: w}
	p.render(layout(node), prefix, last)
	return p.err
}

// Fprint renders the tree rooted at node. The root line carries no connector.
func Fprint(w io.Writer, node Node) error {
	p := &printer{w: w}
	root := layout(node)
	p.line(root.label)
	p.children(root.kids, "")
	return p.err
}

// Sprint returns the rendering produced by Fprint.
func Sprint(node Node) string {
	var buf bytes.Buffer
	Fprint(&buf, node)
	return buf.String()
}
