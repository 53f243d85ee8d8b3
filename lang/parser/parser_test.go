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
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	fuzz "github.com/google/gofuzz"

	"github.com/probechain/go-pseudo/lang/ast"
	"github.com/probechain/go-pseudo/lang/lexer"
	"github.com/probechain/go-pseudo/lang/token"
)

var update = flag.Bool("update", false, "rewrite golden files in testdata")

// ignoreTokens compares trees by shape and payload only.
var ignoreTokens = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().Type() == reflect.TypeOf(token.Token{})
}, cmp.Ignore())

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mustParse(t *testing.T, src string) *ast.CompilationUnit {
	t.Helper()
	unit, err := Parse("test.pseudo", src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return unit
}

func parseErrors(t *testing.T, src string) ErrorList {
	t.Helper()
	unit, err := Parse("", src)
	if err == nil {
		t.Fatalf("parse %q: expected errors, got %s", src, unit)
	}
	if unit != nil {
		t.Errorf("parse %q: tree returned alongside errors", src)
	}
	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("parse %q: error %T is not an ErrorList", src, err)
	}
	return list
}

func num(v float64) *ast.Literal         { return &ast.Literal{Value: v} }
func ref(name string) *ast.VariableRef   { return &ast.VariableRef{Name: name} }
func body(s ...ast.Statement) *ast.Block { return &ast.Block{Stmts: s} }

func bin(x ast.Expression, op string, y ast.Expression) *ast.BinaryExpr {
	return &ast.BinaryExpr{X: x, Op: op, Y: y}
}

func unit(def ast.Definition) *ast.CompilationUnit { return &ast.CompilationUnit{Def: def} }

// ---------------------------------------------------------------------------
// Grammar
// ---------------------------------------------------------------------------

func TestTableHasNoConflicts(t *testing.T) {
	table, err := Table()
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Conflicts) != 0 {
		t.Errorf("unexpected conflicts: %v", table.DescribeConflicts())
	}
	if table.Resolved == 0 {
		t.Error("no conflict was settled by precedence")
	}
	again, _ := Table()
	if again != table {
		t.Error("table rebuilt on second call")
	}
}

// ---------------------------------------------------------------------------
// Tree shapes
// ---------------------------------------------------------------------------

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *ast.CompilationUnit
	}{
		{
			"return",
			"RETURN 1 + 2",
			unit(body(&ast.Return{Value: bin(num(1), "+", num(2))})),
		},
		{
			"assign",
			"x <- 3",
			unit(body(&ast.VarAssign{Name: "x", Value: num(3)})),
		},
		{
			"declare",
			"DECLARE s : STRING\nDECLARE c : CHAR",
			unit(body(
				&ast.VarDecl{Name: "s", Type: ast.TypeString},
				&ast.VarDecl{Name: "c", Type: ast.TypeChar},
			)),
		},
		{
			"if",
			"IF c THEN OUTPUT 1 ENDIF",
			unit(body(&ast.If{Cond: ref("c"), Then: body(&ast.Output{Value: num(1)})})),
		},
		{
			"if else",
			"IF c THEN OUTPUT 1 ELSE OUTPUT 2 ENDIF",
			unit(body(&ast.If{
				Cond:    ref("c"),
				Then:    body(&ast.Output{Value: num(1)}),
				Else:    body(&ast.Output{Value: num(2)}),
				HasElse: true,
			})),
		},
		{
			"while",
			"WHILE x < 10 x <- x + 1 ENDWHILE",
			unit(body(&ast.While{
				Cond: bin(ref("x"), "<", num(10)),
				Body: body(&ast.VarAssign{Name: "x", Value: bin(ref("x"), "+", num(1))}),
			})),
		},
		{
			"for bounds kept verbatim",
			"FOR i <- 5 TO 1 OUTPUT i NEXT",
			unit(body(&ast.For{Var: "i", From: num(5), To: num(1), Body: body(&ast.Output{Value: ref("i")})})),
		},
		{
			"function without params",
			"FUNCTION Pi() RETURNS REAL RETURN 3.14 ENDFUNCTION",
			unit(&ast.FunctionDef{
				Name:       "Pi",
				ReturnType: ast.TypeReal,
				Body:       body(&ast.Return{Value: num(3.14)}),
			}),
		},
		{
			"procedure with params",
			"PROCEDURE Show(a : INTEGER, b : BOOLEAN) OUTPUT a ENDPROCEDURE",
			unit(&ast.ProcedureDef{
				Name: "Show",
				Params: []*ast.Parameter{
					{Name: "a", Type: ast.TypeInteger},
					{Name: "b", Type: ast.TypeBoolean},
				},
				Body: body(&ast.Output{Value: ref("a")}),
			}),
		},
		{
			"nested blocks",
			"IF a THEN IF b THEN x <- 1 ENDIF y <- 2 ENDIF",
			unit(body(&ast.If{
				Cond: ref("a"),
				Then: body(
					&ast.If{Cond: ref("b"), Then: body(&ast.VarAssign{Name: "x", Value: num(1)})},
					&ast.VarAssign{Name: "y", Value: num(2)},
				),
			})),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.src)
			if diff := cmp.Diff(tt.want, got, ignoreTokens); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseKeepsPositions(t *testing.T) {
	got := mustParse(t, "DECLARE n : INTEGER\nRETURN 1 + 2")
	stmts := got.Def.(*ast.Block).Stmts
	ret := stmts[1].(*ast.Return)
	if ret.Pos().Line != 2 || ret.Pos().Column != 1 {
		t.Errorf("RETURN at %v, want 2:1", ret.Pos())
	}
	sum := ret.Value.(*ast.BinaryExpr)
	if sum.Pos().Line != 2 || sum.Pos().Column != 10 {
		t.Errorf("'+' at %v, want 2:10", sum.Pos())
	}
	if sum.Pos().File != "test.pseudo" {
		t.Errorf("file = %q", sum.Pos().File)
	}
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{"OUTPUT 1 + 2 * 3", "OUTPUT (1 + (2 * 3))"},
		{"OUTPUT 1 * 2 + 3", "OUTPUT ((1 * 2) + 3)"},
		{"OUTPUT 1 - 2 - 3", "OUTPUT ((1 - 2) - 3)"},
		{"OUTPUT 8 / 4 MOD 3", "OUTPUT ((8 / 4) MOD 3)"},
		{"OUTPUT -2 * 3", "OUTPUT ((-2) * 3)"},
		{"OUTPUT - -2", "OUTPUT (-(-2))"},
		{"OUTPUT +x", "OUTPUT (+x)"},
		{"OUTPUT a < b = c", "OUTPUT ((a < b) = c)"},
		{"OUTPUT a + 1 >= b", "OUTPUT ((a + 1) >= b)"},
		{"OUTPUT a OR b AND c", "OUTPUT (a OR (b AND c))"},
		{"OUTPUT a AND b OR c", "OUTPUT ((a AND b) OR c)"},
		{"OUTPUT NOT a = b", "OUTPUT ((NOT a) = b)"},
		{"OUTPUT NOT NOT a", "OUTPUT (NOT (NOT a))"},
		{"OUTPUT (1 + 2) * 3", "OUTPUT (((1 + 2)) * 3)"},
	}
	for _, tt := range tests {
		if got := mustParse(t, tt.src).String(); got != tt.want {
			t.Errorf("%q parsed as %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	got := mustParse(t, "// leading\nOUTPUT 1 // trailing\n// done")
	want := unit(body(&ast.Output{Value: num(1)}))
	if diff := cmp.Diff(want, got, ignoreTokens); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.pseudo"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no golden inputs")
	}
	for _, file := range files {
		file := file
		t.Run(filepath.Base(file), func(t *testing.T) {
			src, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			unit, err := Parse(file, string(src))
			if err != nil {
				t.Fatal(err)
			}
			got := ast.Sprint(unit)
			golden := strings.TrimSuffix(file, ".pseudo") + ".tree"
			if *update {
				if err := os.WriteFile(golden, []byte(got), 0644); err != nil {
					t.Fatal(err)
				}
				return
			}
			want, err := os.ReadFile(golden)
			if err != nil {
				t.Fatal(err)
			}
			if got != string(want) {
				t.Errorf("rendering mismatch:\n%s", cmp.Diff(string(want), got))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x <- 1\nENDIF", "2:1: syntax error, unexpected ENDIF"},
		{"DECLARE 5", `1:9: syntax error, unexpected NUMBER "5", expecting IDENT`},
		{"FOR i 1", `1:7: syntax error, unexpected NUMBER "1", expecting '<-'`},
		{"OUTPUT 1 ! 2", `1:10: syntax error, unexpected illegal character "!"`},
		{"OUTPUT 1e999", `1:8: invalid number literal "1e999"`},
	}
	for _, tt := range tests {
		errs := parseErrors(t, tt.src)
		if got := errs[0].Error(); got != tt.want {
			t.Errorf("%q: error %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	errs := parseErrors(t, "")
	if !strings.Contains(errs[0].Error(), "unexpected end of file") {
		t.Errorf("got %q", errs[0])
	}
}

func TestIfWithoutEndif(t *testing.T) {
	errs := parseErrors(t, "IF c THEN OUTPUT 1")
	if got := errs[0].Found; got != "end of file" {
		t.Errorf("unexpected %q, want end of file", got)
	}
}

func TestDuplicateParameter(t *testing.T) {
	errs := parseErrors(t, "PROCEDURE P(a : INTEGER, a : REAL)\n  OUTPUT a\nENDPROCEDURE")
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if got, want := errs[0].Error(), `1:26: duplicate parameter "a"`; got != want {
		t.Errorf("error %q, want %q", got, want)
	}
	if !errors.Is(errs, ErrDuplicateParameter) {
		t.Error("errors.Is does not see ErrDuplicateParameter")
	}
}

func TestMaxErrors(t *testing.T) {
	src := strings.Repeat("OUTPUT 1 + 1 2\n", 20)
	tests := []struct {
		max, want int
	}{
		{0, 10},
		{3, 3},
		{50, 20},
	}
	for _, tt := range tests {
		_, err := ParseTokens(lexer.New("", src), Config{MaxErrors: tt.max})
		var errs ErrorList
		if !errors.As(err, &errs) {
			t.Fatalf("max %d: error %v is not an ErrorList", tt.max, err)
		}
		if len(errs) != tt.want {
			t.Errorf("max %d: got %d errors, want %d", tt.max, len(errs), tt.want)
		}
		if got := errs[0].Pos.String(); got != "1:14" {
			t.Errorf("first error at %s, want 1:14", got)
		}
		if errs[1].Pos.Line != 2 {
			t.Errorf("second error on line %d, want 2", errs[1].Pos.Line)
		}
	}
}

func TestErrorList(t *testing.T) {
	var empty ErrorList
	if empty.Err() != nil {
		t.Error("empty list converts to non-nil error")
	}
	one := ErrorList{{Pos: token.Position{Line: 1, Column: 2}, Found: "NUMBER"}}
	if got, want := one.Error(), "1:2: syntax error, unexpected NUMBER"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	three := append(one, one[0], one[0])
	if got, want := three.Error(), "1:2: syntax error, unexpected NUMBER (and 2 more errors)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Token sources
// ---------------------------------------------------------------------------

func TestSliceSource(t *testing.T) {
	pos := func(col int) token.Position { return token.Position{Line: 1, Column: col} }
	toks := []token.Token{
		{Type: token.IDENT, Literal: "x", Pos: pos(1)},
		{Type: token.ASSIGN, Literal: "<-", Pos: pos(3)},
		{Type: token.NUMBER, Literal: "4", Pos: pos(6)},
	}
	got, err := ParseTokens(NewSliceSource(toks), Config{})
	if err != nil {
		t.Fatal(err)
	}
	want := unit(body(&ast.VarAssign{Name: "x", Value: num(4)}))
	if diff := cmp.Diff(want, got, ignoreTokens); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

// TestRandomTokens feeds arbitrary token streams to the parser. Every run
// must end with either a tree or an error, never both and never a panic.
func TestRandomTokens(t *testing.T) {
	types := token.Types()
	literals := []string{"x", "1", "2.5", "1e999", "oops", ""}
	f := fuzz.NewWithSeed(7).NilChance(0).NumElements(1, 30).Funcs(
		func(tok *token.Token, c fuzz.Continue) {
			tok.Type = types[c.Intn(len(types))]
			tok.Literal = literals[c.Intn(len(literals))]
		},
	)
	for i := 0; i < 500; i++ {
		var toks []token.Token
		f.Fuzz(&toks)
		for j := range toks {
			toks[j].Pos = token.Position{Line: 1, Column: j + 1}
		}
		unit, err := ParseTokens(NewSliceSource(toks), Config{MaxErrors: 5})
		if (unit == nil) == (err == nil) {
			t.Fatalf("tokens %v: tree %v, err %v", toks, unit, err)
		}
		if unit != nil {
			ast.Sprint(unit)
		}
	}
}

func TestConcurrentParses(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "loop.pseudo"))
	if err != nil {
		t.Fatal(err)
	}
	want := ast.Sprint(mustParse(t, string(src)))

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if unit, err := Parse("loop.pseudo", string(src)); err == nil {
				results[i] = ast.Sprint(unit)
			}
		}(i)
	}
	wg.Wait()
	for i, got := range results {
		if got != want {
			t.Errorf("parse %d differs", i)
		}
	}
}
