// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/log"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/go-pseudo/lang/ast"
	"github.com/probechain/go-pseudo/lang/ir"
	"github.com/probechain/go-pseudo/lang/lexer"
	"github.com/probechain/go-pseudo/lang/lower"
	"github.com/probechain/go-pseudo/lang/parser"
)

var (
	parseCommand = cli.Command{
		Action:    parseSource,
		Name:      "parse",
		Usage:     "Parse a source file and print its syntax tree",
		ArgsUsage: "<source>",
		Flags:     []cli.Flag{formatFlag},
		Category:  "COMPILER COMMANDS",
		Description: `
The parse command reads a single compilation unit and prints its syntax tree.
Syntax errors are listed one per line and make the command exit with status 2.`,
	}
	lowerCommand = cli.Command{
		Action:    lowerSource,
		Name:      "lower",
		Usage:     "Translate a source file to SSA IR",
		ArgsUsage: "<source>",
		Flags:     []cli.Flag{optimizeFlag},
		Category:  "COMPILER COMMANDS",
		Description: `
The lower command parses a compilation unit and prints the IR of the function,
procedure or main block it defines. Lowering failures exit with status 3.`,
	}
	tokensCommand = cli.Command{
		Action:    listTokens,
		Name:      "tokens",
		Usage:     "Print the token stream of a source file",
		ArgsUsage: "<source>",
		Category:  "COMPILER COMMANDS",
	}
	grammarCommand = cli.Command{
		Action:   showGrammar,
		Name:     "grammar",
		Usage:    "Print the grammar rules and parse table statistics",
		Category: "MISCELLANEOUS COMMANDS",
	}
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// readSource reads the file named by the single command argument.
func readSource(ctx *cli.Context) (name, src string, err error) {
	if ctx.NArg() != 1 {
		return "", "", failf(exitUsage, "expected one source file, got %d arguments", ctx.NArg())
	}
	name = ctx.Args().First()
	var data []byte
	if name == "-" {
		name = "<stdin>"
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", "", failf(exitUsage, "%v", err)
	}
	return name, string(data), nil
}

// formatErrors renders each error of a failed parse on its own line.
func formatErrors(err error) string {
	var list parser.ErrorList
	if !errors.As(err, &list) {
		return errorColor.Sprint("error: ") + err.Error()
	}
	lines := make([]string, len(list))
	for i, e := range list {
		lines[i] = errorColor.Sprint("error: ") + e.Error()
	}
	return strings.Join(lines, "\n")
}

func parseFile(ctx *cli.Context, cfg *pseudocConfig) (string, *ast.CompilationUnit, error) {
	name, src, err := readSource(ctx)
	if err != nil {
		return "", nil, err
	}
	unit, err := parser.ParseTokens(lexer.New(name, src), parser.Config{
		MaxErrors: cfg.Parser.MaxErrors,
		Logger:    log.New("file", name),
	})
	if err != nil {
		var list parser.ErrorList
		if !errors.As(err, &list) {
			return "", nil, failf(exitUsage, "%v", err)
		}
		return "", nil, cli.NewExitError(formatErrors(err), exitSyntax)
	}
	return name, unit, nil
}

func render(w io.Writer, unit *ast.CompilationUnit, format string) error {
	switch format {
	case formatCompact:
		_, err := fmt.Fprintln(w, unit.String())
		return err
	case formatSpew:
		spewConfig.Fdump(w, unit)
		return nil
	}
	return ast.Fprint(w, unit)
}

// parseSource is the parse command and the default action.
func parseSource(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return failf(exitUsage, "%v", err)
	}
	_, unit, err := parseFile(ctx, cfg)
	if err != nil {
		return err
	}
	return render(ctx.App.Writer, unit, cfg.Output.Format)
}

// lowerUnit lowers unit into a fresh program.
func lowerUnit(unit *ast.CompilationUnit, optimize bool, logger log.Logger) (*ir.Program, error) {
	l := lower.New(nil, logger)
	if _, err := l.Unit(unit); err != nil {
		return nil, err
	}
	prog := l.Builder().Program()
	if optimize {
		ir.Optimize(prog)
	}
	return prog, nil
}

// lowerSource is the lower command.
func lowerSource(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return failf(exitUsage, "%v", err)
	}
	name, unit, err := parseFile(ctx, cfg)
	if err != nil {
		return err
	}
	prog, err := lowerUnit(unit, cfg.Output.Optimize, log.New("file", name))
	if err != nil {
		return failf(exitLower, "%v", err)
	}
	_, err = fmt.Fprint(ctx.App.Writer, prog)
	return err
}

// listTokens is the tokens command.
func listTokens(ctx *cli.Context) error {
	if _, err := makeConfig(ctx); err != nil {
		return failf(exitUsage, "%v", err)
	}
	name, src, err := readSource(ctx)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Position", "Type", "Literal"})
	for _, tok := range lexer.New(name, src).Tokenize() {
		pos := tok.Pos
		pos.File = ""
		table.Append([]string{pos.String(), tok.Type.String(), tok.Literal})
	}
	table.Render()
	return nil
}

// showGrammar is the grammar command.
func showGrammar(ctx *cli.Context) error {
	if _, err := makeConfig(ctx); err != nil {
		return failf(exitUsage, "%v", err)
	}
	t, err := parser.Table()
	if err != nil {
		return failf(exitUsage, "%v", err)
	}
	g := t.Grammar
	w := ctx.App.Writer

	rules := tablewriter.NewWriter(w)
	rules.SetHeader([]string{"Rule", "Production"})
	rules.SetAutoWrapText(false)
	for _, p := range g.Productions() {
		rules.Append([]string{strconv.Itoa(p.ID), g.ProductionString(p)})
	}
	rules.Render()

	levels := make(map[int][]string)
	assoc := make(map[int]string)
	for _, s := range g.Terminals() {
		if prec := g.PrecedenceOf(s); prec.Level > 0 {
			levels[prec.Level] = append(levels[prec.Level], g.Name(s))
			assoc[prec.Level] = prec.Assoc.String()
		}
	}
	order := make([]int, 0, len(levels))
	for lvl := range levels {
		order = append(order, lvl)
	}
	sort.Ints(order)

	prec := tablewriter.NewWriter(w)
	prec.SetHeader([]string{"Level", "Assoc", "Tokens"})
	for _, lvl := range order {
		prec.Append([]string{strconv.Itoa(lvl), assoc[lvl], strings.Join(levels[lvl], " ")})
	}
	prec.Render()

	shifts, reduces, _ := t.Counts()
	fmt.Fprintf(w, "%d states, %d shift and %d reduce actions, %d conflicts resolved by precedence\n",
		t.NumStates(), shifts, reduces, t.Resolved)
	for _, c := range t.DescribeConflicts() {
		fmt.Fprintln(w, c)
	}
	return nil
}
