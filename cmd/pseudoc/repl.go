// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/go-pseudo/lang/ast"
	"github.com/probechain/go-pseudo/lang/lexer"
	"github.com/probechain/go-pseudo/lang/parser"
	"github.com/probechain/go-pseudo/lang/token"
)

const (
	historyFile = ".pseudoc_history"
	promptMain  = "pseudo> "
	promptCont  = "   ...> "
)

var replCommand = cli.Command{
	Action:   runREPL,
	Name:     "repl",
	Usage:    "Start an interactive session",
	Category: "COMPILER COMMANDS",
	Description: `
The repl command reads compilation units from the terminal. Input continues
over several lines until it parses or an empty line is entered. Each unit is
printed as a tree followed by its optimized IR. Enter :quit to leave.`,
}

// session parses and lowers the units entered at the prompt.
type session struct {
	w         io.Writer
	maxErrors int
	n         int // units entered so far
}

func (s *session) parse(src string) (*ast.CompilationUnit, error) {
	name := fmt.Sprintf("<input %d>", s.n+1)
	return parser.ParseTokens(lexer.New(name, src), parser.Config{MaxErrors: s.maxErrors})
}

// eval prints the tree and IR of a complete unit, or its errors.
func (s *session) eval(src string) {
	s.n++
	unit, err := s.parse(src)
	if err != nil {
		fmt.Fprintln(s.w, formatErrors(err))
		return
	}
	ast.Fprint(s.w, unit)
	prog, err := lowerUnit(unit, true, log.Root())
	if err != nil {
		fmt.Fprintln(s.w, formatErrors(err))
		return
	}
	fmt.Fprint(s.w, prog)
}

// incomplete reports whether src failed only because the input ended early.
func (s *session) incomplete(src string) bool {
	_, err := s.parse(src)
	var list parser.ErrorList
	if !errors.As(err, &list) {
		return false
	}
	return list[0].Unexpected.Type == token.EOF
}

func runREPL(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return failf(exitUsage, "%v", err)
	}
	s := &session{w: ctx.App.Writer, maxErrors: cfg.Parser.MaxErrors}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// Load history (best-effort)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		src, ok := readUnit(ln, s)
		if !ok {
			fmt.Fprintln(s.w)
			break
		}
		input := strings.TrimSpace(src)
		if input == "" {
			continue
		}
		if input == ":quit" || input == ":q" {
			break
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		s.eval(src)
	}

	// Persist history (best-effort)
	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return nil
}

// readUnit reads lines until they form a complete unit, a real error, or an
// empty line ends the input.
func readUnit(ln *liner.State, s *session) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C aborts the current input.
			return "", true
		}
		if strings.TrimSpace(line) == "" {
			return b.String(), true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !s.incomplete(src) {
			return src, true
		}
	}
}
