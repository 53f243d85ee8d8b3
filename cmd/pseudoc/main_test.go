// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"
)

type runResult struct {
	stdout, stderr string
	code           int
}

// runApp runs pseudoc with args and captures its output and exit code.
func runApp(t *testing.T, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := 0
	oldExiter, oldErrWriter := cli.OsExiter, cli.ErrWriter
	cli.OsExiter = func(c int) { code = c }
	cli.ErrWriter = &stderr
	t.Cleanup(func() { cli.OsExiter, cli.ErrWriter = oldExiter, oldErrWriter })

	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	if err := app.Run(append([]string{"pseudoc", "--nocolor", "--verbosity", "0"}, args...)); err != nil && code == 0 {
		code = exitUsage
	}
	return runResult{stdout.String(), stderr.String(), code}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const returnTree = `CompUnit
└── Block
    └── Return
        └── BinaryExpr +
            ├── Number 1
            └── Number 2
`

func TestParseCommand(t *testing.T) {
	src := writeFile(t, "ret.pseudo", "RETURN 1 + 2\n")

	res := runApp(t, "parse", src)
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, returnTree, res.stdout)

	res = runApp(t, src)
	assert.Equal(t, returnTree, res.stdout, "default action")

	res = runApp(t, "parse", "--format", "compact", src)
	assert.Equal(t, "RETURN (1 + 2)\n", res.stdout)

	res = runApp(t, "parse", "--format", "spew", src)
	assert.Contains(t, res.stdout, "BinaryExpr")
}

func TestSyntaxErrorExitCode(t *testing.T) {
	src := writeFile(t, "bad.pseudo", "x <- 1\nENDIF\n")
	res := runApp(t, "parse", src)
	assert.Equal(t, exitSyntax, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "error: "+src+":2:1: syntax error, unexpected ENDIF")
}

func TestMaxErrorsFlag(t *testing.T) {
	src := writeFile(t, "many.pseudo", strings.Repeat("OUTPUT 1 + 1 2\n", 6))
	res := runApp(t, "--max-errors", "2", "parse", src)
	assert.Equal(t, exitSyntax, res.code)
	assert.Equal(t, 2, strings.Count(res.stderr, "error: "), res.stderr)
}

func TestLowerCommand(t *testing.T) {
	src := writeFile(t, "main.pseudo", "DECLARE x : REAL\nx <- 2 * 3\nOUTPUT x\n")
	res := runApp(t, "lower", "--optimize", src)
	require.Equal(t, 0, res.code, res.stderr)
	want := "$0 = real 0\n$1 = real 2\n$2 = real 3\n$3 = real 6\n\n" +
		"func main() void {\nentry:\n  %3 = const $3\n  output %3\n  ret void\n}\n"
	assert.Equal(t, want, res.stdout)
}

func TestLowerFailureExitCode(t *testing.T) {
	src := writeFile(t, "unknown.pseudo", "OUTPUT y\n")
	res := runApp(t, "lower", src)
	assert.Equal(t, exitLower, res.code)
	assert.Contains(t, res.stderr, `unknown variable name "y"`)
}

func TestMissingSource(t *testing.T) {
	res := runApp(t, "parse", filepath.Join(t.TempDir(), "nope.pseudo"))
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, "error: ")

	res = runApp(t, "parse")
	assert.Equal(t, exitUsage, res.code)
}

func TestTokensCommand(t *testing.T) {
	src := writeFile(t, "tok.pseudo", "x <- 42 // answer\n")
	res := runApp(t, "tokens", src)
	require.Equal(t, 0, res.code, res.stderr)
	for _, want := range []string{"POSITION", "IDENT", "NUMBER", "42", "COMMENT", "EOF"} {
		assert.Contains(t, res.stdout, want)
	}
}

func TestGrammarCommand(t *testing.T) {
	res := runApp(t, "grammar")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "CompUnit: FuncDef")
	assert.Contains(t, res.stdout, "Expr: '-' Expr %prec UNARY")
	assert.Contains(t, res.stdout, "conflicts resolved by precedence")
	assert.NotContains(t, res.stdout, "resolved as")
}

func TestDumpConfig(t *testing.T) {
	res := runApp(t, "--max-errors", "7", "dumpconfig")
	require.Equal(t, 0, res.code, res.stderr)

	var cfg pseudocConfig
	require.NoError(t, tomlSettings.NewDecoder(strings.NewReader(res.stdout)).Decode(&cfg))
	want := defaultConfig
	want.Parser.MaxErrors = 7
	want.Log.Verbosity = 0
	want.Log.NoColor = true
	assert.Equal(t, want, cfg)
}

func TestConfigFileSelectsFormat(t *testing.T) {
	src := writeFile(t, "ret.pseudo", "RETURN 1 + 2\n")
	conf := writeFile(t, "pseudoc.toml", "[Output]\nFormat = \"compact\"\n")

	res := runApp(t, "--config", conf, src)
	assert.Equal(t, "RETURN (1 + 2)\n", res.stdout)

	res = runApp(t, "--config", conf, "parse", "--format", "tree", src)
	assert.Equal(t, returnTree, res.stdout, "flag overrides file")
}

func TestSessionIncomplete(t *testing.T) {
	s := &session{w: io.Discard}
	assert.True(t, s.incomplete("IF c THEN"))
	assert.True(t, s.incomplete("FUNCTION F() RETURNS REAL\n  RETURN 1"))
	assert.False(t, s.incomplete("OUTPUT 1"))
	assert.False(t, s.incomplete("OUTPUT )"))
}

func TestSessionEval(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	s := &session{w: &out}
	s.eval("OUTPUT 1 + 2")
	assert.Equal(t, "CompUnit\n└── Block\n    └── Output\n        └── BinaryExpr +\n"+
		"            ├── Number 1\n            └── Number 2\n"+
		"$0 = real 1\n$1 = real 2\n$2 = real 3\n\nfunc main() void {\nentry:\n  %2 = const $2\n  output %2\n  ret void\n}\n",
		out.String())

	out.Reset()
	s.eval("OUTPUT NOT 1")
	assert.Contains(t, out.String(), `error: <input 2>:1:8: invalid unary operator "NOT"`)
}

func TestVerbosityLevels(t *testing.T) {
	res := runApp(t, "--help")
	assert.Contains(t, res.stdout, "0=crit")
	assert.NotContains(t, res.stdout, "silent")
}
