// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Command pseudoc is the pseudocode compiler front end.
//
// Usage:
//
//	pseudoc [global flags] <source>             render the syntax tree
//	pseudoc [global flags] parse [-format f] <source>
//	pseudoc [global flags] lower [-optimize] <source>
//	pseudoc [global flags] tokens <source>
//	pseudoc [global flags] grammar
//	pseudoc [global flags] repl
//	pseudoc [global flags] dumpconfig [<file>]
//
// A source of "-" reads standard input.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"
)

const version = "0.1.0"

// Process exit codes.
const (
	exitUsage  = 1 // bad arguments, unreadable input or configuration
	exitSyntax = 2 // the source has syntax errors
	exitLower  = 3 // the tree could not be lowered
)

var (
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: int(log.LvlInfo),
	}
	maxErrorsFlag = cli.IntFlag{
		Name:  "max-errors",
		Usage: "Number of syntax errors reported before parsing stops",
		Value: defaultConfig.Parser.MaxErrors,
	}
	noColorFlag = cli.BoolFlag{
		Name:  "nocolor",
		Usage: "Disable colored output",
	}
	formatFlag = cli.StringFlag{
		Name:  "format",
		Usage: "Tree output format: tree, compact or spew",
		Value: formatTree,
	}
	optimizeFlag = cli.BoolFlag{
		Name:  "optimize",
		Usage: "Run the IR optimization passes",
	}
)

var errorColor = color.New(color.FgRed, color.Bold)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "pseudoc"
	app.Usage = "pseudocode compiler front end"
	app.Version = version
	app.ArgsUsage = "<source>"
	app.Flags = []cli.Flag{
		configFileFlag,
		verbosityFlag,
		maxErrorsFlag,
		noColorFlag,
	}
	app.Action = parseSource
	app.Commands = []cli.Command{
		parseCommand,
		lowerCommand,
		tokensCommand,
		grammarCommand,
		replCommand,
		dumpConfigCommand,
	}
	return app
}

func main() {
	cli.ErrWriter = colorable.NewColorableStderr()
	if err := newApp().Run(os.Args); err != nil {
		// Exit errors have already been reported by the cli package.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

// failf returns an error that makes the cli package print the message and
// exit with code.
func failf(code int, format string, args ...interface{}) error {
	return cli.NewExitError(errorColor.Sprint("error: ")+fmt.Sprintf(format, args...), code)
}

// setupLogging routes the root logger to stderr at the configured level.
func setupLogging(cfg logConfig) {
	color.NoColor = color.NoColor || cfg.NoColor

	var output io.Writer = os.Stderr
	usecolor := !cfg.NoColor && os.Getenv("TERM") != "dumb" &&
		(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	if usecolor {
		output = colorable.NewColorableStderr()
	}
	glogger := log.NewGlogHandler(log.StreamHandler(output, log.TerminalFormat(usecolor)))
	glogger.Verbosity(log.Lvl(cfg.Verbosity))
	log.Root().SetHandler(glogger)
}
