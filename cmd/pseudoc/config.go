// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/log"
	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/probechain/go-pseudo/lang/lalr"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[<file>]",
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows the effective configuration as TOML.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML or YAML configuration file",
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type parserConfig struct {
	MaxErrors int `yaml:"MaxErrors"`
}

type logConfig struct {
	Verbosity int  `yaml:"Verbosity"`
	NoColor   bool `yaml:"NoColor"`
}

type outputConfig struct {
	Format   string `yaml:"Format"`
	Optimize bool   `yaml:"Optimize"`
}

type pseudocConfig struct {
	Parser parserConfig `yaml:"Parser"`
	Log    logConfig    `yaml:"Log"`
	Output outputConfig `yaml:"Output"`
}

var defaultConfig = pseudocConfig{
	Parser: parserConfig{MaxErrors: lalr.DefaultMaxErrors},
	Log:    logConfig{Verbosity: int(log.LvlInfo)},
	Output: outputConfig{Format: formatTree},
}

// Output formats of the parse command.
const (
	formatTree    = "tree"
	formatCompact = "compact"
	formatSpew    = "spew"
)

func loadConfig(file string, cfg *pseudocConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bufio.NewReader(f))
		dec.KnownFields(true)
		if err = dec.Decode(cfg); err != nil {
			err = errors.New(file + ", " + err.Error())
		}
		return err
	}
	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

func (cfg *pseudocConfig) validate() error {
	switch cfg.Output.Format {
	case formatTree, formatCompact, formatSpew:
	default:
		return fmt.Errorf("unknown output format %q", cfg.Output.Format)
	}
	if cfg.Parser.MaxErrors < 0 {
		return fmt.Errorf("invalid error limit %d", cfg.Parser.MaxErrors)
	}
	if cfg.Log.Verbosity < 0 || cfg.Log.Verbosity > int(log.LvlTrace) {
		return fmt.Errorf("verbosity %d out of range 0-%d", cfg.Log.Verbosity, log.LvlTrace)
	}
	return nil
}

// makeConfig loads the configuration file, applies flags and installs the
// log handler.
func makeConfig(ctx *cli.Context) (*pseudocConfig, error) {
	// Load defaults.
	cfg := defaultConfig

	// Load config file.
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return nil, err
		}
	}

	// Apply flags.
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.Log.Verbosity = ctx.GlobalInt(verbosityFlag.Name)
	}
	if ctx.GlobalIsSet(noColorFlag.Name) {
		cfg.Log.NoColor = ctx.GlobalBool(noColorFlag.Name)
	}
	if ctx.GlobalIsSet(maxErrorsFlag.Name) {
		cfg.Parser.MaxErrors = ctx.GlobalInt(maxErrorsFlag.Name)
	}
	if ctx.IsSet(formatFlag.Name) {
		cfg.Output.Format = ctx.String(formatFlag.Name)
	}
	if ctx.IsSet(optimizeFlag.Name) {
		cfg.Output.Optimize = ctx.Bool(optimizeFlag.Name)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	setupLogging(cfg.Log)
	return &cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return failf(exitUsage, "%v", err)
	}
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return failf(exitUsage, "%v", err)
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
