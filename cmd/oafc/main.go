// Copyright 2026 The Oaf Authors
// This file is part of Oaf.

// Command oafc compiles and executes Oaf source files.
//
// Usage:
//
//	oafc [flags] <source.oaf>
//
// Flags:
//
//	-config <file>  TOML configuration file (VM worker/cache sizing)
//	-emit <stage>   Emit intermediate output: tokens, bytecode (default: run)
//	-entry <name>   Entry function to execute (default: the program's declared entry)
//	-version        Print version and exit
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/oaflang/oaf/lang/bytecode"
	"github.com/oaflang/oaf/lang/config"
	"github.com/oaflang/oaf/lang/ir"
	"github.com/oaflang/oaf/lang/lexer"
	"github.com/oaflang/oaf/lang/parser"
	"github.com/oaflang/oaf/lang/vm"
)

const version = "0.1.0"

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		emit       = flag.String("emit", "run", "Emit stage: tokens, bytecode (default: run)")
		entry      = flag.String("entry", "", "Entry function name (default: the program's declared entry)")
		ver        = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *ver {
		fmt.Printf("oafc %s\n", version)
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: oafc [flags] <source.oaf>")
		os.Exit(1)
	}

	filename := flag.Arg(0)
	source, err := os.ReadFile(filename)
	if err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			color.Red("error: %v", err)
			os.Exit(1)
		}
	}

	toks := lexer.New(filename, string(source)).Tokenize()

	if *emit == "tokens" {
		for _, tok := range toks {
			fmt.Printf("%s\t%s\t%q\n", tok.Pos, tok.Type, tok.Literal)
		}
		return
	}

	prog, err := parser.ParseProgram(toks)
	if err != nil {
		color.Red("parse error: %v", err)
		os.Exit(1)
	}

	mod, err := ir.Lower(prog)
	if err != nil {
		color.Red("lowering error: %v", err)
		os.Exit(1)
	}
	ir.Optimize(mod)

	bc, err := bytecode.Generate(mod)
	if err != nil {
		color.Red("codegen error: %v", err)
		os.Exit(1)
	}

	if *emit == "bytecode" {
		fmt.Print(bytecode.Disassemble(bc))
		return
	}

	execute(bc, *entry, cfg)
}

// execute runs a compiled program on a VM built from cfg and renders the
// result: green for a successful return, red for a failure, with every
// Print line emitted in between.
func execute(bc *bytecode.Program, entry string, cfg config.Config) {
	m := vm.New(cfg.VM.ParallelWorkers, cfg.VM.FastPathCacheSize)
	res := m.Execute(bc, entry)

	for _, line := range res.Stdout {
		fmt.Println(line)
	}

	if !res.Success {
		color.Red("error: %s", res.ErrorMessage)
		os.Exit(1)
	}
	if res.HasReturn {
		color.Green("=> %s", res.ReturnValue.Text())
	}
}
