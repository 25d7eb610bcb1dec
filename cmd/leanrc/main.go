// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Command leanrc elaborates and type-checks a leanr source file.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/leanr-go/leanr/elab"
	"github.com/leanr-go/leanr/internal/logging"
	"github.com/leanr-go/leanr/kernel"
	"github.com/leanr-go/leanr/syntax"
	"github.com/leanr-go/leanr/version"
)

func main() {
	dev := flag.Bool("dev", false, "use a human-readable development logger instead of JSON")
	showVersion := flag.Bool("version", false, "print the leanrc version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Current)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: leanrc [-dev] [-version] <file.leanr>")
		os.Exit(2)
	}

	var log logging.Logger
	if *dev {
		log = logging.NewDevelopment()
	} else {
		log = logging.New()
	}
	defer log.Sync()

	path := flag.Arg(0)
	if err := checkFile(path, log); err != nil {
		log.Error("check failed", zap.Error(err))
		os.Exit(1)
	}
	fmt.Printf("%s: ok\n", path)
}

func checkFile(path string, log logging.Logger) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	source := syntax.NewSourceFile(0, path, string(content))
	tokens := syntax.NewLexer(source).Tokenize()
	decls, err := syntax.NewParser(tokens).ParseDecls()
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	log.Debug("parsed declarations", zap.Int("count", len(decls)))

	arena := kernel.NewTermArena()
	levels := kernel.NewLevelArena()
	syms := kernel.NewSymbolTable()
	env := kernel.NewEnvironment()
	conv := kernel.NewConverter(arena, levels, env)
	tc := kernel.NewTypeChecker(arena, levels, syms, env, conv)

	e := elab.NewElaborator(arena, levels, syms, env, conv, tc)
	if err := e.ElaborateDecls(decls); err != nil {
		return fmt.Errorf("elaborating %s: %w", path, err)
	}
	return nil
}
