// Command whyc is the compiler-front-end CLI: it lexes, parses,
// shallow-checks, deep-checks and validates a single source file,
// printing span-prefixed diagnostics to stderr on failure.
//
// There is no codegen here, so the --emit-* flags report intermediate
// pipeline stages instead of object-file formats: --emit-tokens prints the
// token stream, while --emit-ast and --emit-checked print only the number
// of top-level statements, not the tree itself.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	semver "github.com/Masterminds/semver/v3"
	"github.com/fsnotify/fsnotify"

	"github.com/whylang/whyc/internal/check"
	"github.com/whylang/whyc/internal/cli"
	"github.com/whylang/whyc/internal/config"
	"github.com/whylang/whyc/internal/diagnostic"
	"github.com/whylang/whyc/internal/lexer"
	"github.com/whylang/whyc/internal/parser"
	"github.com/whylang/whyc/internal/position"
	"github.com/whylang/whyc/internal/scope"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		showHelp    = flag.Bool("help", false, "show help information")
		jsonOutput  = flag.Bool("json", false, "output version in JSON format")
		emitTokens  = flag.Bool("emit-tokens", false, "print the lexed token stream (stdout)")
		emitAST     = flag.Bool("emit-ast", false, "print the number of parsed top-level statements (stdout); the tree itself is not printed")
		emitChecked = flag.Bool("emit-checked", false, "print the number of type-checked top-level statements (stdout); the tree itself is not printed")
		langVersion = flag.String("lang-version", "", "language version constraint this source targets (e.g. \"^0.1\"); overrides whyc.yaml")
		configPath  = flag.String("config", "whyc.yaml", "path to the project config file")
		watch       = flag.Bool("watch", false, "re-run the pipeline whenever the input file changes on disk")
	)

	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		cli.PrintVersion("whyc", *jsonOutput)
		return
	}
	if *showHelp {
		usage()
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one input file")
		usage()
		os.Exit(2)
	}
	inputFile := args[0]

	cfg, err := config.Load(*configPath)
	if err != nil {
		cli.ExitWithError("%v", err)
	}
	if err := checkLanguageVersion(cfg.MergeLanguageVersion(*langVersion)); err != nil {
		cli.ExitWithError("%v", err)
	}

	opts := pipelineOptions{emitTokens: *emitTokens, emitAST: *emitAST, emitChecked: *emitChecked}

	if !*watch {
		if !runPipeline(inputFile, opts) {
			os.Exit(1)
		}
		return
	}
	runWatch(inputFile, opts)
}

func usage() {
	fmt.Fprintln(os.Stderr, "whyc - a small expression-oriented language's front end")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "USAGE:")
	fmt.Fprintln(os.Stderr, "    whyc [OPTIONS] <INPUT_FILE>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "OPTIONS:")
	flag.PrintDefaults()
}

// checkLanguageVersion validates that this binary's CompilerVersion
// satisfies constraint. Kept out of internal/check entirely: a version
// mismatch is a tooling concern, never a type error.
func checkLanguageVersion(constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid --lang-version constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(cli.CompilerVersion)
	if err != nil {
		return fmt.Errorf("invalid compiler version %q: %w", cli.CompilerVersion, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("whyc v%s does not satisfy language version constraint %q", cli.CompilerVersion, constraint)
	}
	return nil
}

type pipelineOptions struct {
	emitTokens  bool
	emitAST     bool
	emitChecked bool
}

// runPipeline runs lex -> parse -> shallow -> check -> validate once,
// printing diagnostics on failure. Returns whether the source passed every
// stage cleanly.
func runPipeline(inputFile string, opts pipelineOptions) bool {
	logger := log.New(os.Stderr, "", 0)

	src, err := os.ReadFile(inputFile)
	if err != nil {
		logger.Printf("cannot read %s: %v", inputFile, err)
		return false
	}

	sourceMap := position.NewSourceMap()
	sourceMap.Add(inputFile, string(src))

	tokens, err := lexer.Lex(inputFile, string(src))
	if err != nil {
		printDiagnostic(logger, err, sourceMap, "lex")
		return false
	}
	if opts.emitTokens {
		for _, tok := range tokens {
			fmt.Fprintln(os.Stdout, tok.String())
		}
	}

	prog, err := parser.Parse(tokens)
	if err != nil {
		printDiagnostic(logger, err, sourceMap, "parse")
		return false
	}
	if opts.emitAST {
		fmt.Fprintf(os.Stdout, "%d top-level statement(s)\n", len(prog.Statements))
	}

	sc := scope.New()
	if err := check.Shallow(prog, sc); err != nil {
		printDiagnostic(logger, err, sourceMap, "check")
		return false
	}

	checked, err := check.Check(prog, sc)
	if err != nil {
		printDiagnostic(logger, err, sourceMap, "check")
		return false
	}
	if opts.emitChecked {
		fmt.Fprintf(os.Stdout, "%d checked top-level statement(s)\n", len(checked.Statements))
	}

	if _, err := check.Validate(checked); err != nil {
		printDiagnostic(logger, err, sourceMap, "validate")
		return false
	}

	return true
}

func printDiagnostic(logger *log.Logger, err error, sourceMap *position.SourceMap, stage string) {
	spanned, ok := err.(diagnostic.Spanned)
	if !ok {
		logger.Printf("%s: %v", stage, err)
		return
	}
	logger.Println(diagnostic.Render(spanned, sourceMap))
	logger.Println(diagnostic.Summary(stage, 1))
}

// runWatch re-runs runPipeline whenever inputFile changes, until the
// process is killed.
func runWatch(inputFile string, opts pipelineOptions) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		cli.ExitWithError("could not start file watcher: %v", err)
	}
	defer watcher.Close()

	if err := watcher.Add(inputFile); err != nil {
		cli.ExitWithError("could not watch %s: %v", inputFile, err)
	}

	fmt.Fprintf(os.Stderr, "watching %s for changes (ctrl-c to stop)\n", inputFile)
	runPipeline(inputFile, opts)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(os.Stderr, "\n--- %s changed, re-running ---\n", inputFile)
			runPipeline(inputFile, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
