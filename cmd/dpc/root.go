// Command dpc is the compiler's command-line front: "compile" turns a typed
// front-IR document into a CBOR program, and "generate-dynamic-data" emits
// per-set ddd files. It threads pflag-parsed options into an
// internal/dp/config.Config and drives internal/dp/compiler.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ensembl-dp/dpc/internal/dp/dplog"
)

type rootOptions struct {
	rootDir        string
	fileSearchPath []string
	libraries      []string
	optLevel       int
	generateDebug  bool
	unitTest       bool
	verbose        int
	defines        []string
	debugRun       bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "dpc",
		Short: "Ahead-of-time compiler for DP bytecode programs",
	}

	addRootFlags(root.PersistentFlags(), opts)

	root.AddCommand(newCompileCommand(opts))
	root.AddCommand(newGenerateDynamicDataCommand(opts))

	return root
}

func addRootFlags(flags *pflag.FlagSet, opts *rootOptions) {
	flags.StringVar(&opts.rootDir, "root-dir", ".", "root directory compile-time file reads are relative to")
	flags.StringArrayVar(&opts.fileSearchPath, "file-search-path", nil, "templated file_search_path pattern (repeatable, must contain exactly one '*')")
	flags.StringArrayVar(&opts.libraries, "library", nil, "command-set library name to link (repeatable)")
	flags.IntVar(&opts.optLevel, "opt-level", 2, "optimization level 0..3 (controls which peephole passes run)")
	flags.BoolVar(&opts.generateDebug, "generate-debug", false, "retain LineNumber instructions and emit a debug table")
	flags.BoolVar(&opts.unitTest, "unit-test", false, "relax error policies for test harnesses")
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase diagnostic verbosity (repeatable, 0..3)")
	flags.StringArrayVar(&opts.defines, "define", nil, "compile-time define NAME=VALUE (repeatable)")
	flags.BoolVar(&opts.debugRun, "debug-run", false, "single-step the pre-image evaluator, recording each folded command")
}

func verboseLevel(n int) dplog.Verbose {
	switch {
	case n >= 3:
		return dplog.Trace
	case n == 2:
		return dplog.Debug
	case n == 1:
		return dplog.Info
	default:
		return dplog.Quiet
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
