package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/command/builtin"
	"github.com/ensembl-dp/dpc/internal/dp/compiler"
	"github.com/ensembl-dp/dpc/internal/dp/config"
	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/resolver"
)

func newCompileCommand(opts *rootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "compile <front-ir.json>",
		Short: "compile a front-IR program into a CBOR bytecode program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], outPath)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "a.ddp", "output CBOR program path")
	return cmd
}

func defineOptions(raw []string) ([]config.Define, error) {
	defines := make([]config.Define, 0, len(raw))
	for _, d := range raw {
		name, value, ok := strings.Cut(d, "=")
		if !ok {
			return nil, fmt.Errorf("dpc: --define %q must be in NAME=VALUE form", d)
		}
		defines = append(defines, config.Define{Name: name, Value: value})
	}
	return defines, nil
}

// buildStore registers the builtin commands and returns the store plus the
// default "core" set ready for linking.
func buildStore() (*command.CommandTypeStore, *command.Set, error) {
	store := command.NewCommandTypeStore()
	ids, err := builtin.RegisterAll(store)
	if err != nil {
		return nil, nil, err
	}
	set, err := builtin.DefaultSet(ids)
	if err != nil {
		return nil, nil, err
	}
	return store, set, nil
}

// highWaterRegister returns the largest register id used by e's front-IR,
// so CompileEntry's Allocator starts above it and pre-image/linearize's
// freshly minted registers never collide with ids the front-end already
// handed out.
func highWaterRegister(e compiler.EntryPoint) regalloc.Register {
	var max regalloc.Register
	for _, instr := range e.Instructions {
		for _, r := range instr.Regs {
			if r > max {
				max = r
			}
		}
	}
	return max
}

func runCompile(opts *rootOptions, inPath, outPath string) error {
	defines, err := defineOptions(opts.defines)
	if err != nil {
		return err
	}
	libraries := opts.libraries
	if len(libraries) == 0 {
		libraries = []string{"core"}
	}

	cfg := config.New(
		config.WithRootDir(opts.rootDir),
		config.WithFileSearchPath(opts.fileSearchPath...),
		config.WithLibraries(libraries...),
		config.WithOptLevel(opts.optLevel),
		config.WithGenerateDebug(opts.generateDebug),
		config.WithUnitTest(opts.unitTest),
		config.WithVerbose(verboseLevel(opts.verbose)),
		config.WithDefines(defines...),
		config.WithDebugRun(opts.debugRun),
	)

	res := resolver.NewFileResolver(cfg.RootDir, cfg.FileSearchPath)
	defs := defstore.New()
	store, coreSet, err := buildStore()
	if err != nil {
		return err
	}

	registry := map[string]*command.Set{coreSet.Name: coreSet}
	sets, err := compiler.ResolveLibraries(cfg, registry)
	if err != nil {
		return err
	}

	prog, err := loadFrontendProgram(inPath)
	if err != nil {
		return err
	}
	entries, err := toEntryPoints(prog)
	if err != nil {
		return err
	}

	cp := compiler.New(cfg, defs, store, res)

	units := make([]*compiler.Unit, 0, len(entries))
	for _, e := range entries {
		u, err := cp.CompileEntry(e, highWaterRegister(e))
		if err != nil {
			return err
		}
		units = append(units, u)
	}

	headers := map[string][]byte{}
	dynamicData := map[string]map[string][]byte{}
	program, err := cp.Emit(units, sets, headers, dynamicData)
	if err != nil {
		return err
	}

	data, err := program.Encode()
	if err != nil {
		return fmt.Errorf("dpc: encoding program: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("dpc: writing %s: %w", outPath, err)
	}
	return nil
}
