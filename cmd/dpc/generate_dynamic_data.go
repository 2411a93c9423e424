package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/compiler"
	"github.com/ensembl-dp/dpc/internal/dp/config"
)

func newGenerateDynamicDataCommand(opts *rootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "generate-dynamic-data",
		Short: "emit per-set dynamic-data (.ddd) files for every configured library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDynamicData(opts, outDir)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "directory to write .ddd files into")
	return cmd
}

// runGenerateDynamicData walks every registered CommandType bound into each
// configured library's set and, for those implementing
// command.DynamicDataGenerator, writes one ddd file per set id, named by
// replacing '/' with '-' in the set id.
func runGenerateDynamicData(opts *rootOptions, outDir string) error {
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
		config.WithLibraries(libraries...),
		config.WithDefines(defines...),
		config.WithVerbose(verboseLevel(opts.verbose)),
	)

	store, coreSet, err := buildStore()
	if err != nil {
		return err
	}
	registry := map[string]*command.Set{coreSet.Name: coreSet}

	sets, err := compiler.ResolveLibraries(cfg, registry)
	if err != nil {
		return err
	}

	for _, set := range sets {
		var blobs [][]byte
		for _, entry := range set.Entries {
			ct, err := store.Get(entry.Type)
			if err != nil {
				return err
			}
			gen, ok := ct.(command.DynamicDataGenerator)
			if !ok {
				continue
			}
			blob, err := gen.GenerateDynamicData(cfg)
			if err != nil {
				return fmt.Errorf("dpc: generating dynamic data for %s/%s: %w", set.Name, entry.Name, err)
			}
			blobs = append(blobs, blob)
		}
		if len(blobs) == 0 {
			continue
		}
		id := set.ID()
		name := strings.ReplaceAll(id.String(), "/", "-") + ".ddd"
		path := filepath.Join(outDir, name)
		var out []byte
		for _, b := range blobs {
			out = append(out, b...)
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("dpc: writing %s: %w", path, err)
		}
	}
	return nil
}

