// Package resolver implements the document resolver: the pass pipeline's
// sole collaborator for compile-time file reads, consumed by the
// pre-image evaluator's load_file-style commands.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Resolver resolves a path key (a source-level string naming a compile-time
// file) to its contents. Resolution is synchronous; a failure aborts the
// compile.
type Resolver interface {
	Resolve(pathKey string) (string, error)
}

// Document is one resolved compile-time file: its contents plus an opaque
// per-compile handle id used to key the emitted debug-info table's
// file_handle_id.
//
// Handle ids are minted from a per-resolver uuid-backed Handles allocator
// rather than a mutable package global, so two resolvers never hand out
// colliding ids.
type Document struct {
	Path     string
	Contents string
	Handle   string
}

// FileResolver resolves path keys against an os-backed root directory and a
// set of templated file_search_path patterns, each containing exactly one
// '*' that path keys are substituted into.
type FileResolver struct {
	RootDir     string
	SearchPaths []string

	handles *Handles
}

// NewFileResolver returns a FileResolver rooted at rootDir, trying each of
// searchPaths in order until one substitution yields a readable file.
func NewFileResolver(rootDir string, searchPaths []string) *FileResolver {
	return &FileResolver{RootDir: rootDir, SearchPaths: searchPaths, handles: NewHandles()}
}

// Resolve implements Resolver.
func (r *FileResolver) Resolve(pathKey string) (string, error) {
	doc, err := r.ResolveDocument(pathKey)
	if err != nil {
		return "", err
	}
	return doc.Contents, nil
}

// ResolveDocument resolves pathKey and additionally returns its per-compile
// debug handle.
func (r *FileResolver) ResolveDocument(pathKey string) (Document, error) {
	candidates, err := expandSearchPaths(r.SearchPaths, pathKey)
	if err != nil {
		return Document{}, err
	}
	if len(candidates) == 0 {
		candidates = []string{pathKey}
	}
	for _, candidate := range candidates {
		full := candidate
		if !filepath.IsAbs(full) {
			full = filepath.Join(r.RootDir, candidate)
		}
		data, err := os.ReadFile(full)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Document{}, fmt.Errorf("resolver: reading %s: %w", full, err)
		}
		return Document{Path: full, Contents: string(data), Handle: r.handles.For(full)}, nil
	}
	return Document{}, fmt.Errorf("resolver: %q not found under %q (searched %d pattern(s))", pathKey, r.RootDir, len(r.SearchPaths))
}

// expandSearchPaths substitutes key for the single '*' in each templated
// pattern, erroring on a pattern with zero or more than one wildcard.
func expandSearchPaths(patterns []string, key string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		n := strings.Count(p, "*")
		if n != 1 {
			return nil, fmt.Errorf("resolver: file_search_path pattern %q must contain exactly one '*', got %d", p, n)
		}
		out = append(out, strings.Replace(p, "*", key, 1))
	}
	return out, nil
}

// Handles mints opaque per-compile document handle ids, scoped to one
// FileResolver instance rather than a process-global counter.
type Handles struct {
	byPath map[string]string
}

// NewHandles returns an empty Handles allocator.
func NewHandles() *Handles {
	return &Handles{byPath: make(map[string]string)}
}

// For returns path's handle, minting one with a fresh uuid on first use and
// returning the same id on every subsequent call for the same path.
func (h *Handles) For(path string) string {
	if id, ok := h.byPath[path]; ok {
		return id
	}
	id := uuid.NewString()
	h.byPath[path] = id
	return id
}

// StaticResolver is an in-memory Resolver for tests, mapping path keys
// directly to contents without touching the filesystem.
type StaticResolver struct {
	Files   map[string]string
	handles *Handles
}

// NewStaticResolver returns a StaticResolver serving files.
func NewStaticResolver(files map[string]string) *StaticResolver {
	return &StaticResolver{Files: files, handles: NewHandles()}
}

// Resolve implements Resolver.
func (r *StaticResolver) Resolve(pathKey string) (string, error) {
	data, ok := r.Files[pathKey]
	if !ok {
		return "", fmt.Errorf("resolver: %q not found in static resolver", pathKey)
	}
	return data, nil
}

// ResolveDocument mirrors FileResolver.ResolveDocument for tests that need a
// stable handle id.
func (r *StaticResolver) ResolveDocument(pathKey string) (Document, error) {
	data, err := r.Resolve(pathKey)
	if err != nil {
		return Document{}, err
	}
	return Document{Path: pathKey, Contents: data, Handle: r.handles.For(pathKey)}, nil
}
