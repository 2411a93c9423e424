// Package config implements the compiler's recognized compile options,
// passed through the compiler as a pointer to a plain options struct rather
// than a builder.
package config

import "github.com/ensembl-dp/dpc/internal/dp/dplog"

// Define is one (name, value) compile-time define.
type Define struct {
	Name  string
	Value string
}

// Config is the recognized set of compile-time options.
type Config struct {
	RootDir        string
	FileSearchPath []string // templated patterns containing '*'
	Libraries      []string // command-set names to link
	OptLevel       int      // 0..3, controls which peephole passes run
	GenerateDebug  bool     // retain LineNumber instructions
	UnitTest       bool     // relax some error policies for test harnesses
	Verbose        dplog.Verbose
	Defines        []Define
	DebugRun       bool // single-step pre-image
}

// Option configures a Config, following the functional-option pattern.
type Option func(*Config)

// New returns a Config with the documented defaults, with any options
// applied in order.
func New(opts ...Option) *Config {
	c := &Config{
		OptLevel: 2,
		Verbose:  dplog.Quiet,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithRootDir sets the root directory compile-time file reads are relative
// to.
func WithRootDir(dir string) Option {
	return func(c *Config) { c.RootDir = dir }
}

// WithFileSearchPath sets the templated search patterns the resolver walks
// when looking up a compile-time file.
func WithFileSearchPath(patterns ...string) Option {
	return func(c *Config) { c.FileSearchPath = patterns }
}

// WithLibraries sets the command-set names to link into the final program.
func WithLibraries(names ...string) Option {
	return func(c *Config) { c.Libraries = names }
}

// WithOptLevel sets which peephole passes run (0..3).
func WithOptLevel(level int) Option {
	return func(c *Config) { c.OptLevel = level }
}

// WithGenerateDebug retains LineNumber instructions through assign-regs so
// the emitted program carries a debug-info table.
func WithGenerateDebug(v bool) Option {
	return func(c *Config) { c.GenerateDebug = v }
}

// WithUnitTest relaxes some error policies for test harnesses driving the
// compiler directly rather than through cmd/dpc.
func WithUnitTest(v bool) Option {
	return func(c *Config) { c.UnitTest = v }
}

// WithVerbose sets the 0..3 diagnostic verbosity.
func WithVerbose(v dplog.Verbose) Option {
	return func(c *Config) { c.Verbose = v }
}

// WithDefines sets the compile-time (name, value) defines available to
// pre-image commands that consult them (e.g. a `dp::define` builtin).
func WithDefines(defines ...Define) Option {
	return func(c *Config) { c.Defines = defines }
}

// WithDebugRun enables single-step pre-image execution.
func WithDebugRun(v bool) Option {
	return func(c *Config) { c.DebugRun = v }
}

// Define looks up a compile-time define by name.
func (c *Config) Define(name string) (string, bool) {
	for _, d := range c.Defines {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}
