// Package compiler ties the defstore, type model, IR passes, pre-image
// evaluator, and command registry into one ahead-of-time compile. It is the
// single place that runs the pipeline in its fixed order and hands the
// result to internal/dp/link for final CBOR emission.
//
// Each entry point runs the same three-stage shape: a frontend lowering
// step (call/simplify/linearize), an optimization step
// (dealias/prune/cow/reuseconst/reusedead), and a backend lowering step
// (assign-regs/peephole), with compiler state reset between entry points so
// one unit's passes never see another's instructions.
package compiler

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/config"
	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/dperr"
	"github.com/ensembl-dp/dpc/internal/dp/dplog"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/link"
	"github.com/ensembl-dp/dpc/internal/dp/passes"
	"github.com/ensembl-dp/dpc/internal/dp/preimage"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/resolver"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

// EntryPoint is one compilable unit consumed from the surface front-end: a
// name the emitted program exposes it under, its typed front-IR instruction
// stream, and the per-register type model that stream was built against.
type EntryPoint struct {
	Name         string
	Instructions []*ir.Instruction
	Types        *typesys.Model
}

// Compiler runs the mid-end pipeline over a shared defstore, resolver, and
// command registry.
type Compiler struct {
	Config   *config.Config
	Defs     *defstore.Store
	Store    *command.CommandTypeStore
	Resolver resolver.Resolver
	Log      *logrus.Entry
}

// New returns a Compiler. If cfg.Verbose is Quiet the returned Compiler logs
// nothing.
func New(cfg *config.Config, defs *defstore.Store, store *command.CommandTypeStore, res resolver.Resolver) *Compiler {
	log := dplog.New("compiler", cfg.Verbose)
	return &Compiler{Config: cfg, Defs: defs, Store: store, Resolver: res, Log: log}
}

// documentResolver is satisfied by resolver.FileResolver and
// resolver.StaticResolver; the compiler uses it, when available, to mint a
// debug file handle per distinct LineNumber.File value for the emitted
// debug table. With a plain Resolver without it, each file's raw path is
// used as its handle instead.
type documentResolver interface {
	resolver.Resolver
	ResolveDocument(pathKey string) (resolver.Document, error)
}

// Unit is one entry point's pipeline result: its name and its final,
// register-assigned instruction stream.
type Unit struct {
	Name         string
	Instructions []*ir.Instruction
}

// CompileEntry runs the full pass pipeline, in its fixed order, over one
// entry point, interleaving the pre-image evaluator after simplify and
// after linearize: the two points where a pass first introduces new Call
// instructions (simplify's synthesized core::eq_number calls for variant
// tests, and linearize's synthesized core::index/core::filter calls) that
// could themselves already be compile-time constant.
func (cp *Compiler) CompileEntry(e EntryPoint, regStart regalloc.Register) (*Unit, error) {
	c := ir.NewGenContext(cp.Defs, e.Types, regStart)
	c.SetInstructions(e.Instructions)

	eval := preimage.New(cp.Store, command.NewInterpContext(cp.Resolver, cp.Config))

	run := func(name string, fn func(*ir.GenContext) error) error {
		if err := fn(c); err != nil {
			// Keep an already-classified error's kind; only an unclassified
			// failure inside a pass is an Internal error.
			kind := dperr.Internal
			if k, ok := dperr.KindOf(err); ok {
				kind = k
			}
			return dperr.Wrap(kind, err, "entry %q: pass %s", e.Name, name)
		}
		cp.Log.WithField("entry", e.Name).Tracef("%s: %s", name, c.Format())
		return nil
	}

	if err := run("call", passes.Call); err != nil {
		return nil, err
	}
	if err := run("simplify", passes.Simplify); err != nil {
		return nil, err
	}
	if err := run("preimage/post-simplify", eval.Run); err != nil {
		return nil, err
	}
	if err := run("linearize", passes.Linearize); err != nil {
		return nil, err
	}
	if err := run("preimage/post-linearize", eval.Run); err != nil {
		return nil, err
	}
	if err := run("bindcalls", cp.bindCallSchemas); err != nil {
		return nil, err
	}
	if err := run("dealias", passes.DeAlias); err != nil {
		return nil, err
	}
	if err := run("prune", passes.Prune); err != nil {
		return nil, err
	}
	if err := run("cow", passes.CopyOnWrite); err != nil {
		return nil, err
	}
	if err := run("reuseconst", passes.ReuseConst); err != nil {
		return nil, err
	}
	if err := run("reusedead", passes.ReuseDead); err != nil {
		return nil, err
	}
	if err := run("assignregs", passes.AssignRegs); err != nil {
		return nil, err
	}
	// opt_level 0 disables the peephole cleanups; every other level runs them.
	if cp.Config.OptLevel > 0 {
		if err := run("peephole", passes.Peephole); err != nil {
			return nil, err
		}
	}

	return &Unit{Name: e.Name, Instructions: c.Instructions()}, nil
}

// bindCallSchemas stamps every Call instruction with the prune-relevant
// facts of the command it binds to (SelfJustifying), so the passes that
// follow never consult the registry themselves. A Call whose identifier is
// not registered is a NameResolution error, except under Config.UnitTest,
// where pass-level harnesses drive the pipeline with synthetic idents and
// the unbound Call is left unmarked.
func (cp *Compiler) bindCallSchemas(c *ir.GenContext) error {
	for _, instr := range c.Instructions() {
		n := instr.Clone()
		if n.Op == ir.Call {
			trigger := command.ByCommand(command.ParseIdentifier(n.Ident))
			id, ok := cp.Store.ByTrigger(trigger)
			if ok {
				ct, err := cp.Store.Get(id)
				if err != nil {
					return err
				}
				n.SelfJustifying = ct.Schema().SelfJustifying
			} else if !cp.Config.UnitTest {
				return dperr.New(dperr.NameResolution, "no command registered for %s", trigger)
			}
		}
		c.Add(n)
	}
	c.PhaseFinished()
	return nil
}

// Link concatenates sets into a Linker, recalculates opcode bases, verifies
// every set's trace, and returns the ready-to-emit Linker.
func (cp *Compiler) Link(sets []*command.Set) (*link.Linker, error) {
	l := link.NewLinker(cp.Store)
	for _, s := range sets {
		if err := l.AddSet(s); err != nil {
			return nil, err
		}
	}
	if err := l.Recalculate(); err != nil {
		return nil, err
	}
	if err := l.CheckAllTraces(); err != nil {
		return nil, err
	}
	return l, nil
}

// Emit runs Link over sets and then builds the final Program from units'
// finished instruction streams, resolving a debug file-handle table when
// Config.GenerateDebug is set and cp.Resolver supports it.
func (cp *Compiler) Emit(units []*Unit, sets []*command.Set, headers map[string][]byte, dynamicData map[string]map[string][]byte) (*link.Program, error) {
	l, err := cp.Link(sets)
	if err != nil {
		return nil, err
	}

	entryPoints := make(map[string][]*ir.Instruction, len(units))
	for _, u := range units {
		entryPoints[u.Name] = u.Instructions
	}

	var debugFiles map[string]string
	if cp.Config.GenerateDebug {
		debugFiles = cp.resolveDebugHandles(units)
	}

	return link.Build(l, entryPoints, debugFiles, dynamicData, headers)
}

// resolveDebugHandles collects every distinct LineNumber.File value across
// units and resolves it to a debug file-handle id, falling back to the raw
// path string when cp.Resolver does not implement documentResolver.
func (cp *Compiler) resolveDebugHandles(units []*Unit) map[string]string {
	files := make(map[string]struct{})
	for _, u := range units {
		for _, instr := range u.Instructions {
			if instr.Op == ir.LineNumber && instr.File != "" {
				files[instr.File] = struct{}{}
			}
		}
	}

	out := make(map[string]string, len(files))
	docRes, ok := cp.Resolver.(documentResolver)
	for f := range files {
		if ok {
			if doc, err := docRes.ResolveDocument(f); err == nil {
				out[f] = doc.Handle
				continue
			}
			cp.Log.WithField("file", f).Warn("compiler: could not mint debug handle, falling back to raw path")
		}
		out[f] = f
	}
	return out
}

// ResolveLibraries looks up each configured library name in registry,
// erroring with NameResolution on the first miss.
func ResolveLibraries(cfg *config.Config, registry map[string]*command.Set) ([]*command.Set, error) {
	sets := make([]*command.Set, 0, len(cfg.Libraries))
	for _, name := range cfg.Libraries {
		s, ok := registry[name]
		if !ok {
			return nil, dperr.New(dperr.NameResolution, "unknown command-set library %q", name)
		}
		sets = append(sets, s)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("compiler: no libraries configured")
	}
	return sets, nil
}
