// Package preimage implements the pre-image partial evaluator: it executes
// commands whose inputs are compile-time constants, replacing them with
// constant-emitting instructions.
//
// The runtime interpreter lives in a separate artifact, so a Foldable
// command's own PreimagePost performs the computation an interpreter
// counterpart would otherwise be asked to execute first; see
// command.Foldable.
package preimage

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/dperr"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// Evaluator runs the pre-image protocol over one GenContext's instruction
// stream.
type Evaluator struct {
	Store  *command.CommandTypeStore
	Interp *command.InterpContext

	// sizes records every size hint emitted by a Keep/Skip result, for
	// sized-container optimizations downstream.
	sizes map[regalloc.Register]int

	// steps records each executed command when Config.DebugRun is set,
	// one formatted instruction per fold, in execution order.
	steps []string
}

// New returns an Evaluator bound to store and interp.
func New(store *command.CommandTypeStore, interp *command.InterpContext) *Evaluator {
	return &Evaluator{Store: store, Interp: interp, sizes: make(map[regalloc.Register]int)}
}

// SizeHint returns the predictable size recorded for reg, if any.
func (e *Evaluator) SizeHint(reg regalloc.Register) (int, bool) {
	n, ok := e.sizes[reg]
	return n, ok
}

// Steps returns the single-step execution trace accumulated under
// Config.DebugRun, in execution order. Empty unless DebugRun was set.
func (e *Evaluator) Steps() []string {
	return e.steps
}

// noteStep appends instr to the single-step trace when DebugRun is on.
func (e *Evaluator) noteStep(instr *ir.Instruction) {
	if e.Interp.Config != nil && e.Interp.Config.DebugRun {
		e.steps = append(e.steps, instr.Format())
	}
}

// Run walks c's current instruction stream, folding every Call whose bound
// command declares itself Foldable and whose SimplePreimage asks to run,
// and tracking constant-register validity for instructions with a known,
// fixed meaning (NumberConst, Const, Copy, LineNumber). Run is idempotent:
// a register already folded to a constant stays recorded across repeated
// calls, so a second pass over an already-folded stream makes no further
// changes.
func (e *Evaluator) Run(c *ir.GenContext) error {
	for _, instr := range c.Instructions() {
		if err := e.visit(c, instr); err != nil {
			return err
		}
	}
	c.PhaseFinished()
	return nil
}

func (e *Evaluator) visit(c *ir.GenContext, instr *ir.Instruction) error {
	switch instr.Op {
	case ir.NumberConst:
		if len(instr.Regs) == 1 {
			e.Interp.Set(instr.Regs[0], command.ConstValue{Kind: command.ConstNumber, Number: instr.ConstNumber})
		}
		c.Add(instr.Clone())
		return nil

	case ir.Const:
		if len(instr.Regs) == 1 {
			e.Interp.Set(instr.Regs[0], command.ConstValue{Kind: command.ConstInts, Ints: append([]int64(nil), instr.ConstInts...)})
		}
		c.Add(instr.Clone())
		return nil

	case ir.LineNumber:
		e.Interp.NoteLocation(instr.File, instr.Line)
		c.Add(instr.Clone())
		return nil

	case ir.Copy:
		if len(instr.Regs) == 2 {
			if v, ok := e.Interp.Get(instr.Regs[1]); ok {
				e.Interp.Set(instr.Regs[0], v)
			} else {
				e.Interp.Invalidate(instr.Regs[0])
			}
		}
		c.Add(instr.Clone())
		return nil

	case ir.Call:
		return e.visitCall(c, instr)

	default:
		for _, r := range defRegs(instr) {
			e.Interp.Invalidate(r)
		}
		c.Add(instr.Clone())
		return nil
	}
}

// defRegs returns the registers instr writes, for constant invalidation:
// the first register of Nil/Append/Length/Alias, and every register of any
// other instruction (including Call). This is a separate, simpler rule
// than internal/dp/passes' own defRegs, which serves prune liveness and
// reads Call flows.
func defRegs(instr *ir.Instruction) []regalloc.Register {
	switch instr.Op {
	case ir.Nil, ir.Append, ir.Length, ir.Alias:
		if len(instr.Regs) == 0 {
			return nil
		}
		return instr.Regs[:1]
	default:
		return instr.Regs
	}
}

func (e *Evaluator) visitCall(c *ir.GenContext, instr *ir.Instruction) error {
	trigger := command.ByCommand(command.ParseIdentifier(instr.Ident))
	id, ok := e.Store.ByTrigger(trigger)
	if !ok {
		for _, r := range defRegs(instr) {
			e.Interp.Invalidate(r)
		}
		c.Add(instr.Clone())
		return nil
	}
	ct, err := e.Store.Get(id)
	if err != nil {
		return dperr.Wrap(dperr.Internal, err, "preimage: resolving command type for %s", instr.Ident)
	}
	cmd, err := ct.FromInstruction(instr)
	if err != nil {
		return dperr.Wrap(dperr.PreImageError, err, "preimage: building command for %s", instr.Ident).WithLocation(e.Interp.File, e.Interp.Line)
	}
	foldable, ok := cmd.(command.Foldable)
	if !ok || !ct.Schema().Foldable {
		for _, r := range defRegs(instr) {
			e.Interp.Invalidate(r)
		}
		c.Add(instr.Clone())
		return nil
	}

	prepare, err := foldable.SimplePreimage(e.Interp)
	if err != nil {
		return dperr.Wrap(dperr.PreImageError, err, "preimage: simple_preimage for %s", instr.Ident).WithLocation(e.Interp.File, e.Interp.Line)
	}
	if prepare.Kind == command.PrepareKeep {
		for _, h := range prepare.Sizes {
			e.sizes[h.Reg] = h.Size
		}
		for _, r := range defRegs(instr) {
			e.Interp.Invalidate(r)
		}
		c.Add(instr.Clone())
		return nil
	}

	outcome, err := foldable.PreimagePost(e.Interp)
	if err != nil {
		return dperr.Wrap(dperr.PreImageError, err, "preimage: preimage_post for %s", instr.Ident).WithLocation(e.Interp.File, e.Interp.Line)
	}
	e.noteStep(instr)
	switch outcome.Kind {
	case command.OutcomeSkip:
		for _, h := range outcome.Sizes {
			e.sizes[h.Reg] = h.Size
		}
		c.Add(instr.Clone())
		return nil

	case command.OutcomeConstant:
		for _, r := range outcome.Regs {
			v, ok := e.Interp.Get(r)
			if !ok {
				return dperr.Internalf("preimage-constant-valid", "%s: command reported %s constant without setting it", instr.Ident, r)
			}
			load, err := emitConstLoad(r, v)
			if err != nil {
				return dperr.Wrap(dperr.PreImageError, err, "preimage: materializing constant for %s", instr.Ident)
			}
			c.Add(load)
		}
		return nil

	case command.OutcomeReplace:
		for _, r := range defRegs(instr) {
			e.Interp.Invalidate(r)
		}
		for _, n := range outcome.Instructions {
			c.Add(n)
		}
		return nil

	default:
		return dperr.Internalf("preimage-outcome-kind", "unknown OutcomeKind %d for %s", outcome.Kind, instr.Ident)
	}
}

// emitConstLoad builds the Const-family instruction that materializes v
// into reg.
func emitConstLoad(reg regalloc.Register, v command.ConstValue) (*ir.Instruction, error) {
	switch v.Kind {
	case command.ConstNumber:
		load := ir.New(ir.NumberConst, reg)
		load.ConstNumber = v.Number
		return load, nil
	case command.ConstBoolean:
		load := ir.New(ir.NumberConst, reg)
		if v.Bool {
			load.ConstNumber = 1
		}
		return load, nil
	case command.ConstInts:
		load := ir.New(ir.Const, reg)
		load.ConstInts = append([]int64(nil), v.Ints...)
		return load, nil
	default:
		return nil, fmt.Errorf("preimage: no Const-family instruction for %v-typed register %s", v.Kind, reg)
	}
}
