package ir

import (
	"strings"

	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

// GenContext owns the current instruction stream, the per-register type
// model, and the register allocator for one compilation. Each pass reads
// GenContext.Instructions (the input list), calls Add to build the output
// list, then calls PhaseFinished to swap input/output. This dual-buffer
// discipline lets a pass build its replacement stream incrementally
// without mutating the one it is still reading.
type GenContext struct {
	Defs  *defstore.Store
	Types *typesys.Model
	Regs  *regalloc.Allocator

	input  []*Instruction
	output []*Instruction

	anonNext int
}

// NewGenContext returns a GenContext ready to receive an initial
// instruction stream from the surface front-end. regStart lets
// pre-image-phase allocation start above the front-end's high-water mark,
// so the two phases never hand out colliding register ids.
func NewGenContext(defs *defstore.Store, types *typesys.Model, regStart regalloc.Register) *GenContext {
	return &GenContext{
		Defs:  defs,
		Types: types,
		Regs:  regalloc.New(regStart),
	}
}

// SetInstructions loads the initial instruction stream (from the surface
// front-end) as the current input list.
func (c *GenContext) SetInstructions(instrs []*Instruction) {
	c.input = instrs
}

// Instructions returns the current (input) instruction stream, in order.
func (c *GenContext) Instructions() []*Instruction {
	return c.input
}

// Add appends instr to the output list being built by the current pass.
func (c *GenContext) Add(instr *Instruction) {
	c.output = append(c.output, instr)
}

// PhaseFinished swaps the output list into the input list and clears the
// output buffer, ready for the next pass.
func (c *GenContext) PhaseFinished() {
	c.input = c.output
	c.output = nil
}

// NewRegister allocates a fresh register and returns it, for passes (e.g.
// linearize, the pre-image evaluator) that need to mint intermediate
// storage.
func (c *GenContext) NewRegister() regalloc.Register {
	return c.Regs.Allocate()
}

// NextAnon returns a fresh id for an anonymous complex-path segment, scoped
// to this GenContext so ids from two independent compilations never
// collide and tests never depend on global state.
func (c *GenContext) NextAnon() int {
	id := c.anonNext
	c.anonNext++
	return id
}

// Format returns a debug string of the current instruction stream.
func (c *GenContext) Format() string {
	var sb strings.Builder
	for _, instr := range c.input {
		sb.WriteString(instr.Format())
		sb.WriteByte('\n')
	}
	return sb.String()
}
