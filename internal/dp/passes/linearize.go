package passes

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/siglower"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

// vecExpansion binds a logical vector-valued register to the 2*depth+1
// physical registers its flat layout needs: one data register followed by
// (offset, length) pairs for each nesting layer, outermost last. Depth-0
// (scalar) registers have no expansion and are used as-is.
type vecExpansion struct {
	vr   siglower.VectorRegisters
	data regalloc.Register
	// off[i]/len[i] are layer i's offset/length registers, i = 0..depth-1.
	off, len []regalloc.Register
}

// Linearize converts nested-vector operations into flat, index-driven
// ones. Append and Length are already fixed, emittable opcodes; here they
// are only rewritten to operate on the physical slot registers. Filter,
// Extend, and Index are front-IR-only and are eliminated entirely,
// replaced by Copy/Append/Length sequences over those slots plus, for
// Filter and Index, Calls to the builtin core::filter/core::index commands.
func Linearize(c *ir.GenContext) error {
	l := &linearizer{ctx: c, expansions: make(map[regalloc.Register]*vecExpansion)}
	for _, instr := range c.Instructions() {
		if err := l.visit(instr); err != nil {
			return err
		}
	}
	c.PhaseFinished()
	return nil
}

type linearizer struct {
	ctx        *ir.GenContext
	expansions map[regalloc.Register]*vecExpansion
}

func (l *linearizer) expand(reg regalloc.Register) (*vecExpansion, error) {
	if e, ok := l.expansions[reg]; ok {
		return e, nil
	}
	typ, err := l.ctx.Types.Concrete(reg)
	if err != nil {
		return nil, err
	}
	if typ.Depth == 0 {
		return nil, nil
	}
	vr := siglower.VectorRegisters{Depth: typ.Depth, Base: typ.Base}
	e := &vecExpansion{
		vr:  vr,
		off: make([]regalloc.Register, typ.Depth),
		len: make([]regalloc.Register, typ.Depth),
	}
	e.data = l.ctx.NewRegister()
	l.ctx.Types.Add(e.data, typesys.BaseExpr(typ.Base))
	for i := 0; i < typ.Depth; i++ {
		e.off[i] = l.ctx.NewRegister()
		l.ctx.Types.Add(e.off[i], typesys.BaseExpr(typesys.Number))
		e.len[i] = l.ctx.NewRegister()
		l.ctx.Types.Add(e.len[i], typesys.BaseExpr(typesys.Number))
	}
	l.expansions[reg] = e
	return e, nil
}

// slots returns the physical registers for reg in layout order: data, then
// (offset, length) per layer outermost last.
func (e *vecExpansion) slots() []regalloc.Register {
	out := make([]regalloc.Register, 0, 2*e.vr.Depth+1)
	out = append(out, e.data)
	for i := 0; i < e.vr.Depth; i++ {
		out = append(out, e.off[i], e.len[i])
	}
	return out
}

func (l *linearizer) regsFor(reg regalloc.Register) ([]regalloc.Register, error) {
	e, err := l.expand(reg)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return []regalloc.Register{reg}, nil
	}
	return e.slots(), nil
}

func (l *linearizer) visit(instr *ir.Instruction) error {
	c := l.ctx
	switch instr.Op {
	case ir.Append, ir.Length:
		var newRegs []regalloc.Register
		for _, r := range instr.Regs {
			rs, err := l.regsFor(r)
			if err != nil {
				return err
			}
			newRegs = append(newRegs, rs...)
		}
		n := instr.Clone()
		n.Regs = newRegs
		c.Add(n)
		return nil

	case ir.Extend:
		return l.visitExtend(instr)
	case ir.Filter:
		return l.visitFilter(instr)
	case ir.Index:
		return l.visitIndex(instr)

	default:
		c.Add(instr.Clone())
		return nil
	}
}

// visitExtend eliminates Extend(dst, src): push src, a whole depth-(d-1)
// vector, as one new outermost element of dst (a depth-d vector). The new
// element's data is appended to the shared inner layers, and the outermost
// layer records one new (offset, length) boundary marking where it begins.
func (l *linearizer) visitExtend(instr *ir.Instruction) error {
	c := l.ctx
	dst, src := instr.Regs[0], instr.Regs[1]
	dstExp, err := l.expand(dst)
	if err != nil {
		return err
	}
	if dstExp == nil || dstExp.vr.Depth == 0 {
		return fmt.Errorf("passes: linearize: Extend target %s is not a vector", dst)
	}

	var srcSlots []regalloc.Register
	if dstExp.vr.Depth == 1 {
		// Element type is a scalar Base; src is that one scalar register.
		srcSlots = []regalloc.Register{src}
	} else {
		srcExp, err := l.expand(src)
		if err != nil {
			return err
		}
		if srcExp == nil {
			return fmt.Errorf("passes: linearize: Extend source %s shape mismatch with %s", src, dst)
		}
		srcSlots = srcExp.slots()
	}

	// dst's slots up to but excluding its outermost (offset, length) pair
	// line up 1:1 with src's full slot tuple (src is one layer shallower
	// than dst): appending src's data/inner layers onto the matching
	// shared layer accumulates the new element's contents.
	innerTargets := dstExp.slots()[:len(srcSlots)]
	innerTarget := innerTargets[0]

	// Record the new element's starting offset (current length of the
	// layer it lands in) before appending its data.
	startOffset := c.NewRegister()
	c.Types.Add(startOffset, typesys.BaseExpr(typesys.Number))
	c.Add(ir.New(ir.Length, startOffset, innerTarget))

	for i, s := range srcSlots {
		c.Add(ir.New(ir.Append, innerTargets[i], s))
	}

	elementLen := c.NewRegister()
	c.Types.Add(elementLen, typesys.BaseExpr(typesys.Number))
	c.Add(ir.New(ir.Length, elementLen, innerTarget))

	outerLayer := dstExp.vr.Depth - 1
	c.Add(ir.New(ir.Append, dstExp.off[outerLayer], startOffset))
	c.Add(ir.New(ir.Append, dstExp.len[outerLayer], elementLen))
	return nil
}

// visitFilter eliminates Filter(dst, src, mask): dst becomes the elements
// of src whose corresponding mask entry is true. Selection only ever
// applies at the outermost container level, so the outermost layer's
// slots (and, for a depth-1 vector, the data itself) are filtered with a
// Call to the builtin "core::filter" command — the same synthesized-
// builtin convention Index and VariantTest elimination use — while the
// layers below it are shared unchanged.
func (l *linearizer) visitFilter(instr *ir.Instruction) error {
	c := l.ctx
	dst, src, mask := instr.Regs[0], instr.Regs[1], instr.Regs[2]
	srcExp, err := l.expand(src)
	if err != nil {
		return err
	}
	if srcExp == nil {
		return fmt.Errorf("passes: linearize: Filter source %s is not a vector", src)
	}
	dstExp, err := l.expand(dst)
	if err != nil {
		return err
	}
	if dstExp == nil {
		return fmt.Errorf("passes: linearize: Filter target %s is not a vector", dst)
	}
	if dstExp.vr.Depth != srcExp.vr.Depth {
		return fmt.Errorf("passes: linearize: Filter target %s shape mismatch with %s", dst, src)
	}

	// The mask is itself a vector of booleans; selection reads its flat
	// data layer.
	maskReg := mask
	if maskExp, err := l.expand(mask); err != nil {
		return err
	} else if maskExp != nil {
		maskReg = maskExp.data
	}

	filterInto := func(dstReg, srcReg regalloc.Register) {
		call := ir.New(ir.Call, dstReg, srcReg, maskReg)
		call.Ident = "core::filter"
		call.Flows = []siglower.DataFlow{siglower.FlowOut, siglower.FlowIn, siglower.FlowIn}
		c.Add(call)
	}

	// Dropping outermost elements leaves the layers below untouched;
	// their contents are shared as-is.
	outer := dstExp.vr.Depth - 1
	for i := 0; i < outer; i++ {
		c.Add(ir.New(ir.Copy, dstExp.off[i], srcExp.off[i]))
		c.Add(ir.New(ir.Copy, dstExp.len[i], srcExp.len[i]))
	}
	if dstExp.vr.Depth == 1 {
		filterInto(dstExp.data, srcExp.data)
	} else {
		c.Add(ir.New(ir.Copy, dstExp.data, srcExp.data))
	}
	filterInto(dstExp.off[outer], srcExp.off[outer])
	filterInto(dstExp.len[outer], srcExp.len[outer])
	return nil
}

// visitIndex eliminates Index(dst, src, idxReg): dst becomes the element at
// position idxReg of src's outermost layer. Index has no fixed, emittable
// counterpart among the built-in supertypes, so each addressed slot is
// fetched with a Call to the builtin "core::index" command, the same
// convention VariantTest's elimination uses for its equality test.
func (l *linearizer) visitIndex(instr *ir.Instruction) error {
	c := l.ctx
	dst, src, idx := instr.Regs[0], instr.Regs[1], instr.Regs[2]
	srcExp, err := l.expand(src)
	if err != nil {
		return err
	}
	if srcExp == nil {
		return fmt.Errorf("passes: linearize: Index source %s is not a vector", src)
	}

	indexInto := func(dstReg, dataReg regalloc.Register) {
		call := ir.New(ir.Call, dstReg, dataReg, idx)
		call.Ident = "core::index"
		call.Flows = []siglower.DataFlow{siglower.FlowOut, siglower.FlowIn, siglower.FlowIn}
		c.Add(call)
	}

	if srcExp.vr.Depth == 1 {
		indexInto(dst, srcExp.data)
		return nil
	}
	dstExp, err := l.expand(dst)
	if err != nil {
		return err
	}
	if dstExp == nil {
		return fmt.Errorf("passes: linearize: Index target %s shape mismatch with %s", dst, src)
	}
	indexInto(dstExp.data, srcExp.data)
	for i := range dstExp.off {
		indexInto(dstExp.off[i], srcExp.off[i])
		indexInto(dstExp.len[i], srcExp.len[i])
	}
	return nil
}
