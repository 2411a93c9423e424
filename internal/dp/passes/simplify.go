// Package passes implements the compiler's mid-end pass pipeline: call
// specialization, simplify, linearize, de-alias, prune, copy-on-write,
// reuse-const, reuse-dead, register assignment, and the peephole passes.
// Every pass follows the same discipline: read ctx.Instructions() (the
// input list a Generation Context is holding), call ctx.Add to build the
// output list, then call ctx.PhaseFinished to swap buffers.
package passes

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/siglower"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

// nominalExpansion records the leaf registers a nominal (struct/enum)
// register was flattened into, and the FullType describing their shape.
// Every leaf remains a single register representing a (possibly
// vector-nested) Base value; splitting a leaf's own vector layers into
// physical data/offset/length registers is Linearize's job, not
// Simplify's, so that Simplify's output still mentions only Base scalars
// and Vec nesting, never a nominal type.
type nominalExpansion struct {
	ft   *siglower.FullType
	regs []regalloc.Register
}

// Simplify eliminates struct/enum constructors, field accessors, and
// variant tests, rewriting every register of nominal type into the tuple
// of registers implied by signature-lowering its type.
func Simplify(c *ir.GenContext) error {
	s := &simplifier{ctx: c, expansions: make(map[regalloc.Register]*nominalExpansion)}
	for _, instr := range c.Instructions() {
		if err := s.visit(instr); err != nil {
			return err
		}
	}
	c.PhaseFinished()
	return nil
}

type simplifier struct {
	ctx        *ir.GenContext
	expansions map[regalloc.Register]*nominalExpansion
}

// expand lazily computes (and memoizes) reg's leaf-register expansion if
// its concrete type is nominal; returns nil if reg is not a nominal type.
func (s *simplifier) expand(reg regalloc.Register) (*nominalExpansion, error) {
	if e, ok := s.expansions[reg]; ok {
		return e, nil
	}
	typ, err := s.ctx.Types.Concrete(reg)
	if err != nil {
		return nil, err
	}
	if !typ.Base.IsNominal() {
		return nil, nil
	}
	ft, err := siglower.MakeFullType(s.ctx.Defs, siglower.ModeIn, typ)
	if err != nil {
		return nil, err
	}
	regs := make([]regalloc.Register, len(ft.Entries))
	for i, e := range ft.Entries {
		nr := s.ctx.NewRegister()
		leaf := typesys.Member{Depth: e.VR.Depth, Base: e.VR.Base}
		s.ctx.Types.Add(nr, leaf.ToExpr())
		regs[i] = nr
	}
	exp := &nominalExpansion{ft: ft, regs: regs}
	s.expansions[reg] = exp
	return exp, nil
}

// regsFor returns the registers reg expands to: its leaf tuple if nominal,
// or the single register unchanged otherwise.
func (s *simplifier) regsFor(reg regalloc.Register) ([]regalloc.Register, error) {
	exp, err := s.expand(reg)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return []regalloc.Register{reg}, nil
	}
	return exp.regs, nil
}

func (s *simplifier) regsForAll(regs []regalloc.Register) ([]regalloc.Register, error) {
	var out []regalloc.Register
	for _, r := range regs {
		rs, err := s.regsFor(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

func (s *simplifier) visit(instr *ir.Instruction) error {
	c := s.ctx
	switch instr.Op {
	case ir.StructCons:
		return s.visitStructCons(instr)
	case ir.EnumCons:
		return s.visitEnumCons(instr)
	case ir.FieldAccessor:
		return s.visitFieldAccessor(instr)
	case ir.VariantTest:
		return s.visitVariantTest(instr)

	case ir.Copy, ir.Alias:
		dstExp, err := s.expand(instr.Regs[0])
		if err != nil {
			return err
		}
		srcExp, err := s.expand(instr.Regs[1])
		if err != nil {
			return err
		}
		if dstExp == nil && srcExp == nil {
			c.Add(instr.Clone())
			return nil
		}
		dstRegs, err := s.regsFor(instr.Regs[0])
		if err != nil {
			return err
		}
		srcRegs, err := s.regsFor(instr.Regs[1])
		if err != nil {
			return err
		}
		if len(dstRegs) != len(srcRegs) {
			return fmt.Errorf("passes: simplify: %s shape mismatch (%d vs %d leaves)", instr.Op, len(dstRegs), len(srcRegs))
		}
		for i := range dstRegs {
			c.Add(ir.New(instr.Op, dstRegs[i], srcRegs[i]))
		}
		return nil

	case ir.Nil:
		regs, err := s.regsFor(instr.Regs[0])
		if err != nil {
			return err
		}
		for _, r := range regs {
			c.Add(ir.New(ir.Nil, r))
		}
		return nil

	case ir.Call:
		newRegs, err := s.regsForAll(instr.Regs)
		if err != nil {
			return err
		}
		n := instr.Clone()
		n.Regs = newRegs
		c.Add(n)
		return nil

	default:
		c.Add(instr.Clone())
		return nil
	}
}

func (s *simplifier) visitStructCons(instr *ir.Instruction) error {
	c := s.ctx
	dst := instr.Regs[0]
	exp, err := s.expand(dst)
	if err != nil {
		return err
	}
	if exp == nil {
		return fmt.Errorf("passes: simplify: StructCons target %s has no struct type", dst)
	}
	cursor := 0
	for _, argReg := range instr.Regs[1:] {
		argRegs, err := s.regsFor(argReg)
		if err != nil {
			return err
		}
		for _, ar := range argRegs {
			if cursor >= len(exp.regs) {
				return fmt.Errorf("passes: simplify: StructCons %s has too many argument leaves", instr.DefKey)
			}
			c.Add(ir.New(ir.Copy, exp.regs[cursor], ar))
			cursor++
		}
	}
	if cursor != len(exp.regs) {
		return fmt.Errorf("passes: simplify: StructCons %s left %d leaves unset", instr.DefKey, len(exp.regs)-cursor)
	}
	return nil
}

func (s *simplifier) visitEnumCons(instr *ir.Instruction) error {
	c := s.ctx
	dst, payload := instr.Regs[0], instr.Regs[1]
	exp, err := s.expand(dst)
	if err != nil {
		return err
	}
	if exp == nil {
		return fmt.Errorf("passes: simplify: EnumCons target %s has no enum type", dst)
	}
	def, ok := c.Defs.Enum(instr.DefKey)
	if !ok {
		return fmt.Errorf("passes: simplify: unknown enum %s", instr.DefKey)
	}
	variantIdx := -1
	for i, v := range def.Variants {
		if v.Name == instr.Variant {
			variantIdx = i
			break
		}
	}
	if variantIdx < 0 {
		return fmt.Errorf("passes: simplify: unknown variant %q of %s", instr.Variant, instr.DefKey)
	}

	// exp.ft.Entries[0] is always the discriminator (siglower.walk emits it
	// first); the remaining entries are each variant's payload leaves, in
	// variant order, back-to-back.
	disc := exp.regs[0]
	dc := ir.New(ir.NumberConst)
	dc.Regs = []regalloc.Register{disc}
	dc.ConstNumber = float64(variantIdx)
	c.Add(dc)

	payloadRegs, err := s.regsFor(payload)
	if err != nil {
		return err
	}

	cursor := 1
	for i, v := range def.Variants {
		count, err := variantLeafCount(c.Defs, v)
		if err != nil {
			return err
		}
		if i == variantIdx {
			if count != len(payloadRegs) {
				return fmt.Errorf("passes: simplify: EnumCons payload shape mismatch for variant %q", v.Name)
			}
			for j := 0; j < count; j++ {
				c.Add(ir.New(ir.Copy, exp.regs[cursor+j], payloadRegs[j]))
			}
		} else {
			for j := 0; j < count; j++ {
				c.Add(ir.New(ir.Nil, exp.regs[cursor+j]))
			}
		}
		cursor += count
	}
	return nil
}

func variantLeafCount(defs *defstore.Store, v defstore.Field) (int, error) {
	ft, err := siglower.MakeFullType(defs, siglower.ModeIn, v.Type)
	if err != nil {
		return 0, err
	}
	return len(ft.Entries), nil
}

func (s *simplifier) visitFieldAccessor(instr *ir.Instruction) error {
	dst, src := instr.Regs[0], instr.Regs[1]
	srcExp, err := s.expand(src)
	if err != nil {
		return err
	}
	if srcExp == nil {
		return fmt.Errorf("passes: simplify: FieldAccessor source %s has no struct type", src)
	}
	prefix := siglower.RootPath.Field(instr.Field)
	sub := &nominalExpansion{ft: &siglower.FullType{}}
	for i, e := range srcExp.ft.Entries {
		if hasPrefix(e.Path, prefix) {
			sub.ft.Entries = append(sub.ft.Entries, siglower.FullTypeEntry{Path: e.Path, VR: e.VR})
			sub.regs = append(sub.regs, srcExp.regs[i])
		}
	}
	if len(sub.regs) == 0 {
		return fmt.Errorf("passes: simplify: field %q not found", instr.Field)
	}
	s.expansions[dst] = sub
	return nil
}

func (s *simplifier) visitVariantTest(instr *ir.Instruction) error {
	c := s.ctx
	dst, src := instr.Regs[0], instr.Regs[1]
	srcExp, err := s.expand(src)
	if err != nil {
		return err
	}
	if srcExp == nil {
		return fmt.Errorf("passes: simplify: VariantTest source %s has no enum type", src)
	}
	def, ok := c.Defs.Enum(srcBaseKey(c, src))
	if !ok {
		return fmt.Errorf("passes: simplify: unknown enum for %s", src)
	}
	variantIdx := -1
	for i, v := range def.Variants {
		if v.Name == instr.Variant {
			variantIdx = i
			break
		}
	}
	if variantIdx < 0 {
		return fmt.Errorf("passes: simplify: unknown variant %q", instr.Variant)
	}

	tmp := c.NewRegister()
	c.Types.Add(tmp, typesys.BaseExpr(typesys.Number))
	dc := ir.New(ir.NumberConst, tmp)
	dc.ConstNumber = float64(variantIdx)
	c.Add(dc)

	eq := ir.New(ir.Call, dst, srcExp.regs[0], tmp)
	eq.Ident = "core::eq_number"
	eq.IsProc = false
	eq.Flows = []siglower.DataFlow{siglower.FlowOut, siglower.FlowIn, siglower.FlowIn}
	c.Add(eq)
	return nil
}

func srcBaseKey(c *ir.GenContext, reg regalloc.Register) defstore.Key {
	typ, err := c.Types.Concrete(reg)
	if err != nil {
		return defstore.Key{}
	}
	return defstore.Key{Module: moduleOfName(typ.Base.Name), Name: nameOfName(typ.Base.Name)}
}

func moduleOfName(qualified string) string {
	mod, _ := splitQualified(qualified)
	return mod
}

func nameOfName(qualified string) string {
	_, name := splitQualified(qualified)
	return name
}

func splitQualified(qualified string) (module, name string) {
	for i := len(qualified) - 1; i >= 1; i-- {
		if qualified[i-1] == ':' && qualified[i] == ':' {
			return qualified[:i-1], qualified[i+1:]
		}
	}
	return "", qualified
}

// hasPrefix reports whether path is prefix itself or lies strictly below
// it, i.e. the match is followed by a segment separator. A raw string
// prefix is not enough: a field named "x" is a byte-prefix of a sibling
// named "xy".
func hasPrefix(path, prefix siglower.ComplexPath) bool {
	ps, pp := string(path), string(prefix)
	if len(ps) < len(pp) || ps[:len(pp)] != pp {
		return false
	}
	return len(ps) == len(pp) || ps[len(pp)] == '/'
}
