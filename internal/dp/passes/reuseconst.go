package passes

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// ReuseConst is common-subexpression elimination restricted to constant
// producers: when two Const/NumberConst instructions would materialize the
// identical literal, every later one is dropped and its destination
// register substituted for the first's everywhere it is used, in a single
// forward pass. A constant's value never changes, so the first occurrence
// dominates every later identical one in program order.
func ReuseConst(c *ir.GenContext) error {
	seen := make(map[string]regalloc.Register)
	subst := make(map[regalloc.Register]regalloc.Register)

	resolve := func(r regalloc.Register) regalloc.Register {
		for {
			s, ok := subst[r]
			if !ok || s == r {
				return r
			}
			r = s
		}
	}

	for _, instr := range c.Instructions() {
		if (instr.Op == ir.Const || instr.Op == ir.NumberConst) && len(instr.Regs) == 1 {
			key := constKey(instr)
			if first, ok := seen[key]; ok {
				subst[instr.Regs[0]] = first
				continue
			}
			seen[key] = instr.Regs[0]
		}

		n := instr.Clone()
		for i, r := range n.Regs {
			n.Regs[i] = resolve(r)
		}
		c.Add(n)
	}
	c.PhaseFinished()
	return nil
}

func constKey(instr *ir.Instruction) string {
	if instr.Op == ir.NumberConst {
		return fmt.Sprintf("num:%v", instr.ConstNumber)
	}
	return fmt.Sprintf("const:%v", instr.ConstInts)
}
