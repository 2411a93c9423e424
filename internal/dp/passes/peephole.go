package passes

import (
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// Peephole runs the final, narrow local cleanups:
//
//   - nil_append: Nil(r) followed by Append(r, s) with no intervening
//     mention of r becomes a single Copy(r, s); appending onto a known-
//     empty register is a copy. The pending-nil set is invalidated by any
//     other mention of r.
//   - linenum_remove: a run of consecutive LineNumber markers collapses to
//     just the last one; only the line number in effect when the next
//     real instruction executes matters.
func Peephole(c *ir.GenContext) error {
	instrs := c.Instructions()
	kept := make([]*ir.Instruction, 0, len(instrs))
	// nilAt maps a register known to hold nil to the index in kept of the
	// Nil instruction that made it so.
	nilAt := make(map[regalloc.Register]int)

	for _, instr := range instrs {
		if instr.Op == ir.Nil && len(instr.Regs) == 1 {
			kept = append(kept, instr.Clone())
			nilAt[instr.Regs[0]] = len(kept) - 1
			continue
		}
		if instr.Op == ir.Append && len(instr.Regs) == 2 {
			if at, ok := nilAt[instr.Regs[0]]; ok && instr.Regs[0] != instr.Regs[1] {
				kept[at] = nil // the Nil is subsumed by the Copy
				delete(nilAt, instr.Regs[0])
				delete(nilAt, instr.Regs[1])
				kept = append(kept, ir.New(ir.Copy, instr.Regs[0], instr.Regs[1]))
				continue
			}
		}
		for _, r := range instr.Regs {
			delete(nilAt, r)
		}
		kept = append(kept, instr.Clone())
	}

	var out []*ir.Instruction
	for _, instr := range kept {
		if instr == nil {
			continue
		}
		if instr.Op == ir.LineNumber && len(out) > 0 && out[len(out)-1].Op == ir.LineNumber {
			out[len(out)-1] = instr // keep the last marker in a run
			continue
		}
		out = append(out, instr)
	}

	for _, instr := range out {
		c.Add(instr)
	}
	c.PhaseFinished()
	return nil
}
