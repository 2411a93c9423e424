package passes

import (
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// ReuseDead collapses a Copy(dst, src) whose src is never mentioned again
// after that point: dst is never read as anything but a synonym for the
// value src already holds, so every later reference to dst is rewritten to
// src and the Copy itself is dropped. Iterated to fixpoint, since
// collapsing one copy can make its dst, now resolved to src, the
// dead-after-this-point source of a later copy in a chain. A single
// relabeling pass would miss that follow-on opportunity; repeating it
// until no Copy qualifies catches every chain regardless of length.
func ReuseDead(c *ir.GenContext) error {
	instrs := c.Instructions()

	for {
		// Last mention, not last read: a later write to src also disqualifies
		// the collapse, since relabeling dst to src would pick up that write.
		lastMention := make(map[regalloc.Register]int)
		for i, instr := range instrs {
			for _, r := range instr.Regs {
				lastMention[r] = i
			}
		}

		subst := make(map[regalloc.Register]regalloc.Register)
		resolve := func(r regalloc.Register) regalloc.Register {
			for {
				s, ok := subst[r]
				if !ok {
					return r
				}
				r = s
			}
		}

		var next []*ir.Instruction
		changed := false
		for i, instr := range instrs {
			if instr.Op == ir.Copy && len(instr.Regs) == 2 {
				dst, src := instr.Regs[0], instr.Regs[1]
				if last, used := lastMention[src]; !used || last <= i {
					subst[dst] = src
					changed = true
					continue
				}
			}
			n := instr.Clone()
			for idx, r := range n.Regs {
				n.Regs[idx] = resolve(r)
			}
			next = append(next, n)
		}

		instrs = next
		if !changed {
			break
		}
	}

	for _, instr := range instrs {
		c.Add(instr)
	}
	c.PhaseFinished()
	return nil
}
