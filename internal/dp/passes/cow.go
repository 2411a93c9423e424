package passes

import (
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// CopyOnWrite protects aliased data from destructive in-place updates by
// keeping a copy materialized wherever eliding it would let a mutation
// reach a value that is still being read elsewhere. Linearize and
// Simplify already emit an explicit Copy everywhere two registers might
// end up sharing storage; this pass elides exactly the Copy instructions
// where eliding is safe (both destination and source are write-once and
// never the target of an in-place Append) and substitutes every later
// read of that destination with the copy's source. Any Copy whose
// destination or source is later mutated in place is deliberately left in
// the stream, since keeping it materialized is what stops the Append from
// corrupting the other end, which is still live. Net effect: no in-place
// mutation can ever observe or
// corrupt a value through a register that still aliases a live reader.
func CopyOnWrite(c *ir.GenContext) error {
	instrs := c.Instructions()

	defCount := make(map[regalloc.Register]int)
	mutatedInPlace := make(map[regalloc.Register]bool)

	for _, instr := range instrs {
		for _, r := range defRegs(instr) {
			defCount[r]++
		}
		if instr.Op == ir.Append && len(instr.Regs) > 0 {
			mutatedInPlace[instr.Regs[0]] = true
		}
	}

	subst := make(map[regalloc.Register]regalloc.Register)
	drop := make(map[*ir.Instruction]bool)
	for _, instr := range instrs {
		if instr.Op != ir.Copy || len(instr.Regs) != 2 {
			continue
		}
		dst, src := instr.Regs[0], instr.Regs[1]
		// Both ends must stay stable: a later write to dst means dst is not
		// a pure synonym, and a later mutation of src means dst was the
		// snapshot shielding readers from it.
		if defCount[dst] == 1 && !mutatedInPlace[dst] &&
			defCount[src] == 1 && !mutatedInPlace[src] {
			subst[dst] = src
			drop[instr] = true
		}
	}

	resolve := func(r regalloc.Register) regalloc.Register {
		for {
			s, ok := subst[r]
			if !ok || s == r {
				return r
			}
			r = s
		}
	}

	for _, instr := range instrs {
		if drop[instr] {
			continue
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
