package passes

import (
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// Prune eliminates instructions whose defined registers are never read by
// any kept downstream instruction and which are not self-justifying. It
// walks the instruction stream backward accumulating a live-register set,
// the classic dead-code-elimination sweep: keep an instruction iff it is
// self-justifying or defines a needed register, then, only for kept
// instructions, mark their used registers needed in turn.
func Prune(c *ir.GenContext) error {
	instrs := c.Instructions()
	live := make(map[regalloc.Register]bool)
	var kept []*ir.Instruction

	for i := len(instrs) - 1; i >= 0; i-- {
		instr := instrs[i]
		keep := isSelfJustifying(instr)
		if !keep {
			for _, r := range defRegs(instr) {
				if live[r] {
					keep = true
					break
				}
			}
		}
		if !keep {
			continue
		}
		// A kept instruction kills the registers it writes without reading
		// before its own reads become live, so an earlier dead writer of
		// the same register is not retained on this one's account.
		for _, r := range outOnlyRegs(instr) {
			delete(live, r)
		}
		for _, r := range useRegs(instr) {
			live[r] = true
		}
		kept = append(kept, instr)
	}

	for i := len(kept) - 1; i >= 0; i-- {
		c.Add(kept[i].Clone())
	}
	c.PhaseFinished()
	return nil
}
