package passes

import (
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/siglower"
)

// defRegs returns the registers instr defines (writes). For the small set
// of instructions known to be pure, single-output functions of their
// remaining operands, only the first register is a def. A Call's defs are
// the registers its recorded data flows mark Out or InOut. Every other
// supertype is treated conservatively as defining (and using, see useRegs)
// every register it mentions, which is always safe even where it is not
// precise.
func defRegs(instr *ir.Instruction) []regalloc.Register {
	switch instr.Op {
	case ir.Const, ir.NumberConst, ir.Nil, ir.Copy, ir.Length:
		if len(instr.Regs) == 0 {
			return nil
		}
		return instr.Regs[:1]
	case ir.Call:
		return callRegs(instr, siglower.FlowOut, siglower.FlowInOut)
	default:
		return instr.Regs
	}
}

// useRegs returns the registers instr reads.
func useRegs(instr *ir.Instruction) []regalloc.Register {
	switch instr.Op {
	case ir.Const, ir.NumberConst, ir.Nil:
		return nil
	case ir.Copy, ir.Length:
		if len(instr.Regs) <= 1 {
			return nil
		}
		return instr.Regs[1:]
	case ir.Call:
		return callRegs(instr, siglower.FlowIn, siglower.FlowInOut)
	default:
		return instr.Regs
	}
}

// outOnlyRegs returns the registers instr writes without reading: the set a
// backward liveness walk kills. A Call without recorded flows kills
// nothing, which is the conservative answer.
func outOnlyRegs(instr *ir.Instruction) []regalloc.Register {
	switch instr.Op {
	case ir.Const, ir.NumberConst, ir.Nil, ir.Copy, ir.Length:
		if len(instr.Regs) == 0 {
			return nil
		}
		return instr.Regs[:1]
	case ir.Call:
		if len(instr.Flows) != len(instr.Regs) {
			return nil
		}
		return callRegs(instr, siglower.FlowOut)
	default:
		return nil
	}
}

// callRegs selects the registers of a Call whose data flow is one of want.
// A Call whose flows were never recorded (some synthesized calls carry
// none) is treated conservatively: every register matches.
func callRegs(instr *ir.Instruction, want ...siglower.DataFlow) []regalloc.Register {
	if len(instr.Flows) != len(instr.Regs) {
		return instr.Regs
	}
	var out []regalloc.Register
	for i, f := range instr.Flows {
		for _, w := range want {
			if f == w {
				out = append(out, instr.Regs[i])
				break
			}
		}
	}
	return out
}

// isSelfJustifying reports whether instr must be kept by prune regardless
// of whether any register it defines is later read. LineNumber is always
// self-justifying; a Call is self-justifying iff the command bound to it
// declared itself so (recorded on the instruction by the command registry,
// not re-derived here).
func isSelfJustifying(instr *ir.Instruction) bool {
	if instr.Op.SelfJustifying() {
		return true
	}
	return instr.Op == ir.Call && instr.SelfJustifying
}
