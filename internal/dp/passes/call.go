package passes

import (
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/siglower"
)

// Call specializes every Proc/Operator instruction into a fixed Call
// instruction carrying a RegisterSignature built by lowering each
// argument's concrete member type. Proc arguments keep their declared
// per-argument modes; Operator arguments are always (Out, In, In, ...)
// since an operator's first register is conventionally its result.
func Call(c *ir.GenContext) error {
	for _, instr := range c.Instructions() {
		switch instr.Op {
		case ir.Proc:
			call, err := specializeProc(c, instr)
			if err != nil {
				return err
			}
			c.Add(call)

		case ir.Operator:
			call, err := specializeOperator(c, instr)
			if err != nil {
				return err
			}
			c.Add(call)

		default:
			c.Add(instr.Clone())
		}
	}
	c.PhaseFinished()
	return nil
}

func specializeProc(c *ir.GenContext, instr *ir.Instruction) (*ir.Instruction, error) {
	rs := siglower.NewRegisterSignature()
	flows := make([]siglower.DataFlow, len(instr.Regs))
	for i, reg := range instr.Regs {
		mode := ModeIn
		if i < len(instr.Modes) {
			mode = instr.Modes[i]
		}
		flow := flowFromMode(mode)
		flows[i] = flow

		typ, err := c.Types.Concrete(reg)
		if err != nil {
			return nil, err
		}
		ft, err := siglower.MakeFullType(c.Defs, mode, typ)
		if err != nil {
			return nil, err
		}
		rs.Add(mode, flow, ft)
	}

	call := ir.New(ir.Call, instr.Regs...)
	call.Ident = instr.Ident
	call.IsProc = true
	call.Sig = rs
	call.Flows = flows
	return call, nil
}

func specializeOperator(c *ir.GenContext, instr *ir.Instruction) (*ir.Instruction, error) {
	rs := siglower.NewRegisterSignature()
	flows := make([]siglower.DataFlow, len(instr.Regs))
	for i, reg := range instr.Regs {
		mode := ModeIn
		if i == 0 {
			mode = ModeOut
		}
		flow := flowFromMode(mode)
		flows[i] = flow

		typ, err := c.Types.Concrete(reg)
		if err != nil {
			return nil, err
		}
		ft, err := siglower.MakeFullType(c.Defs, mode, typ)
		if err != nil {
			return nil, err
		}
		rs.Add(mode, flow, ft)
	}

	call := ir.New(ir.Call, instr.Regs...)
	call.Ident = instr.Ident
	call.IsProc = false
	call.Sig = rs
	call.Flows = flows
	return call, nil
}

// ModeIn/ModeOut are re-exported aliases so pass files in this package read
// naturally without a siglower-qualified mode on every line.
const (
	ModeIn    = siglower.ModeIn
	ModeOut   = siglower.ModeOut
	ModeInOut = siglower.ModeInOut
)

func flowFromMode(m siglower.MemberMode) siglower.DataFlow {
	switch m {
	case siglower.ModeOut:
		return siglower.FlowOut
	case siglower.ModeInOut:
		return siglower.FlowInOut
	default:
		return siglower.FlowIn
	}
}
