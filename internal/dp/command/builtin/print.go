package builtin

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// PrintID is the library identifier core::print binds to: a self-justifying
// stream write that prune always keeps, unlike a pure arithmetic command
// such as Plus whose result can be discarded when unused.
var PrintID = command.Identifier{Module: "core", Name: "print"}

// PrintType is the CommandType for core::print: writes in0 to the output
// stream. Self-justifying; never folds (runtime side effect, not a
// compile-time-visible result).
type PrintType struct{}

// Schema implements command.CommandType.
func (PrintType) Schema() command.CommandSchema {
	return command.CommandSchema{Trigger: command.ByCommand(PrintID), Values: 1, SelfJustifying: true}
}

// FromInstruction implements command.CommandType.
func (PrintType) FromInstruction(instr *ir.Instruction) (command.Command, error) {
	if len(instr.Regs) != 1 {
		return nil, fmt.Errorf("builtin: core::print: expected 1 register, got %d", len(instr.Regs))
	}
	return &printCommand{arg: instr.Regs[0]}, nil
}

type printCommand struct {
	arg regalloc.Register
}

// Serialize implements command.Command.
func (p *printCommand) Serialize() ([]int64, error) {
	return []int64{int64(p.arg)}, nil
}

// ExecutionTime implements command.Command.
func (p *printCommand) ExecutionTime() float64 { return 2 }
