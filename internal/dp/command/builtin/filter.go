package builtin

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// FilterID is the library identifier core::filter binds to: the masked
// selection linearize.go's Filter elimination emits for the outermost
// layer of a filtered vector.
var FilterID = command.Identifier{Module: "core", Name: "filter"}

// FilterType is the CommandType for core::filter: out = the elements of
// in whose corresponding mask entry is true. Selection depends on the
// runtime mask value, so this command never folds.
type FilterType struct{}

// Schema implements command.CommandType.
func (FilterType) Schema() command.CommandSchema {
	return command.CommandSchema{Trigger: command.ByCommand(FilterID), Values: 3}
}

// FromInstruction implements command.CommandType.
func (FilterType) FromInstruction(instr *ir.Instruction) (command.Command, error) {
	if len(instr.Regs) != 3 {
		return nil, fmt.Errorf("builtin: core::filter: expected 3 registers, got %d", len(instr.Regs))
	}
	return &filterCommand{out: instr.Regs[0], in: instr.Regs[1], mask: instr.Regs[2]}, nil
}

type filterCommand struct {
	out, in, mask regalloc.Register
}

// Serialize implements command.Command.
func (c *filterCommand) Serialize() ([]int64, error) {
	return []int64{int64(c.out), int64(c.in), int64(c.mask)}, nil
}

// ExecutionTime implements command.Command.
func (c *filterCommand) ExecutionTime() float64 { return 2 }
