package builtin

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// ExtendID is the library identifier core::extend binds to: the library
// surface for extend(z, a, b) (concatenate b onto a into z), reachable as
// an ordinary Proc call. The front-IR Extend supertype that linearize.go
// eliminates is a different, two-register operation: Extend(dst, src)
// pushes src as one new outermost element of dst, and does not
// concatenate two vectors into a third.
var ExtendID = command.Identifier{Module: "core", Name: "extend"}

// ExtendType is the CommandType for core::extend. Its Command's preimage
// always unconditionally Replaces itself with primitive vector
// instructions, regardless of whether its operands are compile-time
// constant: the canonical example of a Foldable whose SimplePreimage
// always returns Replace. This reference implementation operates at depth
// 1 (z, a, b are already-flat data registers); it does not concatenate
// nested vectors.
type ExtendType struct{}

// Schema implements command.CommandType.
func (ExtendType) Schema() command.CommandSchema {
	return command.CommandSchema{Trigger: command.ByCommand(ExtendID), Values: 3, Foldable: true}
}

// FromInstruction implements command.CommandType.
func (ExtendType) FromInstruction(instr *ir.Instruction) (command.Command, error) {
	if len(instr.Regs) != 3 {
		return nil, fmt.Errorf("builtin: core::extend: expected 3 registers, got %d", len(instr.Regs))
	}
	return &extendCommand{z: instr.Regs[0], a: instr.Regs[1], b: instr.Regs[2]}, nil
}

type extendCommand struct {
	z, a, b regalloc.Register
}

// Serialize implements command.Command.
func (c *extendCommand) Serialize() ([]int64, error) {
	return []int64{int64(c.z), int64(c.a), int64(c.b)}, nil
}

// ExecutionTime implements command.Command.
func (c *extendCommand) ExecutionTime() float64 { return 3 }

// SimplePreimage implements command.Foldable: always asks to run, since
// this command's preimage is a structural rewrite rather than a
// value-dependent fold.
func (c *extendCommand) SimplePreimage(*command.InterpContext) (command.Prepare, error) {
	return command.ReplacePrepare(), nil
}

// PreimagePost implements command.Foldable, splicing in the Copy/Append
// sequence that copies a into z then appends b.
func (c *extendCommand) PreimagePost(*command.InterpContext) (command.Outcome, error) {
	return command.ReplaceOutcome(
		ir.New(ir.Copy, c.z, c.a),
		ir.New(ir.Append, c.z, c.b),
	), nil
}
