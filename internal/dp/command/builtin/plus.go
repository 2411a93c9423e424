package builtin

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// PlusID is the library identifier core::add binds to: the command a
// source-level '+' operator call lowers to.
var PlusID = command.Identifier{Module: "core", Name: "add"}

// PlusType is the CommandType for core::add: out = in0 + in1.
type PlusType struct{}

// Schema implements command.CommandType.
func (PlusType) Schema() command.CommandSchema {
	return command.CommandSchema{Trigger: command.ByCommand(PlusID), Values: 3, Foldable: true}
}

// FromInstruction implements command.CommandType.
func (PlusType) FromInstruction(instr *ir.Instruction) (command.Command, error) {
	out, in, err := outIn(instr)
	if err != nil {
		return nil, fmt.Errorf("builtin: core::add: %w", err)
	}
	if len(in) != 2 {
		return nil, fmt.Errorf("builtin: core::add: expected 2 inputs, got %d", len(in))
	}
	return &plusCommand{out: out, a: in[0], b: in[1]}, nil
}

type plusCommand struct {
	out, a, b regalloc.Register
}

// Serialize implements command.Command.
func (p *plusCommand) Serialize() ([]int64, error) {
	return []int64{int64(p.out), int64(p.a), int64(p.b)}, nil
}

// ExecutionTime implements command.Command.
func (p *plusCommand) ExecutionTime() float64 { return 1 }

// SimplePreimage implements command.Foldable: fold iff both operands are
// known Number constants.
func (p *plusCommand) SimplePreimage(ctx *command.InterpContext) (command.Prepare, error) {
	if !ctx.Valid(p.a) || !ctx.Valid(p.b) {
		return command.Keep(), nil
	}
	av, ok := ctx.Get(p.a)
	if !ok || av.Kind != command.ConstNumber {
		return command.Keep(), nil
	}
	bv, ok := ctx.Get(p.b)
	if !ok || bv.Kind != command.ConstNumber {
		return command.Keep(), nil
	}
	return command.ReplacePrepare(), nil
}

// PreimagePost implements command.Foldable.
func (p *plusCommand) PreimagePost(ctx *command.InterpContext) (command.Outcome, error) {
	av, _ := ctx.Get(p.a)
	bv, _ := ctx.Get(p.b)
	ctx.Set(p.out, command.ConstValue{Kind: command.ConstNumber, Number: av.Number + bv.Number})
	return command.Constant(p.out), nil
}
