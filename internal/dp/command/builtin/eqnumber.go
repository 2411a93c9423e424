package builtin

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// EqNumberID is the library identifier core::eq_number binds to: the
// discriminator comparison VariantTest elimination synthesizes in
// simplify.go.
var EqNumberID = command.Identifier{Module: "core", Name: "eq_number"}

// EqNumberType is the CommandType for core::eq_number: out = (a == b) as a
// Boolean.
type EqNumberType struct{}

// Schema implements command.CommandType.
func (EqNumberType) Schema() command.CommandSchema {
	return command.CommandSchema{Trigger: command.ByCommand(EqNumberID), Values: 3, Foldable: true}
}

// FromInstruction implements command.CommandType.
func (EqNumberType) FromInstruction(instr *ir.Instruction) (command.Command, error) {
	out, in, err := outIn(instr)
	if err != nil {
		return nil, fmt.Errorf("builtin: core::eq_number: %w", err)
	}
	if len(in) != 2 {
		return nil, fmt.Errorf("builtin: core::eq_number: expected 2 inputs, got %d", len(in))
	}
	return &eqNumberCommand{out: out, a: in[0], b: in[1]}, nil
}

type eqNumberCommand struct {
	out, a, b regalloc.Register
}

// Serialize implements command.Command.
func (c *eqNumberCommand) Serialize() ([]int64, error) {
	return []int64{int64(c.out), int64(c.a), int64(c.b)}, nil
}

// ExecutionTime implements command.Command.
func (c *eqNumberCommand) ExecutionTime() float64 { return 1 }

// SimplePreimage implements command.Foldable.
func (c *eqNumberCommand) SimplePreimage(ctx *command.InterpContext) (command.Prepare, error) {
	if !ctx.Valid(c.a) || !ctx.Valid(c.b) {
		return command.Keep(), nil
	}
	av, aok := ctx.Get(c.a)
	bv, bok := ctx.Get(c.b)
	if !aok || !bok || av.Kind != command.ConstNumber || bv.Kind != command.ConstNumber {
		return command.Keep(), nil
	}
	return command.ReplacePrepare(), nil
}

// PreimagePost implements command.Foldable.
func (c *eqNumberCommand) PreimagePost(ctx *command.InterpContext) (command.Outcome, error) {
	av, _ := ctx.Get(c.a)
	bv, _ := ctx.Get(c.b)
	ctx.Set(c.out, command.ConstValue{Kind: command.ConstBoolean, Bool: av.Number == bv.Number})
	return command.Constant(c.out), nil
}
