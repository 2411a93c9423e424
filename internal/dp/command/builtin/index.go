package builtin

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// IndexID is the library identifier core::index binds to: the synthesized
// lookup linearize.go's Index elimination emits, since indexing has no
// fixed emittable supertype of its own.
var IndexID = command.Identifier{Module: "core", Name: "index"}

// IndexType is the CommandType for core::index: out = data[idx].
type IndexType struct{}

// Schema implements command.CommandType.
func (IndexType) Schema() command.CommandSchema {
	return command.CommandSchema{Trigger: command.ByCommand(IndexID), Values: 3, Foldable: true}
}

// FromInstruction implements command.CommandType.
func (IndexType) FromInstruction(instr *ir.Instruction) (command.Command, error) {
	out, in, err := outIn(instr)
	if err != nil {
		return nil, fmt.Errorf("builtin: core::index: %w", err)
	}
	if len(in) != 2 {
		return nil, fmt.Errorf("builtin: core::index: expected 2 inputs, got %d", len(in))
	}
	return &indexCommand{out: out, data: in[0], idx: in[1]}, nil
}

type indexCommand struct {
	out, data, idx regalloc.Register
}

// Serialize implements command.Command.
func (c *indexCommand) Serialize() ([]int64, error) {
	return []int64{int64(c.out), int64(c.data), int64(c.idx)}, nil
}

// ExecutionTime implements command.Command.
func (c *indexCommand) ExecutionTime() float64 { return 1 }

// SimplePreimage implements command.Foldable: folds only when the index is
// a known Number constant and the data register is a known constant vector
// of ints (an already-folded offset/length layer).
func (c *indexCommand) SimplePreimage(ctx *command.InterpContext) (command.Prepare, error) {
	if !ctx.Valid(c.data) || !ctx.Valid(c.idx) {
		return command.Keep(), nil
	}
	dv, _ := ctx.Get(c.data)
	iv, ok := ctx.Get(c.idx)
	if dv.Kind != command.ConstInts || !ok || iv.Kind != command.ConstNumber {
		return command.Keep(), nil
	}
	return command.ReplacePrepare(), nil
}

// PreimagePost implements command.Foldable.
func (c *indexCommand) PreimagePost(ctx *command.InterpContext) (command.Outcome, error) {
	dv, _ := ctx.Get(c.data)
	iv, _ := ctx.Get(c.idx)
	i := int(iv.Number)
	if i < 0 || i >= len(dv.Ints) {
		return command.Outcome{}, fmt.Errorf("builtin: core::index: index %d out of range (len %d)", i, len(dv.Ints))
	}
	ctx.Set(c.out, command.ConstValue{Kind: command.ConstNumber, Number: float64(dv.Ints[i])})
	return command.Constant(c.out), nil
}
