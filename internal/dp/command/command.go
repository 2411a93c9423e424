// Package command implements the command/opcode registration layer: the
// emittable form bound to an instruction, and the append-only store that
// assigns each CommandType a small integer id.
package command

import (
	"github.com/ensembl-dp/dpc/internal/dp/config"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
)

// Command is the emittable form of one bound instruction: it knows how to
// serialize its arguments and how cheaply it executes. Folding behavior is
// opt-in via the Foldable interface rather than a default-then-panic method
// pair, since Go has no overridable default method implementations to fall
// back on.
type Command interface {
	// Serialize returns the argument values to emit after this command's
	// opcode, or an error if this instruction cannot be serialized (e.g.
	// a debug-only command with nothing to emit returns (nil, nil)).
	Serialize() ([]int64, error)
	// ExecutionTime estimates relative execution cost, used as a
	// scheduling hint.
	ExecutionTime() float64
}

// Foldable is implemented by a Command that can run at compile time. A
// CommandType whose schema declares Foldable but whose Command values
// don't implement this interface is rejected by CommandTypeStore.Register
// (see store.go).
type Foldable interface {
	Command
	SimplePreimage(ctx *InterpContext) (Prepare, error)
	PreimagePost(ctx *InterpContext) (Outcome, error)
}

// DynamicDataGenerator is implemented by a CommandType that contributes a
// dynamic-data blob to the linked program.
type DynamicDataGenerator interface {
	GenerateDynamicData(cfg *config.Config) ([]byte, error)
}

// DynamicDataConsumer is implemented by a CommandType that needs a
// previously generated dynamic-data blob loaded back (the interpreter side
// of generate-dynamic-data).
type DynamicDataConsumer interface {
	UseDynamicData(data []byte) error
}

// CommandType binds a CommandSchema to the logic that turns one matching
// ir.Instruction into a Command.
type CommandType interface {
	Schema() CommandSchema
	FromInstruction(instr *ir.Instruction) (Command, error)
}
