package command

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/ir"
)

// TriggerKind distinguishes the two ways a CommandType is bound to
// instructions: a built-in instruction supertype the compiler emits
// directly, or a library identifier a command set registers.
type TriggerKind uint8

const (
	TriggerInstruction TriggerKind = iota
	TriggerCommand
)

// CommandTrigger is either Instruction(supertype) or Command(identifier).
// Like ir.Instruction, this is a flattened struct rather than a tagged
// union, since Go has no sum types; Kind selects which field is meaningful.
type CommandTrigger struct {
	Kind  TriggerKind
	Instr ir.Supertype
	Ident Identifier
}

// ByInstruction returns a trigger bound to a fixed, emittable supertype.
func ByInstruction(s ir.Supertype) CommandTrigger {
	return CommandTrigger{Kind: TriggerInstruction, Instr: s}
}

// ByCommand returns a trigger bound to a library identifier.
func ByCommand(id Identifier) CommandTrigger {
	return CommandTrigger{Kind: TriggerCommand, Ident: id}
}

// String implements fmt.Stringer.
func (t CommandTrigger) String() string {
	switch t.Kind {
	case TriggerInstruction:
		return fmt.Sprintf("builtin(%s)", t.Instr)
	default:
		return t.Ident.String()
	}
}
