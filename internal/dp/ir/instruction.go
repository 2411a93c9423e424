// Package ir implements the instruction IR and the Generation Context that
// owns the current instruction stream for one compilation.
//
// Since Go has no tagged union, Instruction is a flattened struct for every
// opcode: each field's meaning depends on which Supertype the instruction
// carries, rather than each opcode getting its own Go type.
package ir

import (
	"fmt"
	"strings"

	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/siglower"
)

// Supertype is the coarse instruction kind. Fixed, emittable supertypes
// are bound to commands by the Command Registry; front-IR-only supertypes
// are eliminated before any command is built.
type Supertype uint16

const (
	// Fixed, emittable supertypes.
	Const Supertype = iota
	NumberConst
	Copy
	Alias
	Nil
	Append
	Length
	LineNumber
	Call

	// Front-IR-only supertypes, eliminated by call/simplify/linearize before
	// emission.
	Proc
	Operator
	StructCons
	EnumCons
	FieldAccessor
	VariantTest
	Filter
	Extend
	Index
)

// String implements fmt.Stringer.
func (s Supertype) String() string {
	switch s {
	case Const:
		return "Const"
	case NumberConst:
		return "NumberConst"
	case Copy:
		return "Copy"
	case Alias:
		return "Alias"
	case Nil:
		return "Nil"
	case Append:
		return "Append"
	case Length:
		return "Length"
	case LineNumber:
		return "LineNumber"
	case Call:
		return "Call"
	case Proc:
		return "Proc"
	case Operator:
		return "Operator"
	case StructCons:
		return "StructCons"
	case EnumCons:
		return "EnumCons"
	case FieldAccessor:
		return "FieldAccessor"
	case VariantTest:
		return "VariantTest"
	case Filter:
		return "Filter"
	case Extend:
		return "Extend"
	case Index:
		return "Index"
	default:
		return fmt.Sprintf("Supertype(%d)", uint16(s))
	}
}

// SelfJustifying reports whether this supertype is self-justifying for
// prune: side-effecting instructions (stream writes, asserts, stores) are
// always justified regardless of whether any out register is read
// downstream. Call instructions are self-justifying iff the bound command
// declares itself so (see command.CommandSchema.SelfJustifying); that is recorded
// on the Instruction itself via the SelfJustifying field so prune does not
// need to consult the command registry.
func (s Supertype) SelfJustifying() bool {
	switch s {
	case LineNumber:
		return true
	default:
		return false
	}
}

// Instruction is (supertype, variant-payload, register-vector). It lives
// inside a GenContext's input or output list during a pass.
type Instruction struct {
	Op   Supertype
	Regs []regalloc.Register

	// Call / Proc / Operator payload.
	Ident          string
	IsProc         bool
	Sig            *siglower.RegisterSignature
	Flows          []siglower.DataFlow
	Modes          []siglower.MemberMode
	SelfJustifying bool // only meaningful when Op == Call

	// Const / NumberConst payload.
	ConstInts   []int64
	ConstNumber float64

	// StructCons / EnumCons / FieldAccessor / VariantTest payload.
	DefKey  defstore.Key
	Field   string
	Variant string

	// LineNumber payload.
	File string
	Line int
}

// New returns an Instruction with the given supertype and register vector.
func New(op Supertype, regs ...regalloc.Register) *Instruction {
	return &Instruction{Op: op, Regs: append([]regalloc.Register(nil), regs...)}
}

// Clone returns a shallow copy of instr with its own Regs slice, suitable
// for appending to a different instruction stream. Every pass that rewrites
// rather than mutates in place needs this to avoid aliasing the Regs
// backing array between the old and new streams.
func (i *Instruction) Clone() *Instruction {
	c := *i
	c.Regs = append([]regalloc.Register(nil), i.Regs...)
	return &c
}

// Format returns a debug string for this instruction.
func (i *Instruction) Format() string {
	var sb strings.Builder
	sb.WriteString(i.Op.String())
	if i.Ident != "" {
		sb.WriteByte('(')
		sb.WriteString(i.Ident)
		sb.WriteByte(')')
	}
	sb.WriteByte(' ')
	regs := make([]string, len(i.Regs))
	for idx, r := range i.Regs {
		regs[idx] = r.String()
	}
	sb.WriteString(strings.Join(regs, ", "))
	return sb.String()
}
