package command

import (
	"github.com/ensembl-dp/dpc/internal/dp/config"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/resolver"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

// ConstKind is the closed set of compile-time constant value shapes a
// register can hold once it is pre-image valid.
type ConstKind uint8

const (
	ConstNumber ConstKind = iota
	ConstString
	ConstBytes
	ConstBoolean
	// ConstInts holds a flat []int64, used for an offset or length layer
	// of a linearized vector register once that layer is itself known at
	// compile time.
	ConstInts
)

// ConstValue is one register's known compile-time value.
type ConstValue struct {
	Kind   ConstKind
	Number float64
	Str    string
	Bytes  []byte
	Bool   bool
	Ints   []int64
}

// Member returns the member type this ConstValue would have if loaded back
// into a register (depth 0; the caller wraps it if the register is itself
// a vector-register slot within a larger lowered value).
func (v ConstValue) Member() typesys.Base {
	switch v.Kind {
	case ConstNumber:
		return typesys.Number
	case ConstString:
		return typesys.String_
	case ConstBytes:
		return typesys.Bytes
	case ConstBoolean:
		return typesys.Boolean
	default:
		return typesys.Number
	}
}

// InterpContext is the compile-time interpretation context each Command's
// preimage step runs against. A register is valid iff it has an entry in
// Values, i.e. it was written by some already-folded command.
type InterpContext struct {
	Values   map[regalloc.Register]ConstValue
	Resolver resolver.Resolver
	Config   *config.Config

	// File/Line record the last executed (file, line) pair, attached to
	// a PreImageError when one is raised.
	File string
	Line int
}

// NewInterpContext returns an empty InterpContext.
func NewInterpContext(res resolver.Resolver, cfg *config.Config) *InterpContext {
	return &InterpContext{Values: make(map[regalloc.Register]ConstValue), Resolver: res, Config: cfg}
}

// Valid reports whether reg has a known compile-time value.
func (c *InterpContext) Valid(reg regalloc.Register) bool {
	_, ok := c.Values[reg]
	return ok
}

// Get returns reg's known compile-time value.
func (c *InterpContext) Get(reg regalloc.Register) (ConstValue, bool) {
	v, ok := c.Values[reg]
	return v, ok
}

// Set records reg's compile-time value, making it valid for later commands.
func (c *InterpContext) Set(reg regalloc.Register, v ConstValue) {
	c.Values[reg] = v
}

// Invalidate removes reg's compile-time value (e.g. once it is mutated by a
// non-folded instruction).
func (c *InterpContext) Invalidate(reg regalloc.Register) {
	delete(c.Values, reg)
}

// NoteLocation records the (file, line) of the LineNumber instruction most
// recently walked, for attribution on a later PreImageError.
func (c *InterpContext) NoteLocation(file string, line int) {
	c.File, c.Line = file, line
}

// PrepareKind distinguishes Keep from Replace in the three-valued
// simple_preimage protocol.
type PrepareKind uint8

const (
	PrepareKeep PrepareKind = iota
	PrepareReplace
)

// SizeHint records a register whose container size is predictable even
// though its contents are not constant: Keep means the command cannot fold,
// but these output sizes are still worth recording if they're known.
type SizeHint struct {
	Reg  regalloc.Register
	Size int
}

// Prepare is a Command's simple_preimage result.
type Prepare struct {
	Kind  PrepareKind
	Sizes []SizeHint
}

// Keep returns a Prepare that declines to fold, optionally recording size
// hints.
func Keep(sizes ...SizeHint) Prepare { return Prepare{Kind: PrepareKeep, Sizes: sizes} }

// ReplacePrepare returns a Prepare requesting the evaluator run this command's
// interpreter counterpart.
func ReplacePrepare() Prepare { return Prepare{Kind: PrepareReplace} }

// OutcomeKind distinguishes Skip/Constant/Replace in preimage_post's result.
type OutcomeKind uint8

const (
	OutcomeSkip OutcomeKind = iota
	OutcomeConstant
	OutcomeReplace
)

// Outcome is a Command's preimage_post result.
type Outcome struct {
	Kind         OutcomeKind
	Sizes        []SizeHint
	Regs         []regalloc.Register
	Instructions []*ir.Instruction
}

// Skip leaves the original instruction in place, recording size hints.
func Skip(sizes ...SizeHint) Outcome { return Outcome{Kind: OutcomeSkip, Sizes: sizes} }

// Constant drops the original instruction; regs now hold their computed
// values in the InterpContext and the evaluator emits Const-family loads
// for each.
func Constant(regs ...regalloc.Register) Outcome {
	return Outcome{Kind: OutcomeConstant, Regs: regs}
}

// ReplaceOutcome splices new in place of the original instruction.
func ReplaceOutcome(new ...*ir.Instruction) Outcome {
	return Outcome{Kind: OutcomeReplace, Instructions: new}
}
