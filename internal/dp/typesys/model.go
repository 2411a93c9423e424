package typesys

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// Model stores a per-register resolved Expr, materialized by
// Unifier.ToModel once all constraints have been added. An entry may still
// be ExprAny if inference left it unresolved; that is only an error if the
// register reaches emission (see Model.Concrete).
//
// Keys iterate in sorted register order so two runs over the same program
// produce identical diagnostic output.
type Model struct {
	values map[regalloc.Register]Expr
}

// NewModel returns an empty Model.
func NewModel() *Model {
	return &Model{values: make(map[regalloc.Register]Expr)}
}

// Add records reg's resolved expression type, overwriting any previous entry.
func (m *Model) Add(reg regalloc.Register, typ Expr) {
	m.values[reg] = typ
}

// Get returns reg's resolved expression type and whether it was present.
func (m *Model) Get(reg regalloc.Register) (Expr, bool) {
	t, ok := m.values[reg]
	return t, ok
}

// Concrete returns reg's type as a Member, or an error if the register is
// unknown or its type still contains an unresolved Any placeholder:
// unresolved placeholders are only a problem once something tries to emit
// against them.
func (m *Model) Concrete(reg regalloc.Register) (Member, error) {
	e, ok := m.values[reg]
	if !ok {
		return Member{}, fmt.Errorf("typesys: %s has no recorded type", reg)
	}
	return exprToMember(e)
}

func exprToMember(e Expr) (Member, error) {
	depth := 0
	for e.Kind == ExprVec {
		depth++
		e = *e.Inner
	}
	if e.Kind == ExprAny {
		return Member{}, fmt.Errorf("typesys: unresolved polymorphic placeholder reached emission")
	}
	return Member{Depth: depth, Base: e.Base}, nil
}

// Remove deletes reg's entry, used after a register is eliminated by a pass.
func (m *Model) Remove(reg regalloc.Register) {
	delete(m.values, reg)
}

// Registers returns every register with a recorded member type, in
// ascending order.
func (m *Model) Registers() []regalloc.Register {
	out := make([]regalloc.Register, 0, len(m.values))
	for r := range m.values {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String implements fmt.Stringer.
func (m *Model) String() string {
	var sb strings.Builder
	for _, r := range m.Registers() {
		sb.WriteString(r.String())
		sb.WriteString(" : ")
		sb.WriteString(m.values[r].String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// AllConcrete reports whether every entry in m resolves to a concrete
// Member (no unresolved Any placeholder). Every register used by any
// instruction should satisfy this once simplify has run.
func (m *Model) AllConcrete() bool {
	for _, t := range m.values {
		if _, err := exprToMember(t); err != nil {
			return false
		}
	}
	return true
}
