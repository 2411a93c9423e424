// Package builtin supplies the handful of reference commands that exercise
// the mid-end pipeline end-to-end: arithmetic, a self-justifying print, and
// the index/equality/filter helpers linearize and simplify synthesize
// idents for.
package builtin

import (
	"fmt"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
)

// RegisterAll registers every builtin CommandType into store under the
// "core" module, returning their ids in registration order.
func RegisterAll(store *command.CommandTypeStore) ([]command.CommandTypeID, error) {
	var ids []command.CommandTypeID
	for _, reg := range []struct {
		ct     command.CommandType
		sample command.Command
	}{
		{&PlusType{}, &plusCommand{}},
		{&PrintType{}, &printCommand{}},
		{&IndexType{}, &indexCommand{}},
		{&EqNumberType{}, &eqNumberCommand{}},
		{&ExtendType{}, &extendCommand{}},
		{&FilterType{}, &filterCommand{}},
	} {
		id, err := store.Register(reg.ct, reg.sample)
		if err != nil {
			return nil, fmt.Errorf("builtin: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DefaultSet bundles every RegisterAll-registered CommandType into one
// version-1.0 "core" command.Set, in the same order RegisterAll assigned
// ids, giving cmd/dpc a ready-to-link set without hand-writing opcode
// offsets.
func DefaultSet(ids []command.CommandTypeID) (*command.Set, error) {
	if len(ids) != 6 {
		return nil, fmt.Errorf("builtin: DefaultSet: expected 6 registered ids from RegisterAll, got %d", len(ids))
	}
	set := command.NewSet("core", 1, 0)
	names := []struct {
		id     command.CommandTypeID
		ident  command.Identifier
		values int
	}{
		{ids[0], PlusID, 3},
		{ids[1], PrintID, 1},
		{ids[2], IndexID, 3},
		{ids[3], EqNumberID, 3},
		{ids[4], ExtendID, 3},
		{ids[5], FilterID, 3},
	}
	for _, n := range names {
		set.AddOpcode(n.id, n.ident.Name, n.values)
	}
	return set, nil
}

// outIn splits a Call instruction's register vector into its single Out
// register (by the core::* convention: regs[0] is Out, the rest In) and the
// remaining In registers.
func outIn(instr *ir.Instruction) (regalloc.Register, []regalloc.Register, error) {
	if len(instr.Regs) < 1 {
		return 0, nil, fmt.Errorf("builtin: expected at least one register")
	}
	return instr.Regs[0], instr.Regs[1:], nil
}
