package preimage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/command"
	"github.com/ensembl-dp/dpc/internal/dp/command/builtin"
	"github.com/ensembl-dp/dpc/internal/dp/config"
	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/preimage"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

func newGenContext(instrs []*ir.Instruction) *ir.GenContext {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.Register(10))
	c.SetInstructions(instrs)
	return c
}

// TestRunFoldsConstantPlusIntoSingleLoad: "let x :=
// 3+4; print(x)" should leave a NumberConst(7) feeding print, with no
// core::add call remaining.
func TestRunFoldsConstantPlusIntoSingleLoad(t *testing.T) {
	store := command.NewCommandTypeStore()
	_, err := builtin.RegisterAll(store)
	require.NoError(t, err)

	r1, r2, r3 := regalloc.Register(1), regalloc.Register(2), regalloc.Register(3)
	three := ir.New(ir.NumberConst, r1)
	three.ConstNumber = 3
	four := ir.New(ir.NumberConst, r2)
	four.ConstNumber = 4
	plus := ir.New(ir.Call, r3, r1, r2)
	plus.Ident = builtin.PlusID.String()
	print := ir.New(ir.Call, r3)
	print.Ident = builtin.PrintID.String()

	c := newGenContext([]*ir.Instruction{three, four, plus, print})

	eval := preimage.New(store, command.NewInterpContext(nil, nil))
	require.NoError(t, eval.Run(c))

	var sawAdd bool
	var lastConst *ir.Instruction
	for _, instr := range c.Instructions() {
		if instr.Op == ir.Call && instr.Ident == builtin.PlusID.String() {
			sawAdd = true
		}
		if instr.Op == ir.NumberConst && instr.Regs[0] == r3 {
			lastConst = instr
		}
	}
	require.False(t, sawAdd, "plus call should have folded away")
	require.NotNil(t, lastConst)
	require.Equal(t, 7.0, lastConst.ConstNumber)
}

// TestRunIsIdempotent: running Run a second time over its own output makes
// no further changes.
func TestRunIsIdempotent(t *testing.T) {
	store := command.NewCommandTypeStore()
	_, err := builtin.RegisterAll(store)
	require.NoError(t, err)

	r1, r2, r3 := regalloc.Register(1), regalloc.Register(2), regalloc.Register(3)
	three := ir.New(ir.NumberConst, r1)
	three.ConstNumber = 3
	four := ir.New(ir.NumberConst, r2)
	four.ConstNumber = 4
	plus := ir.New(ir.Call, r3, r1, r2)
	plus.Ident = builtin.PlusID.String()

	c := newGenContext([]*ir.Instruction{three, four, plus})
	eval := preimage.New(store, command.NewInterpContext(nil, nil))
	require.NoError(t, eval.Run(c))
	first := c.Format()

	require.NoError(t, eval.Run(c))
	require.Equal(t, first, c.Format())
}

func TestRunRecordsStepsUnderDebugRun(t *testing.T) {
	store := command.NewCommandTypeStore()
	_, err := builtin.RegisterAll(store)
	require.NoError(t, err)

	r1, r2, r3 := regalloc.Register(1), regalloc.Register(2), regalloc.Register(3)
	three := ir.New(ir.NumberConst, r1)
	three.ConstNumber = 3
	four := ir.New(ir.NumberConst, r2)
	four.ConstNumber = 4
	plus := ir.New(ir.Call, r3, r1, r2)
	plus.Ident = builtin.PlusID.String()

	c := newGenContext([]*ir.Instruction{three, four, plus})
	cfg := config.New(config.WithDebugRun(true))
	eval := preimage.New(store, command.NewInterpContext(nil, cfg))
	require.NoError(t, eval.Run(c))

	steps := eval.Steps()
	require.Len(t, steps, 1)
	require.Contains(t, steps[0], builtin.PlusID.String())
}

func TestRunLeavesNonFoldableCallUntouched(t *testing.T) {
	store := command.NewCommandTypeStore()
	_, err := builtin.RegisterAll(store)
	require.NoError(t, err)

	r1 := regalloc.Register(1)
	load := ir.New(ir.NumberConst, r1)
	load.ConstNumber = 5
	print := ir.New(ir.Call, r1)
	print.Ident = builtin.PrintID.String()

	c := newGenContext([]*ir.Instruction{load, print})
	eval := preimage.New(store, command.NewInterpContext(nil, nil))
	require.NoError(t, eval.Run(c))

	require.Len(t, c.Instructions(), 2)
	require.Equal(t, ir.Call, c.Instructions()[1].Op)
}
