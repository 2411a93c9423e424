package passes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/passes"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/siglower"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

// TestPruneDropsPureCallWithUnreadResult:
// Plus(r2,r1,r1); Print(r1) with Plus not self-justifying and r2 unread
// leaves only the constant feeding r1 and the Print call.
func TestPruneDropsPureCallWithUnreadResult(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	r1, r2 := regalloc.Register(1), regalloc.Register(2)

	plus := ir.New(ir.Call, r2, r1, r1)
	plus.Ident = "core::plus"
	plus.Flows = []siglower.DataFlow{siglower.FlowOut, siglower.FlowIn, siglower.FlowIn}

	print := ir.New(ir.Call, r1)
	print.Ident = "core::print"
	print.Flows = []siglower.DataFlow{siglower.FlowIn}
	print.SelfJustifying = true

	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.NumberConst, r1),
		plus,
		print,
	})

	require.NoError(t, passes.Prune(c))
	out := c.Instructions()
	require.Len(t, out, 2)
	require.Equal(t, ir.NumberConst, out[0].Op)
	require.Equal(t, "core::print", out[1].Ident)
}

// TestPruneKeepsPureCallFeedingJustifiedCall: the same Plus survives when
// its out register is read by the justified Print downstream.
func TestPruneKeepsPureCallFeedingJustifiedCall(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	r1, r2 := regalloc.Register(1), regalloc.Register(2)

	plus := ir.New(ir.Call, r2, r1, r1)
	plus.Ident = "core::plus"
	plus.Flows = []siglower.DataFlow{siglower.FlowOut, siglower.FlowIn, siglower.FlowIn}

	print := ir.New(ir.Call, r2)
	print.Ident = "core::print"
	print.Flows = []siglower.DataFlow{siglower.FlowIn}
	print.SelfJustifying = true

	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.NumberConst, r1),
		plus,
		print,
	})

	require.NoError(t, passes.Prune(c))
	require.Len(t, c.Instructions(), 3)
}

// TestPruneKillsRegisterAtItsWriter: an earlier dead writer of a register
// is not retained just because a later writer of the same register is.
func TestPruneKillsRegisterAtItsWriter(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	r1, r2 := regalloc.Register(1), regalloc.Register(2)

	print := ir.New(ir.Call, r1)
	print.Ident = "core::print"
	print.Flows = []siglower.DataFlow{siglower.FlowIn}
	print.SelfJustifying = true

	first := ir.New(ir.NumberConst, r1)
	first.ConstNumber = 1
	second := ir.New(ir.NumberConst, r1)
	second.ConstNumber = 2
	c.SetInstructions([]*ir.Instruction{
		first,
		ir.New(ir.Copy, r2, r1), // r2 never read
		second,
		print,
	})

	require.NoError(t, passes.Prune(c))
	out := c.Instructions()
	require.Len(t, out, 2)
	require.Equal(t, ir.NumberConst, out[0].Op)
	require.Equal(t, 2.0, out[0].ConstNumber)
	require.Equal(t, "core::print", out[1].Ident)
}

func TestPruneKeepsSelfJustifyingLineNumber(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	c.SetInstructions([]*ir.Instruction{ir.New(ir.LineNumber)})

	require.NoError(t, passes.Prune(c))
	require.Len(t, c.Instructions(), 1)
}
