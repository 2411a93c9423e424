package passes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/passes"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

func TestLinearizeAppendExpandsToPhysicalSlots(t *testing.T) {
	defs := defstore.New()
	types := typesys.NewModel()
	c := ir.NewGenContext(defs, types, regalloc.Register(100))

	dst, src := regalloc.Register(1), regalloc.Register(2)
	types.Add(dst, typesys.Member{Depth: 1, Base: typesys.Number}.ToExpr())
	types.Add(src, typesys.Member{Depth: 1, Base: typesys.Number}.ToExpr())

	c.SetInstructions([]*ir.Instruction{ir.New(ir.Append, dst, src)})
	require.NoError(t, passes.Linearize(c))

	out := c.Instructions()
	require.Len(t, out, 1)
	require.Equal(t, ir.Append, out[0].Op)
	// depth 1 => 2*1+1 = 3 physical registers per operand.
	require.Len(t, out[0].Regs, 6)
}

func TestLinearizeExtendDepth1PushesOneElement(t *testing.T) {
	defs := defstore.New()
	types := typesys.NewModel()
	c := ir.NewGenContext(defs, types, regalloc.Register(100))

	dst, src := regalloc.Register(1), regalloc.Register(2)
	types.Add(dst, typesys.Member{Depth: 1, Base: typesys.Number}.ToExpr())
	types.Add(src, typesys.BaseExpr(typesys.Number))

	c.SetInstructions([]*ir.Instruction{ir.New(ir.Extend, dst, src)})
	require.NoError(t, passes.Linearize(c))

	out := c.Instructions()
	require.NotEmpty(t, out)
	for _, instr := range out {
		require.NotEqual(t, ir.Extend, instr.Op)
	}
}

func TestLinearizeFilterEliminatedIntoCoreFilterCalls(t *testing.T) {
	defs := defstore.New()
	types := typesys.NewModel()
	c := ir.NewGenContext(defs, types, regalloc.Register(100))

	dst, src, mask := regalloc.Register(1), regalloc.Register(2), regalloc.Register(3)
	types.Add(dst, typesys.Member{Depth: 1, Base: typesys.Number}.ToExpr())
	types.Add(src, typesys.Member{Depth: 1, Base: typesys.Number}.ToExpr())
	types.Add(mask, typesys.Member{Depth: 1, Base: typesys.Boolean}.ToExpr())

	c.SetInstructions([]*ir.Instruction{ir.New(ir.Filter, dst, src, mask)})
	require.NoError(t, passes.Linearize(c))

	out := c.Instructions()
	// depth 1: data plus the outermost (offset, length) pair, each
	// selected against the mask's data register.
	require.Len(t, out, 3)
	maskData := out[0].Regs[2]
	for _, instr := range out {
		require.Equal(t, ir.Call, instr.Op)
		require.Equal(t, "core::filter", instr.Ident)
		require.Len(t, instr.Regs, 3)
		require.Equal(t, maskData, instr.Regs[2])
	}
	require.NotEqual(t, mask, maskData) // the mask's flat data layer, not the logical register
}

func TestLinearizeIndexEliminatedIntoCoreIndexCall(t *testing.T) {
	defs := defstore.New()
	types := typesys.NewModel()
	c := ir.NewGenContext(defs, types, regalloc.Register(100))

	dst, src, idx := regalloc.Register(1), regalloc.Register(2), regalloc.Register(3)
	types.Add(dst, typesys.BaseExpr(typesys.Number))
	types.Add(src, typesys.Member{Depth: 1, Base: typesys.Number}.ToExpr())
	types.Add(idx, typesys.BaseExpr(typesys.Number))

	c.SetInstructions([]*ir.Instruction{ir.New(ir.Index, dst, src, idx)})
	require.NoError(t, passes.Linearize(c))

	out := c.Instructions()
	require.Len(t, out, 1)
	require.Equal(t, ir.Call, out[0].Op)
	require.Equal(t, "core::index", out[0].Ident)
}
