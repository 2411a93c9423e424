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

func TestCallSpecializesProc(t *testing.T) {
	defs := defstore.New()
	types := typesys.NewModel()
	c := ir.NewGenContext(defs, types, regalloc.RegisterInvalid)

	r0, r1 := regalloc.Register(1), regalloc.Register(2)
	types.Add(r0, typesys.BaseExpr(typesys.Number))
	types.Add(r1, typesys.BaseExpr(typesys.String_))

	proc := ir.New(ir.Proc, r0, r1)
	proc.Ident = "demo::greet"
	proc.Modes = []siglower.MemberMode{siglower.ModeOut, siglower.ModeIn}
	c.SetInstructions([]*ir.Instruction{proc})

	require.NoError(t, passes.Call(c))
	require.Len(t, c.Instructions(), 1)

	call := c.Instructions()[0]
	require.Equal(t, ir.Call, call.Op)
	require.True(t, call.IsProc)
	require.Equal(t, "demo::greet", call.Ident)
	require.Equal(t, 2, call.Sig.Len())
	require.Equal(t, siglower.FlowOut, call.Flows[0])
	require.Equal(t, siglower.FlowIn, call.Flows[1])
}

func TestCallSpecializesOperatorFirstRegAsOut(t *testing.T) {
	defs := defstore.New()
	types := typesys.NewModel()
	c := ir.NewGenContext(defs, types, regalloc.RegisterInvalid)

	r0, r1, r2 := regalloc.Register(1), regalloc.Register(2), regalloc.Register(3)
	types.Add(r0, typesys.BaseExpr(typesys.Number))
	types.Add(r1, typesys.BaseExpr(typesys.Number))
	types.Add(r2, typesys.BaseExpr(typesys.Number))

	op := ir.New(ir.Operator, r0, r1, r2)
	op.Ident = "core::add"
	c.SetInstructions([]*ir.Instruction{op})

	require.NoError(t, passes.Call(c))
	call := c.Instructions()[0]
	require.Equal(t, ir.Call, call.Op)
	require.False(t, call.IsProc)
	require.Equal(t, siglower.FlowOut, call.Flows[0])
	require.Equal(t, siglower.FlowIn, call.Flows[1])
	require.Equal(t, siglower.FlowIn, call.Flows[2])
}

func TestCallPassesThroughOtherInstructions(t *testing.T) {
	defs := defstore.New()
	types := typesys.NewModel()
	c := ir.NewGenContext(defs, types, regalloc.RegisterInvalid)
	c.SetInstructions([]*ir.Instruction{ir.New(ir.LineNumber)})

	require.NoError(t, passes.Call(c))
	require.Len(t, c.Instructions(), 1)
	require.Equal(t, ir.LineNumber, c.Instructions()[0].Op)
}
