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

func TestCopyOnWriteElidesWriteOnceCopy(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	src, dst := regalloc.Register(1), regalloc.Register(2)

	use := ir.New(ir.Call, dst)
	use.Ident = "core::print"
	use.Flows = []siglower.DataFlow{siglower.FlowIn}

	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.NumberConst, src),
		ir.New(ir.Copy, dst, src),
		use,
	})

	require.NoError(t, passes.CopyOnWrite(c))
	out := c.Instructions()
	require.Len(t, out, 2)
	require.Equal(t, ir.Call, out[1].Op)
	require.Equal(t, src, out[1].Regs[0])
}

func TestCopyOnWriteKeepsCopyMutatedInPlace(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	src, dst := regalloc.Register(1), regalloc.Register(2)
	other := regalloc.Register(3)

	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.NumberConst, src),
		ir.New(ir.Copy, dst, src),
		ir.New(ir.Append, dst, other),
	})

	require.NoError(t, passes.CopyOnWrite(c))
	out := c.Instructions()
	require.Len(t, out, 3)
	require.Equal(t, ir.Copy, out[1].Op)
}

// TestCopyOnWriteKeepsCopyWhenSourceMutated: the copy is the snapshot that
// shields its readers from a later in-place mutation of the source, so it
// must stay materialized.
func TestCopyOnWriteKeepsCopyWhenSourceMutated(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	src, dst := regalloc.Register(1), regalloc.Register(2)
	other := regalloc.Register(3)

	use := ir.New(ir.Call, dst)
	use.Ident = "core::print"
	use.Flows = []siglower.DataFlow{siglower.FlowIn}

	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.NumberConst, src),
		ir.New(ir.Copy, dst, src),
		ir.New(ir.Append, src, other),
		use,
	})

	require.NoError(t, passes.CopyOnWrite(c))
	out := c.Instructions()
	require.Len(t, out, 4)
	require.Equal(t, ir.Copy, out[1].Op)
	require.Equal(t, dst, out[3].Regs[0])
}
