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

// TestReuseDeadCollapsesCopyWhenSourceDead:
// Copy(r2,r1); Use(r2); <never r1> collapses to Use(r1).
func TestReuseDeadCollapsesCopyWhenSourceDead(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	r1, r2 := regalloc.Register(1), regalloc.Register(2)

	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.Copy, r2, r1),
		ir.New(ir.Call, r2), // stands in for "Use(r2)"
	})

	require.NoError(t, passes.ReuseDead(c))
	out := c.Instructions()
	require.Len(t, out, 1)
	require.Equal(t, r1, out[0].Regs[0])
}

// TestReuseDeadChainsToFixpoint covers a chain of copies: r3 := r2 := r1,
// only r3 read downstream. Each collapse exposes the next.
func TestReuseDeadChainsToFixpoint(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	r1, r2, r3 := regalloc.Register(1), regalloc.Register(2), regalloc.Register(3)

	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.Copy, r2, r1),
		ir.New(ir.Copy, r3, r2),
		ir.New(ir.Call, r3),
	})

	require.NoError(t, passes.ReuseDead(c))
	out := c.Instructions()
	require.Len(t, out, 1)
	require.Equal(t, r1, out[0].Regs[0])
}

// TestReuseDeadKeepsCopyWhenSourceStillLive ensures a Copy is left alone
// (and not relabeled) when its source is read again afterward.
func TestReuseDeadKeepsCopyWhenSourceStillLive(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	r1, r2 := regalloc.Register(1), regalloc.Register(2)

	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.Copy, r2, r1),
		ir.New(ir.Call, r2),
		ir.New(ir.Call, r1), // r1 still live after the copy
	})

	require.NoError(t, passes.ReuseDead(c))
	out := c.Instructions()
	require.Len(t, out, 3)
	require.Equal(t, r2, out[0].Regs[0])
	require.Equal(t, r1, out[0].Regs[1])
}
