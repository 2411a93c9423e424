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

func TestDeAliasCollapsesChainAndDropsAlias(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	r1, r2, r3 := regalloc.Register(1), regalloc.Register(2), regalloc.Register(3)

	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.Alias, r2, r1),
		ir.New(ir.Alias, r3, r2),
		ir.New(ir.Copy, regalloc.Register(4), r3),
	})

	require.NoError(t, passes.DeAlias(c))
	out := c.Instructions()
	require.Len(t, out, 1)
	require.Equal(t, ir.Copy, out[0].Op)
	require.Equal(t, r1, out[0].Regs[1])
}
