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

func TestAssignRegsProducesDenseNumbering(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.NumberConst, regalloc.Register(500)),
		ir.New(ir.Copy, regalloc.Register(900), regalloc.Register(500)),
	})

	require.NoError(t, passes.AssignRegs(c))
	out := c.Instructions()
	require.Equal(t, out[0].Regs[0], out[1].Regs[1]) // same original register, same new id
	require.NotEqual(t, out[1].Regs[0], out[1].Regs[1])
}
