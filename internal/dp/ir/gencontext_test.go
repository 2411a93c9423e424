package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ensembl-dp/dpc/internal/dp/defstore"
	"github.com/ensembl-dp/dpc/internal/dp/ir"
	"github.com/ensembl-dp/dpc/internal/dp/regalloc"
	"github.com/ensembl-dp/dpc/internal/dp/typesys"
)

func TestPhaseFinishedSwapsBuffers(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	c.SetInstructions([]*ir.Instruction{
		ir.New(ir.LineNumber),
	})

	require.Len(t, c.Instructions(), 1)

	c.Add(ir.New(ir.Copy, regalloc.Register(1), regalloc.Register(2)))
	c.Add(ir.New(ir.Copy, regalloc.Register(3), regalloc.Register(4)))
	c.PhaseFinished()

	require.Len(t, c.Instructions(), 2)
	require.Equal(t, ir.Copy, c.Instructions()[0].Op)
}

func TestNewRegisterMonotonic(t *testing.T) {
	c := ir.NewGenContext(defstore.New(), typesys.NewModel(), regalloc.RegisterInvalid)
	r1 := c.NewRegister()
	r2 := c.NewRegister()
	require.NotEqual(t, r1, r2)
}
